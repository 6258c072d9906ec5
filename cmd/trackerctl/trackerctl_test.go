package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"taskboard-backend/internal/database/models"
	"taskboard-backend/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestLoadSeedFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "data/01-users.yaml", []byte(`
users:
  - name: Alice
    username: alice
    email: alice@example.com
    password: secret-pass
`), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "data/teams/02-platform.yml", []byte(`
teams:
  - name: Platform
    owner: alice@example.com
    projects:
      - name: CI
        tasks:
          - name: Cache downloads
            status: Pending
            labels: [infra]
`), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "data/README.md", []byte("not yaml"), 0o644))

	data, err := loadSeedFiles(fsys, "data")

	require.NoError(t, err)
	require.Len(t, data.Users, 1)
	assert.Equal(t, "alice@example.com", data.Users[0].Email)
	require.Len(t, data.Teams, 1)
	require.Len(t, data.Teams[0].Projects, 1)
	require.Len(t, data.Teams[0].Projects[0].Tasks, 1)
	assert.Equal(t, []string{"infra"}, data.Teams[0].Projects[0].Tasks[0].Labels)
}

func TestLoadSeedFiles_Errors(t *testing.T) {
	fsys := afero.NewMemMapFs()

	_, err := loadSeedFiles(fsys, "missing")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fsys, "bad/seed.yaml", []byte("users: [unterminated"), 0o644))
	_, err = loadSeedFiles(fsys, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestSeederActorLookup(t *testing.T) {
	s := &seeder{actors: map[string]service.Actor{}}
	id := uuid.New()
	s.actors["alice@example.com"] = service.Actor{ID: id, Email: "alice@example.com"}

	a, err := s.actor("Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, id, a.ID)

	_, err = s.actor("nobody@example.com")
	assert.Error(t, err)
}

func auditEntries() []models.AuditLog {
	return []models.AuditLog{
		{
			Action:     models.AuditActionStatusChanged,
			EntityType: models.EntityTask,
			EntityID:   uuid.New(),
			DoneBy:     uuid.New(),
			DoneAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			OldValues:  datatypes.JSON(`{"status":"Pending"}`),
			NewValues:  datatypes.JSON(`{"status":"Done","position":0}`),
			Actor:      &models.User{Email: "bob@example.com"},
		},
	}
}

func TestWriteAuditTable(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeAuditTable(&buf, auditEntries()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "ACTION")
	assert.Contains(t, lines[1], "2026-03-01T12:00:00Z")
	assert.Contains(t, lines[1], "bob@example.com")
}

func TestWriteAuditYAML(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeAuditYAML(&buf, auditEntries()))

	out := buf.String()
	assert.Contains(t, out, "entity_type: task")
	assert.Contains(t, out, "status: Done")
	assert.Contains(t, out, "status: Pending")
}
