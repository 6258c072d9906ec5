package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_PutOpenDelete(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewFileStorage(fs)

	n, err := s.Put("attachments/task-1/a.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	exists, err := afero.Exists(fs, "attachments/task-1/a.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.Open("attachments/task-1/a.txt")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(body))

	require.NoError(t, s.Delete("attachments/task-1/a.txt"))
	_, err = s.Open("attachments/task-1/a.txt")
	assert.Error(t, err)
}

func TestFileStorage_DeleteMissingIsNoop(t *testing.T) {
	s := NewFileStorage(afero.NewMemMapFs())
	assert.NoError(t, s.Delete("attachments/nothing/here.pdf"))
}

func TestFileStorage_RejectsEscapingKeys(t *testing.T) {
	s := NewFileStorage(afero.NewMemMapFs())

	_, err := s.Put("../etc/passwd", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = s.Open("")
	assert.Error(t, err)
}

func TestFileStorage_Disk(t *testing.T) {
	assert.Equal(t, DiskLocal, NewFileStorage(afero.NewMemMapFs()).Disk())
}
