package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProjectRole(t *testing.T) {
	cases := map[string]ProjectRole{
		"Lead":           ProjectRoleLead,
		"Technical Lead": ProjectRoleTechnicalLead,
		"TechnicalLead":  ProjectRoleTechnicalLead,
		"Member":         ProjectRoleMember,
	}
	for in, want := range cases {
		got, ok := ParseProjectRole(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}

	_, ok := ParseProjectRole("Owner")
	assert.False(t, ok)
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, TaskStatusInProgress.IsValid())
	assert.False(t, TaskStatus("in_progress").IsValid())
	assert.True(t, TaskPriorityCritical.IsValid())
	assert.False(t, TaskPriority("Urgent").IsValid())
	assert.True(t, TeamRoleOwner.IsValid())
	assert.False(t, TeamRole("owner").IsValid())
	assert.True(t, UserRoleManager.IsValid())
	assert.True(t, InviteStatusRevoked.IsTerminal())
	assert.False(t, InviteStatusPending.IsTerminal())
}

func TestWorkRank(t *testing.T) {
	assert.Less(t, TaskStatusInProgress.WorkRank(), TaskStatusPending.WorkRank())
	assert.Less(t, TaskStatusPending.WorkRank(), TaskStatusUnplanned.WorkRank())
	assert.Less(t, TaskStatusUnplanned.WorkRank(), TaskStatusDone.WorkRank())
}

func TestTeamInvite(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	email := "Invitee@Example.com"
	invite := &TeamInvite{
		ExpiresAt:    now.Add(time.Hour),
		UsageLimit:   2,
		UsedCount:    1,
		InviteeEmail: &email,
	}

	assert.False(t, invite.IsExpired(now))
	assert.True(t, invite.IsExpired(now.Add(time.Hour)))
	assert.True(t, invite.HasCapacity())
	invite.UsedCount = 2
	assert.False(t, invite.HasCapacity())
	assert.True(t, invite.AddressedTo("invitee@example.com"))
	assert.False(t, invite.AddressedTo("other@example.com"))

	open := &TeamInvite{}
	assert.True(t, open.AddressedTo("anyone@example.com"))
}

func TestTaskJSONRoundTrip(t *testing.T) {
	priority := TaskPriorityHigh
	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	label := Label{Name: "backend"}
	label.ID = uuid.New()

	task := Task{
		ProjectID: uuid.New(),
		Name:      "Write docs",
		Status:    TaskStatusInProgress,
		Priority:  &priority,
		DueDate:   &due,
		Position:  3,
		Labels:    []Label{label},
	}
	task.ID = uuid.New()

	raw, err := json.Marshal(task)
	require.NoError(t, err)

	var decoded Task
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, task.Status, decoded.Status)
	require.NotNil(t, decoded.Priority)
	assert.Equal(t, priority, *decoded.Priority)
	assert.Equal(t, 3, decoded.Position)
	assert.Equal(t, task.LabelIDs(), decoded.LabelIDs())
	assert.True(t, decoded.IsTopLevel())
}
