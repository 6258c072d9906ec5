package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TeamInvite grants team membership to whoever accepts it, up to UsageLimit times
type TeamInvite struct {
	BaseModel
	TeamID       uuid.UUID    `json:"team_id" gorm:"type:uuid;not null;index"`
	InviteeEmail *string      `json:"invitee_email,omitempty" gorm:"size:255;index"`
	ExpiresAt    time.Time    `json:"expires_at" gorm:"not null"`
	Status       InviteStatus `json:"status" gorm:"size:20;not null;default:'Pending';index"`
	UsageLimit   int          `json:"usage_limit" gorm:"not null;default:1"`
	UsedCount    int          `json:"used_count" gorm:"not null;default:0"`
	CreatedBy    uuid.UUID    `json:"created_by" gorm:"type:uuid;not null"`

	Team *Team `json:"team,omitempty" gorm:"foreignKey:TeamID"`
}

// TableName returns the table name for TeamInvite
func (TeamInvite) TableName() string {
	return "team_invites"
}

// IsExpired reports whether the invite expiry has elapsed at now
func (i *TeamInvite) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// HasCapacity reports whether another accept fits under the usage limit
func (i *TeamInvite) HasCapacity() bool {
	return i.UsedCount < i.UsageLimit
}

// AddressedTo reports whether email may use the invite
func (i *TeamInvite) AddressedTo(email string) bool {
	if i.InviteeEmail == nil || *i.InviteeEmail == "" {
		return true
	}
	return strings.EqualFold(*i.InviteeEmail, email)
}
