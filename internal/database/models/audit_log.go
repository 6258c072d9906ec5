package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions
const (
	AuditActionCreated              = "created"
	AuditActionUpdated              = "updated"
	AuditActionDeleted              = "deleted"
	AuditActionRestored             = "restored"
	AuditActionStatusChanged        = "status_changed"
	AuditActionOwnershipTransferred = "ownership_transferred"
	AuditActionMemberAdded          = "member_added"
	AuditActionMemberRemoved        = "member_removed"
	AuditActionMemberRoleChanged    = "member_role_changed"
	AuditActionLeftTeam             = "left_team"
	AuditActionJoinedTeam           = "joined_team"
)

// Audited entity types
const (
	EntityTeam    = "team"
	EntityProject = "project"
	EntityTask    = "task"
)

// AuditLog is an append-only record of a mutation
type AuditLog struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Action     string         `json:"action" gorm:"size:50;not null;index"`
	EntityType string         `json:"entity_type" gorm:"size:50;not null;index:idx_audit_entity,priority:1"`
	EntityID   uuid.UUID      `json:"entity_id" gorm:"type:uuid;not null;index:idx_audit_entity,priority:2"`
	OldValues  datatypes.JSON `json:"old_values,omitempty" gorm:"type:jsonb" swaggertype:"object"`
	NewValues  datatypes.JSON `json:"new_values,omitempty" gorm:"type:jsonb" swaggertype:"object"`
	DoneBy     uuid.UUID      `json:"done_by" gorm:"type:uuid;not null;index"`
	DoneAt     time.Time      `json:"done_at" gorm:"not null;index"`

	Actor *User `json:"actor,omitempty" gorm:"foreignKey:DoneBy"`
}

// TableName returns the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate sets the UUID and timestamp if not already set
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.DoneAt.IsZero() {
		a.DoneAt = time.Now().UTC()
	}
	return nil
}
