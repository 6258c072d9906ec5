package models

import (
	"github.com/google/uuid"
)

// Team owns projects and labels. CreatedBy always points at the current owner.
type Team struct {
	SoftDeleteModel
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"size:1000"`
	CreatedBy   uuid.UUID `json:"created_by" gorm:"type:uuid;not null;index"`

	// Relationships
	Members  []TeamMember `json:"members,omitempty" gorm:"foreignKey:TeamID"`
	Projects []Project    `json:"projects,omitempty" gorm:"foreignKey:TeamID"`
	Labels   []Label      `json:"labels,omitempty" gorm:"foreignKey:TeamID"`
}

// TableName returns the table name for Team
func (Team) TableName() string {
	return "teams"
}

// TeamMember is the membership of a user in a team. At most one row per team
// may hold the Owner role.
type TeamMember struct {
	BaseModel
	TeamID   uuid.UUID `json:"team_id" gorm:"type:uuid;not null;uniqueIndex:idx_team_members_team_user,priority:1;uniqueIndex:idx_team_members_single_owner,where:team_role = 'Owner'"`
	UserID   uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_team_members_team_user,priority:2;index"`
	TeamRole TeamRole  `json:"team_role" gorm:"size:20;not null;default:'Member'"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName returns the table name for TeamMember
func (TeamMember) TableName() string {
	return "team_members"
}
