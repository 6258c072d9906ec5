package models

import (
	"github.com/google/uuid"
)

// Project belongs to one team. Soft deletion archives it.
type Project struct {
	SoftDeleteModel
	TeamID      uuid.UUID `json:"team_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"size:2000"`
	CreatedBy   uuid.UUID `json:"created_by" gorm:"type:uuid;not null;index"`

	// Relationships
	Team    *Team           `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	Members []ProjectMember `json:"members,omitempty" gorm:"foreignKey:ProjectID"`
}

// TableName returns the table name for Project
func (Project) TableName() string {
	return "projects"
}

// ProjectMember is the membership of a user in a project
type ProjectMember struct {
	BaseModel
	ProjectID uuid.UUID   `json:"project_id" gorm:"type:uuid;not null;uniqueIndex:idx_project_members_project_user,priority:1"`
	UserID    uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_project_members_project_user,priority:2;index"`
	Role      ProjectRole `json:"role" gorm:"size:20;not null;default:'Member'"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName returns the table name for ProjectMember
func (ProjectMember) TableName() string {
	return "project_members"
}
