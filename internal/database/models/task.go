package models

import (
	"time"

	"github.com/google/uuid"
)

// Task is a unit of work in a project. ParentID links a subtask to its
// top-level task; nesting is one level deep.
type Task struct {
	SoftDeleteModel
	ProjectID   uuid.UUID     `json:"project_id" gorm:"type:uuid;not null;index:idx_tasks_column,priority:1"`
	Name        string        `json:"name" gorm:"size:255;not null"`
	Description string        `json:"description" gorm:"type:text"`
	Status      TaskStatus    `json:"status" gorm:"size:20;not null;default:'Unplanned';index:idx_tasks_column,priority:2"`
	Priority    *TaskPriority `json:"priority,omitempty" gorm:"size:20"`
	DueDate     *time.Time    `json:"due_date,omitempty" gorm:"type:date"`
	Position    int           `json:"position" gorm:"not null;default:0"`
	ParentID    *uuid.UUID    `json:"parent_id,omitempty" gorm:"type:uuid;index"`
	CreatedBy   uuid.UUID     `json:"created_by" gorm:"type:uuid;not null"`
	AssignedTo  *uuid.UUID    `json:"assigned_to,omitempty" gorm:"type:uuid;index"`

	// Relationships
	Labels   []Label  `json:"labels" gorm:"many2many:task_labels"`
	Subtasks []Task   `json:"subtasks,omitempty" gorm:"foreignKey:ParentID"`
	Assignee *User    `json:"assignee,omitempty" gorm:"foreignKey:AssignedTo"`
	Project  *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

// TableName returns the table name for Task
func (Task) TableName() string {
	return "tasks"
}

// IsTopLevel reports whether the task has no parent
func (t *Task) IsTopLevel() bool {
	return t.ParentID == nil
}

// LabelIDs returns the ids of the attached labels
func (t *Task) LabelIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(t.Labels))
	for i, l := range t.Labels {
		ids[i] = l.ID
	}
	return ids
}

// Label is a team-scoped tag attachable to tasks
type Label struct {
	SoftDeleteModel
	TeamID      uuid.UUID `json:"team_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"size:50;not null"`
	Description string    `json:"description" gorm:"size:255"`
	CreatedBy   uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
}

// TableName returns the table name for Label
func (Label) TableName() string {
	return "labels"
}
