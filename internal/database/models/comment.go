package models

import (
	"github.com/google/uuid"
)

// TaskComment is a comment on a task, optionally replying to another comment
type TaskComment struct {
	SoftDeleteModel
	TaskID    uuid.UUID  `json:"task_id" gorm:"type:uuid;not null;index"`
	Comment   string     `json:"comment" gorm:"type:text;not null"`
	ReplyTo   *uuid.UUID `json:"reply_to,omitempty" gorm:"type:uuid;index"`
	CreatedBy uuid.UUID  `json:"created_by" gorm:"type:uuid;not null"`

	Author *User `json:"author,omitempty" gorm:"foreignKey:CreatedBy"`
}

// TableName returns the table name for TaskComment
func (TaskComment) TableName() string {
	return "task_comments"
}

// TaskAttachment is file metadata; the bytes live in blob storage under Path
type TaskAttachment struct {
	BaseModel
	TaskID           uuid.UUID `json:"task_id" gorm:"type:uuid;not null;index"`
	UserID           uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	Filename         string    `json:"filename" gorm:"size:255;not null"`
	OriginalFilename string    `json:"original_filename" gorm:"size:255;not null"`
	MimeType         string    `json:"mime_type" gorm:"size:127;not null"`
	Size             int64     `json:"size" gorm:"not null"`
	Disk             string    `json:"disk" gorm:"size:20;not null;default:'local'"`
	Path             string    `json:"-" gorm:"size:512;not null"`
}

// TableName returns the table name for TaskAttachment
func (TaskAttachment) TableName() string {
	return "task_attachments"
}
