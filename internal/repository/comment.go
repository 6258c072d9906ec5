package repository

import (
	"taskboard-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentRepository handles database operations for task comments
type CommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create creates a new comment
func (r *CommentRepository) Create(comment *models.TaskComment) error {
	return r.db.Omit("Author").Create(comment).Error
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(id uuid.UUID) (*models.TaskComment, error) {
	var comment models.TaskComment
	err := r.db.Preload("Author").First(&comment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByTask retrieves the comments of a task oldest first
func (r *CommentRepository) ListByTask(taskID uuid.UUID) ([]models.TaskComment, error) {
	var comments []models.TaskComment
	err := r.db.Preload("Author").Where("task_id = ?", taskID).Order("created_at ASC").Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Update updates a comment
func (r *CommentRepository) Update(comment *models.TaskComment) error {
	return r.db.Omit("Author").Save(comment).Error
}

// Delete soft-deletes a comment
func (r *CommentRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.TaskComment{}, "id = ?", id).Error
}
