package repository

import (
	"taskboard-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttachmentRepository handles database operations for task attachments
type AttachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create creates attachment metadata
func (r *AttachmentRepository) Create(attachment *models.TaskAttachment) error {
	return r.db.Create(attachment).Error
}

// GetByID retrieves an attachment by ID
func (r *AttachmentRepository) GetByID(id uuid.UUID) (*models.TaskAttachment, error) {
	var attachment models.TaskAttachment
	err := r.db.First(&attachment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

// ListByTask retrieves the attachments of a task
func (r *AttachmentRepository) ListByTask(taskID uuid.UUID) ([]models.TaskAttachment, error) {
	var attachments []models.TaskAttachment
	err := r.db.Where("task_id = ?", taskID).Order("created_at ASC").Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

// Delete removes attachment metadata
func (r *AttachmentRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.TaskAttachment{}, "id = ?", id).Error
}
