package repository

import (
	"taskboard-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLogRepository appends and reads audit entries. There is no update or
// delete path.
type AuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create appends an audit entry
func (r *AuditLogRepository) Create(entry *models.AuditLog) error {
	return r.db.Omit("Actor").Create(entry).Error
}

// ListRecentByActors retrieves the latest entries made by any of the users
func (r *AuditLogRepository) ListRecentByActors(userIDs []uuid.UUID, limit int) ([]models.AuditLog, error) {
	if len(userIDs) == 0 {
		return []models.AuditLog{}, nil
	}
	var entries []models.AuditLog
	err := r.db.Preload("Actor").
		Where("done_by IN ?", userIDs).
		Order("done_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByEntity retrieves the history of one entity, newest first
func (r *AuditLogRepository) ListByEntity(entityType string, entityID uuid.UUID, limit, offset int) ([]models.AuditLog, int64, error) {
	var entries []models.AuditLog
	var total int64

	query := r.db.Model(&models.AuditLog{}).Where("entity_type = ? AND entity_id = ?", entityType, entityID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Actor").Order("done_at DESC").Limit(limit).Offset(offset).Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// List retrieves entries newest first, optionally filtered by entity type and action
func (r *AuditLogRepository) List(entityType, action string, limit, offset int) ([]models.AuditLog, int64, error) {
	var entries []models.AuditLog
	var total int64

	query := r.db.Model(&models.AuditLog{})
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if action != "" {
		query = query.Where("action = ?", action)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Actor").Order("done_at DESC").Limit(limit).Offset(offset).Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
