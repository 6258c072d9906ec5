package repository

import (
	"taskboard-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LabelRepository handles database operations for labels
type LabelRepository struct {
	db *gorm.DB
}

// NewLabelRepository creates a new label repository
func NewLabelRepository(db *gorm.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

// Create creates a new label
func (r *LabelRepository) Create(label *models.Label) error {
	return r.db.Create(label).Error
}

// GetByID retrieves a label by ID
func (r *LabelRepository) GetByID(id uuid.UUID) (*models.Label, error) {
	var label models.Label
	err := r.db.First(&label, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &label, nil
}

// GetByIDs retrieves the labels with the given ids
func (r *LabelRepository) GetByIDs(ids []uuid.UUID) ([]models.Label, error) {
	if len(ids) == 0 {
		return []models.Label{}, nil
	}
	var labels []models.Label
	if err := r.db.Where("id IN ?", ids).Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}

// ListByTeam retrieves the labels of a team ordered by name
func (r *LabelRepository) ListByTeam(teamID uuid.UUID) ([]models.Label, error) {
	var labels []models.Label
	err := r.db.Where("team_id = ?", teamID).Order("name ASC").Find(&labels).Error
	if err != nil {
		return nil, err
	}
	return labels, nil
}

// Update updates a label
func (r *LabelRepository) Update(label *models.Label) error {
	return r.db.Save(label).Error
}

// Delete soft-deletes a label and detaches it from tasks
func (r *LabelRepository) Delete(id uuid.UUID) error {
	if err := r.db.Exec("DELETE FROM task_labels WHERE label_id = ?", id).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Label{}, "id = ?", id).Error
}
