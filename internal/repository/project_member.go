package repository

import (
	"taskboard-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectMemberRepository handles database operations for project memberships
type ProjectMemberRepository struct {
	db *gorm.DB
}

// NewProjectMemberRepository creates a new project member repository
func NewProjectMemberRepository(db *gorm.DB) *ProjectMemberRepository {
	return &ProjectMemberRepository{db: db}
}

// Create creates a new project membership
func (r *ProjectMemberRepository) Create(member *models.ProjectMember) error {
	return r.db.Omit("User").Create(member).Error
}

// GetMembership retrieves the membership of a user in a project
func (r *ProjectMemberRepository) GetMembership(projectID, userID uuid.UUID) (*models.ProjectMember, error) {
	var member models.ProjectMember
	err := r.db.First(&member, "project_id = ? AND user_id = ?", projectID, userID).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ListByProject retrieves the members of a project with their users
func (r *ProjectMemberRepository) ListByProject(projectID uuid.UUID) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	err := r.db.Preload("User").Where("project_id = ?", projectID).Order("created_at ASC").Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// Delete removes a project membership
func (r *ProjectMemberRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.ProjectMember{}, "id = ?", id).Error
}
