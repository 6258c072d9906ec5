package repository

import (
	"taskboard-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectRepository handles database operations for projects
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(project *models.Project) error {
	return r.db.Omit("Team", "Members").Create(project).Error
}

// GetByID retrieves an active project by ID
func (r *ProjectRepository) GetByID(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetByIDWithArchived retrieves a project by ID including archived ones
func (r *ProjectRepository) GetByIDWithArchived(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.Unscoped().First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetWithDetails retrieves a project with its team and members
func (r *ProjectRepository) GetWithDetails(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.
		Preload("Team").
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Members.User").
		First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ListForUser retrieves the projects a user is a member of with pagination
func (r *ProjectRepository) ListForUser(userID uuid.UUID, limit, offset int) ([]models.Project, int64, error) {
	var projects []models.Project
	var total int64

	query := r.db.Model(&models.Project{}).
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Team").Order("projects.updated_at DESC").Limit(limit).Offset(offset).Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// ListByTeam retrieves the active projects of a team
func (r *ProjectRepository) ListByTeam(teamID uuid.UUID) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Where("team_id = ?", teamID).Order("updated_at DESC").Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// SearchInTeams finds projects of the given teams whose name or description contains query
func (r *ProjectRepository) SearchInTeams(teamIDs []uuid.UUID, query string, limit int) ([]models.Project, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	var projects []models.Project
	like := containsPattern(query)
	err := r.db.
		Where("team_id IN ?", teamIDs).
		Where("name ILIKE ? ESCAPE '\\' OR description ILIKE ? ESCAPE '\\'", like, like).
		Order("name ASC").
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// IDsForMember returns the ids of active projects the user is a member of
func (r *ProjectRepository) IDsForMember(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Model(&models.Project{}).
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ?", userID).
		Pluck("projects.id", &ids).Error
	return ids, err
}

// Update updates a project
func (r *ProjectRepository) Update(project *models.Project) error {
	return r.db.Omit("Team", "Members").Save(project).Error
}

// Delete archives (soft-deletes) a project
func (r *ProjectRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Project{}, "id = ?", id).Error
}

// Restore clears the archive marker of a project
func (r *ProjectRepository) Restore(id uuid.UUID) error {
	return r.db.Unscoped().Model(&models.Project{}).Where("id = ?", id).Update("deleted_at", nil).Error
}
