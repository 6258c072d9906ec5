package repository

import (
	"taskboard-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TeamRepository handles database operations for teams
type TeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// Create creates a new team
func (r *TeamRepository) Create(team *models.Team) error {
	return r.db.Omit("Members", "Projects", "Labels").Create(team).Error
}

// GetByID retrieves a team by ID
func (r *TeamRepository) GetByID(id uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := r.db.First(&team, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// GetByIDForUpdate retrieves a team and locks its row until the surrounding
// transaction ends
func (r *TeamRepository) GetByIDForUpdate(id uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&team, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// GetWithDetails retrieves a team with its members (and their users) and projects
func (r *TeamRepository) GetWithDetails(id uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := r.db.
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Members.User").
		Preload("Projects", func(db *gorm.DB) *gorm.DB { return db.Order("updated_at DESC") }).
		First(&team, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// ListForUser retrieves the teams a user belongs to with pagination. Members
// and projects are loaded so callers can report counts.
func (r *TeamRepository) ListForUser(userID uuid.UUID, limit, offset int) ([]models.Team, int64, error) {
	var teams []models.Team
	var total int64

	query := r.db.Model(&models.Team{}).
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Members").
		Preload("Projects").
		Order("teams.updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&teams).Error
	if err != nil {
		return nil, 0, err
	}

	return teams, total, nil
}

// SearchForUser finds teams of a user whose name or description contains query
func (r *TeamRepository) SearchForUser(userID uuid.UUID, query string, limit int) ([]models.Team, error) {
	var teams []models.Team
	like := containsPattern(query)
	err := r.db.
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Where("teams.name ILIKE ? ESCAPE '\\' OR teams.description ILIKE ? ESCAPE '\\'", like, like).
		Order("teams.name ASC").
		Limit(limit).
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// Update updates a team
func (r *TeamRepository) Update(team *models.Team) error {
	return r.db.Omit("Members", "Projects", "Labels").Save(team).Error
}

// Delete soft-deletes a team
func (r *TeamRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Team{}, "id = ?", id).Error
}
