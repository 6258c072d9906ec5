package repository

import (
	"taskboard-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TeamMemberRepository handles database operations for team memberships
type TeamMemberRepository struct {
	db *gorm.DB
}

// NewTeamMemberRepository creates a new team member repository
func NewTeamMemberRepository(db *gorm.DB) *TeamMemberRepository {
	return &TeamMemberRepository{db: db}
}

// Create creates a new membership
func (r *TeamMemberRepository) Create(member *models.TeamMember) error {
	return r.db.Omit("User").Create(member).Error
}

// GetMembership retrieves the membership of a user in a team
func (r *TeamMemberRepository) GetMembership(teamID, userID uuid.UUID) (*models.TeamMember, error) {
	var member models.TeamMember
	err := r.db.First(&member, "team_id = ? AND user_id = ?", teamID, userID).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetMembershipForUpdate retrieves a membership and locks its row
func (r *TeamMemberRepository) GetMembershipForUpdate(teamID, userID uuid.UUID) (*models.TeamMember, error) {
	var member models.TeamMember
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&member, "team_id = ? AND user_id = ?", teamID, userID).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ListByTeam retrieves all memberships of a team with their users
func (r *TeamMemberRepository) ListByTeam(teamID uuid.UUID) ([]models.TeamMember, error) {
	var members []models.TeamMember
	err := r.db.Preload("User").Where("team_id = ?", teamID).Order("created_at ASC").Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// CountOwners counts Owner memberships of a team
func (r *TeamMemberRepository) CountOwners(teamID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.TeamMember{}).
		Where("team_id = ? AND team_role = ?", teamID, models.TeamRoleOwner).
		Count(&count).Error
	return count, err
}

// UpdateRole changes the role of a membership
func (r *TeamMemberRepository) UpdateRole(id uuid.UUID, role models.TeamRole) error {
	return r.db.Model(&models.TeamMember{}).Where("id = ?", id).Update("team_role", role).Error
}

// Delete removes a membership
func (r *TeamMemberRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.TeamMember{}, "id = ?", id).Error
}

// TeamIDsForUser returns the ids of all teams the user belongs to
func (r *TeamMemberRepository) TeamIDsForUser(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Model(&models.TeamMember{}).
		Joins("JOIN teams ON teams.id = team_members.team_id AND teams.deleted_at IS NULL").
		Where("team_members.user_id = ?", userID).
		Pluck("team_members.team_id", &ids).Error
	return ids, err
}

// UserIDsInTeams returns the distinct users belonging to any of the teams
func (r *TeamMemberRepository) UserIDsInTeams(teamIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := r.db.Model(&models.TeamMember{}).
		Distinct("user_id").
		Where("team_id IN ?", teamIDs).
		Pluck("user_id", &ids).Error
	return ids, err
}
