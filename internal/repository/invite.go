package repository

import (
	"strings"
	"time"

	"taskboard-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InviteRepository handles database operations for team invitations
type InviteRepository struct {
	db *gorm.DB
}

// NewInviteRepository creates a new invite repository
func NewInviteRepository(db *gorm.DB) *InviteRepository {
	return &InviteRepository{db: db}
}

// Create creates a new invitation
func (r *InviteRepository) Create(invite *models.TeamInvite) error {
	return r.db.Omit("Team").Create(invite).Error
}

// GetByID retrieves an invitation with its team
func (r *InviteRepository) GetByID(id uuid.UUID) (*models.TeamInvite, error) {
	var invite models.TeamInvite
	err := r.db.Preload("Team").First(&invite, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// ListByTeam retrieves the invitations of a team, newest first
func (r *InviteRepository) ListByTeam(teamID uuid.UUID) ([]models.TeamInvite, error) {
	var invites []models.TeamInvite
	err := r.db.Where("team_id = ?", teamID).Order("created_at DESC").Find(&invites).Error
	if err != nil {
		return nil, err
	}
	return invites, nil
}

// ListPendingForEmail retrieves unexpired pending invitations addressed to email
func (r *InviteRepository) ListPendingForEmail(email string, now time.Time) ([]models.TeamInvite, error) {
	var invites []models.TeamInvite
	err := r.db.Preload("Team").
		Where("LOWER(invitee_email) = ?", strings.ToLower(email)).
		Where("status = ? AND expires_at > ?", models.InviteStatusPending, now).
		Order("created_at DESC").
		Find(&invites).Error
	if err != nil {
		return nil, err
	}
	return invites, nil
}

// TransitionFromPending moves a pending invitation to status. It reports
// false when the invitation was no longer pending.
func (r *InviteRepository) TransitionFromPending(id uuid.UUID, status models.InviteStatus) (bool, error) {
	res := r.db.Model(&models.TeamInvite{}).
		Where("id = ? AND status = ?", id, models.InviteStatusPending).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ConsumeUse atomically takes one use of a pending, unexpired invitation that
// still has capacity, flipping it to Accepted when the limit is reached. It
// reports false when no use could be taken.
func (r *InviteRepository) ConsumeUse(id uuid.UUID, now time.Time) (bool, error) {
	res := r.db.Model(&models.TeamInvite{}).
		Where("id = ? AND status = ? AND used_count < usage_limit AND expires_at > ?", id, models.InviteStatusPending, now).
		Updates(map[string]interface{}{
			"used_count": gorm.Expr("used_count + 1"),
			"status":     gorm.Expr("CASE WHEN used_count + 1 >= usage_limit THEN ? ELSE status END", models.InviteStatusAccepted),
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
