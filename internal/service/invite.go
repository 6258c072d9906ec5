package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskboard-backend/internal/database/models"
	apperrors "taskboard-backend/internal/errors"
	"taskboard-backend/internal/logger"
	"taskboard-backend/internal/policy"
	"taskboard-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	defaultInviteExpiryDays = 7
	defaultInviteUsageLimit = 1
)

var errAlreadyMember = errors.New("user is already a team member")

// Notifier delivers invitation messages
type Notifier interface {
	InviteCreated(ctx context.Context, invite *models.TeamInvite, inviter Actor) error
}

// LogNotifier records invitation messages in the log instead of sending them
type LogNotifier struct{}

// InviteCreated logs the invitation that would have been sent
func (LogNotifier) InviteCreated(ctx context.Context, invite *models.TeamInvite, inviter Actor) error {
	recipient := "open link"
	if invite.InviteeEmail != nil {
		recipient = *invite.InviteeEmail
	}
	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"invite_id":  invite.ID.String(),
		"team_id":    invite.TeamID.String(),
		"recipient":  recipient,
		"inviter":    inviter.Email,
		"expires_at": formatTime(invite.ExpiresAt),
	}).Info("team invitation issued")
	return nil
}

// InviteService handles the team invitation lifecycle
type InviteService struct {
	repos     *repository.Repositories
	tx        repository.TxManagerInterface
	notifier  Notifier
	validator *validator.Validate
	now       func() time.Time
}

// NewInviteService creates a new invite service
func NewInviteService(repos *repository.Repositories, tx repository.TxManagerInterface, notifier Notifier, validator *validator.Validate) *InviteService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &InviteService{
		repos:     repos,
		tx:        tx,
		notifier:  notifier,
		validator: validator,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateInviteRequest represents the request to invite someone to a team.
// Without an email the invite works as a shareable link.
type CreateInviteRequest struct {
	TeamID       uuid.UUID `json:"team_id" validate:"required"`
	InviteeEmail *string   `json:"invitee_email,omitempty" validate:"omitempty,email,max=255"`
	UsageLimit   *int      `json:"usage_limit,omitempty" validate:"omitempty,gte=1,lte=100"`
	ExpiryDays   *int      `json:"expiry_days,omitempty" validate:"omitempty,gte=1,lte=365"`
}

// InviteResponse represents an invitation in API responses
type InviteResponse struct {
	ID           uuid.UUID           `json:"id"`
	TeamID       uuid.UUID           `json:"team_id"`
	TeamName     string              `json:"team_name,omitempty"`
	InviteeEmail *string             `json:"invitee_email,omitempty"`
	Status       models.InviteStatus `json:"status"`
	UsageLimit   int                 `json:"usage_limit"`
	UsedCount    int                 `json:"used_count"`
	ExpiresAt    string              `json:"expires_at"`
	CreatedBy    uuid.UUID           `json:"created_by"`
	CreatedAt    string              `json:"created_at"`
}

// Create issues an invitation. Owner or Admin only.
func (s *InviteService) Create(ctx context.Context, actor Actor, req *CreateInviteRequest) (*InviteResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return nil, err
	}
	if _, err := s.repos.Teams.GetByID(req.TeamID); err != nil {
		if isRecordNotFound(err) {
			return nil, apperrors.ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to verify team: %w", err)
	}
	if _, err := authorizeTeam(s.repos.TeamMembers, req.TeamID, actor.ID, policy.TeamManageInvites); err != nil {
		return nil, err
	}

	limit := defaultInviteUsageLimit
	if req.UsageLimit != nil {
		limit = *req.UsageLimit
	}
	days := defaultInviteExpiryDays
	if req.ExpiryDays != nil {
		days = *req.ExpiryDays
	}
	var email *string
	if req.InviteeEmail != nil && strings.TrimSpace(*req.InviteeEmail) != "" {
		e := strings.ToLower(strings.TrimSpace(*req.InviteeEmail))
		email = &e
	}

	invite := &models.TeamInvite{
		TeamID:       req.TeamID,
		InviteeEmail: email,
		ExpiresAt:    s.now().AddDate(0, 0, days),
		Status:       models.InviteStatusPending,
		UsageLimit:   limit,
		CreatedBy:    actor.ID,
	}
	if err := s.repos.Invites.Create(invite); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	if err := s.notifier.InviteCreated(ctx, invite, actor); err != nil {
		logger.WithContext(ctx).WithField("invite_id", invite.ID.String()).Warnf("failed to notify invitee: %v", err)
	}

	resp := toInviteResponse(invite)
	return &resp, nil
}

// ListForTeam returns all invitations of a team
func (s *InviteService) ListForTeam(ctx context.Context, actor Actor, teamID uuid.UUID) ([]InviteResponse, error) {
	if _, err := authorizeTeam(s.repos.TeamMembers, teamID, actor.ID, policy.TeamView); err != nil {
		return nil, err
	}
	invites, err := s.repos.Invites.ListByTeam(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return toInviteResponses(invites), nil
}

// MyInvites returns the pending invitations addressed to the caller
func (s *InviteService) MyInvites(ctx context.Context, actor Actor) ([]InviteResponse, error) {
	invites, err := s.repos.Invites.ListPendingForEmail(actor.Email, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return toInviteResponses(invites), nil
}

// Get returns an invitation to its addressee, to anyone holding an open link,
// or to members of the team
func (s *InviteService) Get(ctx context.Context, actor Actor, inviteID uuid.UUID) (*InviteResponse, error) {
	invite, err := s.load(inviteID)
	if err != nil {
		return nil, err
	}
	if !invite.AddressedTo(actor.Email) {
		if _, err := authorizeTeam(s.repos.TeamMembers, invite.TeamID, actor.ID, policy.TeamView); err != nil {
			return nil, err
		}
	}
	resp := toInviteResponse(invite)
	return &resp, nil
}

// Accept grants the caller Member role in the invitation's team. Each accept
// takes one use; the invite turns Accepted once its usage limit is reached.
// Accepting into a team the caller already belongs to succeeds without
// taking a use.
func (s *InviteService) Accept(ctx context.Context, actor Actor, inviteID uuid.UUID) (*InviteResponse, error) {
	invite, err := s.load(inviteID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.acceptable(invite, now); err != nil {
		if errors.Is(err, apperrors.ErrInviteExpired) && invite.Status == models.InviteStatusPending {
			if _, terr := s.repos.Invites.TransitionFromPending(invite.ID, models.InviteStatusExpired); terr != nil {
				logger.WithContext(ctx).WithField("invite_id", invite.ID.String()).Warnf("failed to expire invitation: %v", terr)
			}
		}
		return nil, err
	}
	if !invite.AddressedTo(actor.Email) {
		return nil, apperrors.ErrInviteEmailMismatch
	}

	existing, err := teamMembership(s.repos.TeamMembers, invite.TeamID, actor.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		resp := toInviteResponse(invite)
		return &resp, nil
	}

	err = s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		ok, err := r.Invites.ConsumeUse(invite.ID, now)
		if err != nil {
			return fmt.Errorf("failed to consume invitation: %w", err)
		}
		if !ok {
			// Another accept won the last use, or the invite changed state.
			fresh, err := r.Invites.GetByID(invite.ID)
			if err != nil {
				return fmt.Errorf("failed to reload invitation: %w", err)
			}
			if err := s.acceptable(fresh, now); err != nil {
				return err
			}
			return apperrors.ErrInviteNotPending
		}

		member := &models.TeamMember{TeamID: invite.TeamID, UserID: actor.ID, TeamRole: models.TeamRoleMember}
		if err := r.TeamMembers.Create(member); err != nil {
			if isUniqueViolation(err) {
				return errAlreadyMember
			}
			return fmt.Errorf("failed to add team member: %w", err)
		}
		return recordAudit(r.AuditLogs, AuditEvent{
			Action:     models.AuditActionJoinedTeam,
			EntityType: models.EntityTeam,
			EntityID:   invite.TeamID,
			New:        memberSnapshot{UserID: actor.ID, TeamRole: models.TeamRoleMember},
			Actor:      actor.ID,
		})
	})
	if err != nil && !errors.Is(err, errAlreadyMember) {
		return nil, err
	}

	if err == nil {
		logger.WithContext(ctx).WithEntity(models.EntityTeam, invite.TeamID).Info("invitation accepted")
	}
	fresh, err := s.load(invite.ID)
	if err != nil {
		return nil, err
	}
	resp := toInviteResponse(fresh)
	return &resp, nil
}

// Decline rejects an invitation addressed to the caller. Declining an open
// link invitation leaves it usable by others.
func (s *InviteService) Decline(ctx context.Context, actor Actor, inviteID uuid.UUID) (*InviteResponse, error) {
	invite, err := s.load(inviteID)
	if err != nil {
		return nil, err
	}
	if invite.Status != models.InviteStatusPending {
		return nil, apperrors.ErrInviteNotPending
	}
	if invite.InviteeEmail == nil {
		resp := toInviteResponse(invite)
		return &resp, nil
	}
	if !invite.AddressedTo(actor.Email) {
		return nil, apperrors.ErrInviteEmailMismatch
	}

	ok, err := s.repos.Invites.TransitionFromPending(invite.ID, models.InviteStatusDeclined)
	if err != nil {
		return nil, fmt.Errorf("failed to decline invitation: %w", err)
	}
	if !ok {
		return nil, apperrors.ErrInviteNotPending
	}
	invite.Status = models.InviteStatusDeclined
	resp := toInviteResponse(invite)
	return &resp, nil
}

// Revoke withdraws a pending invitation. Owner or Admin only.
func (s *InviteService) Revoke(ctx context.Context, actor Actor, inviteID uuid.UUID) (*InviteResponse, error) {
	invite, err := s.load(inviteID)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeTeam(s.repos.TeamMembers, invite.TeamID, actor.ID, policy.TeamManageInvites); err != nil {
		if apperrors.IsAuthorization(err) {
			return nil, apperrors.ErrInviteRevokeDenied
		}
		return nil, err
	}
	if invite.Status != models.InviteStatusPending {
		return nil, apperrors.ErrInviteNotPending
	}

	ok, err := s.repos.Invites.TransitionFromPending(invite.ID, models.InviteStatusRevoked)
	if err != nil {
		return nil, fmt.Errorf("failed to revoke invitation: %w", err)
	}
	if !ok {
		return nil, apperrors.ErrInviteNotPending
	}
	invite.Status = models.InviteStatusRevoked
	logger.WithContext(ctx).WithField("invite_id", invite.ID.String()).Info("invitation revoked")
	resp := toInviteResponse(invite)
	return &resp, nil
}

// acceptable reports why an invitation cannot take another accept, if it cannot
func (s *InviteService) acceptable(invite *models.TeamInvite, now time.Time) error {
	if invite.Status == models.InviteStatusAccepted && !invite.HasCapacity() {
		return apperrors.ErrInviteUsageLimit
	}
	if invite.Status != models.InviteStatusPending {
		return apperrors.ErrInviteNotPending
	}
	if invite.IsExpired(now) {
		return apperrors.ErrInviteExpired
	}
	if !invite.HasCapacity() {
		return apperrors.ErrInviteUsageLimit
	}
	return nil
}

func (s *InviteService) load(inviteID uuid.UUID) (*models.TeamInvite, error) {
	invite, err := s.repos.Invites.GetByID(inviteID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperrors.ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return invite, nil
}

func toInviteResponses(invites []models.TeamInvite) []InviteResponse {
	items := make([]InviteResponse, len(invites))
	for i := range invites {
		items[i] = toInviteResponse(&invites[i])
	}
	return items
}

func toInviteResponse(i *models.TeamInvite) InviteResponse {
	resp := InviteResponse{
		ID:           i.ID,
		TeamID:       i.TeamID,
		InviteeEmail: i.InviteeEmail,
		Status:       i.Status,
		UsageLimit:   i.UsageLimit,
		UsedCount:    i.UsedCount,
		ExpiresAt:    formatTime(i.ExpiresAt),
		CreatedBy:    i.CreatedBy,
		CreatedAt:    formatTime(i.CreatedAt),
	}
	if i.Team != nil {
		resp.TeamName = i.Team.Name
	}
	return resp
}
