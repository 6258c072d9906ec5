package service

import (
	"context"
	"fmt"

	"taskboard-backend/internal/database/models"
	apperrors "taskboard-backend/internal/errors"
	"taskboard-backend/internal/logger"
	"taskboard-backend/internal/policy"
	"taskboard-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TeamService handles business logic for teams and team membership
type TeamService struct {
	repos     *repository.Repositories
	tx        repository.TxManagerInterface
	validator *validator.Validate
}

// NewTeamService creates a new team service
func NewTeamService(repos *repository.Repositories, tx repository.TxManagerInterface, validator *validator.Validate) *TeamService {
	return &TeamService{
		repos:     repos,
		tx:        tx,
		validator: validator,
	}
}

// CreateTeamRequest represents the request to create a team
type CreateTeamRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

// UpdateTeamRequest represents the request to update a team
type UpdateTeamRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// TransferOwnershipRequest names the member who becomes the owner
type TransferOwnershipRequest struct {
	NewOwnerID uuid.UUID `json:"new_owner_id" validate:"required"`
}

// UpdateMemberRoleRequest represents a team role change
type UpdateMemberRoleRequest struct {
	UserID uuid.UUID       `json:"user_id" validate:"required"`
	Role   models.TeamRole `json:"role" validate:"required"`
}

// RemoveMemberRequest names the member to remove
type RemoveMemberRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// TeamMemberResponse is one team member with their role
type TeamMemberResponse struct {
	UserID   uuid.UUID       `json:"user_id"`
	TeamRole models.TeamRole `json:"team_role"`
	User     *UserSummary    `json:"user,omitempty"`
	JoinedAt string          `json:"joined_at"`
}

// TeamResponse represents the response for team operations
type TeamResponse struct {
	ID           uuid.UUID            `json:"id"`
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	CreatedBy    uuid.UUID            `json:"created_by"`
	MembersCount int                  `json:"members_count"`
	ProjectCount int                  `json:"projects_count"`
	Members      []TeamMemberResponse `json:"members,omitempty"`
	Projects     []ProjectSummary     `json:"projects,omitempty"`
	CreatedAt    string               `json:"created_at"`
	UpdatedAt    string               `json:"updated_at"`
}

// TeamListResponse represents a paginated list of teams
type TeamListResponse struct {
	Teams    []TeamResponse `json:"teams"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

type teamSnapshot struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   uuid.UUID `json:"created_by"`
}

func snapshotTeam(team *models.Team) teamSnapshot {
	return teamSnapshot{Name: team.Name, Description: team.Description, CreatedBy: team.CreatedBy}
}

type memberSnapshot struct {
	UserID   uuid.UUID       `json:"user_id"`
	TeamRole models.TeamRole `json:"team_role"`
}

// Create creates a team and makes the caller its owner
func (s *TeamService) Create(ctx context.Context, actor Actor, req *CreateTeamRequest) (*TeamResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return nil, err
	}

	team := &models.Team{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   actor.ID,
	}
	err := s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		if err := r.Teams.Create(team); err != nil {
			return fmt.Errorf("failed to create team: %w", err)
		}
		owner := &models.TeamMember{TeamID: team.ID, UserID: actor.ID, TeamRole: models.TeamRoleOwner}
		if err := r.TeamMembers.Create(owner); err != nil {
			return fmt.Errorf("failed to add team owner: %w", err)
		}
		team.Members = []models.TeamMember{*owner}
		return recordAudit(r.AuditLogs, AuditEvent{
			Action:     models.AuditActionCreated,
			EntityType: models.EntityTeam,
			EntityID:   team.ID,
			New:        snapshotTeam(team),
			Actor:      actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).WithEntity(models.EntityTeam, team.ID).Info("team created")
	resp := toTeamResponse(team, false)
	return &resp, nil
}

// List returns the teams the caller belongs to
func (s *TeamService) List(ctx context.Context, actor Actor, page, pageSize int) (*TeamListResponse, error) {
	page, pageSize = normalizePage(page, pageSize)
	teams, total, err := s.repos.Teams.ListForUser(actor.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	items := make([]TeamResponse, len(teams))
	for i := range teams {
		items[i] = toTeamResponse(&teams[i], false)
	}
	return &TeamListResponse{Teams: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get returns a team with its members and projects
func (s *TeamService) Get(ctx context.Context, actor Actor, teamID uuid.UUID) (*TeamResponse, error) {
	if _, err := authorizeTeam(s.repos.TeamMembers, teamID, actor.ID, policy.TeamView); err != nil {
		return nil, err
	}
	team, err := s.repos.Teams.GetWithDetails(teamID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperrors.ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	resp := toTeamResponse(team, true)
	return &resp, nil
}

// Update changes the name or description of a team
func (s *TeamService) Update(ctx context.Context, actor Actor, teamID uuid.UUID, req *UpdateTeamRequest) (*TeamResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return nil, err
	}
	team, err := s.loadTeam(teamID)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeTeam(s.repos.TeamMembers, teamID, actor.ID, policy.TeamUpdate); err != nil {
		return nil, err
	}

	before := snapshotTeam(team)
	if req.Name != nil {
		team.Name = *req.Name
	}
	if req.Description != nil {
		team.Description = *req.Description
	}

	err = s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		if err := r.Teams.Update(team); err != nil {
			return fmt.Errorf("failed to update team: %w", err)
		}
		return recordAudit(r.AuditLogs, AuditEvent{
			Action:     models.AuditActionUpdated,
			EntityType: models.EntityTeam,
			EntityID:   team.ID,
			Old:        before,
			New:        snapshotTeam(team),
			Actor:      actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	resp := toTeamResponse(team, false)
	return &resp, nil
}

// Delete soft-deletes a team. Owner only.
func (s *TeamService) Delete(ctx context.Context, actor Actor, teamID uuid.UUID) error {
	team, err := s.loadTeam(teamID)
	if err != nil {
		return err
	}
	if _, err := authorizeTeam(s.repos.TeamMembers, teamID, actor.ID, policy.TeamDelete); err != nil {
		return err
	}

	err = s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		if err := r.Teams.Delete(teamID); err != nil {
			return fmt.Errorf("failed to delete team: %w", err)
		}
		return recordAudit(r.AuditLogs, AuditEvent{
			Action:     models.AuditActionDeleted,
			EntityType: models.EntityTeam,
			EntityID:   teamID,
			Old:        snapshotTeam(team),
			Actor:      actor.ID,
		})
	})
	if err != nil {
		return err
	}

	logger.WithContext(ctx).WithEntity(models.EntityTeam, teamID).Info("team deleted")
	return nil
}

// Leave removes the caller from a team. The owner must transfer ownership first.
func (s *TeamService) Leave(ctx context.Context, actor Actor, teamID uuid.UUID) error {
	if _, err := s.loadTeam(teamID); err != nil {
		return err
	}
	member, err := authorizeTeam(s.repos.TeamMembers, teamID, actor.ID, policy.TeamLeave)
	if err != nil {
		return err
	}
	if member.TeamRole == models.TeamRoleOwner {
		return apperrors.ErrOwnerCannotLeave
	}

	return s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		if err := r.TeamMembers.Delete(member.ID); err != nil {
			return fmt.Errorf("failed to leave team: %w", err)
		}
		return recordAudit(r.AuditLogs, AuditEvent{
			Action:     models.AuditActionLeftTeam,
			EntityType: models.EntityTeam,
			EntityID:   teamID,
			Old:        memberSnapshot{UserID: member.UserID, TeamRole: member.TeamRole},
			Actor:      actor.ID,
		})
	})
}

// TransferOwnership hands the Owner role to another member. The team row and
// both memberships are locked for the duration of the transaction; the old
// owner is demoted before the new one is promoted so the single-owner index
// never sees two owners.
func (s *TeamService) TransferOwnership(ctx context.Context, actor Actor, teamID uuid.UUID, req *TransferOwnershipRequest) (*TeamResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return nil, err
	}

	var team *models.Team
	err := s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		var err error
		team, err = r.Teams.GetByIDForUpdate(teamID)
		if err != nil {
			if isRecordNotFound(err) {
				return apperrors.ErrTeamNotFound
			}
			return fmt.Errorf("failed to lock team: %w", err)
		}

		current, err := r.TeamMembers.GetMembershipForUpdate(teamID, actor.ID)
		if err != nil && !isRecordNotFound(err) {
			return fmt.Errorf("failed to lock team membership: %w", err)
		}
		if err := policy.AuthorizeTeam(current, policy.TeamTransferOwnership); err != nil {
			return err
		}
		if req.NewOwnerID == actor.ID {
			return apperrors.ErrAlreadyOwner
		}

		target, err := r.TeamMembers.GetMembershipForUpdate(teamID, req.NewOwnerID)
		if err != nil {
			if isRecordNotFound(err) {
				return apperrors.ErrNewOwnerNotMember
			}
			return fmt.Errorf("failed to lock team membership: %w", err)
		}

		before := snapshotTeam(team)
		if err := r.TeamMembers.UpdateRole(current.ID, models.TeamRoleAdmin); err != nil {
			return fmt.Errorf("failed to demote previous owner: %w", err)
		}
		if err := r.TeamMembers.UpdateRole(target.ID, models.TeamRoleOwner); err != nil {
			return fmt.Errorf("failed to promote new owner: %w", err)
		}
		team.CreatedBy = target.UserID
		if err := r.Teams.Update(team); err != nil {
			return fmt.Errorf("failed to update team owner: %w", err)
		}

		return recordAudit(r.AuditLogs, AuditEvent{
			Action:     models.AuditActionOwnershipTransferred,
			EntityType: models.EntityTeam,
			EntityID:   team.ID,
			Old:        before,
			New:        snapshotTeam(team),
			Actor:      actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).WithEntity(models.EntityTeam, teamID).
		WithField("new_owner_id", req.NewOwnerID.String()).
		Info("team ownership transferred")
	resp := toTeamResponse(team, false)
	return &resp, nil
}

// UpdateMemberRole changes the role of a non-owner member to Admin or Member
func (s *TeamService) UpdateMemberRole(ctx context.Context, actor Actor, teamID uuid.UUID, req *UpdateMemberRoleRequest) (*TeamMemberResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return nil, err
	}
	if !policy.AssignableTeamRole(req.Role) {
		return nil, apperrors.NewValidationError("role", "must be one of: Admin Member")
	}
	if _, err := s.loadTeam(teamID); err != nil {
		return nil, err
	}
	if _, err := authorizeTeam(s.repos.TeamMembers, teamID, actor.ID, policy.TeamChangeMemberRole); err != nil {
		return nil, err
	}

	target, err := s.loadMember(teamID, req.UserID)
	if err != nil {
		return nil, err
	}
	if target.TeamRole == models.TeamRoleOwner {
		return nil, apperrors.ErrCannotChangeOwnerRole
	}

	before := memberSnapshot{UserID: target.UserID, TeamRole: target.TeamRole}
	err = s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		if err := r.TeamMembers.UpdateRole(target.ID, req.Role); err != nil {
			return fmt.Errorf("failed to update member role: %w", err)
		}
		return recordAudit(r.AuditLogs, AuditEvent{
			Action:     models.AuditActionMemberRoleChanged,
			EntityType: models.EntityTeam,
			EntityID:   teamID,
			Old:        before,
			New:        memberSnapshot{UserID: target.UserID, TeamRole: req.Role},
			Actor:      actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	target.TeamRole = req.Role
	resp := toTeamMemberResponse(target)
	return &resp, nil
}

// RemoveMember removes a non-owner member from the team
func (s *TeamService) RemoveMember(ctx context.Context, actor Actor, teamID uuid.UUID, req *RemoveMemberRequest) error {
	if err := validateStruct(s.validator, req); err != nil {
		return err
	}
	if _, err := s.loadTeam(teamID); err != nil {
		return err
	}
	if _, err := authorizeTeam(s.repos.TeamMembers, teamID, actor.ID, policy.TeamRemoveMember); err != nil {
		return err
	}

	target, err := s.loadMember(teamID, req.UserID)
	if err != nil {
		return err
	}
	if target.TeamRole == models.TeamRoleOwner {
		return apperrors.ErrCannotRemoveOwner
	}

	return s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		if err := r.TeamMembers.Delete(target.ID); err != nil {
			return fmt.Errorf("failed to remove team member: %w", err)
		}
		return recordAudit(r.AuditLogs, AuditEvent{
			Action:     models.AuditActionMemberRemoved,
			EntityType: models.EntityTeam,
			EntityID:   teamID,
			Old:        memberSnapshot{UserID: target.UserID, TeamRole: target.TeamRole},
			Actor:      actor.ID,
		})
	})
}

func (s *TeamService) loadTeam(teamID uuid.UUID) (*models.Team, error) {
	team, err := s.repos.Teams.GetByID(teamID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperrors.ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

func (s *TeamService) loadMember(teamID, userID uuid.UUID) (*models.TeamMember, error) {
	member, err := s.repos.TeamMembers.GetMembership(teamID, userID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperrors.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get team member: %w", err)
	}
	return member, nil
}

func toTeamMemberResponse(m *models.TeamMember) TeamMemberResponse {
	return TeamMemberResponse{
		UserID:   m.UserID,
		TeamRole: m.TeamRole,
		User:     toUserSummary(m.User),
		JoinedAt: formatTime(m.CreatedAt),
	}
}

func toTeamResponse(team *models.Team, details bool) TeamResponse {
	resp := TeamResponse{
		ID:           team.ID,
		Name:         team.Name,
		Description:  team.Description,
		CreatedBy:    team.CreatedBy,
		MembersCount: len(team.Members),
		ProjectCount: len(team.Projects),
		CreatedAt:    formatTime(team.CreatedAt),
		UpdatedAt:    formatTime(team.UpdatedAt),
	}
	if details {
		resp.Members = make([]TeamMemberResponse, len(team.Members))
		for i := range team.Members {
			resp.Members[i] = toTeamMemberResponse(&team.Members[i])
		}
		resp.Projects = make([]ProjectSummary, len(team.Projects))
		for i := range team.Projects {
			resp.Projects[i] = toProjectSummary(&team.Projects[i])
		}
	}
	return resp
}
