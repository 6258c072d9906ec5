package service

import (
	"context"
	"encoding/json"
	"fmt"

	"taskboard-backend/internal/database/models"
	apperrors "taskboard-backend/internal/errors"
	"taskboard-backend/internal/policy"
	"taskboard-backend/internal/repository"

	"github.com/google/uuid"
)

// AuditService reads the audit log
type AuditService struct {
	repos *repository.Repositories
}

// NewAuditService creates a new audit service
func NewAuditService(repos *repository.Repositories) *AuditService {
	return &AuditService{repos: repos}
}

// AuditLogResponse represents one audit entry
type AuditLogResponse struct {
	ID         uuid.UUID       `json:"id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id"`
	OldValues  json.RawMessage `json:"old_values,omitempty" swaggertype:"object"`
	NewValues  json.RawMessage `json:"new_values,omitempty" swaggertype:"object"`
	DoneBy     uuid.UUID       `json:"done_by"`
	Actor      *UserSummary    `json:"actor,omitempty"`
	DoneAt     string          `json:"done_at"`
}

// AuditLogListResponse represents a paginated list of audit entries
type AuditLogListResponse struct {
	Entries  []AuditLogResponse `json:"entries"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// Recent returns the latest entries written by anyone sharing a team with the caller
func (s *AuditService) Recent(ctx context.Context, actor Actor, limit int) ([]AuditLogResponse, error) {
	teamIDs, err := s.repos.TeamMembers.TeamIDsForUser(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve teams: %w", err)
	}
	userIDs := []uuid.UUID{actor.ID}
	if len(teamIDs) > 0 {
		userIDs, err = s.repos.TeamMembers.UserIDsInTeams(teamIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve teammates: %w", err)
		}
	}
	entries, err := s.repos.AuditLogs.ListRecentByActors(userIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log: %w", err)
	}
	return toAuditLogResponses(entries), nil
}

// History returns the entries of one entity to callers who may view it
func (s *AuditService) History(ctx context.Context, actor Actor, entityType string, entityID uuid.UUID, page, pageSize int) (*AuditLogListResponse, error) {
	if err := s.authorizeView(actor, entityType, entityID); err != nil {
		return nil, err
	}
	page, pageSize = normalizePage(page, pageSize)
	entries, total, err := s.repos.AuditLogs.ListByEntity(entityType, entityID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log: %w", err)
	}
	return &AuditLogListResponse{
		Entries:  toAuditLogResponses(entries),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *AuditService) authorizeView(actor Actor, entityType string, entityID uuid.UUID) error {
	switch entityType {
	case models.EntityTeam:
		_, err := authorizeTeam(s.repos.TeamMembers, entityID, actor.ID, policy.TeamView)
		return err
	case models.EntityProject:
		project, err := s.repos.Projects.GetByIDWithArchived(entityID)
		if err != nil {
			if isRecordNotFound(err) {
				return apperrors.ErrProjectNotFound
			}
			return fmt.Errorf("failed to get project: %w", err)
		}
		return authorizeProject(s.repos, project, actor.ID, policy.ProjectView)
	case models.EntityTask:
		_, err := taskWithAccess(s.repos, actor, entityID)
		return err
	}
	return apperrors.NewValidationError("entity_type", "must be one of: team project task")
}

func toAuditLogResponses(entries []models.AuditLog) []AuditLogResponse {
	items := make([]AuditLogResponse, len(entries))
	for i := range entries {
		e := &entries[i]
		items[i] = AuditLogResponse{
			ID:         e.ID,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			OldValues:  json.RawMessage(e.OldValues),
			NewValues:  json.RawMessage(e.NewValues),
			DoneBy:     e.DoneBy,
			Actor:      toUserSummary(e.Actor),
			DoneAt:     formatTime(e.DoneAt),
		}
	}
	return items
}
