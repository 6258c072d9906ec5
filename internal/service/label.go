package service

import (
	"context"
	"fmt"

	"taskboard-backend/internal/database/models"
	apperrors "taskboard-backend/internal/errors"
	"taskboard-backend/internal/policy"
	"taskboard-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// LabelService handles team-scoped labels
type LabelService struct {
	repos     *repository.Repositories
	validator *validator.Validate
}

// NewLabelService creates a new label service
func NewLabelService(repos *repository.Repositories, validator *validator.Validate) *LabelService {
	return &LabelService{repos: repos, validator: validator}
}

// CreateLabelRequest represents the request to create a label
type CreateLabelRequest struct {
	TeamID      uuid.UUID `json:"team_id" validate:"required"`
	Name        string    `json:"name" validate:"required,max=50"`
	Description string    `json:"description" validate:"max=255"`
}

// UpdateLabelRequest represents the request to update a label
type UpdateLabelRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
}

// LabelResponse represents a label in API responses
type LabelResponse struct {
	ID          uuid.UUID `json:"id"`
	TeamID      uuid.UUID `json:"team_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// ListByTeam returns the labels of a team
func (s *LabelService) ListByTeam(ctx context.Context, actor Actor, teamID uuid.UUID) ([]LabelResponse, error) {
	if _, err := authorizeTeam(s.repos.TeamMembers, teamID, actor.ID, policy.TeamView); err != nil {
		return nil, err
	}
	labels, err := s.repos.Labels.ListByTeam(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	items := make([]LabelResponse, len(labels))
	for i := range labels {
		items[i] = toLabelResponse(&labels[i])
	}
	return items, nil
}

// Create creates a label in a team the caller belongs to
func (s *LabelService) Create(ctx context.Context, actor Actor, req *CreateLabelRequest) (*LabelResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return nil, err
	}
	if _, err := authorizeTeam(s.repos.TeamMembers, req.TeamID, actor.ID, policy.TeamManageLabels); err != nil {
		return nil, err
	}

	label := &models.Label{
		TeamID:      req.TeamID,
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   actor.ID,
	}
	if err := s.repos.Labels.Create(label); err != nil {
		return nil, fmt.Errorf("failed to create label: %w", err)
	}
	resp := toLabelResponse(label)
	return &resp, nil
}

// Update changes a label
func (s *LabelService) Update(ctx context.Context, actor Actor, labelID uuid.UUID, req *UpdateLabelRequest) (*LabelResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return nil, err
	}
	label, err := s.load(actor, labelID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		label.Name = *req.Name
	}
	if req.Description != nil {
		label.Description = *req.Description
	}
	if err := s.repos.Labels.Update(label); err != nil {
		return nil, fmt.Errorf("failed to update label: %w", err)
	}
	resp := toLabelResponse(label)
	return &resp, nil
}

// Delete removes a label and detaches it from tasks
func (s *LabelService) Delete(ctx context.Context, actor Actor, labelID uuid.UUID) error {
	if _, err := s.load(actor, labelID); err != nil {
		return err
	}
	if err := s.repos.Labels.Delete(labelID); err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}
	return nil
}

func (s *LabelService) load(actor Actor, labelID uuid.UUID) (*models.Label, error) {
	label, err := s.repos.Labels.GetByID(labelID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperrors.ErrLabelNotFound
		}
		return nil, fmt.Errorf("failed to get label: %w", err)
	}
	if _, err := authorizeTeam(s.repos.TeamMembers, label.TeamID, actor.ID, policy.TeamManageLabels); err != nil {
		return nil, err
	}
	return label, nil
}

func toLabelResponse(l *models.Label) LabelResponse {
	return LabelResponse{ID: l.ID, TeamID: l.TeamID, Name: l.Name, Description: l.Description}
}
