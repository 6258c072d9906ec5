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

// CommentService handles task comments
type CommentService struct {
	repos     *repository.Repositories
	validator *validator.Validate
}

// NewCommentService creates a new comment service
func NewCommentService(repos *repository.Repositories, validator *validator.Validate) *CommentService {
	return &CommentService{repos: repos, validator: validator}
}

// CreateCommentRequest represents the request to comment on a task
type CreateCommentRequest struct {
	TaskID  uuid.UUID  `json:"task_id" validate:"required"`
	Comment string     `json:"comment" validate:"required,max=5000"`
	ReplyTo *uuid.UUID `json:"reply_to,omitempty"`
}

// UpdateCommentRequest represents the request to edit a comment
type UpdateCommentRequest struct {
	Comment string `json:"comment" validate:"required,max=5000"`
}

// CommentResponse represents a comment in API responses
type CommentResponse struct {
	ID        uuid.UUID    `json:"id"`
	TaskID    uuid.UUID    `json:"task_id"`
	Comment   string       `json:"comment"`
	ReplyTo   *uuid.UUID   `json:"reply_to,omitempty"`
	CreatedBy uuid.UUID    `json:"created_by"`
	Author    *UserSummary `json:"author,omitempty"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at"`
}

// ListByTask returns the comments of a task oldest first
func (s *CommentService) ListByTask(ctx context.Context, actor Actor, taskID uuid.UUID) ([]CommentResponse, error) {
	if err := s.authorizeTask(actor, taskID); err != nil {
		return nil, err
	}
	comments, err := s.repos.Comments.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	items := make([]CommentResponse, len(comments))
	for i := range comments {
		items[i] = toCommentResponse(&comments[i])
	}
	return items, nil
}

// Create adds a comment to a task, optionally replying to a comment of the same task
func (s *CommentService) Create(ctx context.Context, actor Actor, req *CreateCommentRequest) (*CommentResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return nil, err
	}
	if err := s.authorizeTask(actor, req.TaskID); err != nil {
		return nil, err
	}
	if req.ReplyTo != nil {
		parent, err := s.repos.Comments.GetByID(*req.ReplyTo)
		if err != nil && !isRecordNotFound(err) {
			return nil, fmt.Errorf("failed to load replied comment: %w", err)
		}
		if parent == nil || parent.TaskID != req.TaskID {
			return nil, apperrors.NewValidationError("reply_to", "must be a comment on the same task")
		}
	}

	comment := &models.TaskComment{
		TaskID:    req.TaskID,
		Comment:   req.Comment,
		ReplyTo:   req.ReplyTo,
		CreatedBy: actor.ID,
	}
	if err := s.repos.Comments.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	resp := toCommentResponse(comment)
	return &resp, nil
}

// Update edits a comment. Author only.
func (s *CommentService) Update(ctx context.Context, actor Actor, commentID uuid.UUID, req *UpdateCommentRequest) (*CommentResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return nil, err
	}
	comment, err := s.load(commentID)
	if err != nil {
		return nil, err
	}
	if comment.CreatedBy != actor.ID {
		return nil, apperrors.ErrCommentEditDenied
	}
	comment.Comment = req.Comment
	if err := s.repos.Comments.Update(comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	resp := toCommentResponse(comment)
	return &resp, nil
}

// Delete removes a comment. Author only.
func (s *CommentService) Delete(ctx context.Context, actor Actor, commentID uuid.UUID) error {
	comment, err := s.load(commentID)
	if err != nil {
		return err
	}
	if comment.CreatedBy != actor.ID {
		return apperrors.ErrCommentDeleteDenied
	}
	if err := s.repos.Comments.Delete(commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

func (s *CommentService) load(commentID uuid.UUID) (*models.TaskComment, error) {
	comment, err := s.repos.Comments.GetByID(commentID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) authorizeTask(actor Actor, taskID uuid.UUID) error {
	_, err := taskWithAccess(s.repos, actor, taskID)
	return err
}

// taskWithAccess loads a task and requires task access on its project
func taskWithAccess(repos *repository.Repositories, actor Actor, taskID uuid.UUID) (*models.Task, error) {
	task, err := repos.Tasks.GetByID(taskID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	project, err := repos.Projects.GetByID(task.ProjectID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if err := authorizeProject(repos, project, actor.ID, policy.ProjectTaskAccess); err != nil {
		return nil, err
	}
	return task, nil
}

func toCommentResponse(c *models.TaskComment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		Comment:   c.Comment,
		ReplyTo:   c.ReplyTo,
		CreatedBy: c.CreatedBy,
		Author:    toUserSummary(c.Author),
		CreatedAt: formatTime(c.CreatedAt),
		UpdatedAt: formatTime(c.UpdatedAt),
	}
}
