package repository

import (
	"context"
	"time"

	"taskboard-backend/internal/database/models"

	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/repository_mocks.go -package=mocks

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Update(user *models.User) error
}

// TeamRepositoryInterface defines the interface for team repository operations
type TeamRepositoryInterface interface {
	Create(team *models.Team) error
	GetByID(id uuid.UUID) (*models.Team, error)
	GetByIDForUpdate(id uuid.UUID) (*models.Team, error)
	GetWithDetails(id uuid.UUID) (*models.Team, error)
	ListForUser(userID uuid.UUID, limit, offset int) ([]models.Team, int64, error)
	SearchForUser(userID uuid.UUID, query string, limit int) ([]models.Team, error)
	Update(team *models.Team) error
	Delete(id uuid.UUID) error
}

// TeamMemberRepositoryInterface defines the interface for team membership operations
type TeamMemberRepositoryInterface interface {
	Create(member *models.TeamMember) error
	GetMembership(teamID, userID uuid.UUID) (*models.TeamMember, error)
	GetMembershipForUpdate(teamID, userID uuid.UUID) (*models.TeamMember, error)
	ListByTeam(teamID uuid.UUID) ([]models.TeamMember, error)
	CountOwners(teamID uuid.UUID) (int64, error)
	UpdateRole(id uuid.UUID, role models.TeamRole) error
	Delete(id uuid.UUID) error
	TeamIDsForUser(userID uuid.UUID) ([]uuid.UUID, error)
	UserIDsInTeams(teamIDs []uuid.UUID) ([]uuid.UUID, error)
}

// ProjectRepositoryInterface defines the interface for project repository operations
type ProjectRepositoryInterface interface {
	Create(project *models.Project) error
	GetByID(id uuid.UUID) (*models.Project, error)
	GetByIDWithArchived(id uuid.UUID) (*models.Project, error)
	GetWithDetails(id uuid.UUID) (*models.Project, error)
	ListForUser(userID uuid.UUID, limit, offset int) ([]models.Project, int64, error)
	ListByTeam(teamID uuid.UUID) ([]models.Project, error)
	SearchInTeams(teamIDs []uuid.UUID, query string, limit int) ([]models.Project, error)
	IDsForMember(userID uuid.UUID) ([]uuid.UUID, error)
	Update(project *models.Project) error
	Delete(id uuid.UUID) error
	Restore(id uuid.UUID) error
}

// ProjectMemberRepositoryInterface defines the interface for project membership operations
type ProjectMemberRepositoryInterface interface {
	Create(member *models.ProjectMember) error
	GetMembership(projectID, userID uuid.UUID) (*models.ProjectMember, error)
	ListByProject(projectID uuid.UUID) ([]models.ProjectMember, error)
	Delete(id uuid.UUID) error
}

// TaskRepositoryInterface defines the interface for task repository operations
type TaskRepositoryInterface interface {
	Create(task *models.Task) error
	GetByID(id uuid.UUID) (*models.Task, error)
	GetWithDetails(id uuid.UUID) (*models.Task, error)
	GetByIDs(ids []uuid.UUID) ([]models.Task, error)
	MaxPosition(projectID uuid.UUID, status models.TaskStatus) (int, error)
	Update(task *models.Task) error
	ReplaceLabels(task *models.Task, labels []models.Label) error
	UpdatePlacement(id uuid.UUID, status models.TaskStatus, position int) error
	Delete(id uuid.UUID) error
	List(filter TaskFilter, limit, offset int) ([]models.Task, int64, error)
	ListForExport(filter TaskFilter) ([]models.Task, error)
	ListAssigned(userID uuid.UUID, includeDone bool, limit, offset int) ([]models.Task, int64, error)
	ListBoard(projectID uuid.UUID) ([]models.Task, error)
	SearchInProjects(projectIDs []uuid.UUID, query string, limit int) ([]models.Task, error)
	CountByStatus(projectIDs []uuid.UUID) ([]StatusCount, error)
	CountOverdue(projectIDs []uuid.UUID, day time.Time) (int64, error)
	CountAssignedOpen(userID uuid.UUID) (int64, error)
	CompletedByAssignee(projectIDs []uuid.UUID, limit int) ([]AssigneeCount, error)
}

// LabelRepositoryInterface defines the interface for label repository operations
type LabelRepositoryInterface interface {
	Create(label *models.Label) error
	GetByID(id uuid.UUID) (*models.Label, error)
	GetByIDs(ids []uuid.UUID) ([]models.Label, error)
	ListByTeam(teamID uuid.UUID) ([]models.Label, error)
	Update(label *models.Label) error
	Delete(id uuid.UUID) error
}

// CommentRepositoryInterface defines the interface for task comment operations
type CommentRepositoryInterface interface {
	Create(comment *models.TaskComment) error
	GetByID(id uuid.UUID) (*models.TaskComment, error)
	ListByTask(taskID uuid.UUID) ([]models.TaskComment, error)
	Update(comment *models.TaskComment) error
	Delete(id uuid.UUID) error
}

// AttachmentRepositoryInterface defines the interface for task attachment operations
type AttachmentRepositoryInterface interface {
	Create(attachment *models.TaskAttachment) error
	GetByID(id uuid.UUID) (*models.TaskAttachment, error)
	ListByTask(taskID uuid.UUID) ([]models.TaskAttachment, error)
	Delete(id uuid.UUID) error
}

// InviteRepositoryInterface defines the interface for team invitation operations
type InviteRepositoryInterface interface {
	Create(invite *models.TeamInvite) error
	GetByID(id uuid.UUID) (*models.TeamInvite, error)
	ListByTeam(teamID uuid.UUID) ([]models.TeamInvite, error)
	ListPendingForEmail(email string, now time.Time) ([]models.TeamInvite, error)
	TransitionFromPending(id uuid.UUID, status models.InviteStatus) (bool, error)
	ConsumeUse(id uuid.UUID, now time.Time) (bool, error)
}

// AuditLogRepositoryInterface defines the interface for audit log operations
type AuditLogRepositoryInterface interface {
	Create(entry *models.AuditLog) error
	ListRecentByActors(userIDs []uuid.UUID, limit int) ([]models.AuditLog, error)
	ListByEntity(entityType string, entityID uuid.UUID, limit, offset int) ([]models.AuditLog, int64, error)
	List(entityType, action string, limit, offset int) ([]models.AuditLog, int64, error)
}

// TxManagerInterface defines the interface for running transactional units of work
type TxManagerInterface interface {
	WithinTx(ctx context.Context, fn func(repos *Repositories) error) error
}
