package service

import (
	"context"
	"io"

	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/service_mocks.go -package=mocks

// UserServiceInterface defines the interface for account operations
type UserServiceInterface interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Me(ctx context.Context, actor Actor) (*UserResponse, error)
}

// TeamServiceInterface defines the interface for team service
type TeamServiceInterface interface {
	Create(ctx context.Context, actor Actor, req *CreateTeamRequest) (*TeamResponse, error)
	List(ctx context.Context, actor Actor, page, pageSize int) (*TeamListResponse, error)
	Get(ctx context.Context, actor Actor, teamID uuid.UUID) (*TeamResponse, error)
	Update(ctx context.Context, actor Actor, teamID uuid.UUID, req *UpdateTeamRequest) (*TeamResponse, error)
	Delete(ctx context.Context, actor Actor, teamID uuid.UUID) error
	Leave(ctx context.Context, actor Actor, teamID uuid.UUID) error
	TransferOwnership(ctx context.Context, actor Actor, teamID uuid.UUID, req *TransferOwnershipRequest) (*TeamResponse, error)
	UpdateMemberRole(ctx context.Context, actor Actor, teamID uuid.UUID, req *UpdateMemberRoleRequest) (*TeamMemberResponse, error)
	RemoveMember(ctx context.Context, actor Actor, teamID uuid.UUID, req *RemoveMemberRequest) error
}

// ProjectServiceInterface defines the interface for project service
type ProjectServiceInterface interface {
	Create(ctx context.Context, actor Actor, req *CreateProjectRequest) (*ProjectResponse, error)
	List(ctx context.Context, actor Actor, page, pageSize int) (*ProjectListResponse, error)
	Get(ctx context.Context, actor Actor, projectID uuid.UUID) (*ProjectResponse, error)
	Update(ctx context.Context, actor Actor, projectID uuid.UUID, req *UpdateProjectRequest) (*ProjectResponse, error)
	Delete(ctx context.Context, actor Actor, projectID uuid.UUID) error
	Restore(ctx context.Context, actor Actor, projectID uuid.UUID) (*ProjectResponse, error)
	AddMember(ctx context.Context, actor Actor, projectID uuid.UUID, req *AddProjectMemberRequest) (*ProjectMemberResponse, error)
	RemoveMember(ctx context.Context, actor Actor, projectID uuid.UUID, req *RemoveProjectMemberRequest) error
	Board(ctx context.Context, actor Actor, projectID uuid.UUID) (*BoardResponse, error)
}

// TaskServiceInterface defines the interface for task service
type TaskServiceInterface interface {
	Create(ctx context.Context, actor Actor, req *CreateTaskRequest) (*TaskResponse, error)
	Get(ctx context.Context, actor Actor, taskID uuid.UUID) (*TaskResponse, error)
	Update(ctx context.Context, actor Actor, taskID uuid.UUID, req *UpdateTaskRequest) (*TaskResponse, error)
	UpdateStatus(ctx context.Context, actor Actor, taskID uuid.UUID, req *UpdateTaskStatusRequest) (*TaskResponse, error)
	Reorder(ctx context.Context, actor Actor, req *ReorderTasksRequest) error
	Delete(ctx context.Context, actor Actor, taskID uuid.UUID) error
	List(ctx context.Context, actor Actor, q *TaskListQuery) (*TaskListResponse, error)
	MyTasks(ctx context.Context, actor Actor, includeDone bool, page, pageSize int) (*TaskListResponse, error)
}

// LabelServiceInterface defines the interface for label service
type LabelServiceInterface interface {
	ListByTeam(ctx context.Context, actor Actor, teamID uuid.UUID) ([]LabelResponse, error)
	Create(ctx context.Context, actor Actor, req *CreateLabelRequest) (*LabelResponse, error)
	Update(ctx context.Context, actor Actor, labelID uuid.UUID, req *UpdateLabelRequest) (*LabelResponse, error)
	Delete(ctx context.Context, actor Actor, labelID uuid.UUID) error
}

// CommentServiceInterface defines the interface for comment service
type CommentServiceInterface interface {
	ListByTask(ctx context.Context, actor Actor, taskID uuid.UUID) ([]CommentResponse, error)
	Create(ctx context.Context, actor Actor, req *CreateCommentRequest) (*CommentResponse, error)
	Update(ctx context.Context, actor Actor, commentID uuid.UUID, req *UpdateCommentRequest) (*CommentResponse, error)
	Delete(ctx context.Context, actor Actor, commentID uuid.UUID) error
}

// AttachmentServiceInterface defines the interface for attachment service
type AttachmentServiceInterface interface {
	Upload(ctx context.Context, actor Actor, taskID uuid.UUID, files []UploadedFile) ([]AttachmentResponse, error)
	ListByTask(ctx context.Context, actor Actor, taskID uuid.UUID) ([]AttachmentResponse, error)
	Download(ctx context.Context, actor Actor, attachmentID uuid.UUID) (*AttachmentResponse, io.ReadCloser, error)
	Delete(ctx context.Context, actor Actor, attachmentID uuid.UUID) error
}

// InviteServiceInterface defines the interface for invite service
type InviteServiceInterface interface {
	Create(ctx context.Context, actor Actor, req *CreateInviteRequest) (*InviteResponse, error)
	ListForTeam(ctx context.Context, actor Actor, teamID uuid.UUID) ([]InviteResponse, error)
	MyInvites(ctx context.Context, actor Actor) ([]InviteResponse, error)
	Get(ctx context.Context, actor Actor, inviteID uuid.UUID) (*InviteResponse, error)
	Accept(ctx context.Context, actor Actor, inviteID uuid.UUID) (*InviteResponse, error)
	Decline(ctx context.Context, actor Actor, inviteID uuid.UUID) (*InviteResponse, error)
	Revoke(ctx context.Context, actor Actor, inviteID uuid.UUID) (*InviteResponse, error)
}

// AuditServiceInterface defines the interface for audit log reads
type AuditServiceInterface interface {
	Recent(ctx context.Context, actor Actor, limit int) ([]AuditLogResponse, error)
	History(ctx context.Context, actor Actor, entityType string, entityID uuid.UUID, page, pageSize int) (*AuditLogListResponse, error)
}

// DashboardServiceInterface defines the interface for dashboard service
type DashboardServiceInterface interface {
	User(ctx context.Context, actor Actor) (*UserDashboardResponse, error)
	Team(ctx context.Context, actor Actor, teamID uuid.UUID) (*TeamDashboardResponse, error)
}

// SearchServiceInterface defines the interface for search service
type SearchServiceInterface interface {
	Search(ctx context.Context, actor Actor, q string) (*SearchResponse, error)
}

// ExportServiceInterface defines the interface for export service
type ExportServiceInterface interface {
	Export(ctx context.Context, actor Actor, format string, q *ExportQuery) (*ExportFile, error)
}
