package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every repository bound to one connection or transaction
type Repositories struct {
	Users          UserRepositoryInterface
	Teams          TeamRepositoryInterface
	TeamMembers    TeamMemberRepositoryInterface
	Projects       ProjectRepositoryInterface
	ProjectMembers ProjectMemberRepositoryInterface
	Tasks          TaskRepositoryInterface
	Labels         LabelRepositoryInterface
	Comments       CommentRepositoryInterface
	Attachments    AttachmentRepositoryInterface
	Invites        InviteRepositoryInterface
	AuditLogs      AuditLogRepositoryInterface
}

// NewRepositories builds all repositories on db
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:          NewUserRepository(db),
		Teams:          NewTeamRepository(db),
		TeamMembers:    NewTeamMemberRepository(db),
		Projects:       NewProjectRepository(db),
		ProjectMembers: NewProjectMemberRepository(db),
		Tasks:          NewTaskRepository(db),
		Labels:         NewLabelRepository(db),
		Comments:       NewCommentRepository(db),
		Attachments:    NewAttachmentRepository(db),
		Invites:        NewInviteRepository(db),
		AuditLogs:      NewAuditLogRepository(db),
	}
}

// TxManager runs units of work inside a database transaction
type TxManager struct {
	db *gorm.DB
}

// NewTxManager creates a new transaction manager
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx runs fn with repositories bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (m *TxManager) WithinTx(ctx context.Context, fn func(repos *Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
