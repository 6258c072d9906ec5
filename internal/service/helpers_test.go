package service_test

import (
	"context"

	"taskboard-backend/internal/database/models"
	"taskboard-backend/internal/mocks"
	"taskboard-backend/internal/repository"
	"taskboard-backend/internal/service"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

// repoMocks bundles one mock per repository. The same mocks back both the
// plain repositories and the ones handed to transactional callbacks.
type repoMocks struct {
	Users          *mocks.MockUserRepositoryInterface
	Teams          *mocks.MockTeamRepositoryInterface
	TeamMembers    *mocks.MockTeamMemberRepositoryInterface
	Projects       *mocks.MockProjectRepositoryInterface
	ProjectMembers *mocks.MockProjectMemberRepositoryInterface
	Tasks          *mocks.MockTaskRepositoryInterface
	Labels         *mocks.MockLabelRepositoryInterface
	Comments       *mocks.MockCommentRepositoryInterface
	Attachments    *mocks.MockAttachmentRepositoryInterface
	Invites        *mocks.MockInviteRepositoryInterface
	AuditLogs      *mocks.MockAuditLogRepositoryInterface
	Tx             *mocks.MockTxManagerInterface
}

func newRepoMocks(ctrl *gomock.Controller) *repoMocks {
	return &repoMocks{
		Users:          mocks.NewMockUserRepositoryInterface(ctrl),
		Teams:          mocks.NewMockTeamRepositoryInterface(ctrl),
		TeamMembers:    mocks.NewMockTeamMemberRepositoryInterface(ctrl),
		Projects:       mocks.NewMockProjectRepositoryInterface(ctrl),
		ProjectMembers: mocks.NewMockProjectMemberRepositoryInterface(ctrl),
		Tasks:          mocks.NewMockTaskRepositoryInterface(ctrl),
		Labels:         mocks.NewMockLabelRepositoryInterface(ctrl),
		Comments:       mocks.NewMockCommentRepositoryInterface(ctrl),
		Attachments:    mocks.NewMockAttachmentRepositoryInterface(ctrl),
		Invites:        mocks.NewMockInviteRepositoryInterface(ctrl),
		AuditLogs:      mocks.NewMockAuditLogRepositoryInterface(ctrl),
		Tx:             mocks.NewMockTxManagerInterface(ctrl),
	}
}

func (m *repoMocks) repos() *repository.Repositories {
	return &repository.Repositories{
		Users:          m.Users,
		Teams:          m.Teams,
		TeamMembers:    m.TeamMembers,
		Projects:       m.Projects,
		ProjectMembers: m.ProjectMembers,
		Tasks:          m.Tasks,
		Labels:         m.Labels,
		Comments:       m.Comments,
		Attachments:    m.Attachments,
		Invites:        m.Invites,
		AuditLogs:      m.AuditLogs,
	}
}

// expectTx runs the next transactional callback against the mocks
func (m *repoMocks) expectTx() *gomock.Call {
	return m.Tx.EXPECT().WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(*repository.Repositories) error) error {
			return fn(m.repos())
		})
}

// expectAudit expects one audit entry with action on entityID
func (m *repoMocks) expectAudit(action string, entityID uuid.UUID) *gomock.Call {
	return m.AuditLogs.EXPECT().Create(gomock.Any()).DoAndReturn(func(entry *models.AuditLog) error {
		if entry.Action != action || entry.EntityID != entityID {
			return errUnexpectedAudit
		}
		return nil
	})
}

func (m *repoMocks) memberOfTeam(teamID, userID uuid.UUID, role models.TeamRole) *gomock.Call {
	return m.TeamMembers.EXPECT().GetMembership(teamID, userID).
		Return(&models.TeamMember{BaseModel: models.BaseModel{ID: uuid.New()}, TeamID: teamID, UserID: userID, TeamRole: role}, nil)
}

func (m *repoMocks) notMemberOfTeam(teamID, userID uuid.UUID) *gomock.Call {
	return m.TeamMembers.EXPECT().GetMembership(teamID, userID).Return(nil, gorm.ErrRecordNotFound)
}

func (m *repoMocks) memberOfProject(projectID, userID uuid.UUID, role models.ProjectRole) *gomock.Call {
	return m.ProjectMembers.EXPECT().GetMembership(projectID, userID).
		Return(&models.ProjectMember{BaseModel: models.BaseModel{ID: uuid.New()}, ProjectID: projectID, UserID: userID, Role: role}, nil)
}

func (m *repoMocks) notMemberOfProject(projectID, userID uuid.UUID) *gomock.Call {
	return m.ProjectMembers.EXPECT().GetMembership(projectID, userID).Return(nil, gorm.ErrRecordNotFound)
}

type auditMismatch struct{}

func (auditMismatch) Error() string { return "unexpected audit entry" }

var errUnexpectedAudit error = auditMismatch{}

func newActor() service.Actor {
	return service.Actor{ID: uuid.New(), Email: "alice@example.com", Name: "Alice"}
}

func newProject(teamID, creator uuid.UUID) *models.Project {
	return &models.Project{
		SoftDeleteModel: models.SoftDeleteModel{BaseModel: models.BaseModel{ID: uuid.New()}},
		TeamID:          teamID,
		Name:            "Platform",
		CreatedBy:       creator,
	}
}

func newTask(projectID uuid.UUID, status models.TaskStatus, position int) *models.Task {
	return &models.Task{
		SoftDeleteModel: models.SoftDeleteModel{BaseModel: models.BaseModel{ID: uuid.New()}},
		ProjectID:       projectID,
		Name:            "Write docs",
		Status:          status,
		Position:        position,
	}
}
