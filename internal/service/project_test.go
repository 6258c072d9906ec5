package service_test

import (
	"context"
	"testing"
	"time"

	"taskboard-backend/internal/database/models"
	apperrors "taskboard-backend/internal/errors"
	"taskboard-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

// ProjectServiceTestSuite defines the test suite for ProjectService
type ProjectServiceTestSuite struct {
	suite.Suite
	ctrl           *gomock.Controller
	m              *repoMocks
	projectService *service.ProjectService
	ctx            context.Context
	actor          service.Actor
	teamID         uuid.UUID
}

// SetupTest sets up the test suite
func (suite *ProjectServiceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.m = newRepoMocks(suite.ctrl)
	suite.projectService = service.NewProjectService(suite.m.repos(), suite.m.Tx, service.NewValidator())
	suite.ctx = context.Background()
	suite.actor = newActor()
	suite.teamID = uuid.New()
}

// TearDownTest cleans up after each test
func (suite *ProjectServiceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *ProjectServiceTestSuite) TestCreate_CallerBecomesLead() {
	newID := uuid.New()
	suite.m.Teams.EXPECT().GetByID(suite.teamID).Return(&models.Team{}, nil)
	suite.m.memberOfTeam(suite.teamID, suite.actor.ID, models.TeamRoleMember)
	suite.m.expectTx()
	suite.m.Projects.EXPECT().Create(gomock.Any()).DoAndReturn(func(p *models.Project) error {
		suite.Equal(suite.actor.ID, p.CreatedBy)
		p.ID = newID
		return nil
	})
	suite.m.ProjectMembers.EXPECT().Create(gomock.Any()).DoAndReturn(func(pm *models.ProjectMember) error {
		suite.Equal(newID, pm.ProjectID)
		suite.Equal(models.ProjectRoleLead, pm.Role)
		return nil
	})
	suite.m.expectAudit(models.AuditActionCreated, newID)

	resp, err := suite.projectService.Create(suite.ctx, suite.actor, &service.CreateProjectRequest{TeamID: suite.teamID, Name: "Platform"})

	suite.Require().NoError(err)
	suite.Equal(newID, resp.ID)
	suite.Require().Len(resp.Members, 1)
	suite.Equal(models.ProjectRoleLead, resp.Members[0].Role)
}

func (suite *ProjectServiceTestSuite) TestCreate_OutsiderRejected() {
	suite.m.Teams.EXPECT().GetByID(suite.teamID).Return(&models.Team{}, nil)
	suite.m.notMemberOfTeam(suite.teamID, suite.actor.ID)

	_, err := suite.projectService.Create(suite.ctx, suite.actor, &service.CreateProjectRequest{TeamID: suite.teamID, Name: "Platform"})

	suite.ErrorIs(err, apperrors.ErrNotTeamMember)
}

func (suite *ProjectServiceTestSuite) TestCreate_UnknownTeam() {
	suite.m.Teams.EXPECT().GetByID(suite.teamID).Return(nil, gorm.ErrRecordNotFound)

	_, err := suite.projectService.Create(suite.ctx, suite.actor, &service.CreateProjectRequest{TeamID: suite.teamID, Name: "Platform"})

	suite.ErrorIs(err, apperrors.ErrTeamNotFound)
}

func (suite *ProjectServiceTestSuite) TestGet_ProjectMemberOutsideTeam() {
	project := newProject(suite.teamID, uuid.New())
	suite.m.Projects.EXPECT().GetWithDetails(project.ID).Return(project, nil)
	suite.m.notMemberOfTeam(suite.teamID, suite.actor.ID)
	suite.m.memberOfProject(project.ID, suite.actor.ID, models.ProjectRoleMember)

	_, err := suite.projectService.Get(suite.ctx, suite.actor, project.ID)

	suite.ErrorIs(err, apperrors.ErrNoProjectAccess)
}

func (suite *ProjectServiceTestSuite) TestUpdate() {
	name := "Renamed"
	testCases := []struct {
		name        string
		creator     bool
		role        *models.ProjectRole
		expectedErr error
	}{
		{name: "creator", creator: true},
		{name: "technical lead", role: roleRef(models.ProjectRoleTechnicalLead)},
		{name: "plain member", role: roleRef(models.ProjectRoleMember), expectedErr: apperrors.ErrProjectUpdateDenied},
		{name: "team member outside project", expectedErr: apperrors.ErrProjectUpdateDenied},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			creator := uuid.New()
			if tc.creator {
				creator = suite.actor.ID
			}
			project := newProject(suite.teamID, creator)
			suite.m.Projects.EXPECT().GetByID(project.ID).Return(project, nil)
			suite.m.memberOfTeam(suite.teamID, suite.actor.ID, models.TeamRoleMember)
			if tc.role != nil {
				suite.m.memberOfProject(project.ID, suite.actor.ID, *tc.role)
			} else {
				suite.m.notMemberOfProject(project.ID, suite.actor.ID)
			}
			if tc.expectedErr == nil {
				suite.m.expectTx()
				suite.m.Projects.EXPECT().Update(gomock.Any()).Return(nil)
				suite.m.expectAudit(models.AuditActionUpdated, project.ID)
			}

			resp, err := suite.projectService.Update(suite.ctx, suite.actor, project.ID, &service.UpdateProjectRequest{Name: &name})

			if tc.expectedErr != nil {
				suite.ErrorIs(err, tc.expectedErr)
				return
			}
			suite.Require().NoError(err)
			suite.Equal("Renamed", resp.Name)
		})
	}
}

func (suite *ProjectServiceTestSuite) TestDelete_NonCreatorDenied() {
	project := newProject(suite.teamID, uuid.New())
	suite.m.Projects.EXPECT().GetByID(project.ID).Return(project, nil)
	suite.m.memberOfTeam(suite.teamID, suite.actor.ID, models.TeamRoleOwner)
	suite.m.memberOfProject(project.ID, suite.actor.ID, models.ProjectRoleLead)

	err := suite.projectService.Delete(suite.ctx, suite.actor, project.ID)

	suite.ErrorIs(err, apperrors.ErrProjectDeleteDenied)
	suite.True(apperrors.IsAuthorization(err))
}

func (suite *ProjectServiceTestSuite) TestDelete_Creator() {
	project := newProject(suite.teamID, suite.actor.ID)
	suite.m.Projects.EXPECT().GetByID(project.ID).Return(project, nil)
	suite.m.memberOfTeam(suite.teamID, suite.actor.ID, models.TeamRoleMember)
	suite.m.memberOfProject(project.ID, suite.actor.ID, models.ProjectRoleLead)
	suite.m.expectTx()
	suite.m.Projects.EXPECT().Delete(project.ID).Return(nil)
	suite.m.expectAudit(models.AuditActionDeleted, project.ID)

	suite.NoError(suite.projectService.Delete(suite.ctx, suite.actor, project.ID))
}

func (suite *ProjectServiceTestSuite) TestRestore() {
	suite.Run("not archived", func() {
		project := newProject(suite.teamID, suite.actor.ID)
		suite.m.Projects.EXPECT().GetByIDWithArchived(project.ID).Return(project, nil)
		suite.m.memberOfTeam(suite.teamID, suite.actor.ID, models.TeamRoleMember)
		suite.m.memberOfProject(project.ID, suite.actor.ID, models.ProjectRoleLead)

		_, err := suite.projectService.Restore(suite.ctx, suite.actor, project.ID)

		suite.ErrorIs(err, apperrors.ErrProjectNotArchived)
	})

	suite.Run("archived", func() {
		project := newProject(suite.teamID, suite.actor.ID)
		project.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
		suite.m.Projects.EXPECT().GetByIDWithArchived(project.ID).Return(project, nil)
		suite.m.memberOfTeam(suite.teamID, suite.actor.ID, models.TeamRoleMember)
		suite.m.memberOfProject(project.ID, suite.actor.ID, models.ProjectRoleLead)
		suite.m.expectTx()
		suite.m.Projects.EXPECT().Restore(project.ID).Return(nil)
		suite.m.expectAudit(models.AuditActionRestored, project.ID)

		resp, err := suite.projectService.Restore(suite.ctx, suite.actor, project.ID)

		suite.Require().NoError(err)
		suite.Equal(project.ID, resp.ID)
	})
}

func (suite *ProjectServiceTestSuite) TestAddMember() {
	target := uuid.New()

	suite.Run("unknown role", func() {
		_, err := suite.projectService.AddMember(suite.ctx, suite.actor, uuid.New(),
			&service.AddProjectMemberRequest{UserID: target, Role: "Boss"})

		suite.True(apperrors.IsValidation(err))
	})

	suite.Run("target outside team", func() {
		project := newProject(suite.teamID, suite.actor.ID)
		suite.m.Projects.EXPECT().GetByID(project.ID).Return(project, nil)
		suite.m.memberOfTeam(suite.teamID, suite.actor.ID, models.TeamRoleMember)
		suite.m.memberOfProject(project.ID, suite.actor.ID, models.ProjectRoleLead)
		suite.m.notMemberOfTeam(suite.teamID, target)

		_, err := suite.projectService.AddMember(suite.ctx, suite.actor, project.ID, &service.AddProjectMemberRequest{UserID: target})

		suite.ErrorIs(err, apperrors.ErrTargetNotTeamMember)
	})

	suite.Run("already a member", func() {
		project := newProject(suite.teamID, suite.actor.ID)
		suite.m.Projects.EXPECT().GetByID(project.ID).Return(project, nil)
		suite.m.memberOfTeam(suite.teamID, suite.actor.ID, models.TeamRoleMember)
		suite.m.memberOfProject(project.ID, suite.actor.ID, models.ProjectRoleLead)
		suite.m.memberOfTeam(suite.teamID, target, models.TeamRoleMember)
		suite.m.memberOfProject(project.ID, target, models.ProjectRoleMember)

		_, err := suite.projectService.AddMember(suite.ctx, suite.actor, project.ID, &service.AddProjectMemberRequest{UserID: target})

		suite.ErrorIs(err, apperrors.ErrProjectMemberExists)
		suite.True(apperrors.IsAlreadyExists(err))
	})

	suite.Run("adds technical lead", func() {
		project := newProject(suite.teamID, suite.actor.ID)
		suite.m.Projects.EXPECT().GetByID(project.ID).Return(project, nil)
		suite.m.memberOfTeam(suite.teamID, suite.actor.ID, models.TeamRoleMember)
		suite.m.memberOfProject(project.ID, suite.actor.ID, models.ProjectRoleMember)
		suite.m.memberOfTeam(suite.teamID, target, models.TeamRoleMember)
		suite.m.notMemberOfProject(project.ID, target)
		suite.m.expectTx()
		suite.m.ProjectMembers.EXPECT().Create(gomock.Any()).DoAndReturn(func(pm *models.ProjectMember) error {
			suite.Equal(models.ProjectRoleTechnicalLead, pm.Role)
			return nil
		})
		suite.m.expectAudit(models.AuditActionMemberAdded, project.ID)

		resp, err := suite.projectService.AddMember(suite.ctx, suite.actor, project.ID,
			&service.AddProjectMemberRequest{UserID: target, Role: "TechnicalLead"})

		suite.Require().NoError(err)
		suite.Equal(target, resp.UserID)
	})
}

func (suite *ProjectServiceTestSuite) TestRemoveMember_Creator() {
	project := newProject(suite.teamID, uuid.New())
	suite.m.Projects.EXPECT().GetByID(project.ID).Return(project, nil)
	suite.m.memberOfTeam(suite.teamID, suite.actor.ID, models.TeamRoleMember)
	suite.m.memberOfProject(project.ID, suite.actor.ID, models.ProjectRoleLead)

	err := suite.projectService.RemoveMember(suite.ctx, suite.actor, project.ID,
		&service.RemoveProjectMemberRequest{UserID: project.CreatedBy})

	suite.ErrorIs(err, apperrors.ErrCannotRemoveCreator)
}

func (suite *ProjectServiceTestSuite) TestBoard_GroupsByStatus() {
	project := newProject(suite.teamID, suite.actor.ID)
	suite.m.Projects.EXPECT().GetByID(project.ID).Return(project, nil)
	suite.m.memberOfTeam(suite.teamID, suite.actor.ID, models.TeamRoleMember)
	suite.m.memberOfProject(project.ID, suite.actor.ID, models.ProjectRoleMember)
	suite.m.Tasks.EXPECT().ListBoard(project.ID).Return([]models.Task{
		*newTask(project.ID, models.TaskStatusDone, 0),
		*newTask(project.ID, models.TaskStatusPending, 0),
		*newTask(project.ID, models.TaskStatusPending, 1),
	}, nil)

	resp, err := suite.projectService.Board(suite.ctx, suite.actor, project.ID)

	suite.Require().NoError(err)
	suite.Require().Len(resp.Columns, len(models.AllTaskStatuses))
	counts := map[models.TaskStatus]int{}
	for _, col := range resp.Columns {
		suite.NotNil(col.Tasks)
		counts[col.Status] = len(col.Tasks)
	}
	suite.Equal(2, counts[models.TaskStatusPending])
	suite.Equal(1, counts[models.TaskStatusDone])
	suite.Equal(0, counts[models.TaskStatusInProgress])
}

func (suite *ProjectServiceTestSuite) TestBoard_NonMember() {
	project := newProject(suite.teamID, uuid.New())
	suite.m.Projects.EXPECT().GetByID(project.ID).Return(project, nil)
	suite.m.memberOfTeam(suite.teamID, suite.actor.ID, models.TeamRoleAdmin)
	suite.m.notMemberOfProject(project.ID, suite.actor.ID)

	_, err := suite.projectService.Board(suite.ctx, suite.actor, project.ID)

	suite.ErrorIs(err, apperrors.ErrNoTaskAccess)
}

func roleRef(r models.ProjectRole) *models.ProjectRole {
	return &r
}

// TestProjectServiceTestSuite runs the test suite
func TestProjectServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceTestSuite))
}
