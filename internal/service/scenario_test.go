package service_test

import (
	"context"
	"testing"

	"taskboard-backend/internal/database/models"
	apperrors "taskboard-backend/internal/errors"
	"taskboard-backend/internal/repository"
	"taskboard-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

// BoardScenarioTestSuite drives team, project and task services through one
// workflow. The repository mocks keep their rows in memory so every step sees
// the writes of the previous ones.
type BoardScenarioTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	m        *repoMocks
	teams    *service.TeamService
	projects *service.ProjectService
	tasks    *service.TaskService
	ctx      context.Context

	teamRoles    map[uuid.UUID]map[uuid.UUID]models.TeamRole
	projectRoles map[uuid.UUID]map[uuid.UUID]models.ProjectRole
	teamRows     map[uuid.UUID]*models.Team
	projectRows  map[uuid.UUID]*models.Project
	taskRows     map[uuid.UUID]*models.Task
	audit        []models.AuditLog
}

// SetupTest wires the services to stateful repository mocks
func (suite *BoardScenarioTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.m = newRepoMocks(suite.ctrl)
	v := service.NewValidator()
	suite.teams = service.NewTeamService(suite.m.repos(), suite.m.Tx, v)
	suite.projects = service.NewProjectService(suite.m.repos(), suite.m.Tx, v)
	suite.tasks = service.NewTaskService(suite.m.repos(), suite.m.Tx, v, false)
	suite.ctx = context.Background()

	suite.teamRoles = map[uuid.UUID]map[uuid.UUID]models.TeamRole{}
	suite.projectRoles = map[uuid.UUID]map[uuid.UUID]models.ProjectRole{}
	suite.teamRows = map[uuid.UUID]*models.Team{}
	suite.projectRows = map[uuid.UUID]*models.Project{}
	suite.taskRows = map[uuid.UUID]*models.Task{}
	suite.audit = nil

	m := suite.m
	m.Tx.EXPECT().WithinTx(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, fn func(*repository.Repositories) error) error {
			return fn(m.repos())
		})
	m.AuditLogs.EXPECT().Create(gomock.Any()).AnyTimes().DoAndReturn(func(entry *models.AuditLog) error {
		suite.audit = append(suite.audit, *entry)
		return nil
	})

	m.Teams.EXPECT().Create(gomock.Any()).AnyTimes().DoAndReturn(func(team *models.Team) error {
		team.ID = uuid.New()
		suite.teamRows[team.ID] = team
		return nil
	})
	m.Teams.EXPECT().GetByID(gomock.Any()).AnyTimes().DoAndReturn(func(id uuid.UUID) (*models.Team, error) {
		if team, ok := suite.teamRows[id]; ok {
			return team, nil
		}
		return nil, gorm.ErrRecordNotFound
	})
	m.TeamMembers.EXPECT().Create(gomock.Any()).AnyTimes().DoAndReturn(func(member *models.TeamMember) error {
		suite.joinTeam(member.TeamID, member.UserID, member.TeamRole)
		return nil
	})
	m.TeamMembers.EXPECT().GetMembership(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(teamID, userID uuid.UUID) (*models.TeamMember, error) {
			role, ok := suite.teamRoles[teamID][userID]
			if !ok {
				return nil, gorm.ErrRecordNotFound
			}
			return &models.TeamMember{TeamID: teamID, UserID: userID, TeamRole: role}, nil
		})

	m.Projects.EXPECT().Create(gomock.Any()).AnyTimes().DoAndReturn(func(project *models.Project) error {
		project.ID = uuid.New()
		suite.projectRows[project.ID] = project
		return nil
	})
	m.Projects.EXPECT().GetByID(gomock.Any()).AnyTimes().DoAndReturn(func(id uuid.UUID) (*models.Project, error) {
		if project, ok := suite.projectRows[id]; ok {
			return project, nil
		}
		return nil, gorm.ErrRecordNotFound
	})
	m.ProjectMembers.EXPECT().Create(gomock.Any()).AnyTimes().DoAndReturn(func(member *models.ProjectMember) error {
		suite.joinProject(member.ProjectID, member.UserID, member.Role)
		return nil
	})
	m.ProjectMembers.EXPECT().GetMembership(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(projectID, userID uuid.UUID) (*models.ProjectMember, error) {
			role, ok := suite.projectRoles[projectID][userID]
			if !ok {
				return nil, gorm.ErrRecordNotFound
			}
			return &models.ProjectMember{ProjectID: projectID, UserID: userID, Role: role}, nil
		})

	m.Tasks.EXPECT().MaxPosition(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(projectID uuid.UUID, status models.TaskStatus) (int, error) {
			last := -1
			for _, t := range suite.taskRows {
				if t.ProjectID == projectID && t.Status == status && t.ParentID == nil && t.Position > last {
					last = t.Position
				}
			}
			return last, nil
		})
	m.Tasks.EXPECT().Create(gomock.Any()).AnyTimes().DoAndReturn(func(task *models.Task) error {
		task.ID = uuid.New()
		suite.taskRows[task.ID] = task
		return nil
	})
	lookupTask := func(id uuid.UUID) (*models.Task, error) {
		if task, ok := suite.taskRows[id]; ok {
			return task, nil
		}
		return nil, gorm.ErrRecordNotFound
	}
	m.Tasks.EXPECT().GetByID(gomock.Any()).AnyTimes().DoAndReturn(lookupTask)
	m.Tasks.EXPECT().GetWithDetails(gomock.Any()).AnyTimes().DoAndReturn(lookupTask)
	m.Tasks.EXPECT().UpdatePlacement(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(id uuid.UUID, status models.TaskStatus, position int) error {
			task := suite.taskRows[id]
			task.Status = status
			task.Position = position
			return nil
		})
}

// TearDownTest cleans up after each test
func (suite *BoardScenarioTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *BoardScenarioTestSuite) joinTeam(teamID, userID uuid.UUID, role models.TeamRole) {
	if suite.teamRoles[teamID] == nil {
		suite.teamRoles[teamID] = map[uuid.UUID]models.TeamRole{}
	}
	suite.teamRoles[teamID][userID] = role
}

func (suite *BoardScenarioTestSuite) joinProject(projectID, userID uuid.UUID, role models.ProjectRole) {
	if suite.projectRoles[projectID] == nil {
		suite.projectRoles[projectID] = map[uuid.UUID]models.ProjectRole{}
	}
	suite.projectRoles[projectID][userID] = role
}

func (suite *BoardScenarioTestSuite) auditActions(entityID uuid.UUID, action string) int {
	count := 0
	for _, entry := range suite.audit {
		if entry.EntityID == entityID && entry.Action == action {
			count++
		}
	}
	return count
}

func (suite *BoardScenarioTestSuite) TestCreatorMovesTaskAndColleagueCannotDeleteProject() {
	alice := service.Actor{ID: uuid.New(), Email: "alice@example.com", Name: "Alice"}
	bob := service.Actor{ID: uuid.New(), Email: "bob@example.com", Name: "Bob"}

	team, err := suite.teams.Create(suite.ctx, alice, &service.CreateTeamRequest{Name: "Core"})
	suite.Require().NoError(err)
	suite.Equal(models.TeamRoleOwner, suite.teamRoles[team.ID][alice.ID])

	project, err := suite.projects.Create(suite.ctx, alice, &service.CreateProjectRequest{TeamID: team.ID, Name: "Platform"})
	suite.Require().NoError(err)

	task, err := suite.tasks.Create(suite.ctx, alice, &service.CreateTaskRequest{ProjectID: project.ID, Name: "Ship it"})
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusUnplanned, task.Status)
	suite.Equal(0, task.Position)

	zero := 0
	moved, err := suite.tasks.UpdateStatus(suite.ctx, alice, task.ID,
		&service.UpdateTaskStatusRequest{Status: models.TaskStatusDone, Position: &zero})
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusDone, moved.Status)
	suite.Equal(0, moved.Position)
	suite.Equal(1, suite.auditActions(task.ID, models.AuditActionStatusChanged))

	suite.joinTeam(team.ID, bob.ID, models.TeamRoleMember)
	suite.joinProject(project.ID, bob.ID, models.ProjectRoleMember)

	err = suite.projects.Delete(suite.ctx, bob, project.ID)

	suite.True(apperrors.IsAuthorization(err))
	suite.Equal(0, suite.auditActions(project.ID, models.AuditActionDeleted))
}

// TestBoardScenarioTestSuite runs the test suite
func TestBoardScenarioTestSuite(t *testing.T) {
	suite.Run(t, new(BoardScenarioTestSuite))
}
