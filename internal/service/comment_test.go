package service_test

import (
	"context"
	"testing"

	"taskboard-backend/internal/database/models"
	apperrors "taskboard-backend/internal/errors"
	"taskboard-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

// CommentServiceTestSuite defines the test suite for CommentService and LabelService
type CommentServiceTestSuite struct {
	suite.Suite
	ctrl           *gomock.Controller
	m              *repoMocks
	commentService *service.CommentService
	labelService   *service.LabelService
	ctx            context.Context
	actor          service.Actor
	project        *models.Project
	task           *models.Task
}

// SetupTest sets up the test suite
func (suite *CommentServiceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.m = newRepoMocks(suite.ctrl)
	v := service.NewValidator()
	suite.commentService = service.NewCommentService(suite.m.repos(), v)
	suite.labelService = service.NewLabelService(suite.m.repos(), v)
	suite.ctx = context.Background()
	suite.actor = newActor()
	suite.project = newProject(uuid.New(), uuid.New())
	suite.task = newTask(suite.project.ID, models.TaskStatusPending, 0)
}

// TearDownTest cleans up after each test
func (suite *CommentServiceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *CommentServiceTestSuite) expectTaskAccess() {
	suite.m.Tasks.EXPECT().GetByID(suite.task.ID).Return(suite.task, nil)
	suite.m.Projects.EXPECT().GetByID(suite.project.ID).Return(suite.project, nil)
	suite.m.memberOfTeam(suite.project.TeamID, suite.actor.ID, models.TeamRoleMember)
	suite.m.memberOfProject(suite.project.ID, suite.actor.ID, models.ProjectRoleMember)
}

func (suite *CommentServiceTestSuite) TestCreate() {
	suite.expectTaskAccess()
	suite.m.Comments.EXPECT().Create(gomock.Any()).DoAndReturn(func(c *models.TaskComment) error {
		suite.Equal(suite.actor.ID, c.CreatedBy)
		return nil
	})

	resp, err := suite.commentService.Create(suite.ctx, suite.actor, &service.CreateCommentRequest{
		TaskID:  suite.task.ID,
		Comment: "Looks good",
	})

	suite.Require().NoError(err)
	suite.Equal("Looks good", resp.Comment)
}

func (suite *CommentServiceTestSuite) TestCreate_ReplyOnOtherTask() {
	other := &models.TaskComment{SoftDeleteModel: models.SoftDeleteModel{BaseModel: models.BaseModel{ID: uuid.New()}}, TaskID: uuid.New()}
	suite.expectTaskAccess()
	suite.m.Comments.EXPECT().GetByID(other.ID).Return(other, nil)

	_, err := suite.commentService.Create(suite.ctx, suite.actor, &service.CreateCommentRequest{
		TaskID:  suite.task.ID,
		Comment: "Replying",
		ReplyTo: &other.ID,
	})

	suite.True(apperrors.IsValidation(err))
}

func (suite *CommentServiceTestSuite) TestCreate_WithoutTaskAccess() {
	suite.m.Tasks.EXPECT().GetByID(suite.task.ID).Return(suite.task, nil)
	suite.m.Projects.EXPECT().GetByID(suite.project.ID).Return(suite.project, nil)
	suite.m.notMemberOfTeam(suite.project.TeamID, suite.actor.ID)
	suite.m.notMemberOfProject(suite.project.ID, suite.actor.ID)

	_, err := suite.commentService.Create(suite.ctx, suite.actor, &service.CreateCommentRequest{
		TaskID:  suite.task.ID,
		Comment: "Hi",
	})

	suite.ErrorIs(err, apperrors.ErrNoTaskAccess)
}

func (suite *CommentServiceTestSuite) TestUpdateAndDelete_AuthorOnly() {
	comment := &models.TaskComment{SoftDeleteModel: models.SoftDeleteModel{BaseModel: models.BaseModel{ID: uuid.New()}}, TaskID: suite.task.ID, CreatedBy: uuid.New()}

	suite.Run("edit", func() {
		suite.m.Comments.EXPECT().GetByID(comment.ID).Return(comment, nil)

		_, err := suite.commentService.Update(suite.ctx, suite.actor, comment.ID, &service.UpdateCommentRequest{Comment: "changed"})

		suite.ErrorIs(err, apperrors.ErrCommentEditDenied)
	})

	suite.Run("delete", func() {
		suite.m.Comments.EXPECT().GetByID(comment.ID).Return(comment, nil)

		err := suite.commentService.Delete(suite.ctx, suite.actor, comment.ID)

		suite.ErrorIs(err, apperrors.ErrCommentDeleteDenied)
	})
}

func (suite *CommentServiceTestSuite) TestDelete_NotFound() {
	id := uuid.New()
	suite.m.Comments.EXPECT().GetByID(id).Return(nil, gorm.ErrRecordNotFound)

	suite.ErrorIs(suite.commentService.Delete(suite.ctx, suite.actor, id), apperrors.ErrCommentNotFound)
}

func (suite *CommentServiceTestSuite) TestLabels() {
	teamID := uuid.New()

	suite.Run("outsider cannot create", func() {
		suite.m.notMemberOfTeam(teamID, suite.actor.ID)

		_, err := suite.labelService.Create(suite.ctx, suite.actor, &service.CreateLabelRequest{TeamID: teamID, Name: "bug"})

		suite.ErrorIs(err, apperrors.ErrNotTeamMember)
	})

	suite.Run("plain member creates", func() {
		suite.m.memberOfTeam(teamID, suite.actor.ID, models.TeamRoleMember)
		suite.m.Labels.EXPECT().Create(gomock.Any()).DoAndReturn(func(l *models.Label) error {
			suite.Equal(suite.actor.ID, l.CreatedBy)
			return nil
		})

		resp, err := suite.labelService.Create(suite.ctx, suite.actor, &service.CreateLabelRequest{TeamID: teamID, Name: "bug"})

		suite.Require().NoError(err)
		suite.Equal("bug", resp.Name)
	})

	suite.Run("name too long", func() {
		_, err := suite.labelService.Create(suite.ctx, suite.actor, &service.CreateLabelRequest{
			TeamID: teamID,
			Name:   "a-label-name-that-is-far-too-long-for-the-fifty-char-cap",
		})

		suite.True(apperrors.IsValidation(err))
	})

	suite.Run("any member lists", func() {
		suite.m.memberOfTeam(teamID, suite.actor.ID, models.TeamRoleMember)
		suite.m.Labels.EXPECT().ListByTeam(teamID).Return([]models.Label{{TeamID: teamID, Name: "bug"}}, nil)

		labels, err := suite.labelService.ListByTeam(suite.ctx, suite.actor, teamID)

		suite.Require().NoError(err)
		suite.Len(labels, 1)
	})
}

// TestCommentServiceTestSuite runs the test suite
func TestCommentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CommentServiceTestSuite))
}
