package handlers_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"taskboard-backend/internal/api/handlers"
	"taskboard-backend/internal/database/models"
	apperrors "taskboard-backend/internal/errors"
	"taskboard-backend/internal/mocks"
	"taskboard-backend/internal/service"
	"taskboard-backend/internal/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// CollaborationHandlerTestSuite covers comments, attachments and invites
type CollaborationHandlerTestSuite struct {
	suite.Suite
	ctrl            *gomock.Controller
	mockComments    *mocks.MockCommentServiceInterface
	mockAttachments *mocks.MockAttachmentServiceInterface
	mockInvites     *mocks.MockInviteServiceInterface
	httpSuite       *testutils.AuthHTTPTestSuite
	actor           service.Actor
	auth            map[string]string
}

// SetupTest sets up the test suite
func (suite *CollaborationHandlerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockComments = mocks.NewMockCommentServiceInterface(suite.ctrl)
	suite.mockAttachments = mocks.NewMockAttachmentServiceInterface(suite.ctrl)
	suite.mockInvites = mocks.NewMockInviteServiceInterface(suite.ctrl)
	suite.httpSuite = testutils.SetupAuthenticatedHTTPTest()
	suite.actor = service.Actor{ID: uuid.New(), Email: "dev@test.com", Name: "Test User"}
	suite.auth = suite.httpSuite.BearerFor(suite.actor.ID, suite.actor.Email)

	comments := handlers.NewCommentHandler(suite.mockComments)
	attachments := handlers.NewAttachmentHandler(suite.mockAttachments)
	invites := handlers.NewInviteHandler(suite.mockInvites)

	api := suite.httpSuite.API
	api.POST("/tasks/:id/comments", comments.AddTaskComment)
	api.PATCH("/task-comments/:id", comments.UpdateComment)
	api.POST("/task-attachments", attachments.Upload)
	api.GET("/task-attachments/:id/download", attachments.Download)
	api.POST("/team-invites", invites.CreateInvite)
	api.POST("/invites/:id/accept", invites.AcceptInvite)
	api.POST("/invites/:id/reject", invites.DeclineInvite)
}

// TearDownTest cleans up after each test
func (suite *CollaborationHandlerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *CollaborationHandlerTestSuite) TestAddTaskComment_TakesTaskFromPath() {
	taskID := uuid.New()
	suite.mockComments.EXPECT().
		Create(gomock.Any(), suite.actor, &service.CreateCommentRequest{TaskID: taskID, Comment: "Looks good"}).
		Return(&service.CommentResponse{ID: uuid.New(), TaskID: taskID, Comment: "Looks good"}, nil)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodPost, "/api/v1/tasks/"+taskID.String()+"/comments",
		map[string]string{"comment": "Looks good"}, suite.auth)

	testutils.AssertSuccessResponse(suite.T(), recorder, http.StatusCreated)
}

func (suite *CollaborationHandlerTestSuite) TestUpdateComment_NotAuthor() {
	commentID := uuid.New()
	suite.mockComments.EXPECT().Update(gomock.Any(), suite.actor, commentID, gomock.Any()).Return(nil, apperrors.ErrCommentEditDenied)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodPatch, "/api/v1/task-comments/"+commentID.String(),
		map[string]string{"comment": "edited"}, suite.auth)

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusForbidden, "your own comments")
}

func (suite *CollaborationHandlerTestSuite) TestUpload() {
	taskID := uuid.New()
	suite.mockAttachments.EXPECT().Upload(gomock.Any(), suite.actor, taskID, gomock.Any()).
		DoAndReturn(func(_ interface{}, _ service.Actor, _ uuid.UUID, files []service.UploadedFile) ([]service.AttachmentResponse, error) {
			suite.Require().Len(files, 1)
			suite.Equal("notes.txt", files[0].Filename)
			rc, err := files[0].Open()
			suite.Require().NoError(err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			suite.Require().NoError(err)
			suite.Equal("hello", string(data))
			return []service.AttachmentResponse{{ID: uuid.New(), TaskID: taskID, OriginalFilename: "notes.txt"}}, nil
		})

	recorder := suite.httpSuite.MakeMultipartRequest("/api/v1/task-attachments",
		map[string]string{"task_id": taskID.String()}, "files[]",
		map[string][]byte{"notes.txt": []byte("hello")}, suite.auth)

	testutils.AssertSuccessResponse(suite.T(), recorder, http.StatusCreated)
}

func (suite *CollaborationHandlerTestSuite) TestUpload_InvalidTaskID() {
	recorder := suite.httpSuite.MakeMultipartRequest("/api/v1/task-attachments",
		map[string]string{"task_id": "nope"}, "files[]",
		map[string][]byte{"notes.txt": []byte("hello")}, suite.auth)

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusBadRequest, "invalid task ID")
}

func (suite *CollaborationHandlerTestSuite) TestDownload() {
	id := uuid.New()
	suite.mockAttachments.EXPECT().Download(gomock.Any(), suite.actor, id).Return(
		&service.AttachmentResponse{ID: id, OriginalFilename: "report.csv", MimeType: "text/csv", Size: 7},
		io.NopCloser(strings.NewReader("a,b,c\n\n")),
		nil,
	)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodGet, "/api/v1/task-attachments/"+id.String()+"/download", nil, suite.auth)

	suite.Equal(http.StatusOK, recorder.Code)
	suite.Equal("text/csv", recorder.Header().Get("Content-Type"))
	suite.Equal(`attachment; filename="report.csv"`, recorder.Header().Get("Content-Disposition"))
	suite.Equal("a,b,c\n\n", recorder.Body.String())
}

func (suite *CollaborationHandlerTestSuite) TestInviteLifecycle() {
	inviteID := uuid.New()

	suite.Run("accept past usage limit", func() {
		suite.mockInvites.EXPECT().Accept(gomock.Any(), suite.actor, inviteID).Return(nil, apperrors.ErrInviteUsageLimit)

		recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodPost, "/api/v1/invites/"+inviteID.String()+"/accept", nil, suite.auth)

		testutils.AssertErrorResponse(suite.T(), recorder, http.StatusConflict, "usage limit")
	})

	suite.Run("decline", func() {
		suite.mockInvites.EXPECT().Decline(gomock.Any(), suite.actor, inviteID).
			Return(&service.InviteResponse{ID: inviteID, Status: models.InviteStatusDeclined}, nil)

		recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodPost, "/api/v1/invites/"+inviteID.String()+"/reject", nil, suite.auth)

		var response service.InviteResponse
		testutils.AssertJSONResponse(suite.T(), recorder, http.StatusOK, &response)
		suite.Equal(models.InviteStatusDeclined, response.Status)
	})

	suite.Run("create", func() {
		teamID := uuid.New()
		suite.mockInvites.EXPECT().Create(gomock.Any(), suite.actor, gomock.Any()).
			Return(&service.InviteResponse{ID: inviteID, TeamID: teamID, Status: models.InviteStatusPending, UsageLimit: 2}, nil)

		recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodPost, "/api/v1/team-invites",
			map[string]interface{}{"team_id": teamID.String(), "usage_limit": 2}, suite.auth)

		testutils.AssertSuccessResponse(suite.T(), recorder, http.StatusCreated)
	})
}

// TestCollaborationHandlerTestSuite runs the test suite
func TestCollaborationHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CollaborationHandlerTestSuite))
}
