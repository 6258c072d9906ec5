package handlers_test

import (
	"net/http"
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

// TaskHandlerTestSuite covers TaskHandler and ProjectHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	ctrl           *gomock.Controller
	mockTasks      *mocks.MockTaskServiceInterface
	mockProjects   *mocks.MockProjectServiceInterface
	taskHandler    *handlers.TaskHandler
	projectHandler *handlers.ProjectHandler
	httpSuite      *testutils.AuthHTTPTestSuite
	actor          service.Actor
	auth           map[string]string
}

// SetupTest sets up the test suite
func (suite *TaskHandlerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockTasks = mocks.NewMockTaskServiceInterface(suite.ctrl)
	suite.mockProjects = mocks.NewMockProjectServiceInterface(suite.ctrl)
	suite.taskHandler = handlers.NewTaskHandler(suite.mockTasks)
	suite.projectHandler = handlers.NewProjectHandler(suite.mockProjects)
	suite.httpSuite = testutils.SetupAuthenticatedHTTPTest()
	suite.actor = service.Actor{ID: uuid.New(), Email: "dev@test.com", Name: "Test User"}
	suite.auth = suite.httpSuite.BearerFor(suite.actor.ID, suite.actor.Email)

	api := suite.httpSuite.API
	api.GET("/tasks", suite.taskHandler.ListTasks)
	api.POST("/tasks", suite.taskHandler.CreateTask)
	api.POST("/tasks/reorder", suite.taskHandler.ReorderTasks)
	api.GET("/tasks/:id", suite.taskHandler.GetTask)
	api.PATCH("/tasks/:id/status", suite.taskHandler.UpdateTaskStatus)
	api.DELETE("/tasks/:id", suite.taskHandler.DeleteTask)
	api.GET("/my-tasks", suite.taskHandler.MyTasks)
	api.DELETE("/projects/:id", suite.projectHandler.DeleteProject)
	api.GET("/projects/:id/kanban", suite.projectHandler.Board)
	api.POST("/projects/:id/members", suite.projectHandler.AddMember)
}

// TearDownTest cleans up after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *TaskHandlerTestSuite) TestCreateTask() {
	projectID := uuid.New()
	suite.mockTasks.EXPECT().Create(gomock.Any(), suite.actor, gomock.Any()).
		DoAndReturn(func(_ interface{}, _ service.Actor, req *service.CreateTaskRequest) (*service.TaskResponse, error) {
			suite.Equal(projectID, req.ProjectID)
			suite.Equal("Write docs", req.Name)
			return &service.TaskResponse{ID: uuid.New(), ProjectID: projectID, Name: req.Name, Status: models.TaskStatusUnplanned}, nil
		})

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodPost, "/api/v1/tasks",
		map[string]interface{}{"project_id": projectID.String(), "name": "Write docs"}, suite.auth)

	var response service.TaskResponse
	testutils.AssertJSONResponse(suite.T(), recorder, http.StatusCreated, &response)
	suite.Equal(models.TaskStatusUnplanned, response.Status)
	suite.Equal(0, response.Position)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_NoProjectAccess() {
	suite.mockTasks.EXPECT().Create(gomock.Any(), suite.actor, gomock.Any()).Return(nil, apperrors.ErrNoProjectAccess)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodPost, "/api/v1/tasks",
		map[string]interface{}{"project_id": uuid.New().String(), "name": "x"}, suite.auth)

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusForbidden, "access to this project")
}

func (suite *TaskHandlerTestSuite) TestUpdateTaskStatus() {
	taskID := uuid.New()
	position := 0
	suite.mockTasks.EXPECT().
		UpdateStatus(gomock.Any(), suite.actor, taskID, &service.UpdateTaskStatusRequest{Status: models.TaskStatusDone, Position: &position}).
		Return(&service.TaskResponse{ID: taskID, Status: models.TaskStatusDone}, nil)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodPatch, "/api/v1/tasks/"+taskID.String()+"/status",
		map[string]interface{}{"status": "Done", "position": 0}, suite.auth)

	var response service.TaskResponse
	testutils.AssertJSONResponse(suite.T(), recorder, http.StatusOK, &response)
	suite.Equal(models.TaskStatusDone, response.Status)
}

func (suite *TaskHandlerTestSuite) TestReorderTasks() {
	t1, t2 := uuid.New(), uuid.New()
	suite.mockTasks.EXPECT().Reorder(gomock.Any(), suite.actor, gomock.Any()).
		DoAndReturn(func(_ interface{}, _ service.Actor, req *service.ReorderTasksRequest) error {
			suite.Require().Len(req.Tasks, 2)
			suite.Equal(t1, req.Tasks[0].ID)
			suite.Equal(1, *req.Tasks[0].Position)
			suite.Equal(0, *req.Tasks[1].Position)
			return nil
		})

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodPost, "/api/v1/tasks/reorder", map[string]interface{}{
		"tasks": []map[string]interface{}{
			{"id": t1.String(), "position": 1},
			{"id": t2.String(), "position": 0},
		},
	}, suite.auth)

	testutils.AssertSuccessResponse(suite.T(), recorder, http.StatusOK)
}

func (suite *TaskHandlerTestSuite) TestListTasks_BindsFilters() {
	projectID := uuid.New()
	suite.mockTasks.EXPECT().List(gomock.Any(), suite.actor, gomock.Any()).
		DoAndReturn(func(_ interface{}, _ service.Actor, q *service.TaskListQuery) (*service.TaskListResponse, error) {
			suite.Equal(projectID.String(), q.ProjectID)
			suite.Equal("Done", q.Status)
			suite.Equal("due_date", q.Sort)
			suite.Equal(3, q.Page)
			return &service.TaskListResponse{Tasks: []service.TaskResponse{}, Page: 3, PageSize: 20}, nil
		})

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodGet,
		"/api/v1/tasks?project_id="+projectID.String()+"&status=Done&sort=due_date&page=3", nil, suite.auth)

	testutils.AssertSuccessResponse(suite.T(), recorder, http.StatusOK)
}

func (suite *TaskHandlerTestSuite) TestMyTasks() {
	suite.mockTasks.EXPECT().MyTasks(gomock.Any(), suite.actor, true, 1, 20).Return(&service.TaskListResponse{}, nil)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodGet, "/api/v1/my-tasks?include_done=true", nil, suite.auth)

	suite.Equal(http.StatusOK, recorder.Code)
}

func (suite *TaskHandlerTestSuite) TestGetTask_InvalidID() {
	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodGet, "/api/v1/tasks/123", nil, suite.auth)

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusBadRequest, "invalid task ID")
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_NotFound() {
	taskID := uuid.New()
	suite.mockTasks.EXPECT().Delete(gomock.Any(), suite.actor, taskID).Return(apperrors.ErrTaskNotFound)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodDelete, "/api/v1/tasks/"+taskID.String(), nil, suite.auth)

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusNotFound, "task not found")
}

func (suite *TaskHandlerTestSuite) TestDeleteProject_NonCreator() {
	projectID := uuid.New()
	suite.mockProjects.EXPECT().Delete(gomock.Any(), suite.actor, projectID).Return(apperrors.ErrProjectDeleteDenied)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodDelete, "/api/v1/projects/"+projectID.String(), nil, suite.auth)

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusForbidden, "Only the project creator")
}

func (suite *TaskHandlerTestSuite) TestBoard() {
	projectID := uuid.New()
	suite.mockProjects.EXPECT().Board(gomock.Any(), suite.actor, projectID).Return(&service.BoardResponse{
		Columns: []service.BoardColumn{{Status: models.TaskStatusUnplanned}},
	}, nil)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodGet, "/api/v1/projects/"+projectID.String()+"/kanban", nil, suite.auth)

	var response service.BoardResponse
	testutils.AssertJSONResponse(suite.T(), recorder, http.StatusOK, &response)
	suite.Len(response.Columns, 1)
}

func (suite *TaskHandlerTestSuite) TestAddProjectMember_AlreadyMember() {
	projectID := uuid.New()
	suite.mockProjects.EXPECT().AddMember(gomock.Any(), suite.actor, projectID, gomock.Any()).Return(nil, apperrors.ErrProjectMemberExists)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodPost, "/api/v1/projects/"+projectID.String()+"/members",
		map[string]string{"user_id": uuid.New().String(), "role": "Member"}, suite.auth)

	suite.Equal(http.StatusConflict, recorder.Code)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
