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

// ReportingHandlerTestSuite covers dashboards, search, audit logs and exports
type ReportingHandlerTestSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockDashboard *mocks.MockDashboardServiceInterface
	mockSearch    *mocks.MockSearchServiceInterface
	mockAudit     *mocks.MockAuditServiceInterface
	mockExport    *mocks.MockExportServiceInterface
	httpSuite     *testutils.AuthHTTPTestSuite
	actor         service.Actor
	auth          map[string]string
}

// SetupTest sets up the test suite
func (suite *ReportingHandlerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockDashboard = mocks.NewMockDashboardServiceInterface(suite.ctrl)
	suite.mockSearch = mocks.NewMockSearchServiceInterface(suite.ctrl)
	suite.mockAudit = mocks.NewMockAuditServiceInterface(suite.ctrl)
	suite.mockExport = mocks.NewMockExportServiceInterface(suite.ctrl)
	suite.httpSuite = testutils.SetupAuthenticatedHTTPTest()
	suite.actor = service.Actor{ID: uuid.New(), Email: "dev@test.com", Name: "Test User"}
	suite.auth = suite.httpSuite.BearerFor(suite.actor.ID, suite.actor.Email)

	reporting := handlers.NewReportingHandler(suite.mockDashboard, suite.mockSearch, suite.mockAudit)
	export := handlers.NewExportHandler(suite.mockExport)

	api := suite.httpSuite.API
	api.GET("/dashboard", reporting.UserDashboard)
	api.GET("/teams/:id/dashboard", reporting.TeamDashboard)
	api.GET("/search", reporting.Search)
	api.GET("/audit-logs", reporting.AuditLogs)
	api.GET("/tasks/export/csv", export.ExportCSV)
	api.GET("/tasks/export/pdf", export.ExportPDF)
}

// TearDownTest cleans up after each test
func (suite *ReportingHandlerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *ReportingHandlerTestSuite) TestUserDashboard() {
	suite.mockDashboard.EXPECT().User(gomock.Any(), suite.actor).Return(&service.UserDashboardResponse{
		Stats: service.TaskStats{Total: 4, MyAssigned: 2},
	}, nil)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodGet, "/api/v1/dashboard", nil, suite.auth)

	var response service.UserDashboardResponse
	testutils.AssertJSONResponse(suite.T(), recorder, http.StatusOK, &response)
	suite.Equal(int64(4), response.Stats.Total)
	suite.Equal(int64(2), response.Stats.MyAssigned)
}

func (suite *ReportingHandlerTestSuite) TestTeamDashboard_NotMember() {
	teamID := uuid.New()
	suite.mockDashboard.EXPECT().Team(gomock.Any(), suite.actor, teamID).Return(nil, apperrors.ErrNotTeamMember)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodGet, "/api/v1/teams/"+teamID.String()+"/dashboard", nil, suite.auth)

	suite.Equal(http.StatusForbidden, recorder.Code)
}

func (suite *ReportingHandlerTestSuite) TestSearch() {
	suite.Run("passes the raw query", func() {
		suite.mockSearch.EXPECT().Search(gomock.Any(), suite.actor, "api docs").
			Return(&service.SearchResponse{Query: "api docs", Teams: []service.TeamResponse{}, Projects: []service.ProjectResponse{}, Tasks: []service.TaskResponse{}}, nil)

		recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodGet, "/api/v1/search?q=api+docs", nil, suite.auth)

		var response service.SearchResponse
		testutils.AssertJSONResponse(suite.T(), recorder, http.StatusOK, &response)
		suite.Equal("api docs", response.Query)
	})

	suite.Run("too short", func() {
		suite.mockSearch.EXPECT().Search(gomock.Any(), suite.actor, "a").
			Return(nil, apperrors.NewValidationError("q", "must be between 2 and 100 characters"))

		recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodGet, "/api/v1/search?q=a", nil, suite.auth)

		var response handlers.ValidationErrorResponse
		testutils.AssertJSONResponse(suite.T(), recorder, http.StatusUnprocessableEntity, &response)
		suite.Contains(response.Fields, "q")
	})
}

func (suite *ReportingHandlerTestSuite) TestAuditLogs() {
	suite.Run("recent activity without entity", func() {
		suite.mockAudit.EXPECT().Recent(gomock.Any(), suite.actor, 20).Return([]service.AuditLogResponse{}, nil)

		recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodGet, "/api/v1/audit-logs?limit=1000", nil, suite.auth)

		suite.Equal(http.StatusOK, recorder.Code)
	})

	suite.Run("entity history", func() {
		taskID := uuid.New()
		suite.mockAudit.EXPECT().History(gomock.Any(), suite.actor, models.EntityTask, taskID, 2, 10).
			Return(&service.AuditLogListResponse{Entries: []service.AuditLogResponse{}}, nil)

		recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodGet,
			"/api/v1/audit-logs?entity_type=task&entity_id="+taskID.String()+"&page=2&page_size=10", nil, suite.auth)

		suite.Equal(http.StatusOK, recorder.Code)
	})

	suite.Run("invalid entity id", func() {
		recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodGet, "/api/v1/audit-logs?entity_type=task&entity_id=x", nil, suite.auth)

		testutils.AssertErrorResponse(suite.T(), recorder, http.StatusBadRequest, "invalid entity ID")
	})
}

func (suite *ReportingHandlerTestSuite) TestExportCSV() {
	suite.mockExport.EXPECT().Export(gomock.Any(), suite.actor, service.FormatCSV, gomock.Any()).
		DoAndReturn(func(_ interface{}, _ service.Actor, _ string, q *service.ExportQuery) (*service.ExportFile, error) {
			suite.Equal(service.ExportProject, q.Context)
			suite.Equal("done", q.Status)
			return &service.ExportFile{Filename: "project-tasks-export.csv", ContentType: "text/csv", Data: []byte("ID,Name\n")}, nil
		})

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodGet, "/api/v1/tasks/export/csv?context=project&status=done", nil, suite.auth)

	suite.Equal(http.StatusOK, recorder.Code)
	suite.Equal(`attachment; filename="project-tasks-export.csv"`, recorder.Header().Get("Content-Disposition"))
	suite.Contains(recorder.Header().Get("Content-Type"), "text/csv")
	suite.Equal("ID,Name\n", recorder.Body.String())
}

func (suite *ReportingHandlerTestSuite) TestExportPDF_MissingScope() {
	suite.mockExport.EXPECT().Export(gomock.Any(), suite.actor, service.FormatPDF, gomock.Any()).
		Return(nil, apperrors.NewValidationError("team_id", "is required for team exports"))

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodGet, "/api/v1/tasks/export/pdf?context=team", nil, suite.auth)

	suite.Equal(http.StatusUnprocessableEntity, recorder.Code)
}

// TestReportingHandlerTestSuite runs the test suite
func TestReportingHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingHandlerTestSuite))
}
