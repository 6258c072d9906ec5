package handlers_test

import (
	"net/http"
	"testing"

	"taskboard-backend/internal/api/handlers"
	apperrors "taskboard-backend/internal/errors"
	"taskboard-backend/internal/mocks"
	"taskboard-backend/internal/service"
	"taskboard-backend/internal/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// LabelHandlerTestSuite defines the test suite for LabelHandler
type LabelHandlerTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockLabelServiceInterface
	httpSuite   *testutils.AuthHTTPTestSuite
	actor       service.Actor
	auth        map[string]string
}

// SetupTest sets up the test suite
func (suite *LabelHandlerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockService = mocks.NewMockLabelServiceInterface(suite.ctrl)
	suite.httpSuite = testutils.SetupAuthenticatedHTTPTest()
	suite.actor = service.Actor{ID: uuid.New(), Email: "admin@test.com", Name: "Test User"}
	suite.auth = suite.httpSuite.BearerFor(suite.actor.ID, suite.actor.Email)

	handler := handlers.NewLabelHandler(suite.mockService)
	suite.httpSuite.API.GET("/teams/:id/labels", handler.ListTeamLabels)
	labels := suite.httpSuite.API.Group("/labels")
	{
		labels.POST("", handler.CreateLabel)
		labels.PATCH("/:id", handler.UpdateLabel)
		labels.DELETE("/:id", handler.DeleteLabel)
	}
}

// TearDownTest cleans up after each test
func (suite *LabelHandlerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *LabelHandlerTestSuite) TestLabelEndpoints() {
	teamID := uuid.New()
	labelID := uuid.New()
	label := service.LabelResponse{ID: labelID, TeamID: teamID, Name: "bug"}
	create := service.CreateLabelRequest{TeamID: teamID, Name: "bug"}

	suite.httpSuite.RunHTTPTestCases(suite.T(), []testutils.HTTPTestCase{
		{
			Name:             "list without token",
			Request:          testutils.MockHTTPRequest{Method: http.MethodGet, URL: "/api/v1/teams/" + teamID.String() + "/labels"},
			ExpectedResponse: testutils.MockHTTPResponse{Status: http.StatusUnauthorized},
		},
		{
			Name: "list",
			Request: testutils.MockHTTPRequest{
				Method:  http.MethodGet,
				URL:     "/api/v1/teams/" + teamID.String() + "/labels",
				Headers: suite.auth,
			},
			ExpectedResponse: testutils.MockHTTPResponse{Status: http.StatusOK, Body: []service.LabelResponse{label}},
			Setup: func() {
				suite.mockService.EXPECT().ListByTeam(gomock.Any(), suite.actor, teamID).Return([]service.LabelResponse{label}, nil)
			},
		},
		{
			Name:             "create",
			Request:          testutils.MockHTTPRequest{Method: http.MethodPost, URL: "/api/v1/labels", Body: create, Headers: suite.auth},
			ExpectedResponse: testutils.MockHTTPResponse{Status: http.StatusCreated, Body: label},
			Setup: func() {
				suite.mockService.EXPECT().Create(gomock.Any(), suite.actor, &create).Return(&label, nil)
			},
		},
		{
			Name:             "create outside the team",
			Request:          testutils.MockHTTPRequest{Method: http.MethodPost, URL: "/api/v1/labels", Body: create, Headers: suite.auth},
			ExpectedResponse: testutils.MockHTTPResponse{Status: http.StatusForbidden, Body: handlers.ErrorResponse{Error: apperrors.ErrNotTeamMember.Error()}},
			Setup: func() {
				suite.mockService.EXPECT().Create(gomock.Any(), suite.actor, &create).Return(nil, apperrors.ErrNotTeamMember)
			},
		},
		{
			Name:             "delete with bad id",
			Request:          testutils.MockHTTPRequest{Method: http.MethodDelete, URL: "/api/v1/labels/not-a-uuid", Headers: suite.auth},
			ExpectedResponse: testutils.MockHTTPResponse{Status: http.StatusBadRequest, Body: handlers.ErrorResponse{Error: "invalid label ID"}},
		},
		{
			Name:             "delete unknown label",
			Request:          testutils.MockHTTPRequest{Method: http.MethodDelete, URL: "/api/v1/labels/" + labelID.String(), Headers: suite.auth},
			ExpectedResponse: testutils.MockHTTPResponse{Status: http.StatusNotFound, Body: handlers.ErrorResponse{Error: "label not found"}},
			Setup: func() {
				suite.mockService.EXPECT().Delete(gomock.Any(), suite.actor, labelID).Return(apperrors.ErrLabelNotFound)
			},
		},
		{
			Name:             "delete",
			Request:          testutils.MockHTTPRequest{Method: http.MethodDelete, URL: "/api/v1/labels/" + labelID.String(), Headers: suite.auth},
			ExpectedResponse: testutils.MockHTTPResponse{Status: http.StatusOK, Body: handlers.MessageResponse{Message: "Label deleted successfully"}},
			Setup: func() {
				suite.mockService.EXPECT().Delete(gomock.Any(), suite.actor, labelID).Return(nil)
			},
		},
	})
}

// TestLabelHandlerTestSuite runs the test suite
func TestLabelHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(LabelHandlerTestSuite))
}
