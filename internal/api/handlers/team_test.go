package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
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

// TeamHandlerTestSuite defines the test suite for TeamHandler
type TeamHandlerTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockTeamServiceInterface
	handler     *handlers.TeamHandler
	httpSuite   *testutils.AuthHTTPTestSuite
	actor       service.Actor
	auth        map[string]string
}

// SetupTest sets up the test suite
func (suite *TeamHandlerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockService = mocks.NewMockTeamServiceInterface(suite.ctrl)
	suite.handler = handlers.NewTeamHandler(suite.mockService)
	suite.httpSuite = testutils.SetupAuthenticatedHTTPTest()
	suite.actor = service.Actor{ID: uuid.New(), Email: "owner@test.com", Name: "Test User"}
	suite.auth = suite.httpSuite.BearerFor(suite.actor.ID, suite.actor.Email)

	teams := suite.httpSuite.API.Group("/teams")
	{
		teams.GET("", suite.handler.ListTeams)
		teams.POST("", suite.handler.CreateTeam)
		teams.GET("/:id", suite.handler.GetTeam)
		teams.PUT("/:id", suite.handler.UpdateTeam)
		teams.DELETE("/:id", suite.handler.DeleteTeam)
		teams.POST("/:id/leave", suite.handler.LeaveTeam)
		teams.POST("/:id/transfer-ownership", suite.handler.TransferOwnership)
		teams.PATCH("/:id/members/role", suite.handler.UpdateMemberRole)
		teams.DELETE("/:id/members", suite.handler.RemoveMember)
	}
}

// TearDownTest cleans up after each test
func (suite *TeamHandlerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *TeamHandlerTestSuite) TestCreateTeam() {
	req := service.CreateTeamRequest{Name: "Core", Description: "Platform team"}
	created := &service.TeamResponse{ID: uuid.New(), Name: "Core", CreatedBy: suite.actor.ID}
	suite.mockService.EXPECT().Create(gomock.Any(), suite.actor, &req).Return(created, nil)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodPost, "/api/v1/teams", req, suite.auth)

	var response service.TeamResponse
	testutils.AssertJSONResponse(suite.T(), recorder, http.StatusCreated, &response)
	suite.Equal(created.ID, response.ID)
}

func (suite *TeamHandlerTestSuite) TestCreateTeam_RequiresToken() {
	recorder := suite.httpSuite.MakeRequest(http.MethodPost, "/api/v1/teams", service.CreateTeamRequest{Name: "Core"})

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusUnauthorized, "Authorization header is required")
}

func (suite *TeamHandlerTestSuite) TestCreateTeam_InvalidJSON() {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/teams", bytes.NewBufferString("invalid json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", suite.auth["Authorization"])
	recorder := httptest.NewRecorder()

	suite.httpSuite.Router.ServeHTTP(recorder, req)

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusBadRequest, "invalid request body")
}

func (suite *TeamHandlerTestSuite) TestCreateTeam_ValidationFailure() {
	suite.mockService.EXPECT().Create(gomock.Any(), suite.actor, gomock.Any()).
		Return(nil, apperrors.NewFieldsValidationError(map[string]string{"name": "is required"}))

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodPost, "/api/v1/teams", service.CreateTeamRequest{}, suite.auth)

	var response handlers.ValidationErrorResponse
	testutils.AssertJSONResponse(suite.T(), recorder, http.StatusUnprocessableEntity, &response)
	suite.Equal("validation failed", response.Error)
	suite.Equal("is required", response.Fields["name"])
}

func (suite *TeamHandlerTestSuite) TestGetTeam() {
	teamID := uuid.New()

	testCases := []struct {
		name           string
		url            string
		setup          func()
		expectedStatus int
	}{
		{
			name: "found",
			url:  "/api/v1/teams/" + teamID.String(),
			setup: func() {
				suite.mockService.EXPECT().Get(gomock.Any(), suite.actor, teamID).Return(&service.TeamResponse{ID: teamID}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid id",
			url:            "/api/v1/teams/not-a-uuid",
			setup:          func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "not a member",
			url:  "/api/v1/teams/" + teamID.String(),
			setup: func() {
				suite.mockService.EXPECT().Get(gomock.Any(), suite.actor, teamID).Return(nil, apperrors.ErrNotTeamMember)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "not found",
			url:  "/api/v1/teams/" + teamID.String(),
			setup: func() {
				suite.mockService.EXPECT().Get(gomock.Any(), suite.actor, teamID).Return(nil, apperrors.ErrTeamNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			tc.setup()

			recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodGet, tc.url, nil, suite.auth)

			suite.Equal(tc.expectedStatus, recorder.Code)
		})
	}
}

func (suite *TeamHandlerTestSuite) TestListTeams_Pagination() {
	suite.mockService.EXPECT().List(gomock.Any(), suite.actor, 2, 20).Return(&service.TeamListResponse{Page: 2, PageSize: 20}, nil)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodGet, "/api/v1/teams?page=2&page_size=500", nil, suite.auth)

	testutils.AssertSuccessResponse(suite.T(), recorder, http.StatusOK)
}

func (suite *TeamHandlerTestSuite) TestLeaveTeam_OwnerConflict() {
	teamID := uuid.New()
	suite.mockService.EXPECT().Leave(gomock.Any(), suite.actor, teamID).Return(apperrors.ErrOwnerCannotLeave)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodPost, "/api/v1/teams/"+teamID.String()+"/leave", nil, suite.auth)

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusConflict, "Transfer ownership first")
}

func (suite *TeamHandlerTestSuite) TestTransferOwnership() {
	teamID := uuid.New()
	newOwner := uuid.New()
	suite.mockService.EXPECT().
		TransferOwnership(gomock.Any(), suite.actor, teamID, &service.TransferOwnershipRequest{NewOwnerID: newOwner}).
		Return(&service.TeamResponse{ID: teamID, CreatedBy: newOwner}, nil)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodPost, "/api/v1/teams/"+teamID.String()+"/transfer-ownership",
		map[string]string{"new_owner_id": newOwner.String()}, suite.auth)

	var response service.TeamResponse
	testutils.AssertJSONResponse(suite.T(), recorder, http.StatusOK, &response)
	suite.Equal(newOwner, response.CreatedBy)
}

func (suite *TeamHandlerTestSuite) TestUpdateMemberRole() {
	teamID := uuid.New()
	userID := uuid.New()
	suite.mockService.EXPECT().
		UpdateMemberRole(gomock.Any(), suite.actor, teamID, &service.UpdateMemberRoleRequest{UserID: userID, Role: models.TeamRoleAdmin}).
		Return(&service.TeamMemberResponse{UserID: userID, TeamRole: models.TeamRoleAdmin}, nil)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodPatch, "/api/v1/teams/"+teamID.String()+"/members/role",
		map[string]string{"user_id": userID.String(), "role": "Admin"}, suite.auth)

	testutils.AssertSuccessResponse(suite.T(), recorder, http.StatusOK)
}

func (suite *TeamHandlerTestSuite) TestRemoveMember_Owner() {
	teamID := uuid.New()
	suite.mockService.EXPECT().RemoveMember(gomock.Any(), suite.actor, teamID, gomock.Any()).Return(apperrors.ErrCannotRemoveOwner)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodDelete, "/api/v1/teams/"+teamID.String()+"/members",
		map[string]string{"user_id": uuid.New().String()}, suite.auth)

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusConflict, "Cannot remove the team owner")
}

func (suite *TeamHandlerTestSuite) TestDeleteTeam() {
	teamID := uuid.New()

	suite.Run("owner", func() {
		suite.mockService.EXPECT().Delete(gomock.Any(), suite.actor, teamID).Return(nil)

		recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodDelete, "/api/v1/teams/"+teamID.String(), nil, suite.auth)

		var response handlers.MessageResponse
		testutils.AssertJSONResponse(suite.T(), recorder, http.StatusOK, &response)
		suite.Equal("Team deleted successfully", response.Message)
	})

	suite.Run("admin", func() {
		suite.mockService.EXPECT().Delete(gomock.Any(), suite.actor, teamID).Return(apperrors.ErrInsufficientTeamRole)

		recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodDelete, "/api/v1/teams/"+teamID.String(), nil, suite.auth)

		suite.Equal(http.StatusForbidden, recorder.Code)
	})
}

// TestTeamHandlerTestSuite runs the test suite
func TestTeamHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TeamHandlerTestSuite))
}
