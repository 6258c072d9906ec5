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

// UserHandlerTestSuite defines the test suite for UserHandler
type UserHandlerTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockUserServiceInterface
	handler     *handlers.UserHandler
	httpSuite   *testutils.AuthHTTPTestSuite
}

// SetupTest sets up the test suite
func (suite *UserHandlerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockService = mocks.NewMockUserServiceInterface(suite.ctrl)
	suite.handler = handlers.NewUserHandler(suite.mockService)
	suite.httpSuite = testutils.SetupAuthenticatedHTTPTest()

	public := suite.httpSuite.Router.Group("/api/auth")
	public.POST("/register", suite.handler.Register)
	public.POST("/login", suite.handler.Login)
	suite.httpSuite.API.GET("/me", suite.handler.Me)
}

// TearDownTest cleans up after each test
func (suite *UserHandlerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *UserHandlerTestSuite) TestRegister() {
	req := service.RegisterRequest{Name: "Jane", Username: "jane", Email: "jane@test.com", Password: "s3cret-pass"}
	suite.mockService.EXPECT().Register(gomock.Any(), &req).Return(&service.AuthResponse{AccessToken: "tok", TokenType: "Bearer"}, nil)

	recorder := suite.httpSuite.MakeRequest(http.MethodPost, "/api/auth/register", req)

	var response service.AuthResponse
	testutils.AssertJSONResponse(suite.T(), recorder, http.StatusCreated, &response)
	suite.Equal("tok", response.AccessToken)
}

func (suite *UserHandlerTestSuite) TestRegister_EmailTaken() {
	suite.mockService.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, apperrors.ErrUserExists)

	recorder := suite.httpSuite.MakeRequest(http.MethodPost, "/api/auth/register",
		service.RegisterRequest{Name: "Jane", Username: "jane", Email: "jane@test.com", Password: "s3cret-pass"})

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusConflict, "already exists")
}

func (suite *UserHandlerTestSuite) TestLogin_InvalidCredentials() {
	suite.mockService.EXPECT().Login(gomock.Any(), gomock.Any()).Return(nil, apperrors.ErrInvalidCredentials)

	recorder := suite.httpSuite.MakeRequest(http.MethodPost, "/api/auth/login",
		service.LoginRequest{Email: "jane@test.com", Password: "nope"})

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusUnauthorized, "invalid email or password")
}

func (suite *UserHandlerTestSuite) TestMe() {
	userID := uuid.New()
	suite.mockService.EXPECT().Me(gomock.Any(), service.Actor{ID: userID, Email: "jane@test.com", Name: "Test User"}).
		Return(&service.UserResponse{ID: userID, Email: "jane@test.com"}, nil)

	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodGet, "/api/v1/me", nil, suite.httpSuite.BearerFor(userID, "jane@test.com"))

	var response service.UserResponse
	testutils.AssertJSONResponse(suite.T(), recorder, http.StatusOK, &response)
	suite.Equal(userID, response.ID)
}

func (suite *UserHandlerTestSuite) TestMe_ExpiredOrForeignToken() {
	recorder := suite.httpSuite.MakeRequestWithHeaders(http.MethodGet, "/api/v1/me", nil, map[string]string{"Authorization": "Bearer abc.def.ghi"})

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusUnauthorized, "Invalid or expired token")
}

// TestUserHandlerTestSuite runs the test suite
func TestUserHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerTestSuite))
}
