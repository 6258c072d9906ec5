package service_test

import (
	"context"
	"testing"

	"taskboard-backend/internal/database/models"
	apperrors "taskboard-backend/internal/errors"
	"taskboard-backend/internal/mocks"
	"taskboard-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubTokens struct {
	issuedFor uuid.UUID
}

func (s *stubTokens) GenerateToken(userID uuid.UUID, _, _ string) (string, int64, error) {
	s.issuedFor = userID
	return "signed-token", 3600, nil
}

// UserServiceTestSuite defines the test suite for UserService
type UserServiceTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockUserRepo *mocks.MockUserRepositoryInterface
	tokens       *stubTokens
	userService  *service.UserService
	ctx          context.Context
}

// SetupTest sets up the test suite
func (suite *UserServiceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockUserRepo = mocks.NewMockUserRepositoryInterface(suite.ctrl)
	suite.tokens = &stubTokens{}
	suite.userService = service.NewUserService(suite.mockUserRepo, suite.tokens, service.NewValidator())
	suite.ctx = context.Background()
}

// TearDownTest cleans up after each test
func (suite *UserServiceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *UserServiceTestSuite) TestRegister() {
	newID := uuid.New()
	suite.mockUserRepo.EXPECT().GetByEmail("jane@example.com").Return(nil, gorm.ErrRecordNotFound)
	suite.mockUserRepo.EXPECT().GetByUsername("jane").Return(nil, gorm.ErrRecordNotFound)
	suite.mockUserRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(u *models.User) error {
		suite.Equal("jane@example.com", u.Email)
		suite.NotEqual("s3cret-pass", u.PasswordHash)
		suite.NoError(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")))
		u.ID = newID
		return nil
	})

	resp, err := suite.userService.Register(suite.ctx, &service.RegisterRequest{
		Name:     "Jane",
		Username: "jane",
		Email:    "Jane@Example.com",
		Password: "s3cret-pass",
	})

	suite.Require().NoError(err)
	suite.Equal("signed-token", resp.AccessToken)
	suite.Equal("Bearer", resp.TokenType)
	suite.Equal(newID, resp.User.ID)
	suite.Equal(newID, suite.tokens.issuedFor)
}

func (suite *UserServiceTestSuite) TestRegister_Conflicts() {
	suite.Run("email taken", func() {
		suite.mockUserRepo.EXPECT().GetByEmail("jane@example.com").Return(&models.User{}, nil)

		_, err := suite.userService.Register(suite.ctx, &service.RegisterRequest{
			Name: "Jane", Username: "jane", Email: "jane@example.com", Password: "s3cret-pass",
		})

		suite.ErrorIs(err, apperrors.ErrUserExists)
	})

	suite.Run("username taken", func() {
		suite.mockUserRepo.EXPECT().GetByEmail("jane@example.com").Return(nil, gorm.ErrRecordNotFound)
		suite.mockUserRepo.EXPECT().GetByUsername("jane").Return(&models.User{}, nil)

		_, err := suite.userService.Register(suite.ctx, &service.RegisterRequest{
			Name: "Jane", Username: "jane", Email: "jane@example.com", Password: "s3cret-pass",
		})

		suite.ErrorIs(err, apperrors.ErrUsernameTaken)
	})
}

func (suite *UserServiceTestSuite) TestRegister_Validation() {
	_, err := suite.userService.Register(suite.ctx, &service.RegisterRequest{
		Name: "Jane", Username: "j", Email: "nope", Password: "short",
	})

	suite.True(apperrors.IsValidation(err))
}

func (suite *UserServiceTestSuite) TestLogin() {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	suite.Require().NoError(err)
	user := &models.User{
		SoftDeleteModel: models.SoftDeleteModel{BaseModel: models.BaseModel{ID: uuid.New()}},
		Name:            "Jane",
		Email:           "jane@example.com",
		PasswordHash:    string(hash),
	}

	testCases := []struct {
		name        string
		password    string
		found       bool
		expectedErr error
	}{
		{name: "valid credentials", password: "s3cret-pass", found: true},
		{name: "wrong password", password: "guess-again", found: true, expectedErr: apperrors.ErrInvalidCredentials},
		{name: "unknown email", password: "s3cret-pass", expectedErr: apperrors.ErrInvalidCredentials},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			if tc.found {
				suite.mockUserRepo.EXPECT().GetByEmail("jane@example.com").Return(user, nil)
			} else {
				suite.mockUserRepo.EXPECT().GetByEmail("jane@example.com").Return(nil, gorm.ErrRecordNotFound)
			}

			resp, err := suite.userService.Login(suite.ctx, &service.LoginRequest{Email: "jane@example.com", Password: tc.password})

			if tc.expectedErr != nil {
				suite.ErrorIs(err, tc.expectedErr)
				suite.True(apperrors.IsAuthentication(err))
				return
			}
			suite.Require().NoError(err)
			suite.Equal(user.ID, resp.User.ID)
		})
	}
}

func (suite *UserServiceTestSuite) TestMe_NotFound() {
	id := uuid.New()
	suite.mockUserRepo.EXPECT().GetByID(id).Return(nil, gorm.ErrRecordNotFound)

	_, err := suite.userService.Me(suite.ctx, service.Actor{ID: id})

	suite.ErrorIs(err, apperrors.ErrUserNotFound)
}

// TestUserServiceTestSuite runs the test suite
func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
