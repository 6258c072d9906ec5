//go:build integration
// +build integration

package repository

import (
	"testing"
	"time"

	"taskboard-backend/internal/database/models"
	"taskboard-backend/internal/testutils"

	"github.com/stretchr/testify/suite"
)

// InviteRepositoryTestSuite tests the guarded invite transitions
type InviteRepositoryTestSuite struct {
	suite.Suite
	baseTestSuite *testutils.BaseTestSuite
	repos         *Repositories
	factories     *testutils.FactorySet
	owner         *models.User
	team          *models.Team
}

// SetupSuite runs before all tests in the suite
func (suite *InviteRepositoryTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())
	suite.repos = NewRepositories(suite.baseTestSuite.DB)
	suite.factories = testutils.NewFactorySet()
}

// TearDownSuite runs after all tests in the suite
func (suite *InviteRepositoryTestSuite) TearDownSuite() {
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest creates the inviting team
func (suite *InviteRepositoryTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()

	suite.owner = suite.factories.User.Create()
	suite.Require().NoError(suite.repos.Users.Create(suite.owner))
	suite.team = suite.factories.Team.Create(suite.owner.ID)
	suite.Require().NoError(suite.repos.Teams.Create(suite.team))
}

// TearDownTest runs after each test
func (suite *InviteRepositoryTestSuite) TearDownTest() {
	suite.baseTestSuite.TearDownTest()
}

func (suite *InviteRepositoryTestSuite) createInvite(limit int) *models.TeamInvite {
	invite := suite.factories.Invite.Create(suite.team.ID, suite.owner.ID, limit)
	suite.Require().NoError(suite.repos.Invites.Create(invite))
	return invite
}

func (suite *InviteRepositoryTestSuite) TestConsumeUse_StopsAtLimit() {
	invite := suite.createInvite(2)
	now := time.Now().UTC()

	ok, err := suite.repos.Invites.ConsumeUse(invite.ID, now)
	suite.Require().NoError(err)
	suite.True(ok)
	loaded, err := suite.repos.Invites.GetByID(invite.ID)
	suite.Require().NoError(err)
	suite.Equal(1, loaded.UsedCount)
	suite.Equal(models.InviteStatusPending, loaded.Status)

	ok, err = suite.repos.Invites.ConsumeUse(invite.ID, now)
	suite.Require().NoError(err)
	suite.True(ok)
	loaded, err = suite.repos.Invites.GetByID(invite.ID)
	suite.Require().NoError(err)
	suite.Equal(2, loaded.UsedCount)
	suite.Equal(models.InviteStatusAccepted, loaded.Status)

	ok, err = suite.repos.Invites.ConsumeUse(invite.ID, now)
	suite.Require().NoError(err)
	suite.False(ok)
}

func (suite *InviteRepositoryTestSuite) TestConsumeUse_Expired() {
	invite := suite.createInvite(1)

	ok, err := suite.repos.Invites.ConsumeUse(invite.ID, invite.ExpiresAt.Add(time.Minute))

	suite.Require().NoError(err)
	suite.False(ok)
}

func (suite *InviteRepositoryTestSuite) TestTransitionFromPending_Once() {
	invite := suite.createInvite(1)

	ok, err := suite.repos.Invites.TransitionFromPending(invite.ID, models.InviteStatusRevoked)
	suite.Require().NoError(err)
	suite.True(ok)

	ok, err = suite.repos.Invites.TransitionFromPending(invite.ID, models.InviteStatusDeclined)
	suite.Require().NoError(err)
	suite.False(ok)

	loaded, err := suite.repos.Invites.GetByID(invite.ID)
	suite.Require().NoError(err)
	suite.Equal(models.InviteStatusRevoked, loaded.Status)
}

func (suite *InviteRepositoryTestSuite) TestListPendingForEmail() {
	email := "guest@test.com"
	addressed := suite.createInvite(1)
	addressed.InviteeEmail = &email
	suite.Require().NoError(suite.baseTestSuite.DB.Save(addressed).Error)
	suite.createInvite(1)

	invites, err := suite.repos.Invites.ListPendingForEmail(email, time.Now().UTC())

	suite.Require().NoError(err)
	suite.Require().Len(invites, 1)
	suite.Equal(addressed.ID, invites[0].ID)
}

// TestInviteRepositoryTestSuite runs the test suite
func TestInviteRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(InviteRepositoryTestSuite))
}
