// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/xkmato/uvocollab-sub001/internal/models"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.service = NewAuthService(suite.db, testConfig())
}

func (suite *AuthServiceTestSuite) register(username, email string) *AuthResponse {
	resp, err := suite.service.Register(&RegisterRequest{
		Username: username,
		Email:    email,
		Password: "Str0ng!pass",
		UserType: models.UserTypeGuest,
	})
	suite.Require().NoError(err)
	return resp
}

func (suite *AuthServiceTestSuite) TestRegisterIssuesTokens() {
	resp := suite.register("newguest", "newguest@example.com")

	assert.NotEmpty(suite.T(), resp.AccessToken)
	assert.NotEmpty(suite.T(), resp.RefreshToken)
	assert.Equal(suite.T(), "Bearer", resp.TokenType)
	// Display name falls back to the username.
	assert.Equal(suite.T(), "newguest", resp.User.DisplayName)
	assert.NotEqual(suite.T(), "Str0ng!pass", resp.User.PasswordHash)
}

func (suite *AuthServiceTestSuite) TestRegisterRejectsDuplicates() {
	suite.register("newguest", "newguest@example.com")

	_, err := suite.service.Register(&RegisterRequest{
		Username: "otherguest",
		Email:    "newguest@example.com",
		Password: "Str0ng!pass",
		UserType: models.UserTypeGuest,
	})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "email already exists")

	_, err = suite.service.Register(&RegisterRequest{
		Username: "newguest",
		Email:    "fresh@example.com",
		Password: "Str0ng!pass",
		UserType: models.UserTypeGuest,
	})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "username already taken")
}

func (suite *AuthServiceTestSuite) TestRegisterRejectsWeakPassword() {
	_, err := suite.service.Register(&RegisterRequest{
		Username: "newguest",
		Email:    "newguest@example.com",
		Password: "password",
		UserType: models.UserTypeGuest,
	})
	assert.Error(suite.T(), err)
}

func (suite *AuthServiceTestSuite) TestRegisterRejectsUnknownUserType() {
	_, err := suite.service.Register(&RegisterRequest{
		Username: "newguest",
		Email:    "newguest@example.com",
		Password: "Str0ng!pass",
		UserType: models.UserType("admin"),
	})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "invalid user type")
}

func (suite *AuthServiceTestSuite) TestLogin() {
	suite.register("newguest", "newguest@example.com")

	resp, err := suite.service.Login(&LoginRequest{
		Email:    "newguest@example.com",
		Password: "Str0ng!pass",
	})
	suite.Require().NoError(err)
	assert.NotEmpty(suite.T(), resp.AccessToken)
	assert.NotNil(suite.T(), resp.User.LastLoginAt)

	_, err = suite.service.Login(&LoginRequest{
		Email:    "newguest@example.com",
		Password: "wrong-password",
	})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "invalid email or password")
}

func (suite *AuthServiceTestSuite) TestSuspendedAccountCannotLogin() {
	resp := suite.register("newguest", "newguest@example.com")
	suite.db.Model(resp.User).Update("status", models.UserStatusSuspended)

	_, err := suite.service.Login(&LoginRequest{
		Email:    "newguest@example.com",
		Password: "Str0ng!pass",
	})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "suspended")
}

func (suite *AuthServiceTestSuite) TestRefreshToken() {
	resp := suite.register("newguest", "newguest@example.com")

	refreshed, err := suite.service.RefreshToken(resp.RefreshToken)
	suite.Require().NoError(err)
	assert.NotEmpty(suite.T(), refreshed.AccessToken)
	assert.Equal(suite.T(), resp.User.ID, refreshed.User.ID)

	_, err = suite.service.RefreshToken("not-a-token")
	assert.Error(suite.T(), err)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
