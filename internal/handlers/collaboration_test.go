// internal/handlers/collaboration_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xkmato/uvocollab-sub001/internal/config"
	"github.com/xkmato/uvocollab-sub001/internal/middleware"
	"github.com/xkmato/uvocollab-sub001/internal/models"
	"github.com/xkmato/uvocollab-sub001/internal/services"
	"github.com/xkmato/uvocollab-sub001/internal/utils"
)

// stubGateway satisfies the payment gateway without reaching Stripe. The
// handler tests stop before payment, so every call is a hard failure.
type stubGateway struct{}

func (stubGateway) CreateIntent(amount float64, currency string, metadata map[string]string) (string, string, error) {
	return "", "", fmt.Errorf("gateway not available in handler tests")
}

func (stubGateway) VerifyCapture(reference string) (float64, bool, error) {
	return 0, false, fmt.Errorf("gateway not available in handler tests")
}

func (stubGateway) Transfer(amount float64, currency, destination string, metadata map[string]string) (string, error) {
	return "", fmt.Errorf("gateway not available in handler tests")
}

type CollaborationHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine

	guest   *models.User
	owner   *models.User
	podcast *models.Podcast
	offer   *models.Service
}

func (suite *CollaborationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	suite.Require().NoError(db.AutoMigrate(
		&models.User{},
		&models.PayoutAccount{},
		&models.Podcast{},
		&models.Service{},
		&models.Collaboration{},
		&models.Deliverable{},
		&models.GuestWishlist{},
		&models.PodcastGuestWishlist{},
		&models.Match{},
	))
	suite.db = db

	cfg := &config.Config{
		Environment: "test",
		Payment:     config.PaymentConfig{CommissionRate: 0.20, Currency: "usd"},
		Matching:    config.MatchingConfig{MaxReschedules: 2},
	}

	collaborationService := services.NewCollaborationService(db, cfg, nil, stubGateway{})
	handler := NewCollaborationHandler(collaborationService)

	suite.router = gin.New()
	group := suite.router.Group("/v1/collaborations")
	group.Use(middleware.AuthRequired())
	group.POST("/pitch", handler.SubmitPitch)
	group.GET("/:id", handler.GetCollaboration)
	group.PUT("/:id/pitch-response", handler.RespondToPitch)

	suite.guest = suite.createUser("hguest", models.UserTypeGuest)
	suite.owner = suite.createUser("howner", models.UserTypePodcastOwner)

	suite.podcast = &models.Podcast{
		OwnerID:  suite.owner.ID,
		Title:    "Handler Hour",
		IsActive: true,
	}
	suite.Require().NoError(db.Create(suite.podcast).Error)

	suite.offer = &models.Service{
		ProviderID: suite.owner.ID,
		PodcastID:  &suite.podcast.ID,
		Title:      "Guest slot",
		Price:      100,
		Currency:   "usd",
		IsActive:   true,
	}
	suite.Require().NoError(db.Create(suite.offer).Error)
}

func (suite *CollaborationHandlerTestSuite) createUser(username string, userType models.UserType) *models.User {
	user := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		UserType:    userType,
		Status:      models.UserStatusActive,
		DisplayName: username,
	}
	suite.Require().NoError(user.SetPassword("Str0ng!pass"))
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *CollaborationHandlerTestSuite) request(method, path string, body interface{}, as *models.User) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		token, err := utils.GenerateJWT(as.ID, as.Username, string(as.UserType), string(as.VerificationLevel), 1)
		suite.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *CollaborationHandlerTestSuite) pitchBody() map[string]interface{} {
	return map[string]interface{}{
		"service_id":     suite.offer.ID,
		"price":          100,
		"pitch_message":  strings.Repeat("I have stories your listeners have not heard. ", 2),
		"best_work_url":  "https://example.com/best",
		"demo_asset_url": "https://example.com/demo.mp3",
	}
}

func (suite *CollaborationHandlerTestSuite) submitPitch() uuid.UUID {
	w := suite.request(http.MethodPost, "/v1/collaborations/pitch", suite.pitchBody(), suite.guest)
	suite.Require().Equal(http.StatusCreated, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Collaboration models.Collaboration `json:"collaboration"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().True(resp.Success)
	return resp.Data.Collaboration.ID
}

func (suite *CollaborationHandlerTestSuite) TestRequiresAuthentication() {
	w := suite.request(http.MethodPost, "/v1/collaborations/pitch", suite.pitchBody(), nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *CollaborationHandlerTestSuite) TestSubmitPitchCreatesCollaboration() {
	id := suite.submitPitch()

	var collab models.Collaboration
	suite.Require().NoError(suite.db.First(&collab, id).Error)
	assert.Equal(suite.T(), models.CollaborationStatusPendingReview, collab.Status)
	assert.Equal(suite.T(), suite.guest.ID, collab.BuyerID)
}

func (suite *CollaborationHandlerTestSuite) TestSubmitPitchValidationError() {
	body := suite.pitchBody()
	body["pitch_message"] = "too short"

	w := suite.request(http.MethodPost, "/v1/collaborations/pitch", body, suite.guest)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var resp utils.APIResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(suite.T(), resp.Success)
	assert.Equal(suite.T(), "VALIDATION_ERROR", resp.Error.Code)
}

func (suite *CollaborationHandlerTestSuite) TestStrangerCannotRespondToPitch() {
	id := suite.submitPitch()
	stranger := suite.createUser("hstranger", models.UserTypeGuest)

	w := suite.request(http.MethodPut, "/v1/collaborations/"+id.String()+"/pitch-response",
		map[string]interface{}{"action": "accept"}, stranger)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *CollaborationHandlerTestSuite) TestOwnerAcceptsPitch() {
	id := suite.submitPitch()

	w := suite.request(http.MethodPut, "/v1/collaborations/"+id.String()+"/pitch-response",
		map[string]interface{}{"action": "accept"}, suite.owner)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var collab models.Collaboration
	suite.Require().NoError(suite.db.First(&collab, id).Error)
	assert.Equal(suite.T(), models.CollaborationStatusPendingPayment, collab.Status)
}

func (suite *CollaborationHandlerTestSuite) TestGetUnknownCollaboration() {
	w := suite.request(http.MethodGet, "/v1/collaborations/"+uuid.NewString(), nil, suite.guest)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func TestCollaborationHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CollaborationHandlerTestSuite))
}
