// internal/services/testutil_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xkmato/uvocollab-sub001/internal/config"
	"github.com/xkmato/uvocollab-sub001/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.PayoutAccount{},
		&models.Podcast{},
		&models.Service{},
		&models.Collaboration{},
		&models.Deliverable{},
		&models.ScheduleProposal{},
		&models.RescheduleRequest{},
		&models.GuestWishlist{},
		&models.PodcastGuestWishlist{},
		&models.Match{},
		&models.PlatformNotification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Payment: config.PaymentConfig{
			CommissionRate: 0.20,
			Currency:       "usd",
		},
		Matching: config.MatchingConfig{
			SharedSecret:   "test-secret",
			MaxReschedules: 2,
		},
		JWT: config.JWTConfig{
			SecretKey:       "test-jwt-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	}
}

// fakeGateway is an in-memory PaymentGateway for tests.
type fakeGateway struct {
	captures      map[string]fakeCapture
	transfers     map[string]string
	transferErr   error
	transferCalls int
}

type fakeCapture struct {
	amount    float64
	succeeded bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		captures:  make(map[string]fakeCapture),
		transfers: make(map[string]string),
	}
}

func (g *fakeGateway) addCapture(reference string, amount float64, succeeded bool) {
	g.captures[reference] = fakeCapture{amount: amount, succeeded: succeeded}
}

func (g *fakeGateway) CreateIntent(amount float64, currency string, metadata map[string]string) (string, string, error) {
	reference := "pi_" + uuid.NewString()[:8]
	g.captures[reference] = fakeCapture{amount: amount, succeeded: true}
	return reference, "secret_" + reference, nil
}

func (g *fakeGateway) VerifyCapture(reference string) (float64, bool, error) {
	capture, ok := g.captures[reference]
	if !ok {
		return 0, false, fmt.Errorf("unknown payment reference %s", reference)
	}
	return capture.amount, capture.succeeded, nil
}

// Transfer mirrors the gateway's idempotency: a repeated transfer keyed on the
// same collaboration replays the first one instead of paying out again.
func (g *fakeGateway) Transfer(amount float64, currency, destination string, metadata map[string]string) (string, error) {
	key := metadata["collaboration_id"]
	if key != "" {
		if reference, ok := g.transfers[key]; ok {
			return reference, nil
		}
	}

	g.transferCalls++
	if g.transferErr != nil {
		return "", g.transferErr
	}

	reference := "tr_" + uuid.NewString()[:8]
	if key != "" {
		g.transfers[key] = reference
	}
	return reference, nil
}

func createTestUser(t *testing.T, db *gorm.DB, username string, userType models.UserType) *models.User {
	t.Helper()

	user := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		UserType:    userType,
		Status:      models.UserStatusActive,
		DisplayName: username,
	}
	if err := user.SetPassword("TestPass123!"); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func createTestPodcast(t *testing.T, db *gorm.DB, ownerID uuid.UUID, title string, topics []string) *models.Podcast {
	t.Helper()

	podcast := &models.Podcast{
		OwnerID:  ownerID,
		Title:    title,
		Topics:   models.StringArray(topics),
		Category: "music",
		IsActive: true,
	}
	if err := db.Create(podcast).Error; err != nil {
		t.Fatalf("failed to create podcast: %v", err)
	}
	return podcast
}

func createTestService(t *testing.T, db *gorm.DB, providerID uuid.UUID, podcastID *uuid.UUID, price float64) *models.Service {
	t.Helper()

	service := &models.Service{
		ProviderID: providerID,
		PodcastID:  podcastID,
		Title:      "Guest appearance",
		Price:      price,
		Currency:   "usd",
		IsActive:   true,
	}
	if err := db.Create(service).Error; err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return service
}
