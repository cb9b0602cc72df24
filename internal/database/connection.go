// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xkmato/uvocollab-sub001/internal/config"
	"github.com/xkmato/uvocollab-sub001/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
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
		&models.AuditLog{},
		&models.PlatformNotification{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_type_status ON users(user_type, status)",

		// Podcast and service indexes
		"CREATE INDEX IF NOT EXISTS idx_podcasts_owner ON podcasts(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_services_provider_active ON services(provider_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_services_podcast_active ON services(podcast_id, is_active)",

		// Collaboration indexes
		"CREATE INDEX IF NOT EXISTS idx_collaborations_buyer_status ON collaborations(buyer_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_collaborations_legend_status ON collaborations(legend_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_collaborations_podcast_status ON collaborations(podcast_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_collaborations_created_at ON collaborations(created_at DESC)",

		// Scheduling indexes
		"CREATE INDEX IF NOT EXISTS idx_schedule_proposals_collab_status ON schedule_proposals(collaboration_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_reschedule_requests_collab_status ON reschedule_requests(collaboration_id, status)",

		// Wishlist and match indexes
		"CREATE INDEX IF NOT EXISTS idx_guest_wishlists_status ON guest_wishlists(status)",
		"CREATE INDEX IF NOT EXISTS idx_podcast_guest_wishlists_status ON podcast_guest_wishlists(status)",
		"CREATE INDEX IF NOT EXISTS idx_matches_pair_status ON matches(guest_id, podcast_id, status)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_platform_notifications_user ON platform_notifications(user_id, created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	// Create default admin user
	var adminCount int64
	db.Model(&models.User{}).Where("user_type = ?", models.UserTypeAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			Username:          "admin",
			Email:             "admin@uvocollab.com",
			UserType:          models.UserTypeAdmin,
			VerificationLevel: models.VerificationLevelPremium,
			Status:            models.UserStatusActive,
			DisplayName:       "Platform Administrator",
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("Default admin user created successfully")
	}

	log.Println("Initial data seeding completed")
	return nil
}
