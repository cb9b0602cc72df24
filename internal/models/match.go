// internal/models/match.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Match is the permanent record of mutual interest between a guest and a
// podcast. Immutable once created except for Status and NotifiedAt; party
// display data is denormalized at match time.
type Match struct {
	BaseModel
	GuestID   uuid.UUID `json:"guest_id" gorm:"type:uuid;not null;index:idx_matches_pair"`
	PodcastID uuid.UUID `json:"podcast_id" gorm:"type:uuid;not null;index:idx_matches_pair"`

	GuestWishlistID   uuid.UUID `json:"guest_wishlist_id" gorm:"type:uuid;not null"`
	PodcastWishlistID uuid.UUID `json:"podcast_wishlist_id" gorm:"type:uuid;not null"`

	// Snapshot of both parties at match time
	GuestName    string  `json:"guest_name" gorm:"size:255"`
	GuestImage   string  `json:"guest_image" gorm:"size:1024"`
	GuestRate    float64 `json:"guest_rate" gorm:"type:decimal(10,2)"`
	PodcastTitle string  `json:"podcast_title" gorm:"size:255"`
	PodcastImage string  `json:"podcast_image" gorm:"size:1024"`
	PodcastRate  float64 `json:"podcast_rate" gorm:"type:decimal(10,2)"`

	CompatibilityScore int             `json:"compatibility_score" gorm:"not null"`
	TopicOverlap       StringArray     `json:"topic_overlap" gorm:"type:jsonb"`
	BudgetAlignment    BudgetAlignment `json:"budget_alignment" gorm:"type:varchar(20)"`

	Status     MatchStatus `json:"status" gorm:"type:varchar(30);default:'active';index"`
	NotifiedAt *time.Time  `json:"notified_at"`

	Guest   User    `json:"guest,omitempty" gorm:"foreignKey:GuestID"`
	Podcast Podcast `json:"podcast,omitempty" gorm:"foreignKey:PodcastID"`
}
