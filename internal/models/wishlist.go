// internal/models/wishlist.go
package models

import (
	"github.com/google/uuid"
)

// GuestWishlist is a guest's one-sided interest in appearing on a podcast.
type GuestWishlist struct {
	BaseModel
	GuestID     uuid.UUID      `json:"guest_id" gorm:"type:uuid;not null;index:idx_guest_wishlists_pair"`
	PodcastID   uuid.UUID      `json:"podcast_id" gorm:"type:uuid;not null;index:idx_guest_wishlists_pair"`
	Topics      StringArray    `json:"topics" gorm:"type:jsonb"`
	OfferAmount float64        `json:"offer_amount" gorm:"type:decimal(10,2);default:0"`
	Message     string         `json:"message,omitempty" gorm:"type:text"`
	Status      WishlistStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	Guest   User    `json:"guest,omitempty" gorm:"foreignKey:GuestID"`
	Podcast Podcast `json:"podcast,omitempty" gorm:"foreignKey:PodcastID"`
}

// PodcastGuestWishlist is a podcast's one-sided interest in hosting a guest.
// IsRegistered distinguishes platform users from externally-sourced names.
type PodcastGuestWishlist struct {
	BaseModel
	PodcastID       uuid.UUID      `json:"podcast_id" gorm:"type:uuid;not null;index:idx_podcast_wishlists_pair"`
	GuestID         uuid.UUID      `json:"guest_id" gorm:"type:uuid;not null;index:idx_podcast_wishlists_pair"`
	PreferredTopics StringArray    `json:"preferred_topics" gorm:"type:jsonb"`
	BudgetAmount    float64        `json:"budget_amount" gorm:"type:decimal(10,2);default:0"`
	// No column default: false must persist on insert.
	IsRegistered    bool           `json:"is_registered" gorm:"not null"`
	Status          WishlistStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	Podcast Podcast `json:"podcast,omitempty" gorm:"foreignKey:PodcastID"`
	Guest   User    `json:"guest,omitempty" gorm:"foreignKey:GuestID"`
}
