// internal/models/podcast.go
package models

import (
	"github.com/google/uuid"
)

type Podcast struct {
	BaseModel
	OwnerID     uuid.UUID   `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title       string      `json:"title" gorm:"size:255;not null"`
	Description string      `json:"description" gorm:"type:text"`
	CoverImage  string      `json:"cover_image" gorm:"size:1024"`
	Topics      StringArray `json:"topics" gorm:"type:jsonb"`
	Category    string      `json:"category" gorm:"size:100;index"`
	IsActive    bool        `json:"is_active" gorm:"default:true"`

	// Relationships
	Owner    User      `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Services []Service `json:"services,omitempty" gorm:"foreignKey:PodcastID"`
}

// Service is a priced catalogue entry a provider offers: a legend's feature
// slot or a podcast's guest appearance. Collaborations reference the entry they
// were pitched against; its price at creation time is the escrowed price.
type Service struct {
	BaseModel
	ProviderID  uuid.UUID  `json:"provider_id" gorm:"type:uuid;not null;index"`
	PodcastID   *uuid.UUID `json:"podcast_id" gorm:"type:uuid;index"`
	Title       string     `json:"title" gorm:"size:255;not null"`
	Description string     `json:"description" gorm:"type:text"`
	Price       float64    `json:"price" gorm:"type:decimal(10,2);not null"`
	Currency    string     `json:"currency" gorm:"size:10;default:'usd'"`
	IsActive    bool       `json:"is_active" gorm:"default:true"`

	// Relationships
	Provider User     `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
	Podcast  *Podcast `json:"podcast,omitempty" gorm:"foreignKey:PodcastID"`
}
