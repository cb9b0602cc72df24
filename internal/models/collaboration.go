// internal/models/collaboration.go
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Collaboration is the aggregate for one paid or free engagement between a
// buyer and a provider. The counterpart is exactly one of LegendID or
// PodcastID; per-type behavior goes through Counterpart(), not parallel code
// paths.
type Collaboration struct {
	BaseModel
	ReferenceCode string `json:"reference_code" gorm:"size:32;uniqueIndex"`

	// Parties
	BuyerID   uuid.UUID  `json:"buyer_id" gorm:"type:uuid;not null;index"`
	LegendID  *uuid.UUID `json:"legend_id,omitempty" gorm:"type:uuid;index"`
	PodcastID *uuid.UUID `json:"podcast_id,omitempty" gorm:"type:uuid;index"`

	// Commercial terms
	ServiceID        *uuid.UUID       `json:"service_id,omitempty" gorm:"type:uuid;index"`
	MatchID          *uuid.UUID       `json:"match_id,omitempty" gorm:"type:uuid;index"`
	Price            float64          `json:"price" gorm:"type:decimal(10,2);not null"`
	Currency         string           `json:"currency" gorm:"size:10;default:'usd'"`
	PaymentDirection PaymentDirection `json:"payment_direction" gorm:"type:varchar(30)"`
	Topics           StringArray      `json:"topics" gorm:"type:jsonb"`

	// Pitch artifacts
	PitchMessage string `json:"pitch_message,omitempty" gorm:"type:text"`
	BestWorkURL  string `json:"best_work_url,omitempty" gorm:"size:1024"`
	DemoAssetURL string `json:"demo_asset_url,omitempty" gorm:"size:1024"`

	// Lifecycle
	Status       CollaborationStatus `json:"status" gorm:"type:varchar(30);not null;index"`
	EscrowStatus EscrowStatus        `json:"escrow_status" gorm:"type:varchar(20);default:'held'"`
	LockVersion  int                 `json:"-" gorm:"not null;default:0"`
	AcceptedAt   *time.Time          `json:"accepted_at"`
	CompletedAt  *time.Time          `json:"completed_at"`

	// Scheduling
	ScheduleDate     string `json:"schedule_date,omitempty" gorm:"size:20"`
	ScheduleTime     string `json:"schedule_time,omitempty" gorm:"size:20"`
	ScheduleTimezone string `json:"schedule_timezone,omitempty" gorm:"size:64"`
	ScheduleDuration int    `json:"schedule_duration,omitempty"`
	RescheduleCount  int    `json:"reschedule_count" gorm:"not null;default:0"`
	MaxReschedules   int    `json:"max_reschedules" gorm:"not null;default:2"`

	// Negotiation artifacts
	NegotiationHistory JSONBArray    `json:"negotiation_history" gorm:"type:jsonb"`
	Deliverables       []Deliverable `json:"deliverables,omitempty" gorm:"foreignKey:CollaborationID"`

	// Payment capture
	PaymentReference string     `json:"payment_reference,omitempty" gorm:"size:255"`
	PaidAt           *time.Time `json:"paid_at"`

	// Financial settlement, set once at payout
	PlatformCommission *float64 `json:"platform_commission,omitempty" gorm:"type:decimal(10,2)"`
	LegendAmount       *float64 `json:"legend_amount,omitempty" gorm:"type:decimal(10,2)"`
	PayoutReference    string   `json:"payout_reference,omitempty" gorm:"size:255"`
	PayoutError        string   `json:"payout_error,omitempty" gorm:"type:text"`

	// Relationships
	Buyer   User     `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Legend  *User    `json:"legend,omitempty" gorm:"foreignKey:LegendID"`
	Podcast *Podcast `json:"podcast,omitempty" gorm:"foreignKey:PodcastID"`
	Service *Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

var ErrNoCounterpart = errors.New("collaboration has no legend or podcast counterpart")

// Counterpart resolves the provider-side user of the collaboration. For a
// podcast collaboration the Podcast relation must be preloaded.
func (c *Collaboration) Counterpart() (uuid.UUID, error) {
	if c.LegendID != nil {
		return *c.LegendID, nil
	}
	if c.PodcastID != nil {
		if c.Podcast == nil {
			return uuid.Nil, errors.New("podcast relation not loaded")
		}
		return c.Podcast.OwnerID, nil
	}
	return uuid.Nil, ErrNoCounterpart
}

// IsParty reports whether the user is the buyer or the provider side.
func (c *Collaboration) IsParty(userID uuid.UUID) bool {
	if c.BuyerID == userID {
		return true
	}
	counterpart, err := c.Counterpart()
	return err == nil && counterpart == userID
}

// RoleOf returns which side of the collaboration a party sits on. The buyer
// of a guest-appearance collaboration is the guest.
func (c *Collaboration) RoleOf(userID uuid.UUID) (PartyRole, error) {
	if c.BuyerID == userID {
		return PartyRoleGuest, nil
	}
	counterpart, err := c.Counterpart()
	if err != nil {
		return "", err
	}
	if counterpart == userID {
		return PartyRolePodcastOwner, nil
	}
	return "", errors.New("user is not a party to this collaboration")
}

// CurrentSchedule returns the confirmed scheduling details, nil before any
// proposal was accepted.
func (c *Collaboration) CurrentSchedule() *ScheduleSlot {
	if c.ScheduleDate == "" {
		return nil
	}
	return &ScheduleSlot{
		Date:     c.ScheduleDate,
		Time:     c.ScheduleTime,
		Timezone: c.ScheduleTimezone,
		Duration: c.ScheduleDuration,
	}
}

// Deliverable is one append-only delivery record on a collaboration.
type Deliverable struct {
	BaseModel
	CollaborationID uuid.UUID `json:"collaboration_id" gorm:"type:uuid;not null;index"`
	FileName        string    `json:"file_name" gorm:"size:512;not null"`
	FileURL         string    `json:"file_url" gorm:"size:1024;not null"`
	FileSize        int64     `json:"file_size"`
	UploadedBy      uuid.UUID `json:"uploaded_by" gorm:"type:uuid;not null"`
	UploadedAt      time.Time `json:"uploaded_at"`
}
