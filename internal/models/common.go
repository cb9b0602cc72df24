// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the primary key on insert. Application-side UUIDs keep
// the DDL portable across postgres and the sqlite test driver.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// JSONBArray stores an ordered JSON array (append-only sequences such as the
// negotiation history).
type JSONBArray []map[string]interface{}

func (a JSONBArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *JSONBArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// StringArray stores a list of strings as a JSON column (topics, overlap lists).
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(s)
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// Enums
type UserType string

const (
	UserTypeGuest        UserType = "guest"
	UserTypeLegend       UserType = "legend"
	UserTypePodcastOwner UserType = "podcast_owner"
	UserTypeAdmin        UserType = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

type VerificationLevel string

const (
	VerificationLevelUnverified VerificationLevel = "unverified"
	VerificationLevelVerified   VerificationLevel = "verified"
	VerificationLevelPremium    VerificationLevel = "premium"
)

type CollaborationStatus string

const (
	CollaborationStatusPendingReview    CollaborationStatus = "pending_review"
	CollaborationStatusPendingAgreement CollaborationStatus = "pending_agreement"
	CollaborationStatusPendingPayment   CollaborationStatus = "pending_payment"
	CollaborationStatusScheduling       CollaborationStatus = "scheduling"
	CollaborationStatusScheduled        CollaborationStatus = "scheduled"
	CollaborationStatusInProgress       CollaborationStatus = "in_progress"
	CollaborationStatusCompleted        CollaborationStatus = "completed"
	CollaborationStatusDeclined         CollaborationStatus = "declined"
)

type EscrowStatus string

const (
	EscrowStatusHeld     EscrowStatus = "held"
	EscrowStatusReleased EscrowStatus = "released"
)

type PaymentDirection string

const (
	PaymentDirectionPodcastPaysGuest PaymentDirection = "podcast_pays_guest"
	PaymentDirectionGuestPaysPodcast PaymentDirection = "guest_pays_podcast"
	PaymentDirectionFree             PaymentDirection = "free"
)

type PartyRole string

const (
	PartyRoleGuest        PartyRole = "guest"
	PartyRolePodcastOwner PartyRole = "podcast_owner"
)

type ProposalStatus string

const (
	ProposalStatusProposed ProposalStatus = "proposed"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusDeclined ProposalStatus = "declined"
)

type WishlistStatus string

const (
	WishlistStatusPending   WishlistStatus = "pending"
	WishlistStatusMatched   WishlistStatus = "matched"
	WishlistStatusDeclined  WishlistStatus = "declined"
	WishlistStatusCompleted WishlistStatus = "completed"
)

type MatchStatus string

const (
	MatchStatusActive               MatchStatus = "active"
	MatchStatusCollaborationStarted MatchStatus = "collaboration_started"
	MatchStatusDismissedByGuest     MatchStatus = "dismissed_by_guest"
	MatchStatusDismissedByPodcast   MatchStatus = "dismissed_by_podcast"
)

type BudgetAlignment string

const (
	BudgetAlignmentPerfect    BudgetAlignment = "perfect"
	BudgetAlignmentClose      BudgetAlignment = "close"
	BudgetAlignmentNegotiable BudgetAlignment = "negotiable"
)
