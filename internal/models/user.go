// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username          string            `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email             string            `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash      string            `json:"-" gorm:"size:255;not null"`
	UserType          UserType          `json:"user_type" gorm:"type:varchar(20);not null"`
	VerificationLevel VerificationLevel `json:"verification_level" gorm:"type:varchar(20);default:'unverified'"`
	Status            UserStatus        `json:"status" gorm:"type:varchar(20);default:'active'"`
	DisplayName       string            `json:"display_name" gorm:"size:255"`
	ImageURL          string            `json:"image_url" gorm:"size:1024"`
	ProfileData       JSONB             `json:"profile_data" gorm:"type:jsonb"`
	EmailVerifiedAt   *time.Time        `json:"email_verified_at"`
	LastLoginAt       *time.Time        `json:"last_login_at"`

	// Relationships
	Podcasts       []Podcast      `json:"podcasts,omitempty" gorm:"foreignKey:OwnerID"`
	Services       []Service      `json:"services,omitempty" gorm:"foreignKey:ProviderID"`
	PayoutAccounts []PayoutAccount `json:"payout_accounts,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// IsVerified reports whether the user passed identity verification. Feeds the
// verification bonus of the compatibility score.
func (u *User) IsVerified() bool {
	return u.VerificationLevel == VerificationLevelVerified ||
		u.VerificationLevel == VerificationLevelPremium
}

// PayoutAccount holds the payout destination a provider connected. A payout
// cannot be released without a valid account.
type PayoutAccount struct {
	BaseModel
	UserID             uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Provider           string    `json:"provider" gorm:"size:50;not null"` // stripe, mobile_money
	StripeAccountID    string    `json:"stripe_account_id" gorm:"size:255"`
	MobileMoneyNumber  string    `json:"mobile_money_number" gorm:"size:50"`
	BankAccountDetails JSONB     `json:"bank_account_details" gorm:"type:jsonb"`
	IsDefault          bool      `json:"is_default" gorm:"default:false"`
	VerifiedAt         *time.Time `json:"verified_at"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// IsValid reports whether the account can receive a transfer.
func (a *PayoutAccount) IsValid() bool {
	switch a.Provider {
	case "stripe":
		return a.StripeAccountID != ""
	case "mobile_money":
		return a.MobileMoneyNumber != ""
	default:
		return false
	}
}
