// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/transfer"
	"gorm.io/gorm"

	"github.com/xkmato/uvocollab-sub001/internal/config"
	"github.com/xkmato/uvocollab-sub001/internal/models"
	"github.com/xkmato/uvocollab-sub001/internal/utils"
)

// PaymentGateway is the external transfer/charge service. The engine only
// needs capture verification and transfers; settlement details stay outside.
type PaymentGateway interface {
	CreateIntent(amount float64, currency string, metadata map[string]string) (reference, clientSecret string, err error)
	VerifyCapture(reference string) (amount float64, succeeded bool, err error)
	Transfer(amount float64, currency, destination string, metadata map[string]string) (reference string, err error)
}

// StripeGateway implements PaymentGateway on Stripe.
type StripeGateway struct{}

func NewStripeGateway(cfg *config.Config) *StripeGateway {
	stripe.Key = cfg.Payment.StripeSecretKey
	return &StripeGateway{}
}

func (g *StripeGateway) CreateIntent(amount float64, currency string, metadata map[string]string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toCents(amount)),
		Currency: stripe.String(currency),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("failed to create payment intent: %w", err)
	}
	return pi.ID, pi.ClientSecret, nil
}

func (g *StripeGateway) VerifyCapture(reference string) (float64, bool, error) {
	pi, err := paymentintent.Get(reference, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get payment intent: %w", err)
	}
	return fromCents(pi.Amount), pi.Status == stripe.PaymentIntentStatusSucceeded, nil
}

func (g *StripeGateway) Transfer(amount float64, currency, destination string, metadata map[string]string) (string, error) {
	params := &stripe.TransferParams{
		Amount:      stripe.Int64(toCents(amount)),
		Currency:    stripe.String(currency),
		Destination: stripe.String(destination),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	if cid, ok := metadata["collaboration_id"]; ok {
		// One payout per collaboration: a retried or racing release replays
		// the original transfer instead of creating a second one.
		params.SetIdempotencyKey("payout-" + cid)
	}

	tr, err := transfer.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create transfer: %w", err)
	}
	return tr.ID, nil
}

func toCents(amount float64) int64 {
	return int64(amount*100 + 0.5)
}

func fromCents(cents int64) float64 {
	return float64(cents) / 100
}

// PaymentService creates intents bound to a collaboration awaiting payment.
type PaymentService struct {
	db      *gorm.DB
	config  *config.Config
	gateway PaymentGateway
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, gateway PaymentGateway) *PaymentService {
	return &PaymentService{
		db:      db,
		config:  cfg,
		gateway: gateway,
	}
}

// CreateCollaborationIntent opens a payment intent for the exact price the
// collaboration was created with. Only the paying party may call it.
func (s *PaymentService) CreateCollaborationIntent(userID, collaborationID uuid.UUID) (*PaymentIntentResponse, error) {
	var collab models.Collaboration
	if err := s.db.Preload("Podcast").First(&collab, collaborationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollaborationNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if collab.Status != models.CollaborationStatusPendingPayment {
		return nil, fmt.Errorf("collaboration is not awaiting payment (status %s)", collab.Status)
	}

	if collab.Price <= 0 {
		return nil, errors.New("free collaborations do not require payment")
	}

	if payer := s.payerOf(&collab); payer != userID {
		return nil, ErrNotAuthorized
	}

	reference, clientSecret, err := s.gateway.CreateIntent(collab.Price, collab.Currency, map[string]string{
		"collaboration_id": collab.ID.String(),
		"reference_code":   collab.ReferenceCode,
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&collab).Update("payment_reference", reference).Error; err != nil {
		return nil, fmt.Errorf("failed to record payment reference: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: clientSecret,
		PaymentID:    reference,
	}, nil
}

// payerOf resolves which party owes the escrow payment.
func (s *PaymentService) payerOf(collab *models.Collaboration) uuid.UUID {
	if collab.PaymentDirection == models.PaymentDirectionPodcastPaysGuest {
		if counterpart, err := collab.Counterpart(); err == nil {
			return counterpart
		}
	}
	return collab.BuyerID
}

type ConnectPayoutAccountRequest struct {
	Provider          string `json:"provider" validate:"required,oneof=stripe mobile_money"`
	StripeAccountID   string `json:"stripe_account_id,omitempty"`
	MobileMoneyNumber string `json:"mobile_money_number,omitempty"`
	IsDefault         bool   `json:"is_default"`
}

// ConnectPayoutAccount registers a payout destination for a provider. The
// first account becomes the default automatically.
func (s *PaymentService) ConnectPayoutAccount(userID uuid.UUID, req *ConnectPayoutAccountRequest) (*models.PayoutAccount, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	account := &models.PayoutAccount{
		UserID:            userID,
		Provider:          req.Provider,
		StripeAccountID:   req.StripeAccountID,
		MobileMoneyNumber: req.MobileMoneyNumber,
		IsDefault:         req.IsDefault,
	}

	if !account.IsValid() {
		return nil, errors.New("payout account details are incomplete")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.PayoutAccount{}).
			Where("user_id = ?", userID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if existing == 0 {
			account.IsDefault = true
		} else if account.IsDefault {
			if err := tx.Model(&models.PayoutAccount{}).
				Where("user_id = ?", userID).
				Update("is_default", false).Error; err != nil {
				return fmt.Errorf("failed to clear default account: %w", err)
			}
		}
		return tx.Create(account).Error
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// ListPayoutAccounts returns the user's connected payout destinations.
func (s *PaymentService) ListPayoutAccounts(userID uuid.UUID) ([]models.PayoutAccount, error) {
	var accounts []models.PayoutAccount
	if err := s.db.Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch payout accounts: %w", err)
	}
	return accounts, nil
}
