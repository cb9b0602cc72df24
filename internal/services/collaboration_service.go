// internal/services/collaboration_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/xkmato/uvocollab-sub001/internal/config"
	"github.com/xkmato/uvocollab-sub001/internal/models"
	"github.com/xkmato/uvocollab-sub001/internal/utils"
)

type CollaborationService struct {
	db                  *gorm.DB
	config              *config.Config
	notificationService *NotificationService
	gateway             PaymentGateway
}

type InitiateCollaborationRequest struct {
	PodcastID        uuid.UUID               `json:"podcast_id" validate:"required"`
	ServiceID        *uuid.UUID              `json:"service_id,omitempty"`
	MatchID          *uuid.UUID              `json:"match_id,omitempty"`
	Price            float64                 `json:"price" validate:"min=0"`
	Topics           []string                `json:"topics" validate:"required,min=1,dive,required"`
	PaymentDirection models.PaymentDirection `json:"payment_direction,omitempty"`
	Message          string                  `json:"message,omitempty"`
}

type SubmitPitchRequest struct {
	ServiceID    uuid.UUID `json:"service_id" validate:"required"`
	Price        float64   `json:"price" validate:"min=0"`
	PitchMessage string    `json:"pitch_message" validate:"required,pitch_message"`
	BestWorkURL  string    `json:"best_work_url" validate:"required,http_url"`
	DemoAssetURL string    `json:"demo_asset_url" validate:"required"`
	Topics       []string  `json:"topics,omitempty"`
}

type RespondToPitchRequest struct {
	Action  string `json:"action" validate:"required,oneof=accept decline"`
	Message string `json:"message,omitempty"`
}

type AddDeliverableRequest struct {
	FileName string `json:"file_name" validate:"required"`
	FileURL  string `json:"file_url" validate:"required,http_url"`
	FileSize int64  `json:"file_size" validate:"min=0"`
}

func NewCollaborationService(db *gorm.DB, cfg *config.Config, notificationService *NotificationService, gateway PaymentGateway) *CollaborationService {
	return &CollaborationService{
		db:                  db,
		config:              cfg,
		notificationService: notificationService,
		gateway:             gateway,
	}
}

// InitiateGuestCollaboration opens the negotiation flow between a guest (the
// buyer) and a podcast. Rejects when the pair already has an open
// collaboration.
func (s *CollaborationService) InitiateGuestCollaboration(buyerID uuid.UUID, req *InitiateCollaborationRequest) (*models.Collaboration, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var buyer models.User
	if err := s.db.First(&buyer, buyerID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	var podcast models.Podcast
	if err := s.db.First(&podcast, req.PodcastID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPodcastNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if podcast.OwnerID == buyerID {
		return nil, errors.New("cannot initiate a collaboration with your own podcast")
	}

	if err := s.checkNoOpenCollaboration(buyerID, nil, &req.PodcastID); err != nil {
		return nil, err
	}

	direction := req.PaymentDirection
	if req.Price == 0 {
		direction = models.PaymentDirectionFree
	} else if direction == "" {
		direction = models.PaymentDirectionGuestPaysPodcast
	} else if direction == models.PaymentDirectionFree {
		return nil, errors.New("a free collaboration cannot carry a price")
	}

	referenceCode, err := utils.GenerateReferenceCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reference code: %w", err)
	}

	collab := &models.Collaboration{
		ReferenceCode:    referenceCode,
		BuyerID:          buyerID,
		PodcastID:        &req.PodcastID,
		ServiceID:        req.ServiceID,
		MatchID:          req.MatchID,
		Price:            req.Price,
		Currency:         s.config.Payment.Currency,
		PaymentDirection: direction,
		Topics:           models.StringArray(req.Topics),
		Status:           models.CollaborationStatusPendingAgreement,
		EscrowStatus:     models.EscrowStatusHeld,
		MaxReschedules:   s.config.Matching.MaxReschedules,
		NegotiationHistory: models.JSONBArray{{
			"actor":   buyerID.String(),
			"event":   "initiated",
			"price":   req.Price,
			"topics":  req.Topics,
			"message": req.Message,
			"at":      time.Now().UTC().Format(time.RFC3339),
		}},
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(collab).Error; err != nil {
			return fmt.Errorf("failed to create collaboration: %w", err)
		}

		if req.MatchID != nil {
			res := tx.Model(&models.Match{}).
				Where("id = ? AND status = ?", *req.MatchID, models.MatchStatusActive).
				Update("status", models.MatchStatusCollaborationStarted)
			if res.Error != nil {
				return fmt.Errorf("failed to update match: %w", res.Error)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Buyer").Preload("Podcast").First(collab, collab.ID)

	go s.notifyProvider(collab)

	return collab, nil
}

// SubmitPitch creates a direct pitch against a priced catalogue entry. The
// price the buyer saw must still be the live price.
func (s *CollaborationService) SubmitPitch(buyerID uuid.UUID, req *SubmitPitchRequest) (*models.Collaboration, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var svc models.Service
	if err := s.db.Preload("Podcast").First(&svc, req.ServiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !svc.IsActive {
		return nil, errors.New("service is no longer offered")
	}

	if svc.ProviderID == buyerID {
		return nil, errors.New("cannot pitch your own service")
	}

	// Stale-price detection: the catalogue price may have moved since the
	// buyer loaded it.
	if svc.Price != req.Price {
		return nil, fmt.Errorf("service price has changed (now %.2f), please review and retry", svc.Price)
	}

	var legendID *uuid.UUID
	var podcastID *uuid.UUID
	if svc.PodcastID != nil {
		podcastID = svc.PodcastID
	} else {
		legendID = &svc.ProviderID
	}

	if err := s.checkNoOpenCollaboration(buyerID, legendID, podcastID); err != nil {
		return nil, err
	}

	referenceCode, err := utils.GenerateReferenceCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reference code: %w", err)
	}

	direction := models.PaymentDirectionGuestPaysPodcast
	if req.Price == 0 {
		direction = models.PaymentDirectionFree
	}

	collab := &models.Collaboration{
		ReferenceCode:    referenceCode,
		BuyerID:          buyerID,
		LegendID:         legendID,
		PodcastID:        podcastID,
		ServiceID:        &svc.ID,
		Price:            req.Price,
		Currency:         svc.Currency,
		PaymentDirection: direction,
		Topics:           models.StringArray(req.Topics),
		PitchMessage:     req.PitchMessage,
		BestWorkURL:      req.BestWorkURL,
		DemoAssetURL:     req.DemoAssetURL,
		Status:           models.CollaborationStatusPendingReview,
		EscrowStatus:     models.EscrowStatusHeld,
		MaxReschedules:   s.config.Matching.MaxReschedules,
		NegotiationHistory: models.JSONBArray{{
			"actor": buyerID.String(),
			"event": "pitch_submitted",
			"price": req.Price,
			"at":    time.Now().UTC().Format(time.RFC3339),
		}},
	}

	if err := s.db.Create(collab).Error; err != nil {
		return nil, fmt.Errorf("failed to create collaboration: %w", err)
	}

	s.db.Preload("Buyer").Preload("Podcast").Preload("Legend").First(collab, collab.ID)

	go s.notifyProvider(collab)

	return collab, nil
}

// RespondToPitch is the provider's accept/decline on a pending_review pitch.
func (s *CollaborationService) RespondToPitch(userID, collaborationID uuid.UUID, req *RespondToPitchRequest) (*models.Collaboration, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	collab, err := s.loadCollaboration(collaborationID)
	if err != nil {
		return nil, err
	}

	counterpart, err := collab.Counterpart()
	if err != nil {
		return nil, err
	}
	if counterpart != userID {
		return nil, ErrNotAuthorized
	}

	now := time.Now()
	history := append(collab.NegotiationHistory, map[string]interface{}{
		"actor":   userID.String(),
		"event":   "pitch_" + req.Action,
		"message": req.Message,
		"at":      now.UTC().Format(time.RFC3339),
	})

	var action models.CollaborationAction
	updates := map[string]interface{}{
		"negotiation_history": history,
	}

	switch req.Action {
	case "accept":
		if collab.Price > 0 {
			action = models.ActionAcceptPitch
		} else {
			action = models.ActionAcceptFreePitch
		}
		updates["accepted_at"] = &now
	case "decline":
		action = models.ActionDeclinePitch
	default:
		return nil, errors.New("action must be accept or decline")
	}

	if err := s.transition(s.db, collab, action, updates); err != nil {
		return nil, err
	}

	go s.notifyPitchOutcome(collab, req.Action == "accept")

	return collab, nil
}

// AgreeTerms closes the negotiation phase of a guest collaboration. Only the
// provider side confirms the agreed terms.
func (s *CollaborationService) AgreeTerms(userID, collaborationID uuid.UUID, agreedPrice *float64) (*models.Collaboration, error) {
	collab, err := s.loadCollaboration(collaborationID)
	if err != nil {
		return nil, err
	}

	counterpart, err := collab.Counterpart()
	if err != nil {
		return nil, err
	}
	if counterpart != userID {
		return nil, ErrNotAuthorized
	}

	now := time.Now()
	price := collab.Price
	if agreedPrice != nil {
		if *agreedPrice < 0 {
			return nil, errors.New("agreed price cannot be negative")
		}
		price = *agreedPrice
	}

	history := append(collab.NegotiationHistory, map[string]interface{}{
		"actor": userID.String(),
		"event": "terms_agreed",
		"price": price,
		"at":    now.UTC().Format(time.RFC3339),
	})

	action := models.ActionAgreeTerms
	direction := collab.PaymentDirection
	if price == 0 {
		action = models.ActionAgreeFreeTerms
		direction = models.PaymentDirectionFree
	}

	updates := map[string]interface{}{
		"price":               price,
		"payment_direction":   direction,
		"negotiation_history": history,
		"accepted_at":         &now,
	}

	if err := s.transition(s.db, collab, action, updates); err != nil {
		return nil, err
	}
	collab.Price = price

	return collab, nil
}

// ConfirmPayment applies a confirmed external capture to the collaboration:
// one atomic update into scheduling with funds logically held in escrow.
func (s *CollaborationService) ConfirmPayment(collaborationID uuid.UUID, paymentReference string) (*models.Collaboration, error) {
	if paymentReference == "" {
		return nil, errors.New("payment reference is required")
	}

	collab, err := s.loadCollaboration(collaborationID)
	if err != nil {
		return nil, err
	}

	// The capture must be the one opened for this collaboration: a reference
	// recorded at intent time must match, and a capture can never be applied
	// to a second collaboration.
	if collab.PaymentReference != "" && collab.PaymentReference != paymentReference {
		return nil, errors.New("payment reference does not match this collaboration's intent")
	}

	var reused int64
	if err := s.db.Model(&models.Collaboration{}).
		Where("payment_reference = ? AND id != ?", paymentReference, collab.ID).
		Count(&reused).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if reused > 0 {
		return nil, errors.New("payment reference is already applied to another collaboration")
	}

	amount, succeeded, err := s.gateway.VerifyCapture(paymentReference)
	if err != nil {
		return nil, fmt.Errorf("payment gateway error: %w", err)
	}
	if !succeeded {
		return nil, errors.New("payment has not succeeded")
	}
	if amount != collab.Price {
		return nil, fmt.Errorf("captured amount %.2f does not match collaboration price %.2f", amount, collab.Price)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"payment_reference": paymentReference,
		"paid_at":           &now,
		"escrow_status":     models.EscrowStatusHeld,
	}

	if err := s.transition(s.db, collab, models.ActionCapturePayment, updates); err != nil {
		return nil, err
	}

	go s.notifyPaymentConfirmed(collab)

	return collab, nil
}

// AddDeliverable appends a delivery record. Uploading the first deliverable
// of a scheduled collaboration marks the session as started.
func (s *CollaborationService) AddDeliverable(userID, collaborationID uuid.UUID, req *AddDeliverableRequest) (*models.Collaboration, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	collab, err := s.loadCollaboration(collaborationID)
	if err != nil {
		return nil, err
	}

	if !collab.IsParty(userID) {
		return nil, ErrNotAuthorized
	}

	if collab.Status != models.CollaborationStatusScheduled &&
		collab.Status != models.CollaborationStatusInProgress {
		return nil, fmt.Errorf("cannot add deliverables in status %s", collab.Status)
	}

	deliverable := &models.Deliverable{
		CollaborationID: collab.ID,
		FileName:        req.FileName,
		FileURL:         req.FileURL,
		FileSize:        req.FileSize,
		UploadedBy:      userID,
		UploadedAt:      time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(deliverable).Error; err != nil {
			return fmt.Errorf("failed to create deliverable: %w", err)
		}

		if collab.Status == models.CollaborationStatusScheduled {
			return s.transition(tx, collab, models.ActionStartSession, map[string]interface{}{})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	collab.Deliverables = append(collab.Deliverables, *deliverable)
	return collab, nil
}

// CompletePayout releases escrow: computes the commission split, transfers
// the provider share through the gateway, and only on success commits the
// completed state. A gateway failure leaves the collaboration in_progress
// with the failure recorded, safe to retry.
func (s *CollaborationService) CompletePayout(buyerID, collaborationID uuid.UUID) (*models.Collaboration, error) {
	collab, err := s.loadCollaboration(collaborationID)
	if err != nil {
		return nil, err
	}

	if collab.BuyerID != buyerID {
		return nil, ErrNotAuthorized
	}

	if collab.Status != models.CollaborationStatusInProgress {
		return nil, fmt.Errorf("cannot release payout in status %s", collab.Status)
	}

	if collab.EscrowStatus == models.EscrowStatusReleased {
		return nil, errors.New("escrow has already been released")
	}

	var deliverableCount int64
	if err := s.db.Model(&models.Deliverable{}).
		Where("collaboration_id = ?", collab.ID).
		Count(&deliverableCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count deliverables: %w", err)
	}
	if deliverableCount == 0 {
		return nil, errors.New("cannot complete a collaboration without deliverables")
	}

	counterpart, err := collab.Counterpart()
	if err != nil {
		return nil, err
	}

	commission := collab.Price * s.config.Payment.CommissionRate
	payout := collab.Price - commission

	now := time.Now()
	updates := map[string]interface{}{
		"platform_commission": commission,
		"legend_amount":       payout,
		"escrow_status":       models.EscrowStatusReleased,
		"completed_at":        &now,
		"payout_error":        "",
	}

	if collab.Price > 0 {
		var account models.PayoutAccount
		err = s.db.Where("user_id = ? AND is_default = ?", counterpart, true).First(&account).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = s.db.Where("user_id = ?", counterpart).First(&account).Error
		}
		if err != nil {
			return nil, errors.New("provider has not connected a payout account")
		}
		if !account.IsValid() {
			return nil, errors.New("provider payout account is not valid")
		}

		destination := account.StripeAccountID
		if account.Provider == "mobile_money" {
			destination = account.MobileMoneyNumber
		}

		reference, err := s.gateway.Transfer(payout, collab.Currency, destination, map[string]string{
			"collaboration_id": collab.ID.String(),
			"reference_code":   collab.ReferenceCode,
		})
		if err != nil {
			// Record the failure for operator visibility; state stays
			// in_progress so the buyer can retry.
			s.db.Model(&models.Collaboration{}).
				Where("id = ?", collab.ID).
				Update("payout_error", err.Error())
			return nil, fmt.Errorf("payout transfer failed: %w", err)
		}
		updates["payout_reference"] = reference
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.transition(tx, collab, models.ActionReleasePayout, updates); err != nil {
			return err
		}

		// Close out any wishlist entries behind this collaboration.
		if collab.PodcastID != nil {
			tx.Model(&models.GuestWishlist{}).
				Where("guest_id = ? AND podcast_id = ? AND status = ?",
					collab.BuyerID, *collab.PodcastID, models.WishlistStatusMatched).
				Update("status", models.WishlistStatusCompleted)
			tx.Model(&models.PodcastGuestWishlist{}).
				Where("podcast_id = ? AND guest_id = ? AND status = ?",
					*collab.PodcastID, collab.BuyerID, models.WishlistStatusMatched).
				Update("status", models.WishlistStatusCompleted)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	collab.PlatformCommission = &commission
	collab.LegendAmount = &payout
	collab.EscrowStatus = models.EscrowStatusReleased
	if ref, ok := updates["payout_reference"].(string); ok {
		collab.PayoutReference = ref
	}

	go s.notifyPayoutReleased(collab, counterpart)

	return collab, nil
}

// GetCollaboration returns the aggregate to one of its parties (or an admin).
func (s *CollaborationService) GetCollaboration(userID, collaborationID uuid.UUID) (*models.Collaboration, error) {
	collab, err := s.loadCollaboration(collaborationID)
	if err != nil {
		return nil, err
	}

	if !collab.IsParty(userID) {
		var user models.User
		if err := s.db.First(&user, userID).Error; err != nil {
			return nil, ErrNotAuthorized
		}
		if user.UserType != models.UserTypeAdmin {
			return nil, ErrNotAuthorized
		}
	}

	s.db.Preload("Deliverables").First(collab, collab.ID)
	return collab, nil
}

// ListCollaborations returns the user's collaborations on either side.
func (s *CollaborationService) ListCollaborations(userID uuid.UUID, params utils.PaginationParams) ([]models.Collaboration, int64, error) {
	query := s.db.Model(&models.Collaboration{}).
		Where("buyer_id = ? OR legend_id = ? OR podcast_id IN (SELECT id FROM podcasts WHERE owner_id = ?)",
			userID, userID, userID).
		Preload("Podcast").Preload("Legend")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count collaborations: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "status", "price"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var collaborations []models.Collaboration
	if err := query.Find(&collaborations).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch collaborations: %w", err)
	}

	return collaborations, total, nil
}

// Helpers

func (s *CollaborationService) loadCollaboration(id uuid.UUID) (*models.Collaboration, error) {
	var collab models.Collaboration
	if err := s.db.Preload("Buyer").Preload("Podcast").Preload("Legend").
		First(&collab, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollaborationNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &collab, nil
}

// transition performs one guarded state change as a compare-and-swap on
// lock_version. A concurrent transition on the same collaboration makes the
// second writer fail with ErrConcurrentUpdate instead of silently clobbering.
func (s *CollaborationService) transition(tx *gorm.DB, collab *models.Collaboration, action models.CollaborationAction, updates map[string]interface{}) error {
	next, err := models.NextStatus(collab.Status, action)
	if err != nil {
		return err
	}

	updates["status"] = next
	updates["lock_version"] = collab.LockVersion + 1

	res := tx.Model(&models.Collaboration{}).
		Where("id = ? AND lock_version = ?", collab.ID, collab.LockVersion).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update collaboration: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}

	collab.Status = next
	collab.LockVersion++
	return nil
}

// checkNoOpenCollaboration enforces at most one open engagement per pair.
func (s *CollaborationService) checkNoOpenCollaboration(buyerID uuid.UUID, legendID, podcastID *uuid.UUID) error {
	query := s.db.Model(&models.Collaboration{}).
		Where("buyer_id = ? AND status IN ?", buyerID, models.OpenStatuses())

	switch {
	case legendID != nil:
		query = query.Where("legend_id = ?", *legendID)
	case podcastID != nil:
		query = query.Where("podcast_id = ?", *podcastID)
	default:
		return errors.New("collaboration must name a legend or a podcast")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check open collaborations: %w", err)
	}
	if count > 0 {
		return errors.New("an open collaboration already exists between these parties")
	}
	return nil
}

// Notification helpers; dispatch failures are logged, never surfaced.

func (s *CollaborationService) notifyProvider(collab *models.Collaboration) {
	if s.notificationService == nil {
		return
	}

	counterpart, err := collab.Counterpart()
	if err != nil {
		return
	}

	var provider models.User
	if err := s.db.First(&provider, counterpart).Error; err != nil {
		logrus.WithError(err).Warn("Provider not found for pitch notification")
		return
	}

	if err := s.notificationService.SendPitchReceivedNotification(collab, &provider); err != nil {
		logrus.WithError(err).Warn("Failed to send pitch notification")
	}
}

func (s *CollaborationService) notifyPitchOutcome(collab *models.Collaboration, accepted bool) {
	if s.notificationService == nil {
		return
	}

	var buyer models.User
	if err := s.db.First(&buyer, collab.BuyerID).Error; err != nil {
		return
	}

	if err := s.notificationService.SendPitchOutcomeNotification(collab, &buyer, accepted); err != nil {
		logrus.WithError(err).Warn("Failed to send pitch outcome notification")
	}
}

func (s *CollaborationService) notifyPaymentConfirmed(collab *models.Collaboration) {
	if s.notificationService == nil {
		return
	}

	counterpart, err := collab.Counterpart()
	if err != nil {
		return
	}

	var provider models.User
	if err := s.db.First(&provider, counterpart).Error; err != nil {
		return
	}

	if err := s.notificationService.SendPaymentConfirmedNotification(collab, &provider); err != nil {
		logrus.WithError(err).Warn("Failed to send payment notification")
	}
}

func (s *CollaborationService) notifyPayoutReleased(collab *models.Collaboration, counterpart uuid.UUID) {
	if s.notificationService == nil {
		return
	}

	var provider models.User
	if err := s.db.First(&provider, counterpart).Error; err != nil {
		return
	}

	if err := s.notificationService.SendPayoutReleasedNotification(collab, &provider); err != nil {
		logrus.WithError(err).Warn("Failed to send payout notification")
	}
}
