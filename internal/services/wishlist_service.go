// internal/services/wishlist_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xkmato/uvocollab-sub001/internal/models"
	"github.com/xkmato/uvocollab-sub001/internal/utils"
)

type WishlistService struct {
	db *gorm.DB
}

type AddGuestWishlistRequest struct {
	PodcastID   uuid.UUID `json:"podcast_id" validate:"required"`
	Topics      []string  `json:"topics" validate:"required,min=1,dive,required"`
	OfferAmount float64   `json:"offer_amount" validate:"min=0"`
	Message     string    `json:"message,omitempty" validate:"max=2000"`
}

type AddPodcastWishlistRequest struct {
	GuestID         uuid.UUID `json:"guest_id" validate:"required"`
	PreferredTopics []string  `json:"preferred_topics" validate:"required,min=1,dive,required"`
	BudgetAmount    float64   `json:"budget_amount" validate:"min=0"`
}

func NewWishlistService(db *gorm.DB) *WishlistService {
	return &WishlistService{db: db}
}

// AddGuestWishlist records a guest's interest in a podcast. One pending entry
// per pair.
func (s *WishlistService) AddGuestWishlist(guestID uuid.UUID, req *AddGuestWishlistRequest) (*models.GuestWishlist, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var podcast models.Podcast
	if err := s.db.First(&podcast, req.PodcastID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPodcastNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if podcast.OwnerID == guestID {
		return nil, errors.New("cannot wishlist your own podcast")
	}

	var existing int64
	if err := s.db.Model(&models.GuestWishlist{}).
		Where("guest_id = ? AND podcast_id = ? AND status IN ?",
			guestID, req.PodcastID,
			[]models.WishlistStatus{models.WishlistStatusPending, models.WishlistStatusMatched}).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if existing > 0 {
		return nil, errors.New("podcast is already on your wishlist")
	}

	entry := &models.GuestWishlist{
		GuestID:     guestID,
		PodcastID:   req.PodcastID,
		Topics:      models.StringArray(req.Topics),
		OfferAmount: req.OfferAmount,
		Message:     req.Message,
		Status:      models.WishlistStatusPending,
	}

	if err := s.db.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create wishlist entry: %w", err)
	}

	return entry, nil
}

// AddPodcastWishlist records a podcast's interest in hosting a guest.
func (s *WishlistService) AddPodcastWishlist(ownerID, podcastID uuid.UUID, req *AddPodcastWishlistRequest) (*models.PodcastGuestWishlist, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var podcast models.Podcast
	if err := s.db.First(&podcast, podcastID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPodcastNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if podcast.OwnerID != ownerID {
		return nil, ErrNotAuthorized
	}

	if req.GuestID == ownerID {
		return nil, errors.New("cannot wishlist yourself")
	}

	isRegistered := true
	var guest models.User
	if err := s.db.First(&guest, req.GuestID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("database error: %w", err)
		}
		isRegistered = false
	}

	var existing int64
	if err := s.db.Model(&models.PodcastGuestWishlist{}).
		Where("podcast_id = ? AND guest_id = ? AND status IN ?",
			podcastID, req.GuestID,
			[]models.WishlistStatus{models.WishlistStatusPending, models.WishlistStatusMatched}).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if existing > 0 {
		return nil, errors.New("guest is already on this podcast's wishlist")
	}

	entry := &models.PodcastGuestWishlist{
		PodcastID:       podcastID,
		GuestID:         req.GuestID,
		PreferredTopics: models.StringArray(req.PreferredTopics),
		BudgetAmount:    req.BudgetAmount,
		IsRegistered:    isRegistered,
		Status:          models.WishlistStatusPending,
	}

	if err := s.db.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create wishlist entry: %w", err)
	}

	return entry, nil
}

// ListGuestWishlist returns a guest's own wishlist entries.
func (s *WishlistService) ListGuestWishlist(guestID uuid.UUID, params utils.PaginationParams) ([]models.GuestWishlist, int64, error) {
	query := s.db.Model(&models.GuestWishlist{}).
		Where("guest_id = ?", guestID).
		Preload("Podcast")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count wishlist entries: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "status", "offer_amount"})
	query = utils.ApplyPagination(query, params)

	var entries []models.GuestWishlist
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch wishlist entries: %w", err)
	}

	return entries, total, nil
}

// ListPodcastWishlist returns a podcast's wishlist to its owner.
func (s *WishlistService) ListPodcastWishlist(ownerID, podcastID uuid.UUID, params utils.PaginationParams) ([]models.PodcastGuestWishlist, int64, error) {
	var podcast models.Podcast
	if err := s.db.First(&podcast, podcastID).Error; err != nil {
		return nil, 0, ErrPodcastNotFound
	}
	if podcast.OwnerID != ownerID {
		return nil, 0, ErrNotAuthorized
	}

	query := s.db.Model(&models.PodcastGuestWishlist{}).
		Where("podcast_id = ?", podcastID).
		Preload("Guest")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count wishlist entries: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "status", "budget_amount"})
	query = utils.ApplyPagination(query, params)

	var entries []models.PodcastGuestWishlist
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch wishlist entries: %w", err)
	}

	return entries, total, nil
}

// RemoveGuestWishlist withdraws a pending entry. Matched entries are removed
// through match dismissal instead.
func (s *WishlistService) RemoveGuestWishlist(guestID, entryID uuid.UUID) error {
	var entry models.GuestWishlist
	if err := s.db.First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWishlistNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if entry.GuestID != guestID {
		return ErrNotAuthorized
	}
	if entry.Status != models.WishlistStatusPending {
		return errors.New("only pending wishlist entries can be removed")
	}

	if err := s.db.Delete(&entry).Error; err != nil {
		return fmt.Errorf("failed to remove wishlist entry: %w", err)
	}
	return nil
}

// RemovePodcastWishlist withdraws a pending podcast-side entry.
func (s *WishlistService) RemovePodcastWishlist(ownerID, entryID uuid.UUID) error {
	var entry models.PodcastGuestWishlist
	if err := s.db.Preload("Podcast").First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWishlistNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if entry.Podcast.OwnerID != ownerID {
		return ErrNotAuthorized
	}
	if entry.Status != models.WishlistStatusPending {
		return errors.New("only pending wishlist entries can be removed")
	}

	if err := s.db.Delete(&entry).Error; err != nil {
		return fmt.Errorf("failed to remove wishlist entry: %w", err)
	}
	return nil
}
