// internal/services/matching_service.go
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

type MatchingService struct {
	db                  *gorm.DB
	config              *config.Config
	notificationService *NotificationService
}

// SweepResult summarizes one matching sweep.
type SweepResult struct {
	PairsExamined  int      `json:"pairs_examined"`
	MatchesCreated int      `json:"matches_created"`
	PairsSkipped   int      `json:"pairs_skipped"`
	Errors         []string `json:"errors,omitempty"`
}

func NewMatchingService(db *gorm.DB, cfg *config.Config, notificationService *NotificationService) *MatchingService {
	return &MatchingService{
		db:                  db,
		config:              cfg,
		notificationService: notificationService,
	}
}

// RunSweep scans pending wishlist entries on both sides, pairs mutual
// interest, scores each pair, and persists a Match per new pair. Errors on
// individual pairs are collected, not fatal; re-running is idempotent.
func (s *MatchingService) RunSweep() (*SweepResult, error) {
	var guestEntries []models.GuestWishlist
	if err := s.db.Preload("Guest").Preload("Podcast").
		Where("status = ?", models.WishlistStatusPending).
		Find(&guestEntries).Error; err != nil {
		return nil, fmt.Errorf("failed to load guest wishlists: %w", err)
	}

	// Index the podcast side by (podcast, guest) pair for O(1) mutual lookup.
	var podcastEntries []models.PodcastGuestWishlist
	if err := s.db.Where("status = ? AND is_registered = ?", models.WishlistStatusPending, true).
		Find(&podcastEntries).Error; err != nil {
		return nil, fmt.Errorf("failed to load podcast wishlists: %w", err)
	}

	type pairKey struct {
		PodcastID uuid.UUID
		GuestID   uuid.UUID
	}
	podcastByPair := make(map[pairKey]*models.PodcastGuestWishlist, len(podcastEntries))
	for i := range podcastEntries {
		e := &podcastEntries[i]
		podcastByPair[pairKey{e.PodcastID, e.GuestID}] = e
	}

	result := &SweepResult{}

	for i := range guestEntries {
		guestEntry := &guestEntries[i]

		podcastEntry, ok := podcastByPair[pairKey{guestEntry.PodcastID, guestEntry.GuestID}]
		if !ok {
			continue
		}
		result.PairsExamined++

		var existing int64
		if err := s.db.Model(&models.Match{}).
			Where("guest_id = ? AND podcast_id = ? AND status IN ?",
				guestEntry.GuestID, guestEntry.PodcastID,
				[]models.MatchStatus{models.MatchStatusActive, models.MatchStatusCollaborationStarted}).
			Count(&existing).Error; err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("pair %s/%s: %v", guestEntry.GuestID, guestEntry.PodcastID, err))
			continue
		}
		if existing > 0 {
			result.PairsSkipped++
			continue
		}

		match, err := s.createMatch(guestEntry, podcastEntry)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("pair %s/%s: %v", guestEntry.GuestID, guestEntry.PodcastID, err))
			continue
		}
		result.MatchesCreated++

		go s.notifyMatch(match)
	}

	logrus.WithFields(logrus.Fields{
		"pairs_examined":  result.PairsExamined,
		"matches_created": result.MatchesCreated,
		"pairs_skipped":   result.PairsSkipped,
		"errors":          len(result.Errors),
	}).Info("Matching sweep finished")

	return result, nil
}

func (s *MatchingService) createMatch(guestEntry *models.GuestWishlist, podcastEntry *models.PodcastGuestWishlist) (*models.Match, error) {
	guest := guestEntry.Guest
	podcast := guestEntry.Podcast

	var activeServices int64
	s.db.Model(&models.Service{}).
		Where("(provider_id = ? OR podcast_id = ?) AND is_active = ?",
			podcast.OwnerID, podcast.ID, true).
		Count(&activeServices)

	scored := ScoreCompatibility(ScoreInput{
		GuestTopics:      guestEntry.Topics,
		PodcastTopics:    podcastEntry.PreferredTopics,
		GuestOffer:       guestEntry.OfferAmount,
		PodcastBudget:    podcastEntry.BudgetAmount,
		GuestVerified:    guest.IsVerified(),
		HasActiveService: activeServices > 0,
	})

	match := &models.Match{
		GuestID:            guestEntry.GuestID,
		PodcastID:          guestEntry.PodcastID,
		GuestWishlistID:    guestEntry.ID,
		PodcastWishlistID:  podcastEntry.ID,
		GuestName:          guest.DisplayName,
		GuestImage:         guest.ImageURL,
		GuestRate:          guestEntry.OfferAmount,
		PodcastTitle:       podcast.Title,
		PodcastImage:       podcast.CoverImage,
		PodcastRate:        podcastEntry.BudgetAmount,
		CompatibilityScore: scored.Score,
		TopicOverlap:       models.StringArray(scored.TopicOverlap),
		BudgetAlignment:    scored.BudgetAlignment,
		Status:             models.MatchStatusActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(match).Error; err != nil {
			return fmt.Errorf("failed to create match: %w", err)
		}
		if err := tx.Model(guestEntry).Update("status", models.WishlistStatusMatched).Error; err != nil {
			return fmt.Errorf("failed to update guest wishlist: %w", err)
		}
		if err := tx.Model(podcastEntry).Update("status", models.WishlistStatusMatched).Error; err != nil {
			return fmt.Errorf("failed to update podcast wishlist: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return match, nil
}

// GetMatch returns a match to one of its parties.
func (s *MatchingService) GetMatch(userID, matchID uuid.UUID) (*models.Match, error) {
	match, err := s.loadMatch(matchID)
	if err != nil {
		return nil, err
	}

	if _, err := s.roleInMatch(userID, match); err != nil {
		return nil, err
	}

	return match, nil
}

// ListMatches returns the user's matches from either side.
func (s *MatchingService) ListMatches(userID uuid.UUID, status string, params utils.PaginationParams) ([]models.Match, int64, error) {
	query := s.db.Model(&models.Match{}).
		Where("guest_id = ? OR podcast_id IN (SELECT id FROM podcasts WHERE owner_id = ?)",
			userID, userID)

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count matches: %w", err)
	}

	allowedSortFields := []string{"created_at", "compatibility_score", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var matches []models.Match
	if err := query.Find(&matches).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch matches: %w", err)
	}

	return matches, total, nil
}

// DismissMatch lets either party close an active match. The dismissing side
// is recorded in the terminal status; the paired wishlist entries reopen so a
// later sweep can pair them elsewhere.
func (s *MatchingService) DismissMatch(userID, matchID uuid.UUID) (*models.Match, error) {
	match, err := s.loadMatch(matchID)
	if err != nil {
		return nil, err
	}

	role, err := s.roleInMatch(userID, match)
	if err != nil {
		return nil, err
	}

	if match.Status != models.MatchStatusActive {
		return nil, errors.New("match is no longer active")
	}

	status := models.MatchStatusDismissedByGuest
	if role == models.PartyRolePodcastOwner {
		status = models.MatchStatusDismissedByPodcast
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Match{}).
			Where("id = ? AND status = ?", match.ID, models.MatchStatusActive).
			Update("status", status)
		if res.Error != nil {
			return fmt.Errorf("failed to dismiss match: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConcurrentUpdate
		}

		tx.Model(&models.GuestWishlist{}).
			Where("id = ? AND status = ?", match.GuestWishlistID, models.WishlistStatusMatched).
			Update("status", models.WishlistStatusPending)
		tx.Model(&models.PodcastGuestWishlist{}).
			Where("id = ? AND status = ?", match.PodcastWishlistID, models.WishlistStatusMatched).
			Update("status", models.WishlistStatusPending)
		return nil
	})
	if err != nil {
		return nil, err
	}

	match.Status = status
	return match, nil
}

// StartCollaborationFromMatch opens the collaboration flow from an active
// match, pre-filled with the match's topics and the podcast's budget.
func (s *MatchingService) StartCollaborationFromMatch(userID, matchID uuid.UUID, collaborationService *CollaborationService) (*models.Collaboration, error) {
	match, err := s.loadMatch(matchID)
	if err != nil {
		return nil, err
	}

	if match.GuestID != userID {
		return nil, ErrNotAuthorized
	}

	if match.Status != models.MatchStatusActive {
		return nil, errors.New("match is no longer active")
	}

	direction := models.PaymentDirectionFree
	price := 0.0
	if match.GuestRate > 0 {
		direction = models.PaymentDirectionGuestPaysPodcast
		price = match.GuestRate
	} else if match.PodcastRate > 0 {
		direction = models.PaymentDirectionPodcastPaysGuest
		price = match.PodcastRate
	}

	return collaborationService.InitiateGuestCollaboration(userID, &InitiateCollaborationRequest{
		PodcastID:        match.PodcastID,
		MatchID:          &match.ID,
		Price:            price,
		Topics:           match.TopicOverlap,
		PaymentDirection: direction,
	})
}

func (s *MatchingService) loadMatch(id uuid.UUID) (*models.Match, error) {
	var match models.Match
	if err := s.db.Preload("Guest").Preload("Podcast").First(&match, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &match, nil
}

func (s *MatchingService) roleInMatch(userID uuid.UUID, match *models.Match) (models.PartyRole, error) {
	if match.GuestID == userID {
		return models.PartyRoleGuest, nil
	}
	if match.Podcast.OwnerID == userID {
		return models.PartyRolePodcastOwner, nil
	}
	return "", ErrNotAuthorized
}

func (s *MatchingService) notifyMatch(match *models.Match) {
	if s.notificationService == nil {
		return
	}

	var guest models.User
	var podcast models.Podcast
	if err := s.db.First(&guest, match.GuestID).Error; err != nil {
		return
	}
	if err := s.db.First(&podcast, match.PodcastID).Error; err != nil {
		return
	}
	var owner models.User
	if err := s.db.First(&owner, podcast.OwnerID).Error; err != nil {
		return
	}

	sent := false
	if err := s.notificationService.SendMatchFoundNotification(match, &guest, match.PodcastTitle); err != nil {
		logrus.WithError(err).Warn("Failed to notify guest of match")
	} else {
		sent = true
	}
	if err := s.notificationService.SendMatchFoundNotification(match, &owner, match.GuestName); err != nil {
		logrus.WithError(err).Warn("Failed to notify podcast owner of match")
	} else {
		sent = true
	}

	if sent {
		now := time.Now()
		s.db.Model(&models.Match{}).Where("id = ?", match.ID).Update("notified_at", &now)
	}
}
