// internal/services/matching_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/xkmato/uvocollab-sub001/internal/models"
)

type MatchingServiceTestSuite struct {
	suite.Suite
	db        *gorm.DB
	service   *MatchingService
	wishlists *WishlistService
	collabs   *CollaborationService

	guest   *models.User
	owner   *models.User
	podcast *models.Podcast
}

func (suite *MatchingServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	cfg := testConfig()
	suite.service = NewMatchingService(suite.db, cfg, nil)
	suite.wishlists = NewWishlistService(suite.db)
	suite.collabs = NewCollaborationService(suite.db, cfg, nil, newFakeGateway())

	suite.guest = createTestUser(suite.T(), suite.db, "mguest", models.UserTypeGuest)
	suite.owner = createTestUser(suite.T(), suite.db, "mowner", models.UserTypePodcastOwner)
	suite.podcast = createTestPodcast(suite.T(), suite.db, suite.owner.ID, "History Hour", []string{"history"})
}

// mutualPair wishes both ways: guest appears free, podcast offers a budget.
func (suite *MatchingServiceTestSuite) mutualPair() (*models.GuestWishlist, *models.PodcastGuestWishlist) {
	guestEntry, err := suite.wishlists.AddGuestWishlist(suite.guest.ID, &AddGuestWishlistRequest{
		PodcastID:   suite.podcast.ID,
		Topics:      []string{"Music"},
		OfferAmount: 0,
	})
	suite.Require().NoError(err)

	podcastEntry, err := suite.wishlists.AddPodcastWishlist(suite.owner.ID, suite.podcast.ID, &AddPodcastWishlistRequest{
		GuestID:         suite.guest.ID,
		PreferredTopics: []string{"music"},
		BudgetAmount:    50,
	})
	suite.Require().NoError(err)

	return guestEntry, podcastEntry
}

func (suite *MatchingServiceTestSuite) sweepOneMatch() *models.Match {
	result, err := suite.service.RunSweep()
	suite.Require().NoError(err)
	suite.Require().Equal(1, result.MatchesCreated)

	var match models.Match
	suite.Require().NoError(suite.db.Preload("Podcast").First(&match).Error)
	return &match
}

func (suite *MatchingServiceTestSuite) TestSweepPairsMutualInterest() {
	guestEntry, podcastEntry := suite.mutualPair()

	result, err := suite.service.RunSweep()
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, result.PairsExamined)
	assert.Equal(suite.T(), 1, result.MatchesCreated)
	assert.Empty(suite.T(), result.Errors)

	var match models.Match
	suite.Require().NoError(suite.db.First(&match).Error)
	assert.Equal(suite.T(), suite.guest.ID, match.GuestID)
	assert.Equal(suite.T(), suite.podcast.ID, match.PodcastID)
	// Shared topic (40) plus sponsored appearance of a free guest (30).
	assert.Equal(suite.T(), 70, match.CompatibilityScore)
	assert.Equal(suite.T(), models.StringArray{"Music"}, match.TopicOverlap)
	assert.Equal(suite.T(), models.BudgetAlignmentPerfect, match.BudgetAlignment)
	assert.Equal(suite.T(), models.MatchStatusActive, match.Status)
	assert.Equal(suite.T(), 50.0, match.PodcastRate)

	var reloadedGuest models.GuestWishlist
	suite.Require().NoError(suite.db.First(&reloadedGuest, guestEntry.ID).Error)
	assert.Equal(suite.T(), models.WishlistStatusMatched, reloadedGuest.Status)

	var reloadedPodcast models.PodcastGuestWishlist
	suite.Require().NoError(suite.db.First(&reloadedPodcast, podcastEntry.ID).Error)
	assert.Equal(suite.T(), models.WishlistStatusMatched, reloadedPodcast.Status)
}

func (suite *MatchingServiceTestSuite) TestSweepIgnoresOneSidedInterest() {
	_, err := suite.wishlists.AddGuestWishlist(suite.guest.ID, &AddGuestWishlistRequest{
		PodcastID: suite.podcast.ID,
		Topics:    []string{"music"},
	})
	suite.Require().NoError(err)

	result, err := suite.service.RunSweep()
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 0, result.PairsExamined)
	assert.Equal(suite.T(), 0, result.MatchesCreated)

	var total int64
	suite.db.Model(&models.Match{}).Count(&total)
	assert.Zero(suite.T(), total)
}

func (suite *MatchingServiceTestSuite) TestSweepIsIdempotent() {
	guestEntry, podcastEntry := suite.mutualPair()
	suite.sweepOneMatch()

	// Matched entries are no longer pending, so nothing pairs again.
	result, err := suite.service.RunSweep()
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 0, result.MatchesCreated)

	// Even with the entries forced back to pending, the live match blocks a
	// duplicate.
	suite.db.Model(guestEntry).Update("status", models.WishlistStatusPending)
	suite.db.Model(podcastEntry).Update("status", models.WishlistStatusPending)

	result, err = suite.service.RunSweep()
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 0, result.MatchesCreated)
	assert.Equal(suite.T(), 1, result.PairsSkipped)

	var total int64
	suite.db.Model(&models.Match{}).Count(&total)
	assert.Equal(suite.T(), int64(1), total)
}

func (suite *MatchingServiceTestSuite) TestSweepSkipsUnregisteredGuests() {
	_, err := suite.wishlists.AddGuestWishlist(suite.guest.ID, &AddGuestWishlistRequest{
		PodcastID: suite.podcast.ID,
		Topics:    []string{"music"},
	})
	suite.Require().NoError(err)

	entry := &models.PodcastGuestWishlist{
		PodcastID:       suite.podcast.ID,
		GuestID:         suite.guest.ID,
		PreferredTopics: models.StringArray{"music"},
		IsRegistered:    false,
		Status:          models.WishlistStatusPending,
	}
	suite.Require().NoError(suite.db.Create(entry).Error)

	result, err := suite.service.RunSweep()
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 0, result.MatchesCreated)
}

func (suite *MatchingServiceTestSuite) TestDismissByGuestReopensWishlists() {
	guestEntry, podcastEntry := suite.mutualPair()
	match := suite.sweepOneMatch()

	dismissed, err := suite.service.DismissMatch(suite.guest.ID, match.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.MatchStatusDismissedByGuest, dismissed.Status)

	var reloadedGuest models.GuestWishlist
	suite.Require().NoError(suite.db.First(&reloadedGuest, guestEntry.ID).Error)
	assert.Equal(suite.T(), models.WishlistStatusPending, reloadedGuest.Status)

	var reloadedPodcast models.PodcastGuestWishlist
	suite.Require().NoError(suite.db.First(&reloadedPodcast, podcastEntry.ID).Error)
	assert.Equal(suite.T(), models.WishlistStatusPending, reloadedPodcast.Status)
}

func (suite *MatchingServiceTestSuite) TestDismissByOwnerRecordsSide() {
	suite.mutualPair()
	match := suite.sweepOneMatch()

	dismissed, err := suite.service.DismissMatch(suite.owner.ID, match.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.MatchStatusDismissedByPodcast, dismissed.Status)

	_, err = suite.service.DismissMatch(suite.guest.ID, match.ID)
	assert.Error(suite.T(), err)
}

func (suite *MatchingServiceTestSuite) TestStartCollaborationFromMatch() {
	suite.mutualPair()
	match := suite.sweepOneMatch()

	collab, err := suite.service.StartCollaborationFromMatch(suite.guest.ID, match.ID, suite.collabs)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.CollaborationStatusPendingAgreement, collab.Status)
	assert.Equal(suite.T(), models.PaymentDirectionPodcastPaysGuest, collab.PaymentDirection)
	assert.Equal(suite.T(), 50.0, collab.Price)
	suite.Require().NotNil(collab.MatchID)
	assert.Equal(suite.T(), match.ID, *collab.MatchID)

	var reloaded models.Match
	suite.Require().NoError(suite.db.First(&reloaded, match.ID).Error)
	assert.Equal(suite.T(), models.MatchStatusCollaborationStarted, reloaded.Status)
}

func (suite *MatchingServiceTestSuite) TestOnlyGuestStartsCollaboration() {
	suite.mutualPair()
	match := suite.sweepOneMatch()

	_, err := suite.service.StartCollaborationFromMatch(suite.owner.ID, match.ID, suite.collabs)
	assert.ErrorIs(suite.T(), err, ErrNotAuthorized)
}

func (suite *MatchingServiceTestSuite) TestMatchVisibleToPartiesOnly() {
	suite.mutualPair()
	match := suite.sweepOneMatch()

	_, err := suite.service.GetMatch(suite.guest.ID, match.ID)
	assert.NoError(suite.T(), err)
	_, err = suite.service.GetMatch(suite.owner.ID, match.ID)
	assert.NoError(suite.T(), err)

	stranger := createTestUser(suite.T(), suite.db, "mstranger", models.UserTypeGuest)
	_, err = suite.service.GetMatch(stranger.ID, match.ID)
	assert.ErrorIs(suite.T(), err, ErrNotAuthorized)

	_, err = suite.service.GetMatch(suite.guest.ID, uuid.New())
	assert.ErrorIs(suite.T(), err, ErrMatchNotFound)
}

func TestMatchingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MatchingServiceTestSuite))
}
