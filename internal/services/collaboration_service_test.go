// internal/services/collaboration_service_test.go
package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/xkmato/uvocollab-sub001/internal/models"
)

type CollaborationServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	gateway *fakeGateway
	service *CollaborationService

	guest   *models.User
	owner   *models.User
	podcast *models.Podcast
	offer   *models.Service
}

func (suite *CollaborationServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.gateway = newFakeGateway()
	suite.service = NewCollaborationService(suite.db, testConfig(), nil, suite.gateway)

	suite.guest = createTestUser(suite.T(), suite.db, "guest1", models.UserTypeGuest)
	suite.owner = createTestUser(suite.T(), suite.db, "owner1", models.UserTypePodcastOwner)
	suite.podcast = createTestPodcast(suite.T(), suite.db, suite.owner.ID, "The Airwaves", []string{"music", "culture"})
	suite.offer = createTestService(suite.T(), suite.db, suite.owner.ID, &suite.podcast.ID, 100)
}

func (suite *CollaborationServiceTestSuite) submitPitch() *models.Collaboration {
	collab, err := suite.service.SubmitPitch(suite.guest.ID, &SubmitPitchRequest{
		ServiceID:    suite.offer.ID,
		Price:        100,
		PitchMessage: strings.Repeat("I would love to talk about my new record. ", 3),
		BestWorkURL:  "https://example.com/best-work",
		DemoAssetURL: "https://example.com/demo.mp3",
		Topics:       []string{"music"},
	})
	suite.Require().NoError(err)
	return collab
}

// advanceToInProgress walks a pitch through payment, scheduling, and session
// start so payout tests can begin from in_progress.
func (suite *CollaborationServiceTestSuite) advanceToInProgress() *models.Collaboration {
	collab := suite.submitPitch()

	_, err := suite.service.RespondToPitch(suite.owner.ID, collab.ID, &RespondToPitchRequest{Action: "accept"})
	suite.Require().NoError(err)

	suite.gateway.addCapture("pi_test", 100, true)
	collab, err = suite.service.ConfirmPayment(collab.ID, "pi_test")
	suite.Require().NoError(err)
	suite.Require().Equal(models.CollaborationStatusScheduling, collab.Status)

	// Confirm a schedule directly; the scheduling flow has its own suite.
	suite.Require().NoError(suite.db.Model(&models.Collaboration{}).
		Where("id = ?", collab.ID).
		Updates(map[string]interface{}{
			"status":        models.CollaborationStatusScheduled,
			"schedule_date": "2026-10-01",
			"schedule_time": "14:00",
		}).Error)

	collab, err = suite.service.AddDeliverable(suite.owner.ID, collab.ID, &AddDeliverableRequest{
		FileName: "episode.mp3",
		FileURL:  "https://example.com/episode.mp3",
		FileSize: 1024,
	})
	suite.Require().NoError(err)
	suite.Require().Equal(models.CollaborationStatusInProgress, collab.Status)

	return collab
}

func (suite *CollaborationServiceTestSuite) connectPayoutAccount() {
	suite.Require().NoError(suite.db.Create(&models.PayoutAccount{
		UserID:          suite.owner.ID,
		Provider:        "stripe",
		StripeAccountID: "acct_test",
		IsDefault:       true,
	}).Error)
}

func (suite *CollaborationServiceTestSuite) TestSubmitPitchCreatesPendingReview() {
	collab := suite.submitPitch()

	assert.Equal(suite.T(), models.CollaborationStatusPendingReview, collab.Status)
	assert.Equal(suite.T(), 100.0, collab.Price)
	assert.True(suite.T(), strings.HasPrefix(collab.ReferenceCode, "uv_"))
	assert.Equal(suite.T(), models.PaymentDirectionGuestPaysPodcast, collab.PaymentDirection)
}

func (suite *CollaborationServiceTestSuite) TestSubmitPitchRejectsStalePrice() {
	_, err := suite.service.SubmitPitch(suite.guest.ID, &SubmitPitchRequest{
		ServiceID:    suite.offer.ID,
		Price:        80, // catalogue says 100
		PitchMessage: strings.Repeat("A pitch that is certainly long enough to pass. ", 2),
		BestWorkURL:  "https://example.com/best-work",
		DemoAssetURL: "https://example.com/demo.mp3",
	})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "price has changed")
}

func (suite *CollaborationServiceTestSuite) TestSubmitPitchRejectsShortMessage() {
	_, err := suite.service.SubmitPitch(suite.guest.ID, &SubmitPitchRequest{
		ServiceID:    suite.offer.ID,
		Price:        100,
		PitchMessage: "too short",
		BestWorkURL:  "https://example.com/best-work",
		DemoAssetURL: "https://example.com/demo.mp3",
	})
	assert.Error(suite.T(), err)
}

func (suite *CollaborationServiceTestSuite) TestSubmitPitchRejectsOwnService() {
	_, err := suite.service.SubmitPitch(suite.owner.ID, &SubmitPitchRequest{
		ServiceID:    suite.offer.ID,
		Price:        100,
		PitchMessage: strings.Repeat("A pitch that is certainly long enough to pass. ", 2),
		BestWorkURL:  "https://example.com/best-work",
		DemoAssetURL: "https://example.com/demo.mp3",
	})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "own service")
}

func (suite *CollaborationServiceTestSuite) TestRespondToPitchOnlyProvider() {
	collab := suite.submitPitch()

	stranger := createTestUser(suite.T(), suite.db, "stranger", models.UserTypeGuest)
	_, err := suite.service.RespondToPitch(stranger.ID, collab.ID, &RespondToPitchRequest{Action: "accept"})
	assert.ErrorIs(suite.T(), err, ErrNotAuthorized)

	// The pitching guest cannot accept their own pitch either.
	_, err = suite.service.RespondToPitch(suite.guest.ID, collab.ID, &RespondToPitchRequest{Action: "accept"})
	assert.ErrorIs(suite.T(), err, ErrNotAuthorized)
}

func (suite *CollaborationServiceTestSuite) TestAcceptPitchMovesToPendingPayment() {
	collab := suite.submitPitch()

	updated, err := suite.service.RespondToPitch(suite.owner.ID, collab.ID, &RespondToPitchRequest{Action: "accept"})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.CollaborationStatusPendingPayment, updated.Status)
	assert.NotNil(suite.T(), updated.AcceptedAt)
}

func (suite *CollaborationServiceTestSuite) TestDeclinePitchIsTerminal() {
	collab := suite.submitPitch()

	updated, err := suite.service.RespondToPitch(suite.owner.ID, collab.ID, &RespondToPitchRequest{Action: "decline"})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.CollaborationStatusDeclined, updated.Status)

	// No action leaves declined.
	_, err = suite.service.RespondToPitch(suite.owner.ID, collab.ID, &RespondToPitchRequest{Action: "accept"})
	assert.Error(suite.T(), err)
}

func (suite *CollaborationServiceTestSuite) TestFreePitchSkipsPayment() {
	freeOffer := createTestService(suite.T(), suite.db, suite.owner.ID, &suite.podcast.ID, 0)

	collab, err := suite.service.SubmitPitch(suite.guest.ID, &SubmitPitchRequest{
		ServiceID:    freeOffer.ID,
		Price:        0,
		PitchMessage: strings.Repeat("A pitch that is certainly long enough to pass. ", 2),
		BestWorkURL:  "https://example.com/best-work",
		DemoAssetURL: "https://example.com/demo.mp3",
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.PaymentDirectionFree, collab.PaymentDirection)

	updated, err := suite.service.RespondToPitch(suite.owner.ID, collab.ID, &RespondToPitchRequest{Action: "accept"})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.CollaborationStatusScheduling, updated.Status)
}

func (suite *CollaborationServiceTestSuite) TestConfirmPaymentChecksAmount() {
	collab := suite.submitPitch()
	_, err := suite.service.RespondToPitch(suite.owner.ID, collab.ID, &RespondToPitchRequest{Action: "accept"})
	suite.Require().NoError(err)

	suite.gateway.addCapture("pi_short", 60, true)
	_, err = suite.service.ConfirmPayment(collab.ID, "pi_short")
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "does not match")

	suite.gateway.addCapture("pi_pending", 100, false)
	_, err = suite.service.ConfirmPayment(collab.ID, "pi_pending")
	assert.Error(suite.T(), err)
}

func (suite *CollaborationServiceTestSuite) TestConfirmPaymentRejectsReusedCapture() {
	first := suite.submitPitch()
	_, err := suite.service.RespondToPitch(suite.owner.ID, first.ID, &RespondToPitchRequest{Action: "accept"})
	suite.Require().NoError(err)

	other := createTestUser(suite.T(), suite.db, "guest2", models.UserTypeGuest)
	second, err := suite.service.SubmitPitch(other.ID, &SubmitPitchRequest{
		ServiceID:    suite.offer.ID,
		Price:        100,
		PitchMessage: strings.Repeat("A pitch that is certainly long enough to pass. ", 2),
		BestWorkURL:  "https://example.com/best-work",
		DemoAssetURL: "https://example.com/demo.mp3",
	})
	suite.Require().NoError(err)
	_, err = suite.service.RespondToPitch(suite.owner.ID, second.ID, &RespondToPitchRequest{Action: "accept"})
	suite.Require().NoError(err)

	suite.gateway.addCapture("pi_shared", 100, true)
	_, err = suite.service.ConfirmPayment(first.ID, "pi_shared")
	suite.Require().NoError(err)

	// One capture pays for one collaboration, even at the same price.
	_, err = suite.service.ConfirmPayment(second.ID, "pi_shared")
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "already applied")
}

func (suite *CollaborationServiceTestSuite) TestConfirmPaymentRejectsForeignReference() {
	collab := suite.submitPitch()
	_, err := suite.service.RespondToPitch(suite.owner.ID, collab.ID, &RespondToPitchRequest{Action: "accept"})
	suite.Require().NoError(err)

	// An intent was opened for this collaboration under a different reference.
	suite.Require().NoError(suite.db.Model(&models.Collaboration{}).
		Where("id = ?", collab.ID).
		Update("payment_reference", "pi_intent").Error)

	suite.gateway.addCapture("pi_other", 100, true)
	_, err = suite.service.ConfirmPayment(collab.ID, "pi_other")
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "match this collaboration")
}

func (suite *CollaborationServiceTestSuite) TestInitiateRejectsDuplicateOpenPair() {
	_, err := suite.service.InitiateGuestCollaboration(suite.guest.ID, &InitiateCollaborationRequest{
		PodcastID: suite.podcast.ID,
		Price:     50,
		Topics:    []string{"music"},
	})
	suite.Require().NoError(err)

	_, err = suite.service.InitiateGuestCollaboration(suite.guest.ID, &InitiateCollaborationRequest{
		PodcastID: suite.podcast.ID,
		Price:     75,
		Topics:    []string{"culture"},
	})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "already exists")
}

func (suite *CollaborationServiceTestSuite) TestCompletePayoutSplitsCommission() {
	collab := suite.advanceToInProgress()
	suite.connectPayoutAccount()

	updated, err := suite.service.CompletePayout(suite.guest.ID, collab.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.CollaborationStatusCompleted, updated.Status)
	assert.Equal(suite.T(), models.EscrowStatusReleased, updated.EscrowStatus)
	suite.Require().NotNil(updated.PlatformCommission)
	suite.Require().NotNil(updated.LegendAmount)
	assert.InDelta(suite.T(), 20.0, *updated.PlatformCommission, 0.001)
	assert.InDelta(suite.T(), 80.0, *updated.LegendAmount, 0.001)
	assert.NotEmpty(suite.T(), updated.PayoutReference)
	assert.Equal(suite.T(), 1, suite.gateway.transferCalls)
}

func (suite *CollaborationServiceTestSuite) TestCompletePayoutRequiresDeliverable() {
	collab := suite.submitPitch()
	_, err := suite.service.RespondToPitch(suite.owner.ID, collab.ID, &RespondToPitchRequest{Action: "accept"})
	suite.Require().NoError(err)

	suite.gateway.addCapture("pi_test", 100, true)
	_, err = suite.service.ConfirmPayment(collab.ID, "pi_test")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.db.Model(&models.Collaboration{}).
		Where("id = ?", collab.ID).
		Update("status", models.CollaborationStatusInProgress).Error)
	suite.connectPayoutAccount()

	_, err = suite.service.CompletePayout(suite.guest.ID, collab.ID)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "without deliverables")
}

func (suite *CollaborationServiceTestSuite) TestCompletePayoutRejectsDoubleRelease() {
	collab := suite.advanceToInProgress()
	suite.connectPayoutAccount()

	_, err := suite.service.CompletePayout(suite.guest.ID, collab.ID)
	suite.Require().NoError(err)

	_, err = suite.service.CompletePayout(suite.guest.ID, collab.ID)
	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 1, suite.gateway.transferCalls)
}

func (suite *CollaborationServiceTestSuite) TestPayoutTransferIdempotentPerCollaboration() {
	collab := suite.advanceToInProgress()
	suite.connectPayoutAccount()

	updated, err := suite.service.CompletePayout(suite.guest.ID, collab.ID)
	suite.Require().NoError(err)

	// A release retried under the same collaboration key replays the original
	// transfer; the money moves once even if two callers race the state write.
	reference, err := suite.gateway.Transfer(80, "usd", "acct_test", map[string]string{
		"collaboration_id": collab.ID.String(),
		"reference_code":   collab.ReferenceCode,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), updated.PayoutReference, reference)
	assert.Equal(suite.T(), 1, suite.gateway.transferCalls)
}

func (suite *CollaborationServiceTestSuite) TestCompletePayoutOnlyBuyer() {
	collab := suite.advanceToInProgress()
	suite.connectPayoutAccount()

	_, err := suite.service.CompletePayout(suite.owner.ID, collab.ID)
	assert.ErrorIs(suite.T(), err, ErrNotAuthorized)
}

func (suite *CollaborationServiceTestSuite) TestCompletePayoutSurvivesTransferFailure() {
	collab := suite.advanceToInProgress()
	suite.connectPayoutAccount()

	suite.gateway.transferErr = errors.New("destination account frozen")
	_, err := suite.service.CompletePayout(suite.guest.ID, collab.ID)
	assert.Error(suite.T(), err)

	// State untouched, failure recorded, retry succeeds.
	var reloaded models.Collaboration
	suite.Require().NoError(suite.db.First(&reloaded, collab.ID).Error)
	assert.Equal(suite.T(), models.CollaborationStatusInProgress, reloaded.Status)
	assert.Equal(suite.T(), models.EscrowStatusHeld, reloaded.EscrowStatus)
	assert.Contains(suite.T(), reloaded.PayoutError, "frozen")

	suite.gateway.transferErr = nil
	updated, err := suite.service.CompletePayout(suite.guest.ID, collab.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.CollaborationStatusCompleted, updated.Status)
	assert.Empty(suite.T(), updated.PayoutError)
}

func (suite *CollaborationServiceTestSuite) TestConcurrentTransitionDetected() {
	collab := suite.submitPitch()

	// Another writer bumps the lock version between read and write.
	stale, err := suite.service.loadCollaboration(collab.ID)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.db.Model(&models.Collaboration{}).
		Where("id = ?", collab.ID).
		Update("lock_version", gorm.Expr("lock_version + 1")).Error)

	err = suite.service.transition(suite.db, stale, models.ActionDeclinePitch, map[string]interface{}{})
	assert.ErrorIs(suite.T(), err, ErrConcurrentUpdate)
}

func (suite *CollaborationServiceTestSuite) TestGetCollaborationPartyOnly() {
	collab := suite.submitPitch()

	_, err := suite.service.GetCollaboration(suite.guest.ID, collab.ID)
	assert.NoError(suite.T(), err)
	_, err = suite.service.GetCollaboration(suite.owner.ID, collab.ID)
	assert.NoError(suite.T(), err)

	stranger := createTestUser(suite.T(), suite.db, "stranger2", models.UserTypeGuest)
	_, err = suite.service.GetCollaboration(stranger.ID, collab.ID)
	assert.ErrorIs(suite.T(), err, ErrNotAuthorized)
}

func (suite *CollaborationServiceTestSuite) TestAddDeliverableStartsSession() {
	collab := suite.advanceToInProgress()

	// A second deliverable in in_progress does not change state.
	updated, err := suite.service.AddDeliverable(suite.guest.ID, collab.ID, &AddDeliverableRequest{
		FileName: "notes.pdf",
		FileURL:  "https://example.com/notes.pdf",
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.CollaborationStatusInProgress, updated.Status)

	var count int64
	suite.db.Model(&models.Deliverable{}).Where("collaboration_id = ?", collab.ID).Count(&count)
	assert.EqualValues(suite.T(), 2, count)
}

func (suite *CollaborationServiceTestSuite) TestCompletedAtSetOnPayout() {
	collab := suite.advanceToInProgress()
	suite.connectPayoutAccount()

	before := time.Now().Add(-time.Second)
	_, err := suite.service.CompletePayout(suite.guest.ID, collab.ID)
	suite.Require().NoError(err)

	var reloaded models.Collaboration
	suite.Require().NoError(suite.db.First(&reloaded, collab.ID).Error)
	suite.Require().NotNil(reloaded.CompletedAt)
	assert.True(suite.T(), reloaded.CompletedAt.After(before))
}

func TestCollaborationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CollaborationServiceTestSuite))
}
