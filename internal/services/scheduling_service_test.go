// internal/services/scheduling_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/xkmato/uvocollab-sub001/internal/models"
)

type SchedulingServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *SchedulingService
	collabs *CollaborationService

	guest   *models.User
	owner   *models.User
	podcast *models.Podcast
	collab  *models.Collaboration
}

func (suite *SchedulingServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	cfg := testConfig()
	suite.collabs = NewCollaborationService(suite.db, cfg, nil, newFakeGateway())
	suite.service = NewSchedulingService(suite.db, cfg, suite.collabs, nil)

	suite.guest = createTestUser(suite.T(), suite.db, "sguest", models.UserTypeGuest)
	suite.owner = createTestUser(suite.T(), suite.db, "sowner", models.UserTypePodcastOwner)
	suite.podcast = createTestPodcast(suite.T(), suite.db, suite.owner.ID, "Night Sessions", []string{"music"})

	// A free collaboration already past review, sitting in scheduling.
	collab, err := suite.collabs.InitiateGuestCollaboration(suite.guest.ID, &InitiateCollaborationRequest{
		PodcastID: suite.podcast.ID,
		Price:     0,
		Topics:    []string{"music"},
	})
	suite.Require().NoError(err)

	_, err = suite.collabs.AgreeTerms(suite.owner.ID, collab.ID, nil)
	suite.Require().NoError(err)

	suite.collab, err = suite.collabs.loadCollaboration(collab.ID)
	suite.Require().NoError(err)
	suite.Require().Equal(models.CollaborationStatusScheduling, suite.collab.Status)
}

func (suite *SchedulingServiceTestSuite) slots() []models.ScheduleSlot {
	return []models.ScheduleSlot{
		{Date: "2026-10-05", Time: "10:00", Timezone: "Africa/Kampala", Duration: 60},
		{Date: "2026-10-06", Time: "15:30", Timezone: "Africa/Kampala", Duration: 45},
	}
}

func (suite *SchedulingServiceTestSuite) confirmSchedule() *models.ScheduleProposal {
	proposal, err := suite.service.ProposeSchedule(suite.guest.ID, suite.collab.ID, &ProposeScheduleRequest{
		Slots: suite.slots(),
	})
	suite.Require().NoError(err)

	idx := 0
	accepted, err := suite.service.RespondToProposal(suite.owner.ID, proposal.ID, &RespondToProposalRequest{
		Action:    "accept",
		SlotIndex: &idx,
	})
	suite.Require().NoError(err)
	return accepted
}

func (suite *SchedulingServiceTestSuite) TestProposeAndAcceptConfirmsSchedule() {
	accepted := suite.confirmSchedule()

	assert.Equal(suite.T(), models.ProposalStatusAccepted, accepted.Status)
	suite.Require().NotNil(accepted.AcceptedSlotIndex)
	assert.Equal(suite.T(), 0, *accepted.AcceptedSlotIndex)

	reloaded, err := suite.collabs.loadCollaboration(suite.collab.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.CollaborationStatusScheduled, reloaded.Status)
	assert.Equal(suite.T(), "2026-10-05", reloaded.ScheduleDate)
	assert.Equal(suite.T(), "10:00", reloaded.ScheduleTime)
	assert.Equal(suite.T(), 60, reloaded.ScheduleDuration)
}

func (suite *SchedulingServiceTestSuite) TestOneOutstandingProposalPerParty() {
	_, err := suite.service.ProposeSchedule(suite.guest.ID, suite.collab.ID, &ProposeScheduleRequest{Slots: suite.slots()})
	suite.Require().NoError(err)

	_, err = suite.service.ProposeSchedule(suite.guest.ID, suite.collab.ID, &ProposeScheduleRequest{Slots: suite.slots()})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "outstanding")

	// The other party can still counter-propose.
	_, err = suite.service.ProposeSchedule(suite.owner.ID, suite.collab.ID, &ProposeScheduleRequest{Slots: suite.slots()})
	assert.NoError(suite.T(), err)
}

func (suite *SchedulingServiceTestSuite) TestCannotRespondToOwnProposal() {
	proposal, err := suite.service.ProposeSchedule(suite.guest.ID, suite.collab.ID, &ProposeScheduleRequest{Slots: suite.slots()})
	suite.Require().NoError(err)

	idx := 0
	_, err = suite.service.RespondToProposal(suite.guest.ID, proposal.ID, &RespondToProposalRequest{
		Action:    "accept",
		SlotIndex: &idx,
	})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "own proposal")
}

func (suite *SchedulingServiceTestSuite) TestAcceptDeclinesSiblingProposals() {
	guestProposal, err := suite.service.ProposeSchedule(suite.guest.ID, suite.collab.ID, &ProposeScheduleRequest{Slots: suite.slots()})
	suite.Require().NoError(err)
	ownerProposal, err := suite.service.ProposeSchedule(suite.owner.ID, suite.collab.ID, &ProposeScheduleRequest{Slots: suite.slots()})
	suite.Require().NoError(err)

	idx := 1
	_, err = suite.service.RespondToProposal(suite.owner.ID, guestProposal.ID, &RespondToProposalRequest{
		Action:    "accept",
		SlotIndex: &idx,
	})
	suite.Require().NoError(err)

	var sibling models.ScheduleProposal
	suite.Require().NoError(suite.db.First(&sibling, ownerProposal.ID).Error)
	assert.Equal(suite.T(), models.ProposalStatusDeclined, sibling.Status)
}

func (suite *SchedulingServiceTestSuite) TestSlotIndexValidated() {
	proposal, err := suite.service.ProposeSchedule(suite.guest.ID, suite.collab.ID, &ProposeScheduleRequest{Slots: suite.slots()})
	suite.Require().NoError(err)

	idx := 5
	_, err = suite.service.RespondToProposal(suite.owner.ID, proposal.ID, &RespondToProposalRequest{
		Action:    "accept",
		SlotIndex: &idx,
	})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "out of range")
}

func (suite *SchedulingServiceTestSuite) TestRescheduleRequiresReason() {
	suite.confirmSchedule()

	_, err := suite.service.RequestReschedule(suite.guest.ID, suite.collab.ID, &RequestRescheduleRequest{
		Reason: "",
		Slots:  suite.slots(),
	})
	assert.Error(suite.T(), err)
}

func (suite *SchedulingServiceTestSuite) TestRescheduleSnapshotsPreviousSchedule() {
	suite.confirmSchedule()

	request, err := suite.service.RequestReschedule(suite.owner.ID, suite.collab.ID, &RequestRescheduleRequest{
		Reason: "Studio double-booked that morning",
		Slots: []models.ScheduleSlot{
			{Date: "2026-10-12", Time: "09:00", Timezone: "Africa/Kampala", Duration: 60},
		},
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "2026-10-05", request.PreviousSchedule["date"])

	idx := 0
	_, err = suite.service.RespondToReschedule(suite.guest.ID, request.ID, &RespondToProposalRequest{
		Action:    "accept",
		SlotIndex: &idx,
	})
	suite.Require().NoError(err)

	reloaded, err := suite.collabs.loadCollaboration(suite.collab.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.CollaborationStatusScheduled, reloaded.Status)
	assert.Equal(suite.T(), "2026-10-12", reloaded.ScheduleDate)
	assert.Equal(suite.T(), 1, reloaded.RescheduleCount)
}

func (suite *SchedulingServiceTestSuite) TestDeclinedRescheduleKeepsSchedule() {
	suite.confirmSchedule()

	request, err := suite.service.RequestReschedule(suite.owner.ID, suite.collab.ID, &RequestRescheduleRequest{
		Reason: "Need a later start",
		Slots:  suite.slots(),
	})
	suite.Require().NoError(err)

	_, err = suite.service.RespondToReschedule(suite.guest.ID, request.ID, &RespondToProposalRequest{
		Action:        "decline",
		DeclineReason: "Original time works for me",
	})
	suite.Require().NoError(err)

	reloaded, err := suite.collabs.loadCollaboration(suite.collab.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "2026-10-05", reloaded.ScheduleDate)
	assert.Equal(suite.T(), 0, reloaded.RescheduleCount)
}

func (suite *SchedulingServiceTestSuite) TestRescheduleCeilingEnforced() {
	suite.confirmSchedule()

	for i := 0; i < 2; i++ {
		request, err := suite.service.RequestReschedule(suite.guest.ID, suite.collab.ID, &RequestRescheduleRequest{
			Reason: "Travel conflict came up again",
			Slots: []models.ScheduleSlot{
				{Date: "2026-11-01", Time: "12:00", Timezone: "Africa/Kampala", Duration: 30},
			},
		})
		suite.Require().NoError(err)

		idx := 0
		_, err = suite.service.RespondToReschedule(suite.owner.ID, request.ID, &RespondToProposalRequest{
			Action:    "accept",
			SlotIndex: &idx,
		})
		suite.Require().NoError(err)
	}

	_, err := suite.service.RequestReschedule(suite.guest.ID, suite.collab.ID, &RequestRescheduleRequest{
		Reason: "One more time please",
		Slots:  suite.slots(),
	})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "reschedule limit")
}

func (suite *SchedulingServiceTestSuite) TestCannotProposeOutsideSchedulingState() {
	suite.confirmSchedule()

	_, err := suite.service.ProposeSchedule(suite.guest.ID, suite.collab.ID, &ProposeScheduleRequest{Slots: suite.slots()})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "cannot propose")
}

func TestSchedulingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulingServiceTestSuite))
}
