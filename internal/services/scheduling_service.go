// internal/services/scheduling_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/xkmato/uvocollab-sub001/internal/config"
	"github.com/xkmato/uvocollab-sub001/internal/models"
	"github.com/xkmato/uvocollab-sub001/internal/utils"
)

type SchedulingService struct {
	db                   *gorm.DB
	config               *config.Config
	collaborationService *CollaborationService
	notificationService  *NotificationService
}

type ProposeScheduleRequest struct {
	Slots   []models.ScheduleSlot `json:"slots" validate:"required,min=1,max=5,dive"`
	Message string                `json:"message,omitempty"`
}

type RespondToProposalRequest struct {
	Action        string `json:"action" validate:"required,oneof=accept decline"`
	SlotIndex     *int   `json:"slot_index,omitempty"`
	DeclineReason string `json:"decline_reason,omitempty"`
}

type RequestRescheduleRequest struct {
	Reason string                `json:"reason" validate:"required,min=5"`
	Slots  []models.ScheduleSlot `json:"slots" validate:"required,min=1,max=5,dive"`
}

func NewSchedulingService(db *gorm.DB, cfg *config.Config, collaborationService *CollaborationService, notificationService *NotificationService) *SchedulingService {
	return &SchedulingService{
		db:                   db,
		config:               cfg,
		collaborationService: collaborationService,
		notificationService:  notificationService,
	}
}

// ProposeSchedule submits candidate slots from one party. Each party can have
// at most one outstanding proposal at a time.
func (s *SchedulingService) ProposeSchedule(userID, collaborationID uuid.UUID, req *ProposeScheduleRequest) (*models.ScheduleProposal, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	collab, err := s.collaborationService.loadCollaboration(collaborationID)
	if err != nil {
		return nil, err
	}

	role, err := collab.RoleOf(userID)
	if err != nil {
		return nil, ErrNotAuthorized
	}

	if collab.Status != models.CollaborationStatusScheduling {
		return nil, fmt.Errorf("cannot propose a schedule in status %s", collab.Status)
	}

	var outstanding int64
	if err := s.db.Model(&models.ScheduleProposal{}).
		Where("collaboration_id = ? AND proposed_by = ? AND status = ?",
			collab.ID, userID, models.ProposalStatusProposed).
		Count(&outstanding).Error; err != nil {
		return nil, fmt.Errorf("failed to check outstanding proposals: %w", err)
	}
	if outstanding > 0 {
		return nil, errors.New("you already have an outstanding schedule proposal")
	}

	proposal := &models.ScheduleProposal{
		CollaborationID: collab.ID,
		ProposedBy:      userID,
		ProposedByRole:  role,
		Slots:           models.ScheduleSlots(req.Slots),
		Message:         req.Message,
		Status:          models.ProposalStatusProposed,
	}

	if err := s.db.Create(proposal).Error; err != nil {
		return nil, fmt.Errorf("failed to create schedule proposal: %w", err)
	}

	go s.notifyScheduleProposed(collab, userID, proposal)

	return proposal, nil
}

// RespondToProposal accepts one slot of a proposal or declines it. Accepting
// confirms the schedule, moves the collaboration to scheduled, and declines
// every other open proposal on the same collaboration.
func (s *SchedulingService) RespondToProposal(userID, proposalID uuid.UUID, req *RespondToProposalRequest) (*models.ScheduleProposal, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var proposal models.ScheduleProposal
	if err := s.db.First(&proposal, proposalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if proposal.Status != models.ProposalStatusProposed {
		return nil, errors.New("proposal has already been resolved")
	}

	if proposal.ProposedBy == userID {
		return nil, errors.New("cannot respond to your own proposal")
	}

	collab, err := s.collaborationService.loadCollaboration(proposal.CollaborationID)
	if err != nil {
		return nil, err
	}

	if !collab.IsParty(userID) {
		return nil, ErrNotAuthorized
	}

	if req.Action == "decline" {
		updates := map[string]interface{}{
			"status":         models.ProposalStatusDeclined,
			"decline_reason": req.DeclineReason,
			"responded_by":   userID,
		}
		if err := s.db.Model(&proposal).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to decline proposal: %w", err)
		}
		proposal.Status = models.ProposalStatusDeclined
		return &proposal, nil
	}

	if req.SlotIndex == nil {
		return nil, errors.New("slot_index is required when accepting")
	}
	if *req.SlotIndex < 0 || *req.SlotIndex >= len(proposal.Slots) {
		return nil, errors.New("slot_index is out of range")
	}

	slot := proposal.Slots[*req.SlotIndex]

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&proposal).Updates(map[string]interface{}{
			"status":              models.ProposalStatusAccepted,
			"accepted_slot_index": *req.SlotIndex,
			"responded_by":        userID,
		}).Error; err != nil {
			return fmt.Errorf("failed to accept proposal: %w", err)
		}

		// All sibling proposals are moot once one is accepted.
		if err := tx.Model(&models.ScheduleProposal{}).
			Where("collaboration_id = ? AND id != ? AND status = ?",
				collab.ID, proposal.ID, models.ProposalStatusProposed).
			Updates(map[string]interface{}{
				"status":         models.ProposalStatusDeclined,
				"decline_reason": "another proposal was accepted",
				"responded_by":   userID,
			}).Error; err != nil {
			return fmt.Errorf("failed to decline sibling proposals: %w", err)
		}

		return s.collaborationService.transition(tx, collab, models.ActionConfirmSchedule, map[string]interface{}{
			"schedule_date":     slot.Date,
			"schedule_time":     slot.Time,
			"schedule_timezone": slot.Timezone,
			"schedule_duration": slot.Duration,
		})
	})
	if err != nil {
		return nil, err
	}

	proposal.Status = models.ProposalStatusAccepted
	proposal.AcceptedSlotIndex = req.SlotIndex
	s.applySlot(collab, slot)

	go s.notifyScheduleConfirmed(collab)

	return &proposal, nil
}

// RequestReschedule opens a reschedule negotiation on a scheduled
// collaboration. The request carries a mandatory reason and is refused once
// the reschedule ceiling is reached.
func (s *SchedulingService) RequestReschedule(userID, collaborationID uuid.UUID, req *RequestRescheduleRequest) (*models.RescheduleRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	collab, err := s.collaborationService.loadCollaboration(collaborationID)
	if err != nil {
		return nil, err
	}

	role, err := collab.RoleOf(userID)
	if err != nil {
		return nil, ErrNotAuthorized
	}

	if collab.Status != models.CollaborationStatusScheduled {
		return nil, fmt.Errorf("cannot reschedule in status %s", collab.Status)
	}

	if collab.RescheduleCount >= collab.MaxReschedules {
		return nil, fmt.Errorf("reschedule limit of %d reached", collab.MaxReschedules)
	}

	var outstanding int64
	if err := s.db.Model(&models.RescheduleRequest{}).
		Where("collaboration_id = ? AND status = ?", collab.ID, models.ProposalStatusProposed).
		Count(&outstanding).Error; err != nil {
		return nil, fmt.Errorf("failed to check outstanding reschedule requests: %w", err)
	}
	if outstanding > 0 {
		return nil, errors.New("a reschedule request is already pending")
	}

	current := collab.CurrentSchedule()
	if current == nil {
		return nil, errors.New("collaboration has no confirmed schedule")
	}

	request := &models.RescheduleRequest{
		CollaborationID: collab.ID,
		RequestedBy:     userID,
		RequestedByRole: role,
		Reason:          req.Reason,
		Slots:           models.ScheduleSlots(req.Slots),
		PreviousSchedule: models.JSONB{
			"date":     current.Date,
			"time":     current.Time,
			"timezone": current.Timezone,
			"duration": current.Duration,
		},
		Status: models.ProposalStatusProposed,
	}

	if err := s.db.Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create reschedule request: %w", err)
	}

	go s.notifyRescheduleRequested(collab, userID, request)

	return request, nil
}

// RespondToReschedule resolves a pending reschedule request. Accepting
// overwrites the confirmed schedule and burns one reschedule; declining
// leaves the original schedule standing.
func (s *SchedulingService) RespondToReschedule(userID, requestID uuid.UUID, req *RespondToProposalRequest) (*models.RescheduleRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var request models.RescheduleRequest
	if err := s.db.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if request.Status != models.ProposalStatusProposed {
		return nil, errors.New("reschedule request has already been resolved")
	}

	if request.RequestedBy == userID {
		return nil, errors.New("cannot respond to your own reschedule request")
	}

	collab, err := s.collaborationService.loadCollaboration(request.CollaborationID)
	if err != nil {
		return nil, err
	}

	if !collab.IsParty(userID) {
		return nil, ErrNotAuthorized
	}

	if req.Action == "decline" {
		if err := s.db.Model(&request).Updates(map[string]interface{}{
			"status":         models.ProposalStatusDeclined,
			"decline_reason": req.DeclineReason,
			"responded_by":   userID,
		}).Error; err != nil {
			return nil, fmt.Errorf("failed to decline reschedule request: %w", err)
		}
		request.Status = models.ProposalStatusDeclined
		return &request, nil
	}

	if req.SlotIndex == nil {
		return nil, errors.New("slot_index is required when accepting")
	}
	if *req.SlotIndex < 0 || *req.SlotIndex >= len(request.Slots) {
		return nil, errors.New("slot_index is out of range")
	}

	slot := request.Slots[*req.SlotIndex]

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&request).Updates(map[string]interface{}{
			"status":              models.ProposalStatusAccepted,
			"accepted_slot_index": *req.SlotIndex,
			"responded_by":        userID,
		}).Error; err != nil {
			return fmt.Errorf("failed to accept reschedule request: %w", err)
		}

		return s.collaborationService.transition(tx, collab, models.ActionAcceptReschedule, map[string]interface{}{
			"schedule_date":     slot.Date,
			"schedule_time":     slot.Time,
			"schedule_timezone": slot.Timezone,
			"schedule_duration": slot.Duration,
			"reschedule_count":  collab.RescheduleCount + 1,
		})
	})
	if err != nil {
		return nil, err
	}

	request.Status = models.ProposalStatusAccepted
	request.AcceptedSlotIndex = req.SlotIndex
	collab.RescheduleCount++
	s.applySlot(collab, slot)

	go s.notifyScheduleConfirmed(collab)

	return &request, nil
}

// ListProposals returns the proposal history of a collaboration to a party.
func (s *SchedulingService) ListProposals(userID, collaborationID uuid.UUID) ([]models.ScheduleProposal, error) {
	collab, err := s.collaborationService.loadCollaboration(collaborationID)
	if err != nil {
		return nil, err
	}

	if !collab.IsParty(userID) {
		return nil, ErrNotAuthorized
	}

	var proposals []models.ScheduleProposal
	if err := s.db.Where("collaboration_id = ?", collab.ID).
		Order("created_at DESC").
		Find(&proposals).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch proposals: %w", err)
	}

	return proposals, nil
}

func (s *SchedulingService) notifyScheduleProposed(collab *models.Collaboration, proposerID uuid.UUID, proposal *models.ScheduleProposal) {
	if s.notificationService == nil {
		return
	}

	recipientID := collab.BuyerID
	if proposerID == collab.BuyerID {
		counterpart, err := collab.Counterpart()
		if err != nil {
			return
		}
		recipientID = counterpart
	}

	var recipient models.User
	if err := s.db.First(&recipient, recipientID).Error; err != nil {
		return
	}

	if err := s.notificationService.SendScheduleProposedNotification(collab, &recipient, len(proposal.Slots)); err != nil {
		logrus.WithError(err).Warn("Failed to send schedule proposal notification")
	}
}

func (s *SchedulingService) applySlot(collab *models.Collaboration, slot models.ScheduleSlot) {
	collab.ScheduleDate = slot.Date
	collab.ScheduleTime = slot.Time
	collab.ScheduleTimezone = slot.Timezone
	collab.ScheduleDuration = slot.Duration
}

func (s *SchedulingService) notifyScheduleConfirmed(collab *models.Collaboration) {
	if s.notificationService == nil {
		return
	}

	counterpart, err := collab.Counterpart()
	if err != nil {
		return
	}

	for _, id := range []uuid.UUID{collab.BuyerID, counterpart} {
		var recipient models.User
		if err := s.db.First(&recipient, id).Error; err != nil {
			continue
		}
		if err := s.notificationService.SendScheduleConfirmedNotification(collab, &recipient); err != nil {
			logrus.WithError(err).Warn("Failed to send schedule confirmation notification")
		}
	}
}

func (s *SchedulingService) notifyRescheduleRequested(collab *models.Collaboration, requesterID uuid.UUID, request *models.RescheduleRequest) {
	if s.notificationService == nil {
		return
	}

	recipientID := collab.BuyerID
	if requesterID == collab.BuyerID {
		counterpart, err := collab.Counterpart()
		if err != nil {
			return
		}
		recipientID = counterpart
	}

	var recipient models.User
	if err := s.db.First(&recipient, recipientID).Error; err != nil {
		return
	}

	if err := s.notificationService.SendRescheduleRequestedNotification(collab, &recipient, request.Reason); err != nil {
		logrus.WithError(err).Warn("Failed to send reschedule notification")
	}
}
