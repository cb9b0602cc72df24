// internal/handlers/schedule.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xkmato/uvocollab-sub001/internal/i18n"
	"github.com/xkmato/uvocollab-sub001/internal/services"
	"github.com/xkmato/uvocollab-sub001/internal/utils"
)

type ScheduleHandler struct {
	schedulingService *services.SchedulingService
}

func NewScheduleHandler(schedulingService *services.SchedulingService) *ScheduleHandler {
	return &ScheduleHandler{
		schedulingService: schedulingService,
	}
}

// POST /collaborations/:id/schedule/proposals
func (h *ScheduleHandler) ProposeSchedule(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	collaborationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid collaboration ID", nil)
		return
	}

	var req services.ProposeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	proposal, err := h.schedulingService.ProposeSchedule(userID, collaborationID, &req)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyScheduleProposed),
		"proposal": proposal,
	})
}

// PUT /schedule/proposals/:id/respond
func (h *ScheduleHandler) RespondToProposal(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	proposalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid proposal ID", nil)
		return
	}

	var req services.RespondToProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	proposal, err := h.schedulingService.RespondToProposal(userID, proposalID, &req)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	messageKey := i18n.KeyScheduleConfirmed
	if req.Action == "decline" {
		messageKey = i18n.KeyScheduleDeclined
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, messageKey),
		"proposal": proposal,
	})
}

// POST /collaborations/:id/schedule/reschedule
func (h *ScheduleHandler) RequestReschedule(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	collaborationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid collaboration ID", nil)
		return
	}

	var req services.RequestRescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.schedulingService.RequestReschedule(userID, collaborationID, &req)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRescheduleRequested),
		"request": request,
	})
}

// PUT /schedule/reschedules/:id/respond
func (h *ScheduleHandler) RespondToReschedule(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid reschedule request ID", nil)
		return
	}

	var req services.RespondToProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.schedulingService.RespondToReschedule(userID, requestID, &req)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	messageKey := i18n.KeyRescheduleAccepted
	if req.Action == "decline" {
		messageKey = i18n.KeyRescheduleDeclined
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, messageKey),
		"request": request,
	})
}

// GET /collaborations/:id/schedule/proposals
func (h *ScheduleHandler) ListProposals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	collaborationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid collaboration ID", nil)
		return
	}

	proposals, err := h.schedulingService.ListProposals(userID, collaborationID)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"proposals": proposals})
}

func respondScheduleError(c *gin.Context, err error) {
	switch {
	case strings.Contains(err.Error(), "proposal not found") ||
		strings.Contains(err.Error(), "request not found"):
		utils.NotFoundResponse(c, i18n.KeyProposalNotFound)
	case strings.Contains(err.Error(), "not found"):
		utils.NotFoundResponse(c, i18n.KeyCollaborationNotFound)
	case strings.Contains(err.Error(), "unauthorized"):
		utils.ForbiddenResponse(c, err.Error())
	case strings.Contains(err.Error(), "concurrent"):
		utils.ConflictResponse(c, err.Error())
	default:
		utils.BadRequestResponse(c, err.Error(), nil)
	}
}
