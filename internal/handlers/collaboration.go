// internal/handlers/collaboration.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xkmato/uvocollab-sub001/internal/i18n"
	"github.com/xkmato/uvocollab-sub001/internal/services"
	"github.com/xkmato/uvocollab-sub001/internal/utils"
)

type CollaborationHandler struct {
	collaborationService *services.CollaborationService
}

func NewCollaborationHandler(collaborationService *services.CollaborationService) *CollaborationHandler {
	return &CollaborationHandler{
		collaborationService: collaborationService,
	}
}

// POST /collaborations
func (h *CollaborationHandler) InitiateCollaboration(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.InitiateCollaborationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	collaboration, err := h.collaborationService.InitiateGuestCollaboration(buyerID, &req)
	if err != nil {
		respondCollaborationError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":       i18n.T(lang, i18n.KeyCollaborationInitiated),
		"collaboration": collaboration,
	})
}

// POST /collaborations/pitch
func (h *CollaborationHandler) SubmitPitch(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.SubmitPitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	collaboration, err := h.collaborationService.SubmitPitch(buyerID, &req)
	if err != nil {
		respondCollaborationError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":       i18n.T(lang, i18n.KeyPitchSubmitted),
		"collaboration": collaboration,
	})
}

// PUT /collaborations/:id/pitch-response
func (h *CollaborationHandler) RespondToPitch(c *gin.Context) {
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

	var req services.RespondToPitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	collaboration, err := h.collaborationService.RespondToPitch(userID, collaborationID, &req)
	if err != nil {
		respondCollaborationError(c, err)
		return
	}

	messageKey := i18n.KeyPitchAccepted
	if req.Action == "decline" {
		messageKey = i18n.KeyPitchDeclined
	}

	utils.SuccessResponse(c, gin.H{
		"message":       i18n.T(lang, messageKey),
		"collaboration": collaboration,
	})
}

// PUT /collaborations/:id/agree
func (h *CollaborationHandler) AgreeTerms(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	collaborationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid collaboration ID", nil)
		return
	}

	var req struct {
		AgreedPrice *float64 `json:"agreed_price,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	collaboration, err := h.collaborationService.AgreeTerms(userID, collaborationID, req.AgreedPrice)
	if err != nil {
		respondCollaborationError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"collaboration": collaboration})
}

// POST /collaborations/:id/deliverables
func (h *CollaborationHandler) AddDeliverable(c *gin.Context) {
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

	var req services.AddDeliverableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	collaboration, err := h.collaborationService.AddDeliverable(userID, collaborationID, &req)
	if err != nil {
		respondCollaborationError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":       i18n.T(lang, i18n.KeyDeliverableAdded),
		"collaboration": collaboration,
	})
}

// POST /collaborations/:id/complete
func (h *CollaborationHandler) CompleteCollaboration(c *gin.Context) {
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

	collaboration, err := h.collaborationService.CompletePayout(userID, collaborationID)
	if err != nil {
		respondCollaborationError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":       i18n.T(lang, i18n.KeyPayoutReleased),
		"collaboration": collaboration,
	})
}

// GET /collaborations/:id
func (h *CollaborationHandler) GetCollaboration(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	collaborationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid collaboration ID", nil)
		return
	}

	collaboration, err := h.collaborationService.GetCollaboration(userID, collaborationID)
	if err != nil {
		respondCollaborationError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"collaboration": collaboration})
}

// GET /collaborations
func (h *CollaborationHandler) ListCollaborations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	collaborations, total, err := h.collaborationService.ListCollaborations(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(collaborations, total, params)
	utils.PaginatedResponse(c, result)
}

// currentUserID pulls the authenticated user from the request context,
// writing the error response itself when missing.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, false
	}
	return userID, true
}

func respondCollaborationError(c *gin.Context, err error) {
	switch {
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
