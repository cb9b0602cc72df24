// internal/handlers/payment.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xkmato/uvocollab-sub001/internal/i18n"
	"github.com/xkmato/uvocollab-sub001/internal/services"
	"github.com/xkmato/uvocollab-sub001/internal/utils"
)

type PaymentHandler struct {
	paymentService       *services.PaymentService
	collaborationService *services.CollaborationService
}

func NewPaymentHandler(paymentService *services.PaymentService, collaborationService *services.CollaborationService) *PaymentHandler {
	return &PaymentHandler{
		paymentService:       paymentService,
		collaborationService: collaborationService,
	}
}

// POST /collaborations/:id/payment/intent
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	collaborationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid collaboration ID", nil)
		return
	}

	intent, err := h.paymentService.CreateCollaborationIntent(userID, collaborationID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"payment_intent": intent})
}

// POST /collaborations/:id/payment/confirm
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	if _, ok := currentUserID(c); !ok {
		return
	}

	collaborationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid collaboration ID", nil)
		return
	}

	var req struct {
		PaymentReference string `json:"payment_reference" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Payment reference is required", nil)
		return
	}

	collaboration, err := h.collaborationService.ConfirmPayment(collaborationID, req.PaymentReference)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":       i18n.T(lang, i18n.KeyPaymentConfirmed),
		"collaboration": collaboration,
	})
}

// POST /payments/accounts
func (h *PaymentHandler) ConnectPayoutAccount(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.ConnectPayoutAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	account, err := h.paymentService.ConnectPayoutAccount(userID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{"account": account})
}

// GET /payments/accounts
func (h *PaymentHandler) ListPayoutAccounts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	accounts, err := h.paymentService.ListPayoutAccounts(userID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"accounts": accounts})
}

func respondPaymentError(c *gin.Context, err error) {
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
