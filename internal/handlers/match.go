// internal/handlers/match.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xkmato/uvocollab-sub001/internal/i18n"
	"github.com/xkmato/uvocollab-sub001/internal/services"
	"github.com/xkmato/uvocollab-sub001/internal/utils"
)

type MatchHandler struct {
	matchingService      *services.MatchingService
	collaborationService *services.CollaborationService
}

func NewMatchHandler(matchingService *services.MatchingService, collaborationService *services.CollaborationService) *MatchHandler {
	return &MatchHandler{
		matchingService:      matchingService,
		collaborationService: collaborationService,
	}
}

// POST /matching/sweep
// Protected by the matching shared secret or an admin token.
func (h *MatchHandler) RunSweep(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	result, err := h.matchingService.RunSweep()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyMatchSweepDone),
		"result":  result,
	})
}

// GET /matches
func (h *MatchHandler) ListMatches(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	matches, total, err := h.matchingService.ListMatches(userID, c.Query("status"), params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(matches, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /matches/:id
func (h *MatchHandler) GetMatch(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid match ID", nil)
		return
	}

	match, err := h.matchingService.GetMatch(userID, matchID)
	if err != nil {
		respondMatchError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"match": match})
}

// PUT /matches/:id/dismiss
func (h *MatchHandler) DismissMatch(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid match ID", nil)
		return
	}

	match, err := h.matchingService.DismissMatch(userID, matchID)
	if err != nil {
		respondMatchError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyMatchDismissed),
		"match":   match,
	})
}

// POST /matches/:id/collaborate
func (h *MatchHandler) StartCollaboration(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid match ID", nil)
		return
	}

	collaboration, err := h.matchingService.StartCollaborationFromMatch(userID, matchID, h.collaborationService)
	if err != nil {
		respondMatchError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":       i18n.T(lang, i18n.KeyCollaborationInitiated),
		"collaboration": collaboration,
	})
}

func respondMatchError(c *gin.Context, err error) {
	switch {
	case strings.Contains(err.Error(), "not found"):
		utils.NotFoundResponse(c, i18n.KeyMatchNotFound)
	case strings.Contains(err.Error(), "unauthorized"):
		utils.ForbiddenResponse(c, err.Error())
	case strings.Contains(err.Error(), "concurrent"):
		utils.ConflictResponse(c, err.Error())
	default:
		utils.BadRequestResponse(c, err.Error(), nil)
	}
}
