// internal/handlers/wishlist.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xkmato/uvocollab-sub001/internal/i18n"
	"github.com/xkmato/uvocollab-sub001/internal/services"
	"github.com/xkmato/uvocollab-sub001/internal/utils"
)

type WishlistHandler struct {
	wishlistService *services.WishlistService
}

func NewWishlistHandler(wishlistService *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
	}
}

// POST /wishlists/guest
func (h *WishlistHandler) AddGuestWishlist(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	guestID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.AddGuestWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	entry, err := h.wishlistService.AddGuestWishlist(guestID, &req)
	if err != nil {
		respondWishlistError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyWishlistCreated),
		"entry":   entry,
	})
}

// POST /podcasts/:id/wishlist
func (h *WishlistHandler) AddPodcastWishlist(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	podcastID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid podcast ID", nil)
		return
	}

	var req services.AddPodcastWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	entry, err := h.wishlistService.AddPodcastWishlist(ownerID, podcastID, &req)
	if err != nil {
		respondWishlistError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyWishlistCreated),
		"entry":   entry,
	})
}

// GET /wishlists/guest
func (h *WishlistHandler) ListGuestWishlist(c *gin.Context) {
	guestID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	entries, total, err := h.wishlistService.ListGuestWishlist(guestID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(entries, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /podcasts/:id/wishlist
func (h *WishlistHandler) ListPodcastWishlist(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	podcastID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid podcast ID", nil)
		return
	}

	params := utils.GetPaginationParams(c)
	entries, total, err := h.wishlistService.ListPodcastWishlist(ownerID, podcastID, params)
	if err != nil {
		respondWishlistError(c, err)
		return
	}

	result := utils.CreatePaginationResult(entries, total, params)
	utils.PaginatedResponse(c, result)
}

// DELETE /wishlists/guest/:id
func (h *WishlistHandler) RemoveGuestWishlist(c *gin.Context) {
	guestID, ok := currentUserID(c)
	if !ok {
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid wishlist entry ID", nil)
		return
	}

	if err := h.wishlistService.RemoveGuestWishlist(guestID, entryID); err != nil {
		respondWishlistError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"removed": true})
}

// DELETE /wishlists/podcast/:id
func (h *WishlistHandler) RemovePodcastWishlist(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid wishlist entry ID", nil)
		return
	}

	if err := h.wishlistService.RemovePodcastWishlist(ownerID, entryID); err != nil {
		respondWishlistError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"removed": true})
}

func respondWishlistError(c *gin.Context, err error) {
	switch {
	case strings.Contains(err.Error(), "podcast not found"):
		utils.NotFoundResponse(c, i18n.KeyPodcastNotFound)
	case strings.Contains(err.Error(), "not found"):
		utils.NotFoundResponse(c, i18n.KeyWishlistNotFound)
	case strings.Contains(err.Error(), "unauthorized"):
		utils.ForbiddenResponse(c, err.Error())
	case strings.Contains(err.Error(), "already"):
		utils.ConflictResponse(c, err.Error())
	default:
		utils.BadRequestResponse(c, err.Error(), nil)
	}
}
