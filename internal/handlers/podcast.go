// internal/handlers/podcast.go
package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xkmato/uvocollab-sub001/internal/i18n"
	"github.com/xkmato/uvocollab-sub001/internal/services"
	"github.com/xkmato/uvocollab-sub001/internal/utils"
)

type PodcastHandler struct {
	podcastService *services.PodcastService
	storageService *services.StorageService
}

func NewPodcastHandler(podcastService *services.PodcastService, storageService *services.StorageService) *PodcastHandler {
	return &PodcastHandler{
		podcastService: podcastService,
		storageService: storageService,
	}
}

// POST /podcasts
func (h *PodcastHandler) CreatePodcast(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreatePodcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	podcast, err := h.podcastService.CreatePodcast(ownerID, &req)
	if err != nil {
		respondPodcastError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPodcastCreated),
		"podcast": podcast,
	})
}

// GET /podcasts/:id
func (h *PodcastHandler) GetPodcast(c *gin.Context) {
	podcastID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid podcast ID", nil)
		return
	}

	podcast, err := h.podcastService.GetPodcast(podcastID)
	if err != nil {
		respondPodcastError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"podcast": podcast})
}

// PUT /podcasts/:id
func (h *PodcastHandler) UpdatePodcast(c *gin.Context) {
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

	var req services.UpdatePodcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	podcast, err := h.podcastService.UpdatePodcast(ownerID, podcastID, &req)
	if err != nil {
		respondPodcastError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"podcast": podcast})
}

// GET /podcasts
func (h *PodcastHandler) SearchPodcasts(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	search := services.PodcastSearchParams{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Topic:    c.Query("topic"),
	}

	podcasts, total, err := h.podcastService.SearchPodcasts(search, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(podcasts, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /services
func (h *PodcastHandler) CreateService(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	providerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	service, err := h.podcastService.CreateService(providerID, &req)
	if err != nil {
		respondPodcastError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyServiceCreated),
		"service": service,
	})
}

// GET /services/:id
func (h *PodcastHandler) GetService(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid service ID", nil)
		return
	}

	service, err := h.podcastService.GetService(serviceID)
	if err != nil {
		respondPodcastError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"service": service})
}

// PUT /services/:id
func (h *PodcastHandler) UpdateService(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	providerID, ok := currentUserID(c)
	if !ok {
		return
	}

	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid service ID", nil)
		return
	}

	var req services.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	service, err := h.podcastService.UpdateService(providerID, serviceID, &req)
	if err != nil {
		respondPodcastError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"service": service})
}

// GET /services
func (h *PodcastHandler) ListMyServices(c *gin.Context) {
	providerID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	list, total, err := h.podcastService.ListServices(providerID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(list, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /uploads
// Multipart upload of demos, covers, avatars, and deliverable files.
func (h *PodcastHandler) UploadFile(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "File is required", nil)
		return
	}
	defer file.Close()

	category := c.DefaultPostForm("category", "general")
	options := h.storageService.GetDefaultUploadOptions(category)

	result, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{"upload": result})
}

// GET /uploads/presign
func (h *PodcastHandler) PresignDownload(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	key := c.Query("key")
	if key == "" {
		utils.BadRequestResponse(c, "key is required", nil)
		return
	}

	url, err := h.storageService.GeneratePresignedURL(key, 15*time.Minute)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"url": url})
}

// DELETE /uploads
func (h *PodcastHandler) DeleteUpload(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	key := c.Query("key")
	if key == "" {
		utils.BadRequestResponse(c, "key is required", nil)
		return
	}

	if err := h.storageService.DeleteFile(key); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": key})
}

func respondPodcastError(c *gin.Context, err error) {
	switch {
	case strings.Contains(err.Error(), "podcast not found"):
		utils.NotFoundResponse(c, i18n.KeyPodcastNotFound)
	case strings.Contains(err.Error(), "service not found"):
		utils.NotFoundResponse(c, i18n.KeyServiceNotFound)
	case strings.Contains(err.Error(), "user not found"):
		utils.NotFoundResponse(c, i18n.KeyUserNotFound)
	case strings.Contains(err.Error(), "unauthorized"):
		utils.ForbiddenResponse(c, err.Error())
	default:
		utils.BadRequestResponse(c, err.Error(), nil)
	}
}
