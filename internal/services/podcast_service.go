// internal/services/podcast_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xkmato/uvocollab-sub001/internal/models"
	"github.com/xkmato/uvocollab-sub001/internal/utils"
)

type PodcastService struct {
	db *gorm.DB
}

type CreatePodcastRequest struct {
	Title       string   `json:"title" validate:"required,min=2,max=255"`
	Description string   `json:"description" validate:"max=5000"`
	CoverImage  string   `json:"cover_image,omitempty" validate:"omitempty,http_url"`
	Topics      []string `json:"topics" validate:"required,min=1,dive,required"`
	Category    string   `json:"category" validate:"required,max=100"`
}

type UpdatePodcastRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=2,max=255"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	CoverImage  *string  `json:"cover_image,omitempty" validate:"omitempty,http_url"`
	Topics      []string `json:"topics,omitempty"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,max=100"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

type CreateServiceRequest struct {
	PodcastID   *uuid.UUID `json:"podcast_id,omitempty"`
	Title       string     `json:"title" validate:"required,min=2,max=255"`
	Description string     `json:"description" validate:"max=5000"`
	Price       float64    `json:"price" validate:"min=0"`
	Currency    string     `json:"currency,omitempty" validate:"omitempty,len=3"`
}

type UpdateServiceRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=2,max=255"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,min=0"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

type PodcastSearchParams struct {
	Query    string
	Category string
	Topic    string
}

func NewPodcastService(db *gorm.DB) *PodcastService {
	return &PodcastService{db: db}
}

func (s *PodcastService) CreatePodcast(ownerID uuid.UUID, req *CreatePodcastRequest) (*models.Podcast, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var owner models.User
	if err := s.db.First(&owner, ownerID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if owner.UserType != models.UserTypePodcastOwner && owner.UserType != models.UserTypeAdmin {
		return nil, errors.New("only podcast owners can create podcasts")
	}

	podcast := &models.Podcast{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		Topics:      models.StringArray(req.Topics),
		Category:    req.Category,
		IsActive:    true,
	}

	if err := s.db.Create(podcast).Error; err != nil {
		return nil, fmt.Errorf("failed to create podcast: %w", err)
	}

	return podcast, nil
}

func (s *PodcastService) GetPodcast(id uuid.UUID) (*models.Podcast, error) {
	var podcast models.Podcast
	if err := s.db.Preload("Owner").Preload("Services", "is_active = ?", true).
		First(&podcast, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPodcastNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &podcast, nil
}

func (s *PodcastService) UpdatePodcast(ownerID, id uuid.UUID, req *UpdatePodcastRequest) (*models.Podcast, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	podcast, err := s.GetPodcast(id)
	if err != nil {
		return nil, err
	}
	if podcast.OwnerID != ownerID {
		return nil, ErrNotAuthorized
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.CoverImage != nil {
		updates["cover_image"] = *req.CoverImage
	}
	if req.Topics != nil {
		updates["topics"] = models.StringArray(req.Topics)
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(podcast).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update podcast: %w", err)
		}
	}

	return podcast, nil
}

// SearchPodcasts filters the active catalogue by free text, category, and
// topic.
func (s *PodcastService) SearchPodcasts(search PodcastSearchParams, params utils.PaginationParams) ([]models.Podcast, int64, error) {
	query := s.db.Model(&models.Podcast{}).
		Where("is_active = ?", true).
		Preload("Owner")

	if search.Query != "" {
		pattern := "%" + search.Query + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if search.Category != "" {
		query = query.Where("category = ?", search.Category)
	}
	if search.Topic != "" {
		query = query.Where("topics::text ILIKE ?", "%"+search.Topic+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count podcasts: %w", err)
	}

	allowedSortFields := []string{"created_at", "title", "category"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var podcasts []models.Podcast
	if err := query.Find(&podcasts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch podcasts: %w", err)
	}

	return podcasts, total, nil
}

// CreateService publishes a priced catalogue entry. A podcast-scoped entry
// must belong to a podcast the provider owns.
func (s *PodcastService) CreateService(providerID uuid.UUID, req *CreateServiceRequest) (*models.Service, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.PodcastID != nil {
		var podcast models.Podcast
		if err := s.db.First(&podcast, *req.PodcastID).Error; err != nil {
			return nil, ErrPodcastNotFound
		}
		if podcast.OwnerID != providerID {
			return nil, ErrNotAuthorized
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	service := &models.Service{
		ProviderID:  providerID,
		PodcastID:   req.PodcastID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Currency:    currency,
		IsActive:    true,
	}

	if err := s.db.Create(service).Error; err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	return service, nil
}

func (s *PodcastService) GetService(id uuid.UUID) (*models.Service, error) {
	var service models.Service
	if err := s.db.Preload("Provider").Preload("Podcast").First(&service, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &service, nil
}

func (s *PodcastService) UpdateService(providerID, id uuid.UUID, req *UpdateServiceRequest) (*models.Service, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	service, err := s.GetService(id)
	if err != nil {
		return nil, err
	}
	if service.ProviderID != providerID {
		return nil, ErrNotAuthorized
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(service).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update service: %w", err)
		}
	}

	return service, nil
}

// ListServices returns a provider's catalogue entries.
func (s *PodcastService) ListServices(providerID uuid.UUID, params utils.PaginationParams) ([]models.Service, int64, error) {
	query := s.db.Model(&models.Service{}).Where("provider_id = ?", providerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count services: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "price", "title"})
	query = utils.ApplyPagination(query, params)

	var services []models.Service
	if err := query.Find(&services).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch services: %w", err)
	}

	return services, total, nil
}
