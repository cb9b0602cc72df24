// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/xkmato/uvocollab-sub001/internal/config"
	"github.com/xkmato/uvocollab-sub001/internal/handlers"
	"github.com/xkmato/uvocollab-sub001/internal/middleware"
	"github.com/xkmato/uvocollab-sub001/internal/services"
	"github.com/xkmato/uvocollab-sub001/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)
	gateway := services.NewStripeGateway(cfg)

	authService := services.NewAuthService(db, cfg)
	podcastService := services.NewPodcastService(db)
	wishlistService := services.NewWishlistService(db)
	matchingService := services.NewMatchingService(db, cfg, notificationService)
	collaborationService := services.NewCollaborationService(db, cfg, notificationService, gateway)
	schedulingService := services.NewSchedulingService(db, cfg, collaborationService, notificationService)
	paymentService := services.NewPaymentService(db, cfg, gateway)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	podcastHandler := handlers.NewPodcastHandler(podcastService, storageService)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)
	matchHandler := handlers.NewMatchHandler(matchingService, collaborationService)
	collaborationHandler := handlers.NewCollaborationHandler(collaborationService)
	scheduleHandler := handlers.NewScheduleHandler(schedulingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, collaborationService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Podcast catalogue
		podcasts := v1.Group("/podcasts")
		{
			podcasts.GET("", middleware.OptionalAuth(), podcastHandler.SearchPodcasts)
			podcasts.GET("/:id", middleware.OptionalAuth(), podcastHandler.GetPodcast)

			protected := podcasts.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", podcastHandler.CreatePodcast)
				protected.PUT("/:id", podcastHandler.UpdatePodcast)
				protected.POST("/:id/wishlist", wishlistHandler.AddPodcastWishlist)
				protected.GET("/:id/wishlist", wishlistHandler.ListPodcastWishlist)
			}
		}

		// Service catalogue
		servicesGroup := v1.Group("/services")
		{
			servicesGroup.GET("/:id", middleware.OptionalAuth(), podcastHandler.GetService)

			protected := servicesGroup.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.GET("", podcastHandler.ListMyServices)
				protected.POST("", podcastHandler.CreateService)
				protected.PUT("/:id", podcastHandler.UpdateService)
			}
		}

		// Wishlists
		wishlists := v1.Group("/wishlists")
		wishlists.Use(middleware.AuthRequired())
		{
			wishlists.POST("/guest", wishlistHandler.AddGuestWishlist)
			wishlists.GET("/guest", wishlistHandler.ListGuestWishlist)
			wishlists.DELETE("/guest/:id", wishlistHandler.RemoveGuestWishlist)
			wishlists.DELETE("/podcast/:id", wishlistHandler.RemovePodcastWishlist)
		}

		// Matches
		matches := v1.Group("/matches")
		matches.Use(middleware.AuthRequired())
		{
			matches.GET("", matchHandler.ListMatches)
			matches.GET("/:id", matchHandler.GetMatch)
			matches.PUT("/:id/dismiss", matchHandler.DismissMatch)
			matches.POST("/:id/collaborate", matchHandler.StartCollaboration)
		}

		// Matching sweep, called by the scheduler or an admin
		v1.POST("/matching/sweep", middleware.MatchSweepAuth(cfg.Matching.SharedSecret), matchHandler.RunSweep)

		// Admin support access to any collaboration
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/collaborations/:id", collaborationHandler.GetCollaboration)
		}

		// Collaborations
		collaborations := v1.Group("/collaborations")
		collaborations.Use(middleware.AuthRequired())
		{
			collaborations.POST("", collaborationHandler.InitiateCollaboration)
			collaborations.POST("/pitch", collaborationHandler.SubmitPitch)
			collaborations.GET("", collaborationHandler.ListCollaborations)
			collaborations.GET("/:id", collaborationHandler.GetCollaboration)
			collaborations.PUT("/:id/pitch-response", collaborationHandler.RespondToPitch)
			collaborations.PUT("/:id/agree", collaborationHandler.AgreeTerms)
			collaborations.POST("/:id/deliverables", collaborationHandler.AddDeliverable)
			collaborations.POST("/:id/complete", collaborationHandler.CompleteCollaboration)

			// Payment
			collaborations.POST("/:id/payment/intent", paymentHandler.CreatePaymentIntent)
			collaborations.POST("/:id/payment/confirm", paymentHandler.ConfirmPayment)

			// Scheduling
			collaborations.POST("/:id/schedule/proposals", scheduleHandler.ProposeSchedule)
			collaborations.GET("/:id/schedule/proposals", scheduleHandler.ListProposals)
			collaborations.POST("/:id/schedule/reschedule", scheduleHandler.RequestReschedule)
		}

		schedule := v1.Group("/schedule")
		schedule.Use(middleware.AuthRequired())
		{
			schedule.PUT("/proposals/:id/respond", scheduleHandler.RespondToProposal)
			schedule.PUT("/reschedules/:id/respond", scheduleHandler.RespondToReschedule)
		}

		// Payout accounts
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.POST("/accounts", paymentHandler.ConnectPayoutAccount)
			payments.GET("/accounts", paymentHandler.ListPayoutAccounts)
		}

		// Uploads
		uploads := v1.Group("/uploads")
		uploads.Use(middleware.AuthRequired())
		{
			uploads.POST("", middleware.UploadRateLimit(), podcastHandler.UploadFile)
			uploads.GET("/presign", podcastHandler.PresignDownload)
			uploads.DELETE("", podcastHandler.DeleteUpload)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
