package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/eventtrackpro/eventtrack-backend/config"
	"github.com/eventtrackpro/eventtrack-backend/database"
	"github.com/eventtrackpro/eventtrack-backend/internal/auditlog"
	"github.com/eventtrackpro/eventtrack-backend/internal/auth"
	"github.com/eventtrackpro/eventtrack-backend/internal/event"
	"github.com/eventtrackpro/eventtrack-backend/internal/form"
	"github.com/eventtrackpro/eventtrack-backend/internal/notification"
	"github.com/eventtrackpro/eventtrack-backend/internal/registration"
	"github.com/eventtrackpro/eventtrack-backend/internal/reports"
	"github.com/eventtrackpro/eventtrack-backend/internal/webhook"
	"github.com/eventtrackpro/eventtrack-backend/middleware"
	"github.com/eventtrackpro/eventtrack-backend/utils"
)

// Setup wires every module and mounts the HTTP surface
func Setup(r *gin.Engine, cfg *config.Config, activity *utils.KafkaPublisher) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter(cfg))
	api.Use(middleware.AuditMiddleware())

	// ========== Audit Log Module ==========
	auditRepo := auditlog.NewRepository(database.DB)
	auditSvc := auditlog.NewService(auditRepo)
	auditHandler := auditlog.NewHandler(auditSvc)

	// ========== Auth Module ==========
	authRepo := auth.NewRepository(database.DB)
	authSvc := auth.NewService(authRepo, cfg)
	authHandler := auth.NewHandler(authSvc)

	// ========== Webhook Module ==========
	webhookRepo := webhook.NewRepository(database.DB)
	dispatcher := webhook.NewDispatcher(time.Duration(cfg.WebhookTimeoutSeconds) * time.Second)
	webhookSvc := webhook.NewService(webhookRepo, dispatcher, auditSvc)

	// ========== Form Module ==========
	formRepo := form.NewRepository(database.DB)
	formSvc := form.NewService(formRepo, auditSvc)
	formHandler := form.NewHandler(formSvc)

	// ========== Event Module ==========
	eventRepo := event.NewRepository(database.DB)
	eventSvc := event.NewService(eventRepo, formRepo, webhookSvc, auditSvc)
	eventHandler := event.NewHandler(eventSvc)

	webhookHandler := webhook.NewHandler(webhookSvc, eventSvc)

	// ========== Notification Module ==========
	emailSender := notification.NewEmailSender(cfg)
	notifSvc := notification.NewService(database.DB, emailSender)

	// ========== Registration Module ==========
	regRepo := registration.NewRepository(database.DB)
	regSvc := registration.NewService(regRepo, eventRepo, formRepo, formSvc, webhookSvc, notifSvc, auditSvc, activityOrNil(activity))
	regHandler := registration.NewHandler(regSvc)

	// ========== Reports Module ==========
	reportsRepo := reports.NewRepository(database.DB)
	reportsSvc := reports.NewService(reportsRepo, formRepo, reports.NewReportExporter())
	reportsHandler := reports.NewHandler(reportsSvc)

	// ========== Public Routes ==========
	public := api.Group("/public")
	public.Use(middleware.PublicRateLimiter(cfg))
	{
		public.GET("/events/:id", eventHandler.GetPublicEvent)
		public.GET("/forms/:id", formHandler.GetPublicForm)
		public.POST("/registrations", regHandler.CreatePublic)
	}

	// ========== Auth Routes ==========
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.GET("/me", middleware.AuthMiddleware(cfg, authSvc), authHandler.Me)
	}

	// ========== Protected Routes ==========
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg, authSvc))

	auditRoutes := protected.Group("/auditlogs")
	auditRoutes.Use(middleware.RBACMiddleware(middleware.RoleAdmin))
	{
		auditRoutes.GET("", auditHandler.GetAuditLogs)
		auditRoutes.GET("/:id", auditHandler.GetAuditLogByID)
	}

	eventRoutes := protected.Group("/events")
	{
		eventRoutes.GET("", eventHandler.ListEvents)
		eventRoutes.GET("/upcoming", eventHandler.GetUpcomingEvents)
		eventRoutes.GET("/:id", eventHandler.GetEvent)
		eventRoutes.GET("/:id/stats", eventHandler.GetEventStats)

		writeRoutes := eventRoutes.Group("")
		writeRoutes.Use(middleware.RequireWriteAccess())
		{
			writeRoutes.POST("", eventHandler.CreateEvent)
			writeRoutes.PUT("/:id", eventHandler.UpdateEvent)
			writeRoutes.DELETE("/:id", eventHandler.DeleteEvent)
		}
	}

	formRoutes := protected.Group("/forms")
	{
		formRoutes.GET("", formHandler.ListForms)
		formRoutes.GET("/:id", formHandler.GetForm)

		writeRoutes := formRoutes.Group("")
		writeRoutes.Use(middleware.RequireWriteAccess())
		{
			writeRoutes.POST("", formHandler.CreateForm)
			writeRoutes.PUT("/:id", formHandler.UpdateForm)
			writeRoutes.DELETE("/:id", formHandler.DeleteForm)
		}
	}

	regRoutes := protected.Group("/registrations")
	{
		regRoutes.GET("", regHandler.ListRegistrations)
		regRoutes.GET("/:id", regHandler.GetRegistration)

		writeRoutes := regRoutes.Group("")
		writeRoutes.Use(middleware.RequireWriteAccess())
		{
			writeRoutes.PATCH("/:id/attendance", regHandler.UpdateAttendance)
			writeRoutes.POST("/:id/webhook", regHandler.RetriggerWebhooks)
			writeRoutes.DELETE("/:id", regHandler.DeleteRegistration)
		}
	}

	webhookRoutes := protected.Group("/webhooks")
	{
		webhookRoutes.GET("", webhookHandler.ListWebhooks)
		webhookRoutes.GET("/:id", webhookHandler.GetWebhook)
		webhookRoutes.GET("/:id/deliveries", webhookHandler.ListDeliveries)

		writeRoutes := webhookRoutes.Group("")
		writeRoutes.Use(middleware.RequireWriteAccess())
		{
			writeRoutes.POST("", webhookHandler.CreateWebhook)
			writeRoutes.PUT("/:id", webhookHandler.UpdateWebhook)
			writeRoutes.DELETE("/:id", webhookHandler.DeleteWebhook)
			writeRoutes.POST("/trigger", webhookHandler.Trigger)
			writeRoutes.POST("/test", webhookHandler.Test)
			writeRoutes.POST("/test-event", webhookHandler.TestEvent)
		}
	}

	reportsRoutes := protected.Group("/reports")
	{
		reportsRoutes.GET("/:type", reportsHandler.Export)
	}
}

// activityOrNil avoids a typed-nil interface when Kafka is disabled
func activityOrNil(p *utils.KafkaPublisher) registration.ActivityPublisher {
	if p == nil {
		return nil
	}
	return p
}
