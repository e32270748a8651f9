package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/eventtrackpro/eventtrack-backend/config"
	"github.com/eventtrackpro/eventtrack-backend/database"
	"github.com/eventtrackpro/eventtrack-backend/internal/auditlog"
	"github.com/eventtrackpro/eventtrack-backend/internal/auth"
	"github.com/eventtrackpro/eventtrack-backend/internal/event"
	"github.com/eventtrackpro/eventtrack-backend/internal/form"
	"github.com/eventtrackpro/eventtrack-backend/internal/notification"
	"github.com/eventtrackpro/eventtrack-backend/internal/registration"
	"github.com/eventtrackpro/eventtrack-backend/internal/webhook"
	"github.com/eventtrackpro/eventtrack-backend/routes"
	"github.com/eventtrackpro/eventtrack-backend/utils"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	// Init Kafka activity stream (optional)
	activity := utils.InitializeKafka(cfg)
	defer activity.Close()

	// Auto-migrate models
	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&auth.User{},
		&auditlog.AuditLog{},
		&event.Event{},
		&form.Form{},
		&registration.Registration{},
		&webhook.Webhook{},
		&webhook.WebhookDelivery{},
		&notification.NotificationLog{},
	); err != nil {
		panic(fmt.Sprintf("❌ DB AutoMigrate failed: %v", err))
	}

	// Seed the initial admin account on an empty users table
	authSvc := auth.NewService(auth.NewRepository(db), cfg)
	if err := authSvc.SeedAdminUser("admin", "admin"); err != nil {
		panic(fmt.Sprintf("❌ Failed to seed admin user: %v", err))
	}

	r := gin.Default()
	routes.Setup(r, cfg, activity)

	log.Printf("🚀 Server listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
