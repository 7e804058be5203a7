package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	config "github.com/smarifurrahman/linguistic-horizons-server/configs"
	"github.com/smarifurrahman/linguistic-horizons-server/database"
	"github.com/smarifurrahman/linguistic-horizons-server/handlers"
	"github.com/smarifurrahman/linguistic-horizons-server/jobs"
	"github.com/smarifurrahman/linguistic-horizons-server/middleware"
	"github.com/smarifurrahman/linguistic-horizons-server/notifications"
	"github.com/smarifurrahman/linguistic-horizons-server/routes"
	"github.com/smarifurrahman/linguistic-horizons-server/services"
	"github.com/smarifurrahman/linguistic-horizons-server/websocket"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("🔥 Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, settings)
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	seedCtx, cancel := context.WithTimeout(ctx, settings.DBTimeout)
	if err := database.SeedAdmin(seedCtx, store, settings.AdminEmail); err != nil {
		log.Printf("⚠️ Failed to seed admin user: %v", err)
	}
	cancel()

	feed := websocket.NewHub()
	go feed.Run(ctx)

	var mailer services.Mailer
	if email := notifications.NewEmailService(settings.BrevoAPIKey, settings.EmailSender, settings.EmailSenderName); email != nil {
		mailer = email
	}

	tokens := services.NewTokenService(settings.AccessTokenSecret, settings.TokenTTL)
	enrollment := services.NewEnrollmentService(store, feed, settings.OverbookingAllowed).WithMailer(mailer)
	if settings.OverbookingAllowed {
		log.Println("⚠️ Overbooking allowed: enrollment may drive availableSeats below zero.")
	}

	h := handlers.New(handlers.Deps{
		Store:      store,
		Tokens:     tokens,
		Enrollment: enrollment,
		Classes:    services.NewClassService(store, feed).WithMailer(mailer),
		Roster:     services.NewRosterService(store),
		Media:      services.NewMediaService(settings.CloudinaryURL),
	})
	guards := middleware.NewGuards(store, tokens)

	scheduler, err := jobs.Schedule(settings.ReconcileSchedule, enrollment, settings.DBTimeout)
	if err != nil {
		log.Fatalf("🔥 Failed to schedule jobs: %v", err)
	}
	scheduler.Start()
	log.Println("✅ Cron job for enrollment reconciliation scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:       false,
		AppName:       "Linguistic Horizons",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler:  handlers.ErrorHandler,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  settings.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Disposition",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(middleware.StoreDeadline(settings.DBTimeout))

	routes.Register(app, h, guards, feed)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		<-scheduler.Stop().Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("✅ Linguistic Horizons Server is running on port %s", settings.Port)
	if err := app.Listen(":" + settings.Port); err != nil {
		log.Printf("🔥 Server failed: %v", err)
	}
}
