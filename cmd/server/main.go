package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/insightdesk/backend/internal/config"
	"github.com/insightdesk/backend/internal/database"
	"github.com/insightdesk/backend/internal/handlers"
	"github.com/insightdesk/backend/internal/middleware"
	"github.com/insightdesk/backend/internal/services"
	"github.com/insightdesk/backend/pkg/logger"
	"github.com/insightdesk/backend/pkg/utils"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	mailer := services.NewSMTPMailer(cfg.SMTP)
	notifier := services.NewNotifier(mailer, cfg.Notify.QueueSize)
	otpService := services.NewOTPService(db, notifier, cfg.OTP.Lifetime)
	requestService := services.NewRequestService(db, notifier, cfg.Lifecycle.StrictTransitions)

	authHandler := handlers.NewAuthHandler(otpService)
	requestsHandler := handlers.NewRequestsHandler(requestService)
	adminsHandler := handlers.NewAdminsHandler(db)
	analystsHandler := handlers.NewAnalystsHandler(db)
	dashboardsHandler := handlers.NewDashboardsHandler(db)

	app := fiber.New(fiber.Config{})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/request-otp", authHandler.RequestOTP)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", middleware.RequireAuth, authHandler.Me)

	api.Get("/admins", adminsHandler.List)
	api.Get("/analysts", analystsHandler.List)

	requestRoutes := api.Group("/requests")
	requestRoutes.Post("/", requestsHandler.Create)
	requestRoutes.Get("/", middleware.RequireAuth, requestsHandler.List)
	requestRoutes.Get("/stats", middleware.RequireAuth, requestsHandler.Stats)
	requestRoutes.Get("/export", middleware.RequireAuth, requestsHandler.Export)
	requestRoutes.Post("/:id/assign", middleware.RequireAuth, requestsHandler.Assign)
	requestRoutes.Patch("/:id/edit", middleware.RequireAuth, requestsHandler.Edit)
	requestRoutes.Post("/:id/complete", middleware.RequireAuth, requestsHandler.Complete)
	requestRoutes.Delete("/:id", middleware.RequireAuth, requestsHandler.Delete)

	superAdmin := middleware.SuperAdminOnly(cfg.Server.SuperAdminEmail)
	api.Get("/dashboards", dashboardsHandler.Get)
	api.Post("/dashboards", middleware.RequireAuth, superAdmin, dashboardsHandler.Add)
	api.Delete("/dashboards", middleware.RequireAuth, superAdmin, dashboardsHandler.Remove)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"address": listenAddr,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
