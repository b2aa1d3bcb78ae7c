package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/careernest/Backend-CareerNest/src/config"
	"github.com/careernest/Backend-CareerNest/src/controllers"
	"github.com/careernest/Backend-CareerNest/src/jobs"
	"github.com/careernest/Backend-CareerNest/src/lib"
	"github.com/careernest/Backend-CareerNest/src/logging"
	"github.com/careernest/Backend-CareerNest/src/middleware"
	"github.com/careernest/Backend-CareerNest/src/realtime"
	"github.com/careernest/Backend-CareerNest/src/repositories"
	"github.com/careernest/Backend-CareerNest/src/routes"
	"github.com/careernest/Backend-CareerNest/src/services"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	client, err := lib.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	db := client.Database(cfg.DBName)

	if err := lib.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal("failed to create indexes", zap.Error(err))
	}

	userRepo := repositories.NewUserRepository(db)
	connectionRepo := repositories.NewConnectionRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	registry := realtime.NewRegistry()
	hub := realtime.NewHub(registry, logger)

	notificationService := services.NewNotificationService(notificationRepo, logger)
	connectionService := services.NewConnectionService(connectionRepo, userRepo, notificationService, hub, logger)
	messageService := services.NewMessageService(messageRepo, connectionRepo, userRepo, notificationService, hub, logger)

	connectionController := controllers.NewConnectionController(connectionService)
	messageController := controllers.NewMessageController(messageService)
	notificationController := controllers.NewNotificationController(notificationService)

	socketHandler := realtime.NewHandler(hub, messageService, notificationService, cfg.JWTSecret, logger)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	protect := middleware.ProtectRoute(userRepo, cfg.JWTSecret)
	// Corre después de protect para que la clave sea el usuario, no la IP
	limit := middleware.RateLimit(cfg.RateLimitPerMinute, cfg.RateLimitBurst)

	routes.ConnectionRoutes(app, connectionController, protect, limit)
	routes.MessageRoutes(app, messageController, protect, limit)
	routes.NotificationRoutes(app, notificationController, protect)
	routes.SocketRoutes(app, socketHandler)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	cleanupJob := jobs.NewNotificationCleanupJob(notificationService, cfg.NotificationRetentionDays, cfg.NotificationCleanupEvery, logger)
	cleanupJob.Start()

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	cleanupJob.Stop()

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(disconnectCtx); err != nil {
		logger.Error("mongo disconnect failed", zap.Error(err))
	}
}
