package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/seguro/backend/internal/config"
	"github.com/seguro/backend/internal/database"
	"github.com/seguro/backend/internal/handlers"
	"github.com/seguro/backend/internal/middleware"
	"github.com/seguro/backend/internal/services"
	"github.com/seguro/backend/internal/storage"
	"github.com/seguro/backend/pkg/logger"
	"github.com/seguro/backend/pkg/utils"
)

func main() {
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	storageClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("minio initialization failed: %v", err)
	}
	if err := storageClient.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("failed ensuring minio bucket: %v", err)
	}

	auditService := services.NewAuditService(db, storageClient)
	auditService.StartExporter(cfg.Audit.ExportInterval)

	restrictedService := services.NewRestrictedService(db)
	accessService := services.NewAccessService(db)
	documentService := services.NewDocumentService(db, auditService)
	grantService := services.NewGrantService(db, auditService)
	linkService := services.NewLinkService(db, auditService)
	watermarkClient := services.NewWatermarkClient(cfg.Watermark)
	versionService := services.NewVersionService(db, storageClient, watermarkClient, auditService)

	authHandler := handlers.NewAuthHandler(db)
	documentsHandler := handlers.NewDocumentsHandler(db, documentService, accessService, restrictedService, grantService)
	grantsHandler := handlers.NewGrantsHandler(db, documentService, grantService, accessService)
	linksHandler := handlers.NewLinksHandler(db, documentService, linkService, accessService)
	versionsHandler := handlers.NewVersionsHandler(db, documentService, versionService, accessService)
	publicHandler := handlers.NewPublicHandler(documentService, versionService)
	auditHandler := handlers.NewAuditHandler(auditService)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 100 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	gateLimiter := limiter.New(limiter.Config{
		Max:        cfg.Gate.AttemptsPerMinute,
		Expiration: 1 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return utils.Error(c, fiber.StatusTooManyRequests, "too many password attempts, try again later")
		},
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)
	authRoutes.Put("/password", authMiddleware.RequireAuth, authHandler.ChangePassword)

	publicRoutes := api.Group("/public/documents")
	publicRoutes.Get("/:token", publicHandler.Get)
	publicRoutes.Get("/:token/download", publicHandler.Download)

	docRoutes := api.Group("/documents", authMiddleware.RequireAuth)
	docRoutes.Post("/", documentsHandler.Create)
	docRoutes.Get("/", documentsHandler.List)
	docRoutes.Get("/shared", documentsHandler.SharedWithMe)
	docRoutes.Post("/:id/verify-password", gateLimiter, documentsHandler.VerifyPassword)
	docRoutes.Post("/:id/versions", versionsHandler.Upload)
	docRoutes.Get("/:id/versions", versionsHandler.List)
	docRoutes.Get("/:id/download", versionsHandler.Download)
	docRoutes.Get("/:id/download-url", versionsHandler.DownloadURL)
	docRoutes.Post("/:id/grants", grantsHandler.Upsert)
	docRoutes.Get("/:id/grants", grantsHandler.List)
	docRoutes.Put("/:id/grants/:granteeID", grantsHandler.Upsert)
	docRoutes.Delete("/:id/grants/:granteeID", grantsHandler.Revoke)
	docRoutes.Delete("/:id/grants", grantsHandler.RevokeAll)
	docRoutes.Post("/:id/links", linksHandler.Create)
	docRoutes.Get("/:id/links", linksHandler.ListForDocument)
	docRoutes.Get("/:id", documentsHandler.Get)
	docRoutes.Put("/:id", documentsHandler.Update)
	docRoutes.Delete("/:id", documentsHandler.Delete)

	linkRoutes := api.Group("/links", authMiddleware.RequireAuth)
	linkRoutes.Post("/activate", linksHandler.Activate)
	linkRoutes.Post("/:id/recipients", linksHandler.AddRecipient)
	linkRoutes.Get("/:id/recipients", linksHandler.ListRecipients)
	linkRoutes.Delete("/:id/recipients/:recipientID", linksHandler.RevokeRecipient)
	linkRoutes.Delete("/:id", linksHandler.Revoke)

	api.Get("/audit-log", authMiddleware.RequireAuth, auditHandler.ListMine)

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
