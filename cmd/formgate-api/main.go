package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/formgate/formgate-api/internal/config"
	"github.com/formgate/formgate-api/internal/database"
	"github.com/formgate/formgate-api/internal/handlers"
	authmw "github.com/formgate/formgate-api/internal/middleware"
	"github.com/formgate/formgate-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry)
	apiKeyService := services.NewAPIKeyService(db, cfg.APIKeySecret)
	routeService := services.NewRouteService(db)
	messageService := services.NewMessageService(db)
	usageService := services.NewUsageService(db)
	emailService := services.NewEmailService(cfg.SMTP)
	attachmentStore := services.NewAttachmentStore(cfg.AttachmentDir)
	deliveryService := services.NewDeliveryService(routeService, messageService, usageService, apiKeyService, attachmentStore, emailService)

	openAPIService, err := services.NewOpenAPIService()
	if err != nil {
		log.Fatalf("Failed to load openapi spec: %v", err)
	}

	apiKeyHandler := handlers.NewAPIKeyHandler(apiKeyService, routeService)
	routeHandler := handlers.NewRouteHandler(routeService)
	messageHandler := handlers.NewMessageHandler(messageService)
	usageHandler := handlers.NewUsageHandler(usageService)
	sendHandler := handlers.NewSendHandler(deliveryService)
	systemHandler := handlers.NewSystemHandler(openAPIService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Api-Key"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	// public intake endpoint, gated by API key and per-key quota
	send := api.Group("")
	send.Use(authmw.SendRateLimit(cfg.SendRatePerMinute))
	send.Use(authmw.APIKeyAuth(apiKeyService))
	send.Post("/send", sendHandler.Send)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Get("/apikeys", apiKeyHandler.List)
	protected.Post("/apikeys", apiKeyHandler.Create)
	protected.Get("/apikeys/:keyId", apiKeyHandler.Get)
	protected.Post("/apikeys/:keyId/revoke", apiKeyHandler.Revoke)

	protected.Get("/routes", routeHandler.List)
	protected.Post("/routes", routeHandler.Create)
	protected.Get("/routes/:routeId", routeHandler.Get)
	protected.Patch("/routes/:routeId", routeHandler.Update)
	protected.Delete("/routes/:routeId", routeHandler.Delete)

	protected.Get("/messages", messageHandler.List)
	protected.Get("/messages/:messageId", messageHandler.Get)

	protected.Get("/usage", usageHandler.Get)

	api.Get("/health", systemHandler.Health)
	api.Get("/openapi.json", systemHandler.OpenAPIJSON)
	api.Get("/openapi.yaml", systemHandler.OpenAPIYAML)

	app.Get("/metrics", systemHandler.Metrics)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
