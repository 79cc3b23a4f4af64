package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaegodata/unsold-server/internal/api"
	"github.com/jaegodata/unsold-server/internal/config"
	"github.com/jaegodata/unsold-server/internal/logging"
	"github.com/jaegodata/unsold-server/internal/pricing"
	"github.com/jaegodata/unsold-server/internal/repository"
	"github.com/jaegodata/unsold-server/internal/service"
	"github.com/jaegodata/unsold-server/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Log)

	// Set up database connection
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to set up database: %v", err)
	}
	defer db.Close()

	// Create repository
	repo := repository.NewPostgresRepository(db)

	// Promote the configured admin accounts
	if err := repo.SetAdminRoles(context.Background(), cfg.Auth.AdminUsers); err != nil {
		log.Fatalf("Failed to assign admin roles: %v", err)
	}

	// Create price lookup client, session manager and service
	prices := pricing.NewClient(cfg.Pricing.BaseURL, nil, logger)
	sessions := session.NewManager()
	svc := service.NewDefaultService(repo, prices, sessions, cfg.Auth.JWTSecret, logger)

	// Create API handler
	handler := api.NewHandler(svc, sessions)

	// Set up Gin router
	router := gin.Default()
	router.MaxMultipartMemory = 16 << 20

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(cfg.Auth.JWTSecret))
		c.Next()
	})

	// Set up routes
	handler.SetupRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("starting server", "addr", serverAddr)
	if err := http.ListenAndServe(serverAddr, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
