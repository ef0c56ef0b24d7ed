package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ammiranda/notetree/config"
	"github.com/ammiranda/notetree/handlers"
	"github.com/ammiranda/notetree/internal/app"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// Create context
	ctx := context.Background()

	// Initialize config provider: optional file from NOTETREE_CONFIG, then environment
	cfgProvider, err := config.NewViperProvider(os.Getenv("NOTETREE_CONFIG"))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	serverCfg, err := config.GetServerConfig(ctx, cfgProvider)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read server configuration")
	}
	logger := app.NewLogger(serverCfg.LogLevel)

	// Initialize repository, cache and service
	a, err := app.New(ctx, cfgProvider, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize")
	}
	defer a.Close(ctx)

	// Initialize handlers
	notesHandler := handlers.NewNotesHandler(a.Service, logrus.NewEntry(logger))

	// Initialize router
	if cfgProvider.GetEnvironment() == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	// API routes
	notesHandler.Register(r.Group("/api"))

	// Start server
	addr := fmt.Sprintf(":%d", serverCfg.Port)
	logger.WithField("addr", addr).Info("Starting server")
	if err := r.Run(addr); err != nil {
		logger.WithError(err).Fatal("Failed to start server")
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}).Debug("Request handled")
	}
}
