package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"encho_fleet/internal/config"
	"encho_fleet/internal/logger"
	"encho_fleet/internal/middleware"
	"encho_fleet/internal/routes"
	"encho_fleet/internal/validation"
)

func main() {
	settings := config.Load()
	if err := settings.Validate(); err != nil {
		logrus.Fatal(err)
	}

	// Initialize structured logging to file
	logger.Setup(logger.Options{
		File:         settings.LogFile,
		Level:        settings.LogLevel,
		LogstashAddr: settings.LogstashAddr,
	})

	validation.Setup()
	if settings.GinMode != "" {
		gin.SetMode(settings.GinMode)
	}

	// Connect to the database
	if err := config.InitDB(settings); err != nil {
		logrus.WithError(err).Fatal("database initialization failed")
	}

	// Setup Gin router
	r := routes.SetupRouter(logger.Output())

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	addr := "0.0.0.0:" + settings.Port
	logrus.WithField("addr", addr).Info("server running")
	logrus.Fatal(http.ListenAndServe(addr, handler))
}
