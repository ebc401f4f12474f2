package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"encho_fleet/internal/config"
)

// Health reports whether the service and its database are reachable.
func Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if config.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not initialized"})
		return
	}
	if err := config.Store.Ping(ctx); err != nil {
		logrus.WithError(err).Warn("health check: database ping failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "weeklySchema": config.Store.Convention()})
}
