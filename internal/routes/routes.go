package routes

import (
	"io"

	"github.com/gin-gonic/gin"

	"encho_fleet/internal/middleware"
)

// SetupRouter builds the engine with every route group. Access logs go to
// accessLog.
func SetupRouter(accessLog io.Writer) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(accessLog), gin.Recovery(), middleware.NoStore())

	DriverRoutes(r)
	WeeklyRoutes(r)
	PerformanceRoutes(r)

	return r
}
