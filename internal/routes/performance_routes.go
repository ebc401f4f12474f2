package routes

import (
	"encho_fleet/internal/controllers"

	"github.com/gin-gonic/gin"
)

func PerformanceRoutes(r *gin.Engine) {
	r.GET("/performance", controllers.GetPerformance)
	r.GET("/healthz", controllers.Health)
}
