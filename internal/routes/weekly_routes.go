package routes

import (
	"encho_fleet/internal/controllers"

	"github.com/gin-gonic/gin"
)

func WeeklyRoutes(r *gin.Engine) {
	weekly := r.Group("/weekly")
	{
		weekly.GET("", controllers.ListWeekly)
		weekly.POST("", controllers.CreateWeekly)
		weekly.GET("/export", controllers.ExportWeekly)
		weekly.GET("/:id", controllers.GetWeekly)
		weekly.PATCH("/:id", controllers.UpdateWeekly) // also used to overwrite after a 409
		weekly.DELETE("/:id", controllers.DeleteWeekly)
	}
}
