package routes

import (
	"encho_fleet/internal/controllers"

	"github.com/gin-gonic/gin"
)

func DriverRoutes(r *gin.Engine) {
	drivers := r.Group("/drivers")
	{
		drivers.GET("", controllers.ListDrivers)
		drivers.POST("", controllers.CreateDriver)
		drivers.GET("/:id", controllers.GetDriver)
		drivers.PATCH("/:id", controllers.UpdateDriver)
		drivers.DELETE("/:id", controllers.DeleteDriver)
	}
}
