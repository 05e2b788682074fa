package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studybuddy/controller"
	"studybuddy/middleware"
	"studybuddy/services"
)

func DashboardController(router *gin.Engine, gate gin.HandlerFunc, svc *services.DashboardService) {
	router.GET("/dashboard", gate, func(c *gin.Context) {
		view, err := svc.Load(c.Request.Context(), middleware.Identity(c))
		if err != nil {
			controller.Error(c, err, "Failed to load dashboard")
			return
		}
		c.JSON(http.StatusOK, view)
	})
}
