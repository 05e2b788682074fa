package timer

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"studybuddy/controller"
	"studybuddy/dto"
	"studybuddy/middleware"
	"studybuddy/pomodoro"
	"studybuddy/services"
)

type timerOp func(ctx context.Context, uid string) (pomodoro.State, error)

func TimerController(router *gin.Engine, gate gin.HandlerFunc, svc *services.TimerService) {
	routes := router.Group("/timer", gate)
	{
		routes.GET("", func(c *gin.Context) {
			run(c, svc.State)
		})
		routes.POST("/start", func(c *gin.Context) {
			run(c, svc.Start)
		})
		routes.POST("/pause", func(c *gin.Context) {
			run(c, svc.Pause)
		})
		routes.POST("/reset", func(c *gin.Context) {
			run(c, svc.Reset)
		})
		routes.PUT("/settings", func(c *gin.Context) {
			UpdateSettings(c, svc)
		})
	}
}

func run(c *gin.Context, op timerOp) {
	st, err := op(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		controller.Error(c, err, "Timer update failed")
		return
	}
	c.JSON(http.StatusOK, dto.NewTimerResponse(st))
}

func UpdateSettings(c *gin.Context, svc *services.TimerService) {
	var req dto.TimerSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.InvalidInput(c, err)
		return
	}
	st, err := svc.UpdateSettings(c.Request.Context(), middleware.UserID(c), pomodoro.Settings{
		FocusMinutes:      req.FocusDuration,
		ShortBreakMinutes: req.ShortBreak,
		LongBreakMinutes:  req.LongBreak,
		SessionsUntilLong: req.SessionsUntilLong,
	})
	if err != nil {
		controller.Error(c, err, "Failed to update timer settings")
		return
	}
	c.JSON(http.StatusOK, dto.NewTimerResponse(st))
}
