package task

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studybuddy/controller"
	"studybuddy/dto"
	"studybuddy/middleware"
	"studybuddy/model"
	"studybuddy/services"
)

func TaskController(router *gin.Engine, gate gin.HandlerFunc, svc *services.PlannerService) {
	routes := router.Group("/tasks", gate)
	{
		routes.GET("", func(c *gin.Context) {
			ListTasks(c, svc)
		})
		routes.GET("/today", func(c *gin.Context) {
			TodayTasks(c, svc)
		})
		routes.GET("/calendar", func(c *gin.Context) {
			Calendar(c, svc)
		})
		routes.POST("", func(c *gin.Context) {
			CreateTask(c, svc)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetTask(c, svc)
		})
		routes.PUT("/:id", func(c *gin.Context) {
			UpdateTask(c, svc)
		})
		routes.PATCH("/:id/complete", func(c *gin.Context) {
			ToggleComplete(c, svc)
		})
		routes.DELETE("/:id", func(c *gin.Context) {
			DeleteTask(c, svc)
		})
	}
}

func taskInput(req dto.TaskRequest) services.TaskInput {
	return services.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Priority:    model.Priority(req.Priority),
		Subject:     req.Subject,
	}
}

func ListTasks(c *gin.Context, svc *services.PlannerService) {
	tasks, err := svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		controller.Error(c, err, "Failed to load tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func TodayTasks(c *gin.Context, svc *services.PlannerService) {
	tasks, err := svc.Today(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		controller.Error(c, err, "Failed to load tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func Calendar(c *gin.Context, svc *services.PlannerService) {
	events, err := svc.Calendar(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		controller.Error(c, err, "Failed to load calendar")
		return
	}
	c.JSON(http.StatusOK, events)
}

func CreateTask(c *gin.Context, svc *services.PlannerService) {
	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.InvalidInput(c, err)
		return
	}
	task, err := svc.Create(c.Request.Context(), middleware.UserID(c), taskInput(req))
	if err != nil {
		controller.Error(c, err, "Failed to create task")
		return
	}
	c.JSON(http.StatusCreated, task)
}

func GetTask(c *gin.Context, svc *services.PlannerService) {
	task, err := svc.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		controller.Error(c, err, "Failed to load task")
		return
	}
	c.JSON(http.StatusOK, task)
}

func UpdateTask(c *gin.Context, svc *services.PlannerService) {
	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.InvalidInput(c, err)
		return
	}
	task, err := svc.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), taskInput(req))
	if err != nil {
		controller.Error(c, err, "Failed to update task")
		return
	}
	c.JSON(http.StatusOK, task)
}

func ToggleComplete(c *gin.Context, svc *services.PlannerService) {
	task, err := svc.ToggleComplete(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		controller.Error(c, err, "Failed to update task")
		return
	}
	c.JSON(http.StatusOK, task)
}

func DeleteTask(c *gin.Context, svc *services.PlannerService) {
	if err := svc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		controller.Error(c, err, "Failed to delete task")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
