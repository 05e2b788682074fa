package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studybuddy/controller"
	"studybuddy/dto"
	"studybuddy/middleware"
	"studybuddy/model"
	"studybuddy/services"
)

func UserController(router *gin.Engine, gate gin.HandlerFunc, svc *services.ProfileService) {
	routes := router.Group("/user", gate)
	{
		routes.GET("/profile", func(c *gin.Context) {
			GetProfile(c, svc)
		})
		routes.PUT("/profile", func(c *gin.Context) {
			UpdateProfileUser(c, svc)
		})
		routes.PUT("/theme", func(c *gin.Context) {
			UpdateTheme(c, svc)
		})
		routes.PUT("/notifications", func(c *gin.Context) {
			UpdateNotifications(c, svc)
		})
		routes.DELETE("/account", func(c *gin.Context) {
			DeleteUser(c, svc)
		})
	}
}

func GetProfile(c *gin.Context, svc *services.ProfileService) {
	user, err := svc.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		controller.Error(c, err, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

func UpdateProfileUser(c *gin.Context, svc *services.ProfileService) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.InvalidInput(c, err)
		return
	}
	user, err := svc.Update(c.Request.Context(), middleware.UserID(c), services.ProfileInput{
		DisplayName: req.DisplayName,
		StudyGoal:   req.StudyGoal,
	})
	if err != nil {
		controller.Error(c, err, "Failed to update user profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
}

func UpdateTheme(c *gin.Context, svc *services.ProfileService) {
	var req dto.ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.InvalidInput(c, err)
		return
	}
	if err := svc.SetTheme(c.Request.Context(), middleware.UserID(c), model.Theme(req.Theme)); err != nil {
		controller.Error(c, err, "Failed to update theme")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Theme updated successfully", "theme": req.Theme})
}

func UpdateNotifications(c *gin.Context, svc *services.ProfileService) {
	var req dto.NotificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.InvalidInput(c, err)
		return
	}
	if err := svc.SetNotifications(c.Request.Context(), middleware.UserID(c), *req.Email, *req.Reminders); err != nil {
		controller.Error(c, err, "Failed to update notification settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification settings updated successfully"})
}

func DeleteUser(c *gin.Context, svc *services.ProfileService) {
	if err := svc.DeleteAccount(c.Request.Context(), middleware.UserID(c)); err != nil {
		controller.Error(c, err, "Failed to delete account")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}
