package note

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studybuddy/controller"
	"studybuddy/dto"
	"studybuddy/middleware"
	"studybuddy/services"
)

func NoteController(router *gin.Engine, gate gin.HandlerFunc, svc *services.NoteService) {
	routes := router.Group("/notes", gate)
	{
		routes.GET("", func(c *gin.Context) {
			ListNotes(c, svc)
		})
		routes.POST("", func(c *gin.Context) {
			CreateNote(c, svc)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetNote(c, svc)
		})
		routes.PUT("/:id", func(c *gin.Context) {
			UpdateNote(c, svc)
		})
		routes.PUT("/:id/autosave", func(c *gin.Context) {
			AutosaveNote(c, svc)
		})
		routes.DELETE("/:id", func(c *gin.Context) {
			DeleteNote(c, svc)
		})
	}
}

func noteInput(req dto.NoteRequest) services.NoteInput {
	return services.NoteInput{Title: req.Title, Content: req.Content, Color: req.Color, Folder: req.Folder}
}

func ListNotes(c *gin.Context, svc *services.NoteService) {
	notes, err := svc.List(c.Request.Context(), middleware.UserID(c), c.Query("q"), c.Query("folder"))
	if err != nil {
		controller.Error(c, err, "Failed to load notes")
		return
	}
	c.JSON(http.StatusOK, notes)
}

func CreateNote(c *gin.Context, svc *services.NoteService) {
	var req dto.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.InvalidInput(c, err)
		return
	}
	note, err := svc.Create(c.Request.Context(), middleware.UserID(c), noteInput(req))
	if err != nil {
		controller.Error(c, err, "Failed to save note")
		return
	}
	c.JSON(http.StatusCreated, note)
}

func GetNote(c *gin.Context, svc *services.NoteService) {
	note, err := svc.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		controller.Error(c, err, "Failed to load note")
		return
	}
	c.JSON(http.StatusOK, note)
}

func UpdateNote(c *gin.Context, svc *services.NoteService) {
	var req dto.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.InvalidInput(c, err)
		return
	}
	note, err := svc.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), noteInput(req))
	if err != nil {
		controller.Error(c, err, "Failed to save note")
		return
	}
	c.JSON(http.StatusOK, note)
}

func AutosaveNote(c *gin.Context, svc *services.NoteService) {
	var req dto.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.InvalidInput(c, err)
		return
	}
	if err := svc.Autosave(c.Request.Context(), middleware.UserID(c), c.Param("id"), noteInput(req)); err != nil {
		controller.Error(c, err, "Failed to save note")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Saving..."})
}

func DeleteNote(c *gin.Context, svc *services.NoteService) {
	if err := svc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		controller.Error(c, err, "Failed to delete note")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Note deleted successfully"})
}
