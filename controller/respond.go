// Package controller holds what the route packages share.
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studybuddy/pomodoro"
	"studybuddy/repository"
	"studybuddy/review"
	"studybuddy/services"
)

// Error answers with the status matching err. Unexpected errors are attached
// to the context for the request logger and answered with fallback.
func Error(c *gin.Context, err error, fallback string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Msg})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, pomodoro.ErrInvalidSettings):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, review.ErrNotFlipped):
		c.JSON(http.StatusConflict, gin.H{"error": "Please flip the card before marking it"})
	case errors.Is(err, review.ErrInvalidMark):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, review.ErrFinished):
		c.JSON(http.StatusConflict, gin.H{"error": "Review completed"})
	case errors.Is(err, review.ErrNoSession):
		c.JSON(http.StatusNotFound, gin.H{"error": "No review in progress"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// InvalidInput answers a request body that failed to bind.
func InvalidInput(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
}
