package flashcard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studybuddy/controller"
	"studybuddy/dto"
	"studybuddy/middleware"
	"studybuddy/model"
	"studybuddy/services"
)

func FlashcardController(router *gin.Engine, gate gin.HandlerFunc, svc *services.FlashcardService) {
	decks := router.Group("/decks", gate)
	{
		decks.GET("", func(c *gin.Context) {
			ListDecks(c, svc)
		})
		decks.POST("", func(c *gin.Context) {
			CreateDeck(c, svc)
		})
		decks.GET("/:id", func(c *gin.Context) {
			GetDeck(c, svc)
		})
		decks.PUT("/:id", func(c *gin.Context) {
			RenameDeck(c, svc)
		})
		decks.DELETE("/:id", func(c *gin.Context) {
			DeleteDeck(c, svc)
		})

		decks.GET("/:id/cards", func(c *gin.Context) {
			ListCards(c, svc)
		})
		decks.GET("/:id/cards/due", func(c *gin.Context) {
			DueCards(c, svc)
		})
		decks.POST("/:id/cards", func(c *gin.Context) {
			CreateCard(c, svc)
		})
		decks.PUT("/:id/cards/:cardId", func(c *gin.Context) {
			UpdateCard(c, svc)
		})
		decks.DELETE("/:id/cards/:cardId", func(c *gin.Context) {
			DeleteCard(c, svc)
		})

		decks.POST("/:id/reviews", func(c *gin.Context) {
			StartReview(c, svc)
		})
	}

	reviews := router.Group("/reviews", gate)
	{
		reviews.GET("/current", func(c *gin.Context) {
			view, err := svc.CurrentReview(middleware.UserID(c))
			reviewResponse(c, view, err)
		})
		reviews.POST("/current/flip", func(c *gin.Context) {
			view, err := svc.FlipReview(middleware.UserID(c))
			reviewResponse(c, view, err)
		})
		reviews.POST("/current/mark", func(c *gin.Context) {
			MarkCard(c, svc)
		})
		reviews.DELETE("/current", func(c *gin.Context) {
			svc.EndReview(middleware.UserID(c))
			c.Status(http.StatusNoContent)
		})
	}
}

func ListDecks(c *gin.Context, svc *services.FlashcardService) {
	decks, err := svc.ListDecks(c.Request.Context(), middleware.UserID(c), c.Query("q"))
	if err != nil {
		controller.Error(c, err, "Failed to load decks")
		return
	}
	c.JSON(http.StatusOK, decks)
}

func CreateDeck(c *gin.Context, svc *services.FlashcardService) {
	var req dto.DeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.InvalidInput(c, err)
		return
	}
	deck, err := svc.CreateDeck(c.Request.Context(), middleware.UserID(c), req.Name)
	if err != nil {
		controller.Error(c, err, "Failed to create deck")
		return
	}
	c.JSON(http.StatusCreated, deck)
}

func GetDeck(c *gin.Context, svc *services.FlashcardService) {
	deck, err := svc.GetDeck(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		controller.Error(c, err, "Failed to load deck")
		return
	}
	c.JSON(http.StatusOK, deck)
}

func RenameDeck(c *gin.Context, svc *services.FlashcardService) {
	var req dto.DeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.InvalidInput(c, err)
		return
	}
	deck, err := svc.RenameDeck(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Name)
	if err != nil {
		controller.Error(c, err, "Failed to update deck")
		return
	}
	c.JSON(http.StatusOK, deck)
}

func DeleteDeck(c *gin.Context, svc *services.FlashcardService) {
	if err := svc.DeleteDeck(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		controller.Error(c, err, "Failed to delete deck")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deck deleted successfully"})
}

func ListCards(c *gin.Context, svc *services.FlashcardService) {
	cards, err := svc.ListCards(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		controller.Error(c, err, "Failed to load cards")
		return
	}
	c.JSON(http.StatusOK, cards)
}

func DueCards(c *gin.Context, svc *services.FlashcardService) {
	cards, err := svc.DueCards(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		controller.Error(c, err, "Failed to load cards")
		return
	}
	c.JSON(http.StatusOK, cards)
}

func cardInput(req dto.CardRequest) services.CardInput {
	return services.CardInput{Front: req.Front, Back: req.Back, TagText: req.Tags.Text, Tags: req.Tags.List}
}

func CreateCard(c *gin.Context, svc *services.FlashcardService) {
	var req dto.CardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.InvalidInput(c, err)
		return
	}
	card, err := svc.CreateCard(c.Request.Context(), middleware.UserID(c), c.Param("id"), cardInput(req))
	if err != nil {
		controller.Error(c, err, "Failed to create card")
		return
	}
	c.JSON(http.StatusCreated, card)
}

func UpdateCard(c *gin.Context, svc *services.FlashcardService) {
	var req dto.CardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.InvalidInput(c, err)
		return
	}
	card, err := svc.UpdateCard(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("cardId"), cardInput(req))
	if err != nil {
		controller.Error(c, err, "Failed to update card")
		return
	}
	c.JSON(http.StatusOK, card)
}

func DeleteCard(c *gin.Context, svc *services.FlashcardService) {
	if err := svc.DeleteCard(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("cardId")); err != nil {
		controller.Error(c, err, "Failed to delete card")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Card deleted successfully"})
}

func StartReview(c *gin.Context, svc *services.FlashcardService) {
	view, err := svc.StartReview(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		controller.Error(c, err, "Failed to start review")
		return
	}
	c.JSON(http.StatusCreated, view)
}

func MarkCard(c *gin.Context, svc *services.FlashcardService) {
	var req dto.MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.InvalidInput(c, err)
		return
	}
	view, err := svc.MarkReview(c.Request.Context(), middleware.UserID(c), model.Difficulty(req.Difficulty))
	reviewResponse(c, view, err)
}

func reviewResponse(c *gin.Context, view services.ReviewView, err error) {
	if err != nil {
		controller.Error(c, err, "Review failed")
		return
	}
	c.JSON(http.StatusOK, view)
}
