package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/corkboard-dev/corkboard/db"
	"github.com/corkboard-dev/corkboard/internal/access"
	"github.com/corkboard-dev/corkboard/internal/models"
	"github.com/corkboard-dev/corkboard/internal/realtime"
	"github.com/corkboard-dev/corkboard/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MoveCardRequest struct {
	NewPosition int `json:"new_position"`
}

// redirectBack returns to the page the form was posted from, falling back to
// the board view.
func redirectBack(ctx *gin.Context, fallback string) {
	target := ctx.Request.Referer()

	if target == "" {
		target = fallback
	}

	ctx.Redirect(http.StatusSeeOther, target)
}

func AddCard(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	listID, err := utils.GetListID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := access.ListForMember(listID, userID)

	if err != nil {
		respondListAccessErr(ctx, err, "List")
		return
	}

	title := strings.TrimSpace(ctx.PostForm("card_title"))
	description := ctx.PostForm("card_description")

	if title == "" {
		utils.SetFlash(ctx, "Card title is required.")
		redirectBack(ctx, boardPath(list.BoardID))
		return
	}

	card := models.Card{
		Title:       title,
		Description: description,
		ListID:      list.ID,
	}

	if err := db.DB.Create(&card).Error; err != nil {
		log.Printf("Failed to create card: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create card"})
		return
	}

	// The write is already committed; a broadcast-routing problem must not
	// fail the request, so fall back to the list id as the room key.
	boardKey := list.BoardID
	if boardKey == 0 {
		boardKey = list.ID
	}

	utils.SetFlash(ctx, "Card added successfully!")
	realtime.DefaultHub.Broadcast(realtime.BoardRoom(boardKey), "refresh_board", map[string]interface{}{
		"board_id": boardKey,
	})
	redirectBack(ctx, boardPath(list.BoardID))
}

func UpdateCard(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	cardID, err := utils.GetCardID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := access.CardForMember(cardID, userID)

	if err != nil {
		respondListAccessErr(ctx, err, "Card")
		return
	}

	var list models.List

	if err := db.DB.First(&list, card.ListID).Error; err != nil {
		log.Printf("Failed to retrieve list: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	title := strings.TrimSpace(ctx.PostForm("card_title"))

	if title == "" {
		utils.SetFlash(ctx, "Card title is required.")
		redirectBack(ctx, boardPath(list.BoardID))
		return
	}

	card.Title = title
	card.Description = ctx.PostForm("card_description")

	if err := db.DB.Save(card).Error; err != nil {
		log.Printf("Failed to update card: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update card"})
		return
	}

	utils.SetFlash(ctx, "Card updated successfully!")
	realtime.DefaultHub.Broadcast(realtime.BoardRoom(list.BoardID), "refresh_board", map[string]interface{}{
		"board_id": list.BoardID,
	})
	redirectBack(ctx, boardPath(list.BoardID))
}

func DeleteCard(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	cardID, err := utils.GetCardID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := access.CardForMember(cardID, userID)

	if err != nil {
		respondListAccessErr(ctx, err, "Card")
		return
	}

	var list models.List

	if err := db.DB.First(&list, card.ListID).Error; err != nil {
		log.Printf("Failed to retrieve list: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.Delete(&models.Card{}, card.ID).Error; err != nil {
		log.Printf("Failed to delete card: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete card"})
		return
	}

	utils.SetFlash(ctx, "Card deleted successfully!")
	realtime.DefaultHub.Broadcast(realtime.BoardRoom(list.BoardID), "refresh_board", map[string]interface{}{
		"board_id": list.BoardID,
	})
	redirectBack(ctx, boardPath(list.BoardID))
}

// MoveCard re-parents a card and overwrites its position verbatim. The caller
// owns the position value: no renumbering of siblings, last write wins.
// Authorization is checked against the destination board.
func MoveCard(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	cardID, err := utils.GetCardID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newListID, err := utils.GetNewListID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body MoveCardRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var card models.Card

	if err := db.DB.First(&card, cardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
			return
		}
		log.Printf("Failed to retrieve card: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var newList models.List

	if err := db.DB.First(&newList, newListID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
			return
		}
		log.Printf("Failed to retrieve list: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if _, err := access.BoardForMember(newList.BoardID, userID); err != nil {
		if errors.Is(err, access.ErrForbidden) || errors.Is(err, access.ErrNotFound) {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
			return
		}
		log.Printf("Failed to authorize move: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	card.ListID = newList.ID
	card.Position = body.NewPosition

	if err := db.DB.Save(&card).Error; err != nil {
		log.Printf("Failed to move card: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move card"})
		return
	}

	realtime.DefaultHub.Broadcast(realtime.BoardRoom(newList.BoardID), "card_moved", map[string]interface{}{
		"card_id":     card.ID,
		"new_list_id": newList.ID,
		"board_id":    newList.BoardID,
	})

	ctx.JSON(http.StatusOK, gin.H{"message": "Card moved successfully"})
}
