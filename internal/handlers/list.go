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

func respondListAccessErr(ctx *gin.Context, err error, entity string) {
	if errors.Is(err, access.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
		return
	}
	if errors.Is(err, access.ErrForbidden) {
		utils.SetFlash(ctx, "Access denied.")
		ctx.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	log.Printf("Failed to retrieve %s: %v", entity, err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// AddList creates a list on a board the actor owns or collaborates on. List
// creation used to skip this membership check entirely.
func AddList(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	boardID, err := utils.GetBoardID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	board, err := access.BoardForMember(boardID, userID)

	if err != nil {
		respondListAccessErr(ctx, err, "Board")
		return
	}

	name := strings.TrimSpace(ctx.PostForm("list_name"))

	if name == "" {
		utils.SetFlash(ctx, "List name is required.")
		ctx.Redirect(http.StatusSeeOther, boardPath(board.ID))
		return
	}

	list := models.List{
		Name:    name,
		BoardID: board.ID,
	}

	if err := db.DB.Create(&list).Error; err != nil {
		log.Printf("Failed to create list: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create list"})
		return
	}

	utils.SetFlash(ctx, "List added successfully!")
	realtime.DefaultHub.Broadcast(realtime.BoardRoom(board.ID), "refresh_board", map[string]interface{}{
		"board_id": board.ID,
	})
	ctx.Redirect(http.StatusSeeOther, boardPath(board.ID))
}

func UpdateList(ctx *gin.Context) {
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

	name := strings.TrimSpace(ctx.PostForm("list_name"))

	if name == "" {
		utils.SetFlash(ctx, "List name is required.")
		ctx.Redirect(http.StatusSeeOther, boardPath(list.BoardID))
		return
	}

	list.Name = name

	if err := db.DB.Save(list).Error; err != nil {
		log.Printf("Failed to update list: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update list"})
		return
	}

	utils.SetFlash(ctx, "List updated successfully!")
	realtime.DefaultHub.Broadcast(realtime.BoardRoom(list.BoardID), "refresh_board", map[string]interface{}{
		"board_id": list.BoardID,
	})
	ctx.Redirect(http.StatusSeeOther, boardPath(list.BoardID))
}

func DeleteList(ctx *gin.Context) {
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

	boardID := list.BoardID

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", list.ID).Delete(&models.Card{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.List{}, list.ID).Error
	})

	if err != nil {
		log.Printf("Failed to delete list: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete list"})
		return
	}

	utils.SetFlash(ctx, "List deleted successfully!")
	realtime.DefaultHub.Broadcast(realtime.BoardRoom(boardID), "refresh_board", map[string]interface{}{
		"board_id": boardID,
	})
	ctx.Redirect(http.StatusSeeOther, boardPath(boardID))
}
