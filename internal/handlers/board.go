package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/corkboard-dev/corkboard/db"
	"github.com/corkboard-dev/corkboard/internal/access"
	"github.com/corkboard-dev/corkboard/internal/models"
	"github.com/corkboard-dev/corkboard/internal/realtime"
	"github.com/corkboard-dev/corkboard/internal/types"
	"github.com/corkboard-dev/corkboard/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func boardPath(boardID uint) string {
	return fmt.Sprintf("/board/%d", boardID)
}

// Dashboard returns the boards the user owns plus the boards shared with them.
func Dashboard(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var owned []models.Board

	if err := db.DB.Where("owner_id = ?", userID).Find(&owned).Error; err != nil {
		log.Printf("Failed to retrieve boards: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve boards"})
		return
	}

	var shared []models.Board

	err = db.DB.
		Joins("JOIN board_collaborators ON board_collaborators.board_id = boards.id").
		Where("board_collaborators.user_id = ? AND board_collaborators.deleted_at IS NULL", userID).
		Find(&shared).Error

	if err != nil {
		log.Printf("Failed to retrieve shared boards: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve boards"})
		return
	}

	boards := make([]types.BoardSummary, 0, len(owned)+len(shared))

	for _, board := range owned {
		boards = append(boards, types.BoardSummary{
			ID:        board.ID,
			Name:      board.Name,
			OwnerID:   board.OwnerID,
			CreatedAt: board.CreatedAt,
		})
	}

	for _, board := range shared {
		boards = append(boards, types.BoardSummary{
			ID:        board.ID,
			Name:      board.Name,
			OwnerID:   board.OwnerID,
			CreatedAt: board.CreatedAt,
			Shared:    true,
		})
	}

	ctx.JSON(http.StatusOK, types.DashboardResponse{
		Boards:     boards,
		Motivation: utils.Motivation(),
		Notice:     utils.TakeFlash(ctx),
	})
}

func CreateBoard(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	name := strings.TrimSpace(ctx.PostForm("board_name"))

	if name == "" {
		utils.SetFlash(ctx, "Board name is required.")
		ctx.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	board := models.Board{
		Name:    name,
		OwnerID: userID,
	}

	if err := db.DB.Create(&board).Error; err != nil {
		log.Printf("Failed to create board: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create board"})
		return
	}

	utils.SetFlash(ctx, "Board created successfully!")
	realtime.DefaultHub.Broadcast(realtime.DashboardRoom, "refresh_dashboard", nil)
	ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func UpdateBoard(ctx *gin.Context) {
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

	board, err := access.BoardForOwner(boardID, userID)

	if err != nil {
		respondBoardOwnerErr(ctx, err)
		return
	}

	name := strings.TrimSpace(ctx.PostForm("board_name"))

	if name == "" {
		utils.SetFlash(ctx, "Board name is required.")
		ctx.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	board.Name = name

	if err := db.DB.Save(board).Error; err != nil {
		log.Printf("Failed to update board: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update board"})
		return
	}

	utils.SetFlash(ctx, "Board renamed successfully!")
	realtime.DefaultHub.Broadcast(realtime.DashboardRoom, "refresh_dashboard", nil)
	ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func DeleteBoard(ctx *gin.Context) {
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

	if _, err := access.BoardForOwner(boardID, userID); err != nil {
		respondBoardOwnerErr(ctx, err)
		return
	}

	// Cascade by hand: soft deletes never fire the database's ON DELETE
	// constraints, so lists, their cards, and collaborator rows go in the
	// same transaction.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var listIDs []uint

		if err := tx.Model(&models.List{}).Where("board_id = ?", boardID).Pluck("id", &listIDs).Error; err != nil {
			return err
		}

		if len(listIDs) > 0 {
			if err := tx.Where("list_id IN ?", listIDs).Delete(&models.Card{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("board_id = ?", boardID).Delete(&models.List{}).Error; err != nil {
			return err
		}

		if err := tx.Where("board_id = ?", boardID).Delete(&models.BoardCollaborator{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Board{}, boardID).Error
	})

	if err != nil {
		log.Printf("Failed to delete board: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete board"})
		return
	}

	utils.SetFlash(ctx, "Board deleted successfully!")
	realtime.DefaultHub.Broadcast(realtime.DashboardRoom, "refresh_dashboard", nil)
	ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

// ViewBoard returns the board with its lists and position-ordered cards.
func ViewBoard(ctx *gin.Context) {
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
		if errors.Is(err, access.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
			return
		}
		if errors.Is(err, access.ErrForbidden) {
			utils.SetFlash(ctx, "Access denied.")
			ctx.Redirect(http.StatusSeeOther, "/dashboard")
			return
		}
		log.Printf("Failed to retrieve board: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}

	var lists []models.List

	err = db.DB.
		Preload("Cards", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC, id ASC")
		}).
		Where("board_id = ?", board.ID).
		Find(&lists).Error

	if err != nil {
		log.Printf("Failed to retrieve lists: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}

	var collaborators []models.User

	err = db.DB.
		Joins("JOIN board_collaborators ON board_collaborators.user_id = users.id").
		Where("board_collaborators.board_id = ? AND board_collaborators.deleted_at IS NULL", board.ID).
		Find(&collaborators).Error

	if err != nil {
		log.Printf("Failed to retrieve collaborators: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}

	response := types.BoardResponse{
		ID:        board.ID,
		Name:      board.Name,
		OwnerID:   board.OwnerID,
		CreatedAt: board.CreatedAt,
		Lists:     make([]types.ListResponse, 0, len(lists)),
	}

	for _, list := range lists {
		cards := make([]types.CardResponse, 0, len(list.Cards))

		for _, card := range list.Cards {
			cards = append(cards, types.CardResponse{
				ID:          card.ID,
				Title:       card.Title,
				Description: card.Description,
				Position:    card.Position,
				ListID:      card.ListID,
				CreatedAt:   card.CreatedAt,
			})
		}

		response.Lists = append(response.Lists, types.ListResponse{
			ID:    list.ID,
			Name:  list.Name,
			Cards: cards,
		})
	}

	for _, collaborator := range collaborators {
		response.Collaborators = append(response.Collaborators, types.UserResponse{
			ID:       collaborator.ID,
			Username: collaborator.Username,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func AddCollaborator(ctx *gin.Context) {
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

	board, err := access.BoardForOwner(boardID, userID)

	if err != nil {
		if errors.Is(err, access.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
			return
		}
		if errors.Is(err, access.ErrForbidden) {
			utils.SetFlash(ctx, "Only board owners can add collaborators.")
			ctx.Redirect(http.StatusSeeOther, boardPath(boardID))
			return
		}
		log.Printf("Failed to retrieve board: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}

	username := strings.TrimSpace(ctx.PostForm("username"))

	var target models.User

	err = db.DB.Where("username = ?", username).First(&target).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SetFlash(ctx, "User not found!")
			ctx.Redirect(http.StatusSeeOther, boardPath(boardID))
			return
		}
		log.Printf("Failed to look up user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	alreadyCollaborator, err := access.IsCollaborator(board.ID, target.ID)

	if err != nil {
		log.Printf("Failed to check collaborators: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// The owner is implicitly authorized and never duplicated into the
	// collaborator set.
	if target.ID == board.OwnerID || alreadyCollaborator {
		utils.SetFlash(ctx, "User is already a collaborator or owner.")
		ctx.Redirect(http.StatusSeeOther, boardPath(boardID))
		return
	}

	collaborator := models.BoardCollaborator{
		BoardID: board.ID,
		UserID:  target.ID,
	}

	if err := db.DB.Create(&collaborator).Error; err != nil {
		log.Printf("Failed to add collaborator: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add collaborator"})
		return
	}

	utils.SetFlash(ctx, username+" added as collaborator!")
	realtime.DefaultHub.Broadcast(realtime.BoardRoom(board.ID), "refresh_board", map[string]interface{}{
		"board_id": board.ID,
	})
	ctx.Redirect(http.StatusSeeOther, boardPath(boardID))
}

func respondBoardOwnerErr(ctx *gin.Context, err error) {
	if errors.Is(err, access.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}
	if errors.Is(err, access.ErrForbidden) {
		utils.SetFlash(ctx, "Unauthorized action.")
		ctx.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	log.Printf("Failed to retrieve board: %v", err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
}
