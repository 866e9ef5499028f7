// Package access centralizes entity lookup plus the owner/collaborator
// authorization rules shared by the HTTP handlers and the realtime layer.
package access

import (
	"errors"

	"github.com/corkboard-dev/corkboard/db"
	"github.com/corkboard-dev/corkboard/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means the requested entity id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the actor is authenticated but not allowed.
	ErrForbidden = errors.New("forbidden")
)

// IsCollaborator reports whether userID holds a collaborator row on boardID.
func IsCollaborator(boardID, userID uint) (bool, error) {
	var count int64

	err := db.DB.Model(&models.BoardCollaborator{}).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// BoardForOwner fetches the board and requires actorID to be its owner.
// Collaborators are deliberately rejected: rename/delete/share are owner-only.
func BoardForOwner(boardID, actorID uint) (*models.Board, error) {
	var board models.Board

	if err := db.DB.First(&board, boardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if board.OwnerID != actorID {
		return nil, ErrForbidden
	}

	return &board, nil
}

// BoardForMember fetches the board and requires actorID to be its owner or a
// collaborator.
func BoardForMember(boardID, actorID uint) (*models.Board, error) {
	var board models.Board

	if err := db.DB.First(&board, boardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if board.OwnerID == actorID {
		return &board, nil
	}

	collaborator, err := IsCollaborator(boardID, actorID)

	if err != nil {
		return nil, err
	}

	if !collaborator {
		return nil, ErrForbidden
	}

	return &board, nil
}

// ListForMember resolves the list and authorizes the actor against its board.
func ListForMember(listID, actorID uint) (*models.List, error) {
	var list models.List

	if err := db.DB.First(&list, listID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if _, err := BoardForMember(list.BoardID, actorID); err != nil {
		return nil, err
	}

	return &list, nil
}

// CardForMember resolves the card and authorizes the actor against the board
// of the card's current list.
func CardForMember(cardID, actorID uint) (*models.Card, error) {
	var card models.Card

	if err := db.DB.First(&card, cardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if _, err := ListForMember(card.ListID, actorID); err != nil {
		// The parent list row is expected to exist; surface its absence as a
		// plain not-found on the card path.
		return nil, err
	}

	return &card, nil
}
