package models

import "gorm.io/gorm"

// BoardCollaborator grants a user view/edit access to a board they do not own.
// The board's owner is never stored here; ownership already implies access.
type BoardCollaborator struct {
	gorm.Model

	BoardID uint `gorm:"not null;uniqueIndex:idx_board_user"`
	UserID  uint `gorm:"not null;uniqueIndex:idx_board_user"`

	// Relationships
	Board Board `gorm:"foreignKey:BoardID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User  User  `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
