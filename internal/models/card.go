package models

import "gorm.io/gorm"

// Card position is an opaque client-supplied sort key. Values are not required
// to be unique or contiguous; read paths order by position then id.
type Card struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string `gorm:"type:text"`
	Position    int    `gorm:"not null;default:0"`
	ListID      uint   `gorm:"not null;index"`

	// Relationships
	List List `gorm:"foreignKey:ListID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
