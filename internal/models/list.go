package models

import "gorm.io/gorm"

type List struct {
	gorm.Model

	Name    string `gorm:"not null"`
	BoardID uint   `gorm:"not null;index"`

	// Relationships
	Board Board  `gorm:"foreignKey:BoardID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Cards []Card `gorm:"foreignKey:ListID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
