package models

import "gorm.io/gorm"

type Board struct {
	gorm.Model

	Name    string `gorm:"not null"`
	OwnerID uint   `gorm:"not null;index"`

	// Relationships
	Owner         User                `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Lists         []List              `gorm:"foreignKey:BoardID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Collaborators []BoardCollaborator `gorm:"foreignKey:BoardID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
