package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Notification struct {
	gorm.Model

	UserID    uint           `gorm:"not null;index"`
	ProjectID uint           `gorm:"not null;index"`
	TaskID    *uint          `gorm:"index"`
	Title     string         `gorm:"not null"`
	Body      string
	Type      string         `gorm:"not null"` // "info", "deadline", "message", "status"
	Read      bool           `gorm:"default:false"`
	Data      datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
