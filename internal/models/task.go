package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	gorm.Model

	ProjectID   uint   `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Deliverable string
	StartDate   time.Time `gorm:"not null"`
	EndDate     time.Time `gorm:"not null"`
	Status      string    `gorm:"not null"`
	CreatedByID uint      `gorm:"not null;index"`

	// Set once the deadline scan has alerted for this task's end date, so
	// repeated scans inside the 24-hour window do not re-notify.
	DeadlineNotified bool `gorm:"default:false"`

	// Relationships
	Project   Project   `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	CreatedBy User      `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Comments  []Comment `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
