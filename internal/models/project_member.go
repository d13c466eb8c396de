package models

import "gorm.io/gorm"

// ProjectMember is the authoritative team list. Row order (by ID) is the
// team's insertion order; the set of member user IDs is always a projection
// of these rows, so it cannot drift from the team itself.
type ProjectMember struct {
	gorm.Model

	UserID    uint   `gorm:"not null;uniqueIndex:idx_member_user_project"`
	ProjectID uint   `gorm:"not null;uniqueIndex:idx_member_user_project"`
	Role      string `gorm:"not null"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
