package models

import (
	"time"
)

// Role is a named grant attached to accounts through account_roles.
// Only the seeded names mean anything to the permission checks.
type Role struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:20;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
