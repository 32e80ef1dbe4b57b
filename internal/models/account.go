package models

import (
	"time"
)

// PresenceWindow is how long after the last recorded activity an
// account still counts as online. Exactly at the boundary is online,
// a second past it is not. Every presence query and check shares this
// one constant.
const PresenceWindow = 120 * time.Second

type Account struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Handle         string     `gorm:"uniqueIndex;size:30;not null" json:"handle"`
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string     `gorm:"not null" json:"-"`
	Bio            string     `gorm:"size:200" json:"bio"`
	Confirmed      bool       `gorm:"default:false;not null" json:"confirmed"`
	LastLoginAt    *time.Time `json:"last_login_at"`              // set on login and on confirm
	LastActivityAt *time.Time `gorm:"index" json:"last_activity_at"` // refreshed by request activity
	Roles          []Role     `gorm:"many2many:account_roles;" json:"roles"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	// No DeletedAt for hard delete
}

// RoleNames returns the names of every granted role.
func (a *Account) RoleNames() []string {
	names := make([]string, 0, len(a.Roles))
	for _, r := range a.Roles {
		names = append(names, r.Name)
	}
	return names
}
