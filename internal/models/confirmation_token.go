package models

import (
	"time"
)

// ConfirmationToken is the single-use secret mailed after signup.
// Consumption deletes the row, so a token can never confirm twice.
type ConfirmationToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"uniqueIndex;size:32;not null" json:"-"`
	AccountID uint      `gorm:"uniqueIndex;not null" json:"account_id"`
	Account   Account   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"account"`
	CreatedAt time.Time `json:"created_at"`
}
