package models

import (
	"time"
)

// News is a member-submitted item. It stays invisible to the public
// until a moderator or administrator approves it.
type News struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Nid        string    `gorm:"uniqueIndex;size:8;not null" json:"nid"`
	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	Author     Account   `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Title      string    `gorm:"not null" json:"title"`
	URL        string    `json:"url"` // Optional source link
	Content    string    `gorm:"type:text" json:"content"`
	Approved   bool      `gorm:"default:false;not null;index" json:"approved"`
	ApproverID *uint     `gorm:"index" json:"approver_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Filled at query time, not a column
	CommentCount int `gorm:"-" json:"comment_count"`
}

func (n News) OwnedBy() uint { return n.AuthorID }
