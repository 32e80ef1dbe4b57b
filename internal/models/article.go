package models

import (
	"time"
)

// Article is a long-form member blog entry, published immediately.
type Article struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Aid       string    `gorm:"uniqueIndex;size:8;not null" json:"aid"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    Account   `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Filled at query time, not a column
	CommentCount int `gorm:"-" json:"comment_count"`
}

func (a Article) OwnedBy() uint { return a.AuthorID }
