package models

import (
	"time"
)

// Comment attaches to exactly one of a news item or an article.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Cid       string    `gorm:"uniqueIndex;size:8;not null" json:"cid"`
	NewsID    *uint     `gorm:"index" json:"news_id"`
	News      *News     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"news"`
	ArticleID *uint     `gorm:"index" json:"article_id"`
	Article   *Article  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"article"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    Account   `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	ParentID  *uint     `gorm:"index" json:"parent_id"` // Nullable for top-level comments
	Parent    *Comment  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"parent"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Comment) OwnedBy() uint { return c.AuthorID }
