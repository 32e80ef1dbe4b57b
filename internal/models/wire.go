package models

import (
	"time"
)

// WireSource is an external RSS or Atom feed the moderation team
// follows for news desk material. Sources are shared house
// infrastructure, not personal subscriptions.
type WireSource struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	URL         string     `gorm:"uniqueIndex;not null" json:"url"`
	Title       string     `gorm:"not null" json:"title"`
	SiteURL     string     `json:"site_url"`
	AddedByID   uint       `gorm:"not null" json:"added_by_id"`
	AddedBy     Account    `gorm:"foreignKey:AddedByID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"added_by"`
	LastFetchAt *time.Time `json:"last_fetch_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// WireItem is one fetched entry. PickedNewsID is set once an approver
// turns the item into a pending news submission, so the wire never
// offers the same story twice.
type WireItem struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	SourceID     uint       `gorm:"not null;index" json:"source_id"`
	Source       WireSource `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"source"`
	GUID         string     `gorm:"uniqueIndex;not null" json:"guid"`
	Title        string     `gorm:"not null" json:"title"`
	Link         string     `gorm:"not null" json:"link"`
	Excerpt      string     `gorm:"type:text" json:"excerpt"`
	PublishedAt  time.Time  `gorm:"not null;index" json:"published_at"`
	PickedNewsID *uint      `gorm:"index" json:"picked_news_id"`
	CreatedAt    time.Time  `json:"created_at"`
}
