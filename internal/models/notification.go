package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeCommentNews    NotificationType = "comment_news"
	NotificationTypeCommentArticle NotificationType = "comment_article"
	NotificationTypeReplyComment   NotificationType = "reply_comment"
	NotificationTypeSystem         NotificationType = "system"
)

type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	AccountID uint             `gorm:"not null;index" json:"account_id"` // Receiver
	Account   Account          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"account"`
	ActorID   *uint            `gorm:"index" json:"actor_id"` // Sender
	Actor     Account          `gorm:"foreignKey:ActorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"actor"`
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Reason    string           `gorm:"type:text" json:"reason"` // Rendered message body, may contain HTML
	IsRead    bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
