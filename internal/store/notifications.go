package store

import (
	"errors"

	"libris/internal/models"

	"gorm.io/gorm"
)

type NotificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// FindForAccount loads one notification, scoped to its receiver so a
// member can never touch someone else's inbox.
func (r *NotificationRepo) FindForAccount(id, accountID uint) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.Where("id = ? AND account_id = ?", id, accountID).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepo) ListForAccount(accountID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.Preload("Actor").
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepo) CountUnread(accountID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("account_id = ? AND is_read = ?", accountID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepo) MarkRead(notification *models.Notification) error {
	notification.IsRead = true
	return r.db.Save(notification).Error
}

func (r *NotificationRepo) MarkAllRead(accountID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("account_id = ? AND is_read = ?", accountID, false).
		Update("is_read", true).Error
}

func (r *NotificationRepo) Delete(notification *models.Notification) error {
	return r.db.Delete(notification).Error
}
