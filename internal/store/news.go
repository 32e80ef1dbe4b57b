package store

import (
	"errors"
	"time"

	"libris/internal/models"

	"gorm.io/gorm"
)

type NewsRepo struct {
	db *gorm.DB
}

func NewNewsRepo(db *gorm.DB) *NewsRepo {
	return &NewsRepo{db: db}
}

func (r *NewsRepo) Create(news *models.News) error {
	return r.db.Create(news).Error
}

func (r *NewsRepo) FindByNid(nid string) (*models.News, error) {
	var news models.News
	err := r.db.Preload("Author").Where("nid = ?", nid).First(&news).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &news, nil
}

// FindByURL looks an item up by its source link, used to keep the
// newswire from submitting the same story twice.
func (r *NewsRepo) FindByURL(url string) (*models.News, error) {
	var news models.News
	err := r.db.Where("url = ?", url).First(&news).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &news, nil
}

// ListApproved pages through publicly visible items, newest first.
func (r *NewsRepo) ListApproved(offset, limit int) ([]models.News, error) {
	var items []models.News
	err := r.db.Preload("Author").
		Where("approved = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	return items, err
}

func (r *NewsRepo) CountApproved() (int64, error) {
	var count int64
	err := r.db.Model(&models.News{}).Where("approved = ?", true).Count(&count).Error
	return count, err
}

// ListPending returns the moderation queue, oldest submission first.
func (r *NewsRepo) ListPending() ([]models.News, error) {
	var items []models.News
	err := r.db.Preload("Author").
		Where("approved = ?", false).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *NewsRepo) ListByAuthor(accountID uint, limit int) ([]models.News, error) {
	var items []models.News
	err := r.db.Preload("Author").
		Where("author_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *NewsRepo) CountByAuthor(accountID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.News{}).Where("author_id = ?", accountID).Count(&count).Error
	return count, err
}

// Approve marks the item visible and records who cleared it.
func (r *NewsRepo) Approve(id uint, approverID uint, at time.Time) error {
	return r.db.Model(&models.News{}).Where("id = ?", id).Updates(map[string]interface{}{
		"approved":    true,
		"approver_id": approverID,
		"updated_at":  at,
	}).Error
}

func (r *NewsRepo) Update(news *models.News) error {
	return r.db.Save(news).Error
}

func (r *NewsRepo) Delete(news *models.News) error {
	return r.db.Unscoped().Delete(news).Error
}
