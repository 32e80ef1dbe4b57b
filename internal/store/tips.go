package store

import (
	"errors"

	"libris/internal/models"

	"gorm.io/gorm"
)

type TipRepo struct {
	db *gorm.DB
}

func NewTipRepo(db *gorm.DB) *TipRepo {
	return &TipRepo{db: db}
}

func (r *TipRepo) Create(tip *models.Tip) error {
	return r.db.Create(tip).Error
}

func (r *TipRepo) FindByID(id uint) (*models.Tip, error) {
	var tip models.Tip
	err := r.db.Preload("Author").First(&tip, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tip, nil
}

func (r *TipRepo) ListNewest(limit int) ([]models.Tip, error) {
	var tips []models.Tip
	err := r.db.Preload("Author").
		Order("created_at DESC").
		Limit(limit).
		Find(&tips).Error
	return tips, err
}

func (r *TipRepo) ListByAuthor(accountID uint, limit int) ([]models.Tip, error) {
	var tips []models.Tip
	err := r.db.Preload("Author").
		Where("author_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&tips).Error
	return tips, err
}

func (r *TipRepo) CountByAuthor(accountID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Tip{}).Where("author_id = ?", accountID).Count(&count).Error
	return count, err
}

func (r *TipRepo) Update(tip *models.Tip) error {
	return r.db.Save(tip).Error
}

func (r *TipRepo) Delete(tip *models.Tip) error {
	return r.db.Unscoped().Delete(tip).Error
}
