package store

import (
	"errors"
	"time"

	"libris/internal/models"

	"gorm.io/gorm"
)

type WireRepo struct {
	db *gorm.DB
}

func NewWireRepo(db *gorm.DB) *WireRepo {
	return &WireRepo{db: db}
}

func (r *WireRepo) CreateSource(source *models.WireSource) error {
	return r.db.Create(source).Error
}

func (r *WireRepo) FindSourceByURL(url string) (*models.WireSource, error) {
	var source models.WireSource
	err := r.db.Where("url = ?", url).First(&source).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &source, nil
}

func (r *WireRepo) FindSourceByID(id uint) (*models.WireSource, error) {
	var source models.WireSource
	err := r.db.First(&source, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &source, nil
}

func (r *WireRepo) ListSources() ([]models.WireSource, error) {
	var sources []models.WireSource
	err := r.db.Preload("AddedBy").Order("title ASC").Find(&sources).Error
	return sources, err
}

// DeleteSource removes the source; its items go with it through the
// foreign key cascade.
func (r *WireRepo) DeleteSource(source *models.WireSource) error {
	return r.db.Unscoped().Delete(source).Error
}

// TouchSourceFetched records a completed refresh.
func (r *WireRepo) TouchSourceFetched(id uint, at time.Time) error {
	return r.db.Model(&models.WireSource{}).Where("id = ?", id).
		Update("last_fetch_at", &at).Error
}

func (r *WireRepo) CreateItem(item *models.WireItem) error {
	return r.db.Create(item).Error
}

func (r *WireRepo) ItemExists(guid string) (bool, error) {
	var count int64
	err := r.db.Model(&models.WireItem{}).Where("guid = ?", guid).Count(&count).Error
	return count > 0, err
}

func (r *WireRepo) FindItemByID(id uint) (*models.WireItem, error) {
	var item models.WireItem
	err := r.db.Preload("Source").First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListRecentItems returns the freshest entries across every source.
func (r *WireRepo) ListRecentItems(limit int) ([]models.WireItem, error) {
	var items []models.WireItem
	err := r.db.Preload("Source").
		Order("published_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// MarkPicked ties an item to the news submission made from it.
func (r *WireRepo) MarkPicked(itemID, newsID uint) error {
	return r.db.Model(&models.WireItem{}).Where("id = ?", itemID).
		Update("picked_news_id", newsID).Error
}

// DeleteItemsBefore prunes entries older than the cutoff, keeping the
// wire table from growing without bound. Picked items stay, they
// document where a story came from.
func (r *WireRepo) DeleteItemsBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("published_at < ? AND picked_news_id IS NULL", cutoff).
		Delete(&models.WireItem{})
	return result.RowsAffected, result.Error
}
