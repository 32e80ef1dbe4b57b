package store

import (
	"errors"

	"libris/internal/models"

	"gorm.io/gorm"
)

type ArticleRepo struct {
	db *gorm.DB
}

func NewArticleRepo(db *gorm.DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

func (r *ArticleRepo) Create(article *models.Article) error {
	return r.db.Create(article).Error
}

func (r *ArticleRepo) FindByAid(aid string) (*models.Article, error) {
	var article models.Article
	err := r.db.Preload("Author").Where("aid = ?", aid).First(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &article, nil
}

func (r *ArticleRepo) List(offset, limit int) ([]models.Article, error) {
	var items []models.Article
	err := r.db.Preload("Author").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	return items, err
}

func (r *ArticleRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Article{}).Count(&count).Error
	return count, err
}

func (r *ArticleRepo) ListByAuthor(accountID uint, limit int) ([]models.Article, error) {
	var items []models.Article
	err := r.db.Preload("Author").
		Where("author_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *ArticleRepo) CountByAuthor(accountID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Article{}).Where("author_id = ?", accountID).Count(&count).Error
	return count, err
}

func (r *ArticleRepo) Update(article *models.Article) error {
	return r.db.Save(article).Error
}

func (r *ArticleRepo) Delete(article *models.Article) error {
	return r.db.Unscoped().Delete(article).Error
}
