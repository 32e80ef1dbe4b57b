package store

import (
	"errors"

	"libris/internal/models"

	"gorm.io/gorm"
)

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

func (r *CommentRepo) Create(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

func (r *CommentRepo) FindByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Preload("Author").First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepo) FindByCid(cid string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Preload("Author").Where("cid = ?", cid).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepo) ListForNews(newsID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Preload("Author").
		Where("news_id = ?", newsID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepo) ListForArticle(articleID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Preload("Author").
		Where("article_id = ?", articleID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// CountForNews batch-counts comments for a set of news ids.
func (r *CommentRepo) CountForNews(newsIDs []uint) (map[uint]int, error) {
	return r.countGrouped("news_id", newsIDs)
}

// CountForArticles batch-counts comments for a set of article ids.
func (r *CommentRepo) CountForArticles(articleIDs []uint) (map[uint]int, error) {
	return r.countGrouped("article_id", articleIDs)
}

func (r *CommentRepo) countGrouped(column string, ids []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	type countResult struct {
		TargetID uint
		Count    int
	}
	var results []countResult
	err := r.db.Model(&models.Comment{}).
		Select(column+" AS target_id, COUNT(*) AS count").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		counts[res.TargetID] = res.Count
	}
	return counts, nil
}

func (r *CommentRepo) CountByAuthor(accountID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).Where("author_id = ?", accountID).Count(&count).Error
	return count, err
}

func (r *CommentRepo) Delete(comment *models.Comment) error {
	return r.db.Unscoped().Delete(comment).Error
}
