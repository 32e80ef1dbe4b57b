package store

import (
	"errors"

	"libris/internal/models"

	"gorm.io/gorm"
)

// TokenRepo stores confirmation tokens. A token is consumed by
// deleting its row, so DeleteByToken reports how many rows went away
// and lets the caller detect a lost race.
type TokenRepo struct {
	db *gorm.DB
}

func NewTokenRepo(db *gorm.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

func (r *TokenRepo) WithTx(tx *gorm.DB) *TokenRepo {
	return &TokenRepo{db: tx}
}

func (r *TokenRepo) Create(token *models.ConfirmationToken) error {
	return r.db.Create(token).Error
}

// FindByToken returns nil when no such token exists.
func (r *TokenRepo) FindByToken(token string) (*models.ConfirmationToken, error) {
	var ct models.ConfirmationToken
	err := r.db.Where("token = ?", token).First(&ct).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ct, nil
}

// DeleteByToken removes the row and returns the number of rows
// affected. Zero means another request consumed it first.
func (r *TokenRepo) DeleteByToken(token string) (int64, error) {
	res := r.db.Where("token = ?", token).Delete(&models.ConfirmationToken{})
	return res.RowsAffected, res.Error
}
