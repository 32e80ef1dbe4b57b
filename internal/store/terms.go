package store

import (
	"errors"

	"libris/internal/models"

	"gorm.io/gorm"
)

type TermRepo struct {
	db *gorm.DB
}

func NewTermRepo(db *gorm.DB) *TermRepo {
	return &TermRepo{db: db}
}

func (r *TermRepo) Create(term *models.Term) error {
	return r.db.Create(term).Error
}

func (r *TermRepo) FindByID(id uint) (*models.Term, error) {
	var term models.Term
	err := r.db.Preload("Author").First(&term, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &term, nil
}

func (r *TermRepo) FindByName(name string) (*models.Term, error) {
	var term models.Term
	err := r.db.Where("name = ?", name).First(&term).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &term, nil
}

// ListAlphabetical returns the whole glossary ordered by name.
func (r *TermRepo) ListAlphabetical() ([]models.Term, error) {
	var terms []models.Term
	err := r.db.Preload("Author").Order("name ASC").Find(&terms).Error
	return terms, err
}

func (r *TermRepo) Update(term *models.Term) error {
	return r.db.Save(term).Error
}
