package store

import (
	"errors"
	"time"

	"libris/internal/models"

	"gorm.io/gorm"
)

// AccountRepo owns every account query. Callers go through named
// finders instead of composing their own conditions.
type AccountRepo struct {
	db *gorm.DB
}

func NewAccountRepo(db *gorm.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// WithTx returns a repo bound to tx for multi-step writes.
func (r *AccountRepo) WithTx(tx *gorm.DB) *AccountRepo {
	return &AccountRepo{db: tx}
}

// FindByID loads an account with its roles. Returns nil when absent.
func (r *AccountRepo) FindByID(id uint) (*models.Account, error) {
	var account models.Account
	err := r.db.Preload("Roles").First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepo) FindByHandle(handle string) (*models.Account, error) {
	var account models.Account
	err := r.db.Preload("Roles").Where("handle = ?", handle).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepo) FindByEmail(email string) (*models.Account, error) {
	var account models.Account
	err := r.db.Preload("Roles").Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepo) Create(account *models.Account) error {
	return r.db.Create(account).Error
}

// MarkConfirmed flips the confirmed flag.
func (r *AccountRepo) MarkConfirmed(id uint) error {
	return r.db.Model(&models.Account{}).Where("id = ?", id).Update("confirmed", true).Error
}

// UpdateActivity stamps last_activity_at.
func (r *AccountRepo) UpdateActivity(id uint, at time.Time) error {
	return r.db.Model(&models.Account{}).Where("id = ?", id).
		Update("last_activity_at", at).Error
}

// UpdateLoginStamps stamps last_login_at and last_activity_at together.
func (r *AccountRepo) UpdateLoginStamps(id uint, at time.Time) error {
	return r.db.Model(&models.Account{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_login_at":    at,
		"last_activity_at": at,
	}).Error
}

// UpdateFields applies a partial update, used by the settings page.
func (r *AccountRepo) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.db.Model(&models.Account{}).Where("id = ?", id).Updates(fields).Error
}

// FindOnline lists accounts whose last activity falls inside the
// presence window ending at asOf, most recently active first.
func (r *AccountRepo) FindOnline(asOf time.Time) ([]models.Account, error) {
	cutoff := asOf.Add(-models.PresenceWindow)
	var accounts []models.Account
	err := r.db.Where("last_activity_at >= ?", cutoff).
		Order("last_activity_at DESC").
		Find(&accounts).Error
	return accounts, err
}

// ListNewest returns the most recently registered accounts.
func (r *AccountRepo) ListNewest(limit int) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.Order("created_at DESC").Limit(limit).Find(&accounts).Error
	return accounts, err
}
