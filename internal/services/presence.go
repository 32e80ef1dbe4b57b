package services

import (
	"time"

	"libris/internal/models"
	"libris/internal/store"

	"gorm.io/gorm"
)

// PresenceService maintains the activity stamps behind the online
// indicator. Reads and writes share models.PresenceWindow so the
// debounce and the online check can never drift apart.
type PresenceService struct {
	accounts *store.AccountRepo
}

func NewPresenceService(db *gorm.DB) *PresenceService {
	return &PresenceService{accounts: store.NewAccountRepo(db)}
}

// TouchActivity refreshes last_activity_at, debounced to at most one
// write per presence window. Returns true when a write happened.
func (s *PresenceService) TouchActivity(account *models.Account) (bool, error) {
	now := time.Now()
	if account.LastActivityAt != nil && now.Sub(*account.LastActivityAt) <= models.PresenceWindow {
		return false, nil
	}

	if err := s.accounts.UpdateActivity(account.ID, now); err != nil {
		return false, err
	}
	account.LastActivityAt = &now
	return true, nil
}

// TouchLogin stamps both the login and activity times. Unlike
// TouchActivity it always writes, a fresh authentication is worth
// recording even seconds after the previous one.
func (s *PresenceService) TouchLogin(account *models.Account) error {
	now := time.Now()
	if err := s.accounts.UpdateLoginStamps(account.ID, now); err != nil {
		return err
	}
	account.LastLoginAt = &now
	account.LastActivityAt = &now
	return nil
}

// OnlineAccounts lists everyone active inside the window ending at asOf.
func (s *PresenceService) OnlineAccounts(asOf time.Time) ([]models.Account, error) {
	return s.accounts.FindOnline(asOf)
}

// IsOnline reports whether the account was active within the presence
// window ending at asOf. Exactly on the boundary still counts as
// online, a second past it does not.
func IsOnline(account *models.Account, asOf time.Time) bool {
	if account == nil || account.LastActivityAt == nil {
		return false
	}
	return asOf.Sub(*account.LastActivityAt) <= models.PresenceWindow
}
