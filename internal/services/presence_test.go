package services

import (
	"testing"
	"time"

	"libris/internal/models"
	"libris/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createAccount(t *testing.T, db *gorm.DB, handle string) *models.Account {
	t.Helper()
	account := &models.Account{
		Handle:       handle,
		Email:        handle + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, store.NewAccountRepo(db).Create(account))
	return account
}

func TestTouchActivityWritesWhenStale(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPresenceService(db)
	account := createAccount(t, db, "alice")

	// First request after signup, no stamp yet.
	wrote, err := svc.TouchActivity(account)
	require.NoError(t, err)
	assert.True(t, wrote)
	require.NotNil(t, account.LastActivityAt)

	// Push the stamp past the window, the next touch writes again.
	stale := time.Now().Add(-models.PresenceWindow - time.Second)
	require.NoError(t, store.NewAccountRepo(db).UpdateActivity(account.ID, stale))
	account.LastActivityAt = &stale

	wrote, err = svc.TouchActivity(account)
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.True(t, account.LastActivityAt.After(stale))
}

func TestTouchActivityDebouncesInsideWindow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPresenceService(db)
	account := createAccount(t, db, "alice")

	wrote, err := svc.TouchActivity(account)
	require.NoError(t, err)
	require.True(t, wrote)
	first := *account.LastActivityAt

	// Seconds later the stamp is still fresh, nothing is written.
	wrote, err = svc.TouchActivity(account)
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Equal(t, first, *account.LastActivityAt)

	reloaded, err := store.NewAccountRepo(db).FindByID(account.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastActivityAt)
	assert.WithinDuration(t, first, *reloaded.LastActivityAt, time.Second)
}

func TestTouchLoginAlwaysStampsBoth(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPresenceService(db)
	account := createAccount(t, db, "alice")

	// Pretend the last login happened an hour ago.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, store.NewAccountRepo(db).UpdateLoginStamps(account.ID, past))
	account.LastLoginAt = &past
	account.LastActivityAt = &past

	require.NoError(t, svc.TouchLogin(account))
	require.NotNil(t, account.LastLoginAt)
	require.NotNil(t, account.LastActivityAt)

	reloaded, err := store.NewAccountRepo(db).FindByID(account.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	require.NotNil(t, reloaded.LastActivityAt)
	assert.WithinDuration(t, time.Now(), *reloaded.LastLoginAt, 2*time.Second)
	assert.WithinDuration(t, time.Now(), *reloaded.LastActivityAt, 2*time.Second)
}

func TestIsOnlineBoundary(t *testing.T) {
	asOf := time.Now()

	onBoundary := asOf.Add(-models.PresenceWindow)
	justPast := asOf.Add(-models.PresenceWindow - time.Second)
	fresh := asOf.Add(-30 * time.Second)

	tests := []struct {
		name   string
		stamp  *time.Time
		online bool
	}{
		{"active half a minute ago", &fresh, true},
		{"exactly on the window boundary", &onBoundary, true},
		{"one second past the boundary", &justPast, false},
		{"never active", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := &models.Account{LastActivityAt: tt.stamp}
			assert.Equal(t, tt.online, IsOnline(account, asOf))
		})
	}

	assert.False(t, IsOnline(nil, asOf))
}

func TestOnlineAccountsAppliesWindow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPresenceService(db)
	repo := store.NewAccountRepo(db)

	alice := createAccount(t, db, "alice")
	bob := createAccount(t, db, "bob")
	carol := createAccount(t, db, "carol")
	createAccount(t, db, "dave") // never active

	asOf := time.Now()
	require.NoError(t, repo.UpdateActivity(alice.ID, asOf.Add(-30*time.Second)))
	require.NoError(t, repo.UpdateActivity(bob.ID, asOf.Add(-models.PresenceWindow)))
	require.NoError(t, repo.UpdateActivity(carol.ID, asOf.Add(-models.PresenceWindow-time.Second)))

	online, err := svc.OnlineAccounts(asOf)
	require.NoError(t, err)

	handles := make([]string, 0, len(online))
	for _, a := range online {
		handles = append(handles, a.Handle)
	}
	assert.Equal(t, []string{"alice", "bob"}, handles, "most recent first, boundary included")
}
