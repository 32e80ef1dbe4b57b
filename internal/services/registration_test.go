package services

import (
	"errors"
	"sync"
	"testing"

	"libris/internal/models"
	"libris/internal/store"
	"libris/internal/utils"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory database. The pool is pinned to
// a single connection so every session sees the same memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.Role{},
		&models.ConfirmationToken{},
		&models.News{},
		&models.WireSource{},
		&models.WireItem{},
	))
	return db
}

type sentMail struct {
	email  string
	handle string
	token  string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) SendConfirmationEmail(email, handle, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{email: email, handle: handle, token: token})
}

func (f *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func TestRegisterCreatesUnconfirmedAccountWithToken(t *testing.T) {
	db := setupTestDB(t)
	mailer := &fakeMailer{}
	svc := NewRegistrationService(db, mailer)

	account, err := svc.Register(RegisterInput{
		Handle:   "alice",
		Email:    "Alice@Example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.NotNil(t, account)

	assert.NotZero(t, account.ID)
	assert.Equal(t, "alice", account.Handle)
	assert.Equal(t, "alice@example.com", account.Email, "email is normalized to lower case")
	assert.False(t, account.Confirmed, "a fresh account starts unconfirmed")
	assert.NotEqual(t, "hunter22", account.PasswordHash)
	assert.True(t, utils.CheckPasswordHash("hunter22", account.PasswordHash))

	mail := mailer.last(t)
	assert.Equal(t, "alice@example.com", mail.email)
	assert.Equal(t, "alice", mail.handle)
	assert.Len(t, mail.token, TokenLength)

	ct, err := store.NewTokenRepo(db).FindByToken(mail.token)
	require.NoError(t, err)
	require.NotNil(t, ct)
	assert.Equal(t, account.ID, ct.AccountID)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name   string
		input  RegisterInput
		fields []string
	}{
		{
			name:   "everything missing",
			input:  RegisterInput{},
			fields: []string{"handle", "email", "password"},
		},
		{
			name:   "handle too short",
			input:  RegisterInput{Handle: "al", Email: "al@example.com", Password: "hunter22"},
			fields: []string{"handle"},
		},
		{
			name:   "handle too long",
			input:  RegisterInput{Handle: "abcdefghijklmnopqrstuvwxyzabcde", Email: "long@example.com", Password: "hunter22"},
			fields: []string{"handle"},
		},
		{
			name:   "email malformed",
			input:  RegisterInput{Handle: "bob", Email: "not-an-address", Password: "hunter22"},
			fields: []string{"email"},
		},
		{
			name:   "password too short",
			input:  RegisterInput{Handle: "bob", Email: "bob@example.com", Password: "12345"},
			fields: []string{"password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			svc := NewRegistrationService(db, &fakeMailer{})

			account, err := svc.Register(tt.input)
			require.Error(t, err)
			assert.Nil(t, account)

			verr, ok := AsValidationError(err)
			require.True(t, ok, "expected a *ValidationError, got %v", err)
			assert.Len(t, verr.Fields, len(tt.fields))
			for _, field := range tt.fields {
				assert.Contains(t, verr.Fields, field)
			}
		})
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	mailer := &fakeMailer{}
	svc := NewRegistrationService(db, mailer)

	_, err := svc.Register(RegisterInput{Handle: "alice", Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterInput{Handle: "alice", Email: "other@example.com", Password: "hunter22"})
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "handle")
	assert.NotContains(t, verr.Fields, "email")

	_, err = svc.Register(RegisterInput{Handle: "eve", Email: "ALICE@example.com", Password: "hunter22"})
	verr, ok = AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "email", "duplicate check ignores case")
	assert.NotContains(t, verr.Fields, "handle")

	_, err = svc.Register(RegisterInput{Handle: "alice", Email: "alice@example.com", Password: "hunter22"})
	verr, ok = AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "handle")
	assert.Contains(t, verr.Fields, "email")
}

func TestConfirmMarksAccountAndConsumesToken(t *testing.T) {
	db := setupTestDB(t)
	mailer := &fakeMailer{}
	svc := NewRegistrationService(db, mailer)

	registered, err := svc.Register(RegisterInput{Handle: "alice", Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)
	token := mailer.last(t).token

	confirmed, err := svc.Confirm(token)
	require.NoError(t, err)
	require.NotNil(t, confirmed)
	assert.Equal(t, registered.ID, confirmed.ID)
	assert.True(t, confirmed.Confirmed)

	// The token is gone, replaying it must fail.
	_, err = svc.Confirm(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	ct, err := store.NewTokenRepo(db).FindByToken(token)
	require.NoError(t, err)
	assert.Nil(t, ct)
}

func TestConfirmRejectsUnknownToken(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRegistrationService(db, &fakeMailer{})

	account, err := svc.Confirm("zzz")
	assert.Nil(t, account)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConfirmTokenSingleUseUnderConcurrency(t *testing.T) {
	db := setupTestDB(t)
	mailer := &fakeMailer{}
	svc := NewRegistrationService(db, mailer)

	_, err := svc.Register(RegisterInput{Handle: "alice", Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)
	token := mailer.last(t).token

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Confirm(token)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, invalid int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrInvalidToken):
			invalid++
		default:
			t.Fatalf("unexpected confirm error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one confirm may win")
	assert.Equal(t, attempts-1, invalid)
}

func TestAuthenticateDoesNotRequireConfirmation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRegistrationService(db, &fakeMailer{})

	_, err := svc.Register(RegisterInput{Handle: "alice", Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)

	// Never confirmed, signing in still works.
	account, err := svc.Authenticate("alice@example.com", "hunter22")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.False(t, account.Confirmed)
}

func TestAuthenticateRejectsBadCredentialsUniformly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRegistrationService(db, &fakeMailer{})

	_, err := svc.Register(RegisterInput{Handle: "alice", Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, wrongPass := svc.Authenticate("alice@example.com", "wrong password")
	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)

	_, unknown := svc.Authenticate("nobody@example.com", "hunter22")
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)

	// Neither response reveals whether the address exists.
	assert.Equal(t, wrongPass.Error(), unknown.Error())
}
