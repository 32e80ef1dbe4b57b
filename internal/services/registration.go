package services

import (
	"strings"

	"libris/internal/models"
	"libris/internal/store"
	"libris/internal/utils"

	"gorm.io/gorm"
)

// TokenLength is how many random alphanumeric characters a
// confirmation token carries.
const TokenLength = 26

// ConfirmationMailer delivers the signup confirmation message.
// Implementations must not block registration on delivery.
type ConfirmationMailer interface {
	SendConfirmationEmail(email, handle, token string)
}

// RegistrationService runs signup, email confirmation and login.
type RegistrationService struct {
	db       *gorm.DB
	accounts *store.AccountRepo
	tokens   *store.TokenRepo
	mailer   ConfirmationMailer
}

func NewRegistrationService(db *gorm.DB, mailer ConfirmationMailer) *RegistrationService {
	return &RegistrationService{
		db:       db,
		accounts: store.NewAccountRepo(db),
		tokens:   store.NewTokenRepo(db),
		mailer:   mailer,
	}
}

// RegisterInput carries the signup form fields.
type RegisterInput struct {
	Handle   string
	Email    string
	Password string
}

// Register persists a new unconfirmed account together with its
// confirmation token and queues the confirmation email. Validation
// problems come back as a *ValidationError with one message per field.
func (s *RegistrationService) Register(in RegisterInput) (*models.Account, error) {
	handle := strings.TrimSpace(in.Handle)
	email := strings.TrimSpace(strings.ToLower(in.Email))

	fields := map[string]string{}

	if handle == "" {
		fields["handle"] = "handle is required"
	} else if len(handle) < 3 || len(handle) > 30 {
		fields["handle"] = "handle must be between 3 and 30 characters"
	}

	if email == "" {
		fields["email"] = "email is required"
	} else if parts := strings.Split(email, "@"); len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		fields["email"] = "email address looks malformed"
	}

	if in.Password == "" {
		fields["password"] = "password is required"
	} else if len(in.Password) < 6 {
		fields["password"] = "password must be at least 6 characters"
	}

	if handle != "" && fields["handle"] == "" {
		existing, err := s.accounts.FindByHandle(handle)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			fields["handle"] = "handle is already taken"
		}
	}
	if email != "" && fields["email"] == "" {
		existing, err := s.accounts.FindByEmail(email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			fields["email"] = "email is already registered"
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Handle:       handle,
		Email:        email,
		PasswordHash: hash,
	}
	token := utils.RandomString(TokenLength)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.accounts.WithTx(tx).Create(account); err != nil {
			return err
		}
		return s.tokens.WithTx(tx).Create(&models.ConfirmationToken{
			Token:     token,
			AccountID: account.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	// Delivery is queued, a mail outage must not fail the signup.
	s.mailer.SendConfirmationEmail(account.Email, account.Handle, token)

	return account, nil
}

// Confirm consumes a confirmation token and marks the account
// confirmed. Find and delete run in one transaction and the delete
// must actually remove a row, so two concurrent attempts on the same
// token cannot both succeed.
func (s *RegistrationService) Confirm(token string) (*models.Account, error) {
	var account *models.Account

	err := s.db.Transaction(func(tx *gorm.DB) error {
		tokens := s.tokens.WithTx(tx)
		accounts := s.accounts.WithTx(tx)

		ct, err := tokens.FindByToken(token)
		if err != nil {
			return err
		}
		if ct == nil {
			return ErrInvalidToken
		}

		deleted, err := tokens.DeleteByToken(token)
		if err != nil {
			return err
		}
		if deleted == 0 {
			// Another request won the race.
			return ErrInvalidToken
		}

		if err := accounts.MarkConfirmed(ct.AccountID); err != nil {
			return err
		}

		account, err = accounts.FindByID(ct.AccountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrInvalidToken
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords
// produce the same ErrInvalidCredentials. Confirmation is not checked
// here: unconfirmed members may sign in, they just keep seeing the
// reminder until the mailed link is used.
func (s *RegistrationService) Authenticate(email, password string) (*models.Account, error) {
	account, err := s.accounts.FindByEmail(strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}
