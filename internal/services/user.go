// Package services contains the business logic behind the REST surface:
// registration, login, email confirmation, and contact management.
package services

import (
	"context"
	"crypto/md5"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chertoha/contacthub/internal/auth"
	"github.com/chertoha/contacthub/internal/cache"
	"github.com/chertoha/contacthub/internal/common"
	"github.com/chertoha/contacthub/internal/logging"
	"github.com/chertoha/contacthub/internal/mail"
	"github.com/chertoha/contacthub/internal/models"
	"github.com/chertoha/contacthub/internal/repositories/repomanager"
	"github.com/chertoha/contacthub/internal/storage"
)

const mailSendTimeout = 30 * time.Second

// RegisterRequest carries the data for a new account. Password is plaintext
// and ephemeral; it is hashed before anything is persisted.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// UserService handles account lifecycle: registration with email
// confirmation, login with session-cache write-through, and avatar updates.
type UserService struct {
	db           *sql.DB
	repos        repomanager.RepositoryManager
	hasher       auth.PasswordHasher
	accessTokens *auth.AccessTokenService
	emailTokens  *auth.EmailTokenService
	sessions     *cache.SessionCache
	mailer       mail.Mailer
	avatars      storage.AvatarStore
	logger       logging.Logger
}

func NewUserService(
	db *sql.DB,
	repos repomanager.RepositoryManager,
	hasher auth.PasswordHasher,
	accessTokens *auth.AccessTokenService,
	emailTokens *auth.EmailTokenService,
	sessions *cache.SessionCache,
	mailer mail.Mailer,
	avatars storage.AvatarStore,
	logger logging.Logger,
) *UserService {
	return &UserService{
		db:           db,
		repos:        repos,
		hasher:       hasher,
		accessTokens: accessTokens,
		emailTokens:  emailTokens,
		sessions:     sessions,
		mailer:       mailer,
		avatars:      avatars,
		logger:       logger,
	}
}

// Register creates a new unconfirmed account and kicks off delivery of the
// confirmation email. Duplicate email or username yields common.ErrConflict.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	repo := s.repos.Users(s.db)

	if _, err := repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("user with this email %w", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	if _, err := repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("user with this username %w", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashed,
		Avatar:         gravatarURL(req.Email),
	})
	if err != nil {
		return nil, err
	}

	s.sendConfirmationAsync(user.Email, user.Username)

	return user, nil
}

// Login verifies credentials and returns a fresh access token. Unknown
// users and wrong passwords are indistinguishable to the caller. On success
// a snapshot of the user is written through to the session cache.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repos.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrInvalidCredentials
		}
		return "", err
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		return "", common.ErrInvalidCredentials
	}

	if !user.Confirmed {
		return "", common.ErrUnconfirmed
	}

	token, err := s.accessTokens.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}

	if err := s.sessions.Put(ctx, user.Username, cache.SnapshotOf(user)); err != nil {
		return "", fmt.Errorf("session cache: %w", err)
	}

	return token, nil
}

// ConfirmEmail resolves a confirmation token and flips the confirmed flag.
// A token for an unknown email yields common.ErrNotFound; repeated
// confirmation yields common.ErrAlreadyConfirmed.
func (s *UserService) ConfirmEmail(ctx context.Context, token string) error {
	email, err := s.emailTokens.Resolve(token)
	if err != nil {
		return err
	}

	repo := s.repos.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.Confirmed {
		return common.ErrAlreadyConfirmed
	}

	return repo.SetConfirmed(ctx, email)
}

// ResendConfirmation re-sends the confirmation email. It always succeeds
// with a neutral acknowledgement: whether the address exists, and whether it
// is already confirmed, must not be observable from the outside.
func (s *UserService) ResendConfirmation(ctx context.Context, email string) error {
	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	}

	if user.Confirmed {
		return nil
	}

	s.sendConfirmationAsync(user.Email, user.Username)
	return nil
}

// UpdateAvatar uploads a new avatar image and persists its URL.
func (s *UserService) UpdateAvatar(ctx context.Context, user *models.User, body io.Reader, contentType string) (*models.User, error) {
	url, err := s.avatars.Upload(ctx, user.Username, body, contentType)
	if err != nil {
		return nil, err
	}
	return s.repos.Users(s.db).UpdateAvatar(ctx, user.Email, url)
}

// sendConfirmationAsync delivers the confirmation email in the background.
// Delivery is fire-and-forget; failures are logged and the request that
// triggered the send is not affected.
func (s *UserService) sendConfirmationAsync(email, username string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailSendTimeout)
		defer cancel()

		if err := s.mailer.SendConfirmation(ctx, email, username); err != nil {
			s.logger.Error(ctx, "sending confirmation email failed",
				"username", username, "error", err.Error())
		}
	}()
}

// gravatarURL derives the default avatar for an address.
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon", sum)
}
