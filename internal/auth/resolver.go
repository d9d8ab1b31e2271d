package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/chertoha/contacthub/internal/common"
	"github.com/chertoha/contacthub/internal/models"
)

// UserLookup is the collaborator used to load the user behind a resolved
// token. Satisfied by the users repository.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Authenticator resolves an inbound access token to a user identity. It is
// the sole gate in front of protected endpoints: handlers must go through
// Authenticate before touching request logic that assumes a valid caller.
type Authenticator struct {
	tokens *AccessTokenService
	users  UserLookup
}

func NewAuthenticator(tokens *AccessTokenService, users UserLookup) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Authenticate decodes token and loads the matching user. An invalid or
// expired token, or a subject with no user behind it, yields
// common.ErrUnauthorized. Lookup infrastructure failures propagate as-is.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	username, err := a.tokens.Resolve(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnauthorized, err)
	}

	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: no user for token subject", common.ErrUnauthorized)
		}
		return nil, fmt.Errorf("user lookup: %w", err)
	}

	return user, nil
}
