package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/chertoha/contacthub/internal/common"
)

// EmailTokenTTL is the lifetime of an email confirmation token.
const EmailTokenTTL = 7 * 24 * time.Hour

// AccessTokenService issues and validates session access tokens whose
// subject is a username. Tokens are stateless and self-expiring; there is
// no server-side revocation.
type AccessTokenService struct {
	codec      *Codec
	defaultTTL time.Duration
}

func NewAccessTokenService(codec *Codec, defaultTTL time.Duration) *AccessTokenService {
	return &AccessTokenService{codec: codec, defaultTTL: defaultTTL}
}

// Issue signs an access token for username. An optional ttl overrides the
// configured default lifetime.
func (s *AccessTokenService) Issue(username string, ttl ...time.Duration) (string, error) {
	d := s.defaultTTL
	if len(ttl) > 0 {
		d = ttl[0]
	}
	return s.codec.Encode(username, PurposeAccess, d)
}

// Resolve decodes an access token and returns its subject username.
// Decode failures and absent subjects yield common.ErrInvalidToken.
func (s *AccessTokenService) Resolve(token string) (string, error) {
	claims, err := s.codec.Decode(token, PurposeAccess)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// EmailTokenService issues and validates email confirmation tokens whose
// subject is an email address. Failures surface as
// common.ErrUnprocessableToken so callers can distinguish a bad
// confirmation link from a bad session.
type EmailTokenService struct {
	codec *Codec
}

func NewEmailTokenService(codec *Codec) *EmailTokenService {
	return &EmailTokenService{codec: codec}
}

// Issue signs a confirmation token for email, valid for EmailTokenTTL.
func (s *EmailTokenService) Issue(email string) (string, error) {
	return s.codec.Encode(email, PurposeEmailConfirm, EmailTokenTTL)
}

// Resolve decodes a confirmation token and returns the email it was issued
// for.
func (s *EmailTokenService) Resolve(token string) (string, error) {
	claims, err := s.codec.Decode(token, PurposeEmailConfirm)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return "", fmt.Errorf("%w: %v", common.ErrUnprocessableToken, err)
		}
		return "", err
	}
	return claims.Subject, nil
}
