package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chertoha/contacthub/internal/common"
)

// Token purposes. Access tokens authenticate API requests; email tokens
// prove control of an address during confirmation. A token issued for one
// purpose is rejected by the other's validation path.
const (
	PurposeAccess       = "access"
	PurposeEmailConfirm = "email_confirm"
)

// Claims is the signed claim set carried by every token: the registered
// subject/expiry claims plus the purpose discriminator.
type Claims struct {
	jwt.RegisteredClaims
	Purpose string `json:"purpose"`
}

// Codec signs and verifies claim sets with a shared symmetric secret.
// Centralizing encode/decode keeps expiry and algorithm checks in one place
// for both token kinds.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	alg    string
	now    func() time.Time
}

// NewCodec builds a Codec for the given secret and HMAC algorithm name
// (e.g. "HS256"). now overrides the clock used for issuing and validation;
// pass nil for time.Now.
func NewCodec(secret, algorithm string, now func() time.Time) (*Codec, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not symmetric", algorithm)
	}
	if now == nil {
		now = time.Now
	}
	return &Codec{secret: []byte(secret), method: method, alg: algorithm, now: now}, nil
}

// Encode signs a claim set for subject with the given purpose and lifetime.
func (c *Codec) Encode(subject, purpose string, ttl time.Duration) (string, error) {
	issued := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
		},
		Purpose: purpose,
	}

	token, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Decode verifies signature, algorithm, and expiry, and checks that the
// token was issued for the expected purpose. Any failure yields
// common.ErrInvalidToken.
func (c *Codec) Decode(tokenString, purpose string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{c.alg}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", common.ErrInvalidToken)
	}
	if claims.Purpose != purpose {
		return nil, fmt.Errorf("%w: wrong token purpose", common.ErrInvalidToken)
	}

	return claims, nil
}
