package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Onuiteshi/handyman-backend-sub001/internal/store"
)

// ErrInvalidCredential covers every verification failure: bad
// signature, malformed token, or expiry.
var ErrInvalidCredential = errors.New("token: invalid credential")

// Claims is the verified token payload. It reflects the user at
// issuance time; staleness is an accepted tradeoff.
type Claims struct {
	ID              string     `json:"id"`
	Role            store.Role `json:"role"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	IsPhoneVerified bool       `json:"isPhoneVerified"`
	ProfileComplete bool       `json:"profileComplete"`
	jwt.RegisteredClaims
}

// Codec issues and verifies signed, time-bound credentials. Signing
// configuration is injected; there is no ambient secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token: ttl must be positive")
	}
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock overrides the time source. Intended for tests.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// Issue signs a credential carrying the user's authorization claims.
func (c *Codec) Issue(u *store.User) (string, error) {
	if u == nil || u.ID == "" {
		return "", errors.New("token: user is required")
	}

	now := c.now()
	claims := Claims{
		ID:              u.ID,
		Role:            u.Role,
		IsEmailVerified: u.EmailVerified,
		IsPhoneVerified: u.PhoneVerified,
		ProfileComplete: u.ProfileComplete,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("token: signing failed: %w", err)
	}
	return signed, nil
}

// Verify checks signature, structure and expiry and returns the
// embedded claims verbatim. The store is never consulted.
func (c *Codec) Verify(credential string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(
		credential,
		&Claims{},
		func(t *jwt.Token) (any, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidCredential
	}
	return claims, nil
}
