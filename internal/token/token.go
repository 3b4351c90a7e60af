package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for malformed, badly signed, and expired tokens
// alike. Callers are not told which of the three occurred.
var ErrInvalidToken = errors.New("invalid token")

// Codec issues and validates signed identity tokens. Tokens are stateless:
// there is no revocation list, so a token stays valid until natural expiry.
type Codec struct {
	secret  []byte
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewCodec constructs a Codec signing with the provided secret. The TTL bounds
// how long an issued token is accepted.
func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret must not be empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Codec{secret: []byte(secret), ttl: ttl, nowFunc: time.Now}, nil
}

// Issue creates a signed token carrying username as its subject.
func (c *Codec) Issue(username string) (string, error) {
	if username == "" {
		return "", errors.New("token: username must be provided")
	}

	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature and expiry and returns the embedded subject.
// All failure modes collapse to ErrInvalidToken.
func (c *Codec) Validate(raw string) (string, error) {
	if raw == "" {
		return "", ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// TTL reports the lifetime applied to issued tokens.
func (c *Codec) TTL() time.Duration { return c.ttl }

// WithNowFunc overrides the time source. Tests only.
func (c *Codec) WithNowFunc(now func() time.Time) { c.nowFunc = now }

func (c *Codec) now() time.Time {
	if c.nowFunc != nil {
		return c.nowFunc()
	}
	return time.Now()
}
