package token

import (
	"errors"
	"time"

	"github.com/dharohar/dharohar/internal/user"
	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingSecret = errors.New("session signing secret is empty")

// Codec turns session claims into an HMAC-SHA256-signed envelope and
// back. Encode and Decode are pure functions of their input, the
// secret, and the clock.
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewCodec(secret string, ttl time.Duration, issuer string) (*Codec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// WithClock overrides the codec's time source. Tests only.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}

func (c *Codec) Encode(subjectID, email string, role user.Role) (string, error) {
	issuedAt := c.now().UTC()
	claims := &Claims{
		Sub:   subjectID,
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies the token and returns its claims, or nil when the
// token is malformed, forged, expired, or signed with anything but the
// pinned algorithm. Callers treat nil uniformly as "no session"; the
// reason for rejection is never surfaced.
func (c *Codec) Decode(tokenString string) *Claims {
	if tokenString == "" {
		return nil
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)

	var claims Claims
	tkn, err := parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil
	}
	if claims.Sub == "" || claims.Role == "" {
		return nil
	}
	if c.issuer != "" && claims.Issuer != c.issuer {
		return nil
	}
	return &claims
}
