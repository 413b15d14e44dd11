// Package session issues and verifies anonymous identities. A session
// is a signed token whose subject is a random UUID; there is no account
// behind it, the subject only ties candles to the browser that made
// them.
package session

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lumenmap/candles/pkg/errs"
)

// Identity is an authenticated anonymous caller. It is threaded
// explicitly through every call that needs one; nothing holds a
// process-wide current user.
type Identity struct {
	UserID   string
	IssuedAt time.Time
}

// Issuer mints and verifies anonymous session tokens (HS256).
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithTTL bounds token lifetime.
func WithTTL(ttl time.Duration) IssuerOption {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewIssuer creates an issuer. An empty secret gets replaced by a
// random ephemeral one, so a dev instance works out of the box but its
// sessions die with the process.
func NewIssuer(secret string, opts ...IssuerOption) *Issuer {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	i := &Issuer{
		secret: key,
		ttl:    30 * 24 * time.Hour,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue mints a fresh anonymous identity and its token. Re-issuance
// after expiry is just calling Issue again; the old subject is gone
// for good, which is the point of anonymous sessions.
func (i *Issuer) Issue(_ context.Context) (Identity, string, error) {
	now := i.now()
	id := Identity{UserID: uuid.NewString(), IssuedAt: now}

	claims := jwt.RegisteredClaims{
		Subject:   id.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Identity{}, "", errs.Wrap("session.issue", err)
	}
	return id, token, nil
}

// Verify parses a token back into the identity it was issued for.
func (i *Issuer) Verify(_ context.Context, token string) (Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return Identity{}, errs.WrapKind("session.verify", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return Identity{}, errs.NewKind("session.verify", ErrInvalidToken)
	}

	id := Identity{UserID: claims.Subject}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	return id, nil
}
