// Package auth issues and checks the bearer tokens that guard the admin routes.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/starquake/kioskquiz/internal/httputil"
	"github.com/starquake/kioskquiz/internal/logging"
)

const (
	issuer       = "kioskquiz"
	subject      = "admin"
	bearerPrefix = "Bearer "
)

var (
	// ErrInvalidPassword is returned by Login when the password does not match.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidToken is returned by Verify when the token is malformed, expired or signed with another key.
	ErrInvalidToken = errors.New("invalid token")
	// ErrDisabled is returned by Login when no token secret is configured.
	ErrDisabled = errors.New("admin authentication is disabled")
)

// Tokens issues and verifies HS256 admin tokens.
// The zero value, and a Tokens without a secret, accepts every request.
type Tokens struct {
	secret   []byte
	password string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokens creates a new Tokens. An empty secret disables authentication.
func NewTokens(secret, password string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), password: password, ttl: ttl, now: time.Now}
}

// WithClock replaces the clock used for issuing and verifying tokens.
func (t *Tokens) WithClock(now func() time.Time) *Tokens {
	t.now = now

	return t
}

// Enabled reports whether tokens are required.
func (t *Tokens) Enabled() bool {
	return t != nil && len(t.secret) > 0
}

// Login returns a signed token and its expiry when password is the admin password.
func (t *Tokens) Login(password string) (string, time.Time, error) {
	if !t.Enabled() {
		return "", time.Time{}, ErrDisabled
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(t.password)) != 1 {
		return "", time.Time{}, ErrInvalidPassword
	}

	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify checks that token was issued by t and has not expired.
func (t *Tokens) Verify(token string) error {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}

	return nil
}

// RequireAdmin wraps next so that it only runs with a valid bearer token.
// When t is not enabled next is returned unchanged.
func RequireAdmin(logger *slog.Logger, t *Tokens, next http.Handler) http.Handler {
	if !t.Enabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok || token == "" {
			httputil.Error(w, logger, r, http.StatusUnauthorized, "Authorization header must be in the format: Bearer {token}")

			return
		}

		if err := t.Verify(token); err != nil {
			logger.WarnContext(r.Context(), "rejected admin token", logging.ErrAttr(err))
			httputil.Error(w, logger, r, http.StatusUnauthorized, "Invalid or expired token")

			return
		}

		next.ServeHTTP(w, r)
	})
}
