package middleware

import (
	"context"
	"time"

	"github.com/jordanlanch/leadboard/pkg/api/errors"
	"github.com/jordanlanch/leadboard/pkg/auth"
	"github.com/jordanlanch/leadboard/pkg/domain"
	"github.com/jordanlanch/leadboard/pkg/logger"
	"github.com/labstack/echo/v4"
)

// Context keys set by SessionGate
const (
	identityKey = "identity"
	tokenKey    = "token"
)

// verifyTimeout bounds the revocation-list lookup
const verifyTimeout = 5 * time.Second

// SessionVerifier resolves a session cookie to an identity
type SessionVerifier interface {
	CookieName() string
	Verify(ctx context.Context, token string) (auth.Identity, error)
}

// SessionGate rejects requests without a valid session cookie and stores the
// caller's identity in the echo context
func SessionGate(sessions SessionVerifier, log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var token string
			if cookie, err := c.Cookie(sessions.CookieName()); err == nil {
				token = cookie.Value
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), verifyTimeout)
			defer cancel()

			id, err := sessions.Verify(ctx, token)
			if err != nil {
				if domain.IsNotAuthenticated(err) || domain.IsSessionExpired(err) {
					return errors.UnauthorizedError(c, err)
				}
				return errors.FromDomain(c, log, err)
			}

			// Store token in context for logout
			c.Set(tokenKey, token)
			SetIdentity(c, id)

			return next(c)
		}
	}
}

// SetIdentity stores the authenticated identity in the echo context
func SetIdentity(c echo.Context, id auth.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the identity stored by SessionGate
func IdentityFrom(c echo.Context) (auth.Identity, bool) {
	id, ok := c.Get(identityKey).(auth.Identity)
	return id, ok && id.UserID != ""
}

// TokenFrom returns the raw session token stored by SessionGate
func TokenFrom(c echo.Context) string {
	token, _ := c.Get(tokenKey).(string)
	return token
}
