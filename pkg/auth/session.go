package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jordanlanch/leadboard/pkg/domain"
)

// Identity is the authenticated caller. Services receive Identity.UserID
// explicitly as the owner of every lead they touch.
type Identity struct {
	UserID string
	Email  string
}

// SessionConfig controls token lifetime and the session cookie
type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	// Secure marks the cookie Secure with SameSite=None (production, cross-site dashboard);
	// otherwise SameSite=Lax over plain http.
	Secure bool
}

// Sessions issues, verifies and revokes cookie sessions
type Sessions struct {
	cfg       SessionConfig
	blacklist *TokenBlacklist
}

// NewSessions creates a session gate; blacklist may be nil to disable revocation
func NewSessions(cfg SessionConfig, blacklist *TokenBlacklist) *Sessions {
	if cfg.CookieName == "" {
		cfg.CookieName = "token"
	}
	return &Sessions{cfg: cfg, blacklist: blacklist}
}

// CookieName is the name of the session cookie
func (s *Sessions) CookieName() string {
	return s.cfg.CookieName
}

// Issue signs a token for the user and wraps it in the session cookie
func (s *Sessions) Issue(id Identity) (*http.Cookie, error) {
	token, err := GenerateJWT(id.UserID, id.Email, s.cfg.Secret, s.cfg.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return s.cookie(token, int(s.cfg.TTL.Seconds())), nil
}

// Clear returns a cookie that deletes the session cookie in the browser
func (s *Sessions) Clear() *http.Cookie {
	c := s.cookie("", -1)
	c.Expires = time.Unix(0, 0)
	return c
}

// Verify resolves a raw token to an Identity. Failures are domain errors:
// SESSION_EXPIRED for expired tokens, NOT_AUTHENTICATED otherwise.
func (s *Sessions) Verify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, domain.NewNotAuthenticatedError(nil)
	}

	claims, err := ValidateJWT(token, s.cfg.Secret)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return Identity{}, domain.NewSessionExpiredError(err)
		}
		return Identity{}, domain.NewNotAuthenticatedError(err)
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, token)
		if err != nil {
			return Identity{}, domain.NewInternalError(fmt.Errorf("failed to check blacklist: %w", err))
		}
		if revoked {
			return Identity{}, domain.NewNotAuthenticatedError(ErrTokenRevoked)
		}
	}

	return Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// Revoke blacklists token for the rest of its lifetime. Invalid or expired
// tokens are already unusable and are ignored.
func (s *Sessions) Revoke(ctx context.Context, token string) error {
	if s.blacklist == nil || token == "" {
		return nil
	}
	claims, err := ValidateJWT(token, s.cfg.Secret)
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.blacklist.Add(ctx, token, time.Until(claims.ExpiresAt.Time))
}

func (s *Sessions) cookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if s.cfg.Secure {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}
