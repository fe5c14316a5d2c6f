package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jordanlanch/leadboard/pkg/api/errors"
	"github.com/jordanlanch/leadboard/pkg/api/middleware"
	"github.com/jordanlanch/leadboard/pkg/auth"
	"github.com/jordanlanch/leadboard/pkg/domain"
	"github.com/jordanlanch/leadboard/pkg/logger"
	"github.com/jordanlanch/leadboard/pkg/metrics"
	"github.com/jordanlanch/leadboard/pkg/models"
	"github.com/jordanlanch/leadboard/pkg/users"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	users    *users.Service
	sessions *auth.Sessions
	metrics  *metrics.Metrics
	logger   logger.Logger
	timeout  time.Duration
}

// NewAuthHandler creates a new auth handler; m may be nil
func NewAuthHandler(userService *users.Service, sessions *auth.Sessions, m *metrics.Metrics, log logger.Logger, timeout time.Duration) *AuthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthHandler{
		users:    userService,
		sessions: sessions,
		metrics:  m,
		logger:   log.With("component", "auth_handler"),
		timeout:  timeout,
	}
}

// Register creates an account and starts a session
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, h.logger, err)
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	user, err := h.users.Register(ctx, req)
	if err != nil {
		return errors.FromDomain(c, h.logger, err)
	}

	if h.metrics != nil {
		h.metrics.RecordUserRegistered()
	}

	if err := h.startSession(c, user); err != nil {
		return errors.InternalError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, models.UserInfo{ID: user.ID, Email: user.Email})
}

// Login authenticates the user and sets the session cookie
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, h.logger, err)
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	user, err := h.users.Authenticate(ctx, req)
	if h.metrics != nil {
		h.metrics.RecordLoginAttempt(err == nil)
	}
	if err != nil {
		return errors.FromDomain(c, h.logger, err)
	}

	if err := h.startSession(c, user); err != nil {
		return errors.InternalError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, models.UserInfo{ID: user.ID, Email: user.Email})
}

// Logout revokes the current token and clears the cookie. It succeeds even
// without a session so the browser always ends up logged out.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(h.sessions.CookieName()); err == nil && cookie.Value != "" {
		ctx, cancel := requestContext(c, h.timeout)
		defer cancel()

		if err := h.sessions.Revoke(ctx, cookie.Value); err != nil {
			h.logger.Warn("failed to revoke session", "error", err)
		}
	}

	c.SetCookie(h.sessions.Clear())
	return c.JSON(http.StatusOK, models.MessageResponse{Message: "Logged out successfully"})
}

// Me returns the user behind the session
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return errors.UnauthorizedError(c, nil)
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	user, err := h.users.GetByID(ctx, id.UserID)
	if err != nil {
		// account removed after the token was issued
		if domain.IsNotFound(err) {
			return errors.UnauthorizedError(c, err)
		}
		return errors.FromDomain(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, models.UserInfo{ID: user.ID, Email: user.Email})
}

func (h *AuthHandler) startSession(c echo.Context, user *models.User) error {
	cookie, err := h.sessions.Issue(auth.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	return nil
}

// requestContext derives the per-request deadline for service calls
func requestContext(c echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(c.Request().Context(), timeout)
}
