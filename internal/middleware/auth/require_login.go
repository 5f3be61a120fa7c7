package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_catalog/internal/identity"
	"github.com/Skotchmaster/product_catalog/internal/logging"
)

type ValidatorFunc func(c echo.Context, caller *identity.Caller) error

type BearerMiddleware struct {
	Auth Authenticator
}

func NewBearerMiddleware(a Authenticator) *BearerMiddleware {
	return &BearerMiddleware{Auth: a}
}

// Optional identifies the caller when a valid token is sent and lets every
// other request through as anonymous.
func (m *BearerMiddleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c)
		if !ok || token == "" {
			return next(c)
		}

		caller, err := m.Auth.Authenticate(c.Request().Context(), token)
		if err != nil {
			l := logging.FromContext(c.Request().Context())
			l.Debug("optional_auth_ignored", "error", err)
			return next(c)
		}

		setUserContext(c, caller)
		return next(c)
	}
}

func (m *BearerMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *BearerMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "auth")

		token, ok := bearerToken(c)
		if !ok {
			l.Warn("auth_failed", "status", 401, "reason", "missing access token")
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
		}
		if token == "" {
			l.Warn("auth_failed", "status", 401, "reason", "malformed authorization header")
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}

		caller, err := m.Auth.Authenticate(ctx, token)
		if err != nil {
			l.Warn("auth_failed", "status", 401, "reason", "invalid access token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		if validator != nil {
			if err := validator(c, caller); err != nil {
				l.Warn("auth_failed", "status", http.StatusForbidden, "reason", err.Error(), "user_id", caller.ID)
				return err
			}
		}

		setUserContext(c, caller)
		return next(c)
	}
}
