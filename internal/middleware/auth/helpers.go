package auth

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_catalog/internal/identity"
	"github.com/Skotchmaster/product_catalog/internal/logging"
)

const bearerKeyword = "Bearer"

// Authenticator turns an access token into a caller.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*identity.Caller, error)
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
// ok is false when the header is absent; a malformed header yields ok and an
// empty token.
func bearerToken(c echo.Context) (token string, ok bool) {
	header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	if header == "" {
		return "", false
	}
	scheme, rest, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, bearerKeyword) {
		return "", true
	}
	return strings.TrimSpace(rest), true
}

func setUserContext(c echo.Context, caller *identity.Caller) {
	identity.Set(c, caller)

	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("user_id", caller.ID)
	c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))
}
