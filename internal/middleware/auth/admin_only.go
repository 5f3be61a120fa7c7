package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_catalog/internal/identity"
	"github.com/Skotchmaster/product_catalog/internal/models"
)

// MethodPerms maps request methods to the product permissions they need.
// Methods missing from the map need none.
var MethodPerms = map[string][]string{
	http.MethodGet:    {models.PermAddProduct},
	http.MethodPost:   {models.PermChangeProduct},
	http.MethodPut:    {models.PermChangeProduct},
	http.MethodPatch:  {models.PermChangeProduct},
	http.MethodDelete: {models.PermDeleteProduct},
}

func requireStaff(_ echo.Context, caller *identity.Caller) error {
	if !caller.Staff() {
		return echo.NewHTTPError(http.StatusForbidden, "you do not have permission to perform this action")
	}
	return nil
}

func requireMethodPerms(c echo.Context, caller *identity.Caller) error {
	if !caller.HasPerm(MethodPerms[c.Request().Method]...) {
		return echo.NewHTTPError(http.StatusForbidden, "you do not have permission to perform this action")
	}
	return nil
}

// RequireStaff admits authenticated staff users only.
func (m *BearerMiddleware) RequireStaff(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, requireStaff)
}

// RequireStaffPerms admits staff users holding the permissions MethodPerms
// lists for the request method.
func (m *BearerMiddleware) RequireStaffPerms(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(c echo.Context, caller *identity.Caller) error {
		if err := requireStaff(c, caller); err != nil {
			return err
		}
		return requireMethodPerms(c, caller)
	})
}
