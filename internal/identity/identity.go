package identity

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_catalog/internal/models"
)

const contextKey = "caller"

// Caller is the resolved identity of a request. A nil *Caller is anonymous.
type Caller struct {
	ID          uint
	Username    string
	IsStaff     bool
	IsSuperuser bool
	Permissions map[string]struct{}
}

func FromUser(u *models.User) *Caller {
	perms := make(map[string]struct{}, len(u.Permissions))
	for _, p := range u.Permissions {
		perms[p.Codename] = struct{}{}
	}
	return &Caller{
		ID:          u.ID,
		Username:    u.Username,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		Permissions: perms,
	}
}

func (c *Caller) Authenticated() bool {
	return c != nil && c.ID != 0
}

func (c *Caller) Superuser() bool {
	return c.Authenticated() && c.IsSuperuser
}

func (c *Caller) Staff() bool {
	return c.Authenticated() && c.IsStaff
}

// HasPerm reports whether the caller holds every code. Active superusers hold all permissions.
func (c *Caller) HasPerm(codes ...string) bool {
	if !c.Authenticated() {
		return false
	}
	if c.IsSuperuser {
		return true
	}
	for _, code := range codes {
		if _, ok := c.Permissions[code]; !ok {
			return false
		}
	}
	return true
}

func Set(c echo.Context, caller *Caller) {
	c.Set(contextKey, caller)
}

func Get(c echo.Context) *Caller {
	if caller, ok := c.Get(contextKey).(*Caller); ok {
		return caller
	}
	return nil
}
