package middleware

import (
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var ErrNoIdentity = errors.New("unauthorized")

// UserID returns the caller id placed in the context by RequireAuth.
func UserID(c echo.Context) (uuid.UUID, error) {
	s, ok := c.Get(ctxUserID).(string)
	if !ok || s == "" {
		return uuid.Nil, ErrNoIdentity
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrNoIdentity
	}
	return id, nil
}

func IsAdmin(c echo.Context) bool {
	role, _ := c.Get(ctxRole).(string)
	return role == tokens.RoleAdmin
}

// SetIdentity is what RequireAuth does on success. Handler tests use it.
func SetIdentity(c echo.Context, userID uuid.UUID, role string) {
	c.Set(ctxUserID, userID.String())
	c.Set(ctxRole, role)
}
