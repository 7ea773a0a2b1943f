package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/grantdesk/internal/identity"
	"github.com/suteetoe/grantdesk/internal/model"
)

const principalKey = "principal"

// SetPrincipal stores the resolved principal in the echo context.
func SetPrincipal(c echo.Context, p *model.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the principal of the request, or nil.
func PrincipalFrom(c echo.Context) *model.Principal {
	p, _ := c.Get(principalKey).(*model.Principal)
	return p
}

// PrincipalID returns the principal's ID, or "" for anonymous requests.
func PrincipalID(c echo.Context) string {
	if p := PrincipalFrom(c); p != nil {
		return p.ID
	}
	return ""
}

// RequirePrincipal returns the principal or identity.ErrUnauthorized.
func RequirePrincipal(c echo.Context) (*model.Principal, error) {
	p := PrincipalFrom(c)
	if p == nil {
		return nil, identity.ErrUnauthorized
	}
	return p, nil
}
