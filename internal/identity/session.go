package identity

import (
	"context"
	"fmt"
	"net/http"

	"github.com/suteetoe/grantdesk/internal/model"
	"github.com/suteetoe/grantdesk/pkg/jwtutil"
)

// SessionProvider verifies session tokens locally with the secret shared
// with the identity provider.
type SessionProvider struct {
	jwt        *jwtutil.JWTUtil
	cookieName string
}

// NewSessionProvider creates a SessionProvider.
func NewSessionProvider(jwt *jwtutil.JWTUtil, cookieName string) *SessionProvider {
	return &SessionProvider{jwt: jwt, cookieName: cookieName}
}

func (p *SessionProvider) Resolve(_ context.Context, r *http.Request) (*model.Principal, error) {
	token := TokenFromRequest(r, p.cookieName)
	if token == "" {
		return nil, ErrNoSession
	}

	claims, err := p.jwt.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	return newPrincipal(claims.Subject, claims.Email)
}
