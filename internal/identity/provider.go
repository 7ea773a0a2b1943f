package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/suteetoe/grantdesk/internal/model"
)

var (
	// ErrNoSession means the request carries no usable session: no token,
	// or one the identity provider does not recognize.
	ErrNoSession = errors.New("no session")

	// ErrUnauthorized is returned by handlers that require a principal
	// when none was resolved.
	ErrUnauthorized = errors.New("Unauthorized")
)

// Provider resolves the principal behind a request.
type Provider interface {
	Resolve(ctx context.Context, r *http.Request) (*model.Principal, error)
}

// newPrincipal builds the principal for a verified subject. A subject wider
// than the owner columns cannot own anything, so it is no session.
func newPrincipal(id, email string) (*model.Principal, error) {
	if len(id) > model.MaxPrincipalIDLen {
		return nil, fmt.Errorf("%w: subject exceeds %d characters", ErrNoSession, model.MaxPrincipalIDLen)
	}
	return &model.Principal{ID: id, Email: email}, nil
}

// TokenFromRequest returns the session token from the named cookie, falling
// back to an "Authorization: Bearer" header.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if cookieName != "" {
		if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
			return cookie.Value
		}
	}

	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
