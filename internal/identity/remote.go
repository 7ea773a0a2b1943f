package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/suteetoe/grantdesk/internal/model"
	"go.uber.org/zap"
)

// RemoteProvider asks the identity provider's user endpoint who a session
// token belongs to.
type RemoteProvider struct {
	BaseURL    string
	CookieName string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type remoteUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// NewRemoteProvider creates a RemoteProvider.
func NewRemoteProvider(baseURL, cookieName string, timeout time.Duration, logger *zap.Logger) *RemoteProvider {
	return &RemoteProvider{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		CookieName: cookieName,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	}
}

func (p *RemoteProvider) Resolve(ctx context.Context, r *http.Request) (*model.Principal, error) {
	token := TokenFromRequest(r, p.CookieName)
	if token == "" {
		return nil, ErrNoSession
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		p.Logger.Error("Identity provider request failed", zap.Error(err))
		return nil, fmt.Errorf("identity provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("read identity provider response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrNoSession
	default:
		p.Logger.Error("Identity provider returned an unexpected status",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(body)))
		return nil, fmt.Errorf("identity provider returned %d", resp.StatusCode)
	}

	var user remoteUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("parse identity provider response: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("identity provider returned a user without id")
	}
	return newPrincipal(user.ID, user.Email)
}
