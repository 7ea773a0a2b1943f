package testutil

import (
	"testing"
	"time"

	"github.com/suteetoe/grantdesk/pkg/jwtutil"
)

// SigningKey is the session secret used across tests.
const SigningKey = "test-signing-key"

// JWT returns the token utility tests sign sessions with.
func JWT() *jwtutil.JWTUtil {
	return jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: SigningKey, TTL: time.Hour})
}

// Token signs a session token for the principal.
func Token(t *testing.T, userID string) string {
	t.Helper()

	token, err := JWT().GenerateToken(userID, userID+"@example.org")
	if err != nil {
		t.Fatalf("sign session token: %v", err)
	}
	return token
}
