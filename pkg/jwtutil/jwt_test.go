package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "test-key", Issuer: "idp", TTL: time.Hour})

	token, err := util.GenerateToken("user-1", "a@example.org")
	require.NoError(t, err)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@example.org", claims.Email)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	token, err := NewJWTUtil(&JWTConfig{SigningKey: "one"}).GenerateToken("user-1", "")
	require.NoError(t, err)

	_, err = NewJWTUtil(&JWTConfig{SigningKey: "two"}).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "k"})
	claims := SessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = util.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	token, err := NewJWTUtil(&JWTConfig{SigningKey: "k", Issuer: "other"}).GenerateToken("user-1", "")
	require.NoError(t, err)

	_, err = NewJWTUtil(&JWTConfig{SigningKey: "k", Issuer: "idp"}).ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestValidateRejectsMissingSubject(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{Email: "x@example.org"}).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewJWTUtil(&JWTConfig{SigningKey: "k"}).ValidateToken(token)
	assert.Error(t, err)
}

func TestNilConfig(t *testing.T) {
	util := NewJWTUtil(nil)
	_, err := util.GenerateToken("u", "")
	assert.Error(t, err)
	_, err = util.ValidateToken("x")
	assert.Error(t, err)
}
