package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestToken(subject, issuer, secret string, expiry time.Duration, tokenType AuthTokenType) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Type: tokenType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func TestParseClaims_ValidToken(t *testing.T) {
	secret := "test-secret"
	token, err := createTestToken("user123", "issuer", secret, time.Minute, AccessToken)
	assert.NoError(t, err)

	claims, err := ParseClaims(token, secret)
	require.NoError(t, err)
	require.NotNil(t, claims)
	assert.Equal(t, "user123", claims.Subject)
	assert.Equal(t, AccessToken, claims.Type)
	assert.Equal(t, "issuer", claims.Issuer)
}

func TestParseClaims_InvalidToken(t *testing.T) {
	_, err := ParseClaims("invalid.token.string", "test-secret")
	assert.Error(t, err)
}

func TestParseClaims_WrongSecret(t *testing.T) {
	token, err := createTestToken("user123", "issuer", "test-secret", time.Minute, AccessToken)
	require.NoError(t, err)

	_, err = ParseClaims(token, "wrong-secret")
	assert.Error(t, err)
}

func TestParseClaims_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{Type: AccessToken, RegisteredClaims: jwt.RegisteredClaims{Subject: "user123"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ParseClaims(token, "test-secret")
	assert.Error(t, err)
}
