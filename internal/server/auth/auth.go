package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AuthService struct {
	config *Config
	admins mapset.Set[string]
}

func NewAuthService(config *Config) *AuthService {
	admins := mapset.NewSet[string]()
	for _, a := range config.Admins {
		if a = strings.TrimSpace(a); a != "" {
			admins.Add(a)
		}
	}
	return &AuthService{
		config: config,
		admins: admins,
	}
}

func (s *AuthService) IsEnabled() bool {
	return s.config.Enabled
}

// IsAdmin reports whether the user is a configured site admin
func (s *AuthService) IsAdmin(user string) bool {
	return s.admins.Contains(user)
}

// IssueAccessToken mints an access token for subject. Tokens are handed out
// by an operator through the server's token command.
func (s *AuthService) IssueAccessToken(subject string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrAuthDisabled
	}
	if strings.TrimSpace(subject) == "" {
		return "", ErrInvalidSubject
	}

	token, err := newAccessToken(subject, s.config.TokenIssuer, s.config.AccessTokenSecret, s.config.AccessTokenExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	slog.Debug("access token issued", "subject", subject, "expiry", s.config.AccessTokenExpiry)
	return token, nil
}

func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*Claims, error) {
	if accessToken == "" {
		return nil, ErrInvalidAccessToken
	}

	claims, err := ParseClaims(accessToken, s.config.AccessTokenSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAccessToken, err)
	}

	if claims.Type != AccessToken {
		return nil, fmt.Errorf("%w: wrong token type got %q", ErrInvalidAccessToken, claims.Type)
	}

	if claims.Issuer != s.config.TokenIssuer {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidAccessToken, claims.Issuer)
	}

	return claims, nil
}

func newAccessToken(subject, issuer, jwtSecret string, expiry time.Duration) (string, error) {
	var expiryTime *jwt.NumericDate

	if expiry > 0 {
		expiryTime = jwt.NewNumericDate(time.Now().Add(expiry))
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subject,
			Issuer:    issuer,
			ExpiresAt: expiryTime,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Type: AccessToken,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}
