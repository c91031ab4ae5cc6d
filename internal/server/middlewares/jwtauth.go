package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/openmined/syncfolders/internal/server/auth"
	"github.com/openmined/syncfolders/internal/server/handlers/api"
)

const (
	bearerPrefix   = "Bearer "
	authHeader     = "Authorization"
	tokenQuery     = "token"
	userContextKey = "user"
)

// JWTAuth validates access tokens and stores their subject as the request
// user. Browsers cannot set headers on websocket upgrades, so the token may
// also come from the `token` query param.
func JWTAuth(authService *auth.AuthService) gin.HandlerFunc {
	if !authService.IsEnabled() {
		slog.Info("auth middleware disabled")
		return Auth()
	}
	slog.Info("auth middleware enabled")

	return func(ctx *gin.Context) {
		tokenString, err := bearerToken(ctx)
		if err != nil {
			api.AbortWithError(ctx, http.StatusUnauthorized, api.CodeUnauthorized, err)
			return
		}

		claims, err := authService.ValidateAccessToken(ctx, tokenString)
		if err != nil {
			api.AbortWithError(ctx, http.StatusUnauthorized, api.CodeUnauthorized, err)
			return
		}

		ctx.Set(userContextKey, claims.Subject)
		ctx.Next()
	}
}

func bearerToken(ctx *gin.Context) (string, error) {
	value := ctx.GetHeader(authHeader)
	if value == "" {
		if token := ctx.Query(tokenQuery); token != "" {
			return token, nil
		}
		return "", errors.New("Authorization header is missing")
	}

	if !strings.HasPrefix(value, bearerPrefix) {
		return "", errors.New("Authorization header format must be Bearer {token}")
	}

	token := strings.TrimPrefix(value, bearerPrefix)
	if token == "" {
		return "", errors.New("token is missing")
	}
	return token, nil
}
