package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openmined/syncfolders/internal/server/handlers/api"
)

// Auth trusts the `user` query param. Only installed when token auth is
// disabled, for local development.
func Auth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, _ := ctx.GetQuery("user")
		if user == "" {
			api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, errors.New("query param 'user' is required"))
			return
		}

		ctx.Set(userContextKey, user)
		ctx.Next()
	}
}
