package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openmined/syncfolders/internal/server/acl"
	"github.com/openmined/syncfolders/internal/server/assetstore"
	"github.com/openmined/syncfolders/internal/server/tree"
	"github.com/openmined/syncfolders/internal/syncfolder"
)

func AbortWithError(ctx *gin.Context, status int, code string, err error) {
	ctx.Abort()
	ctx.Error(err)
	ctx.PureJSON(status, APIError{
		Code:    code,
		Message: err.Error(),
	})
}

// AbortWithServiceError picks the status and code for an error returned by
// a service
func AbortWithServiceError(ctx *gin.Context, err error) {
	status, code := Classify(err)
	AbortWithError(ctx, status, code, err)
}

func Classify(err error) (int, string) {
	var notFound *syncfolder.NotFoundError
	switch {
	case errors.Is(err, syncfolder.ErrValidation), errors.Is(err, tree.ErrInvalidName):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, acl.ErrAccessDenied):
		return http.StatusForbidden, CodeAccessDenied
	case errors.Is(err, tree.ErrFolderNotFound):
		return http.StatusNotFound, CodeFolderNotFound
	case errors.Is(err, assetstore.ErrAssetstoreNotFound):
		return http.StatusNotFound, CodeAssetstoreNotFound
	case errors.As(err, &notFound):
		if notFound.Kind == "item" {
			return http.StatusNotFound, CodeItemNotFound
		}
		return http.StatusNotFound, CodeFolderNotFound
	case errors.Is(err, tree.ErrItemNotFound):
		return http.StatusNotFound, CodeItemNotFound
	case errors.Is(err, syncfolder.ErrIO):
		return http.StatusInternalServerError, CodeSyncHostIO
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}

// User is the identity set by the auth middleware
func User(ctx *gin.Context) string {
	return ctx.GetString("user")
}
