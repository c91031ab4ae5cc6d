package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/openmined/syncfolders/internal/server/acl"
	"github.com/openmined/syncfolders/internal/server/tree"
	"github.com/openmined/syncfolders/internal/syncfolder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{syncfolder.NewValidationError("importPath", "bad"), http.StatusBadRequest, CodeInvalidRequest},
		{fmt.Errorf("wrap: %w", acl.ErrAccessDenied), http.StatusForbidden, CodeAccessDenied},
		{fmt.Errorf("%w: x", tree.ErrFolderNotFound), http.StatusNotFound, CodeFolderNotFound},
		{&syncfolder.NotFoundError{Kind: "item", Path: "a/b"}, http.StatusNotFound, CodeItemNotFound},
		{&syncfolder.NotFoundError{Kind: "folder", Path: "a"}, http.StatusNotFound, CodeFolderNotFound},
		{&syncfolder.IOError{Path: "/x", Err: errors.New("denied")}, http.StatusInternalServerError, CodeSyncHostIO},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		status, code := Classify(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}

func TestAbortWithServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	AbortWithServiceError(ctx, syncfolder.NewValidationError("value", "Checksum size must be an integer"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, ctx.IsAborted())

	var body APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, CodeInvalidRequest, body.Code)
	assert.Equal(t, "value: Checksum size must be an integer", body.Message)
}
