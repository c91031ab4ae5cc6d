package system

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/openmined/syncfolders/internal/server/handlers/api"
	"github.com/openmined/syncfolders/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminSet map[string]bool

func (a adminSet) IsAdmin(user string) bool { return a[user] }

func serveStatus(t *testing.T, dataDir, user string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(ctx *gin.Context) { ctx.Set("user", user) })
	r.GET("/system/status", New(dataDir, adminSet{"admin@example.com": true}).Status)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/system/status", nil))
	return w
}

func TestStatus(t *testing.T) {
	dir := t.TempDir()
	w := serveStatus(t, dir, "admin@example.com")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, version.Version, res.Version)
	assert.False(t, res.StartedAt.IsZero())
	if assert.NotNil(t, res.Disk) {
		assert.NotZero(t, res.Disk.Total)
		assert.NotEmpty(t, res.Disk.FreeHuman)
	}
}

func TestStatus_MissingDataDir(t *testing.T) {
	w := serveStatus(t, "/definitely/not/here", "admin@example.com")
	require.Equal(t, http.StatusOK, w.Code)

	var res StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Nil(t, res.Disk)
}

func TestStatus_NonAdmin(t *testing.T) {
	w := serveStatus(t, t.TempDir(), "bob@example.com")
	assert.Equal(t, http.StatusForbidden, w.Code)

	var body api.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, api.CodeAccessDenied, body.Code)
}
