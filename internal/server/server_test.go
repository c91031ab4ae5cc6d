package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/openmined/syncfolders/internal/server/assetstore"
	"github.com/openmined/syncfolders/internal/server/auth"
	"github.com/openmined/syncfolders/internal/server/settings"
	"github.com/openmined/syncfolders/internal/syncfolder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const admin = "admin@example.com"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := validConfig(t)
	cfg.Auth = auth.Config{Admins: []string{admin}}
	require.NoError(t, os.WriteFile(cfg.SettingsPath(), []byte(settings.KeyChecksumSizeLimit+": 8\n"), 0o644))

	srv, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, srv.svc.Start(context.Background()))
	t.Cleanup(func() { srv.Stop(context.Background()) })
	return srv
}

func call(t *testing.T, h http.Handler, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if out != nil && w.Code < 300 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, call(t, srv.Handler(), http.MethodGet, "/healthz", nil, &body))
	assert.Equal(t, "ok", body["status"])

	assert.Equal(t, http.StatusNotFound, call(t, srv.Handler(), http.MethodGet, "/nope", nil, nil))
}

func TestServer_ImportFlow(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()
	q := "?user=" + admin

	host := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(host, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(host, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(host, "sub", "b.txt"), []byte("bb"), 0o644))

	var stores struct {
		Assetstores []assetstore.Assetstore `json:"assetstores"`
	}
	require.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/api/v1/assetstore"+q, nil, &stores))
	require.Len(t, stores.Assetstores, 1)
	fsID := stores.Assetstores[0].ID

	var folder struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusCreated, call(t, h, http.MethodPost, "/api/v1/folder"+q, map[string]any{"name": "sync"}, &folder))

	importReq := map[string]any{
		"dataType":        "syncFolder",
		"destinationId":   folder.ID,
		"destinationType": "folder",
		"importPath":      host,
	}
	var res syncfolder.Result
	require.Equal(t, http.StatusOK, call(t, h, http.MethodPost, "/api/v1/assetstore/"+fsID+"/import"+q, importReq, &res))
	assert.Equal(t, 2, res.Created)

	var files struct {
		Files []struct {
			RelPath  string `json:"relPath"`
			Checksum string `json:"checksum"`
		} `json:"files"`
	}
	require.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/api/v1/folder/"+folder.ID+"/files"+q, nil, &files))
	require.Len(t, files.Files, 2)
	assert.Equal(t, "a.txt", files.Files[0].RelPath)
	assert.Equal(t, "sub/b.txt", files.Files[1].RelPath)
	assert.NotEmpty(t, files.Files[0].Checksum)

	// second run is a no-op
	res = syncfolder.Result{}
	require.Equal(t, http.StatusOK, call(t, h, http.MethodPost, "/api/v1/assetstore/"+fsID+"/import"+q, importReq, &res))
	assert.False(t, res.Changed())

	var history struct {
		Sessions []struct {
			Status  string `json:"status"`
			Created int    `json:"created"`
		} `json:"sessions"`
	}
	require.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/api/v1/sync/history"+q, nil, &history))
	require.Len(t, history.Sessions, 2)
	assert.Equal(t, "success", history.Sessions[0].Status)
	assert.Equal(t, 2, history.Sessions[0].Created)
	assert.Zero(t, history.Sessions[1].Created)

	// the seeded setting is visible to the admin
	var limit int64
	require.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/api/v1/system/setting"+q+"&key="+settings.KeyChecksumSizeLimit, nil, &limit))
	assert.Equal(t, int64(8), limit)
}

func TestServer_ImportRejectsBadDestinationType(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()
	q := "?user=" + admin

	var folder struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusCreated, call(t, h, http.MethodPost, "/api/v1/folder"+q, map[string]any{"name": "sync"}, &folder))

	code := call(t, h, http.MethodPost, "/api/v1/assetstore/x/import"+q, map[string]any{
		"dataType":        "syncFolder",
		"destinationId":   folder.ID,
		"destinationType": "collection",
		"importPath":      t.TempDir(),
	}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	// no user when auth is disabled
	assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodGet, "/api/v1/assetstore", nil, nil))
}
