package assetstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/openmined/syncfolders/internal/db"
	"github.com/openmined/syncfolders/internal/server/assetstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetstoreHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sqlDB, err := db.NewSqliteDB()
	require.NoError(t, err)
	defer sqlDB.Close()

	svc, err := assetstore.NewAssetstoreService(sqlDB)
	require.NoError(t, err)
	fs, err := svc.EnsureDefault(context.Background(), "/srv/assets")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/assetstore", New(svc).List)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/assetstore", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Assetstores []assetstore.Assetstore `json:"assetstores"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Assetstores, 1)
	assert.Equal(t, fs.ID, body.Assetstores[0].ID)
	assert.Equal(t, assetstore.TypeFilesystem, body.Assetstores[0].Type)
}
