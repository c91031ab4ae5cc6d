package notification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/openmined/syncfolders/internal/server/events"
	"github.com/openmined/syncfolders/internal/server/progress"
	"github.com/openmined/syncfolders/internal/syncfolder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(bus *events.Bus, tracker *progress.Tracker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(bus, tracker)
	r := gin.New()
	r.Use(func(ctx *gin.Context) {
		ctx.Set("user", ctx.Query("user"))
	})
	r.GET("/notification/progress/:id", h.Progress)
	r.GET("/notification/stream", h.Stream)
	return r
}

func TestNotificationHandler_Progress(t *testing.T) {
	tracker := progress.NewTracker(nil, time.Minute)
	r := setupRouter(events.NewBus(), tracker)

	pc := tracker.Start("alice@example.com", progress.SyncingTitle)
	pc.Update("Scanning host")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notification/progress/"+pc.ID()+"?user=alice@example.com", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var rec progress.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "Scanning host", rec.Message)
	assert.Equal(t, progress.StateActive, rec.State)

	// other users cannot see it
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notification/progress/"+pc.ID()+"?user=bob@example.com", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationHandler_Stream(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()
	srv := httptest.NewServer(setupRouter(bus, progress.NewTracker(bus, time.Minute)))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/notification/stream?user=alice@example.com"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	var hello struct {
		Type string `json:"type"`
	}
	require.NoError(t, wsjson.Read(ctx, conn, &hello))
	assert.Equal(t, EventConnected, hello.Type)

	bus.ForUser("bob@example.com").Notify("ignored", nil)
	bus.ForUser("alice@example.com").Notify(syncfolder.EventAssetstoreImported, &syncfolder.ImportedPayload{
		ID:         "item-1",
		Type:       "item",
		ImportPath: "/data/a.txt",
	})

	var got struct {
		Type string                     `json:"type"`
		User string                     `json:"user"`
		Data syncfolder.ImportedPayload `json:"data"`
	}
	require.NoError(t, wsjson.Read(ctx, conn, &got))
	assert.Equal(t, syncfolder.EventAssetstoreImported, got.Type)
	assert.Equal(t, "alice@example.com", got.User)
	assert.Equal(t, "item-1", got.Data.ID)
	assert.Equal(t, "/data/a.txt", got.Data.ImportPath)
}
