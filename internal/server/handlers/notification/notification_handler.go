package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/openmined/syncfolders/internal/server/events"
	"github.com/openmined/syncfolders/internal/server/handlers/api"
	"github.com/openmined/syncfolders/internal/server/progress"
	"github.com/openmined/syncfolders/internal/version"
)

const (
	// EventConnected is the first event on every stream
	EventConnected = "connected"

	writeTimeout   = 20 * time.Second
	pingInterval   = 30 * time.Second
	shutdownReason = "shutdown"
)

type NotificationHandler struct {
	bus     *events.Bus
	tracker *progress.Tracker
}

func New(bus *events.Bus, tracker *progress.Tracker) *NotificationHandler {
	return &NotificationHandler{
		bus:     bus,
		tracker: tracker,
	}
}

// Progress returns a progress record owned by the caller
func (h *NotificationHandler) Progress(ctx *gin.Context) {
	id := ctx.Param("id")
	rec, ok := h.tracker.Get(id)
	if !ok || rec.User != api.User(ctx) {
		api.AbortWithError(ctx, http.StatusNotFound, api.CodeProgressNotFound, fmt.Errorf("progress %s not found", id))
		return
	}
	ctx.PureJSON(http.StatusOK, rec)
}

// Stream upgrades to a websocket and writes the caller's events as JSON
// until either side goes away
func (h *NotificationHandler) Stream(ctx *gin.Context) {
	user := api.User(ctx)
	if user == "" {
		api.AbortWithError(ctx, http.StatusUnauthorized, api.CodeUnauthorized, errors.New("user missing"))
		return
	}

	conn, err := websocket.Accept(ctx.Writer, ctx.Request, nil)
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, fmt.Errorf("websocket accept failed: %w", err))
		return
	}

	sub := h.bus.Subscribe(events.ForUserFilter(user))
	defer h.bus.Unsubscribe(sub)

	// nothing is read from the client, CloseRead handles control frames and
	// cancels once the peer closes
	connCtx := conn.CloseRead(ctx.Request.Context())
	slog.Debug("notification stream open", "user", user, "subId", sub.ID)

	hello := &events.Event{
		ID:      sub.ID,
		Type:    EventConnected,
		User:    user,
		Payload: gin.H{"version": version.Version},
		Time:    time.Now().UTC(),
	}

	writeCtx, cancel := context.WithTimeout(connCtx, writeTimeout)
	err = wsjson.Write(writeCtx, conn, hello)
	cancel()
	if err == nil {
		err = writeLoop(connCtx, conn, sub.C)
	}
	status := websocket.CloseStatus(err)
	if err != nil && status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
		slog.Warn("notification stream", "user", user, "error", err)
	}
	conn.Close(websocket.StatusNormalClosure, shutdownReason)
	slog.Debug("notification stream closed", "user", user, "subId", sub.ID)
}

func writeLoop(ctx context.Context, conn *websocket.Conn, ch <-chan *events.Event) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				// bus closed
				return nil
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, conn, ev)
			cancel()
			if err != nil {
				return err
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
