package syncsdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	EventConnected = "connected"
	EventProgress  = "progress"

	wsClientMaxMessageSize = 1 << 20
)

// EventsAPI reads the server's notification stream
type EventsAPI struct {
	config *Config
}

func newEventsAPI(config *Config) *EventsAPI {
	return &EventsAPI{config: config}
}

func (e *EventsAPI) streamURL() (string, error) {
	u, err := url.Parse(e.config.ServerURL + v1Stream)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	q := u.Query()
	if e.config.Token != "" {
		q.Set("token", e.config.Token)
	} else {
		q.Set("user", e.config.User)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Stream delivers events to fn until ctx ends, the server closes the stream
// or fn returns an error. A clean end returns nil.
func (e *EventsAPI) Stream(ctx context.Context, fn func(*Event) error) error {
	streamURL, err := e.streamURL()
	if err != nil {
		return fmt.Errorf("sdk: events: invalid url: %w", err)
	}

	conn, _, err := websocket.Dial(ctx, streamURL, &websocket.DialOptions{
		HTTPHeader: http.Header{HeaderUserAgent: []string{UserAgent}},
	})
	if err != nil {
		return fmt.Errorf("sdk: events: failed to connect to %s: %w", strings.SplitN(streamURL, "?", 2)[0], err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(wsClientMaxMessageSize)

	for {
		var ev Event
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			if ctx.Err() != nil || isExpectedCloseError(err) {
				return nil
			}
			return fmt.Errorf("sdk: events: read: %w", err)
		}
		if err := fn(&ev); err != nil {
			conn.Close(websocket.StatusNormalClosure, "done")
			return err
		}
	}
}

func isExpectedCloseError(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return errors.Is(err, context.Canceled)
}
