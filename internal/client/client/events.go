package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/common"
)

func (c *HTTPClient) eventsURL() string {
	switch {
	case strings.HasPrefix(c.baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.baseURL, "https://") + "/api/events"
	case strings.HasPrefix(c.baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(c.baseURL, "http://") + "/api/events"
	}
	return c.baseURL + "/api/events"
}

// Subscribe streams note events to fn until ctx is done or the connection
// drops. It returns nil when ctx ends the stream.
func (c *HTTPClient) Subscribe(ctx context.Context, fn func(models.NoteEvent)) error {
	access, _ := c.tokens()
	if access == "" {
		return ErrNotSignedIn
	}

	header := http.Header{}
	header.Set(common.AuthorizationHeaderName, common.BearerPrefix+access)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.eventsURL(), header)
	if err != nil {
		if resp != nil {
			return statusError(resp.StatusCode, "")
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadlineSoon())
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		var ev models.NoteEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		fn(ev)
	}
}

func deadlineSoon() time.Time {
	return time.Now().Add(time.Second)
}
