// Package events fans note change events out to websocket subscribers.
// Each user only ever sees events about their own notes.
package events

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

const (
	subscriberBuffer = 16
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = pongWait * 9 / 10
)

type subscriber struct {
	ch chan models.NoteEvent
}

type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	logger logging.Logger

	upgrader websocket.Upgrader
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*subscriber]struct{}),
		logger: logger.With("module", "events"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the API is token authenticated, browsers are not a client
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Subscribe registers a listener for userID. The returned cancel func
// must be called once the listener is done; it closes the channel.
func (h *Hub) Subscribe(userID string) (<-chan models.NoteEvent, func()) {
	s := &subscriber{ch: make(chan models.NoteEvent, subscriberBuffer)}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*subscriber]struct{})
	}
	h.subs[userID][s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], s)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(s.ch)
		})
	}
}

// Publish delivers ev to every subscriber of userID without blocking. A
// subscriber whose buffer is full misses the event.
func (h *Hub) Publish(userID string, ev models.NoteEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[userID] {
		select {
		case s.ch <- ev:
		default:
			h.logger.Warn(context.Background(), "subscriber lagging, event dropped",
				"user_id", userID, "note_id", ev.NoteID)
		}
	}
}

// Subscribers returns how many listeners userID has.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// ServeWS upgrades the request and streams userID's events until the
// peer goes away or ctx of the request ends.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe(userID)
	defer cancel()

	log := h.logger.With("user_id", userID)
	log.Debug(r.Context(), "subscriber connected")

	// the read side only handles control frames and notices a closed peer
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.Debug(r.Context(), "websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			log.Debug(r.Context(), "subscriber disconnected")
			return
		case <-r.Context().Done():
			return
		}
	}
}
