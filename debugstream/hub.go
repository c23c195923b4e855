// Package debugstream streams per-tick physics snapshots to websocket clients.
package debugstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"pluvia/logger"
)

const writeWait = 2 * time.Second

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// send writes one text message with a deadline
func (s *subscriber) send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub fans snapshots out to every connected client.
// New clients receive the most recent snapshot right after connecting.
type Hub struct {
	mu          sync.Mutex
	subscribers map[uint64]*subscriber
	nextID      uint64
	latest      []byte

	upgrader websocket.Upgrader
	log      *logrus.Entry
}

// NewHub creates a hub with no subscribers
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uint64]*subscriber),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: logger.Component("debugstream"),
	}
}

// Subscribers returns the number of connected clients
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Publish sends a snapshot to every subscriber and keeps it for late joiners
func (h *Hub) Publish(snap Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal state message")
		return
	}

	h.mu.Lock()
	h.latest = data
	subs := make(map[uint64]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		if err := sub.send(data); err != nil {
			h.log.WithError(err).WithField("subscriber", id).Warn("failed to send update")
			h.unsubscribe(id)
		}
	}
}

func (h *Hub) subscribe(conn *websocket.Conn) (uint64, *subscriber, []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	sub := &subscriber{conn: conn}
	h.subscribers[h.nextID] = sub
	return h.nextID, sub, h.latest
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	delete(h.subscribers, id)
	h.mu.Unlock()

	if ok {
		sub.conn.Close()
	}
}

// ServeHTTP upgrades the request and streams snapshots until the client leaves
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("upgrade failed")
		return
	}

	id, sub, latest := h.subscribe(conn)
	h.log.WithFields(logrus.Fields{
		"subscriber": id,
		"remote":     r.RemoteAddr,
	}).Info("debug client connected")

	if latest != nil {
		if err := sub.send(latest); err != nil {
			h.unsubscribe(id)
			return
		}
	}

	// Clients only listen; reading detects the disconnect
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.unsubscribe(id)
			h.log.WithField("subscriber", id).Info("debug client disconnected")
			return
		}
	}
}

// ListenAndServe serves the hub at /ws on addr until ctx is cancelled
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	h.log.WithField("addr", addr).Info("debug stream listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
