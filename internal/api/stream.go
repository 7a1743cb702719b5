package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/LeventeLantos/webhook-chat/internal/chat"
	"github.com/LeventeLantos/webhook-chat/internal/model"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 32
)

type streamEvent struct {
	Type         string              `json:"type"`
	Kind         chat.EventKind      `json:"kind,omitempty"`
	Message      *model.Message      `json:"message,omitempty"`
	Notification *model.Notification `json:"notification,omitempty"`
}

type subscriber struct {
	conn *websocket.Conn
	send chan streamEvent
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.send) })
}

// Hub pushes list changes and notifications to every connected websocket.
// Slow clients lose events rather than blocking the sender.
type Hub struct {
	upgrader websocket.Upgrader
	log      *slog.Logger

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:  log,
		subs: make(map[*subscriber]struct{}),
	}
}

// Attach forwards every change of list to the hub.
func (h *Hub) Attach(list *chat.List) (detach func()) {
	return list.Subscribe(func(ev chat.Event) {
		m := ev.Message
		h.broadcast(streamEvent{Type: "message", Kind: ev.Kind, Message: &m})
	})
}

func (h *Hub) Notify(n model.Notification) {
	h.broadcast(streamEvent{Type: "notification", Notification: &n})
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	s := &subscriber{conn: conn, send: make(chan streamEvent, sendBuffer)}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	h.log.Debug("stream client connected", "remote", r.RemoteAddr)

	go h.writeLoop(s)
	h.readLoop(s)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[*subscriber]struct{})
	h.mu.Unlock()

	for s := range subs {
		s.close()
	}
}

func (h *Hub) broadcast(ev streamEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subs {
		select {
		case s.send <- ev:
		default:
			h.log.Warn("stream client too slow, event dropped", "type", ev.Type)
		}
	}
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		s.close()
	}
	h.mu.Unlock()
}

// readLoop discards client frames and returns once the connection drops.
func (h *Hub) readLoop(s *subscriber) {
	defer h.remove(s)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(s *subscriber) {
	defer s.conn.Close()

	for ev := range s.send {
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteJSON(ev); err != nil {
			h.log.Debug("stream write failed", "err", err)
			h.remove(s)
			return
		}
	}

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
