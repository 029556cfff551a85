package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"affordability-assessment/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBuffer      = 64
	broadcastBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the envelope pushed to browser sessions.
type Message struct {
	UserID  int64  `json:"user_id,omitempty"`
	Type    string `json:"type"`
	Channel string `json:"channel,omitempty"`
	Data    any    `json:"data"`
}

// Hub fans messages out to every socket a user has open.
type Hub struct {
	sessions map[int64]map[*session]struct{}
	mu       sync.RWMutex

	join      chan *session
	leave     chan *session
	broadcast chan *Message

	// done is closed when Run returns; later joins and leaves are dropped.
	done chan struct{}
}

type session struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int64
	out    chan *Message
}

func NewHub() *Hub {
	return &Hub{
		sessions:  make(map[int64]map[*session]struct{}),
		join:      make(chan *session),
		leave:     make(chan *session),
		broadcast: make(chan *Message, broadcastBuffer),
		done:      make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case s := <-h.join:
			h.add(s)
		case s := <-h.leave:
			h.remove(s)
		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) add(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[s.userID] == nil {
		h.sessions[s.userID] = make(map[*session]struct{})
	}
	h.sessions[s.userID][s] = struct{}{}
}

func (h *Hub) remove(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.sessions[s.userID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	close(s.out)
	if len(set) == 0 {
		delete(h.sessions, s.userID)
	}
}

// deliver drops sessions whose buffers are full; their pumps exit on the closed channel.
func (h *Hub) deliver(msg *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.sessions[msg.UserID]
	for s := range set {
		select {
		case s.out <- msg:
		default:
			logger.Warnf("[WS] dropping slow session for user %d", s.userID)
			close(s.out)
			delete(set, s)
		}
	}
	if set != nil && len(set) == 0 {
		delete(h.sessions, msg.UserID)
	}
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	var open []*session
	for _, set := range h.sessions {
		for s := range set {
			open = append(open, s)
		}
	}
	h.mu.RUnlock()

	// Closing outside the lock lets the read pumps unregister.
	for _, s := range open {
		_ = s.conn.Close()
	}
}

// Sessions returns the number of sockets currently open for a user.
func (h *Hub) Sessions(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

func (h *Hub) Broadcast(userID int64, msg *Message) {
	msg.UserID = userID
	select {
	case h.broadcast <- msg:
	default:
		logger.Warnf("[WS] broadcast queue full, dropping %q for user %d", msg.Type, userID)
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request, userID int64) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("[WS] upgrade failed: %v", err)
		return
	}

	s := &session{
		hub:    h,
		conn:   conn,
		userID: userID,
		out:    make(chan *Message, sendBuffer),
	}
	select {
	case h.join <- s:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go s.writeLoop()
	go s.readLoop()
}

func (s *session) readLoop() {
	defer func() {
		select {
		case s.hub.leave <- s:
		case <-s.hub.done:
		}
		_ = s.conn.Close()
	}()

	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warnf("[WS] read error for user %d: %v", s.userID, err)
			}
			return
		}
	}
}

func (s *session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(msg); err != nil {
				logger.Errorf("[WS] write error for user %d: %v", s.userID, err)
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
