package web

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vitos/crypto_dashboard/internal/metrics"
	"github.com/vitos/crypto_dashboard/internal/usecase"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
	sendBuffer     = 16
)

// StreamMessage is the envelope pushed to WebSocket clients.
type StreamMessage struct {
	Type string                `json:"type"`
	Data usecase.DashboardView `json:"data"`
}

// Stream pushes the dashboard view to every WebSocket client on connect and
// after each commit. Slow clients miss updates rather than block the feeds.
type Stream struct {
	upgrader websocket.Upgrader
	view     func() usecase.DashboardView
	metrics  *metrics.Metrics
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[string]*streamClient
	closed  bool
}

type streamClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *streamClient) stop() {
	c.once.Do(func() { close(c.done) })
}

func NewStream(view func() usecase.DashboardView, m *metrics.Metrics, logger *zap.Logger) *Stream {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stream{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The dashboard is read-only and unauthenticated.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		view:    view,
		metrics: m,
		logger:  logger.With(zap.String("component", "stream")),
		clients: make(map[string]*streamClient),
	}
}

func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	c := &streamClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	if msg, err := s.encode(); err == nil {
		c.send <- msg
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.clients[c.id] = c
	n := len(s.clients)
	s.mu.Unlock()
	s.metrics.SetWSClients(n)
	s.logger.Debug("WebSocket client connected", zap.String("client", c.id), zap.String("remote", r.RemoteAddr))

	go s.writePump(c)
	go s.readPump(c)
}

// Broadcast sends the current view to every client.
func (s *Stream) Broadcast() {
	s.mu.RLock()
	empty := len(s.clients) == 0
	s.mu.RUnlock()
	if empty {
		return
	}

	msg, err := s.encode()
	if err != nil {
		s.logger.Error("Failed to encode dashboard view", zap.Error(err))
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		select {
		case c.send <- msg:
		default:
			s.logger.Debug("Skipping slow WebSocket client", zap.String("client", c.id))
		}
	}
}

// Clients returns the number of connected clients.
func (s *Stream) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close disconnects every client and rejects new ones.
func (s *Stream) Close() {
	s.mu.Lock()
	s.closed = true
	clients := make([]*streamClient, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.stop()
	}
}

func (s *Stream) encode() ([]byte, error) {
	return json.Marshal(StreamMessage{Type: "dashboard", Data: s.view()})
}

func (s *Stream) remove(c *streamClient) {
	s.mu.Lock()
	delete(s.clients, c.id)
	n := len(s.clients)
	s.mu.Unlock()

	c.stop()
	_ = c.conn.Close()
	s.metrics.SetWSClients(n)
}

func (s *Stream) readPump(c *streamClient) {
	defer s.remove(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Clients have nothing to say; reading only services control frames.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("WebSocket read error", zap.String("client", c.id), zap.Error(err))
			}
			return
		}
	}
}

func (s *Stream) writePump(c *streamClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.remove(c)
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.logger.Debug("WebSocket send failed", zap.String("client", c.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
