package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/wonny/aegis-panel/internal/contracts"
	"github.com/wonny/aegis-panel/internal/s0_data"
	"github.com/wonny/aegis-panel/pkg/logger"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ProgressMessage is the envelope sent to progress subscribers
type ProgressMessage struct {
	Type      string                  `json:"type"`
	Payload   contracts.ProgressEvent `json:"payload"`
	Timestamp time.Time               `json:"timestamp"`
}

type subscriber struct {
	mu   sync.Mutex // serializes writes on conn
	code string     // empty = every instrument
}

// ProgressHub fans evaluation progress out to websocket clients
// ⭐ SSOT: 진행 상황 브로드캐스트는 여기서만
//
// Publish has the contracts.ProgressFunc signature and is handed to the evaluator.
type ProgressHub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]*subscriber

	// style_started is chatty; nil = no throttling
	styleThrottle *rate.Limiter

	logger *logger.Logger
}

// NewProgressHub creates a hub; styleEvery > 0 throttles style_started events
func NewProgressHub(styleEvery time.Duration, log *logger.Logger) *ProgressHub {
	if log == nil {
		log = logger.Nop()
	}
	h := &ProgressHub{
		clients: make(map[*websocket.Conn]*subscriber),
		logger:  log,
	}
	if styleEvery > 0 {
		h.styleThrottle = rate.NewLimiter(rate.Every(styleEvery), 1)
	}
	return h
}

// Clients returns the number of connected subscribers
func (h *ProgressHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades and registers a subscriber
// GET /ws/progress?code=AAPL
func (h *ProgressHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code != "" {
		if err := s0_data.ValidateCode(code); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		code = s0_data.NormalizeCode(code)
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	h.mu.Lock()
	h.clients[conn] = &subscriber{code: code}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithFields(map[string]interface{}{
		"code":    code,
		"clients": count,
	}).Debug("Progress client connected")

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		remaining := len(h.clients)
		h.mu.Unlock()

		conn.Close()
		h.logger.WithField("clients", remaining).Debug("Progress client disconnected")
	}()

	// keep reading so close frames are processed
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.WithError(err).Warn("WebSocket error")
			}
			return
		}
	}
}

// Publish broadcasts a progress event to matching subscribers
// Safe for concurrent use from style goroutines.
func (h *ProgressHub) Publish(ev contracts.ProgressEvent) {
	if ev.Stage == contracts.ProgressStyleStarted && h.styleThrottle != nil && !h.styleThrottle.Allow() {
		return
	}

	data, err := json.Marshal(ProgressMessage{
		Type:      "progress",
		Payload:   ev,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal progress message")
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	subs := make([]*subscriber, 0, len(h.clients))
	for conn, sub := range h.clients {
		if sub.code != "" && sub.code != ev.Code {
			continue
		}
		conns = append(conns, conn)
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for i, conn := range conns {
		sub := subs[i]
		sub.mu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()

		if err != nil {
			h.logger.WithError(err).Warn("Failed to send progress to client")
		}
	}
}
