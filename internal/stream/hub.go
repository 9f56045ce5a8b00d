// Package stream fans settled trades out to WebSocket subscribers. The
// hub sits behind the trading publisher interface: the trading path hands
// off a result and returns immediately; slow consumers are dropped, never
// allowed to stall settlement.
package stream

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"meme-launchpad/internal/domain"
)

// HubConfig configures hub behavior.
type HubConfig struct {
	// WriteTimeout is timeout for writing a frame to a client.
	WriteTimeout time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// SendBuffer is per-client outbound buffer; a client whose buffer
	// fills is disconnected.
	SendBuffer int
}

// DefaultHubConfig returns default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		WriteTimeout: 10 * time.Second,
		PingInterval: 30 * time.Second,
		SendBuffer:   64,
	}
}

// TradeEvent is the wire format broadcast for every settled trade.
type TradeEvent struct {
	Type         string  `json:"type"` // always "trade"
	TokenID      string  `json:"tokenId"`
	Direction    string  `json:"direction"`
	UserAddress  string  `json:"userAddress"`
	TokenAmount  float64 `json:"tokenAmount"`
	SolAmount    float64 `json:"solAmount"`
	Price        float64 `json:"price"`
	NewPrice     float64 `json:"newPrice"`
	NewMarketCap float64 `json:"newMarketCap"`
	Graduated    bool    `json:"graduated"`
	Signature    string  `json:"signature"`
	ExecutedAt   int64   `json:"executedAt"`
}

// Hub maintains the set of connected clients and broadcasts trades to
// them. A client may subscribe to one token or to the full firehose.
type Hub struct {
	config   HubConfig
	upgrader websocket.Upgrader
	logger   *log.Logger

	clients   map[*client]struct{}
	clientsMu sync.RWMutex

	closed  atomic.Bool
	dropped atomic.Uint64
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	tokenID string // empty means all tokens
}

// NewHub creates a trade stream hub.
func NewHub(config *HubConfig, logger *log.Logger) *Hub {
	cfg := DefaultHubConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[stream] ", log.LstdFlags)
	}
	return &Hub{
		config: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// PublishTrade broadcasts a settled trade to matching subscribers. Never
// blocks: a client with a full buffer is dropped.
func (h *Hub) PublishTrade(result *domain.TradeResult) {
	if h.closed.Load() {
		return
	}

	payload, err := json.Marshal(TradeEvent{
		Type:         "trade",
		TokenID:      result.TokenID,
		Direction:    result.Direction,
		UserAddress:  result.UserAddress,
		TokenAmount:  result.TokenAmount,
		SolAmount:    result.SolAmount,
		Price:        result.Price,
		NewPrice:     result.NewPrice,
		NewMarketCap: result.NewMarketCap,
		Graduated:    result.Graduated,
		Signature:    result.Signature,
		ExecutedAt:   result.ExecutedAt,
	})
	if err != nil {
		h.logger.Printf("marshal trade event: %v", err)
		return
	}

	h.clientsMu.RLock()
	var stale []*client
	for c := range h.clients {
		if c.tokenID != "" && c.tokenID != result.TokenID {
			continue
		}
		select {
		case c.send <- payload:
		default:
			stale = append(stale, c)
		}
	}
	h.clientsMu.RUnlock()

	for _, c := range stale {
		h.dropped.Add(1)
		h.removeClient(c)
	}
}

// ServeHTTP upgrades the request and streams trades to the client. The
// optional "token" query parameter narrows the stream to one token.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.closed.Load() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade: %v", err)
		return
	}

	c := &client{
		conn:    conn,
		send:    make(chan []byte, h.config.SendBuffer),
		tokenID: r.URL.Query().Get("token"),
	}

	h.clientsMu.Lock()
	h.clients[c] = struct{}{}
	h.clientsMu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many slow clients have been disconnected.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close disconnects every client and stops accepting new ones.
func (h *Hub) Close() error {
	if h.closed.Swap(true) {
		return nil
	}

	h.clientsMu.Lock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.clientsMu.Unlock()
	return nil
}

func (h *Hub) removeClient(c *client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.clientsMu.Unlock()
}

// writePump drains the client's send buffer onto the socket and keeps the
// connection alive with pings. Owns all writes to the connection.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.removeClient(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.removeClient(c)
				return
			}
		}
	}
}

// readPump discards inbound frames; the stream is one-way. A read error
// means the client is gone.
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.removeClient(c)
			return
		}
	}
}
