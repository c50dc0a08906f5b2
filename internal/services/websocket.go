package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chachabrian/tourbook-backend/internal/logger"
	"github.com/gorilla/websocket"
)

// Live admin feed event types
const (
	EventBookingCreated       = "booking_created"
	EventBookingStatusUpdated = "booking_status_updated"
	EventBookingNoteAdded     = "booking_note_added"
)

const (
	feedWriteTimeout = 10 * time.Second
	feedPongTimeout  = 60 * time.Second
	feedPingEvery    = 50 * time.Second
	feedSendBuffer   = 256
)

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EventPublisher fans domain events out to connected dashboards.
type EventPublisher interface {
	Publish(eventType string, data interface{})
}

// WebSocketMessage is the frame sent to dashboards.
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type adminConn struct {
	adminID uint
	role    string
	ws      *websocket.Conn
	out     chan []byte
}

// Hub keeps the connected admin dashboards and fans events out to them.
type Hub struct {
	mu      sync.RWMutex
	conns   map[*adminConn]struct{}
	join    chan *adminConn
	leave   chan *adminConn
	events  chan []byte
	quit    chan struct{}
	stopped sync.Once
}

func NewHub() *Hub {
	return &Hub{
		conns:  make(map[*adminConn]struct{}),
		join:   make(chan *adminConn),
		leave:  make(chan *adminConn),
		events: make(chan []byte, 64),
		quit:   make(chan struct{}),
	}
}

// Run serves joins, leaves and events until Stop.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.join:
			h.mu.Lock()
			h.conns[c] = struct{}{}
			h.mu.Unlock()
			logger.Printf("[feed] admin %d joined", c.adminID)

		case c := <-h.leave:
			h.mu.Lock()
			h.drop(c)
			h.mu.Unlock()
			logger.Printf("[feed] admin %d left", c.adminID)

		case frame := <-h.events:
			h.fanOut(frame)

		case <-h.quit:
			h.mu.Lock()
			for c := range h.conns {
				h.drop(c)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop disconnects every dashboard. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopped.Do(func() { close(h.quit) })
}

// drop must be called with mu held.
func (h *Hub) drop(c *adminConn) {
	if _, ok := h.conns[c]; ok {
		delete(h.conns, c)
		close(c.out)
	}
}

func (h *Hub) fanOut(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		select {
		case c.out <- frame:
		default:
			logger.Warning(fmt.Sprintf("[feed] admin %d is too slow, disconnecting", c.adminID))
			h.drop(c)
		}
	}
}

// GetConnectedClients returns the number of connected dashboards.
func (h *Hub) GetConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Publish never blocks; when the hub is backed up the event is dropped.
func (h *Hub) Publish(eventType string, data interface{}) {
	frame, err := json.Marshal(WebSocketMessage{Type: eventType, Data: data})
	if err != nil {
		logger.Error("[feed] failed to encode "+eventType, err)
		return
	}
	select {
	case h.events <- frame:
	default:
		logger.Warning("[feed] backed up, dropping " + eventType)
	}
}

// HandleWebSocket upgrades the request and attaches the admin to the hub.
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, adminID uint, role string) {
	ws, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("[feed] upgrade failed", err)
		return
	}

	c := &adminConn{adminID: adminID, role: role, ws: ws, out: make(chan []byte, feedSendBuffer)}
	select {
	case hub.join <- c:
	case <-hub.quit:
		_ = ws.Close()
		return
	}

	go c.writeLoop()
	go c.readLoop(hub)
}

// readLoop discards inbound frames and detaches the admin once the socket closes.
func (c *adminConn) readLoop(hub *Hub) {
	defer func() {
		select {
		case hub.leave <- c:
		case <-hub.quit:
		}
		_ = c.ws.Close()
	}()

	c.ws.SetReadLimit(512)
	_ = c.ws.SetReadDeadline(time.Now().Add(feedPongTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(feedPongTimeout))
	})

	for {
		if _, _, err := c.ws.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error(fmt.Sprintf("[feed] admin %d read", c.adminID), err)
			}
			return
		}
	}
}

func (c *adminConn) writeLoop() {
	ping := time.NewTicker(feedPingEvery)
	defer func() {
		ping.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case frame, open := <-c.out:
			_ = c.ws.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if !open {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Error(fmt.Sprintf("[feed] admin %d write", c.adminID), err)
				return
			}
		case <-ping.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
