package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/ikkim/kicks-storefront/internal/app/model"
	"github.com/ikkim/kicks-storefront/internal/app/service"
	"github.com/ikkim/kicks-storefront/internal/cart"
	"github.com/ikkim/kicks-storefront/internal/events"
	"github.com/ikkim/kicks-storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

// Message types pushed to clients
const (
	TypeCartUpdated = "cart_updated"
	TypeCartOpen    = "cart_open"
)

// Message types accepted from clients
const (
	TypeOpenCart = "open_cart"
	TypePing     = "ping"
	TypePong     = "pong"
)

// ClientMessage is a message received from a client
type ClientMessage struct {
	Type string `json:"type"`
}

// ServerMessage is pushed to every connection of a scope
type ServerMessage struct {
	Type    string                 `json:"type"`
	Badge   *model.BadgeView       `json:"badge,omitempty"`
	Summary *model.CartSummaryView `json:"summary,omitempty"`
}

// Client is one websocket connection bound to a shopper scope
type Client struct {
	Hub     *Hub
	Conn    *Conn
	Session *cart.Session
	Send    chan []byte

	MessageCount  int
	LastResetTime time.Time
	RateMu        sync.Mutex
}

func (c *Client) scopeID() string {
	return c.Session.ScopeID
}

// BroadcastMessage is delivered to all connections of ScopeID
type BroadcastMessage struct {
	ScopeID string
	Message []byte
}

// Hub tracks connections per scope and relays cart changes to them.
// A scope is watched (store and open-cart subscriptions) while it has at
// least one connection, which also keeps its session from being evicted.
type Hub struct {
	clients map[string][]*Client
	watches map[string]func()

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	done     chan struct{}
	stopOnce sync.Once

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		watches:    make(map[string]func()),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *BroadcastMessage, 1024),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.shutdown()
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

// Stop ends Run and closes every connection's send channel.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) addClient(client *Client) {
	scopeID := client.scopeID()

	h.mu.Lock()
	h.clients[scopeID] = append(h.clients[scopeID], client)
	if _, watched := h.watches[scopeID]; !watched {
		h.watches[scopeID] = h.watch(client.Session)
	}
	sessions := len(h.clients[scopeID])
	h.mu.Unlock()

	// the new connection starts from the current cart
	if data, err := json.Marshal(cartUpdated(client.Session.Store.Snapshot(), client.Session.Store.FallbackPrice())); err == nil {
		select {
		case client.Send <- data:
		default:
		}
	}

	logger.Info("WebSocket client registered", map[string]interface{}{
		"scope_id":       scopeID,
		"total_sessions": sessions,
	})
}

func (h *Hub) removeClient(client *Client) {
	scopeID := client.scopeID()

	h.mu.Lock()
	clientList, ok := h.clients[scopeID]
	if !ok {
		h.mu.Unlock()
		return
	}

	newList := make([]*Client, 0, len(clientList))
	found := false
	for _, c := range clientList {
		if c == client {
			found = true
			continue
		}
		newList = append(newList, c)
	}
	if !found {
		h.mu.Unlock()
		return
	}

	if len(newList) == 0 {
		delete(h.clients, scopeID)
		if stop, watched := h.watches[scopeID]; watched {
			stop()
			delete(h.watches, scopeID)
		}
	} else {
		h.clients[scopeID] = newList
	}
	close(client.Send)
	remaining := len(newList)
	h.mu.Unlock()

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"scope_id":           scopeID,
		"remaining_sessions": remaining,
	})
}

func (h *Hub) deliver(message *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[message.ScopeID] {
		select {
		case client.Send <- message.Message:
		default:
			// slow consumer, drop the connection
			go h.Unregister(client)
			logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
				"scope_id": message.ScopeID,
			})
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for scopeID, clientList := range h.clients {
		for _, c := range clientList {
			close(c.Send)
		}
		delete(h.clients, scopeID)
	}
	for scopeID, stop := range h.watches {
		stop()
		delete(h.watches, scopeID)
	}
}

// watch relays store changes and open-cart requests of sess to its scope.
func (h *Hub) watch(sess *cart.Session) func() {
	scopeID := sess.ScopeID
	fallback := sess.Store.FallbackPrice()

	stopStore := sess.Store.Subscribe(func(st cart.State) {
		h.SendToScope(scopeID, cartUpdated(st, fallback))
	})
	stopOpen := sess.Events.Subscribe(events.TopicOpenCart, func() {
		h.SendToScope(scopeID, ServerMessage{Type: TypeCartOpen})
	})

	return func() {
		stopStore()
		stopOpen()
	}
}

func cartUpdated(st cart.State, fallback decimal.Decimal) ServerMessage {
	badge := service.BuildBadgeView(st)
	summary := service.BuildSummaryView(st, fallback)
	return ServerMessage{Type: TypeCartUpdated, Badge: &badge, Summary: &summary}
}

// SendToScope queues message for every connection of scopeID.
// Messages are dropped when the broadcast queue is full.
func (h *Hub) SendToScope(scopeID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", err, nil)
		return
	}

	select {
	case h.broadcast <- &BroadcastMessage{ScopeID: scopeID, Message: data}:
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"scope_id": scopeID,
		})
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// sendTo queues data for a single registered client.
func (h *Hub) sendTo(client *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients[client.scopeID()] {
		if c == client {
			select {
			case c.Send <- data:
			default:
			}
			return
		}
	}
}

// Connections reports how many connections scopeID has.
func (h *Hub) Connections(scopeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[scopeID])
}

// HandleClientMessage handles one message read from client.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"scope_id": client.scopeID(),
			"count":    count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"scope_id": client.scopeID(),
			"error":    err.Error(),
		})
		return
	}

	switch msg.Type {
	case TypeOpenCart:
		client.Session.Store.Touch()
		client.Session.Events.Publish(events.TopicOpenCart)
	case TypePing:
		if data, err := json.Marshal(ServerMessage{Type: TypePong}); err == nil {
			h.sendTo(client, data)
		}
	default:
		logger.Debug("Ignoring unknown client message", map[string]interface{}{
			"scope_id": client.scopeID(),
			"type":     msg.Type,
		})
	}
}
