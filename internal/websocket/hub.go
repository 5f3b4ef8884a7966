package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/policy"
	"backoffice/internal/push"
	"backoffice/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// Message kinds sent to browsers
const (
	MessageToast = "toast"
	MessageEvent = "event"
)

// Message is the frame browsers receive.
type Message struct {
	Type  string       `json:"type"`
	Event string       `json:"event,omitempty"`
	Toast *model.Toast `json:"toast,omitempty"`
}

// Client represents a single connected browser page.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
	Role   string
}

type envelope struct {
	role    string
	userID  string
	payload []byte
}

func (e envelope) matches(c *Client) bool {
	if e.role != "" && e.role != c.Role {
		return false
	}
	return e.userID == "" || e.userID == c.UserID
}

// Hub maintains the set of active clients and delivers toasts and push events to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
	log        *logger.Logger
}

// NewHub builds a hub accepting browser connections from the given origins.
// An empty list accepts any origin.
func NewHub(allowedOrigins []string, log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Hub{
		broadcast:  make(chan envelope, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin]
			},
		},
	}
}

// Run is the dispatch loop. It returns when ctx is cancelled, closing every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Debug(h.log.WithActorRole(ctx, client.Role), "websocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.log.Debug(h.log.WithActorRole(ctx, client.Role), "websocket client disconnected")
			}
			h.mu.Unlock()
		case env := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !env.matches(client) {
					continue
				}
				select {
				case client.Send <- env.payload:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) enqueue(ctx context.Context, env envelope) {
	select {
	case h.broadcast <- env:
	default:
		h.log.Warn(ctx, "websocket broadcast queue full, dropping message")
	}
}

// Notify delivers a toast to the pages of its audience.
func (h *Hub) Notify(ctx context.Context, t model.Toast) {
	payload, err := json.Marshal(Message{Type: MessageToast, Toast: &t})
	if err != nil {
		h.log.Error(ctx, "failed to encode toast", err)
		return
	}
	h.enqueue(ctx, envelope{role: t.Role, userID: t.UserID, payload: payload})
}

// Forward relays every push event to all browsers; returns the unsubscribe function.
func (h *Hub) Forward(sub push.Subscriber) func() {
	return sub.Subscribe(push.AnyEvent, func(e push.Event) {
		payload, err := json.Marshal(Message{Type: MessageEvent, Event: e.Name})
		if err != nil {
			return
		}
		h.enqueue(context.Background(), envelope{payload: payload})
	})
}

// writePump handles writing messages from the Hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump keeps the connection alive and detects when the peer goes away.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		_ = c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Warn(context.Background(), "websocket read error: "+err.Error())
			}
			return
		}
	}
}

// ServeWs authenticates the token query param and upgrades the connection.
func ServeWs(hub *Hub, c *gin.Context, secret []byte) {
	tokenString := c.Query("token")
	if tokenString == "" {
		hub.log.Warn(c.Request.Context(), "websocket connection rejected: missing token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims, err := middleware.ParseToken(tokenString, secret)
	if err != nil {
		hub.log.Warn(c.Request.Context(), "websocket connection rejected: "+err.Error())
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if _, err := policy.ScopeForRole(claims.Role); err != nil {
		hub.log.Warn(c.Request.Context(), "websocket connection rejected: inadequate permissions")
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	conn, err := hub.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.log.Error(c.Request.Context(), "websocket upgrade failed", err)
		return
	}
	client := &Client{Hub: hub, Conn: conn, Send: make(chan []byte, sendBuffer), UserID: claims.Subject, Role: claims.Role}
	select {
	case hub.register <- client:
	case <-hub.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
