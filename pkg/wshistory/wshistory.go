// Package wshistory implements router.History for a browser that is
// driven over a WebSocket.
//
// The router runs on the server. Each connected client mirrors the
// current URL with pushState and replaceState and reports back-button
// navigations as popstate messages, which the server runs through the
// router's guards like any other navigation.
package wshistory

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vroute/pkg/router"
	"github.com/vango-dev/vroute/pkg/routepath"
)

// MessageType is the type of a history message.
type MessageType string

const (
	// Sent to clients.
	TypePush    MessageType = "push"
	TypeReplace MessageType = "replace"
	TypeGo      MessageType = "go"

	// Sent by clients.
	TypePopState MessageType = "popstate"
)

// Message is exchanged with clients as JSON text frames.
type Message struct {
	Type MessageType `json:"type"`
	URL  string      `json:"url,omitempty"`
	N    int         `json:"n,omitempty"`
}

// Option configures a History.
type Option func(*History)

// WithBase sets the path prefix clients see in front of every route.
func WithBase(base string) Option {
	return func(h *History) {
		h.base = strings.TrimSuffix(base, "/")
	}
}

// WithInitialURL sets the location reported before any navigation.
func WithInitialURL(url string) Option {
	return func(h *History) {
		h.url = url
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *History) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithCheckOrigin sets the upgrader's origin check. The default accepts
// same-origin requests only.
func WithCheckOrigin(check func(r *http.Request) bool) Option {
	return func(h *History) {
		h.upgrader.CheckOrigin = check
	}
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// History is a router.History whose platform URL lives in remote
// clients. It is also the http.Handler clients connect to.
type History struct {
	engine   *router.Engine
	base     string
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.RWMutex
	url     string
	clients map[*client]bool
}

var _ router.History = (*History)(nil)

// New creates a History.
func New(opts ...Option) *History {
	h := &History{
		url:     "/",
		clients: make(map[*client]bool),
		logger:  slog.Default().With("component", "wshistory"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Bind implements router.History.
func (h *History) Bind(e *router.Engine) {
	h.engine = e
}

// Push implements router.History.
func (h *History) Push(loc router.RawLocation, onComplete func(*router.Route), onAbort func(error)) {
	h.engine.TransitionTo(loc, func(route *router.Route) {
		h.setURL(route.FullPath(), TypePush)
		if onComplete != nil {
			onComplete(route)
		}
	}, onAbort)
}

// Replace implements router.History.
func (h *History) Replace(loc router.RawLocation, onComplete func(*router.Route), onAbort func(error)) {
	h.engine.TransitionTo(loc, func(route *router.Route) {
		h.setURL(route.FullPath(), TypeReplace)
		if onComplete != nil {
			onComplete(route)
		}
	}, onAbort)
}

// Go implements router.History. Clients move through their own history
// and report the result with a popstate message.
func (h *History) Go(n int) {
	h.broadcast(Message{Type: TypeGo, N: n})
}

// EnsureURL implements router.History. Clients are sent the current
// route when their URL has drifted from it.
func (h *History) EnsureURL(push bool) {
	current := h.engine.Current().FullPath()
	h.mu.RLock()
	drifted := h.url != current
	h.mu.RUnlock()
	if !drifted {
		return
	}
	typ := TypeReplace
	if push {
		typ = TypePush
	}
	h.setURL(current, typ)
}

// CurrentLocation implements router.History.
func (h *History) CurrentLocation() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.url
}

// ClientCount returns the number of connected clients.
func (h *History) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *History) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
}

func (h *History) setURL(fullPath string, typ MessageType) {
	h.mu.Lock()
	h.url = fullPath
	h.mu.Unlock()
	h.broadcast(Message{Type: typ, URL: h.base + fullPath})
}

// ServeHTTP upgrades the request and serves one client until it
// disconnects. A new client is first told the current URL.
func (h *History) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn}

	h.mu.Lock()
	h.clients[c] = true
	url := h.url
	h.mu.Unlock()

	if data, err := json.Marshal(Message{Type: TypeReplace, URL: h.base + url}); err == nil {
		c.send(data)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		h.handle(data)
	}

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	conn.Close()
}

func (h *History) handle(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Warn("invalid history message", "error", err)
		return
	}
	if msg.Type != TypePopState {
		h.logger.Warn("unexpected history message", "type", msg.Type)
		return
	}

	path, err := routepath.ValidateNavPath(h.stripBase(msg.URL))
	if err != nil {
		h.logger.Warn("rejected popstate url", "url", msg.URL, "error", err)
		h.EnsureURL(false)
		return
	}

	// The client's URL already changed; guards that reject the
	// navigation push the current route back.
	h.mu.Lock()
	h.url = path
	h.mu.Unlock()
	h.engine.TransitionTo(router.Path(path), nil, nil)
}

func (h *History) stripBase(url string) string {
	if h.base != "" && strings.HasPrefix(url, h.base) {
		url = strings.TrimPrefix(url, h.base)
	}
	if url == "" {
		return "/"
	}
	return url
}

func (h *History) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(data); err != nil {
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
			c.conn.Close()
		}
	}
}
