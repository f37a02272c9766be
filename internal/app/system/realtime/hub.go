// internal/app/system/realtime/hub.go
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// sendBuffer is the per-client outbound queue. A client that falls
	// this far behind is disconnected rather than blocking broadcasts.
	sendBuffer = 64

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second // must be < pongWait

	maxMessageSize = 4096
)

// MembershipCheck reports whether userID may join projectID's room.
// The hub re-checks membership server-side on every join request.
type MembershipCheck func(ctx context.Context, projectID, userID string) bool

// client is one WebSocket connection belonging to one authenticated user.
type client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte

	mu       sync.Mutex
	projects map[string]struct{} // joined project rooms
}

// Hub tracks connected clients by user and by project room and fans
// events out to them. Delivery is fire-and-forget: there is no queueing
// for offline users and no retry; the persisted Notification documents
// are the durable record.
type Hub struct {
	mu       sync.Mutex
	users    map[string]map[*client]struct{} // userID -> connections
	projects map[string]map[*client]struct{} // projectID -> connections
	log      *zap.Logger
}

// NewHub constructs an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		users:    make(map[string]map[*client]struct{}),
		projects: make(map[string]map[*client]struct{}),
		log:      logger,
	}
}

// HandleConn owns conn until it closes: registers the per-user room,
// services join/leave requests, and runs the read/write pumps.
// canJoin gates project room entry.
func (h *Hub) HandleConn(ctx context.Context, conn *websocket.Conn, userID string, canJoin MembershipCheck) {
	c := &client{
		userID:   userID,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		projects: make(map[string]struct{}),
	}

	h.register(c)
	h.log.Info("ws connected", zap.String("user_id", userID))

	go h.writePump(c)
	h.readPump(ctx, c, canJoin)

	h.unregister(c)
	h.log.Info("ws disconnected", zap.String("user_id", userID))
}

// EmitToUser pushes an event to every open connection of one user.
func (h *Hub) EmitToUser(userID, event string, payload any) {
	msg, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		h.log.Warn("ws marshal failed", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.users[userID] {
		h.trySend(c, msg)
	}
}

// EmitToProject pushes an event to every connection joined to the project
// room, skipping the actor's own connections.
func (h *Hub) EmitToProject(projectID, exceptUserID, event string, payload any) {
	msg, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		h.log.Warn("ws marshal failed", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.projects[projectID] {
		if c.userID == exceptUserID {
			continue
		}
		h.trySend(c, msg)
	}
}

// trySend queues msg without blocking; a full buffer drops the message.
// Callers hold h.mu.
func (h *Hub) trySend(c *client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		h.log.Warn("ws send buffer full, dropping event", zap.String("user_id", c.userID))
	}
}

/* -------------------------------------------------------------------------- */
/* Registration & rooms                                                       */
/* -------------------------------------------------------------------------- */

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[c.userID] == nil {
		h.users[c.userID] = make(map[*client]struct{})
	}
	h.users[c.userID][c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if set := h.users[c.userID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.users, c.userID)
		}
	}
	c.mu.Lock()
	for pid := range c.projects {
		h.removeFromProjectLocked(pid, c)
	}
	c.projects = map[string]struct{}{}
	c.mu.Unlock()
	h.mu.Unlock()

	close(c.send)
}

func (h *Hub) joinProject(c *client, projectID string) {
	h.mu.Lock()
	if h.projects[projectID] == nil {
		h.projects[projectID] = make(map[*client]struct{})
	}
	h.projects[projectID][c] = struct{}{}
	h.mu.Unlock()

	c.mu.Lock()
	c.projects[projectID] = struct{}{}
	c.mu.Unlock()
}

func (h *Hub) leaveProject(c *client, projectID string) {
	h.mu.Lock()
	h.removeFromProjectLocked(projectID, c)
	h.mu.Unlock()

	c.mu.Lock()
	delete(c.projects, projectID)
	c.mu.Unlock()
}

// removeFromProjectLocked requires h.mu.
func (h *Hub) removeFromProjectLocked(projectID string, c *client) {
	if set := h.projects[projectID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.projects, projectID)
		}
	}
}

/* -------------------------------------------------------------------------- */
/* Pumps                                                                      */
/* -------------------------------------------------------------------------- */

func (h *Hub) readPump(ctx context.Context, c *client, canJoin MembershipCheck) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Project == "" {
			continue // ignore malformed client messages
		}

		switch msg.Action {
		case "join-project":
			if canJoin != nil && !canJoin(ctx, msg.Project, c.userID) {
				h.log.Warn("ws join-project denied",
					zap.String("user_id", c.userID),
					zap.String("project_id", msg.Project))
				continue
			}
			h.joinProject(c, msg.Project)
		case "leave-project":
			h.leaveProject(c, msg.Project)
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
