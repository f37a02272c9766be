// internal/app/features/ws/handler.go
package ws

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhive/internal/app/policy/taskpolicy"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/realtime"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler upgrades authenticated requests to WebSocket connections and
// hands them to the hub.
type Handler struct {
	DB  *mongo.Database
	Hub *realtime.Hub
	Log *zap.Logger

	upgrader websocket.Upgrader
}

// NewHandler constructs a Handler. checkOrigin decides which Origin
// headers may connect; pass nil to accept same-origin only (the
// gorilla default).
func NewHandler(db *mongo.Database, hub *realtime.Hub, logger *zap.Logger, checkOrigin func(r *http.Request) bool) *Handler {
	return &Handler{
		DB:  db,
		Hub: hub,
		Log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Serve handles GET /ws. Browsers cannot set an Authorization header on
// a WebSocket handshake, so the bearer middleware also accepts a
// ?token= query parameter.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	su, ok := sysauth.CurrentUser(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.Log.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	h.Hub.HandleConn(r.Context(), conn, su.ID, h.canJoin)
}

// canJoin gates join-project requests: membership is checked against the
// database on every join, not against the token.
func (h *Handler) canJoin(ctx context.Context, projectID, userID string) bool {
	pid, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return false
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false
	}
	ok, err := taskpolicy.IsProjectMember(ctx, h.DB, pid, uid)
	if err != nil {
		h.Log.Error("ws membership check", zap.Error(err))
		return false
	}
	return ok
}
