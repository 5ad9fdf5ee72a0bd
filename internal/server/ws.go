package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ayusman/handvox/internal/app"
	"github.com/ayusman/handvox/internal/server/api"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Publisher hands out update subscriptions.
type Publisher interface {
	Subscribe(id string) (<-chan app.Update, error)
	Unsubscribe(id string) error
}

// UpdatesHandler pushes scene updates to renderers via WebSocket. Frames
// are JSON text by default and MessagePack binary with ?format=msgpack.
type UpdatesHandler struct {
	updates Publisher
	logger  *slog.Logger
}

// NewUpdatesHandler creates a new UpdatesHandler.
func NewUpdatesHandler(p Publisher, logger *slog.Logger) *UpdatesHandler {
	return &UpdatesHandler{updates: p, logger: logger}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *UpdatesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	encode, messageType, ok := encoderFor(r.URL.Query().Get("format"))
	if !ok {
		http.Error(w, "unknown format", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	updates, err := h.updates.Subscribe(id)
	if err != nil {
		h.logger.Warn("subscribe renderer", "error", err)
		return
	}
	defer h.updates.Unsubscribe(id)

	log := h.logger.With("renderer", id)
	log.Debug("renderer connected", "remote", r.RemoteAddr)

	// Reading is only needed to notice the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			log.Debug("renderer disconnected")
			return
		case u, ok := <-updates:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(writeWait))
				return
			}
			data, err := encode(api.NewSceneMessage(u))
			if err != nil {
				log.Warn("encode update", "error", err)
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(messageType, data); err != nil {
				log.Debug("write update", "error", err)
				return
			}
		}
	}
}

func encoderFor(format string) (func(any) ([]byte, error), int, bool) {
	switch format {
	case "", "json":
		return json.Marshal, websocket.TextMessage, true
	case "msgpack":
		return msgpack.Marshal, websocket.BinaryMessage, true
	}
	return nil, 0, false
}
