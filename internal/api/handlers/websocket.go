package handlers

import (
	"net/http"

	"github.com/draft-together/server/internal/registry"
	"github.com/draft-together/server/internal/validation"
	"github.com/draft-together/server/internal/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // rooms are shared by pasting the URL, any origin may join
	},
}

type WebSocketHandler struct {
	registry  *registry.Registry
	validator *validation.Set
}

func NewWebSocketHandler(reg *registry.Registry, validator *validation.Set) *WebSocketHandler {
	return &WebSocketHandler{
		registry:  reg,
		validator: validator,
	}
}

// Handle upgrades the connection and joins the peer to the room named in
// the path. The session lives until the socket drops; the last peer out
// persists and evicts the room.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		http.Error(w, "Invalid room id", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		log.WithError(err).WithField("room_id", roomID).Error("websocket upgrade failed")
		return
	}

	room, err := h.registry.Join(r.Context(), roomID)
	if err != nil {
		log.WithError(err).WithField("room_id", roomID).Error("failed to join room")
		conn.Close()
		return
	}

	client := websocket.NewClient(conn, h.registry, room, h.validator)
	go client.WritePump()
	go client.ReadPump()
}
