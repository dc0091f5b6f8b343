package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/draft-together/server/internal/registry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type DraftHandler struct {
	registry *registry.Registry
}

func NewDraftHandler(reg *registry.Registry) *DraftHandler {
	return &DraftHandler{registry: reg}
}

// Get returns the current board of a room. A room id that has never been
// seen gets an empty board and a durable row, so clients can GET before
// the first peer connects.
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		http.Error(w, "Invalid room id", http.StatusBadRequest)
		return
	}

	room, err := h.registry.Acquire(r.Context(), roomID)
	if err != nil {
		log.WithError(err).WithField("room_id", roomID).Error("failed to load draft")
		http.Error(w, "Failed to load draft", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(room.Draft())
}
