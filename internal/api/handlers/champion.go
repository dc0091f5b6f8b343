package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/draft-together/server/internal/domain"
	"github.com/draft-together/server/internal/repository"
	log "github.com/sirupsen/logrus"
)

type ChampionHandler struct {
	champions repository.ChampionRepository
}

func NewChampionHandler(champions repository.ChampionRepository) *ChampionHandler {
	return &ChampionHandler{champions: champions}
}

// GetAll returns the full catalog. domain.Champion carries the wire field
// names, so rows are encoded as-is.
func (h *ChampionHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	champions, err := h.champions.List(r.Context())
	if err != nil {
		log.WithError(err).Error("failed to list champions")
		http.Error(w, "Failed to get champions", http.StatusInternalServerError)
		return
	}
	if champions == nil {
		champions = []*domain.Champion{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(champions)
}
