package handlers

import (
	"net/http"

	"github.com/BlessPro/PongFocus/config"
	"github.com/BlessPro/PongFocus/models"
	"github.com/BlessPro/PongFocus/repository"
	"github.com/BlessPro/PongFocus/rooms"
	"github.com/BlessPro/PongFocus/utils"
)

// Handler owns the relay's shared state: the room registry and the optional
// session log. Constructed once in main and injected here; there is no
// package-level registry.
type Handler struct {
	cfg      *config.Config
	registry *rooms.Registry
	sessions *repository.SessionLog
}

func New(cfg *config.Config, registry *rooms.Registry, sessions *repository.SessionLog) *Handler {
	return &Handler{
		cfg:      cfg,
		registry: registry,
		sessions: sessions,
	}
}

// ListRooms returns all active rooms with code and occupancy.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	utils.HandleSuccess(w, models.SuccessResponse(h.registry.Rooms()))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"status": "ok"}))
}
