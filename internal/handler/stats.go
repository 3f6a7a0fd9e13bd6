package handler

import (
	"net/http"

	"github.com/aidar/taskmanager/internal/middleware"
	"github.com/aidar/taskmanager/internal/service"
)

// StatsHandler обрабатывает эндпоинты статистики
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler создает новый StatsHandler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetStats обрабатывает GET /stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.GetStats(r.Context(), middleware.GetEmailFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, stats)
}

// GetTeamStats обрабатывает GET /teams/{teamID}/stats
func (h *StatsHandler) GetTeamStats(w http.ResponseWriter, r *http.Request) {
	teamID, err := idParam(r, "teamID")
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}

	stats, err := h.statsService.GetTeamStats(r.Context(), teamID, middleware.GetEmailFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, stats)
}
