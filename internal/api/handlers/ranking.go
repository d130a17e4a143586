package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/copa/internal/ranking"
	"github.com/wonny/copa/pkg/logger"
)

// RankingHandler serves the ranking computation entry point.
type RankingHandler struct {
	service *ranking.Service
	logger  *logger.Logger
}

// NewRankingHandler creates a ranking handler.
func NewRankingHandler(service *ranking.Service, log *logger.Logger) *RankingHandler {
	return &RankingHandler{service: service, logger: log}
}

// GetRanking returns the ranking analysis for a month.
// GET /api/v1/rankings/{month}
func (h *RankingHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	month := mux.Vars(r)["month"]

	analysis, err := h.service.AnalysisForMonth(r.Context(), month)
	if err != nil {
		h.logger.WithError(err).WithField("month", month).Error("Ranking lookup failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}
