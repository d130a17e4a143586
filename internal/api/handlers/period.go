package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/copa/internal/period"
	"github.com/wonny/copa/internal/ranking"
	"github.com/wonny/copa/pkg/logger"
)

// PeriodHandler serves the period lifecycle entry points.
type PeriodHandler struct {
	controller *period.Controller
	ranking    *ranking.Service
	logger     *logger.Logger
}

// NewPeriodHandler creates a period handler.
func NewPeriodHandler(controller *period.Controller, rankingService *ranking.Service, log *logger.Logger) *PeriodHandler {
	return &PeriodHandler{controller: controller, ranking: rankingService, logger: log}
}

// ListPending returns periods awaiting officialization.
// GET /api/v1/periods/pending
func (h *PeriodHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	periods, err := h.controller.PendingOfficialization(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Pending periods lookup failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"periods": periods,
		"count":   len(periods),
	})
}

// GetAnalysis returns the ranking and tie analysis for a period.
// GET /api/v1/periods/{id}/analysis
func (h *PeriodHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid period id"})
		return
	}

	analysis, err := h.controller.Analysis(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).WithField("period_id", id).Error("Period analysis failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// officializeRequest is the POST body for closing a period.
type officializeRequest struct {
	WinningSectorID int64  `json:"winning_sector_id"`
	TieResolvedBy   string `json:"tie_resolved_by,omitempty"`
	Justification   string `json:"justification,omitempty"`
}

// Officialize closes a PRE_CLOSED period with the chosen winner.
// POST /api/v1/periods/{id}/officialize
func (h *PeriodHandler) Officialize(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid period id"})
		return
	}

	var req officializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	closed, err := h.controller.Officialize(r.Context(), period.OfficializeInput{
		PeriodID:        id,
		WinningSectorID: req.WinningSectorID,
		Actor:           PrincipalFrom(r.Context()),
		TieResolvedBy:   req.TieResolvedBy,
		Justification:   req.Justification,
	})
	if err != nil {
		h.logger.WithError(err).WithField("period_id", id).Warn("Officialization rejected")
		writeError(w, err)
		return
	}

	// Drop the cached analysis so readers see the closed period.
	h.ranking.InvalidateMonth(r.Context(), closed.MonthKey)

	writeJSON(w, http.StatusOK, closed)
}
