package handlers

import (
	"errors"
	"net/http"

	"github.com/wonny/copa/internal/scheduler"
	"github.com/wonny/copa/pkg/logger"
)

// SchedulerHandler serves the transition scheduler control surface.
type SchedulerHandler struct {
	scheduler *scheduler.TransitionScheduler
	logger    *logger.Logger
}

// NewSchedulerHandler creates a scheduler handler.
func NewSchedulerHandler(sched *scheduler.TransitionScheduler, log *logger.Logger) *SchedulerHandler {
	return &SchedulerHandler{scheduler: sched, logger: log}
}

// GetStatus reports scheduler state and the next scheduled run.
// GET /api/v1/scheduler/status
func (h *SchedulerHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.scheduler.Status())
}

// RunOnce triggers a transition run immediately, bypassing the timer.
// POST /api/v1/scheduler/run
func (h *SchedulerHandler) RunOnce(w http.ResponseWriter, r *http.Request) {
	actor := PrincipalFrom(r.Context())

	if err := h.scheduler.RunOnce(r.Context(), actor); err != nil {
		if errors.Is(err, scheduler.ErrRunInProgress) {
			writeJSON(w, http.StatusConflict, map[string]string{
				"error": "a transition run is already executing",
			})
			return
		}
		h.logger.WithError(err).Error("Manual transition run failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "transition run failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}
