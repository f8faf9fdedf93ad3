package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pollafutbolera/polla-engine/models"
	"github.com/pollafutbolera/polla-engine/services"
)

type PhaseHandler struct {
	phaseService services.PhaseService
}

func NewPhaseHandler(phaseService services.PhaseService) *PhaseHandler {
	return &PhaseHandler{phaseService: phaseService}
}

func phaseParam(r *http.Request) (models.Phase, error) {
	raw := chi.URLParam(r, "phase")
	if raw == "" {
		return "", errors.New("missing phase parameter")
	}
	return models.Phase(raw), nil
}

// Status godoc
// @Summary Report whether a phase currently accepts predictions
// @Tags phases
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param phase path string true "Phase name"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/phases/{phase} [get]
func (h *PhaseHandler) Status(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	phase, err := phaseParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	unlocked, err := h.phaseService.IsPhaseUnlocked(r.Context(), tournamentID, phase)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"phase": phase, "unlocked": unlocked}, nil)
}

// Recompute godoc
// @Summary Re-run the completion check for a phase
// @Description Idempotent; re-running on an already completed phase reports
// @Description the same outcome without unlocking anything twice.
// @Tags phases
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param phase path string true "Phase name"
// @Success 200 {object} services.PhaseRecomputeResult
// @Security BearerAuth
// @Router /admin/tournaments/{tournamentID}/phases/{phase}/recompute [post]
func (h *PhaseHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	phase, err := phaseParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.phaseService.RecomputePhaseCompletion(r.Context(), tournamentID, phase)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result, nil)
}

type manualLockRequest struct {
	Locked bool `json:"locked"`
}

// SetManualLock godoc
// @Summary Force a phase closed or reopen it
// @Description A manual lock wins over every automatic unlock decision until
// @Description an operator lifts it.
// @Tags phases
// @Accept json
// @Param tournamentID path int true "Tournament ID"
// @Param phase path string true "Phase name"
// @Param input body manualLockRequest true "Lock state"
// @Success 204
// @Security BearerAuth
// @Router /admin/tournaments/{tournamentID}/phases/{phase}/lock [put]
func (h *PhaseHandler) SetManualLock(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	phase, err := phaseParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input manualLockRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.phaseService.SetManualLock(r.Context(), tournamentID, phase, input.Locked); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
