package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pollafutbolera/polla-engine/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
}

func NewStandingsHandler(standingsService services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: standingsService}
}

func groupParam(r *http.Request) (string, error) {
	group := chi.URLParam(r, "group")
	if group == "" {
		return "", errors.New("missing group parameter")
	}
	return group, nil
}

// Get godoc
// @Summary Compute the table for one group
// @Description Ordered by points, goal difference, then goals scored. When a
// @Description manual override exists its positions dictate the order.
// @Tags standings
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param group path string true "Group label"
// @Success 200 {array} models.GroupStanding
// @Router /tournaments/{tournamentID}/groups/{group}/standings [get]
func (h *StandingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	group, err := groupParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.standingsService.ComputeStandings(r.Context(), tournamentID, group)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil)
}

type overrideRequest struct {
	Entries []services.OverrideEntry `json:"entries"`
}

// ApplyOverride godoc
// @Summary Replace the computed order of a group with a manual one
// @Description The entries must be a permutation of positions 1..N over
// @Description exactly the group's teams.
// @Tags standings
// @Accept json
// @Param tournamentID path int true "Tournament ID"
// @Param group path string true "Group label"
// @Param input body overrideRequest true "Ordered positions"
// @Success 204
// @Security BearerAuth
// @Router /admin/tournaments/{tournamentID}/groups/{group}/override [put]
func (h *StandingsHandler) ApplyOverride(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	group, err := groupParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input overrideRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.standingsService.ApplyStandingsOverride(r.Context(), tournamentID, group, input.Entries); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearOverride godoc
// @Summary Remove a manual group order and fall back to the computed one
// @Tags standings
// @Param tournamentID path int true "Tournament ID"
// @Param group path string true "Group label"
// @Success 204
// @Security BearerAuth
// @Router /admin/tournaments/{tournamentID}/groups/{group}/override [delete]
func (h *StandingsHandler) ClearOverride(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	group, err := groupParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.standingsService.ClearStandingsOverride(r.Context(), tournamentID, group); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
