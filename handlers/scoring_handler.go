package handlers

import (
	"net/http"

	"github.com/pollafutbolera/polla-engine/middleware"
	"github.com/pollafutbolera/polla-engine/services"
)

type ScoringHandler struct {
	scoringService services.ScoringService
}

func NewScoringHandler(scoringService services.ScoringService) *ScoringHandler {
	return &ScoringHandler{scoringService: scoringService}
}

// MyTotals godoc
// @Summary Break down the caller's points for a tournament
// @Tags scoring
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param league_id query int false "League scope; omit for the global pool"
// @Success 200 {object} services.UserTotals
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/me/totals [get]
func (h *ScoringHandler) MyTotals(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	leagueID, err := optionalLeagueID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	totals, err := h.scoringService.GetUserTotals(r.Context(), userID, tournamentID, leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, totals, nil)
}

// Leaderboard godoc
// @Summary Rank every participant of a tournament by total points
// @Description Demo accounts are excluded. Ties share points but are ordered
// @Description deterministically by user id.
// @Tags scoring
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param league_id query int false "League scope; omit for the global pool"
// @Success 200 {array} services.LeaderboardEntry
// @Router /tournaments/{tournamentID}/leaderboard [get]
func (h *ScoringHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	leagueID, err := optionalLeagueID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.scoringService.Leaderboard(r.Context(), tournamentID, leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": entries}, nil)
}

// ReplayBrackets godoc
// @Summary Zero all bracket points for a tournament and re-credit them
// @Description Corrective recalculation after a result correction. Safe to
// @Description run repeatedly.
// @Tags scoring
// @Param tournamentID path int true "Tournament ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/tournaments/{tournamentID}/brackets/replay [post]
func (h *ScoringHandler) ReplayBrackets(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.scoringService.ResetAndReplayBrackets(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
