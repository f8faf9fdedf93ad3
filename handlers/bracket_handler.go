package handlers

import (
	"net/http"

	"github.com/pollafutbolera/polla-engine/middleware"
	"github.com/pollafutbolera/polla-engine/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bracketService services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bracketService}
}

// Get godoc
// @Summary Fetch the caller's bracket for a tournament
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param league_id query int false "League scope; omit for the global pool"
// @Success 200 {object} models.Bracket
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/bracket [get]
func (h *BracketHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	bracket, err := h.bracketService.GetBracket(r.Context(), userID, tournamentID, leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bracket, nil)
}

type savePicksRequest struct {
	Picks map[int]int `json:"picks"`
}

// SavePicks godoc
// @Summary Merge winner picks into the caller's bracket
// @Description Picks for matches whose phase has started are rejected; the
// @Description rest of the map merges over the stored picks.
// @Tags brackets
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param league_id query int false "League scope; omit for the global pool"
// @Param input body savePicksRequest true "Match to winner-team map"
// @Success 200 {object} models.Bracket
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/bracket [put]
func (h *BracketHandler) SavePicks(w http.ResponseWriter, r *http.Request) {
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

	var input savePicksRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	bracket, err := h.bracketService.SavePicks(r.Context(), userID, tournamentID, leagueID, input.Picks)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bracket, nil)
}
