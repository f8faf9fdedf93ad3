package handlers

import (
	"errors"
	"net/http"

	"github.com/pollafutbolera/polla-engine/middleware"
	"github.com/pollafutbolera/polla-engine/services"
)

type LeagueHandler struct {
	leagueService services.LeagueService
}

func NewLeagueHandler(leagueService services.LeagueService) *LeagueHandler {
	return &LeagueHandler{leagueService: leagueService}
}

type createLeagueRequest struct {
	TournamentID int    `json:"tournament_id"`
	Name         string `json:"name"`
}

// Create godoc
// @Summary Create a private league for a tournament
// @Tags leagues
// @Accept json
// @Produce json
// @Param input body createLeagueRequest true "League payload"
// @Success 201 {object} models.League
// @Security BearerAuth
// @Router /leagues [post]
func (h *LeagueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input createLeagueRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	league, err := h.leagueService.CreateLeague(r.Context(), userID, input.TournamentID, input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, league, nil)
}

type joinLeagueRequest struct {
	InviteCode string `json:"invite_code"`
}

// Join godoc
// @Summary Join a league with its invite code
// @Tags leagues
// @Accept json
// @Produce json
// @Param input body joinLeagueRequest true "Invite code"
// @Success 200 {object} models.League
// @Security BearerAuth
// @Router /leagues/join [post]
func (h *LeagueHandler) Join(w http.ResponseWriter, r *http.Request) {
	var input joinLeagueRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.InviteCode == "" {
		badRequestResponse(w, r, errors.New("invite_code is required"))
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	league, err := h.leagueService.JoinByInviteCode(r.Context(), userID, input.InviteCode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, league, nil)
}

// Members godoc
// @Summary List the members of a league
// @Tags leagues
// @Produce json
// @Param leagueID path int true "League ID"
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /leagues/{leagueID}/members [get]
func (h *LeagueHandler) Members(w http.ResponseWriter, r *http.Request) {
	leagueID, err := urlParamInt(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	members, err := h.leagueService.ListMembers(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"members": members}, nil)
}
