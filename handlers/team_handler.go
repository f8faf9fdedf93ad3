package handlers

import (
	"errors"
	"net/http"

	"github.com/pollafutbolera/polla-engine/services"
)

const maxFlagSize = 5 << 20 // 5MB

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(teamService services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// Get godoc
// @Summary Fetch a team with its flag URL
// @Tags teams
// @Produce json
// @Param teamID path int true "Team ID"
// @Success 200 {object} models.Team
// @Router /teams/{teamID} [get]
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.GetTeam(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, team, nil)
}

// UploadFlag godoc
// @Summary Upload a team's flag image
// @Tags teams
// @Accept multipart/form-data
// @Produce json
// @Param teamID path int true "Team ID"
// @Param flag formData file true "Flag image"
// @Success 200 {object} models.Team
// @Security BearerAuth
// @Router /admin/teams/{teamID}/flag [post]
func (h *TeamHandler) UploadFlag(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxFlagSize); err != nil {
		badRequestResponse(w, r, errors.New("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("flag")
	if err != nil {
		badRequestResponse(w, r, errors.New("flag file is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	team, err := h.teamService.UploadFlag(r.Context(), teamID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, team, nil)
}
