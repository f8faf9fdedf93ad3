package handlers

import (
	"net/http"

	"github.com/pollafutbolera/polla-engine/services"
)

type ResultHandler struct {
	resultService services.ResultService
}

func NewResultHandler(resultService services.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// Apply godoc
// @Summary Apply a status/score update to a match
// @Description Manual counterpart of the queue consumer; used for corrections
// @Description and for deployments without a broker. Idempotent.
// @Tags results
// @Accept json
// @Param matchID path int true "Match ID"
// @Param input body services.ResultUpdate true "Status and final score"
// @Success 204
// @Security BearerAuth
// @Router /admin/matches/{matchID}/result [put]
func (h *ResultHandler) Apply(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var update services.ResultUpdate
	if err := readJSON(w, r, &update); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	update.MatchID = matchID

	if err := h.resultService.ApplyResult(r.Context(), update); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
