package handlers

import (
	"net/http"

	"github.com/pollafutbolera/polla-engine/middleware"
	"github.com/pollafutbolera/polla-engine/services"
)

type PredictionHandler struct {
	predictionService services.PredictionService
}

func NewPredictionHandler(predictionService services.PredictionService) *PredictionHandler {
	return &PredictionHandler{predictionService: predictionService}
}

// Upsert godoc
// @Summary Create or replace the caller's prediction for a match
// @Tags predictions
// @Accept json
// @Produce json
// @Param league_id query int false "League scope; omit for the global pool"
// @Param input body services.PredictionInput true "Predicted scoreline"
// @Success 200 {object} models.Prediction
// @Security BearerAuth
// @Router /predictions [put]
func (h *PredictionHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	leagueID, err := optionalLeagueID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.PredictionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	prediction, err := h.predictionService.UpsertPrediction(r.Context(), userID, leagueID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, prediction, nil)
}

// UpsertBatch godoc
// @Summary Create or replace several predictions in one call
// @Description Entries are independent; a locked match reports an error for
// @Description its own entry without aborting the rest.
// @Tags predictions
// @Accept json
// @Produce json
// @Param league_id query int false "League scope; omit for the global pool"
// @Param input body []services.PredictionInput true "Predicted scorelines"
// @Success 207 {array} services.BatchItemResult
// @Security BearerAuth
// @Router /predictions/batch [put]
func (h *PredictionHandler) UpsertBatch(w http.ResponseWriter, r *http.Request) {
	leagueID, err := optionalLeagueID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var inputs []services.PredictionInput
	if err := readJSON(w, r, &inputs); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	results, err := h.predictionService.UpsertPredictionBatch(r.Context(), userID, leagueID, inputs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusMultiStatus, jsonResponse{"results": results}, nil)
}

// Delete godoc
// @Summary Withdraw the caller's prediction for a match
// @Tags predictions
// @Param matchID path int true "Match ID"
// @Param league_id query int false "League scope; omit for the global pool"
// @Success 204
// @Security BearerAuth
// @Router /predictions/{matchID} [delete]
func (h *PredictionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
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
	if err := h.predictionService.DeletePrediction(r.Context(), userID, leagueID, matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List godoc
// @Summary List the caller's predictions for a tournament
// @Tags predictions
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param league_id query int false "League scope; omit for the global pool"
// @Success 200 {array} models.Prediction
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/predictions [get]
func (h *PredictionHandler) List(w http.ResponseWriter, r *http.Request) {
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
	predictions, err := h.predictionService.ListUserPredictions(r.Context(), userID, tournamentID, leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"predictions": predictions}, nil)
}
