package handlers

import (
	"net/http"
	"time"

	"github.com/pollafutbolera/polla-engine/middleware"
	"github.com/pollafutbolera/polla-engine/models"
	"github.com/pollafutbolera/polla-engine/services"
)

type BonusHandler struct {
	bonusService services.BonusService
}

func NewBonusHandler(bonusService services.BonusService) *BonusHandler {
	return &BonusHandler{bonusService: bonusService}
}

// List godoc
// @Summary List the bonus questions of a tournament
// @Tags bonus
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {array} models.BonusQuestion
// @Router /tournaments/{tournamentID}/bonus-questions [get]
func (h *BonusHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	questions, err := h.bonusService.ListQuestions(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"questions": questions}, nil)
}

type createQuestionRequest struct {
	Question string    `json:"question"`
	Points   int       `json:"points"`
	LocksAt  time.Time `json:"locks_at"`
}

// Create godoc
// @Summary Add a bonus question to a tournament
// @Tags bonus
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body createQuestionRequest true "Question payload"
// @Success 201 {object} models.BonusQuestion
// @Security BearerAuth
// @Router /admin/tournaments/{tournamentID}/bonus-questions [post]
func (h *BonusHandler) Create(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input createQuestionRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	question, err := h.bonusService.CreateQuestion(r.Context(), &models.BonusQuestion{
		TournamentID: tournamentID,
		Question:     input.Question,
		Points:       input.Points,
		LocksAt:      input.LocksAt,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, question, nil)
}

type answerRequest struct {
	Answer string `json:"answer"`
}

// Answer godoc
// @Summary Submit or replace the caller's answer to a bonus question
// @Tags bonus
// @Accept json
// @Produce json
// @Param questionID path int true "Question ID"
// @Param input body answerRequest true "Free-form answer"
// @Success 200 {object} models.BonusAnswer
// @Security BearerAuth
// @Router /bonus-questions/{questionID}/answer [put]
func (h *BonusHandler) Answer(w http.ResponseWriter, r *http.Request) {
	questionID, err := urlParamInt(r, "questionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input answerRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	answer, err := h.bonusService.SubmitAnswer(r.Context(), userID, questionID, input.Answer)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, answer, nil)
}

type resolveRequest struct {
	CorrectAnswer string `json:"correct_answer"`
}

// Resolve godoc
// @Summary Resolve a bonus question and grade every answer
// @Description Grading happens once; resolving an already resolved question
// @Description is rejected.
// @Tags bonus
// @Accept json
// @Param questionID path int true "Question ID"
// @Param input body resolveRequest true "Correct answer"
// @Success 204
// @Security BearerAuth
// @Router /admin/bonus-questions/{questionID}/resolve [post]
func (h *BonusHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	questionID, err := urlParamInt(r, "questionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input resolveRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.bonusService.ResolveQuestion(r.Context(), questionID, input.CorrectAnswer); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
