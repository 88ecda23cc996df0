package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"devshub-backend/internal/middleware"
	"devshub-backend/internal/models"
	"devshub-backend/internal/services"
)

type StudyHandler struct {
	study  *services.StudyService
	review *services.ReviewService
}

func NewStudyHandler(study *services.StudyService, review *services.ReviewService) *StudyHandler {
	return &StudyHandler{study: study, review: review}
}

// ToggleStudy enrolls the learner into the deck, or unenrolls them when they
// already study it. Enrollment seeds one progress row per card in the deck.
func (h *StudyHandler) ToggleStudy(w http.ResponseWriter, r *http.Request) {
	deckID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid deck ID", r))
		return
	}

	learnerID := middleware.GetLearnerID(r.Context())

	studying, err := h.study.Toggle(r.Context(), learnerID, deckID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ToggleStudyResponse{IsStudying: studying})
}

// NextCard hands out the earliest-due card across every deck the learner
// studies, or {"done": true} when nothing is due right now.
func (h *StudyHandler) NextCard(w http.ResponseWriter, r *http.Request) {
	learnerID := middleware.GetLearnerID(r.Context())

	due, err := h.review.NextDue(r.Context(), learnerID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if due == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"done": true})
		return
	}

	writeJSON(w, http.StatusOK, due)
}

// SubmitReview records a 0-5 quality rating for one card of one deck and
// returns the rescheduled progress.
func (h *StudyHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	deckID, err := uuid.Parse(chi.URLParam(r, "deckID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid deck ID", r))
		return
	}
	cardID, err := uuid.Parse(chi.URLParam(r, "cardID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid card ID", r))
		return
	}

	var req models.SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", validationFields(err), r))
		return
	}

	learnerID := middleware.GetLearnerID(r.Context())

	result, err := h.review.Submit(r.Context(), learnerID, deckID, cardID, req.Quality)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListStudyingDecks marks which decks the learner actively tracks.
func (h *StudyHandler) ListStudyingDecks(w http.ResponseWriter, r *http.Request) {
	learnerID := middleware.GetLearnerID(r.Context())

	ids, err := h.study.ListStudyingDeckIDs(r.Context(), learnerID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"deck_ids": ids})
}
