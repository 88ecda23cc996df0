package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"devshub-backend/internal/middleware"
	"devshub-backend/internal/models"
	"devshub-backend/internal/repository"
)

type CardHandler struct {
	cardRepo *repository.CardRepo
}

func NewCardHandler(cardRepo *repository.CardRepo) *CardHandler {
	return &CardHandler{cardRepo: cardRepo}
}

func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", validationFields(err), r))
		return
	}

	card := &models.Card{
		AuthorID: middleware.GetLearnerID(r.Context()),
		Question: req.Question,
		Answer:   req.Answer,
	}

	if err := h.cardRepo.Create(r.Context(), card); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create card", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"card": card})
}

func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid card ID", r))
		return
	}

	card, err := h.cardRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Card not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"card": card})
}

func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid card ID", r))
		return
	}

	card, err := h.cardRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Card not found", r))
		return
	}

	if card.AuthorID != middleware.GetLearnerID(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	// Cascades to deck memberships and review_progress rows.
	if err := h.cardRepo.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete card", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Card deleted"})
}
