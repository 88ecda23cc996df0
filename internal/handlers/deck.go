package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"devshub-backend/internal/middleware"
	"devshub-backend/internal/models"
	"devshub-backend/internal/repository"
	"devshub-backend/internal/services"
)

type DeckHandler struct {
	deckRepo *repository.DeckRepo
	cardRepo *repository.CardRepo
	study    *services.StudyService
}

func NewDeckHandler(deckRepo *repository.DeckRepo, cardRepo *repository.CardRepo, study *services.StudyService) *DeckHandler {
	return &DeckHandler{deckRepo: deckRepo, cardRepo: cardRepo, study: study}
}

func (h *DeckHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", validationFields(err), r))
		return
	}

	learnerID := middleware.GetLearnerID(r.Context())

	for _, cardID := range req.CardIDs {
		if _, err := h.cardRepo.GetByID(r.Context(), cardID); err != nil {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Card not found: "+cardID.String(), r))
			return
		}
	}

	deck := &models.Deck{
		AuthorID:    learnerID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := h.deckRepo.Create(r.Context(), deck); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create deck", r))
		return
	}

	for _, cardID := range req.CardIDs {
		if err := h.deckRepo.AddCard(r.Context(), deck.ID, cardID); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to add cards", r))
			return
		}
	}
	deck.CardCount = len(req.CardIDs)

	writeJSON(w, http.StatusCreated, map[string]interface{}{"deck": deck})
}

func (h *DeckHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid deck ID", r))
		return
	}

	deck, err := h.deckRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Deck not found", r))
		return
	}

	cards, _ := h.deckRepo.GetCards(r.Context(), id)

	learnerID := middleware.GetLearnerID(r.Context())
	isStudying, _ := h.study.IsStudying(r.Context(), learnerID, id)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deck":        deck,
		"cards":       cards,
		"is_studying": isStudying,
	})
}

func (h *DeckHandler) List(w http.ResponseWriter, r *http.Request) {
	learnerID := middleware.GetLearnerID(r.Context())

	decks, err := h.deckRepo.ListByAuthor(r.Context(), learnerID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch decks", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"decks": decks})
}

func (h *DeckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid deck ID", r))
		return
	}

	deck, err := h.deckRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Deck not found", r))
		return
	}

	learnerID := middleware.GetLearnerID(r.Context())
	if deck.AuthorID != learnerID {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	// Cascades to deck_cards and every learner's review_progress rows.
	if err := h.deckRepo.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete deck", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Deck deleted"})
}

func (h *DeckHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid deck ID", r))
		return
	}

	var req models.AddCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", validationFields(err), r))
		return
	}

	deck, err := h.deckRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Deck not found", r))
		return
	}

	learnerID := middleware.GetLearnerID(r.Context())
	if deck.AuthorID != learnerID {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	if _, err := h.cardRepo.GetByID(r.Context(), req.CardID); err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Card not found", r))
		return
	}

	if err := h.deckRepo.AddCard(r.Context(), id, req.CardID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to add card", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Card added to deck"})
}

func (h *DeckHandler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid deck ID", r))
		return
	}
	cardID, err := uuid.Parse(chi.URLParam(r, "cardID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid card ID", r))
		return
	}

	deck, err := h.deckRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Deck not found", r))
		return
	}

	learnerID := middleware.GetLearnerID(r.Context())
	if deck.AuthorID != learnerID {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	if err := h.deckRepo.RemoveCard(r.Context(), id, cardID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to remove card", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Card removed from deck"})
}
