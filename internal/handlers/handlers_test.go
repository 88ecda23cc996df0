package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"devshub-backend/internal/middleware"
	"devshub-backend/internal/services"
)

// serve runs a handler through a chi router so URL params resolve, with a
// learner ID injected the way the auth middleware would.
func serve(t *testing.T, method, pattern, target string, body []byte, handler http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.MethodFunc(method, pattern, handler)

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(context.WithValue(req.Context(), middleware.LearnerIDKey, uuid.New()))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp.Error.Code
}

// ─── Card Handler Tests ───

func TestCreateCard_InvalidBody(t *testing.T) {
	h := &CardHandler{}

	rr := serve(t, http.MethodPost, "/cards", "/cards", []byte("{not json"), h.Create)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
	if code := decodeError(t, rr); code != "VALIDATION_ERROR" {
		t.Errorf("Expected code VALIDATION_ERROR, got %q", code)
	}
}

func TestCreateCard_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing question", map[string]string{"answer": "42"}},
		{"missing answer", map[string]string{"question": "What is the answer?"}},
		{"empty body", map[string]string{}},
	}

	h := &CardHandler{}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			jsonBody, _ := json.Marshal(tc.body)

			rr := serve(t, http.MethodPost, "/cards", "/cards", jsonBody, h.Create)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rr.Code)
			}
		})
	}
}

func TestGetCard_InvalidID(t *testing.T) {
	h := &CardHandler{}

	rr := serve(t, http.MethodGet, "/cards/{id}", "/cards/not-a-uuid", nil, h.Get)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

// ─── Study Handler Tests ───

func TestToggleStudy_InvalidDeckID(t *testing.T) {
	h := &StudyHandler{}

	rr := serve(t, http.MethodPost, "/decks/{id}/study", "/decks/abc/study", nil, h.ToggleStudy)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestSubmitReview_InvalidIDs(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"bad deck id", "/study/decks/nope/cards/" + uuid.NewString() + "/review"},
		{"bad card id", "/study/decks/" + uuid.NewString() + "/cards/nope/review"},
	}

	h := &StudyHandler{}
	jsonBody, _ := json.Marshal(map[string]int{"quality": 4})

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(t, http.MethodPost, "/study/decks/{deckID}/cards/{cardID}/review", tc.target, jsonBody, h.SubmitReview)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rr.Code)
			}
			if code := decodeError(t, rr); code != "VALIDATION_ERROR" {
				t.Errorf("Expected code VALIDATION_ERROR, got %q", code)
			}
		})
	}
}

func TestSubmitReview_InvalidBody(t *testing.T) {
	h := &StudyHandler{}
	target := "/study/decks/" + uuid.NewString() + "/cards/" + uuid.NewString() + "/review"

	rr := serve(t, http.MethodPost, "/study/decks/{deckID}/cards/{cardID}/review", target, []byte("quality=5"), h.SubmitReview)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestSubmitReview_QualityOutOfRange(t *testing.T) {
	h := &StudyHandler{}
	target := "/study/decks/" + uuid.NewString() + "/cards/" + uuid.NewString() + "/review"
	jsonBody, _ := json.Marshal(map[string]int{"quality": 6})

	rr := serve(t, http.MethodPost, "/study/decks/{deckID}/cards/{cardID}/review", target, jsonBody, h.SubmitReview)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}

	var resp struct {
		Error struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected code VALIDATION_ERROR, got %q", resp.Error.Code)
	}
	if _, ok := resp.Error.Fields["Quality"]; !ok {
		t.Errorf("Expected a field error for Quality, got %v", resp.Error.Fields)
	}
}

// ─── Error Envelope Tests ───

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
		code     string
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"quality": "must be between 0 and 5"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", &services.NotFoundError{Message: "Deck not found"}, http.StatusNotFound, "NOT_FOUND"},
		{"conflict", &services.ConflictError{Message: "Already exists"}, http.StatusConflict, "CONFLICT"},
		{"forbidden", &services.ForbiddenError{Message: "Access denied"}, http.StatusForbidden, "FORBIDDEN"},
		{"unknown", context.DeadlineExceeded, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", "req-123")
			rr := httptest.NewRecorder()

			handleServiceError(rr, req, tc.err)

			if rr.Code != tc.expected {
				t.Errorf("Expected status %d, got %d", tc.expected, rr.Code)
			}
			if code := decodeError(t, rr); code != tc.code {
				t.Errorf("Expected code %q, got %q", tc.code, code)
			}
		})
	}
}

func TestErrorRespCarriesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-456")

	resp := errorResp("NOT_FOUND", "Card not found", req)

	if resp.Error.RequestID != "req-456" {
		t.Errorf("Expected request ID 'req-456', got %q", resp.Error.RequestID)
	}
}
