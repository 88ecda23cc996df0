package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"devshub-backend/internal/handlers"
	"devshub-backend/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	userHandler *handlers.UserHandler,
	cardHandler *handlers.CardHandler,
	deckHandler *handlers.DeckHandler,
	studyHandler *handlers.StudyHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Review submissions are cheap but chatty; cap bursts per IP.
	reviewLimiter := middleware.NewRateLimiter(120, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtAuth.Middleware)

		r.Get("/me", userHandler.Me)

		// ──── Card Routes ────
		r.Route("/cards", func(r chi.Router) {
			r.Post("/", cardHandler.Create)
			r.Get("/{id}", cardHandler.Get)
			r.Delete("/{id}", cardHandler.Delete)
		})

		// ──── Deck Routes ────
		r.Route("/decks", func(r chi.Router) {
			r.Post("/", deckHandler.Create)
			r.Get("/", deckHandler.List)
			r.Get("/{id}", deckHandler.Get)
			r.Delete("/{id}", deckHandler.Delete)
			r.Post("/{id}/cards", deckHandler.AddCard)
			r.Delete("/{id}/cards/{cardID}", deckHandler.RemoveCard)
			r.Post("/{id}/study", studyHandler.ToggleStudy)
		})

		// ──── Study Routes ────
		r.Route("/study", func(r chi.Router) {
			r.Get("/decks", studyHandler.ListStudyingDecks)
			r.Get("/next", studyHandler.NextCard)

			r.Group(func(r chi.Router) {
				r.Use(reviewLimiter.Middleware)
				r.Post("/decks/{deckID}/cards/{cardID}/review", studyHandler.SubmitReview)
			})
		})
	})

	return r
}
