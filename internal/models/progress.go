package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewProgress is one learner's scheduling state for one card inside one
// deck. A card studied in two decks has two independent rows.
type ReviewProgress struct {
	ID             uuid.UUID  `json:"id"`
	LearnerID      uuid.UUID  `json:"learner_id"`
	DeckID         uuid.UUID  `json:"deck_id"`
	CardID         uuid.UUID  `json:"card_id"`
	Repetitions    int        `json:"repetitions"`
	EFactor        float64    `json:"efactor"`
	IntervalDays   int        `json:"interval"`
	NextReviewDate time.Time  `json:"next_review_date"`
	LastReviewDate *time.Time `json:"last_review_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// DueCard is what the review queue hands to the client: the card to show
// plus the deck context it is being studied in.
type DueCard struct {
	CardID   uuid.UUID `json:"card_id"`
	DeckID   uuid.UUID `json:"deck_id"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
}

type SubmitReviewRequest struct {
	Quality int `json:"quality" validate:"min=0,max=5"`
}

type ReviewResult struct {
	DeckID         uuid.UUID `json:"deck_id"`
	CardID         uuid.UUID `json:"card_id"`
	NextReviewDate time.Time `json:"next_review_date"`
	IntervalDays   int       `json:"interval"`
	EFactor        float64   `json:"efactor"`
	Repetitions    int       `json:"repetitions"`
}

type ToggleStudyResponse struct {
	IsStudying bool `json:"is_studying"`
}
