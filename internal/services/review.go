package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"devshub-backend/internal/models"
	"devshub-backend/internal/scheduler"
)

// ReviewService is the review queue: it picks the next due card for a learner
// and applies rated review outcomes to their progress rows.
type ReviewService struct {
	progress ProgressStore
}

func NewReviewService(progress ProgressStore) *ReviewService {
	return &ReviewService{progress: progress}
}

// NextDue returns the earliest-due card across every deck the learner is
// enrolled in, or nil when nothing is due right now. A card is due once its
// next_review_date is at or before the current instant, so overdue cards
// surface immediately no matter how long ago they were scheduled. Pure read,
// never mutates state.
func (s *ReviewService) NextDue(ctx context.Context, learnerID uuid.UUID) (*models.DueCard, error) {
	due, err := s.progress.NextDue(ctx, learnerID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return due, nil
}

// Submit applies a quality rating (0-5) to the learner's progress on one card
// of one deck. Out-of-range quality is rejected before anything is touched.
// Submitting against a card the learner never enrolled is a caller bug and
// comes back as a not-found error, never a silent create.
func (s *ReviewService) Submit(ctx context.Context, learnerID, deckID, cardID uuid.UUID, quality int) (*models.ReviewResult, error) {
	if !scheduler.ValidQuality(quality) {
		return nil, &ValidationError{Fields: map[string]string{
			"quality": "must be between 0 and 5",
		}}
	}

	now := time.Now().UTC()
	p, err := s.progress.SubmitReview(ctx, learnerID, deckID, cardID, quality, now)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "No review progress for this card"}
		}
		return nil, err
	}

	return &models.ReviewResult{
		DeckID:         p.DeckID,
		CardID:         p.CardID,
		NextReviewDate: p.NextReviewDate,
		IntervalDays:   p.IntervalDays,
		EFactor:        p.EFactor,
		Repetitions:    p.Repetitions,
	}, nil
}
