package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"devshub-backend/internal/models"
	"devshub-backend/internal/scheduler"
)

type ProgressRepo struct {
	pool *pgxpool.Pool
}

func NewProgressRepo(pool *pgxpool.Pool) *ProgressRepo {
	return &ProgressRepo{pool: pool}
}

// EnrollDeck seeds one review_progress row per card currently in the deck.
// Rows that already exist keep their state untouched, so re-enrolling never
// resets a learner's progress. A single bulk statement handles large decks.
func (r *ProgressRepo) EnrollDeck(ctx context.Context, learnerID, deckID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO review_progress (learner_id, deck_id, card_id, efactor, next_review_date)
		SELECT $1, dc.deck_id, dc.card_id, $3, NOW()
		FROM deck_cards dc
		WHERE dc.deck_id = $2
		ON CONFLICT (learner_id, deck_id, card_id) DO NOTHING
	`, learnerID, deckID, scheduler.InitialEFactor)
	return err
}

// UnenrollDeck drops every progress row the learner has for the deck. All
// accumulated scheduling state is discarded irreversibly.
func (r *ProgressRepo) UnenrollDeck(ctx context.Context, learnerID, deckID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"DELETE FROM review_progress WHERE learner_id = $1 AND deck_id = $2",
		learnerID, deckID,
	)
	return err
}

func (r *ProgressRepo) IsStudying(ctx context.Context, learnerID, deckID uuid.UUID) (bool, error) {
	var studying bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM review_progress WHERE learner_id = $1 AND deck_id = $2)",
		learnerID, deckID,
	).Scan(&studying)
	return studying, err
}

func (r *ProgressRepo) StudyingDeckIDs(ctx context.Context, learnerID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT DISTINCT deck_id FROM review_progress WHERE learner_id = $1",
		learnerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// NextDue returns the earliest-due card for the learner across all enrolled
// decks, or pgx.ErrNoRows when nothing is due at the given instant. The id
// tie-break keeps ordering stable when several cards share a due date.
func (r *ProgressRepo) NextDue(ctx context.Context, learnerID uuid.UUID, now time.Time) (*models.DueCard, error) {
	due := &models.DueCard{}
	err := r.pool.QueryRow(ctx, `
		SELECT rp.card_id, rp.deck_id, c.question, c.answer
		FROM review_progress rp
		JOIN cards c ON c.id = rp.card_id
		WHERE rp.learner_id = $1 AND rp.next_review_date <= $2
		ORDER BY rp.next_review_date, rp.id
		LIMIT 1
	`, learnerID, now).Scan(&due.CardID, &due.DeckID, &due.Question, &due.Answer)
	if err != nil {
		return nil, err
	}
	return due, nil
}

// SubmitReview applies one rated review to the (learner, deck, card) row and
// returns the updated row. The read and write happen inside one transaction
// with the row locked FOR UPDATE, so concurrent submissions for the same card
// serialize instead of clobbering each other's repetition counts. Returns
// pgx.ErrNoRows when the learner is not enrolled on the card.
func (r *ProgressRepo) SubmitReview(ctx context.Context, learnerID, deckID, cardID uuid.UUID, quality int, now time.Time) (*models.ReviewProgress, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	p := &models.ReviewProgress{
		LearnerID: learnerID,
		DeckID:    deckID,
		CardID:    cardID,
	}
	var state scheduler.State
	err = tx.QueryRow(ctx, `
		SELECT id, repetitions, efactor, interval_days, created_at
		FROM review_progress
		WHERE learner_id = $1 AND deck_id = $2 AND card_id = $3
		FOR UPDATE
	`, learnerID, deckID, cardID).Scan(&p.ID, &state.Repetitions, &state.EFactor, &state.IntervalDays, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	state, dueAt := scheduler.Review(state, quality, now)
	year, month, day := now.Date()
	lastReview := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)

	err = tx.QueryRow(ctx, `
		UPDATE review_progress
		SET repetitions = $2,
		    efactor = $3,
		    interval_days = $4,
		    next_review_date = $5,
		    last_review_date = $6,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, p.ID, state.Repetitions, state.EFactor, state.IntervalDays, dueAt, lastReview).Scan(&p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	p.Repetitions = state.Repetitions
	p.EFactor = state.EFactor
	p.IntervalDays = state.IntervalDays
	p.NextReviewDate = dueAt
	p.LastReviewDate = &lastReview
	return p, nil
}

// ListLearnersWithDueReviews returns each learner with at least one due card,
// with the number of cards waiting. Feeds the reminder scheduler.
func (r *ProgressRepo) ListLearnersWithDueReviews(ctx context.Context, now time.Time) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.email, u.full_name, u.created_at
		FROM users u
		WHERE EXISTS (
			SELECT 1 FROM review_progress rp
			WHERE rp.learner_id = u.id AND rp.next_review_date <= $1
		)
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
