package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"devshub-backend/internal/models"
	"devshub-backend/internal/scheduler"
)

// fakeStore is an in-memory ProgressStore/DeckStore with the same observable
// semantics as the SQL implementation: insert-if-absent enrollment, stable
// (next_review_date, insertion order) due ordering, pgx.ErrNoRows on misses.
type fakeStore struct {
	decks     map[uuid.UUID]*models.Deck
	deckCards map[uuid.UUID][]models.Card
	rows      []*fakeRow
	seq       int
}

type fakeRow struct {
	seq        int
	learnerID  uuid.UUID
	deckID     uuid.UUID
	cardID     uuid.UUID
	state      scheduler.State
	nextReview time.Time
	lastReview *time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		decks:     make(map[uuid.UUID]*models.Deck),
		deckCards: make(map[uuid.UUID][]models.Card),
	}
}

func (f *fakeStore) addDeck(title string, cards ...models.Card) uuid.UUID {
	id := uuid.New()
	f.decks[id] = &models.Deck{ID: id, Title: title}
	f.deckCards[id] = cards
	return id
}

func makeCard(question string) models.Card {
	return models.Card{ID: uuid.New(), Question: question, Answer: "answer to " + question}
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Deck, error) {
	d, ok := f.decks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return d, nil
}

func (f *fakeStore) findRow(learnerID, deckID, cardID uuid.UUID) *fakeRow {
	for _, r := range f.rows {
		if r.learnerID == learnerID && r.deckID == deckID && r.cardID == cardID {
			return r
		}
	}
	return nil
}

func (f *fakeStore) EnrollDeck(_ context.Context, learnerID, deckID uuid.UUID) error {
	for _, c := range f.deckCards[deckID] {
		if f.findRow(learnerID, deckID, c.ID) != nil {
			continue
		}
		f.seq++
		f.rows = append(f.rows, &fakeRow{
			seq:        f.seq,
			learnerID:  learnerID,
			deckID:     deckID,
			cardID:     c.ID,
			state:      scheduler.NewState(),
			nextReview: time.Now().UTC(),
		})
	}
	return nil
}

func (f *fakeStore) UnenrollDeck(_ context.Context, learnerID, deckID uuid.UUID) error {
	kept := f.rows[:0]
	for _, r := range f.rows {
		if !(r.learnerID == learnerID && r.deckID == deckID) {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

func (f *fakeStore) IsStudying(_ context.Context, learnerID, deckID uuid.UUID) (bool, error) {
	for _, r := range f.rows {
		if r.learnerID == learnerID && r.deckID == deckID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) StudyingDeckIDs(_ context.Context, learnerID uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	ids := []uuid.UUID{}
	for _, r := range f.rows {
		if r.learnerID == learnerID && !seen[r.deckID] {
			seen[r.deckID] = true
			ids = append(ids, r.deckID)
		}
	}
	return ids, nil
}

func (f *fakeStore) NextDue(_ context.Context, learnerID uuid.UUID, now time.Time) (*models.DueCard, error) {
	var due []*fakeRow
	for _, r := range f.rows {
		if r.learnerID == learnerID && !r.nextReview.After(now) {
			due = append(due, r)
		}
	}
	if len(due) == 0 {
		return nil, pgx.ErrNoRows
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].nextReview.Equal(due[j].nextReview) {
			return due[i].nextReview.Before(due[j].nextReview)
		}
		return due[i].seq < due[j].seq
	})
	r := due[0]
	for _, c := range f.deckCards[r.deckID] {
		if c.ID == r.cardID {
			return &models.DueCard{CardID: c.ID, DeckID: r.deckID, Question: c.Question, Answer: c.Answer}, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) SubmitReview(_ context.Context, learnerID, deckID, cardID uuid.UUID, quality int, now time.Time) (*models.ReviewProgress, error) {
	r := f.findRow(learnerID, deckID, cardID)
	if r == nil {
		return nil, pgx.ErrNoRows
	}

	state, dueAt := scheduler.Review(r.state, quality, now)
	year, month, day := now.Date()
	lastReview := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)

	r.state = state
	r.nextReview = dueAt
	r.lastReview = &lastReview

	return &models.ReviewProgress{
		LearnerID:      learnerID,
		DeckID:         deckID,
		CardID:         cardID,
		Repetitions:    state.Repetitions,
		EFactor:        state.EFactor,
		IntervalDays:   state.IntervalDays,
		NextReviewDate: dueAt,
		LastReviewDate: &lastReview,
	}, nil
}
