package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"devshub-backend/internal/models"
)

const studyingDecksCacheTTL = 10 * time.Minute

// ProgressStore is the review_progress persistence used by the study and
// review services.
type ProgressStore interface {
	EnrollDeck(ctx context.Context, learnerID, deckID uuid.UUID) error
	UnenrollDeck(ctx context.Context, learnerID, deckID uuid.UUID) error
	IsStudying(ctx context.Context, learnerID, deckID uuid.UUID) (bool, error)
	StudyingDeckIDs(ctx context.Context, learnerID uuid.UUID) ([]uuid.UUID, error)
	NextDue(ctx context.Context, learnerID uuid.UUID, now time.Time) (*models.DueCard, error)
	SubmitReview(ctx context.Context, learnerID, deckID, cardID uuid.UUID, quality int, now time.Time) (*models.ReviewProgress, error)
}

type DeckStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Deck, error)
}

// StudyService owns deck study membership: which decks a learner is actively
// tracking, and the bulk creation/removal of their progress rows.
type StudyService struct {
	progress ProgressStore
	decks    DeckStore
	redis    *redis.Client
}

func NewStudyService(progress ProgressStore, decks DeckStore, redisClient *redis.Client) *StudyService {
	return &StudyService{
		progress: progress,
		decks:    decks,
		redis:    redisClient,
	}
}

func (s *StudyService) IsStudying(ctx context.Context, learnerID, deckID uuid.UUID) (bool, error) {
	return s.progress.IsStudying(ctx, learnerID, deckID)
}

// Enroll seeds a progress row for every card currently in the deck. Cards the
// learner already tracks keep their state, so calling Enroll again is safe.
// Enrolling an empty deck succeeds and creates nothing.
func (s *StudyService) Enroll(ctx context.Context, learnerID, deckID uuid.UUID) error {
	if _, err := s.decks.GetByID(ctx, deckID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Message: "Deck not found"}
		}
		return err
	}
	if err := s.progress.EnrollDeck(ctx, learnerID, deckID); err != nil {
		return err
	}
	s.invalidateStudyingCache(ctx, learnerID)
	return nil
}

// Unenroll deletes every progress row the learner has for the deck,
// discarding accumulated scheduling state irreversibly.
func (s *StudyService) Unenroll(ctx context.Context, learnerID, deckID uuid.UUID) error {
	if err := s.progress.UnenrollDeck(ctx, learnerID, deckID); err != nil {
		return err
	}
	s.invalidateStudyingCache(ctx, learnerID)
	return nil
}

// Toggle flips whether the learner studies the deck. Enrolling seeds one
// progress row per deck card, skipping cards the learner already tracks, so
// a redundant toggle pair never resets accumulated progress. Unenrolling
// deletes every row for the deck. The returned flag is the membership state
// after the operation, re-read from storage: toggling an empty deck on
// creates zero rows and honestly reports not-studying.
func (s *StudyService) Toggle(ctx context.Context, learnerID, deckID uuid.UUID) (bool, error) {
	studying, err := s.progress.IsStudying(ctx, learnerID, deckID)
	if err != nil {
		return false, err
	}

	if studying {
		err = s.Unenroll(ctx, learnerID, deckID)
	} else {
		err = s.Enroll(ctx, learnerID, deckID)
	}
	if err != nil {
		return false, err
	}

	return s.progress.IsStudying(ctx, learnerID, deckID)
}

// ListStudyingDeckIDs answers which decks the learner is tracking. The set is
// read by listing pages on every request, so it is cached in Redis and
// invalidated whenever Toggle changes membership.
func (s *StudyService) ListStudyingDeckIDs(ctx context.Context, learnerID uuid.UUID) ([]uuid.UUID, error) {
	cacheKey := s.studyingCacheKey(learnerID)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var ids []uuid.UUID
			if err := json.Unmarshal([]byte(cached), &ids); err == nil {
				return ids, nil
			}
		}
	}

	ids, err := s.progress.StudyingDeckIDs(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if payload, err := json.Marshal(ids); err == nil {
			s.redis.Set(ctx, cacheKey, payload, studyingDecksCacheTTL)
		}
	}

	return ids, nil
}

func (s *StudyService) studyingCacheKey(learnerID uuid.UUID) string {
	return fmt.Sprintf("studying_decks:%s", learnerID)
}

func (s *StudyService) invalidateStudyingCache(ctx context.Context, learnerID uuid.UUID) {
	if s.redis != nil {
		s.redis.Del(ctx, s.studyingCacheKey(learnerID))
	}
}
