package scheduler

import (
	"math"
	"time"
)

// Tunable constants of the SM-2 variant used for review scheduling. They are
// deliberately kept here, not as column defaults, so the algorithm can be
// tested without a database.
const (
	// InitialEFactor is the easiness factor every fresh progress row starts with.
	InitialEFactor = 2.5
	// MinEFactor is the floor below which easiness never drops.
	MinEFactor = 1.3
	// FirstInterval and SecondInterval are the fixed intervals (days) after the
	// first and second consecutive successful reviews.
	FirstInterval  = 1
	SecondInterval = 6

	// MinQuality..MaxQuality is the accepted rating scale. Ratings below
	// PassThreshold count as a lapse.
	MinQuality    = 0
	MaxQuality    = 5
	PassThreshold = 3
)

// State is the mutable scheduling state of one (learner, deck, card) row.
type State struct {
	Repetitions  int
	EFactor      float64
	IntervalDays int
}

// NewState returns the state a row carries at enrollment time: never
// reviewed, immediately due.
func NewState() State {
	return State{Repetitions: 0, EFactor: InitialEFactor, IntervalDays: 0}
}

// ValidQuality reports whether q is on the 0-5 rating scale.
func ValidQuality(q int) bool {
	return q >= MinQuality && q <= MaxQuality
}

// Review applies one rated review to s and returns the updated state together
// with the instant the card becomes due again. now must be captured once by
// the caller and is used for both the due date and last_review_date so the
// two fields never disagree.
//
// quality < 3 is a lapse: the streak and interval reset to zero and the card
// is due again immediately. The easiness factor is left unchanged on a lapse.
//
// quality >= 3 applies the classic SM-2 easiness adjustment
//
//	EF' = EF + (0.1 - (5-q)*(0.08 + (5-q)*0.02))
//
// clamped to MinEFactor, then grows the interval: 1 day after the first
// success, 6 after the second, round(interval * EF') after that, where
// interval is the value from before this review. Rounding is
// half-away-from-zero (math.Round); intervals are positive so this matches
// round-half-up.
func Review(s State, quality int, now time.Time) (State, time.Time) {
	if quality < PassThreshold {
		s.Repetitions = 0
		s.IntervalDays = 0
		return s, now
	}

	q := float64(quality)
	s.EFactor += 0.1 - (5-q)*(0.08+(5-q)*0.02)
	if s.EFactor < MinEFactor {
		s.EFactor = MinEFactor
	}

	s.Repetitions++
	switch s.Repetitions {
	case 1:
		s.IntervalDays = FirstInterval
	case 2:
		s.IntervalDays = SecondInterval
	default:
		s.IntervalDays = int(math.Round(float64(s.IntervalDays) * s.EFactor))
	}

	return s, now.AddDate(0, 0, s.IntervalDays)
}
