package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewTime = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func TestReview_LapseResetsStreak(t *testing.T) {
	for _, quality := range []int{0, 1, 2} {
		t.Run(map[int]string{0: "blackout", 1: "wrong", 2: "almost"}[quality], func(t *testing.T) {
			s := State{Repetitions: 3, EFactor: 2.0, IntervalDays: 20}

			next, due := Review(s, quality, reviewTime)

			assert.Equal(t, 0, next.Repetitions)
			assert.Equal(t, 0, next.IntervalDays)
			assert.Equal(t, reviewTime, due, "lapsed card must be due again immediately")
			assert.Equal(t, 2.0, next.EFactor, "lapse must not touch the easiness factor")
		})
	}
}

func TestReview_FirstSuccess(t *testing.T) {
	tests := []struct {
		name        string
		quality     int
		wantEFactor float64
	}{
		{"effortful", 3, 2.36},
		{"correct", 4, 2.5},
		{"effortless", 5, 2.6},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, due := Review(NewState(), tc.quality, reviewTime)

			assert.Equal(t, 1, next.Repetitions)
			assert.Equal(t, FirstInterval, next.IntervalDays)
			assert.InDelta(t, tc.wantEFactor, next.EFactor, 1e-9)
			assert.Equal(t, reviewTime.AddDate(0, 0, 1), due)
		})
	}
}

func TestReview_SecondSuccessIsAlwaysSixDays(t *testing.T) {
	for quality := 3; quality <= 5; quality++ {
		s, _ := Review(NewState(), quality, reviewTime)
		s, due := Review(s, quality, reviewTime)

		assert.Equal(t, 2, s.Repetitions)
		assert.Equal(t, SecondInterval, s.IntervalDays)
		assert.Equal(t, reviewTime.AddDate(0, 0, 6), due)
	}
}

func TestReview_ThirdSuccessUsesPreviousInterval(t *testing.T) {
	// Two perfect reviews: EF = 2.5 + 0.1 + 0.1 = 2.7, interval = 6.
	s, _ := Review(NewState(), 5, reviewTime)
	s, _ = Review(s, 5, reviewTime)
	require.Equal(t, SecondInterval, s.IntervalDays)
	require.InDelta(t, 2.7, s.EFactor, 1e-9)

	// Third: round(6 * 2.8) = 17, with the 6 read before this update.
	s, due := Review(s, 5, reviewTime)

	assert.Equal(t, 3, s.Repetitions)
	assert.InDelta(t, 2.8, s.EFactor, 1e-9)
	assert.Equal(t, 17, s.IntervalDays)
	assert.Equal(t, reviewTime.AddDate(0, 0, 17), due)
}

func TestReview_EFactorNeverDropsBelowFloor(t *testing.T) {
	s := NewState()
	for i := 0; i < 50; i++ {
		s, _ = Review(s, 3, reviewTime)
		require.GreaterOrEqual(t, s.EFactor, MinEFactor)
	}
	// A long run of barely-passing answers pins easiness to the floor.
	assert.Equal(t, MinEFactor, s.EFactor)
}

func TestReview_IntervalGrowsMonotonically(t *testing.T) {
	s := NewState()
	prev := 0
	for i := 0; i < 20; i++ {
		s, _ = Review(s, 4, reviewTime)
		require.Greater(t, s.IntervalDays, prev, "interval must grow on repetition %d", i+1)
		prev = s.IntervalDays
	}
}

func TestReview_DueDateUsesCapturedNow(t *testing.T) {
	now := time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)
	_, due := Review(NewState(), 4, now)
	assert.Equal(t, time.Date(2025, 2, 1, 23, 59, 59, 0, time.UTC), due)
}

func TestValidQuality(t *testing.T) {
	for q := 0; q <= 5; q++ {
		assert.True(t, ValidQuality(q))
	}
	assert.False(t, ValidQuality(-1))
	assert.False(t, ValidQuality(6))
}

func TestNewState(t *testing.T) {
	s := NewState()
	assert.Equal(t, 0, s.Repetitions)
	assert.Equal(t, InitialEFactor, s.EFactor)
	assert.Equal(t, 0, s.IntervalDays)
}
