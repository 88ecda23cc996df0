package services

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"devshub-backend/internal/models"
)

const (
	studyReminderThrottle    = 72 * time.Hour
	notificationPollInterval = 1 * time.Hour
)

// DueReviewLister yields learners who currently have at least one due card.
type DueReviewLister interface {
	ListLearnersWithDueReviews(ctx context.Context, now time.Time) ([]models.User, error)
}

// NotificationScheduler periodically nudges learners whose review queue is
// non-empty. Due-ness itself is computed lazily at query time; this loop only
// reads it, it never advances any scheduling state.
type NotificationScheduler struct {
	progress DueReviewLister
	email    *EmailService
	redis    *redis.Client
	stopChan chan struct{}
}

func NewNotificationScheduler(progress DueReviewLister, email *EmailService, redisClient *redis.Client) *NotificationScheduler {
	return &NotificationScheduler{
		progress: progress,
		email:    email,
		redis:    redisClient,
		stopChan: make(chan struct{}),
	}
}

func (s *NotificationScheduler) Start() {
	if s.progress == nil || s.email == nil {
		return
	}

	go s.loop()

	log.Printf("Notification scheduler started")
}

func (s *NotificationScheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *NotificationScheduler) loop() {
	// Run on startup as well as by interval.
	s.sendStudyReminders(context.Background(), time.Now().UTC())

	ticker := time.NewTicker(notificationPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sendStudyReminders(context.Background(), time.Now().UTC())
		}
	}
}

func (s *NotificationScheduler) sendStudyReminders(ctx context.Context, now time.Time) {
	recipients, err := s.progress.ListLearnersWithDueReviews(ctx, now)
	if err != nil {
		log.Printf("study reminders: failed to list recipients: %v", err)
		return
	}

	for _, u := range recipients {
		if !s.claimReminder(ctx, u.ID.String()) {
			continue
		}
		if err := s.email.SendStudyReminder(u.Email, u.FullName); err != nil {
			log.Printf("study reminders: failed to email %s: %v", u.Email, err)
		}
	}
}

// claimReminder marks the learner as reminded for the throttle window.
// Returns false when a reminder was already sent within the window, possibly
// by another instance.
func (s *NotificationScheduler) claimReminder(ctx context.Context, learnerID string) bool {
	if s.redis == nil {
		return true
	}
	ok, err := s.redis.SetNX(ctx, "study_reminder_sent:"+learnerID, 1, studyReminderThrottle).Result()
	if err != nil {
		log.Printf("study reminders: throttle check failed for %s: %v", learnerID, err)
		return false
	}
	return ok
}
