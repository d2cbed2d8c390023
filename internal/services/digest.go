package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"revisit-backend/internal/repository"
)

const (
	// DigestQueue is the redis list the worker pool consumes.
	DigestQueue        = "queue:digest-email"
	digestPollInterval = time.Minute
)

// DigestJob is the payload enqueued for the worker pool. The focus set is
// resolved at enqueue time so the worker only has to render and send.
type DigestJob struct {
	UserID          uuid.UUID       `json:"user_id"`
	Email           string          `json:"email"`
	FullName        string          `json:"full_name"`
	AIEncouragement bool            `json:"ai_encouragement"`
	Problems        []DigestProblem `json:"problems"`
	Remaining       int             `json:"remaining"`
}

// DigestScheduler walks all users once a minute and enqueues a digest job for
// everyone whose email time has arrived. Sends are at-most-once per day: the
// sent marker is written at enqueue time.
type DigestScheduler struct {
	userRepo *repository.UserRepo
	problems *ProblemService
	redis    *redis.Client
	now      func() time.Time
	stopChan chan struct{}
}

func NewDigestScheduler(userRepo *repository.UserRepo, problems *ProblemService, redisClient *redis.Client, now func() time.Time) *DigestScheduler {
	if now == nil {
		now = time.Now
	}
	return &DigestScheduler{
		userRepo: userRepo,
		problems: problems,
		redis:    redisClient,
		now:      now,
		stopChan: make(chan struct{}),
	}
}

func (s *DigestScheduler) Start() {
	go s.loop()
	log.Printf("Digest scheduler started")
}

func (s *DigestScheduler) Stop() {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
}

func (s *DigestScheduler) loop() {
	ticker := time.NewTicker(digestPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.RunOnce(context.Background(), s.now().UTC())
		}
	}
}

// RunOnce performs a single scheduling sweep. Exported so tests can drive
// it directly with a pinned clock.
func (s *DigestScheduler) RunOnce(ctx context.Context, now time.Time) {
	recipients, err := s.userRepo.ListDigestRecipients(ctx, now)
	if err != nil {
		log.Printf("digest: failed to list recipients: %v", err)
		return
	}

	for _, rec := range recipients {
		if !emailTimeReached(rec.Settings.EmailTime, now) {
			continue
		}
		if rec.Settings.SkipWeekends && isWeekendDay(now) {
			continue
		}

		focus, err := s.problems.Today(ctx, rec.User.ID)
		if err != nil {
			log.Printf("digest: failed to build focus for user %s: %v", rec.User.ID, err)
			continue
		}

		job := DigestJob{
			UserID:          rec.User.ID,
			Email:           rec.User.Email,
			FullName:        rec.User.FullName,
			AIEncouragement: rec.Settings.AIEncouragement,
			Remaining:       focus.Summary.Remaining,
		}
		for _, item := range focus.Problems {
			if item.RevisitedToday {
				continue
			}
			job.Problems = append(job.Problems, DigestProblem{
				Title:    item.Problem.Title,
				Link:     item.Problem.Link,
				Priority: item.Weight.Priority,
			})
		}

		// Mark first so a crash between enqueue and send cannot double-send.
		if err := s.userRepo.MarkDigestSent(ctx, rec.User.ID, now); err != nil {
			log.Printf("digest: failed to mark sent for user %s: %v", rec.User.ID, err)
			continue
		}

		if len(job.Problems) == 0 {
			log.Printf("digest: nothing to send for user %s", rec.User.ID)
			continue
		}

		payload, err := json.Marshal(job)
		if err != nil {
			log.Printf("digest: failed to marshal job for user %s: %v", rec.User.ID, err)
			continue
		}
		if err := s.redis.RPush(ctx, DigestQueue, payload).Err(); err != nil {
			log.Printf("digest: failed to enqueue job for user %s: %v", rec.User.ID, err)
		}
	}
}

// emailTimeReached reports whether the HH:MM preference has passed within
// the current day.
func emailTimeReached(emailTime string, now time.Time) bool {
	t, err := time.Parse("15:04", emailTime)
	if err != nil {
		t, _ = time.Parse("15:04", "07:00")
	}
	nowMinutes := now.Hour()*60 + now.Minute()
	return nowMinutes >= t.Hour()*60+t.Minute()
}

func isWeekendDay(now time.Time) bool {
	wd := now.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
