package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"revisit-backend/internal/services"
)

// Pool drains the digest email queue. Workers block on BLPOP so idle
// goroutines cost nothing; Stop is observed between jobs.
type Pool struct {
	redis         *redis.Client
	email         *services.EmailService
	encouragement *services.EncouragementService
	workerCount   int
	stopChan      chan struct{}
}

func NewPool(redisClient *redis.Client, email *services.EmailService, encouragement *services.EncouragementService, workerCount int) *Pool {
	return &Pool{
		redis:         redisClient,
		email:         email,
		encouragement: encouragement,
		workerCount:   workerCount,
		stopChan:      make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
	log.Printf("Started %d digest worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		result, err := p.redis.BLPop(ctx, 30*time.Second, services.DigestQueue).Result()
		if err != nil {
			continue // timeout or transient error, poll again
		}
		if len(result) < 2 {
			continue
		}

		var job services.DigestJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse digest job: %v", id, err)
			continue
		}

		p.process(ctx, id, job)
	}
}

func (p *Pool) process(ctx context.Context, id int, job services.DigestJob) {
	encouragement := ""
	if job.AIEncouragement {
		encouragement = p.encouragement.Line(ctx, job.FullName, job.Remaining)
	}

	if err := p.email.SendDailyDigest(job.Email, job.FullName, job.Problems, encouragement); err != nil {
		log.Printf("Worker %d: failed to send digest to %s: %v", id, job.Email, err)
		return
	}
	log.Printf("Worker %d: digest sent to %s (%d problems)", id, job.Email, len(job.Problems))
}
