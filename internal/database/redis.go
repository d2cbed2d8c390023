package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisClients struct {
	Queue  *redis.Client
	Tokens *redis.Client
}

func NewRedisClients(redisURL string) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Queue client (digest jobs)
	queueClient := redis.NewClient(opt)
	if err := queueClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis (queue): %w", err)
	}

	// Token client (refresh tokens, separate connection)
	tokenOpt := *opt
	tokenClient := redis.NewClient(&tokenOpt)
	if err := tokenClient.Ping(ctx).Err(); err != nil {
		queueClient.Close()
		return nil, fmt.Errorf("failed to ping Redis (tokens): %w", err)
	}

	return &RedisClients{
		Queue:  queueClient,
		Tokens: tokenClient,
	}, nil
}

func (r *RedisClients) Close() {
	r.Queue.Close()
	r.Tokens.Close()
}
