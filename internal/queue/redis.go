package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis stores jobs as JSON on a list: RPUSH to enqueue, BLPOP to consume
type Redis struct {
	client      *redis.Client
	key         string
	pollTimeout time.Duration
	logger      zerolog.Logger
}

// NewRedisClient parses a redis:// URL and checks the server is reachable
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewRedis(client *redis.Client, key string, logger zerolog.Logger) *Redis {
	return &Redis{
		client:      client,
		key:         key,
		pollTimeout: 2 * time.Second,
		logger:      logger.With().Str("component", "redis_queue").Logger(),
	}
}

func (q *Redis) Enqueue(ctx context.Context, job *Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	q.logger.Debug().Str("job_id", job.ID).Msg("enqueued ticket delivery")
	return nil
}

// Dequeue polls with a bounded BLPOP so context cancellation is noticed
// between polls. Undecodable payloads are logged and skipped.
func (q *Redis) Dequeue(ctx context.Context) (*Job, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := q.client.BLPop(ctx, q.pollTimeout, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, redis.ErrClosed) {
				return nil, ErrQueueClosed
			}
			return nil, fmt.Errorf("blpop: %w", err)
		}
		if len(result) < 2 {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil || job.Delivery == nil {
			q.logger.Warn().Err(err).Str("raw", result[1]).Msg("invalid job payload")
			continue
		}
		return &job, nil
	}
}

func (q *Redis) Len(ctx context.Context) (int, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("llen: %w", err)
	}
	return int(n), nil
}

func (q *Redis) Close() error {
	return q.client.Close()
}
