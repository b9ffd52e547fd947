// Package history keeps a short redis-backed log of pipeline runs for the
// /runs endpoint. Purely diagnostic; the pipeline works without it.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ljmonteiro/interviewcast/internal/models"
)

const (
	runsKey = "interviewcast:runs"
	maxRuns = 50
)

type Store struct {
	client *redis.Client
}

func New(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Record prepends a run to the history and trims it to the last maxRuns.
func (s *Store) Record(ctx context.Context, rec models.RunRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, runsKey, data)
	pipe.LTrim(ctx, runsKey, 0, maxRuns-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Recent returns the newest runs, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.RunRecord, error) {
	if limit <= 0 || limit > maxRuns {
		limit = maxRuns
	}

	raw, err := s.client.LRange(ctx, runsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read run history: %w", err)
	}

	records := make([]models.RunRecord, 0, len(raw))
	for _, item := range raw {
		var rec models.RunRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			// Skip entries written by older versions rather than
			// failing the whole listing.
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
