package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/tasting-service/internal/event"
)

// SnapshotKV is the slice of the Redis API the repository uses;
// *redis.Client satisfies it.
type SnapshotKV interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// SnapshotRepo keeps the latest replicated state as one Redis blob.  The
// stored value is exactly the SNAPSHOT frame payload, so a restore is the
// same decode a CLIENT performs.
type SnapshotRepo struct {
	rdb SnapshotKV
	key string
}

// NewSnapshotRepo constructs a SnapshotRepo writing under key.
func NewSnapshotRepo(rdb SnapshotKV, key string) *SnapshotRepo {
	return &SnapshotRepo{rdb: rdb, key: key}
}

// Save overwrites the stored snapshot.  No expiry is set: the blob is the
// only record of the floor between restarts.
func (r *SnapshotRepo) Save(ctx context.Context, payload []byte) error {
	if err := r.rdb.Set(ctx, r.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the stored state, or ErrSnapshotNotFound.
func (r *SnapshotRepo) Load(ctx context.Context) (event.State, error) {
	b, err := r.rdb.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return event.State{}, ErrSnapshotNotFound
		}
		return event.State{}, fmt.Errorf("load snapshot: %w", err)
	}
	var s event.State
	if err := json.Unmarshal(b, &s); err != nil {
		return event.State{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

// Clear removes the stored snapshot.  Clearing a missing key is not an
// error.
func (r *SnapshotRepo) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}
