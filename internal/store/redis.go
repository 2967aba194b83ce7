package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/model"
)

// generationKey is bumped on every write. Cached record sets are keyed by the
// generation they were read under, so a snapshot taken before a write can
// never be served after it.
const generationKey = "poker:ledger:gen"

func recordsKey(gen int64) string {
	return "poker:ledger:records:" + strconv.FormatInt(gen, 10)
}

// CachedStore wraps a primary Store with a Redis read-through cache of the
// full record set. Writes go to the primary store and bump the cache
// generation; reads check Redis first then fall back to the primary. Only raw
// rows are cached, never derived totals.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration

	// stale is set when a generation bump failed. Reads bypass the cache
	// until a later bump succeeds.
	stale atomic.Bool
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, bump generation) ---

// Append writes to the primary store. A Redis failure after a successful
// primary write is not returned: the rows are durable, and the cache is
// bypassed until it can be invalidated.
func (s *CachedStore) Append(ctx context.Context, records []model.LedgerRecord) error {
	if err := s.primary.Append(ctx, records); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CachedStore) Purge(ctx context.Context) error {
	if err := s.primary.Purge(ctx); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// invalidate reports whether the generation was bumped.
func (s *CachedStore) invalidate(ctx context.Context) bool {
	if err := s.rdb.Incr(ctx, generationKey).Err(); err != nil {
		s.stale.Store(true)
		slog.Warn("ledger cache invalidation failed, bypassing cache", "err", err)
		return false
	}
	s.stale.Store(false)
	return true
}

// --- Read-through (check cache first) ---

func (s *CachedStore) ReadAll(ctx context.Context) ([]model.LedgerRecord, error) {
	if s.stale.Load() && !s.invalidate(ctx) {
		return s.primary.ReadAll(ctx)
	}

	gen, err := s.rdb.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		slog.Warn("ledger cache unavailable", "err", err)
		return s.primary.ReadAll(ctx)
	}
	key := recordsKey(gen)

	if data, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var records []model.LedgerRecord
		if json.Unmarshal(data, &records) == nil {
			return records, nil
		}
	}

	// Cache miss: read from primary. A write racing this read bumps the
	// generation, so the snapshot lands under a key no later reader uses.
	records, err := s.primary.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(records); err == nil {
		if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
			slog.Warn("ledger cache fill failed", "err", err)
		}
	}
	return records, nil
}
