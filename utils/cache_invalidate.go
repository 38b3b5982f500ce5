package utils

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// CacheInvalidator drops cached responses after a write. Keys are grouped
// by resource namespace (see middlewares.CacheKeyFrom), so purging a
// namespace is a prefix scan.
type CacheInvalidator struct{ rdb *redis.Client }

func NewCacheInvalidator(rdb *redis.Client) *CacheInvalidator { return &CacheInvalidator{rdb} }

func (ci *CacheInvalidator) purge(ctx context.Context, pattern string) {
	iter := ci.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		_ = ci.rdb.Del(ctx, iter.Val()).Err()
	}
}

// PurgeEvents drops event list, item, and stats entries. Item keys hash
// the id, so the whole namespace goes rather than a single entry.
func (ci *CacheInvalidator) PurgeEvents(ctx context.Context) {
	ci.purge(ctx, "cache:events:*")
}

func (ci *CacheInvalidator) PurgeCases(ctx context.Context) {
	ci.purge(ctx, "cache:cases:*")
}
