package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// The lease TTL sits just under the hourly cycle so a crashed holder never
// blocks the next scan.
const defaultLeaseTTL = 55 * time.Minute

// Lock gates a scan cycle so a single worker replica runs it.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// lockStore is the slice of the redis client the lease needs.
type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// ScanLock leases the low-stock scan cycle through Redis. Each Acquire writes
// a fresh holder token with SETNX; Release only deletes the key while that
// token is still stored, so a lease that expired and moved to another replica
// is left alone.
type ScanLock struct {
	store lockStore
	key   string
	ttl   time.Duration
	token string
}

// NewScanLock builds the cycle lease on the given redis key.
func NewScanLock(store lockStore, key string, ttl time.Duration) (*ScanLock, error) {
	if store == nil {
		return nil, errors.New("redis client required for scan lease")
	}
	if key == "" {
		return nil, errors.New("scan lease key is required")
	}
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	return &ScanLock{store: store, key: key, ttl: ttl}, nil
}

// Acquire claims the cycle for this replica. A false return means another
// replica already holds the lease.
func (l *ScanLock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	claimed, err := l.store.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("claim scan lease: %w", err)
	}
	if claimed {
		l.token = token
	}
	return claimed, nil
}

// Release drops the lease if this replica still holds it.
func (l *ScanLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	holder, err := l.store.Get(ctx, l.key)
	switch {
	case errors.Is(err, redis.Nil):
		l.token = ""
		return nil
	case err != nil:
		return fmt.Errorf("read scan lease holder: %w", err)
	case holder != l.token:
		l.token = ""
		return nil
	}
	if err := l.store.Del(ctx, l.key); err != nil {
		return fmt.Errorf("drop scan lease: %w", err)
	}
	l.token = ""
	return nil
}
