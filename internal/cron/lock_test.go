package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLockStore struct {
	values map[string]string
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{values: map[string]string{}}
}

func (f *fakeLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeLockStore) Get(_ context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeLockStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func TestScanLockSingleHolder(t *testing.T) {
	store := newFakeLockStore()
	ctx := context.Background()

	lease, err := NewScanLock(store, "fs:lock:low-stock-scan", time.Minute)
	require.NoError(t, err)

	ok, err := lease.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	second, err := NewScanLock(store, "fs:lock:low-stock-scan", time.Minute)
	require.NoError(t, err)
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lease.Release(ctx))
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestScanLockReleaseKeepsNewHolder(t *testing.T) {
	store := newFakeLockStore()
	ctx := context.Background()

	lease, err := NewScanLock(store, "fs:lock:low-stock-scan", time.Minute)
	require.NoError(t, err)
	ok, err := lease.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// The lease expired and another replica claimed the cycle.
	store.values["fs:lock:low-stock-scan"] = "someone-else"
	require.NoError(t, lease.Release(ctx))
	assert.Equal(t, "someone-else", store.values["fs:lock:low-stock-scan"])
}

func TestScanLockReleaseIsIdempotent(t *testing.T) {
	store := newFakeLockStore()
	ctx := context.Background()

	lease, err := NewScanLock(store, "fs:lock:low-stock-scan", time.Minute)
	require.NoError(t, err)
	ok, err := lease.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, lease.Release(ctx))
	require.NoError(t, lease.Release(ctx))
	_, held := store.values["fs:lock:low-stock-scan"]
	assert.False(t, held)
}
