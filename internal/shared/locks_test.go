package shared

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) *IdentityLocker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdentityLocker(client)
}

func TestIdentityLockerAcquireRelease(t *testing.T) {
	locker := newTestLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, ReturnLockKey("PRN-1"))
	require.NoError(t, err)
	release()

	// The key is free again after release.
	release, err = locker.Acquire(ctx, ReturnLockKey("PRN-1"))
	require.NoError(t, err)
	release()
}

func TestIdentityLockerContention(t *testing.T) {
	locker := newTestLocker(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release, err := locker.Acquire(ctx, ReturnLockKey("PRN-2"))
	require.NoError(t, err)
	defer release()

	// Cancel so the retry loop gives up immediately instead of
	// backing off for the full window.
	cancel()
	_, err = locker.Acquire(ctx, ReturnLockKey("PRN-2"))
	require.Error(t, err)
}

func TestIdentityLockerNilIsNoop(t *testing.T) {
	var locker *IdentityLocker
	release, err := locker.Acquire(context.Background(), "anything")
	require.NoError(t, err)
	release()
}

func TestListFiltersNormalize(t *testing.T) {
	f := ListFilters{Limit: -1, Offset: -5}
	f.Normalize()
	require.Equal(t, 50, f.Limit)
	require.Equal(t, 0, f.Offset)

	f = ListFilters{Limit: 10000, Offset: 20}
	f.Normalize()
	require.Equal(t, 500, f.Limit)
	require.Equal(t, 20, f.Offset)
}
