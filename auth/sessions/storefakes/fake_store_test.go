package storefakes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// The blocking window must stay anchored to the first failed increment:
// later increments keep counting but never extend the expiry.
func TestIncrementWithExpiryAnchorsTTLToFirstIncrement(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()

	now := time.Now()
	store.NowTime = func() time.Time { return now }

	count, err := store.IncrementWithExpiry(ctx, "login_attempts:bob@x.com", time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	// Half the window later, another failure
	now = now.Add(30 * time.Minute)
	count, err = store.IncrementWithExpiry(ctx, "login_attempts:bob@x.com", time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	// The window expires one hour after the FIRST increment
	now = now.Add(31 * time.Minute)
	value, err := store.Get(ctx, "login_attempts:bob@x.com")
	require.NoError(t, err)
	require.Empty(t, value)

	// A fresh increment starts a new counter and a new window
	count, err = store.IncrementWithExpiry(ctx, "login_attempts:bob@x.com", time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestPutOverwritesAndExpires(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()

	now := time.Now()
	store.NowTime = func() time.Time { return now }

	require.NoError(t, store.Put(ctx, "refresh_token:user-1", "first", time.Hour))
	require.NoError(t, store.Put(ctx, "refresh_token:user-1", "second", time.Hour))

	value, err := store.Get(ctx, "refresh_token:user-1")
	require.NoError(t, err)
	require.Equal(t, "second", value)

	now = now.Add(2 * time.Hour)
	value, err = store.Get(ctx, "refresh_token:user-1")
	require.NoError(t, err)
	require.Empty(t, value)
}

func TestCompareAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()

	require.NoError(t, store.Put(ctx, "refresh_token:user-1", "current", time.Hour))

	deleted, err := store.CompareAndDelete(ctx, "refresh_token:user-1", "stale")
	require.NoError(t, err)
	require.False(t, deleted)

	deleted, err = store.CompareAndDelete(ctx, "refresh_token:user-1", "current")
	require.NoError(t, err)
	require.True(t, deleted)

	// Second delete finds nothing to match
	deleted, err = store.CompareAndDelete(ctx, "refresh_token:user-1", "current")
	require.NoError(t, err)
	require.False(t, deleted)
}
