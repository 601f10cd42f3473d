package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCodeStorePutGetDelete(t *testing.T) {
	store := newCodeStore()

	store.Put("a@example.com", pendingCode{Code: "123456", Name: "Ada"})
	entry, ok := store.Get("a@example.com")
	require.True(t, ok)
	require.Equal(t, "123456", entry.Code)
	require.False(t, entry.ExpiresAt.IsZero())

	_, ok = store.Get("b@example.com")
	require.False(t, ok)

	store.Delete("a@example.com")
	_, ok = store.Get("a@example.com")
	require.False(t, ok)
}

func TestCodeStoreExpiry(t *testing.T) {
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return now }
	defer func() { timeNow = time.Now }()

	store := newCodeStore()
	store.Put("a@example.com", pendingCode{Code: "123456"})

	entry, ok := store.Get("a@example.com")
	require.True(t, ok)

	// Within the TTL the code is still redeemable.
	now = now.Add(14 * time.Minute)
	require.True(t, timeNow().Before(entry.ExpiresAt))

	// Past the TTL redeemCode treats it as expired.
	now = now.Add(2 * time.Minute)
	require.False(t, timeNow().Before(entry.ExpiresAt))
}
