package subscription_service

import (
	"context"
	"testing"
	"time"

	"wolf-push-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertIsIdempotentPerEndpoint(t *testing.T) {
	store := NewMemorySubscriptionStore()
	ctx := context.Background()

	sub := &models.NotificationSubscription{
		Endpoint:  "https://fcm.googleapis.com/fcm/send/abc123",
		P256dh:    "p256dh-key",
		Auth:      "auth-secret",
		UserAgent: "Mozilla/5.0 (Linux; Android 14)",
	}
	require.NoError(t, store.Upsert(ctx, sub))
	require.NoError(t, store.Upsert(ctx, sub))
	require.NoError(t, store.Upsert(ctx, sub))

	assert.Equal(t, 1, store.Count())

	got, err := store.GetByEndpoint(ctx, sub.Endpoint)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "p256dh-key", got.P256dh)
}

func TestUpsertRefreshesKeysAndLastActive(t *testing.T) {
	store := NewMemorySubscriptionStore()
	ctx := context.Background()

	old := &models.NotificationSubscription{
		Endpoint:   "https://fcm.googleapis.com/fcm/send/abc123",
		P256dh:     "old-p256dh",
		Auth:       "old-auth",
		LastActive: time.Now().Add(-30 * 24 * time.Hour),
	}
	require.NoError(t, store.Upsert(ctx, old))

	renewed := &models.NotificationSubscription{
		Endpoint: old.Endpoint,
		P256dh:   "new-p256dh",
		Auth:     "new-auth",
	}
	require.NoError(t, store.Upsert(ctx, renewed))

	got, err := store.GetByEndpoint(ctx, old.Endpoint)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new-p256dh", got.P256dh)
	assert.Equal(t, "new-auth", got.Auth)
	assert.WithinDuration(t, time.Now(), got.LastActive, 5*time.Second)
	assert.Equal(t, old.ID, got.ID)
}

func TestListActiveSinceFiltersStale(t *testing.T) {
	store := NewMemorySubscriptionStore()
	ctx := context.Background()

	fresh := &models.NotificationSubscription{
		Endpoint:   "https://push.example/fresh",
		LastActive: time.Now().Add(-24 * time.Hour),
	}
	stale := &models.NotificationSubscription{
		Endpoint:   "https://push.example/stale",
		LastActive: time.Now().Add(-70 * 24 * time.Hour),
	}
	require.NoError(t, store.Upsert(ctx, fresh))
	require.NoError(t, store.Upsert(ctx, stale))

	cutoff := time.Now().AddDate(0, 0, -60)
	active, err := store.ListActiveSince(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, fresh.Endpoint, active[0].Endpoint)
}

func TestDeleteInactiveBefore(t *testing.T) {
	store := NewMemorySubscriptionStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, &models.NotificationSubscription{
		Endpoint:   "https://push.example/keep",
		LastActive: time.Now(),
	}))
	require.NoError(t, store.Upsert(ctx, &models.NotificationSubscription{
		Endpoint:   "https://push.example/drop",
		LastActive: time.Now().Add(-100 * 24 * time.Hour),
	}))

	removed, err := store.DeleteInactiveBefore(ctx, time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Equal(t, 1, store.Count())
}

func TestListPagination(t *testing.T) {
	store := NewMemorySubscriptionStore()
	ctx := context.Background()

	endpoints := []string{
		"https://push.example/a",
		"https://push.example/b",
		"https://push.example/c",
	}
	for _, ep := range endpoints {
		require.NoError(t, store.Upsert(ctx, &models.NotificationSubscription{Endpoint: ep}))
	}

	page, err := store.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Subscriptions, 2)
	assert.Equal(t, endpoints[0], page.Subscriptions[0].Endpoint)

	page2, err := store.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2.Subscriptions, 1)
	assert.Equal(t, endpoints[2], page2.Subscriptions[0].Endpoint)
}
