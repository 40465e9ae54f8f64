package worker_service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wolf-push-service/models"
	"wolf-push-service/service/dedup_service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	added map[string][]string
	err   error
}

func newFakeCache() *fakeCache {
	return &fakeCache{added: make(map[string][]string)}
}

func (f *fakeCache) AddAll(ctx context.Context, cacheName string, urls []string) error {
	if f.err != nil {
		return f.err
	}
	f.added[cacheName] = append(f.added[cacheName], urls...)
	return nil
}

func (f *fakeCache) Clear(ctx context.Context, cacheName string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.added, cacheName)
	return nil
}

func collectReplies() (ReplyFunc, *[]interface{}) {
	var replies []interface{}
	return func(r interface{}) { replies = append(replies, r) }, &replies
}

func TestEnvelopesBufferedUntilActivation(t *testing.T) {
	reply, replies := collectReplies()
	w := NewWorker(Options{Reply: reply})
	ctx := context.Background()

	require.NoError(t, w.HandleEnvelope(ctx, &models.WorkerEnvelope{
		Type:   models.EnvelopeConfigFirebase,
		Config: map[string]interface{}{"apiKey": "k", "projectId": "wolf"},
	}))
	require.NoError(t, w.HandleEnvelope(ctx, &models.WorkerEnvelope{Type: models.EnvelopePing}))

	status := w.Status()
	assert.False(t, status.Activated)
	assert.False(t, status.ConfigSet)
	assert.Equal(t, 2, status.QueuedCount)
	assert.Empty(t, *replies)

	w.Activate(ctx)

	status = w.Status()
	assert.True(t, status.Activated)
	assert.True(t, status.ConfigSet)
	assert.True(t, status.MessagingInit)
	assert.Equal(t, 0, status.QueuedCount)

	// 队列按接收顺序补发，PING 的应答在激活后到达
	require.Len(t, *replies, 1)
	pong, ok := (*replies)[0].(*models.PongReply)
	require.True(t, ok)
	assert.Equal(t, models.EnvelopePong, pong.Type)
	assert.Greater(t, pong.Time, int64(0))
}

func TestSkipWaitingForcesActivation(t *testing.T) {
	w := NewWorker(Options{})
	ctx := context.Background()

	require.NoError(t, w.HandleEnvelope(ctx, &models.WorkerEnvelope{
		Type:    models.EnvelopeElfsightDomains,
		Domains: []string{"static.elfsight.com"},
	}))
	require.NoError(t, w.HandleEnvelope(ctx, &models.WorkerEnvelope{Type: models.EnvelopeSkipWaiting}))

	status := w.Status()
	assert.True(t, status.Activated)
	assert.Equal(t, 0, status.QueuedCount)
	assert.Equal(t, []string{"static.elfsight.com"}, w.ElfsightDomains())
}

func TestCheckInitializationReply(t *testing.T) {
	reply, replies := collectReplies()
	w := NewWorker(Options{Reply: reply})
	ctx := context.Background()

	w.Activate(ctx)
	require.NoError(t, w.HandleEnvelope(ctx, &models.WorkerEnvelope{Type: models.EnvelopeCheckInitialization}))

	require.Len(t, *replies, 1)
	status, ok := (*replies)[0].(*models.WorkerStatus)
	require.True(t, ok)
	assert.True(t, status.Activated)
	assert.False(t, status.ConfigSet)
	assert.False(t, status.MessagingInit)
}

func TestElfsightDomainsMergeAndDedupe(t *testing.T) {
	w := NewWorker(Options{})
	ctx := context.Background()
	w.Activate(ctx)

	require.NoError(t, w.HandleEnvelope(ctx, &models.WorkerEnvelope{
		Type:    models.EnvelopeElfsightDomains,
		Domains: []string{"a.example", "b.example"},
	}))
	require.NoError(t, w.HandleEnvelope(ctx, &models.WorkerEnvelope{
		Type:    models.EnvelopeElfsightDomains,
		Domains: []string{"b.example", "c.example", ""},
	}))

	assert.Equal(t, []string{"a.example", "b.example", "c.example"}, w.ElfsightDomains())
}

func TestCacheOperationsBestEffort(t *testing.T) {
	cache := newFakeCache()
	w := NewWorker(Options{Cache: cache, CacheName: "test-cache"})
	ctx := context.Background()
	w.Activate(ctx)

	require.NoError(t, w.HandleEnvelope(ctx, &models.WorkerEnvelope{
		Type: models.EnvelopeCacheURLs,
		URLs: []string{"/menu", "/reservations"},
	}))
	assert.Equal(t, []string{"/menu", "/reservations"}, cache.added["test-cache"])

	require.NoError(t, w.HandleEnvelope(ctx, &models.WorkerEnvelope{Type: models.EnvelopeClearCache}))
	assert.NotContains(t, cache.added, "test-cache")

	// 缓存后端故障不向上传播
	cache.err = errors.New("quota exceeded")
	assert.NoError(t, w.HandleEnvelope(ctx, &models.WorkerEnvelope{
		Type: models.EnvelopeCacheURLs,
		URLs: []string{"/x"},
	}))
	assert.NoError(t, w.HandleEnvelope(ctx, &models.WorkerEnvelope{Type: models.EnvelopeClearCache}))
}

func TestClearCacheOnlyRemovesNamedCache(t *testing.T) {
	cache := newFakeCache()
	w := NewWorker(Options{Cache: cache, CacheName: "static-v1"})
	ctx := context.Background()
	w.Activate(ctx)

	require.NoError(t, w.HandleEnvelope(ctx, &models.WorkerEnvelope{
		Type:      models.EnvelopeCacheURLs,
		CacheName: "static-v1",
		URLs:      []string{"/menu"},
	}))
	require.NoError(t, w.HandleEnvelope(ctx, &models.WorkerEnvelope{
		Type:      models.EnvelopeCacheURLs,
		CacheName: "images-v1",
		URLs:      []string{"/images/hero.jpg"},
	}))

	require.NoError(t, w.HandleEnvelope(ctx, &models.WorkerEnvelope{
		Type:      models.EnvelopeClearCache,
		CacheName: "static-v1",
	}))

	assert.NotContains(t, cache.added, "static-v1")
	assert.Equal(t, []string{"/images/hero.jpg"}, cache.added["images-v1"])
}

func TestCheckForUpdatesTriggersCallback(t *testing.T) {
	called := 0
	w := NewWorker(Options{UpdateFn: func() { called++ }})
	ctx := context.Background()
	w.Activate(ctx)

	require.NoError(t, w.HandleEnvelope(ctx, &models.WorkerEnvelope{Type: models.EnvelopeCheckForUpdates}))
	assert.Equal(t, 1, called)
}

func TestConfigRequiresPayload(t *testing.T) {
	w := NewWorker(Options{})
	ctx := context.Background()
	w.Activate(ctx)

	err := w.HandleEnvelope(ctx, &models.WorkerEnvelope{Type: models.EnvelopeConfigFirebase})
	assert.Error(t, err)

	status := w.Status()
	assert.False(t, status.ConfigSet)
	assert.False(t, status.MessagingInit)
}

func TestHandlePushSuppressesDuplicates(t *testing.T) {
	displayed := 0
	presenter := NewPresenter(func(n *DisplayNotification) error {
		displayed++
		return nil
	})

	w := NewWorker(Options{
		Presenter: presenter,
		Window:    dedup_service.NewWindow(30, time.Hour),
	})
	ctx := context.Background()

	msg := &models.NotificationMessage{ID: "evt-1", Title: "Happy hour", Body: "5pm"}
	assert.True(t, w.HandlePush(ctx, msg, ""))
	assert.False(t, w.HandlePush(ctx, msg, ""))
	assert.Equal(t, 1, displayed)
}

func TestHandlePushDerivesMissingID(t *testing.T) {
	presenter := NewPresenter(func(n *DisplayNotification) error { return nil })
	w := NewWorker(Options{
		Presenter: presenter,
		Window:    dedup_service.NewWindow(30, time.Hour),
	})
	ctx := context.Background()

	msg := &models.NotificationMessage{Title: "hi", CollapseKey: "promo-weekly"}
	assert.True(t, w.HandlePush(ctx, msg, ""))
	assert.Equal(t, "promo-weekly", msg.ID)
	assert.False(t, w.HandlePush(ctx, msg, ""))
}
