package pebble_service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *PebbleService {
	t.Helper()
	service := NewPebbleService(&Config{DBPath: t.TempDir()})
	require.NoError(t, service.Initialize())
	t.Cleanup(func() { service.Close() })
	return service
}

func TestNotifiedEventRoundTrip(t *testing.T) {
	service := newTestService(t)

	notified, err := service.IsNotifiedEvent("evt-1")
	require.NoError(t, err)
	assert.False(t, notified)

	require.NoError(t, service.AddNotifiedEvent("evt-1", "hash-abc"))

	notified, err = service.IsNotifiedEvent("evt-1")
	require.NoError(t, err)
	assert.True(t, notified)

	record, err := service.GetNotifiedEvent("evt-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "evt-1", record.EventID)
	assert.Equal(t, "hash-abc", record.MessageHash)
	assert.Greater(t, record.NotifiedAt, int64(0))

	require.NoError(t, service.RemoveNotifiedEvent("evt-1"))

	notified, err = service.IsNotifiedEvent("evt-1")
	require.NoError(t, err)
	assert.False(t, notified)
}

func TestNotifiedEventValidation(t *testing.T) {
	service := newTestService(t)

	assert.Error(t, service.AddNotifiedEvent("", "hash"))
	_, err := service.IsNotifiedEvent("")
	assert.Error(t, err)
}

func TestCountAndClear(t *testing.T) {
	service := newTestService(t)

	for _, id := range []string{"evt-a", "evt-b", "evt-c"} {
		require.NoError(t, service.AddNotifiedEvent(id, ""))
	}

	count, err := service.CountNotifiedEvents()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	stats, err := service.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.NotifiedEvents)

	removed, err := service.ClearNotifiedEvents()
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	count, err = service.CountNotifiedEvents()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
