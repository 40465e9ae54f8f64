package register_service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wolf-push-service/models"
	"wolf-push-service/service/subscription_service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServiceWorker struct {
	supported  bool
	ready      *Registration
	existing   []*Registration
	registered int
}

func (f *fakeServiceWorker) Supported() bool { return f.supported }

func (f *fakeServiceWorker) Ready(ctx context.Context) (*Registration, error) {
	if f.ready == nil {
		return nil, errors.New("no active registration")
	}
	return f.ready, nil
}

func (f *fakeServiceWorker) Registrations(ctx context.Context) ([]*Registration, error) {
	return f.existing, nil
}

func (f *fakeServiceWorker) Register(ctx context.Context, script, scope string) (*Registration, error) {
	f.registered++
	return &Registration{Scope: scope, Script: script}, nil
}

type fakePermission struct {
	result string
	calls  int
}

func (f *fakePermission) Request(ctx context.Context) (string, error) {
	f.calls++
	return f.result, nil
}

type scriptedTokens struct {
	tokens []string
	calls  int
}

func (f *scriptedTokens) GetToken(ctx context.Context, registration *Registration, vapidKey string) (string, error) {
	i := f.calls
	f.calls++
	if i < len(f.tokens) {
		return f.tokens[i], nil
	}
	return "", nil
}

func newTestOrchestrator(sw ServiceWorkerAPI, perm PermissionAPI, tokens TokenProvider, store subscription_service.SubscriptionStore) *Orchestrator {
	o := NewOrchestrator(OrchestratorOptions{
		ServiceWorker: sw,
		Permission:    perm,
		Tokens:        tokens,
		Store:         store,
		VapidKey:      "test-vapid-public-key",
		UserAgent:     "Mozilla/5.0 (Linux; Android 14)",
		MaxAttempts:   10,
		BaseDelay:     500 * time.Millisecond,
		MaxDelay:      10 * time.Second,
	})
	o.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return o
}

func TestUnsupportedEnvironmentIsTerminal(t *testing.T) {
	sw := &fakeServiceWorker{supported: false}
	perm := &fakePermission{result: PermissionGranted}
	o := newTestOrchestrator(sw, perm, &scriptedTokens{}, nil)

	_, err := o.Run(context.Background())
	require.ErrorIs(t, err, ErrUnsupported)
	assert.Equal(t, StateFailedTerminal, o.State())
	assert.Equal(t, 0, perm.calls)
}

func TestMissingVapidKeyIsTerminal(t *testing.T) {
	o := NewOrchestrator(OrchestratorOptions{
		ServiceWorker: &fakeServiceWorker{supported: true},
		Permission:    &fakePermission{result: PermissionGranted},
		Tokens:        &scriptedTokens{},
		VapidKey:      "",
	})

	_, err := o.Run(context.Background())
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, StateFailedTerminal, o.State())
}

func TestPermissionDeniedNeverRetries(t *testing.T) {
	sw := &fakeServiceWorker{supported: true}
	perm := &fakePermission{result: PermissionDenied}
	tokens := &scriptedTokens{}
	o := newTestOrchestrator(sw, perm, tokens, nil)

	_, err := o.Run(context.Background())
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, StateFailedTerminal, o.State())
	assert.Equal(t, 1, perm.calls)
	assert.Equal(t, 0, tokens.calls)
}

func TestTransientFailureRetriesThenSucceeds(t *testing.T) {
	sw := &fakeServiceWorker{supported: true}
	perm := &fakePermission{result: PermissionGranted}
	tokens := &scriptedTokens{tokens: []string{"", "", "fcm-token-after-retries"}}
	store := subscription_service.NewMemorySubscriptionStore()
	o := newTestOrchestrator(sw, perm, tokens, store)

	token, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fcm-token-after-retries", token)
	assert.Equal(t, StateReady, o.State())
	assert.Equal(t, 3, tokens.calls)

	sub, err := store.GetByEndpoint(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, models.WebPushKeySentinel, sub.P256dh)
	assert.False(t, sub.IsWebPush())
}

func TestGivesUpAfterMaxAttempts(t *testing.T) {
	sw := &fakeServiceWorker{supported: true}
	perm := &fakePermission{result: PermissionGranted}
	tokens := &scriptedTokens{}
	o := newTestOrchestrator(sw, perm, tokens, nil)

	_, err := o.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 10, tokens.calls)
	assert.Equal(t, StateFailedTransient, o.State())
}

func TestInsecureContextUsesPlaceholderToken(t *testing.T) {
	sw := &fakeServiceWorker{supported: true}
	perm := &fakePermission{result: PermissionGranted}
	store := subscription_service.NewMemorySubscriptionStore()
	o := newTestOrchestrator(sw, perm, &InsecureContextProvider{}, store)

	token, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PlaceholderToken, token)
	assert.Equal(t, StateReady, o.State())
}

func TestAppInitStateFlags(t *testing.T) {
	sw := &fakeServiceWorker{supported: true}
	perm := &fakePermission{result: PermissionGranted}
	initState := &AppInitState{}

	o := NewOrchestrator(OrchestratorOptions{
		ServiceWorker: sw,
		Permission:    perm,
		Tokens:        &scriptedTokens{tokens: []string{"tok"}},
		InitState:     initState,
		VapidKey:      "k",
	})
	o.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	_, err := o.Run(context.Background())
	require.NoError(t, err)

	swRegistered, pushInit := initState.Snapshot()
	assert.True(t, swRegistered)
	assert.True(t, pushInit)

	initState.Reset()
	swRegistered, pushInit = initState.Snapshot()
	assert.False(t, swRegistered)
	assert.False(t, pushInit)
}

func TestRegistrationResolutionOrder(t *testing.T) {
	ctx := context.Background()
	perm := &fakePermission{result: PermissionGranted}

	// 已有激活注册时直接使用
	ready := &fakeServiceWorker{supported: true, ready: &Registration{Scope: "/", Active: true}}
	o := newTestOrchestrator(ready, perm, &scriptedTokens{tokens: []string{"tok"}}, nil)
	_, err := o.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, ready.registered)

	// 没有激活注册但能按本站作用域匹配到现存注册
	existing := &fakeServiceWorker{
		supported: true,
		existing:  []*Registration{{Scope: "https://wolf.example/"}},
	}
	o = NewOrchestrator(OrchestratorOptions{
		ServiceWorker: existing,
		Permission:    perm,
		Tokens:        &scriptedTokens{tokens: []string{"tok"}},
		VapidKey:      "k",
		Origin:        "https://wolf.example",
	})
	o.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	_, err = o.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, existing.registered)

	// 都没有时注册根脚本
	empty := &fakeServiceWorker{supported: true}
	o = newTestOrchestrator(empty, perm, &scriptedTokens{tokens: []string{"tok"}}, nil)
	_, err = o.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, empty.registered)
}

func TestScopeMatchRequiresOwnOrigin(t *testing.T) {
	ctx := context.Background()
	perm := &fakePermission{result: PermissionGranted}

	// 其他站点的注册不算匹配，必须注册本站脚本
	foreign := &fakeServiceWorker{
		supported: true,
		existing: []*Registration{
			{Scope: "https://cdn.example/"},
			{Scope: "https://wolf.example/admin/"},
		},
	}
	o := NewOrchestrator(OrchestratorOptions{
		ServiceWorker: foreign,
		Permission:    perm,
		Tokens:        &scriptedTokens{tokens: []string{"tok"}},
		VapidKey:      "k",
		Origin:        "https://wolf.example",
	})
	o.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	_, err := o.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, foreign.registered)

	// 未配置 origin 时按路径精确比较
	pathOnly := &fakeServiceWorker{
		supported: true,
		existing:  []*Registration{{Scope: "/"}},
	}
	o = newTestOrchestrator(pathOnly, perm, &scriptedTokens{tokens: []string{"tok"}}, nil)
	_, err = o.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, pathOnly.registered)
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	o := newTestOrchestrator(&fakeServiceWorker{supported: true}, &fakePermission{result: PermissionGranted}, &scriptedTokens{}, nil)

	assert.Equal(t, 500*time.Millisecond, o.backoff(1))
	assert.Equal(t, 1*time.Second, o.backoff(2))
	assert.Equal(t, 8*time.Second, o.backoff(5))
	assert.Equal(t, 10*time.Second, o.backoff(6))
	assert.Equal(t, 10*time.Second, o.backoff(20))
}

type panickingTokens struct{}

func (panickingTokens) GetToken(ctx context.Context, registration *Registration, vapidKey string) (string, error) {
	panic("messaging sdk exploded")
}

func TestSafeTokenProviderSwallowsPanics(t *testing.T) {
	safe := NewSafeTokenProvider(panickingTokens{})

	var token string
	var err error
	assert.NotPanics(t, func() {
		token, err = safe.GetToken(context.Background(), nil, "k")
	})
	assert.NoError(t, err)
	assert.Empty(t, token)
}
