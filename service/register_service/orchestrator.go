package register_service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"wolf-push-service/models"
	"wolf-push-service/pkg/metrics"
	"wolf-push-service/service/subscription_service"
)

// 注册流程状态
const (
	StateIdle                 = "idle"
	StateLocatingRegistration = "locating-registration"
	StateRequestingPermission = "requesting-permission"
	StateFetchingToken        = "fetching-token"
	StatePersisting           = "persisting"
	StateReady                = "ready"
	StateFailedTerminal       = "failed-terminal"
	StateFailedTransient      = "failed-transient"
)

// 权限结果
const (
	PermissionGranted = "granted"
	PermissionDenied  = "denied"
	PermissionDefault = "default"
)

const (
	// 缺省 worker 脚本与作用域
	DefaultWorkerScript = "/sw.js"
	DefaultWorkerScope  = "/"
)

// ServiceWorkerAPI 抽象 Service Worker 注册环境
type ServiceWorkerAPI interface {
	// Supported 环境是否具备 Service Worker 与推送能力
	Supported() bool

	// Ready 返回已激活的注册，没有则返回 nil
	Ready(ctx context.Context) (*Registration, error)

	// Registrations 枚举全部现存注册
	Registrations(ctx context.Context) ([]*Registration, error)

	// Register 注册指定脚本
	Register(ctx context.Context, script, scope string) (*Registration, error)
}

// PermissionAPI 抽象通知权限申请
type PermissionAPI interface {
	// Request 返回 granted / denied / default
	Request(ctx context.Context) (string, error)
}

// AppInitState 页面级初始化状态，单一持有者注入共享，每次加载重置
type AppInitState struct {
	mu sync.Mutex

	ServiceWorkerRegistered      bool
	PushNotificationsInitialized bool
}

// Reset 重置为初始状态
func (s *AppInitState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ServiceWorkerRegistered = false
	s.PushNotificationsInitialized = false
}

// Snapshot 返回状态快照
func (s *AppInitState) Snapshot() (swRegistered, pushInitialized bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ServiceWorkerRegistered, s.PushNotificationsInitialized
}

func (s *AppInitState) markWorkerRegistered() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ServiceWorkerRegistered = true
}

func (s *AppInitState) markPushInitialized() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PushNotificationsInitialized = true
}

// Orchestrator 推送注册编排器
// 状态机: idle → locating-registration → requesting-permission →
// fetching-token → persisting → ready
// failed-terminal 为吸收态，failed-transient 带封顶退避循环重试
type Orchestrator struct {
	sw         ServiceWorkerAPI
	permission PermissionAPI
	tokens     TokenProvider
	store      subscription_service.SubscriptionStore
	initState  *AppInitState

	vapidKey     string
	userAgent    string
	origin       string
	workerScript string
	workerScope  string

	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration

	// 测试注入
	sleep func(ctx context.Context, d time.Duration) error

	mu    sync.Mutex
	state string
}

// OrchestratorOptions 编排器构造参数
type OrchestratorOptions struct {
	ServiceWorker ServiceWorkerAPI
	Permission    PermissionAPI
	Tokens        TokenProvider
	Store         subscription_service.SubscriptionStore
	InitState     *AppInitState
	VapidKey      string
	UserAgent     string
	Origin        string
	WorkerScript  string
	WorkerScope   string
	MaxAttempts   int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
}

// NewOrchestrator 创建注册编排器
func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 10
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 500 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 10 * time.Second
	}
	if opts.InitState == nil {
		opts.InitState = &AppInitState{}
	}
	if opts.WorkerScript == "" {
		opts.WorkerScript = DefaultWorkerScript
	}
	if opts.WorkerScope == "" {
		opts.WorkerScope = DefaultWorkerScope
	}
	return &Orchestrator{
		sw:           opts.ServiceWorker,
		permission:   opts.Permission,
		tokens:       NewSafeTokenProvider(opts.Tokens),
		store:        opts.Store,
		initState:    opts.InitState,
		vapidKey:     opts.VapidKey,
		userAgent:    opts.UserAgent,
		origin:       strings.TrimSuffix(opts.Origin, "/"),
		workerScript: opts.WorkerScript,
		workerScope:  opts.WorkerScope,
		maxAttempts:  opts.MaxAttempts,
		baseDelay:    opts.BaseDelay,
		maxDelay:     opts.MaxDelay,
		sleep: func(ctx context.Context, d time.Duration) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
				return nil
			}
		},
		state: StateIdle,
	}
}

// State 返回当前状态
func (o *Orchestrator) State() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(state string) {
	o.mu.Lock()
	o.state = state
	o.mu.Unlock()
}

// Run 执行注册流程直到 ready 或终态失败
// 返回获取到的推送令牌
func (o *Orchestrator) Run(ctx context.Context) (string, error) {
	// 终态条件先行检查
	if o.sw == nil || !o.sw.Supported() {
		o.setState(StateFailedTerminal)
		return "", ErrUnsupported
	}
	if o.vapidKey == "" {
		o.setState(StateFailedTerminal)
		return "", ErrConfiguration
	}

	var lastErr error
	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		token, err := o.attempt(ctx)
		if err == nil {
			o.setState(StateReady)
			metrics.RecordSubscription("register")
			return token, nil
		}

		if IsTerminal(err) {
			o.setState(StateFailedTerminal)
			return "", err
		}

		lastErr = err
		o.setState(StateFailedTransient)
		log.Printf("⚠️ 注册第 %d 次尝试失败: %v", attempt, err)

		if attempt == o.maxAttempts {
			break
		}
		if err := o.sleep(ctx, o.backoff(attempt)); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("注册重试 %d 次后仍失败: %w", o.maxAttempts, lastErr)
}

// attempt 执行一轮完整的注册流程
func (o *Orchestrator) attempt(ctx context.Context) (string, error) {
	o.setState(StateLocatingRegistration)
	registration, err := o.locateRegistration(ctx)
	if err != nil {
		return "", Transient(err)
	}
	o.initState.markWorkerRegistered()

	o.setState(StateRequestingPermission)
	permission, err := o.permission.Request(ctx)
	if err != nil {
		return "", Transient(err)
	}
	switch permission {
	case PermissionGranted:
	case PermissionDenied:
		// 明确拒绝零重试
		return "", ErrPermissionDenied
	default:
		return "", Transient(fmt.Errorf("权限结果待定: %s", permission))
	}

	o.setState(StateFetchingToken)
	token, err := o.tokens.GetToken(ctx, registration, o.vapidKey)
	if err != nil {
		return "", Transient(err)
	}
	if token == "" {
		return "", Transient(fmt.Errorf("未获取到推送令牌"))
	}

	o.setState(StatePersisting)
	if err := o.persist(ctx, token); err != nil {
		return "", Transient(err)
	}

	o.initState.markPushInitialized()
	return token, nil
}

// locateRegistration 定位注册
// 优先级: 已激活的 ready 注册 > 按作用域枚举匹配 > 注册根脚本
func (o *Orchestrator) locateRegistration(ctx context.Context) (*Registration, error) {
	if reg, err := o.sw.Ready(ctx); err == nil && reg != nil {
		return reg, nil
	}

	regs, err := o.sw.Registrations(ctx)
	if err == nil {
		for _, reg := range regs {
			if o.scopeMatches(reg.Scope) {
				return reg, nil
			}
		}
	}

	return o.sw.Register(ctx, o.workerScript, o.workerScope)
}

// scopeMatches 判断注册作用域是否就是本站配置的作用域
// 配置了站点 origin 时要求完整作用域 URL 精确相等，未配置时按路径比较
func (o *Orchestrator) scopeMatches(scope string) bool {
	if scope == "" {
		return false
	}
	if o.origin != "" {
		return scope == o.origin+o.workerScope
	}
	return scope == o.workerScope
}

// persist 写入订阅存储
func (o *Orchestrator) persist(ctx context.Context, token string) error {
	if o.store == nil {
		return nil
	}

	// FCM 令牌没有浏览器加密密钥，写入占位值
	return o.store.Upsert(ctx, &models.NotificationSubscription{
		Endpoint:  token,
		P256dh:    models.WebPushKeySentinel,
		Auth:      models.WebPushKeySentinel,
		UserAgent: o.userAgent,
	})
}

// backoff 指数退避，封顶 maxDelay
func (o *Orchestrator) backoff(attempt int) time.Duration {
	delay := o.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= o.maxDelay {
			return o.maxDelay
		}
	}
	if delay > o.maxDelay {
		return o.maxDelay
	}
	return delay
}
