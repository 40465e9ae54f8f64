package worker_service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"wolf-push-service/models"
	"wolf-push-service/pkg/metrics"
	"wolf-push-service/service/dedup_service"
	"wolf-push-service/tool"
)

// CacheStorage 页面资源缓存接口
type CacheStorage interface {
	// AddAll 把 URL 列表加入指定缓存
	AddAll(ctx context.Context, cacheName string, urls []string) error

	// Clear 删除指定名称的缓存
	Clear(ctx context.Context, cacheName string) error
}

// ReplyFunc 把应答消息发回客户端通道
type ReplyFunc func(reply interface{})

// Worker 消息通道工作端
// 激活前收到的指令按 FIFO 缓存，激活时按序补发
type Worker struct {
	mu sync.Mutex

	activated bool
	pending   []*models.WorkerEnvelope

	// 推送通道配置，未设置是正常的过渡状态
	messagingConfig map[string]interface{}
	messagingInit   bool

	// 跳过拦截的第三方域名白名单
	elfsightDomains []string

	cache     CacheStorage
	cacheName string

	window    *dedup_service.Window
	presenter *Presenter

	// CHECK_FOR_UPDATES 触发的更新回调
	updateFn func()
	reply    ReplyFunc
}

// Options Worker 构造参数
type Options struct {
	Cache     CacheStorage
	CacheName string
	Window    *dedup_service.Window
	Presenter *Presenter
	UpdateFn  func()
	Reply     ReplyFunc
}

// NewWorker 创建消息通道工作端
func NewWorker(opts Options) *Worker {
	if opts.Window == nil {
		opts.Window = dedup_service.NewWindow(dedup_service.DefaultCapacity, dedup_service.DefaultClearInterval)
	}
	if opts.CacheName == "" {
		opts.CacheName = "wolf-static-v1"
	}
	return &Worker{
		cache:     opts.Cache,
		cacheName: opts.CacheName,
		window:    opts.Window,
		presenter: opts.Presenter,
		updateFn:  opts.UpdateFn,
		reply:     opts.Reply,
	}
}

// HandleEnvelope 处理一条指令
// 未激活时除 SKIP_WAITING 外全部缓存，激活时按接收顺序补发
func (w *Worker) HandleEnvelope(ctx context.Context, envelope *models.WorkerEnvelope) error {
	if envelope == nil || envelope.Type == "" {
		return fmt.Errorf("envelope type 不能为空")
	}

	w.mu.Lock()
	if !w.activated && envelope.Type != models.EnvelopeSkipWaiting {
		w.pending = append(w.pending, envelope)
		w.mu.Unlock()
		log.Printf("📥 未激活，指令已入队: %s (队列长度 %d)", envelope.Type, len(w.pending))
		return nil
	}
	w.mu.Unlock()

	return w.process(ctx, envelope)
}

// Activate 标记激活并按序补发缓存的指令
func (w *Worker) Activate(ctx context.Context) {
	w.mu.Lock()
	if w.activated {
		w.mu.Unlock()
		return
	}
	w.activated = true
	queued := w.pending
	w.pending = nil
	w.mu.Unlock()

	log.Printf("✅ 已激活，补发 %d 条缓存指令", len(queued))
	for _, envelope := range queued {
		if err := w.process(ctx, envelope); err != nil {
			log.Printf("⚠️ 补发指令 %s 失败: %v", envelope.Type, err)
		}
	}
}

// process 按类型分发指令
func (w *Worker) process(ctx context.Context, envelope *models.WorkerEnvelope) error {
	switch envelope.Type {
	case models.EnvelopeConfigFirebase:
		return w.handleConfig(envelope.Config)

	case models.EnvelopeElfsightDomains:
		w.mergeDomains(envelope.Domains)
		return nil

	case models.EnvelopeSkipWaiting:
		w.Activate(ctx)
		return nil

	case models.EnvelopePing:
		w.sendReply(&models.PongReply{
			Type: models.EnvelopePong,
			Time: tool.MakeTimestamp(),
		})
		return nil

	case models.EnvelopeCacheURLs:
		return w.handleCacheURLs(ctx, envelope)

	case models.EnvelopeClearCache:
		return w.handleClearCache(ctx, envelope)

	case models.EnvelopeCheckForUpdates:
		if w.updateFn != nil {
			w.updateFn()
		}
		return nil

	case models.EnvelopeCheckInitialization:
		w.sendReply(w.Status())
		return nil
	}

	log.Printf("⚠️ 未知指令类型: %s", envelope.Type)
	return nil
}

// handleConfig 保存推送配置并尝试初始化通道
func (w *Worker) handleConfig(config map[string]interface{}) error {
	if len(config) == 0 {
		return fmt.Errorf("推送配置不能为空")
	}

	w.mu.Lock()
	w.messagingConfig = config
	w.mu.Unlock()

	w.tryInitMessaging()
	return nil
}

// tryInitMessaging 配置就绪后初始化推送通道，配置未就绪时静默等待
func (w *Worker) tryInitMessaging() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.messagingInit {
		return
	}
	if len(w.messagingConfig) == 0 {
		// 配置未到是正常的过渡状态
		return
	}

	w.messagingInit = true
	log.Printf("✅ 推送通道初始化完成")
}

// mergeDomains 合并白名单域名并去重
func (w *Worker) mergeDomains(domains []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	seen := make(map[string]bool, len(w.elfsightDomains))
	for _, d := range w.elfsightDomains {
		seen[d] = true
	}
	for _, d := range domains {
		if d != "" && !seen[d] {
			w.elfsightDomains = append(w.elfsightDomains, d)
			seen[d] = true
		}
	}
}

// handleCacheURLs 预缓存 URL，尽力而为
func (w *Worker) handleCacheURLs(ctx context.Context, envelope *models.WorkerEnvelope) error {
	if w.cache == nil || len(envelope.URLs) == 0 {
		return nil
	}

	cacheName := envelope.CacheName
	if cacheName == "" {
		cacheName = w.cacheName
	}

	if err := w.cache.AddAll(ctx, cacheName, envelope.URLs); err != nil {
		log.Printf("⚠️ 预缓存失败: %v", err)
	}
	return nil
}

// handleClearCache 删除指定缓存，尽力而为
func (w *Worker) handleClearCache(ctx context.Context, envelope *models.WorkerEnvelope) error {
	if w.cache == nil {
		return nil
	}

	cacheName := envelope.CacheName
	if cacheName == "" {
		cacheName = w.cacheName
	}

	if err := w.cache.Clear(ctx, cacheName); err != nil {
		log.Printf("⚠️ 删除缓存 %s 失败: %v", cacheName, err)
	}
	return nil
}

// HandlePush 处理一条推送：去重后交给展示器
// 返回该通知是否实际展示
func (w *Worker) HandlePush(ctx context.Context, message *models.NotificationMessage, userAgent string) bool {
	if message == nil {
		return false
	}

	id := message.ID
	if id == "" {
		id = dedup_service.DeriveMessageID("", message.CollapseKey, "push")
		message.ID = id
	}

	if !w.window.ShouldDisplay(id) {
		metrics.DedupSuppressedTotal.Inc()
		log.Printf("🔁 重复通知已抑制: %s", id)
		return false
	}

	if w.presenter != nil {
		w.presenter.Present(message, userAgent)
	}
	return true
}

// Status 返回当前通道状态
func (w *Worker) Status() *models.WorkerStatus {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &models.WorkerStatus{
		Activated:     w.activated,
		ConfigSet:     len(w.messagingConfig) > 0,
		MessagingInit: w.messagingInit,
		QueuedCount:   len(w.pending),
		Time:          time.Now().UnixMilli(),
	}
}

// ElfsightDomains 返回白名单域名快照
func (w *Worker) ElfsightDomains() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, len(w.elfsightDomains))
	copy(out, w.elfsightDomains)
	return out
}

// sendReply 发送应答，未配置通道时丢弃
func (w *Worker) sendReply(reply interface{}) {
	if w.reply == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ 发送应答时发生 panic: %v", r)
		}
	}()

	w.reply(reply)
}
