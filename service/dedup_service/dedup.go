package dedup_service

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultCapacity 去重窗口默认容量
	DefaultCapacity = 30

	// DefaultClearInterval 整窗清空的兜底周期
	DefaultClearInterval = time.Hour
)

// Window 有界的消息ID去重窗口
// 每个执行上下文（service worker / 前台页面）各持有独立实例，二者之间不共享状态。
// 容量满时按插入顺序淘汰最旧的ID（FIFO，非LRU）；定时整窗清空作为兜底。
type Window struct {
	mu         sync.Mutex
	capacity   int
	order      []string            // 插入顺序
	seen       map[string]struct{} // 成员判定
	lastClear  time.Time
	clearEvery time.Duration
	now        func() time.Time
}

// NewWindow 创建去重窗口
func NewWindow(capacity int, clearEvery time.Duration) *Window {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if clearEvery <= 0 {
		clearEvery = DefaultClearInterval
	}
	return &Window{
		capacity:   capacity,
		order:      make([]string, 0, capacity),
		seen:       make(map[string]struct{}),
		clearEvery: clearEvery,
		lastClear:  time.Now(),
		now:        time.Now,
	}
}

// ShouldDisplay 判断该消息ID是否应该展示
// 首次见到返回 true 并记录；窗口内重复返回 false。整窗到期时先清空再判定。
func (w *Window) ShouldDisplay(messageID string) bool {
	if messageID == "" {
		return true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// 整窗清空兜底，防止淘汰逻辑被跳过时无界增长
	if w.now().Sub(w.lastClear) >= w.clearEvery {
		w.order = w.order[:0]
		w.seen = make(map[string]struct{})
		w.lastClear = w.now()
	}

	if _, exists := w.seen[messageID]; exists {
		return false
	}

	w.seen[messageID] = struct{}{}
	w.order = append(w.order, messageID)

	// 超容量先淘汰最旧的ID
	for len(w.order) > w.capacity {
		oldest := w.order[0]
		w.order = w.order[1:]
		delete(w.seen, oldest)
	}

	return true
}

// Len 当前窗口内记录的ID数
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.order)
}

// Clear 立即整窗清空
func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.order = w.order[:0]
	w.seen = make(map[string]struct{})
	w.lastClear = w.now()
}

// DeriveMessageID 推导去重键
// 优先级：提供商消息ID > 折叠键 > 本地生成兜底（上下文+时间戳）。
// 兜底ID意味着两条都缺失标识的真重复推送不会被去重，这是已接受的缺口。
func DeriveMessageID(providerMessageID, collapseKey, context string) string {
	if providerMessageID != "" {
		return providerMessageID
	}
	if collapseKey != "" {
		return collapseKey
	}
	return fmt.Sprintf("%s:%d", context, time.Now().UnixNano()/int64(time.Millisecond))
}
