package subscription_service

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Cleaner 按计划清理长期不活跃的订阅
type Cleaner struct {
	store     SubscriptionStore
	staleDays int
	spec      string
	cron      *cron.Cron
}

// NewCleaner 创建订阅清理任务
func NewCleaner(store SubscriptionStore, staleDays int, spec string) *Cleaner {
	if staleDays <= 0 {
		staleDays = 90
	}
	if spec == "" {
		spec = "0 4 * * *"
	}
	return &Cleaner{
		store:     store,
		staleDays: staleDays,
		spec:      spec,
	}
}

// Start 启动定时清理
func (c *Cleaner) Start() error {
	c.cron = cron.New()
	_, err := c.cron.AddFunc(c.spec, func() {
		c.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}
	c.cron.Start()
	log.Printf("🕐 订阅清理任务已启动: spec=%s, stale_days=%d", c.spec, c.staleDays)
	return nil
}

// Stop 停止定时清理
func (c *Cleaner) Stop() {
	if c.cron != nil {
		c.cron.Stop()
	}
}

// RunOnce 立即执行一次清理
func (c *Cleaner) RunOnce(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -c.staleDays)
	removed, err := c.store.DeleteInactiveBefore(ctx, cutoff)
	if err != nil {
		log.Printf("❌ 订阅清理失败: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("✅ 订阅清理完成: 移除 %d 条", removed)
	}
}
