package dispatch_service

import (
	"context"
	"fmt"
	"log"
	"time"

	"wolf-push-service/models"
	"wolf-push-service/pkg/metrics"
	"wolf-push-service/service/subscription_service"
)

// DefaultDispatcher 默认通知分发实现
type DefaultDispatcher struct {
	store   subscription_service.SubscriptionStore
	senders []PlatformSender

	// 广播只投递近期活跃的订阅
	recencyDays int
	// 广播前顺带清理超过该天数不活跃的订阅
	staleDays int
}

// NewDispatcher 创建通知分发服务
func NewDispatcher(store subscription_service.SubscriptionStore, recencyDays, staleDays int, senders ...PlatformSender) *DefaultDispatcher {
	if recencyDays <= 0 {
		recencyDays = 60
	}
	if staleDays <= 0 {
		staleDays = 90
	}
	return &DefaultDispatcher{
		store:       store,
		senders:     senders,
		recencyDays: recencyDays,
		staleDays:   staleDays,
	}
}

// SendToEndpoint 发送通知到单个订阅
// platform 为空或 all 时逐一尝试发送器的全部载荷变体，分别计入结果
func (d *DefaultDispatcher) SendToEndpoint(ctx context.Context, endpoint string, message *models.NotificationMessage, platform string) (*models.DeliveryResult, error) {
	startTime := time.Now()

	if message == nil {
		return nil, fmt.Errorf("message 不能为空")
	}

	// 开发环境占位令牌直接视为投递成功，不触发任何远程调用
	if endpoint == models.PlaceholderToken {
		log.Printf("⚠️ 收到开发占位令牌，跳过投递")
		return &models.DeliveryResult{
			Success: true,
			Sent:    1,
			Failed:  0,
			Details: []*models.DeliveryDetail{{
				Platform: models.PlatformAll,
				Status:   models.DeliveryStatusSuccess,
				Token:    models.RedactToken(endpoint),
			}},
			Duration:  time.Since(startTime),
			Timestamp: time.Now(),
		}, nil
	}

	sub, err := d.store.GetByEndpoint(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("查询订阅失败: %w", err)
	}
	if sub == nil {
		return nil, fmt.Errorf("订阅不存在: %s", models.RedactToken(endpoint))
	}

	sender := d.senderFor(sub)
	if sender == nil {
		return nil, fmt.Errorf("没有发送器可以处理该订阅")
	}
	if !sender.HasCredentials() {
		return nil, fmt.Errorf("发送器 %s 未配置凭据", sender.GetName())
	}

	variants := sender.Variants()
	if platform != "" && platform != models.PlatformAll {
		variants = []string{platform}
	}
	if len(variants) == 0 {
		variants = []string{""}
	}

	var allDetails []*models.DeliveryDetail
	for _, variant := range variants {
		details, dead := sender.SendBulk(ctx, []*models.NotificationSubscription{sub}, message, variant)
		allDetails = append(allDetails, details...)
		d.removeDead(ctx, dead)
	}

	result := d.aggregate(allDetails, startTime)
	d.recordMetrics(allDetails)
	return result, nil
}

// SendToAll 广播通知到全部近期活跃的订阅
// platform 为空或 all 时不过滤平台
func (d *DefaultDispatcher) SendToAll(ctx context.Context, message *models.NotificationMessage, platform string) (*models.DeliveryResult, error) {
	startTime := time.Now()

	if message == nil {
		return nil, fmt.Errorf("message 不能为空")
	}

	if !d.hasAnyCredentials() {
		return nil, fmt.Errorf("没有任何发送器配置了凭据")
	}

	// 顺带清理长期不活跃的订阅，失败不阻塞广播
	staleCutoff := time.Now().AddDate(0, 0, -d.staleDays)
	if _, err := d.store.DeleteInactiveBefore(ctx, staleCutoff); err != nil {
		log.Printf("⚠️ 广播前清理过期订阅失败: %v", err)
	}

	recencyCutoff := time.Now().AddDate(0, 0, -d.recencyDays)
	subs, err := d.store.ListActiveSince(ctx, recencyCutoff)
	if err != nil {
		return nil, fmt.Errorf("查询活跃订阅失败: %w", err)
	}

	if platform != "" && platform != models.PlatformAll {
		filtered := subs[:0]
		for _, sub := range subs {
			if sub.Platform() == platform {
				filtered = append(filtered, sub)
			}
		}
		subs = filtered
	}

	if len(subs) == 0 {
		return &models.DeliveryResult{
			Success:   true,
			Details:   []*models.DeliveryDetail{},
			Duration:  time.Since(startTime),
			Timestamp: time.Now(),
		}, nil
	}

	// 按发送器分组后分别批量投递
	grouped := make(map[PlatformSender][]*models.NotificationSubscription)
	var allDetails []*models.DeliveryDetail

	for _, sub := range subs {
		sender := d.senderFor(sub)
		if sender == nil {
			allDetails = append(allDetails, &models.DeliveryDetail{
				Platform: sub.Platform(),
				Status:   models.DeliveryStatusFailed,
				Token:    models.RedactToken(sub.Endpoint),
				Error:    "没有发送器可以处理该订阅",
			})
			continue
		}
		grouped[sender] = append(grouped[sender], sub)
	}

	for sender, senderSubs := range grouped {
		if !sender.HasCredentials() {
			for _, sub := range senderSubs {
				allDetails = append(allDetails, &models.DeliveryDetail{
					Platform: sub.Platform(),
					Status:   models.DeliveryStatusFailed,
					Token:    models.RedactToken(sub.Endpoint),
					Error:    fmt.Sprintf("发送器 %s 未配置凭据", sender.GetName()),
				})
			}
			continue
		}

		details, dead := sender.SendBulk(ctx, senderSubs, message, "")
		allDetails = append(allDetails, details...)
		d.removeDead(ctx, dead)
	}

	result := d.aggregate(allDetails, startTime)
	d.recordMetrics(allDetails)
	metrics.DispatchDuration.Observe(result.Duration.Seconds())

	log.Printf("📨 广播完成: 成功 %d / 失败 %d, 耗时 %v", result.Sent, result.Failed, result.Duration)
	return result, nil
}

// senderFor 返回能处理该订阅的发送器
func (d *DefaultDispatcher) senderFor(sub *models.NotificationSubscription) PlatformSender {
	for _, sender := range d.senders {
		if sender.CanHandle(sub) {
			return sender
		}
	}
	return nil
}

// hasAnyCredentials 是否至少一个发送器可用
func (d *DefaultDispatcher) hasAnyCredentials() bool {
	for _, sender := range d.senders {
		if sender.HasCredentials() {
			return true
		}
	}
	return false
}

// removeDead 移除投递失败且已失效的订阅
func (d *DefaultDispatcher) removeDead(ctx context.Context, endpoints []string) {
	for _, endpoint := range endpoints {
		if err := d.store.Remove(ctx, endpoint); err != nil {
			log.Printf("⚠️ 移除失效订阅失败: %v", err)
		}
	}
}

// aggregate 汇总投递明细
func (d *DefaultDispatcher) aggregate(details []*models.DeliveryDetail, startTime time.Time) *models.DeliveryResult {
	sent := 0
	failed := 0
	for _, detail := range details {
		if detail.Status == models.DeliveryStatusSuccess {
			sent++
		} else {
			failed++
		}
	}

	if details == nil {
		details = []*models.DeliveryDetail{}
	}

	return &models.DeliveryResult{
		Success:   failed == 0,
		Sent:      sent,
		Failed:    failed,
		Details:   details,
		Duration:  time.Since(startTime),
		Timestamp: time.Now(),
	}
}

// recordMetrics 上报投递指标
func (d *DefaultDispatcher) recordMetrics(details []*models.DeliveryDetail) {
	for _, detail := range details {
		metrics.RecordDelivery(detail.Platform, detail.Status)
	}
}
