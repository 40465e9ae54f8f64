package dispatch_service

import (
	"context"
	"sync"

	"wolf-push-service/models"
	"wolf-push-service/service/webpush_service"
)

// WebPushSender 通过 Web Push 协议投递浏览器订阅
type WebPushSender struct {
	service *webpush_service.Service
	// 并发上限
	maxConcurrency int
}

// NewWebPushSender 创建 Web Push 发送器
func NewWebPushSender(service *webpush_service.Service) *WebPushSender {
	return &WebPushSender{
		service:        service,
		maxConcurrency: 8,
	}
}

// GetName 返回发送器名称
func (s *WebPushSender) GetName() string {
	return "webpush"
}

// HasCredentials 是否已配置 VAPID 密钥
func (s *WebPushSender) HasCredentials() bool {
	return s.service != nil && s.service.HasCredentials()
}

// CanHandle 持有真实加密密钥的订阅由 Web Push 投递
func (s *WebPushSender) CanHandle(sub *models.NotificationSubscription) bool {
	return sub != nil && sub.IsWebPush()
}

// Variants Web Push 只有一种载荷形态
func (s *WebPushSender) Variants() []string {
	return nil
}

// SendBulk 并发发送到多个浏览器订阅，platform 参数对 Web Push 无效
func (s *WebPushSender) SendBulk(ctx context.Context, subs []*models.NotificationSubscription, message *models.NotificationMessage, platform string) ([]*models.DeliveryDetail, []string) {
	details := make([]*models.DeliveryDetail, len(subs))
	var deadEndpoints []string

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.maxConcurrency)

	for i, sub := range subs {
		wg.Add(1)
		go func(idx int, sub *models.NotificationSubscription) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			result := s.service.Send(ctx, sub, message)

			detail := &models.DeliveryDetail{
				Platform: sub.Platform(),
				Token:    models.RedactToken(sub.Endpoint),
			}
			if result.Success {
				detail.Status = models.DeliveryStatusSuccess
			} else {
				detail.Status = models.DeliveryStatusFailed
				if result.Error != nil {
					detail.Error = result.Error.Error()
				}
			}

			mu.Lock()
			details[idx] = detail
			if result.SubscriptionGone {
				deadEndpoints = append(deadEndpoints, sub.Endpoint)
			}
			mu.Unlock()
		}(i, sub)
	}

	wg.Wait()

	return details, deadEndpoints
}
