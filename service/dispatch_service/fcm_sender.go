package dispatch_service

import (
	"context"

	"wolf-push-service/models"
	"wolf-push-service/service/fcm_service"
)

const (
	// Android 通知资源路径
	androidIconPath  = "/images/notification-icon-192.png"
	androidBadgePath = "/images/notification-badge-72.png"
)

// FCMSender 通过 FCM 投递原生端订阅
type FCMSender struct {
	manager *fcm_service.Manager
}

// NewFCMSender 创建 FCM 发送器
func NewFCMSender(manager *fcm_service.Manager) *FCMSender {
	return &FCMSender{manager: manager}
}

// GetName 返回发送器名称
func (s *FCMSender) GetName() string {
	return "fcm"
}

// HasCredentials 是否已配置 server key
func (s *FCMSender) HasCredentials() bool {
	return s.manager != nil && s.manager.HasCredentials()
}

// CanHandle 非 Web Push 订阅（密钥为占位值）由 FCM 投递
func (s *FCMSender) CanHandle(sub *models.NotificationSubscription) bool {
	return sub != nil && !sub.IsWebPush()
}

// Variants FCM 可以构造三种平台的载荷
func (s *FCMSender) Variants() []string {
	return []string{models.PlatformAndroid, models.PlatformIOS, models.PlatformWeb}
}

// SendBulk 按平台分组构造差异化载荷后批量发送
// platform 非空时全部订阅都使用该平台的载荷变体
func (s *FCMSender) SendBulk(ctx context.Context, subs []*models.NotificationSubscription, message *models.NotificationMessage, platform string) ([]*models.DeliveryDetail, []string) {
	// 各平台的通知形态不同，先按平台分组
	groups := make(map[string][]*models.NotificationSubscription)
	for _, sub := range subs {
		p := platform
		if p == "" {
			p = sub.Platform()
		}
		groups[p] = append(groups[p], sub)
	}

	var details []*models.DeliveryDetail
	var deadEndpoints []string

	for platform, groupSubs := range groups {
		request := s.buildRequest(platform, message)
		request.RegistrationIDs = make([]string, len(groupSubs))
		for i, sub := range groupSubs {
			request.RegistrationIDs[i] = sub.Endpoint
		}

		results := s.manager.SendCustomRequest(ctx, request)

		for i, r := range results {
			detail := &models.DeliveryDetail{
				Platform: platform,
				Token:    models.RedactToken(r.Token),
			}
			if r.Success {
				detail.Status = models.DeliveryStatusSuccess
			} else {
				detail.Status = models.DeliveryStatusFailed
				if r.Error != nil {
					detail.Error = r.Error.Error()
				}
				if r.TokenInvalid && i < len(groupSubs) {
					deadEndpoints = append(deadEndpoints, groupSubs[i].Endpoint)
				}
			}
			details = append(details, detail)
		}
	}

	return details, deadEndpoints
}

// buildRequest 构造平台差异化的 FCM 请求
func (s *FCMSender) buildRequest(platform string, message *models.NotificationMessage) *fcm_service.SendRequest {
	data := map[string]interface{}{}
	for k, v := range message.Data {
		data[k] = v
	}
	if message.ID != "" {
		data["id"] = message.ID
	}
	if message.Link != "" {
		data["link"] = message.Link
	}

	request := &fcm_service.SendRequest{
		Data:        data,
		Priority:    "high",
		CollapseKey: message.CollapseKey,
	}

	switch platform {
	case models.PlatformIOS:
		// iOS 走静默推送，展示由客户端自行处理
		request.ContentAvailable = true
		data["title"] = message.Title
		data["body"] = message.Body
		if message.Image != "" {
			data["image"] = message.Image
		}
	case models.PlatformAndroid:
		request.Notification = &fcm_service.Notification{
			Title:       message.Title,
			Body:        message.Body,
			Icon:        androidIconPath,
			Badge:       androidBadgePath,
			Image:       message.Image,
			ClickAction: message.Link,
			Tag:         message.ID,
		}
	default:
		// Web 端通知要求用户交互后才消失
		request.Notification = &fcm_service.Notification{
			Title:              message.Title,
			Body:               message.Body,
			Image:              message.Image,
			ClickAction:        message.Link,
			Tag:                message.ID,
			RequireInteraction: true,
		}
	}

	return request
}
