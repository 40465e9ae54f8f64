package dispatch_service

import (
	"context"

	"wolf-push-service/models"
)

// PlatformSender 定义平台发送器接口
type PlatformSender interface {
	// GetName 返回发送器名称
	GetName() string

	// HasCredentials 是否已配置发送凭据
	HasCredentials() bool

	// CanHandle 判断订阅是否由本发送器投递
	CanHandle(sub *models.NotificationSubscription) bool

	// Variants 返回发送器可构造的平台载荷变体，空表示只有一种
	Variants() []string

	// SendBulk 批量发送通知，platform 非空时强制使用该平台的载荷变体
	// 返回逐条结果和已失效的 endpoint 列表
	SendBulk(ctx context.Context, subs []*models.NotificationSubscription, message *models.NotificationMessage, platform string) ([]*models.DeliveryDetail, []string)
}

// Dispatcher 通知分发服务接口
type Dispatcher interface {
	// SendToEndpoint 发送通知到单个订阅，platform 为空或 all 时逐一尝试全部载荷变体
	SendToEndpoint(ctx context.Context, endpoint string, message *models.NotificationMessage, platform string) (*models.DeliveryResult, error)

	// SendToAll 广播通知到全部活跃订阅
	SendToAll(ctx context.Context, message *models.NotificationMessage, platform string) (*models.DeliveryResult, error)
}
