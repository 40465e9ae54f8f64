package subscription_service

import (
	"context"
	"time"

	"wolf-push-service/models"
)

// SubscriptionStore 订阅记录存储接口
type SubscriptionStore interface {
	// Upsert 按 endpoint 幂等写入：已存在则更新（不产生重复行），last_active 取最新时间
	Upsert(ctx context.Context, sub *models.NotificationSubscription) error

	// GetByEndpoint 按 endpoint 查询
	GetByEndpoint(ctx context.Context, endpoint string) (*models.NotificationSubscription, error)

	// Remove 按 endpoint 删除（显式退订）
	Remove(ctx context.Context, endpoint string) error

	// ListActiveSince 取在 since 之后活跃的全部订阅
	ListActiveSince(ctx context.Context, since time.Time) ([]*models.NotificationSubscription, error)

	// DeleteInactiveBefore 删除在 before 之前就不再活跃的过期订阅，返回删除数
	DeleteInactiveBefore(ctx context.Context, before time.Time) (int64, error)

	// List 分页列出订阅
	List(ctx context.Context, page, pageSize int) (*PaginatedSubscriptions, error)
}

// PaginatedSubscriptions 分页结果
type PaginatedSubscriptions struct {
	Subscriptions []*models.NotificationSubscription `json:"subscriptions"` // 当前页数据
	Total         int64                              `json:"total"`         // 总记录数
	Page          int                                `json:"page"`          // 当前页码
	PageSize      int                                `json:"pageSize"`      // 每页大小
	TotalPages    int                                `json:"totalPages"`    // 总页数
}
