package subscription_service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"wolf-push-service/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSubscriptionStore 基于 MySQL 的订阅存储
type GormSubscriptionStore struct {
	db *gorm.DB
}

// NewGormSubscriptionStore 创建订阅存储
func NewGormSubscriptionStore(db *gorm.DB) *GormSubscriptionStore {
	return &GormSubscriptionStore{db: db}
}

// Upsert 按 endpoint 唯一键写入订阅
// 注册路径唯一的并发入口走唯一键 upsert，不存在读-改-写竞态窗口
func (s *GormSubscriptionStore) Upsert(ctx context.Context, sub *models.NotificationSubscription) error {
	if sub == nil || sub.Endpoint == "" {
		return fmt.Errorf("endpoint 不能为空")
	}

	if sub.LastActive.IsZero() {
		sub.LastActive = time.Now()
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"p256dh", "auth", "user_agent", "last_active",
		}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("保存订阅失败: %w", err)
	}

	log.Printf("✅ 已保存订阅: endpoint=%s, platform=%s", models.RedactToken(sub.Endpoint), sub.Platform())
	return nil
}

// GetByEndpoint 按 endpoint 查询订阅
func (s *GormSubscriptionStore) GetByEndpoint(ctx context.Context, endpoint string) (*models.NotificationSubscription, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint 不能为空")
	}

	var sub models.NotificationSubscription
	err := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询订阅失败: %w", err)
	}
	return &sub, nil
}

// Remove 按 endpoint 删除订阅
func (s *GormSubscriptionStore) Remove(ctx context.Context, endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("endpoint 不能为空")
	}

	err := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).
		Delete(&models.NotificationSubscription{}).Error
	if err != nil {
		return fmt.Errorf("删除订阅失败: %w", err)
	}

	log.Printf("🗑️ 已删除订阅: endpoint=%s", models.RedactToken(endpoint))
	return nil
}

// ListActiveSince 取活跃订阅
func (s *GormSubscriptionStore) ListActiveSince(ctx context.Context, since time.Time) ([]*models.NotificationSubscription, error) {
	var subs []*models.NotificationSubscription
	err := s.db.WithContext(ctx).
		Where("last_active >= ?", since).
		Order("id asc").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("查询活跃订阅失败: %w", err)
	}
	return subs, nil
}

// DeleteInactiveBefore 清理过期订阅
func (s *GormSubscriptionStore) DeleteInactiveBefore(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("last_active < ?", before).
		Delete(&models.NotificationSubscription{})
	if result.Error != nil {
		return 0, fmt.Errorf("清理过期订阅失败: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		log.Printf("🗑️ 已清理 %d 条过期订阅（不活跃时间早于 %s）", result.RowsAffected, before.Format("2006-01-02"))
	}
	return result.RowsAffected, nil
}

// List 分页列出订阅
func (s *GormSubscriptionStore) List(ctx context.Context, page, pageSize int) (*PaginatedSubscriptions, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.NotificationSubscription{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("统计订阅总数失败: %w", err)
	}

	var subs []*models.NotificationSubscription
	err := s.db.WithContext(ctx).
		Order("id asc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("分页查询订阅失败: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &PaginatedSubscriptions{
		Subscriptions: subs,
		Total:         total,
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    totalPages,
	}, nil
}
