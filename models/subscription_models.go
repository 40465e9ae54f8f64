package models

import (
	"strings"
	"time"
)

// NotificationSubscription 设备订阅记录
// endpoint 全局唯一：推送令牌或 web-push endpoint URL，即设备身份
type NotificationSubscription struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Endpoint  string    `gorm:"column:endpoint;type:varchar(512);uniqueIndex:ux_endpoint;not null" json:"endpoint"`
	P256dh    string    `gorm:"column:p256dh;type:varchar(255)" json:"p256dh"`  // web-push 加密公钥，平台令牌时为哨兵值
	Auth      string    `gorm:"column:auth;type:varchar(255)" json:"auth"`      // web-push 认证密钥，平台令牌时为哨兵值
	UserAgent string    `gorm:"column:user_agent;type:varchar(512)" json:"userAgent"` // 最近一次观察到的 UA，用于平台粗分类
	LastActive time.Time `gorm:"column:last_active;index" json:"lastActive"`    // 每次注册心跳更新，驱动过期清理
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// TableName 指定表名
func (NotificationSubscription) TableName() string {
	return "notification_subscriptions"
}

// IsWebPush 判断该订阅是否为原始 web-push 订阅（持有真实加密密钥）
func (s *NotificationSubscription) IsWebPush() bool {
	return s.P256dh != "" && s.P256dh != WebPushKeySentinel &&
		s.Auth != "" && s.Auth != WebPushKeySentinel
}

// Platform 根据 UA 对订阅做粗平台分类 (android/ios/web)
func (s *NotificationSubscription) Platform() string {
	return ClassifyPlatform(s.UserAgent)
}

// ClassifyPlatform UA 嗅探分类，未命中时回落 web
func ClassifyPlatform(userAgent string) string {
	ua := strings.ToLower(userAgent)
	if strings.Contains(ua, "android") {
		return PlatformAndroid
	}
	if strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ipod") {
		return PlatformIOS
	}
	return PlatformWeb
}
