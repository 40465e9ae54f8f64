package models

import "time"

// 平台常量
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
	PlatformWeb     = "web"
	PlatformAll     = "all"
)

// PlaceholderToken 本地开发占位令牌
// 非 HTTPS 本地环境下 Token Provider 返回该固定值，下游按"模拟成功"处理，不触发真实推送
const PlaceholderToken = "wolf-dev-placeholder-token"

// WebPushKeySentinel 当记录保存的是平台消息令牌（而非原始 web-push 订阅）时，
// p256dh/auth 字段写入的哨兵值
const WebPushKeySentinel = "fcm"

// NotificationMessage 通知消息（瞬态，不落库）
type NotificationMessage struct {
	ID          string                 `json:"id"`                    // 去重键：提供商消息ID > collapseKey > 本地生成兜底
	Title       string                 `json:"title"`                 // 通知标题
	Body        string                 `json:"body"`                  // 通知内容
	Link        string                 `json:"link,omitempty"`        // 点击跳转链接
	Image       string                 `json:"image,omitempty"`       // 图片URL（展示前需校验）
	CollapseKey string                 `json:"collapseKey,omitempty"` // 折叠键
	Data        map[string]interface{} `json:"data,omitempty"`        // 自定义数据
}

// DeliveryDetail 单个令牌的投递明细（令牌只保留前缀，避免完整令牌泄漏到日志/响应）
type DeliveryDetail struct {
	Platform string `json:"platform"`        // 平台 (android, ios, web)
	Status   string `json:"status"`          // success / failed
	Token    string `json:"token,omitempty"` // 已脱敏的令牌前缀
	Error    string `json:"error,omitempty"` // 错误信息
}

// DeliveryResult 扇出投递结果（瞬态，直接返回给调用方）
type DeliveryResult struct {
	Success   bool             `json:"success"`   // 是否整体成功（无失败）
	Sent      int              `json:"sent"`      // 成功数
	Failed    int              `json:"failed"`    // 失败数
	Details   []*DeliveryDetail `json:"details"`  // 逐令牌明细（保持尝试顺序）
	Duration  time.Duration    `json:"duration"`  // 总耗时
	Timestamp time.Time        `json:"timestamp"` // 时间戳
}

// 投递状态常量
const (
	DeliveryStatusSuccess = "success"
	DeliveryStatusFailed  = "failed"
)

// RedactToken 令牌脱敏，只保留前缀
func RedactToken(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8] + "..."
}
