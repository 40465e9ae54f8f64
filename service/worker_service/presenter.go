package worker_service

import (
	"fmt"
	"log"
	"strings"

	"wolf-push-service/models"
)

// 各平台通知资源
const (
	AndroidIcon  = "/images/notification-icon-192.png"
	AndroidBadge = "/images/notification-badge-72.png"
	IOSIcon      = "/images/notification-icon-ios-180.png"
	WebIcon      = "/images/notification-icon-192.png"
	WebBadge     = "/images/notification-badge-72.png"
)

// DisplayNotification 最终交给展示层的通知形态
type DisplayNotification struct {
	Title              string                 `json:"title"`
	Body               string                 `json:"body"`
	Icon               string                 `json:"icon,omitempty"`
	Badge              string                 `json:"badge,omitempty"`
	Image              string                 `json:"image,omitempty"`
	Tag                string                 `json:"tag,omitempty"`
	Link               string                 `json:"link,omitempty"`
	RequireInteraction bool                   `json:"requireInteraction"`
	Silent             bool                   `json:"silent"`
	Data               map[string]interface{} `json:"data,omitempty"`
}

// DisplayFunc 实际展示通知的回调，失败只记录日志不向上传播
type DisplayFunc func(notification *DisplayNotification) error

// Presenter 按平台规则构造并展示通知
type Presenter struct {
	display DisplayFunc
}

// NewPresenter 创建通知展示器
func NewPresenter(display DisplayFunc) *Presenter {
	return &Presenter{display: display}
}

// Build 按 User-Agent 平台规则构造展示形态，规则首条命中即生效
func (p *Presenter) Build(message *models.NotificationMessage, userAgent string) *DisplayNotification {
	n := &DisplayNotification{
		Title: message.Title,
		Body:  message.Body,
		Tag:   message.ID,
		Link:  message.Link,
		Data:  message.Data,
	}

	switch models.ClassifyPlatform(userAgent) {
	case models.PlatformAndroid:
		n.Icon = AndroidIcon
		n.Badge = AndroidBadge
	case models.PlatformIOS:
		// iOS 通知静默展示，不强制用户交互
		n.Icon = IOSIcon
		n.Silent = true
	default:
		n.Icon = WebIcon
		n.Badge = WebBadge
		n.RequireInteraction = true
	}

	if IsValidImageURL(message.Image) {
		n.Image = message.Image
	}

	return n
}

// Present 构造并展示通知，展示失败只记录日志
func (p *Presenter) Present(message *models.NotificationMessage, userAgent string) {
	n := p.Build(message, userAgent)

	if p.display == nil {
		log.Printf("⚠️ 未配置展示回调，丢弃通知: %s", n.Title)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ 展示通知时发生 panic: %v", r)
		}
	}()

	if err := p.display(n); err != nil {
		log.Printf("❌ 展示通知失败: %v", err)
	}
}

// IsValidImageURL 图片地址要么是站内路径要么是 http/https/data 协议
func IsValidImageURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	if strings.HasPrefix(rawURL, "/") {
		return true
	}
	for _, scheme := range []string{"http://", "https://", "data:"} {
		if strings.HasPrefix(rawURL, scheme) {
			return true
		}
	}
	return false
}

// ClickAction 点击通知后的处理动作
type ClickAction struct {
	// focus 或 open
	Action string
	// 目标地址
	Target string
	// Action 为 focus 时命中的窗口地址
	WindowURL string
}

// ResolveClick 解析通知点击：优先聚焦地址包含目标的已开窗口，否则新开窗口
func ResolveClick(link string, openWindows []string) *ClickAction {
	target := link
	if target == "" {
		target = "/"
	}

	for _, windowURL := range openWindows {
		if strings.Contains(windowURL, target) {
			return &ClickAction{
				Action:    "focus",
				Target:    target,
				WindowURL: windowURL,
			}
		}
	}

	return &ClickAction{
		Action: "open",
		Target: target,
	}
}

// String 便于日志输出
func (a *ClickAction) String() string {
	if a.Action == "focus" {
		return fmt.Sprintf("focus %s", a.WindowURL)
	}
	return fmt.Sprintf("open %s", a.Target)
}
