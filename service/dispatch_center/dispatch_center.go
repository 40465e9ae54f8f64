package dispatchcenter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"sync"
	"time"
	"wolf-push-service/models"
	"wolf-push-service/service/dedup_service"
	"wolf-push-service/service/dispatch_service"
	"wolf-push-service/service/pebble_service"
	"wolf-push-service/service/socket_client_service"
)

// DispatchCenter 站点事件推送中心
// 订阅站点后端的 Socket.IO 事件流，将订座确认、促销广播、菜单更新
// 转换为通知并经派发器扇出到订阅者。
type DispatchCenter struct {
	socketManager *socket_client_service.Manager
	dispatcher    dispatch_service.Dispatcher
	config        *Config
	running       bool
	mu            sync.RWMutex
}

// Config 推送中心配置
type Config struct {
	SocketConfig *socket_client_service.Config `yaml:"socket" json:"socket"`
	PebbleConfig *pebble_service.Config        `yaml:"pebble" json:"pebble"`               // Pebble 数据库配置
	EnabledTypes []string                      `yaml:"enabled_types" json:"enabled_types"` // 启用的事件类型
}

// NewDispatchCenter 创建推送中心实例
func NewDispatchCenter(config *Config, dispatcher dispatch_service.Dispatcher) *DispatchCenter {
	// 默认启用所有事件类型
	if len(config.EnabledTypes) == 0 {
		config.EnabledTypes = []string{"reservation", "promo", "menu_update"}
	}

	return &DispatchCenter{
		socketManager: socket_client_service.NewManager(config.SocketConfig),
		dispatcher:    dispatcher,
		config:        config,
		running:       false,
	}
}

// Initialize 初始化推送中心
func (dc *DispatchCenter) Initialize() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	log.Printf("🚀 正在初始化推送中心...")

	// 初始化 Pebble 数据库服务
	if err := pebble_service.InitializeGlobalService(dc.config.PebbleConfig); err != nil {
		log.Printf("❌ 初始化 Pebble 服务失败: %v", err)
		return fmt.Errorf("初始化 Pebble 服务失败: %w", err)
	}
	log.Printf("✅ Pebble 数据库服务已初始化")

	// 设置 socket 连接处理器
	dc.socketManager.SetConnectHandler(func() {
		log.Printf("✅ Socket 客户端已连接")
	})

	dc.socketManager.SetDisconnectHandler(func() {
		log.Printf("❌ Socket 客户端已断开连接")
	})

	dc.socketManager.SetErrorHandler(func(err error) {
		log.Printf("🔥 Socket 客户端错误: %v", err)
	})

	// 设置站点事件处理器
	dc.SetSiteEventHandler()

	log.Printf("✅ 推送中心初始化完成")
	return nil
}

// Run 运行推送中心
func (dc *DispatchCenter) Run() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.running {
		return fmt.Errorf("推送中心已经在运行中")
	}

	log.Printf("🚀 启动推送中心...")

	// 启动 socket 客户端连接
	if err := dc.socketManager.Start(); err != nil {
		log.Printf("❌ 启动 Socket 客户端失败: %v", err)
		return fmt.Errorf("启动 Socket 客户端失败: %w", err)
	}

	dc.running = true
	log.Printf("✅ 推送中心已启动，正在监听站点事件...")

	return nil
}

// Stop 停止推送中心
func (dc *DispatchCenter) Stop() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if !dc.running {
		return nil
	}

	log.Printf("🛑 正在停止推送中心...")

	// 停止 socket 客户端
	dc.socketManager.Stop()

	// 关闭 Pebble 服务
	if err := pebble_service.CloseGlobalService(); err != nil {
		log.Printf("⚠️ 关闭 Pebble 服务时出现错误: %v", err)
	} else {
		log.Printf("✅ Pebble 数据库服务已关闭")
	}

	dc.running = false
	log.Printf("✅ 推送中心已停止")

	return nil
}

// IsRunning 检查推送中心是否正在运行
func (dc *DispatchCenter) IsRunning() bool {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	return dc.running && dc.socketManager.IsRunning()
}

// SetSiteEventHandler 设置站点事件处理器
func (dc *DispatchCenter) SetSiteEventHandler() {
	dc.socketManager.SetSiteEventHandler(dc.handleSiteEvent)
}

// handleSiteEvent 站点事件入口，按类型过滤后异步处理
func (dc *DispatchCenter) handleSiteEvent(eventMsg *socket_client_service.SiteEventMessage) {
	if eventMsg == nil || eventMsg.Data == nil {
		log.Printf("⚠️ 收到空的站点事件")
		return
	}

	log.Printf("📨 收到站点事件: Type=%s", eventMsg.Type)

	// 检查事件类型是否启用
	if !dc.isEventTypeEnabled(eventMsg.Type) {
		log.Printf("⚠️ 事件类型 %s 未启用，跳过处理", eventMsg.Type)
		return
	}

	// 处理站点事件并转发推送
	go dc.processSiteEvent(eventMsg)
}

// isEventTypeEnabled 检查事件类型是否启用
func (dc *DispatchCenter) isEventTypeEnabled(eventType string) bool {
	for _, enabledType := range dc.config.EnabledTypes {
		if enabledType == eventType {
			return true
		}
	}
	return false
}

// processSiteEvent 处理站点事件
func (dc *DispatchCenter) processSiteEvent(eventMsg *socket_client_service.SiteEventMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	event := eventMsg.Data

	// 事件ID缺失时本地推导兜底
	eventID := event.EventID
	if eventID == "" {
		eventID = dedup_service.DeriveMessageID("", event.CollapseKey, eventMsg.Type)
		log.Printf("⚠️ 事件ID为空，使用兜底ID: %s", eventID)
	}

	// 重复事件不再推送
	isNotified, err := pebble_service.IsNotifiedEventGlobal(eventID)
	if err != nil {
		log.Printf("❌ 检查事件通知状态失败: %v", err)
		return
	}
	if isNotified {
		log.Printf("📌 事件已通知，跳过推送: %s", eventID)
		return
	}

	message := dc.buildNotificationMessage(eventMsg.Type, eventID, event)

	var result *models.DeliveryResult
	if event.TargetEndpoint != "" {
		// 定向推送单个订阅
		log.Printf("🔔 开始定向推送事件 %s", eventID)
		result, err = dc.dispatcher.SendToEndpoint(ctx, event.TargetEndpoint, message, models.PlatformAll)
	} else {
		// 广播给所有活跃订阅
		log.Printf("🚀 开始广播事件 %s", eventID)
		result, err = dc.dispatcher.SendToAll(ctx, message, models.PlatformAll)
	}

	if err != nil {
		log.Printf("❌ 推送站点事件失败: %v", err)
		return
	}

	log.Printf("✅ 站点事件推送完成: 成功=%d, 失败=%d, 耗时=%v",
		result.Sent, result.Failed, result.Duration)

	// 记录失败明细
	if result.Failed > 0 {
		for _, detail := range result.Details {
			if detail.Status != "success" && detail.Error != "" {
				log.Printf("⚠️ 推送失败 - 平台: %s, 令牌: %s, 错误: %s",
					detail.Platform, detail.Token, detail.Error)
			}
		}
	}

	// 记录已通知事件
	go func() {
		if err := pebble_service.AddNotifiedEventGlobal(eventID, dc.messageHash(message)); err != nil {
			log.Printf("⚠️ 记录事件通知状态失败: %v", err)
		} else {
			log.Printf("📌 已记录事件通知状态: %s", eventID)
		}
	}()
}

// buildNotificationMessage 将站点事件转换为通知消息
func (dc *DispatchCenter) buildNotificationMessage(eventType, eventID string, event *socket_client_service.SiteEventData) *models.NotificationMessage {
	title := event.Title
	if title == "" {
		title = dc.generateNotificationTitle(eventType)
	}

	body := event.Body
	if body == "" {
		body = dc.generateNotificationBody(eventType)
	}

	link := event.Link
	if link == "" {
		link = "/"
	}

	return &models.NotificationMessage{
		ID:          eventID,
		Title:       dc.truncateText(title, 60),
		Body:        dc.truncateText(body, 160),
		Link:        link,
		Image:       event.Image,
		CollapseKey: event.CollapseKey,
		Data: map[string]interface{}{
			"type":      eventType,
			"eventId":   eventID,
			"timestamp": time.Now().Unix(),
		},
	}
}

// generateNotificationTitle 生成通知标题
func (dc *DispatchCenter) generateNotificationTitle(eventType string) string {
	switch eventType {
	case "reservation":
		return "Reservation Confirmed"
	case "promo":
		return "Special Offer"
	case "menu_update":
		return "Menu Update"
	default:
		return "Wolf Restaurant"
	}
}

// generateNotificationBody 生成通知内容
func (dc *DispatchCenter) generateNotificationBody(eventType string) string {
	switch eventType {
	case "reservation":
		return "Your table is confirmed. See you soon!"
	case "promo":
		return "A new offer is waiting for you."
	case "menu_update":
		return "Our menu just got an update. Take a look!"
	default:
		return "You have a new update from Wolf Restaurant."
	}
}

// truncateText 按字符截断过长的通知文本，避免截出残缺的多字节字符
func (dc *DispatchCenter) truncateText(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength-3]) + "..."
}

// messageHash 计算消息内容摘要，用于通知记录回查
func (dc *DispatchCenter) messageHash(message *models.NotificationMessage) string {
	sum := sha256.Sum256([]byte(message.Title + "|" + message.Body + "|" + message.Link))
	return hex.EncodeToString(sum[:8])
}
