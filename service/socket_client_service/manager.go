package socket_client_service

import (
	"errors"
	"log"
	"sync"
)

// ErrClientNotStarted 客户端未启动
var ErrClientNotStarted = errors.New("socket.io client not started")

// Manager Socket.IO 客户端管理器
type Manager struct {
	client *Client
	config *Config
	mu     sync.RWMutex
}

// NewManager 创建客户端管理器
func NewManager(config *Config) *Manager {
	return &Manager{
		config: config,
		client: NewClient(config),
	}
}

// Start 启动客户端，缺省回调只在未设置时补齐
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client.IsConnected() {
		log.Println("⚠️ Socket.IO client already running")
		return nil
	}

	if m.client.OnConnect == nil {
		m.client.OnConnect = func() {
			log.Println("🎉 Socket.IO client connected")
		}
	}

	if m.client.OnDisconnect == nil {
		m.client.OnDisconnect = func() {
			log.Println("👋 Socket.IO client disconnected")
		}
	}

	if m.client.OnError == nil {
		m.client.OnError = func(err error) {
			log.Printf("💥 Socket.IO client error: %v", err)
		}
	}

	if m.client.OnHeartbeat == nil {
		m.client.OnHeartbeat = func() {
			log.Println("💓 收到服务端心跳")
		}
	}

	if m.client.OnSiteEvent == nil {
		m.client.OnSiteEvent = func(msg *SiteEventMessage) {
			if msg.Data != nil {
				log.Printf("🍽️ 收到站点事件 [%s]: %s", msg.Type, msg.Data.Title)
			}
		}
	}

	return m.client.Start()
}

// Stop 停止客户端
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		m.client.Stop()
	}
}

// IsRunning 检查是否运行中
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.client != nil && m.client.IsConnected()
}

// SetSiteEventHandler 设置站点事件处理器
func (m *Manager) SetSiteEventHandler(handler func(*SiteEventMessage)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.client.OnSiteEvent = handler
}

// SetConnectHandler 设置连接处理器
func (m *Manager) SetConnectHandler(handler func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.client.OnConnect = handler
}

// SetDisconnectHandler 设置断开连接处理器
func (m *Manager) SetDisconnectHandler(handler func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.client.OnDisconnect = handler
}

// SetErrorHandler 设置错误处理器
func (m *Manager) SetErrorHandler(handler func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.client.OnError = handler
}

// SetHeartbeatHandler 设置心跳处理器
func (m *Manager) SetHeartbeatHandler(handler func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.client.OnHeartbeat = handler
}

// SendMessage 发送消息
func (m *Manager) SendMessage(event string, data interface{}) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.client == nil || !m.client.IsConnected() {
		log.Println("❌ Socket.IO client not started")
		return ErrClientNotStarted
	}

	return m.client.SendMessage(event, data)
}

// GetConfig 获取配置
func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.config
}
