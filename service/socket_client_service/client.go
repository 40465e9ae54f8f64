package socket_client_service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/zishang520/socket.io/clients/engine/v3/transports"
	socketio "github.com/zishang520/socket.io/clients/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"
)

// Config Socket.IO 客户端配置
type Config struct {
	ServerURL        string `yaml:"server_url" json:"server_url"`                   // 站点后端地址
	ExtraPushAuthKey string `yaml:"extra_push_auth_key" json:"extra_push_auth_key"` // 站点事件通道认证键
	Path             string `yaml:"path" json:"path"`                               // Socket.IO路径，默认 "/socket.io/"
	Timeout          int    `yaml:"timeout" json:"timeout"`                         // 连接超时秒数，默认10秒
}

// SocketData WebSocket generic data structure
type SocketData struct {
	M string      `json:"M"`           // method
	C interface{} `json:"C"`           // code
	D interface{} `json:"D,omitempty"` // data
}

// SiteEventMessage 站点事件消息
type SiteEventMessage struct {
	Type string         `json:"type"`
	Data *SiteEventData `json:"data"`
}

// SiteEventData 站点事件内容
type SiteEventData struct {
	EventID        string `json:"eventId"`                  // 事件唯一标识，服务端去重用
	Title          string `json:"title"`                    // 通知标题
	Body           string `json:"body"`                     // 通知内容
	Link           string `json:"link,omitempty"`           // 点击跳转地址
	Image          string `json:"image,omitempty"`          // 配图地址
	CollapseKey    string `json:"collapseKey,omitempty"`    // 折叠键
	TargetEndpoint string `json:"targetEndpoint,omitempty"` // 定向推送的订阅，空表示广播
}

// WebSocket method constants
const (
	// Heartbeat
	HEART_BEAT = "HEART_BEAT"
	PONG       = "PONG"

	// 站点事件
	WS_SERVER_NOTIFY_RESERVATION = "WS_SERVER_NOTIFY_RESERVATION" // 订座确认
	WS_SERVER_NOTIFY_PROMO       = "WS_SERVER_NOTIFY_PROMO"       // 促销广播
	WS_SERVER_NOTIFY_MENU_UPDATE = "WS_SERVER_NOTIFY_MENU_UPDATE" // 菜单更新

	// Generic response
	WS_RESPONSE_SUCCESS = "WS_RESPONSE_SUCCESS"
	WS_RESPONSE_ERROR   = "WS_RESPONSE_ERROR"
)

// WebSocket code constants
const (
	WS_CODE_HEART_BEAT      = 10
	WS_CODE_HEART_BEAT_BACK = 10
	WS_CODE_SERVER          = 0
	WS_CODE_SEND_SUCCESS    = 200
	WS_CODE_SEND_ERROR      = 400
)

// Client Socket.IO 客户端
type Client struct {
	config    *Config
	socket    *socketio.Socket
	connected bool
	mu        sync.RWMutex

	// 消息处理回调
	OnSiteEvent  func(*SiteEventMessage) // 站点事件回调
	OnHeartbeat  func()                  // 心跳回调
	OnConnect    func()
	OnDisconnect func()
	OnError      func(error)
}

// NewClient 创建新的客户端
func NewClient(config *Config) *Client {
	if config.Path == "" {
		config.Path = "/socket.io/"
	}
	if config.Timeout == 0 {
		config.Timeout = 10
	}

	return &Client{
		config: config,
	}
}

// Start 启动客户端连接
func (c *Client) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.socket != nil && c.connected {
		return nil
	}

	serverURL := c.config.ServerURL

	// 创建Socket.IO连接选项
	options := socketio.DefaultOptions()
	options.SetTransports(types.NewSet(
		transports.Polling,
		transports.WebSocket,
	))
	options.SetPath(c.config.Path)
	options.SetQuery(
		url.Values{
			"extraPushAuthKey": {c.config.ExtraPushAuthKey},
		},
	)
	options.SetTimeout(time.Duration(c.config.Timeout) * time.Second)

	// 连接到服务器
	socket, err := socketio.Connect(serverURL, options)
	if err != nil {
		log.Printf("❌ Failed to connect to Socket.IO server: %v", err)
		if c.OnError != nil {
			go c.OnError(err)
		}
		return err
	}

	c.socket = socket

	// 设置事件处理器
	c.setupEventHandlers()

	log.Printf("🚀 Socket.IO client connecting to %s", serverURL)

	return nil
}

// Stop 停止客户端
func (c *Client) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.socket != nil {
		c.socket.Disconnect()
		c.socket = nil
	}

	c.connected = false

	if c.OnDisconnect != nil {
		go c.OnDisconnect()
	}

	log.Println("📴 Socket.IO client stopped")
}

// IsConnected 检查是否已连接
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected || c.socket == nil {
		return false
	}

	// 安全地检查连接状态，防止 panic
	connected := false
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("⚠️ Panic recovered when checking socket.Connected(): %v", r)
				connected = false
			}
		}()
		connected = c.socket.Connected()
	}()

	return connected
}

// setupEventHandlers 设置事件处理器
func (c *Client) setupEventHandlers() {
	if c.socket == nil {
		return
	}

	// 连接成功事件
	c.socket.On("connect", func(data ...interface{}) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("⚠️ Panic recovered in connect handler: %v", r)
			}
		}()

		c.mu.Lock()
		c.connected = true
		c.mu.Unlock()

		log.Printf("✅ Socket.IO connected successfully")

		if c.OnConnect != nil {
			go c.OnConnect()
		}

		// 启动心跳
		go c.startHeartbeat()
	})

	// 断开连接事件
	c.socket.On("disconnect", func(data ...interface{}) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("⚠️ Panic recovered in disconnect handler: %v", r)
			}
		}()

		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()

		log.Printf("❌ Socket.IO disconnected")

		if c.OnDisconnect != nil {
			go c.OnDisconnect()
		}
	})

	// 连接错误事件
	c.socket.On("connect_error", func(data ...interface{}) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("⚠️ Panic recovered in connect_error handler: %v", r)
				if c.OnError != nil {
					go c.OnError(fmt.Errorf("connect error panic recovered: %v", r))
				}
			}
		}()

		var err error
		if len(data) > 0 && data[0] != nil {
			if e, ok := data[0].(error); ok {
				err = e
			} else {
				err = fmt.Errorf("connection error: %v", data[0])
			}
		} else {
			err = errors.New("connection error: unknown error")
		}

		log.Printf("🔥 Socket.IO connect error: %v", err)

		if c.OnError != nil {
			go c.OnError(err)
		}
	})

	// 通用错误事件（捕获其他类型的错误）
	c.socket.On("error", func(data ...interface{}) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("⚠️ Panic recovered in error handler: %v", r)
				if c.OnError != nil {
					go c.OnError(fmt.Errorf("error handler panic recovered: %v", r))
				}
			}
		}()

		var err error
		if len(data) > 0 && data[0] != nil {
			if e, ok := data[0].(error); ok {
				err = e
			} else {
				err = fmt.Errorf("socket error: %v", data[0])
			}
		} else {
			err = errors.New("socket error: unknown error")
		}

		log.Printf("🔥 Socket.IO error: %v", err)

		if c.OnError != nil {
			go c.OnError(err)
		}
	})

	// 处理服务端的WebSocket消息格式
	c.socket.On("message", func(data ...interface{}) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("⚠️ Panic recovered in message handler: %v", r)
			}
		}()

		c.handleSocketData(data)
	})
}

// handleSocketData 处理服务端的SocketData格式消息
func (c *Client) handleSocketData(data []interface{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Panic recovered in handleSocketData: %v", r)
		}
	}()

	if len(data) == 0 {
		return
	}

	// 尝试解析为SocketData格式
	var socketData *SocketData

	// 如果是字符串，直接解析
	if msgStr, ok := data[0].(string); ok {
		socketData = &SocketData{}
		err := json.Unmarshal([]byte(msgStr), socketData)
		if err != nil {
			log.Printf("⚠️ Failed to parse SocketData from string: %v", err)
			return
		}
	} else if msgMap, ok := data[0].(map[string]interface{}); ok {
		// 如果是map，转换为SocketData
		socketData = &SocketData{}
		if m, ok := msgMap["M"].(string); ok {
			socketData.M = m
		}
		if code, ok := msgMap["C"]; ok {
			socketData.C = code
		}
		if d, ok := msgMap["D"]; ok {
			socketData.D = d
		}
	} else {
		log.Printf("⚠️ Unknown SocketData format: %v", data[0])
		return
	}

	log.Printf("📡 Received SocketData: M=%s, C=%v", socketData.M, socketData.C)

	// 根据方法类型处理消息
	switch strings.ToUpper(socketData.M) {
	case HEART_BEAT, PONG:
		c.handleHeartbeatMessage(socketData)
	case WS_SERVER_NOTIFY_RESERVATION:
		c.handleSiteEvent(socketData, "reservation")
	case WS_SERVER_NOTIFY_PROMO:
		c.handleSiteEvent(socketData, "promo")
	case WS_SERVER_NOTIFY_MENU_UPDATE:
		c.handleSiteEvent(socketData, "menu_update")
	default:
		log.Printf("📨 未知方法: %s, 数据: %v", socketData.M, socketData.D)
	}
}

// handleHeartbeatMessage 处理心跳消息
func (c *Client) handleHeartbeatMessage(socketData *SocketData) {
	log.Printf("💓 收到服务端心跳: M=%s, C=%v, D=%v", socketData.M, socketData.C, socketData.D)

	if c.OnHeartbeat != nil {
		go c.OnHeartbeat()
	}
}

// handleSiteEvent 处理站点事件消息
func (c *Client) handleSiteEvent(socketData *SocketData, eventType string) {
	log.Printf("🍽️ 收到站点事件: %s", socketData.M)

	eventData, err := c.parseSiteEventData(socketData.D)
	if err != nil {
		log.Printf("⚠️ 解析站点事件失败: %v", err)
		return
	}

	if c.OnSiteEvent != nil {
		go c.OnSiteEvent(&SiteEventMessage{
			Type: eventType,
			Data: eventData,
		})
	}
}

// parseSiteEventData 解析 socketData.D 为 SiteEventData
func (c *Client) parseSiteEventData(data interface{}) (*SiteEventData, error) {
	if data == nil {
		return nil, errors.New("事件数据为空")
	}

	// 如果是map格式，重新序列化后解析
	if dataMap, ok := data.(map[string]interface{}); ok {
		raw, err := json.Marshal(dataMap)
		if err != nil {
			return nil, fmt.Errorf("序列化事件数据失败: %w", err)
		}
		event := &SiteEventData{}
		if err := json.Unmarshal(raw, event); err != nil {
			return nil, fmt.Errorf("解析事件数据失败: %w", err)
		}
		return event, nil
	}

	// 如果是字符串，直接JSON解析
	if dataStr, ok := data.(string); ok {
		event := &SiteEventData{}
		if err := json.Unmarshal([]byte(dataStr), event); err != nil {
			return nil, fmt.Errorf("解析事件数据失败: %w", err)
		}
		return event, nil
	}

	return nil, fmt.Errorf("不支持的事件数据格式: %T", data)
}

// sendSocketData 发送SocketData格式消息
func (c *Client) sendSocketData(socketData *SocketData) error {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Panic recovered in sendSocketData: %v", r)
		}
	}()

	c.mu.RLock()
	socket := c.socket
	c.mu.RUnlock()

	if socket == nil || !c.IsConnected() {
		return errors.New("client not connected")
	}

	socket.Emit("message", socketData)
	return nil
}

// startHeartbeat 启动心跳
func (c *Client) startHeartbeat() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Panic recovered in startHeartbeat: %v", r)
		}
	}()

	ticker := time.NewTicker(5 * time.Second) // 每5秒发送心跳
	defer ticker.Stop()

	for range ticker.C {
		// 使用 recover 保护每次心跳发送
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("⚠️ Panic recovered in heartbeat tick: %v", r)
				}
			}()

			if c.IsConnected() {
				c.sendHeartbeat()
			} else {
				return // 连接断开，退出心跳
			}
		}()
	}
}

// sendHeartbeat 发送心跳
func (c *Client) sendHeartbeat() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Panic recovered in sendHeartbeat: %v", r)
		}
	}()

	c.mu.RLock()
	socket := c.socket
	c.mu.RUnlock()

	if socket == nil || !c.IsConnected() {
		return
	}

	heartbeatData := &SocketData{
		M: PONG,
		C: WS_CODE_HEART_BEAT,
	}

	c.sendSocketData(heartbeatData)
}

// SendMessage 发送自定义消息
func (c *Client) SendMessage(event string, data interface{}) error {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Panic recovered in SendMessage: %v", r)
		}
	}()

	c.mu.RLock()
	socket := c.socket
	c.mu.RUnlock()

	if socket == nil || !c.IsConnected() {
		log.Printf("❌ Client not connected")
		return errors.New("client not connected")
	}

	socket.Emit(event, data)
	log.Printf("📤 Sent event: %s", event)

	return nil
}
