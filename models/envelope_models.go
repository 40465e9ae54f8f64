package models

// Service Worker 通道消息类型常量
// 页面 → worker 单向信封，type 字段必填
const (
	EnvelopeConfigFirebase      = "CONFIG_FIREBASE"      // 下发消息凭据，worker 存储并尝试立即初始化
	EnvelopeElfsightDomains     = "ELFSIGHT_DOMAINS"     // 合并进缓存旁路白名单
	EnvelopeSkipWaiting         = "SKIP_WAITING"         // 强制立即激活
	EnvelopePing                = "PING"                 // 存活探测，worker 回复 PONG
	EnvelopePong                = "PONG"                 // PING 的应答
	EnvelopeCacheURLs           = "CACHE_URLS"           // 尽力缓存指定 URL 列表
	EnvelopeClearCache          = "CLEAR_CACHE"          // 删除指定缓存
	EnvelopeCheckForUpdates     = "CHECK_FOR_UPDATES"    // 触发注册更新检查
	EnvelopeCheckInitialization = "CHECK_INITIALIZATION" // worker 回复状态对象
)

// WorkerEnvelope Service Worker 通道信封
type WorkerEnvelope struct {
	Type      string                 `json:"type" binding:"required"` // 消息类型
	Config    map[string]interface{} `json:"config,omitempty"`        // CONFIG_FIREBASE 凭据
	Domains   []string               `json:"domains,omitempty"`       // ELFSIGHT_DOMAINS 域名列表
	URLs      []string               `json:"urls,omitempty"`          // CACHE_URLS 列表
	CacheName string                 `json:"cacheName,omitempty"`     // CLEAR_CACHE 目标缓存名
}

// WorkerStatus CHECK_INITIALIZATION 的应答状态对象
type WorkerStatus struct {
	Activated     bool  `json:"activated"`     // worker 是否已激活
	ConfigSet     bool  `json:"configSet"`     // 消息凭据是否已下发
	MessagingInit bool  `json:"messagingInit"` // 消息子处理器是否已初始化
	QueuedCount   int   `json:"queuedCount"`   // 激活前排队的信封数
	Time          int64 `json:"time"`          // 毫秒时间戳
}

// PongReply PING 的应答
type PongReply struct {
	Type string `json:"type"` // 固定为 PONG
	Time int64  `json:"time"` // 毫秒时间戳
}
