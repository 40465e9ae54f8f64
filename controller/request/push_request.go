package request

// SubscriptionKeysReq web-push 订阅密钥
type SubscriptionKeysReq struct {
	P256dh string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

// SubscribeReq 订阅请求参数
// Endpoint 既可以是 web-push 订阅地址，也可以是平台消息令牌
type SubscribeReq struct {
	Endpoint  string               `json:"endpoint" binding:"required"`
	Keys      *SubscriptionKeysReq `json:"keys"`      // web-push 原始订阅必填，平台令牌可省略
	UserAgent string               `json:"userAgent"` // 为空时取请求头 User-Agent
}

// UnsubscribeReq 取消订阅请求参数
type UnsubscribeReq struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// GetSubscriptionsListReq 获取订阅列表请求参数（分页）
type GetSubscriptionsListReq struct {
	Page     int `json:"page" binding:"min=1"`     // 页码，从1开始
	PageSize int `json:"pageSize" binding:"min=1"` // 每页大小
}

// SendReq 发送通知请求参数
// token 与 sendToAll 二选一；title/message 在非占位令牌时必填
type SendReq struct {
	Token       string                 `json:"token"`    // 目标订阅的 endpoint/令牌
	Title       string                 `json:"title"`    // 通知标题
	Message     string                 `json:"message"`  // 通知内容
	Link        string                 `json:"link"`
	Image       string                 `json:"image"`
	CollapseKey string                 `json:"collapseKey"`
	Data        map[string]interface{} `json:"data"`
	Platform    string                 `json:"platform"`  // android / ios / web / all，默认 all
	SendToAll   bool                   `json:"sendToAll"` // true 时广播给全部近期活跃订阅
}
