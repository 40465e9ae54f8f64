package conf

import (
	"fmt"

	"github.com/spf13/viper"
)

var (
	Net  string = ""
	Port string = ""

	RdsDsn          string = ""
	RdsMaxOpenConns int    = 0
	RdsMaxIgleConns int    = 0

	// API Key for authentication
	APIKey = ""

	// 操作员签名公钥（/send 签名鉴权）
	OperatorPublicKey string = ""

	// Redis（IP 限流）
	RedisAddr     string = ""
	RedisPassword string = ""
	RedisDB       int    = 0

	// Dispatch Center Configuration
	DispatchCenterEnabled bool   = false
	DispatchCenterDBPath  string = ""

	// Socket Client Configuration
	SocketServerURL        string = ""
	SocketExtraPushAuthKey string = ""
	SocketPath             string = ""
	SocketTimeout          int    = 0

	// Push / Subscription Configuration
	PushVapidPublicKey      string = ""
	PushVapidPrivateKey     string = ""
	PushSubscriberEmail     string = ""
	PushRecencyDays         int    = 0 // sendToAll 只取该天数内活跃的订阅
	PushStaleDays           int    = 0 // 超过该天数不活跃的订阅被清理
	PushCleanupCron         string = ""
	PushMaxRegisterAttempts int    = 0
	PushRetryBaseDelay      string = ""

	// FCM Provider Configuration
	FcmServerKey      string = ""
	FcmEndpoint       string = ""
	FcmTimeout        string = ""
	FcmMaxRetries     int    = 0
	FcmBaseDelay      string = ""
	FcmBatchSize      int    = 0
	FcmMaxConcurrency int    = 0

	// Worker Channel Configuration
	WorkerDedupCapacity   int    = 0
	WorkerDedupClearEvery string = ""
)

func InitConfig(configPath string) {
	if configPath == "" {
		configPath = GetYaml()
	}
	// Set the file name of the configurations file
	fmt.Printf("configPath:%s\n", configPath)
	viper.SetConfigFile(configPath)
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("Fatal error config file: %s \n", err))
	}

	Net = viper.GetString("net")
	Port = viper.GetString("port")

	RdsDsn = viper.GetString("rds.dsn")
	RdsMaxOpenConns = viper.GetInt("rds.max_open_conns")
	RdsMaxIgleConns = viper.GetInt("rds.max_igle_conns")

	// 读取 API Key 配置
	APIKey = viper.GetString("api_key")
	OperatorPublicKey = viper.GetString("operator_public_key")

	// 读取 Redis 配置（IP 限流）
	RedisAddr = viper.GetString("redis.addr")
	RedisPassword = viper.GetString("redis.password")
	RedisDB = viper.GetInt("redis.db")

	// 读取调度中心配置
	DispatchCenterEnabled = viper.GetBool("dispatch_center.enabled")
	DispatchCenterDBPath = viper.GetString("dispatch_center.db_path")

	// 读取 Socket 客户端配置
	SocketServerURL = viper.GetString("socket_client.server_url")
	SocketExtraPushAuthKey = viper.GetString("socket_client.extra_push_auth_key")
	SocketPath = viper.GetString("socket_client.path")
	SocketTimeout = viper.GetInt("socket_client.timeout")

	// 读取推送/订阅配置
	PushVapidPublicKey = viper.GetString("push.vapid_public_key")
	PushVapidPrivateKey = viper.GetString("push.vapid_private_key")
	PushSubscriberEmail = viper.GetString("push.subscriber_email")
	PushRecencyDays = viper.GetInt("push.recency_days")
	PushStaleDays = viper.GetInt("push.stale_days")
	PushCleanupCron = viper.GetString("push.cleanup_cron")
	PushMaxRegisterAttempts = viper.GetInt("push.max_register_attempts")
	PushRetryBaseDelay = viper.GetString("push.retry_base_delay")

	// 读取 FCM 提供者配置
	FcmServerKey = viper.GetString("push.providers.fcm.server_key")
	FcmEndpoint = viper.GetString("push.providers.fcm.endpoint")
	FcmTimeout = viper.GetString("push.providers.fcm.timeout")
	FcmMaxRetries = viper.GetInt("push.providers.fcm.max_retries")
	FcmBaseDelay = viper.GetString("push.providers.fcm.base_delay")
	FcmBatchSize = viper.GetInt("push.providers.fcm.batch_size")
	FcmMaxConcurrency = viper.GetInt("push.providers.fcm.max_concurrency")

	// 读取 Worker 通道配置
	WorkerDedupCapacity = viper.GetInt("worker.dedup_capacity")
	WorkerDedupClearEvery = viper.GetString("worker.dedup_clear_every")
}
