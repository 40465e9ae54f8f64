package main

import (
	"flag"
	"fmt"
	"log"
	"time"
	"wolf-push-service/conf"
	"wolf-push-service/controller"
	"wolf-push-service/major"
	"wolf-push-service/service/dedup_service"
	dispatchcenter "wolf-push-service/service/dispatch_center"
	"wolf-push-service/service/dispatch_service"
	"wolf-push-service/service/fcm_service"
	"wolf-push-service/service/pebble_service"
	"wolf-push-service/service/socket_client_service"
	"wolf-push-service/service/subscription_service"
	"wolf-push-service/service/webpush_service"
	"wolf-push-service/service/worker_service"
)

// buildSenders 按配置组装可用的平台发送器
func buildSenders() []dispatch_service.PlatformSender {
	var senders []dispatch_service.PlatformSender

	// FCM 发送器（平台消息令牌）
	fcmConfig := &fcm_service.Config{
		ServerKey:      conf.FcmServerKey,
		Endpoint:       conf.FcmEndpoint,
		Timeout:        parseDuration(conf.FcmTimeout, 30*time.Second),
		MaxRetries:     getIntWithDefault(conf.FcmMaxRetries, 3),
		BaseDelay:      parseDuration(conf.FcmBaseDelay, 500*time.Millisecond),
		BatchSize:      getIntWithDefault(conf.FcmBatchSize, 500),
		MaxConcurrency: getIntWithDefault(conf.FcmMaxConcurrency, 4),
	}

	if fcmConfig.ServerKey != "" {
		fcmManager, err := fcm_service.NewManagerWithConfig(fcmConfig)
		if err != nil {
			log.Printf("⚠️ 初始化 FCM 推送服务失败: %v", err)
		} else {
			senders = append(senders, dispatch_service.NewFCMSender(fcmManager))
			log.Printf("✅ 已注册 FCM 发送器")
		}
	} else {
		log.Printf("📴 未配置 FCM server key，跳过 FCM 发送器")
	}

	// Web Push 发送器（原始订阅）
	webpushConfig := &webpush_service.Config{
		VAPIDPublicKey:  conf.PushVapidPublicKey,
		VAPIDPrivateKey: conf.PushVapidPrivateKey,
		Subscriber:      conf.PushSubscriberEmail,
	}

	if webpushConfig.VAPIDPublicKey != "" && webpushConfig.VAPIDPrivateKey != "" {
		webpushService, err := webpush_service.NewService(webpushConfig)
		if err != nil {
			log.Printf("⚠️ 初始化 Web Push 服务失败: %v", err)
		} else {
			senders = append(senders, dispatch_service.NewWebPushSender(webpushService))
			log.Printf("✅ 已注册 Web Push 发送器")
		}
	} else {
		log.Printf("📴 未配置 VAPID 密钥，跳过 Web Push 发送器")
	}

	return senders
}

// initDispatchCenter 初始化站点事件推送中心
func initDispatchCenter(dispatcher dispatch_service.Dispatcher) {
	if !conf.DispatchCenterEnabled {
		log.Printf("📴 推送中心未启用，跳过初始化")
		return
	}

	log.Printf("🚀 开始初始化推送中心...")

	socketConfig := &socket_client_service.Config{
		ServerURL:        conf.SocketServerURL,
		ExtraPushAuthKey: conf.SocketExtraPushAuthKey,
		Path:             conf.SocketPath,
		Timeout:          conf.SocketTimeout,
	}

	if socketConfig.Path == "" {
		socketConfig.Path = "/socket.io/"
	}
	if socketConfig.Timeout == 0 {
		socketConfig.Timeout = 10
	}

	pebbleConfig := &pebble_service.Config{
		DBPath: conf.DispatchCenterDBPath,
	}

	if pebbleConfig.DBPath == "" {
		pebbleConfig.DBPath = "./data/dispatch_center_pebble"
	}

	centerConfig := &dispatchcenter.Config{
		SocketConfig: socketConfig,
		PebbleConfig: pebbleConfig,
		EnabledTypes: []string{"reservation", "promo", "menu_update"},
	}

	center := dispatchcenter.NewDispatchCenter(centerConfig, dispatcher)

	if err := center.Initialize(); err != nil {
		log.Fatalf("❌ 初始化推送中心失败: %v", err)
	}

	go func() {
		if err := center.Run(); err != nil {
			log.Fatalf("❌ 启动推送中心失败: %v", err)
		}
	}()

	time.Sleep(2 * time.Second)

	if center.IsRunning() {
		log.Printf("✅ 推送中心已成功启动")
		log.Printf("🔗 Socket 服务器: %s", conf.SocketServerURL)
		log.Printf("🗄️ 数据库路径: %s", pebbleConfig.DBPath)
	} else {
		log.Printf("⚠️ 推送中心启动状态检查失败")
	}
}

// 辅助函数：解析时间间隔字符串
func parseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Printf("⚠️ 解析时间间隔失败 '%s'，使用默认值: %v", durationStr, defaultDuration)
		return defaultDuration
	}
	return duration
}

// 辅助函数：获取整数配置值，提供默认值
func getIntWithDefault(value, defaultValue int) int {
	if value == 0 {
		return defaultValue
	}
	return value
}

// Package main
// @title Wolf Push Service API
// @version 1.0
// @description 餐厅站点浏览器推送订阅与通知分发服务
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-KEY
func main() {
	var env string
	flag.StringVar(&env, "env", "mainnet", "env config: testnet, mainnet")
	flag.Parse()

	switch env {
	case "mainnet":
		conf.SystemEnvironmentEnum = conf.MainnetEnvironmentEnum
	case "testnet":
		conf.SystemEnvironmentEnum = conf.TestnetEnvironmentEnum
	default:
		conf.SystemEnvironmentEnum = conf.ExampleEnvironmentEnum
	}

	conf.InitConfig("")

	fmt.Printf("run wolf-push-service, env: %s\n", env)

	major.InitSqlConfig()

	store := subscription_service.NewGormSubscriptionStore(major.GetSqlDB())

	senders := buildSenders()
	dispatcher := dispatch_service.NewDispatcher(store, conf.PushRecencyDays, conf.PushStaleDays, senders...)

	// 过期订阅定时清理
	cleaner := subscription_service.NewCleaner(store, conf.PushStaleDays, conf.PushCleanupCron)
	if err := cleaner.Start(); err != nil {
		log.Printf("⚠️ 启动订阅清理任务失败: %v", err)
	}

	// 进程内推送通道（去重窗口 + 展示器）
	window := dedup_service.NewWindow(conf.WorkerDedupCapacity, parseDuration(conf.WorkerDedupClearEvery, time.Hour))
	worker := worker_service.NewWorker(worker_service.Options{
		Window:    window,
		Presenter: worker_service.NewPresenter(nil),
	})

	initDispatchCenter(dispatcher)

	controller.Setup(store, dispatcher, conf.PushVapidPublicKey, worker)
	controller.SetupRegistrationParams(
		getIntWithDefault(conf.PushMaxRegisterAttempts, 10),
		parseDuration(conf.PushRetryBaseDelay, 500*time.Millisecond),
	)
	controller.Run()
}
