package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"
	"wolf-push-service/controller/request"
	"wolf-push-service/controller/respond"
	"wolf-push-service/models"
	"wolf-push-service/pkg/metrics"
	"wolf-push-service/service/dedup_service"
	"wolf-push-service/service/dispatch_service"
	"wolf-push-service/service/subscription_service"
	"wolf-push-service/service/worker_service"
	"wolf-push-service/tool"

	"github.com/gin-gonic/gin"
)

// 由 main 在启动时注入
var (
	subscriptionStore subscription_service.SubscriptionStore
	dispatcher        dispatch_service.Dispatcher
	vapidPublicKey    string
	pushWorker        *worker_service.Worker

	// 页面端注册编排参数，随 VAPID 公钥一起下发
	maxRegisterAttempts int
	retryBaseDelay      time.Duration
)

// Setup 注入控制器依赖
func Setup(store subscription_service.SubscriptionStore, disp dispatch_service.Dispatcher, vapidKey string, worker *worker_service.Worker) {
	subscriptionStore = store
	dispatcher = disp
	vapidPublicKey = vapidKey
	pushWorker = worker
}

// SetupRegistrationParams 注入注册编排参数
func SetupRegistrationParams(maxAttempts int, baseDelay time.Duration) {
	maxRegisterAttempts = maxAttempts
	retryBaseDelay = baseDelay
}

// Subscribe godoc
// @Summary 注册推送订阅
// @Description 按 endpoint 幂等注册订阅。endpoint 可以是 web-push 订阅地址或平台消息令牌；重复注册同一 endpoint 只会刷新密钥与活跃时间，不会产生重复记录。
// @Tags Push API
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body request.SubscribeReq true "请求参数（endpoint、keys、userAgent）"
// @Success 200 {object} respond.Response "成功响应"
// @Failure 400 {object} respond.Response "参数错误"
// @Failure 500 {object} respond.Response "服务器内部错误"
// @Router /v1/push/subscribe [post]
func Subscribe(c *gin.Context) {
	var (
		t            int64 = tool.MakeTimestamp()
		requestModel *request.SubscribeReq
	)

	if c.ShouldBindJSON(&requestModel) == nil {
		sub := &models.NotificationSubscription{
			Endpoint:   requestModel.Endpoint,
			UserAgent:  requestModel.UserAgent,
			LastActive: time.Now(),
		}

		// 平台消息令牌没有 web-push 密钥，写入哨兵值
		if requestModel.Keys != nil {
			sub.P256dh = requestModel.Keys.P256dh
			sub.Auth = requestModel.Keys.Auth
		} else {
			sub.P256dh = models.WebPushKeySentinel
			sub.Auth = models.WebPushKeySentinel
		}

		if sub.UserAgent == "" {
			sub.UserAgent = c.GetHeader("User-Agent")
		}

		if err := subscriptionStore.Upsert(c.Request.Context(), sub); err != nil {
			c.JSONP(http.StatusOK, respond.RespErr(err, tool.MakeTimestamp()-t, respond.HttpsCodeError))
			return
		}

		metrics.RecordSubscription("subscribe")

		responseData := map[string]interface{}{
			"success":  true,
			"message":  "订阅注册成功",
			"platform": sub.Platform(),
		}

		c.JSONP(http.StatusOK, respond.RespSuccess(responseData, tool.MakeTimestamp()-t))
		return
	}

	c.JSONP(http.StatusInternalServerError, respond.RespErr(errors.New("参数错误"), tool.MakeTimestamp()-t, respond.HttpsCodeError))
}

// Unsubscribe godoc
// @Summary 取消推送订阅
// @Description 按 endpoint 删除订阅记录
// @Tags Push API
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body request.UnsubscribeReq true "请求参数（endpoint）"
// @Success 200 {object} respond.Response "成功响应"
// @Failure 400 {object} respond.Response "参数错误"
// @Failure 500 {object} respond.Response "服务器内部错误"
// @Router /v1/push/unsubscribe [post]
func Unsubscribe(c *gin.Context) {
	var (
		t            int64 = tool.MakeTimestamp()
		requestModel *request.UnsubscribeReq
	)

	if c.ShouldBindJSON(&requestModel) == nil {
		if err := subscriptionStore.Remove(c.Request.Context(), requestModel.Endpoint); err != nil {
			c.JSONP(http.StatusOK, respond.RespErr(err, tool.MakeTimestamp()-t, respond.HttpsCodeError))
			return
		}

		metrics.RecordSubscription("unsubscribe")

		responseData := map[string]interface{}{
			"success": true,
			"message": "订阅已移除",
		}

		c.JSONP(http.StatusOK, respond.RespSuccess(responseData, tool.MakeTimestamp()-t))
		return
	}

	c.JSONP(http.StatusInternalServerError, respond.RespErr(errors.New("参数错误"), tool.MakeTimestamp()-t, respond.HttpsCodeError))
}

// GetSubscriptionsList godoc
// @Summary 获取订阅列表（分页）
// @Description 分页获取全部推送订阅
// @Tags Push API
// @Produce json
// @Param page query int false "页码，默认为1" default(1)
// @Param pageSize query int false "每页大小，默认为10" default(10)
// @Success 200 {object} respond.Response{data=subscription_service.PaginatedSubscriptions} "成功响应"
// @Failure 400 {object} respond.Response "参数错误"
// @Failure 500 {object} respond.Response "服务器内部错误"
// @Router /v1/push/get_subscriptions_list [get]
func GetSubscriptionsList(c *gin.Context) {
	var t int64 = tool.MakeTimestamp()

	page := 1
	pageSize := 10

	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if pageSizeStr := c.Query("pageSize"); pageSizeStr != "" {
		if ps, err := strconv.Atoi(pageSizeStr); err == nil && ps > 0 {
			pageSize = ps
		}
	}

	result, err := subscriptionStore.List(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSONP(http.StatusOK, respond.RespErr(err, tool.MakeTimestamp()-t, respond.HttpsCodeError))
		return
	}

	c.JSONP(http.StatusOK, respond.RespSuccess(result, tool.MakeTimestamp()-t))
}

// GetVapidKey godoc
// @Summary 获取 VAPID 公钥与注册参数
// @Description 前端订阅 web-push 时需要的应用服务器公钥，附带注册编排的重试参数
// @Tags Push API
// @Produce json
// @Success 200 {object} respond.Response "成功响应"
// @Failure 500 {object} respond.Response "服务器内部错误"
// @Router /v1/push/get_vapid_key [get]
func GetVapidKey(c *gin.Context) {
	var t int64 = tool.MakeTimestamp()

	if vapidPublicKey == "" {
		c.JSONP(http.StatusOK, respond.RespErr(errors.New("未配置 VAPID 公钥"), tool.MakeTimestamp()-t, respond.HttpsCodeError))
		return
	}

	responseData := map[string]interface{}{
		"publicKey":           vapidPublicKey,
		"maxRegisterAttempts": maxRegisterAttempts,
		"retryBaseDelayMs":    retryBaseDelay.Milliseconds(),
	}

	c.JSONP(http.StatusOK, respond.RespSuccess(responseData, tool.MakeTimestamp()-t))
}

// Send godoc
// @Summary 发送推送通知
// @Description token 非空时定向推送单个订阅（依次尝试各平台载荷变体），sendToAll 为 true 时广播给全部近期活跃订阅。开发占位令牌直接返回模拟成功。
// @Tags Push API
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body request.SendReq true "请求参数（token、title、message、link、platform、sendToAll）"
// @Success 200 {object} respond.Response{data=models.DeliveryResult} "成功响应"
// @Failure 400 {object} respond.Response "参数错误"
// @Failure 401 {object} respond.Response "认证失败"
// @Failure 500 {object} respond.Response "服务器内部错误"
// @Router /v1/push/send [post]
func Send(c *gin.Context) {
	var (
		t            int64 = tool.MakeTimestamp()
		requestModel *request.SendReq
	)

	if c.ShouldBindJSON(&requestModel) == nil {
		if requestModel.Token == "" && !requestModel.SendToAll {
			c.JSONP(http.StatusOK, respond.RespErr(errors.New("token 与 sendToAll 至少指定一个"), tool.MakeTimestamp()-t, respond.HttpsCodeError))
			return
		}

		// 占位令牌不要求标题和内容
		if requestModel.Token != models.PlaceholderToken && (requestModel.Title == "" || requestModel.Message == "") {
			c.JSONP(http.StatusOK, respond.RespErr(errors.New("title 和 message 不能为空"), tool.MakeTimestamp()-t, respond.HttpsCodeError))
			return
		}

		message := &models.NotificationMessage{
			ID:          dedup_service.DeriveMessageID("", requestModel.CollapseKey, "api"),
			Title:       requestModel.Title,
			Body:        requestModel.Message,
			Link:        requestModel.Link,
			Image:       requestModel.Image,
			CollapseKey: requestModel.CollapseKey,
			Data:        requestModel.Data,
		}

		platform := requestModel.Platform
		if platform == "" {
			platform = models.PlatformAll
		}

		var (
			result *models.DeliveryResult
			err    error
		)
		if requestModel.SendToAll {
			result, err = dispatcher.SendToAll(c.Request.Context(), message, platform)
		} else {
			result, err = dispatcher.SendToEndpoint(c.Request.Context(), requestModel.Token, message, platform)
		}

		if err != nil {
			c.JSONP(http.StatusOK, respond.RespErr(err, tool.MakeTimestamp()-t, respond.HttpsCodeError))
			return
		}

		c.JSONP(http.StatusOK, respond.RespSuccess(result, tool.MakeTimestamp()-t))
		return
	}

	c.JSONP(http.StatusInternalServerError, respond.RespErr(errors.New("参数错误"), tool.MakeTimestamp()-t, respond.HttpsCodeError))
}

// WorkerStatus godoc
// @Summary 获取推送通道状态
// @Description 返回进程内推送通道的激活与初始化状态
// @Tags Push API
// @Produce json
// @Success 200 {object} respond.Response{data=models.WorkerStatus} "成功响应"
// @Failure 500 {object} respond.Response "服务器内部错误"
// @Router /v1/push/worker_status [get]
func WorkerStatus(c *gin.Context) {
	var t int64 = tool.MakeTimestamp()

	if pushWorker == nil {
		c.JSONP(http.StatusOK, respond.RespErr(errors.New("推送通道未初始化"), tool.MakeTimestamp()-t, respond.HttpsCodeError))
		return
	}

	c.JSONP(http.StatusOK, respond.RespSuccess(pushWorker.Status(), tool.MakeTimestamp()-t))
}
