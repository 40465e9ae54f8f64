package controller

import (
	"fmt"
	"net/http"
	"time"
	"wolf-push-service/conf"
	"wolf-push-service/controller/auth"
	"wolf-push-service/middleware"
	"wolf-push-service/pkg/metrics"

	_ "wolf-push-service/docs" // 导入生成的 swagger 文档

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func Run() {
	if err := middleware.InitClient(); err != nil {
		fmt.Printf("redis connect failed, ip rate recording disabled: %v\n", err)
	} else {
		fmt.Println("Redis connect success for ip rate.")
	}

	router := gin.Default()
	router.Use(Cors())
	router.Use(Logger())
	router.Use(middleware.ResponseTime())

	limiter := middleware.NewIPRateLimiter(100*time.Millisecond, 200)
	router.Use(middleware.IPRateLimitMiddleware(limiter))

	// Swagger 文档路由
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus 指标
	router.GET("/metrics", metrics.Handler())

	v1 := router.Group("/v1")
	{
		pushGroup := v1.Group("/push")
		{
			pushGroup.POST("/subscribe", auth.APIKeyMiddleware(), Subscribe)
			pushGroup.POST("/unsubscribe", auth.APIKeyMiddleware(), Unsubscribe)
			pushGroup.GET("/get_vapid_key", GetVapidKey)
			pushGroup.GET("/worker_status", WorkerStatus)

			// 管理端接口需要鉴权
			pushGroup.GET("/get_subscriptions_list", auth.APIKeyMiddleware(), GetSubscriptionsList)
			pushGroup.POST("/send", auth.APIKeyMiddleware(), auth.AuthSignMiddleware(), Send)
		}
	}

	_ = router.Run(fmt.Sprintf("0.0.0.0:%s", conf.Port))
}

func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Header("Access-Control-Allow-Headers", "Content-Type,AccessToken,X-CSRF-Token, Authorization,X-API-KEY,X-Signature,X-Public-Key")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Set("content-type", "application/json")
		if method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
		}
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(context *gin.Context) {
		context.Next()
	}
}

func Handle(r *gin.Engine, httpMethods []string, relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes {
	var routes gin.IRoutes
	for _, httpMethod := range httpMethods {
		routes = r.Handle(httpMethod, relativePath, handlers...)
	}
	return routes
}
