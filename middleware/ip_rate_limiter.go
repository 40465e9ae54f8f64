package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
	"wolf-push-service/conf"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

var rdb *redis.Client

// InitClient 初始化 Redis 客户端（IP 限流计数用）
func InitClient() error {
	rdb = redis.NewClient(&redis.Options{
		Addr:     conf.RedisAddr,
		Password: conf.RedisPassword,
		DB:       conf.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb = nil
		return fmt.Errorf("redis 连接失败: %w", err)
	}

	return nil
}

// IPRateLimiter 按客户端 IP 的令牌桶限流器
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    time.Duration
	burst    int
}

// NewIPRateLimiter 创建限流器，every 为补充一个令牌的周期
func NewIPRateLimiter(every time.Duration, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		every:    every,
		burst:    burst,
	}
}

// GetLimiter 取得该 IP 的限流器，没有则创建
func (l *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(rate.Every(l.every), l.burst)
		l.limiters[ip] = limiter
	}

	return limiter
}

// IPRateLimitMiddleware IP 限流中间件
func IPRateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !limiter.GetLimiter(ip).Allow() {
			log.Printf("⚠️ IP %s 触发限流", ip)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "too many requests",
			})
			return
		}

		// Redis 侧记录请求计数，客户端未初始化时跳过
		if rdb != nil {
			go recordRequest(ip)
		}

		c.Next()
	}
}

// recordRequest 按天累计各 IP 的请求数
func recordRequest(ip string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	key := fmt.Sprintf("ip_rate:%s:%s", time.Now().Format("20060102"), ip)
	if err := rdb.Incr(ctx, key).Err(); err != nil {
		return
	}
	rdb.Expire(ctx, key, 48*time.Hour)
}

// ResponseTime 记录每个请求的处理耗时
func ResponseTime() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("⏱️ %s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
