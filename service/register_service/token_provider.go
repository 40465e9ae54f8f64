package register_service

import (
	"context"
	"log"

	"wolf-push-service/models"
)

// Registration 已定位到的 Service Worker 注册
type Registration struct {
	Scope  string // 注册作用域
	Script string // worker 脚本路径
	Active bool   // 是否已有激活实例
}

// TokenProvider 获取推送令牌
type TokenProvider interface {
	// GetToken 基于注册和 VAPID 公钥换取推送令牌
	GetToken(ctx context.Context, registration *Registration, vapidKey string) (string, error)
}

// SafeTokenProvider 包装任意 TokenProvider，吞掉 panic 并把失败统一映射为空令牌
// 编排器据此走重试而不是崩溃
type SafeTokenProvider struct {
	inner TokenProvider
}

// NewSafeTokenProvider 创建安全包装
func NewSafeTokenProvider(inner TokenProvider) *SafeTokenProvider {
	return &SafeTokenProvider{inner: inner}
}

// GetToken 永不 panic，失败返回空令牌
func (p *SafeTokenProvider) GetToken(ctx context.Context, registration *Registration, vapidKey string) (token string, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ 获取推送令牌时发生 panic: %v", r)
			token = ""
			err = nil
		}
	}()

	if p.inner == nil {
		return "", nil
	}

	token, innerErr := p.inner.GetToken(ctx, registration, vapidKey)
	if innerErr != nil {
		log.Printf("⚠️ 获取推送令牌失败: %v", innerErr)
		return "", nil
	}
	return token, nil
}

// InsecureContextProvider 非安全上下文的令牌提供者
// 返回固定占位令牌，下游按真实令牌对待（模拟成功）
type InsecureContextProvider struct{}

// GetToken 返回占位令牌
func (p *InsecureContextProvider) GetToken(ctx context.Context, registration *Registration, vapidKey string) (string, error) {
	log.Printf("⚠️ 非安全上下文，使用占位令牌")
	return models.PlaceholderToken, nil
}
