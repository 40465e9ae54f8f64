package auth

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"wolf-push-service/conf"
	"wolf-push-service/controller/respond"

	"github.com/gin-gonic/gin"
)

// APIKeyMiddleware X-API-KEY 鉴权
// 未配置 api_key 时跳过校验（本地开发）
func APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if conf.APIKey == "" {
			c.Next()
			return
		}

		apiKey := c.GetHeader("X-API-KEY")
		if apiKey == "" || apiKey != conf.APIKey {
			log.Printf("⚠️ API Key 校验失败: %s %s", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				respond.RespErr(respond.NewAuthError("无效的 API Key"), 0, respond.HttpsCodeAuth))
			return
		}

		c.Next()
	}
}

// AuthSignMiddleware 操作员签名鉴权
// 请求方用 secp256k1 私钥对请求体签名，携带 X-Signature 与 X-Public-Key 头。
// 公钥必须与配置的操作员公钥一致，签名必须对请求体原文有效。
func AuthSignMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if conf.OperatorPublicKey == "" {
			c.Next()
			return
		}

		signature := c.GetHeader("X-Signature")
		publicKey := c.GetHeader("X-Public-Key")

		if signature == "" || publicKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				respond.RespErr(respond.NewAuthError("缺少签名头"), 0, respond.HttpsCodeAuth))
			return
		}

		if publicKey != conf.OperatorPublicKey {
			log.Printf("⚠️ 非操作员公钥: %s", publicKey)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				respond.RespErr(respond.NewAuthError("公钥未授权"), 0, respond.HttpsCodeAuth))
			return
		}

		// 读取请求体用于验签，读完后重置供后续 handler 绑定
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				respond.RespErr(respond.NewAuthError("读取请求体失败"), 0, respond.HttpsCodeAuth))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		ok, err := verifySign(string(body), signature, publicKey)
		if err != nil || !ok {
			log.Printf("⚠️ 签名校验失败: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				respond.RespErr(respond.NewAuthError("签名校验失败"), 0, respond.HttpsCodeAuth))
			return
		}

		c.Next()
	}
}
