package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/moviereview/internal/model"
	"github.com/user/moviereview/internal/service"
	"github.com/user/moviereview/internal/utils"
)

const (
	ctxUserKey   = "user"
	ctxUserIDKey = "user_id"
)

// Authenticator 把 bearer 令牌解析为调用者身份
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Identity, error)
}

// RequireAuth 必须登录中间件
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			utils.Unauthorized(c, "No authentication token provided")
			c.Abort()
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			utils.Unauthorized(c, "Invalid token format")
			c.Abort()
			return
		}

		identity, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenExpired):
				utils.Unauthorized(c, "Token expired")
			case errors.Is(err, service.ErrUnauthorized):
				utils.Unauthorized(c, "Invalid or expired token")
			default:
				utils.InternalServerError(c, "")
			}
			c.Abort()
			return
		}

		// 将用户信息存入上下文
		c.Set(ctxUserKey, identity)
		c.Set(ctxUserIDKey, identity.ID)
		c.Next()
	}
}

// GetUserID 从上下文获取用户 ID（未登录返回空串）
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}

// GetIdentity 从上下文获取调用者身份（未登录返回 nil）
func GetIdentity(c *gin.Context) *model.Identity {
	if v, exists := c.Get(ctxUserKey); exists {
		if id, ok := v.(*model.Identity); ok {
			return id
		}
	}
	return nil
}
