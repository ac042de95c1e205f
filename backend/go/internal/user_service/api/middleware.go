package api

import (
	"Abridge_1.0/backend/go/internal/user_service/service"
	"Abridge_1.0/backend/go/pkg/apierror"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// AuthMiddleware 创建一个 Gin 中间件，用于验证 Bearer access 令牌。
// 验证通过后用户 ID 存入上下文，可用 UserID 读取。
func AuthMiddleware(tokens *service.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apierror.Respond(c, errNotAuthenticated)
			return
		}

		// 我们期望的格式是 "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			apierror.Respond(c, errNotAuthenticated.WithMessage("Authorization header must be 'Bearer <token>'"))
			return
		}

		userID, err := tokens.Parse(parts[1], service.TokenAccess)
		if err != nil {
			apierror.Respond(c, errTokenNotValid.Wrap(err))
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID 返回认证中间件写入的用户 ID。
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
