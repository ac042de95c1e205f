// Package httpmiddleware 提供服务共用的 gin 中间件。
package httpmiddleware

import (
	"Abridge_1.0/backend/go/internal/models"
	"Abridge_1.0/backend/go/pkg/apierror"
	"Abridge_1.0/backend/go/pkg/logger"
	"Abridge_1.0/backend/go/pkg/ratelimiter"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader 是回显给客户端的追踪 ID 响应头。
	RequestIDHeader = "X-Request-ID"
	traceIDKey      = "traceID"
	loggerKey       = "logger"
)

// ErrRateLimited 是被限流时的响应。
var ErrRateLimited = apierror.New(apierror.KindValidation, http.StatusTooManyRequests, "rate_limited",
	"Too many requests", "Wait a moment before retrying")

// RequestLogger 为每个请求生成追踪 ID，并在请求结束后输出一条访问日志。
// 带追踪 ID 的 Logger 同时放入请求的 context，供业务层通过 logger.FromContext 使用。
// 通过 c.Error 记录的错误会附带在日志中。它需要注册在 Recovery 之前。
func RequestLogger(base *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		traceID := c.GetHeader(RequestIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Header(RequestIDHeader, traceID)
		c.Set(traceIDKey, traceID)
		reqLog := base.WithTrace(traceID, "")
		c.Set(loggerKey, reqLog)
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), reqLog))

		c.Next()

		log := LoggerFrom(c).WithRequest(models.RequestInfo{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			RemoteAddr: c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			Status:     c.Writer.Status(),
			LatencyMs:  time.Since(start).Milliseconds(),
		})
		if userID, ok := c.Get("userID"); ok {
			log = log.WithField("user_id", fmt.Sprint(userID))
		}

		if last := c.Errors.Last(); last != nil {
			apiErr := apierror.From(last.Err)
			log = log.WithError(models.ErrorInfo{
				Message:    last.Err.Error(),
				Type:       string(apiErr.Kind),
				Code:       apiErr.Code,
				StatusCode: apiErr.Status,
			})
			if apiErr.Status >= http.StatusInternalServerError {
				log.Error("请求处理失败")
				return
			}
			log.Warn("请求被拒绝")
			return
		}
		log.Info("请求完成")
	}
}

// LoggerFrom 返回绑定了当前请求追踪 ID 的 Logger。
func LoggerFrom(c *gin.Context) *logger.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return logger.New("http", TraceID(c), "")
}

// TraceID 返回当前请求的追踪 ID。
func TraceID(c *gin.Context) string {
	return c.GetString(traceIDKey)
}

// RateLimit 按客户端 IP 限流，超出时返回 429。
func RateLimit(limiter ratelimiter.KeyedRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			apierror.Respond(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

// Recovery 捕获 panic，记录日志并返回 500。
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("panic: %v", recovered)
		}
		if errors.Is(err, http.ErrAbortHandler) {
			c.Abort()
			return
		}
		apierror.Respond(c, err)
	})
}
