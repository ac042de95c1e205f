// Package apierror 定义了对客户端可见的错误分类以及统一的 JSON 错误响应。
package apierror

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind 是错误的分类。
type Kind string

const (
	KindValidation        Kind = "validation_error"      // 输入不合法, 400
	KindAuth              Kind = "auth_error"            // 认证失败, 401
	KindUpstreamTransient Kind = "upstream_transient"    // 上游暂时不可用, 503/408
	KindUpstreamRejected  Kind = "upstream_rejected"     // 上游拒绝了请求 (内容过滤), 400
	KindContentQuality    Kind = "content_quality_error" // 结果未通过质量门槛, 400/422
	KindPersistence       Kind = "persistence_error"     // 持久化失败, 只记录日志
	KindInternal          Kind = "internal_error"        // 未预期的错误, 500
)

// Error 是一个带有 HTTP 状态码、错误码和建议的错误。
type Error struct {
	Kind      Kind
	Status    int
	Code      string
	Message   string
	Solutions []string
	cause     error
}

// Body 是错误响应的 JSON 结构。
type Body struct {
	Error     string   `json:"error"`
	Code      string   `json:"code"`
	Solutions []string `json:"solutions,omitempty"`
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Wrap 返回携带底层原因的副本。原因只写入日志，不会返回给客户端。
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.cause = cause
	return &cp
}

// WithMessage 返回替换了对外消息的副本。
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

// Body 返回对外的响应体。
func (e *Error) Body() Body {
	return Body{Error: e.Message, Code: e.Code, Solutions: e.Solutions}
}

// New 创建一个错误。
func New(kind Kind, status int, code, message string, solutions ...string) *Error {
	return &Error{Kind: kind, Status: status, Code: code, Message: message, Solutions: solutions}
}

// Validation 创建一个 400 的输入错误。
func Validation(code, message string, solutions ...string) *Error {
	return New(KindValidation, http.StatusBadRequest, code, message, solutions...)
}

// Unauthorized 创建一个 401 的认证错误。
func Unauthorized(code, message string) *Error {
	return New(KindAuth, http.StatusUnauthorized, code, message)
}

// ServerError 是未分类错误的统一响应。
var ServerError = New(KindInternal, http.StatusInternalServerError, "server_error", "Internal server error",
	"Try again later", "Contact support")

// From 将任意 error 转换为 *Error，未知错误一律视为内部错误。
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return ServerError.Wrap(err)
}

// Respond 写出错误响应并终止后续处理。
// 原始错误通过 c.Error 交给请求日志中间件记录。
func Respond(c *gin.Context, err error) {
	apiErr := From(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(apiErr.Status, apiErr.Body())
}
