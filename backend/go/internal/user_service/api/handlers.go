package api

import (
	"Abridge_1.0/backend/go/internal/user_service/service"
	"Abridge_1.0/backend/go/pkg/apierror"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// 对客户端可见的账户错误。
var (
	errInvalidInput       = apierror.Validation("invalid_input", "Invalid input")
	errUsernameTaken      = apierror.Validation("username_taken", "Username already exists", "Choose a different username")
	errEmailTaken         = apierror.Validation("email_taken", "Email already registered", "Log in with the existing account")
	errInvalidCredentials = apierror.Unauthorized("invalid_credentials", "No active account found with the given credentials")
	errTokenNotValid      = apierror.Unauthorized("token_not_valid", "Token is invalid or expired")
	errNotAuthenticated   = apierror.Unauthorized("not_authenticated", "Authentication credentials were not provided")
	errAccountNotFound    = apierror.New(apierror.KindValidation, http.StatusNotFound, "not_found", "Account not found")
)

// Handler 封装了所有账户相关 endpoint 的处理函数。
type Handler struct {
	service *service.Service
}

// NewHandler 创建一个新的 Handler 实例。
func NewHandler(s *service.Service) *Handler {
	return &Handler{service: s}
}

// RegisterRequest 定义了注册请求的 JSON 结构。
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

// Register 处理注册请求。
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, errInvalidInput.Wrap(err))
		return
	}

	user, err := h.service.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		apierror.Respond(c, toAPIError(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "username": user.Username})
}

// LoginRequest 定义了登录请求的 JSON 结构。
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理登录请求，返回 access/refresh 令牌对。
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, errInvalidInput.Wrap(err))
		return
	}

	pair, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		apierror.Respond(c, toAPIError(err))
		return
	}
	c.JSON(http.StatusOK, pair)
}

// RefreshRequest 定义了刷新令牌请求的 JSON 结构。
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// Refresh 用 refresh 令牌换取新的 access 令牌。
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, errInvalidInput.Wrap(err))
		return
	}

	access, err := h.service.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		apierror.Respond(c, toAPIError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

// DeleteAccount 删除当前用户及其全部摘要记录。
func (h *Handler) DeleteAccount(c *gin.Context) {
	userID, ok := UserID(c)
	if !ok {
		apierror.Respond(c, errNotAuthenticated)
		return
	}
	if err := h.service.DeleteAccount(c.Request.Context(), userID); err != nil {
		apierror.Respond(c, toAPIError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// toAPIError 将账户服务的错误映射为对外错误。
func toAPIError(err error) error {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		return apierror.Validation("invalid_input", vErr.Error()).Wrap(err)
	case errors.Is(err, service.ErrUsernameTaken):
		return errUsernameTaken.Wrap(err)
	case errors.Is(err, service.ErrEmailTaken):
		return errEmailTaken.Wrap(err)
	case errors.Is(err, service.ErrInvalidCredentials):
		return errInvalidCredentials.Wrap(err)
	case errors.Is(err, service.ErrInvalidToken):
		return errTokenNotValid.Wrap(err)
	case errors.Is(err, service.ErrUserNotFound):
		return errAccountNotFound.Wrap(err)
	default:
		return err
	}
}

// RegisterRoutes 挂载账户相关路由。auth 是保护需要登录的路由的中间件。
func RegisterRoutes(r gin.IRouter, h *Handler, auth gin.HandlerFunc) {
	r.POST("/register/", h.Register)
	r.POST("/login/", h.Login)
	r.POST("/token/refresh/", h.Refresh)
	r.DELETE("/account/", auth, h.DeleteAccount)
}
