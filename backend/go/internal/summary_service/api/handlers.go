// Package api 提供摘要与网页抓取的 HTTP 接口。
package api

import (
	"Abridge_1.0/backend/go/internal/models"
	"Abridge_1.0/backend/go/internal/summary_service/service"
	userapi "Abridge_1.0/backend/go/internal/user_service/api"
	"Abridge_1.0/backend/go/internal/webcontent"
	"Abridge_1.0/backend/go/pkg/apierror"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// 对客户端可见的摘要错误。
var (
	errInvalidInput       = apierror.Validation("invalid_input", "Invalid input")
	errNotAuthenticated   = apierror.Unauthorized("not_authenticated", "Authentication credentials were not provided")
	errContentTooShort    = apierror.Validation("content_too_short", "Content too short", "Provide more text to summarize")
	errContentTooLong     = apierror.Validation("content_too_long", "Content too long", "Break content into smaller sections")
	errInvalidSummaryType = apierror.Validation("invalid_summary_type", "Invalid summary type. Must be one of: short, medium, long")
	errContentViolation   = apierror.New(apierror.KindUpstreamRejected, http.StatusBadRequest,
		"content_violation", "Content violation detected in generation",
		"Try different content", "Reformulate your text", "Contact support if this persists")
	errEmptySummary = apierror.New(apierror.KindContentQuality, http.StatusUnprocessableEntity,
		"empty_summary", "Failed to generate meaningful summary",
		"Try different content", "Use a different summary length", "Break content into smaller sections")
	errServiceUnavailable = apierror.New(apierror.KindUpstreamTransient, http.StatusServiceUnavailable,
		"service_unavailable", "AI service unavailable", "Try again later")
)

// 对客户端可见的抓取错误。
var (
	errMissingURL     = apierror.Validation("missing_url", "URL is required")
	errInvalidURL     = apierror.Validation("invalid_url", "Invalid URL")
	errNonHTMLContent = apierror.Validation("non_html_content", "URL does not return HTML content")
	errSSL            = apierror.Validation("ssl_error", "SSL verification failed", "Try a different URL")
	errTimeout        = apierror.New(apierror.KindUpstreamTransient, http.StatusRequestTimeout,
		"timeout", "Website took too long to respond", "Try again later", "Check the URL")
	errRedirectLoop = apierror.Validation("redirect_loop", "Too many redirects", "Try a different URL")
	errForbidden    = apierror.Validation("forbidden", "Access forbidden (403)",
		"Try a different URL", "The website may block automated requests")
	errFetchFailed = apierror.Validation("fetch_failed", "Could not fetch URL content",
		"Try a different URL", "Check your connection")
	errNoContent = apierror.New(apierror.KindContentQuality, http.StatusBadRequest,
		"no_content", "No readable content found on page",
		"Try a different URL", "The page may require JavaScript")
	errParse = apierror.New(apierror.KindInternal, http.StatusInternalServerError,
		"parse_error", "Failed to parse page content", "Try a different URL")
)

// Handler 封装了摘要相关 endpoint 的处理函数。
type Handler struct {
	service *service.Service
}

// NewHandler 创建一个新的 Handler 实例。
func NewHandler(s *service.Service) *Handler {
	return &Handler{service: s}
}

// SummarizeRequest 定义了摘要请求的 JSON 结构。
type SummarizeRequest struct {
	Text        string `json:"text"`
	SummaryType string `json:"summary_type"`
	SourceURL   string `json:"source_url"`
}

// SummarizeResponse 定义了摘要成功时的响应。
type SummarizeResponse struct {
	Summary     string             `json:"summary"`
	Characters  int                `json:"characters"`
	SummaryType models.SummaryType `json:"summary_type"`
	Success     bool               `json:"success"`
}

// Summarize 处理摘要请求。
func (h *Handler) Summarize(c *gin.Context) {
	userID, ok := userapi.UserID(c)
	if !ok {
		apierror.Respond(c, errNotAuthenticated)
		return
	}
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, errInvalidInput.Wrap(err))
		return
	}

	res, err := h.service.Summarize(c.Request.Context(), userID, service.SummarizeInput{
		Text:        req.Text,
		SummaryType: req.SummaryType,
		SourceURL:   req.SourceURL,
	})
	if err != nil {
		apierror.Respond(c, summarizeError(err))
		return
	}

	c.JSON(http.StatusOK, SummarizeResponse{
		Summary:     res.Summary,
		Characters:  res.Characters,
		SummaryType: res.SummaryType,
		Success:     true,
	})
}

// FetchRequest 定义了抓取请求的 JSON 结构。
type FetchRequest struct {
	URL string `json:"url"`
}

// FetchResponse 定义了抓取成功时的响应。
type FetchResponse struct {
	Content   string `json:"content"`
	SourceURL string `json:"source_url"`
	Success   bool   `json:"success"`
}

// FetchURLContent 抓取网页并返回正文。
func (h *Handler) FetchURLContent(c *gin.Context) {
	var req FetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, errInvalidInput.Wrap(err))
		return
	}

	res, err := h.service.FetchURLContent(c.Request.Context(), req.URL)
	if err != nil {
		apierror.Respond(c, fetchError(err))
		return
	}
	c.JSON(http.StatusOK, FetchResponse{Content: res.Content, SourceURL: res.SourceURL, Success: true})
}

// ListResponse 是一页摘要历史。
type ListResponse struct {
	Results []models.SummaryRecord `json:"results"`
	Count   int64                  `json:"count"`
	Page    int                    `json:"page"`
	Size    int                    `json:"size"`
}

// ListSummaries 返回当前用户的摘要历史。
func (h *Handler) ListSummaries(c *gin.Context) {
	userID, ok := userapi.UserID(c)
	if !ok {
		apierror.Respond(c, errNotAuthenticated)
		return
	}
	page, err := queryInt(c, "page", 1)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	size, err := queryInt(c, "size", service.DefaultPageSize)
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	res, err := h.service.ListSummaries(c.Request.Context(), userID, page, size)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	if res.Items == nil {
		res.Items = []models.SummaryRecord{}
	}
	c.JSON(http.StatusOK, ListResponse{Results: res.Items, Count: res.Total, Page: res.Page, Size: res.Size})
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errInvalidInput.WithMessage(fmt.Sprintf("%s must be a positive integer", name))
	}
	return n, nil
}

// summarizeError 将摘要流程的错误映射为对外错误。
func summarizeError(err error) error {
	switch {
	case errors.Is(err, service.ErrContentTooShort):
		return errContentTooShort.WithMessage(capitalize(err.Error())).Wrap(err)
	case errors.Is(err, service.ErrContentTooLong):
		return errContentTooLong.WithMessage(capitalize(err.Error())).Wrap(err)
	case errors.Is(err, models.ErrInvalidSummaryType):
		return errInvalidSummaryType.Wrap(err)
	case errors.Is(err, service.ErrContentRejected):
		return errContentViolation.Wrap(err)
	case errors.Is(err, service.ErrEmptySummary):
		return errEmptySummary.Wrap(err)
	case errors.Is(err, service.ErrProviderFailure), errors.Is(err, service.ErrNotConfigured):
		return errServiceUnavailable.Wrap(err)
	default:
		return err
	}
}

// fetchError 将抓取流程的错误映射为对外错误。
func fetchError(err error) error {
	var (
		urlErr  *webcontent.URLError
		httpErr *webcontent.HTTPError
	)
	switch {
	case errors.Is(err, service.ErrMissingURL):
		return errMissingURL.Wrap(err)
	case errors.As(err, &urlErr):
		return errInvalidURL.WithMessage(urlErr.Error()).Wrap(err)
	case errors.Is(err, webcontent.ErrNonHTMLContent):
		return errNonHTMLContent.Wrap(err)
	case errors.Is(err, webcontent.ErrSSL):
		return errSSL.Wrap(err)
	case errors.Is(err, webcontent.ErrTimeout):
		return errTimeout.Wrap(err)
	case errors.Is(err, webcontent.ErrTooManyRedirects):
		return errRedirectLoop.Wrap(err)
	case errors.As(err, &httpErr):
		if httpErr.Status == http.StatusForbidden {
			return errForbidden.Wrap(err)
		}
		return apierror.Validation(fmt.Sprintf("http_%d", httpErr.Status), httpErr.Error(), "Try a different URL").Wrap(err)
	case errors.Is(err, webcontent.ErrNetwork):
		return errFetchFailed.Wrap(err)
	case errors.Is(err, webcontent.ErrNoContent):
		return errNoContent.Wrap(err)
	case errors.Is(err, webcontent.ErrParse):
		return errParse.Wrap(err)
	default:
		return err
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// RegisterRoutes 挂载摘要相关路由。所有路由都需要登录。
func RegisterRoutes(r gin.IRouter, h *Handler, auth gin.HandlerFunc) {
	g := r.Group("/", auth)
	g.POST("/summarize/", h.Summarize)
	g.POST("/fetch-url-content/", h.FetchURLContent)
	g.GET("/summaries/", h.ListSummaries)
}
