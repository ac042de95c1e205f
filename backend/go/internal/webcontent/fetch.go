package webcontent

import (
	"Abridge_1.0/backend/go/internal/config"
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html/charset"
)

// Page 是一次成功抓取的结果。
type Page struct {
	URL         string // 请求的网址
	FinalURL    string // 跟随重定向后的网址
	StatusCode  int
	ContentType string
	HTML        string // 已转换为 UTF-8 的文档
	Attempts    int
}

// Fetcher 通过共享的连接池抓取网页，对瞬时失败按指数退避重试。
// 可以被多个 goroutine 并发使用。
type Fetcher struct {
	client        *http.Client
	userAgent     string
	maxAttempts   int
	backoffFactor time.Duration
	retryStatuses map[int]bool
	maxBodyBytes  int64
}

var errRedirectLimit = errors.New("stopped after too many redirects")

// NewFetcher 根据配置创建 Fetcher。TLS 证书校验始终开启。
func NewFetcher(cfg config.FetcherConfig) *Fetcher {
	connect := config.Duration(cfg.ConnectTimeout, 3*time.Second)
	read := config.Duration(cfg.ReadTimeout, 10*time.Second)
	pool := cfg.PoolSize
	if pool <= 0 {
		pool = 10
	}
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 30
	}

	dialer := &net.Dialer{Timeout: connect, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		TLSHandshakeTimeout:   connect,
		ResponseHeaderTimeout: read,
		MaxIdleConns:          pool,
		MaxIdleConnsPerHost:   pool,
		MaxConnsPerHost:       pool,
		IdleConnTimeout:       90 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	statuses := make(map[int]bool, len(cfg.RetryStatuses))
	for _, s := range cfg.RetryStatuses {
		statuses[s] = true
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 5 << 20
	}

	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   connect + read,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errRedirectLimit
				}
				return nil
			},
		},
		userAgent:     cfg.UserAgent,
		maxAttempts:   attempts,
		backoffFactor: config.Duration(cfg.BackoffFactor, time.Second),
		retryStatuses: statuses,
		maxBodyBytes:  maxBody,
	}
}

// Fetch 抓取网址并返回 HTML 文档。
//
// 可能返回的错误: ErrSSL, ErrTimeout, ErrTooManyRedirects, *HTTPError,
// ErrNetwork, ErrNonHTMLContent。
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.backoffFactor
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = 8 * f.backoffFactor
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.maxAttempts-1)), ctx)

	var page *Page
	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		p, err := f.fetchOnce(ctx, rawURL)
		if err != nil {
			if f.retryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		page = p
		return nil
	}, policy)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ErrTimeout) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, ctxErr)
		}
		return nil, err
	}
	page.Attempts = attempts
	return page, nil
}

func (f *Fetcher) retryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return f.retryStatuses[httpErr.Status]
	}
	return errors.Is(err, ErrNetwork)
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &URLError{Reason: "Invalid URL format", Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		// 读空响应体以便连接回到连接池。
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &HTTPError{Status: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !isHTML(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrNonHTMLContent, contentType)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if contentType == "" {
		contentType = mimetype.Detect(raw).String()
		if !isHTML(contentType) {
			return nil, fmt.Errorf("%w: %s", ErrNonHTMLContent, contentType)
		}
	}

	return &Page{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		HTML:        decode(raw, contentType),
	}, nil
}

// decode 按响应声明或文档内 meta 标签中的字符集转换为 UTF-8。
func decode(raw []byte, contentType string) string {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return string(raw)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// classifyTransportError 把 net/http 的错误归入可区分的类别。
func classifyTransportError(err error) error {
	if errors.Is(err, errRedirectLimit) {
		return fmt.Errorf("%w: %v", ErrTooManyRedirects, err)
	}

	var (
		unknownAuthority x509.UnknownAuthorityError
		hostnameErr      x509.HostnameError
		invalidCert      x509.CertificateInvalidError
		verifyErr        *tls.CertificateVerificationError
		recordErr        tls.RecordHeaderError
	)
	if errors.As(err, &unknownAuthority) || errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidCert) || errors.As(err, &verifyErr) || errors.As(err, &recordErr) {
		return fmt.Errorf("%w: %v", ErrSSL, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
