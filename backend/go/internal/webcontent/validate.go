package webcontent

import (
	"context"
	"net"
	"net/url"
	"strings"
	"time"
)

// Resolver 是 DNS 解析器的最小接口，*net.Resolver 满足该接口。
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Validator 检查网址是否可以被抓取：语法合法、协议为 http/https、主机名可解析。
type Validator struct {
	resolver Resolver
	timeout  time.Duration
}

// NewValidator 创建 Validator。resolver 为 nil 时使用 net.DefaultResolver。
func NewValidator(resolver Resolver, timeout time.Duration) *Validator {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Validator{resolver: resolver, timeout: timeout}
}

// Validate 返回解析后的网址。所有失败都满足 errors.Is(err, ErrInvalidURL)。
// 协议不被允许时不会发起 DNS 查询。
func (v *Validator) Validate(ctx context.Context, raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, &URLError{Reason: "Invalid URL format", Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &URLError{Reason: "Invalid URL format"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &URLError{Reason: "Only http/https URLs are allowed"}
	}
	host := u.Hostname()
	if host == "" {
		return nil, &URLError{Reason: "Invalid domain name"}
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	addrs, err := v.resolver.LookupHost(ctx, host)
	if err != nil {
		return nil, &URLError{Reason: "DNS resolution failed", Err: err}
	}
	if len(addrs) == 0 {
		return nil, &URLError{Reason: "DNS resolution failed"}
	}
	return u, nil
}
