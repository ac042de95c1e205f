// Package webcontent 负责校验用户提交的网址、抓取网页并抽取正文文本。
package webcontent

import (
	"errors"
	"fmt"
)

// 抓取与抽取过程中可区分的错误类型。
var (
	ErrInvalidURL       = errors.New("invalid URL")
	ErrSSL              = errors.New("SSL verification failed")
	ErrTimeout          = errors.New("website took too long to respond")
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrNetwork          = errors.New("could not fetch URL content")
	ErrNonHTMLContent   = errors.New("URL does not return HTML content")
	ErrNoContent        = errors.New("no readable content found on page")
	ErrParse            = errors.New("failed to parse page content")
)

// URLError 描述网址未通过校验的具体原因，errors.Is(err, ErrInvalidURL) 为真。
type URLError struct {
	Reason string
	Err    error
}

func (e *URLError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("URL validation failed: %s: %v", e.Reason, e.Err)
	}
	return "URL validation failed: " + e.Reason
}

func (e *URLError) Unwrap() error { return e.Err }

func (e *URLError) Is(target error) bool { return target == ErrInvalidURL }

// HTTPError 表示目标站点返回了非成功状态码。
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d", e.Status)
}
