package service

import (
	"Abridge_1.0/backend/go/internal/config"
	"Abridge_1.0/backend/go/internal/models"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidRequest 是通过校验的摘要请求。
type ValidRequest struct {
	Text        string
	SummaryType models.SummaryType
}

// ValidateRequest 校验摘要档位和文本长度。档位为空时默认为 medium。
// 文本去掉首尾空白后按字符 (rune) 计数。
func ValidateRequest(policy config.SummaryPolicy, text, summaryType string) (*ValidRequest, error) {
	st := models.SummaryMedium
	if strings.TrimSpace(summaryType) != "" {
		parsed, err := models.ParseSummaryType(summaryType)
		if err != nil {
			return nil, err
		}
		st = parsed
	}

	text = strings.TrimSpace(text)
	n := utf8.RuneCountInString(text)
	if n == 0 || n < policy.MinContentLength {
		return nil, fmt.Errorf("%w (minimum %d characters, got %d)", ErrContentTooShort, policy.MinContentLength, n)
	}
	if n > policy.MaxContentLength {
		return nil, fmt.Errorf("%w (maximum %d characters, got %d)", ErrContentTooLong, policy.MaxContentLength, n)
	}
	return &ValidRequest{Text: text, SummaryType: st}, nil
}
