package service

import "errors"

// 摘要流水线中可区分的错误。
var (
	ErrContentTooShort = errors.New("content too short")
	ErrContentTooLong  = errors.New("content too long")
	ErrContentRejected = errors.New("content rejected by model safety filter")
	ErrEmptySummary    = errors.New("empty or invalid summary generated")
	ErrProviderFailure = errors.New("summary provider failed")
	ErrNotConfigured   = errors.New("summary provider not configured")
	ErrMissingURL      = errors.New("URL is required")
)
