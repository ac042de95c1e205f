package service

import (
	"Abridge_1.0/backend/go/internal/config"
	"Abridge_1.0/backend/go/internal/llm"
	"Abridge_1.0/backend/go/internal/models"
	"Abridge_1.0/backend/go/pkg/logger"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
)

// Generator 调用模型生成摘要，只在内容被安全策略过滤时按指数退避重试。
type Generator struct {
	client     llm.LLM
	retry      config.RetryPolicy
	minSummary int
	log        *logger.Logger
}

// NewGenerator 创建 Generator。client 在进程启动时创建一次后注入。
func NewGenerator(client llm.LLM, policy config.SummaryPolicy, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Discard()
	}
	return &Generator{
		client:     client,
		retry:      policy.Retry,
		minSummary: policy.MinSummaryLength,
		log:        log,
	}
}

// Generation 是一次成功的生成结果。
type Generation struct {
	Summary  string
	Attempts int
}

// Generate 生成摘要。
//
// 可能返回的错误: ErrContentRejected (重试次数耗尽后仍被过滤)、ErrEmptySummary、
// ErrProviderFailure (超出总时限，或其他所有模型错误，后者不重试)。
func (g *Generator) Generate(ctx context.Context, req *ValidRequest) (*Generation, error) {
	if g.client == nil {
		return nil, ErrNotConfigured
	}

	log := logger.FromContext(ctx, g.log)
	deadline := config.Duration(g.retry.Deadline, 30*time.Second)
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	prompt := BuildPrompt(req.Text, req.SummaryType)
	genReq := models.NewTextRequest(prompt, req.Text)

	var (
		resp     *models.GenerateContentResponse
		attempts int
	)
	err := backoff.Retry(func() error {
		attempts++
		var err error
		resp, err = g.client.GenerateContent(ctx, genReq)
		if err == nil {
			return nil
		}
		if errors.Is(err, llm.ErrContentFiltered) {
			log.WithField("attempt", attempts).WithErr(err).Warn("模型输出被安全策略过滤，准备重试")
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(g.newBackOff(deadline), g.maxRetries()), ctx))

	if err != nil {
		if ctx.Err() != nil || time.Since(start) >= deadline {
			log.WithField("attempts", attempts).WithErr(err).Warn("生成摘要超出总时限")
			return nil, fmt.Errorf("%w: deadline %s exceeded after %d attempts: %w", ErrProviderFailure, deadline, attempts, err)
		}
		if errors.Is(err, llm.ErrContentFiltered) {
			return nil, fmt.Errorf("%w after %d attempts: %v", ErrContentRejected, attempts, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrProviderFailure, err)
	}

	summary := strings.TrimSpace(resp.Text())
	if summary == "" || utf8.RuneCountInString(summary) < g.minSummary {
		return nil, fmt.Errorf("%w (%d characters)", ErrEmptySummary, utf8.RuneCountInString(summary))
	}
	return &Generation{Summary: summary, Attempts: attempts}, nil
}

func (g *Generator) newBackOff(deadline time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = config.Duration(g.retry.InitialInterval, time.Second)
	b.Multiplier = g.retry.Multiplier
	if b.Multiplier < 1 {
		b.Multiplier = 2
	}
	b.MaxInterval = config.Duration(g.retry.MaxInterval, 10*time.Second)
	b.MaxElapsedTime = deadline
	b.RandomizationFactor = 0
	return b
}

func (g *Generator) maxRetries() uint64 {
	if g.retry.MaxAttempts <= 1 {
		return 0
	}
	return uint64(g.retry.MaxAttempts - 1)
}
