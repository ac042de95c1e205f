package llm

import (
	"Abridge_1.0/backend/go/internal/models"
	"Abridge_1.0/backend/go/pkg/circuitbreaker"
	"context"
	"errors"
	"fmt"
	"time"
)

// guarded 在熔断器的保护下调用底层 LLM。
type guarded struct {
	next    LLM
	breaker *circuitbreaker.Breaker
}

// NewBreaker 创建适用于 LLM 调用的熔断器。
// 内容过滤和调用方取消不代表服务故障，不计入失败次数。
func NewBreaker(failureThreshold, successThreshold uint32, cooldown time.Duration) *circuitbreaker.Breaker {
	return circuitbreaker.New(failureThreshold, successThreshold, cooldown,
		circuitbreaker.WithFailurePredicate(func(err error) bool {
			return !errors.Is(err, ErrContentFiltered) && !errors.Is(err, context.Canceled)
		}))
}

// WithCircuitBreaker 返回受熔断器保护的 LLM。熔断器打开时直接返回 ErrUnavailable。
func WithCircuitBreaker(next LLM, breaker *circuitbreaker.Breaker) LLM {
	return &guarded{next: next, breaker: breaker}
}

func (g *guarded) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	var resp *models.GenerateContentResponse
	err := g.breaker.Do(func() error {
		var err error
		resp, err = g.next.GenerateContent(ctx, req)
		return err
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, err
}
