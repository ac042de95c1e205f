package llm

import (
	"Abridge_1.0/backend/go/internal/config"
	"Abridge_1.0/backend/go/internal/models"
	"context"
	"errors"
	"fmt"
)

var (
	// ErrContentFiltered 表示模型因安全策略拒绝或截断了输出。这类错误可以重试。
	ErrContentFiltered = errors.New("content filtered by model safety settings")
	// ErrUnavailable 表示模型服务当前不可用 (例如熔断器处于打开状态)。
	ErrUnavailable = errors.New("model service unavailable")
)

// LLM 定义了所有大型语言模型客户端必须实现的通用接口。
// 实现必须是无状态的，可以被多个请求并发使用。
type LLM interface {
	GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error)
}

// NewClient 是一个工厂函数，根据提供的配置创建并返回一个实现了 LLM 接口的客户端。
// 客户端在进程启动时创建一次，之后注入到需要它的组件中。
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return NewGemini(ctx, cfg.Gemini)
	case "openai":
		return NewOpenAI(cfg.OpenAI)
	case "ollama":
		return NewOllama(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	case "huggingface":
		return NewHuggingFace(cfg.HuggingFace.Model, cfg.HuggingFace.APIKey, cfg.HuggingFace.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
