package llm

import (
	"Abridge_1.0/backend/go/internal/config"
	"Abridge_1.0/backend/go/internal/models"
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini 是一个实现了 LLM 接口的结构体，用于与 Gemini API 交互。
// 每次调用都是独立的单轮请求，不保留会话历史。
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// safetyCategories 是需要放开拦截阈值的危害类别。
// 摘要的是用户自己提交的文本，过滤交给调用方的重试策略处理。
var safetyCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

// NewGemini 创建一个新的 Gemini 客户端。
//
// 参数:
//
//	ctx: 上下文，用于控制客户端的生命周期。
//	cfg: 模型名称、API 密钥与采样参数。
func NewGemini(ctx context.Context, cfg config.GeminiConfig) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)
	model.SetTopP(cfg.TopP)
	model.SetTopK(cfg.TopK)
	model.SetMaxOutputTokens(cfg.MaxOutputTokens)
	for _, category := range safetyCategories {
		model.SafetySettings = append(model.SafetySettings, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockNone,
		})
	}

	return &Gemini{client: client, model: model}, nil
}

// GenerateContent 向 Gemini API 发送请求并返回响应。
// 被安全策略拦截时返回 ErrContentFiltered。
func (g *Gemini) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	resp, err := g.model.GenerateContent(ctx, toGenaiParts(req.Content)...)
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return nil, fmt.Errorf("%w: %v", ErrContentFiltered, blocked)
		}
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	return fromGenaiResponse(resp), nil
}

// Close 释放底层连接。
func (g *Gemini) Close() error {
	return g.client.Close()
}

// toGenaiParts 将内部 Content 结构体转换为 GenAI Part 切片。
func toGenaiParts(content []models.Content) []genai.Part {
	var parts []genai.Part
	for _, c := range content {
		for _, p := range c.Parts {
			if p != nil && p.Text != "" {
				parts = append(parts, genai.Text(p.Text))
			}
		}
	}
	return parts
}

// fromGenaiResponse 将 GenAI 响应转换为内部响应。只取第一个候选结果。
func fromGenaiResponse(resp *genai.GenerateContentResponse) *models.GenerateContentResponse {
	out := &models.GenerateContentResponse{}
	if resp == nil || len(resp.Candidates) == 0 {
		return out
	}
	cand := resp.Candidates[0]
	out.FinishReason = cand.FinishReason.String()
	if cand.Content == nil {
		return out
	}

	var parts []*models.Part
	for _, p := range cand.Content.Parts {
		if text, ok := p.(genai.Text); ok {
			parts = append(parts, &models.Part{Text: string(text)})
		}
	}
	out.Content = []models.Content{{Parts: parts, Role: models.SpeakerRole(cand.Content.Role)}}
	return out
}
