package llm

import (
	"Abridge_1.0/backend/go/internal/models"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HuggingFace 是一个用于 Hugging Face Inference API 的 LLM 客户端。
// 默认模型 facebook/bart-large-cnn 是专用摘要模型，直接读取原文而不是提示词。
type HuggingFace struct {
	client  *http.Client // HTTP 客户端实例。
	model   string       // 要使用的模型名称。
	apiKey  string       // Hugging Face API 密钥。
	baseURL string       // Hugging Face Inference API 的基准 URL。
}

type hfRequest struct {
	Inputs  string    `json:"inputs"`
	Options hfOptions `json:"options"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// hfResult 兼容摘要任务 (summary_text) 和文本生成任务 (generated_text) 的返回格式。
type hfResult struct {
	SummaryText   string `json:"summary_text"`
	GeneratedText string `json:"generated_text"`
}

// NewHuggingFace 创建一个新的 HuggingFace 客户端。
//
// 参数:
//
//	model: 要使用的模型名称。
//	apiKey: Hugging Face API 密钥。
//	baseURL: Inference API 的基准 URL。如果为空，则默认为 "https://api-inference.huggingface.co/models/"。
func NewHuggingFace(model, apiKey, baseURL string) (*HuggingFace, error) {
	if model == "" {
		return nil, fmt.Errorf("huggingface provider requires a model")
	}
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co/models/"
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &HuggingFace{
		client:  &http.Client{Timeout: 60 * time.Second},
		model:   model,
		apiKey:  apiKey,
		baseURL: baseURL,
	}, nil
}

// GenerateContent 使用 Hugging Face Inference API 生成内容。
// 请求带有 SourceText 时发送原文，否则发送拼接后的提示词。
func (h *HuggingFace) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	inputs := req.SourceText
	if inputs == "" {
		inputs = req.Prompt()
	}
	body, err := json.Marshal(hfRequest{Inputs: inputs, Options: hfOptions{WaitForModel: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+h.model, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if h.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("huggingface returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var results []hfResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no generated text returned")
	}

	text := results[0].SummaryText
	if text == "" {
		text = results[0].GeneratedText
	}
	return &models.GenerateContentResponse{
		Content: []models.Content{{
			Parts: []*models.Part{{Text: text}},
			Role:  models.SpeakerModel,
		}},
		ModelVersion: h.model,
	}, nil
}
