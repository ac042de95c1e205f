package models

import "strings"

// SpeakerRole 定义了消息发送者的角色。
type SpeakerRole string

const (
	SpeakerUser  SpeakerRole = "user"  // 用户角色。
	SpeakerModel SpeakerRole = "model" // 模型角色。
)

// Part 是消息中的一段文本。
type Part struct {
	Text string `json:"text,omitempty"`
}

// Content 包含了构成单个消息的多个部分。
type Content struct {
	Parts []*Part     `json:"parts,omitempty"`
	Role  SpeakerRole `json:"role,omitempty"`
}

// GenerateContentRequest 定义了生成内容的请求结构。
type GenerateContentRequest struct {
	Content []Content `json:"content,omitempty"` // 发给模型的提示词。
	// SourceText 是待摘要的原文。专用摘要模型 (如 bart-large-cnn)
	// 不理解指令型提示词，直接使用这一字段。
	SourceText string `json:"source_text,omitempty"`
}

// GenerateContentResponse 定义了生成内容的响应结构。
type GenerateContentResponse struct {
	Content      []Content `json:"content,omitempty"`
	ModelVersion string    `json:"modelVersion,omitempty"`
	FinishReason string    `json:"finishReason,omitempty"`
}

// NewTextRequest 用一段用户文本构造请求。
func NewTextRequest(prompt, source string) *GenerateContentRequest {
	return &GenerateContentRequest{
		Content: []Content{{
			Role:  SpeakerUser,
			Parts: []*Part{{Text: prompt}},
		}},
		SourceText: source,
	}
}

// Prompt 拼接请求中所有文本部分。
func (r *GenerateContentRequest) Prompt() string {
	return joinText(r.Content)
}

// Text 拼接响应中所有文本部分。
func (r *GenerateContentResponse) Text() string {
	if r == nil {
		return ""
	}
	return joinText(r.Content)
}

func joinText(content []Content) string {
	var sb strings.Builder
	for _, c := range content {
		for _, p := range c.Parts {
			if p != nil {
				sb.WriteString(p.Text)
			}
		}
	}
	return sb.String()
}
