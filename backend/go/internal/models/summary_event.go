package models

import "time"

// SummaryCreatedEvent 在摘要记录持久化成功后发布到消息队列。
type SummaryCreatedEvent struct {
	Type        string      `json:"type"` // 固定为 "summary.created"
	RecordID    string      `json:"record_id"`
	UserID      uint        `json:"user_id"`
	SummaryType SummaryType `json:"summary_type"`
	Characters  int         `json:"characters"`
	SourceURL   *string     `json:"source_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// EventSummaryCreated 是 SummaryCreatedEvent 的类型名。
const EventSummaryCreated = "summary.created"

// NewSummaryCreatedEvent 根据已保存的记录构造事件。
func NewSummaryCreatedEvent(r *SummaryRecord, characters int) SummaryCreatedEvent {
	return SummaryCreatedEvent{
		Type:        EventSummaryCreated,
		RecordID:    r.ID,
		UserID:      r.UserID,
		SummaryType: r.SummaryType,
		Characters:  characters,
		SourceURL:   r.SourceURL,
		CreatedAt:   r.CreatedAt,
	}
}
