// Package events 把摘要事件发布到 Kafka，供下游统计和审计消费。
package events

import (
	"Abridge_1.0/backend/go/internal/models"
	"Abridge_1.0/backend/go/pkg/logger"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"
)

// MessageWriter 是 *kafka.Writer 的最小接口。
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher 以 JSON 编码发布 summary.created 事件，消息键为用户 ID，
// 同一用户的事件落在同一分区并保持顺序。
type KafkaPublisher struct {
	writer MessageWriter
	topic  string
	logger *logger.Logger
}

// NewKafkaPublisher 创建 KafkaPublisher。
func NewKafkaPublisher(writer MessageWriter, topic string, log *logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.Discard()
	}
	return &KafkaPublisher{writer: writer, topic: topic, logger: log}
}

// PublishSummaryCreated 发布一个摘要创建事件。
func (p *KafkaPublisher) PublishSummaryCreated(ctx context.Context, event models.SummaryCreatedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("编码摘要事件失败: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.UserID), 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		p.logger.WithError(models.ErrorInfo{Message: err.Error(), Type: "messaging_error"}).
			WithPayload(map[string]interface{}{"topic": p.topic, "record_id": event.RecordID}).
			Error("写入 Kafka 消息失败")
		return err
	}
	return nil
}
