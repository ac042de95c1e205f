package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SummaryType 是摘要的长度档位。
type SummaryType string

const (
	SummaryShort  SummaryType = "short"
	SummaryMedium SummaryType = "medium"
	SummaryLong   SummaryType = "long"
)

// SummaryTypes 按从短到长的顺序列出所有合法档位。
var SummaryTypes = []SummaryType{SummaryShort, SummaryMedium, SummaryLong}

// ErrInvalidSummaryType 表示摘要档位不在 short/medium/long 之内。
var ErrInvalidSummaryType = errors.New("invalid summary type")

// ParseSummaryType 忽略首尾空白与大小写解析摘要档位。
func ParseSummaryType(s string) (SummaryType, error) {
	t := SummaryType(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSummaryType, s)
}

// Valid 报告该值是否为合法档位。
func (t SummaryType) Valid() bool {
	switch t {
	case SummaryShort, SummaryMedium, SummaryLong:
		return true
	}
	return false
}

// SummaryRecord 记录一次成功的摘要生成。创建后不再修改，
// 只会随所属用户被删除而级联删除。
type SummaryRecord struct {
	ID           string      `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID       uint        `gorm:"not null;index:idx_summary_user_created,priority:1" bson:"user_id" json:"-"`
	OriginalText string      `gorm:"type:text;not null" bson:"original_text" json:"original_text"`
	SummaryText  string      `gorm:"type:text;not null" bson:"summary_text" json:"summary_text"`
	SourceURL    *string     `gorm:"size:2048" bson:"source_url,omitempty" json:"source_url,omitempty"`
	SummaryType  SummaryType `gorm:"type:varchar(10);not null;default:'medium'" bson:"summary_type" json:"summary_type"`
	IsComplete   bool        `gorm:"not null;default:true" bson:"is_complete" json:"is_complete"`
	CreatedAt    time.Time   `gorm:"index:idx_summary_user_created,priority:2" bson:"created_at" json:"created_at"`
}

func (SummaryRecord) TableName() string {
	return "summaries"
}

// Prepare 补齐 ID 与创建时间并校验档位，供各存储实现在写入前调用。
func (r *SummaryRecord) Prepare() error {
	if !r.SummaryType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSummaryType, r.SummaryType)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}

// BeforeCreate 是 GORM 钩子。
func (r *SummaryRecord) BeforeCreate(*gorm.DB) error {
	return r.Prepare()
}
