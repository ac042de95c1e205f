// Package service 实现摘要生成与网页内容抓取的业务流程。
package service

import (
	"Abridge_1.0/backend/go/internal/config"
	"Abridge_1.0/backend/go/internal/models"
	"Abridge_1.0/backend/go/internal/webcontent"
	"Abridge_1.0/backend/go/pkg/logger"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// RecordStore 持久化摘要记录。
type RecordStore interface {
	Create(ctx context.Context, record *models.SummaryRecord) error
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]models.SummaryRecord, int64, error)
	DeleteByUser(ctx context.Context, userID uint) error
}

// ContentCache 缓存按网址抽取出的正文。
type ContentCache interface {
	Get(ctx context.Context, url string) (string, bool, error)
	Set(ctx context.Context, url, content string) error
}

// EventPublisher 发布摘要生命周期事件。
type EventPublisher interface {
	PublishSummaryCreated(ctx context.Context, event models.SummaryCreatedEvent) error
}

// Deps 是 Service 的依赖。Cache 和 Events 可以为 nil。
type Deps struct {
	Policy    config.SummaryPolicy
	Generator *Generator
	Records   RecordStore
	Cache     ContentCache
	Events    EventPublisher
	Validator *webcontent.Validator
	Fetcher   *webcontent.Fetcher
	Extractor *webcontent.Extractor
	Log       *logger.Logger
}

// Service 编排摘要和抓取两条流水线。
type Service struct {
	Deps
}

// New 创建 Service。
func New(d Deps) *Service {
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	return &Service{Deps: d}
}

// SummarizeInput 是一次摘要请求。
type SummarizeInput struct {
	Text        string
	SummaryType string
	SourceURL   string // 可选，文本来自抓取的网页时填写
}

// SummaryResult 是返回给客户端的摘要。
type SummaryResult struct {
	Summary     string
	Characters  int
	SummaryType models.SummaryType
	RecordID    string // 持久化失败时为空
}

// Summarize 校验请求、生成摘要，并尽力保存记录。
// 保存与发布事件各自受 PersistTimeout 限制，失败只记录日志，不影响返回结果。
func (s *Service) Summarize(ctx context.Context, userID uint, in SummarizeInput) (*SummaryResult, error) {
	req, err := ValidateRequest(s.Policy, in.Text, in.SummaryType)
	if err != nil {
		return nil, err
	}

	gen, err := s.Generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &SummaryResult{
		Summary:     gen.Summary,
		Characters:  utf8.RuneCountInString(gen.Summary),
		SummaryType: req.SummaryType,
	}
	result.RecordID = s.persist(ctx, userID, req, result, in.SourceURL)
	return result, nil
}

func (s *Service) persist(ctx context.Context, userID uint, req *ValidRequest, result *SummaryResult, sourceURL string) string {
	if s.Records == nil {
		return ""
	}
	log := s.logger(ctx).WithField("user_id", userID)
	timeout := config.Duration(s.Policy.PersistTimeout, 3*time.Second)

	record := &models.SummaryRecord{
		UserID:       userID,
		OriginalText: truncate(req.Text, s.Policy.StoredTextLimit),
		SummaryText:  result.Summary,
		SummaryType:  req.SummaryType,
		IsComplete:   true,
	}
	if u := strings.TrimSpace(sourceURL); u != "" && len(u) <= 2048 {
		record.SourceURL = &u
	}

	createCtx, cancel := context.WithTimeout(ctx, timeout)
	err := s.Records.Create(createCtx, record)
	cancel()
	if err != nil {
		log.WithError(models.ErrorInfo{Message: err.Error(), Type: "persistence_error"}).Warn("保存摘要记录失败")
		return ""
	}

	if s.Events != nil {
		event := models.NewSummaryCreatedEvent(record, result.Characters)
		publishCtx, cancel := context.WithTimeout(ctx, timeout)
		err := s.Events.PublishSummaryCreated(publishCtx, event)
		cancel()
		if err != nil {
			log.WithField("record_id", record.ID).WithErr(err).Warn("发布摘要事件失败")
		}
	}
	return record.ID
}

// logger 优先使用请求 context 中带追踪 ID 的 Logger。
func (s *Service) logger(ctx context.Context) *logger.Logger {
	return logger.FromContext(ctx, s.Log)
}

// FetchedContent 是从网页抽取出的正文。
type FetchedContent struct {
	Content   string
	SourceURL string
	Cached    bool
}

// FetchURLContent 校验网址、抓取网页并抽取正文。命中缓存时不发起网络请求。
func (s *Service) FetchURLContent(ctx context.Context, rawURL string) (*FetchedContent, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, ErrMissingURL
	}
	u, err := s.Validator.Validate(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	key := u.String()
	log := s.logger(ctx).WithField("url", key)

	if s.Cache != nil {
		content, ok, err := s.Cache.Get(ctx, key)
		if err != nil {
			log.WithErr(err).Warn("读取内容缓存失败")
		} else if ok {
			return &FetchedContent{Content: content, SourceURL: rawURL, Cached: true}, nil
		}
	}

	page, err := s.Fetcher.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	res, err := s.Extractor.ExtractString(page.HTML)
	if err != nil {
		return nil, err
	}
	log.WithPayload(map[string]interface{}{
		"final_url":  page.FinalURL,
		"attempts":   page.Attempts,
		"source":     res.Source,
		"characters": utf8.RuneCountInString(res.Text),
	}).Debug("网页正文抽取完成")

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, res.Text); err != nil {
			log.WithErr(err).Warn("写入内容缓存失败")
		}
	}
	return &FetchedContent{Content: res.Text, SourceURL: rawURL}, nil
}

// 分页参数的默认值与上限。
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SummaryPage 是一页摘要历史。
type SummaryPage struct {
	Items []models.SummaryRecord
	Total int64
	Page  int
	Size  int
}

// ListSummaries 按创建时间倒序返回用户的摘要历史。
func (s *Service) ListSummaries(ctx context.Context, userID uint, page, size int) (*SummaryPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	items, total, err := s.Records.ListByUser(ctx, userID, (page-1)*size, size)
	if err != nil {
		return nil, fmt.Errorf("查询摘要历史失败: %w", err)
	}
	return &SummaryPage{Items: items, Total: total, Page: page, Size: size}, nil
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
