package webcontent

import (
	"Abridge_1.0/backend/go/internal/config"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// 抽取结果的来源。
const (
	SourceSelector = "selector" // 命中了正文容器选择器
	SourceBlocks   = "blocks"   // 由足够长的段落块拼接而成
	SourceDocument = "document" // 整个文档的文本
)

// Result 是抽取出的正文。
type Result struct {
	Text   string
	Source string
	Match  string // 命中的选择器, 仅当 Source 为 SourceSelector 时有值
}

// Extractor 从 HTML 文档中抽取主要可读文本。
type Extractor struct {
	maxLength        int
	minLength        int
	minWordsPerBlock int
	selectors        []string
	stripTags        string
}

// NewExtractor 根据抽取策略创建 Extractor。
func NewExtractor(policy config.ExtractionPolicy) *Extractor {
	return &Extractor{
		maxLength:        policy.MaxLength,
		minLength:        policy.MinLength,
		minWordsPerBlock: policy.MinWordsPerBlock,
		selectors:        policy.Selectors,
		stripTags:        strings.Join(policy.StripTags, ", "),
	}
}

// ExtractString 是 Extract 的字符串版本。
func (e *Extractor) ExtractString(doc string) (*Result, error) {
	return e.Extract(strings.NewReader(doc))
}

// Extract 按以下顺序选取正文：
//  1. 第一个匹配且文本非空的正文容器选择器；
//  2. 词数超过阈值的块，依次收集 p、div、section，用空格连接；
//  3. 整个文档的文本。
//
// 结果截断到最大长度，短于最小长度时返回 ErrNoContent。
func (e *Extractor) Extract(r io.Reader) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if e.stripTags != "" {
		doc.Find(e.stripTags).Remove()
	}

	res := e.pick(doc)
	res.Text = truncateRunes(res.Text, e.maxLength)
	if utf8.RuneCountInString(res.Text) < e.minLength {
		return nil, ErrNoContent
	}
	return res, nil
}

var blockTags = []string{"p", "div", "section"}

func (e *Extractor) pick(doc *goquery.Document) *Result {
	for _, sel := range e.selectors {
		match := doc.Find(sel).First()
		if match.Length() == 0 {
			continue
		}
		if text := flatten(match); text != "" {
			return &Result{Text: text, Source: SourceSelector, Match: sel}
		}
	}

	// 按标签分组收集: 先全部 p, 再 div, 最后 section。
	var blocks []string
	for _, tag := range blockTags {
		doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
			text := flatten(s)
			if len(strings.Fields(text)) > e.minWordsPerBlock {
				blocks = append(blocks, text)
			}
		})
	}
	if len(blocks) > 0 {
		return &Result{Text: strings.Join(blocks, " "), Source: SourceBlocks}
	}

	return &Result{Text: flatten(doc.Selection), Source: SourceDocument}
}

// flatten 收集所选节点下的全部文本节点，去掉首尾空白后用单个空格连接。
func flatten(s *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
