// internal/models/article.go
package models

import (
	"strings"
	"time"
)

// DefaultTargetWordCount 未指定时的目标字数
const DefaultTargetWordCount = 400

// 目标字数允许范围
const (
	MinTargetWordCount = 200
	MaxTargetWordCount = 1000
)

// GeneratedArticle 由访谈记录合成的文章，创建后不可变
type GeneratedArticle struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	WordCount int       `json:"wordCount"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone 返回文章副本（所有字段均为值类型）
func (a GeneratedArticle) Clone() GeneratedArticle {
	return a
}

// ArticleDraft 写作策略的输出，尚未分配ID
type ArticleDraft struct {
	Title   string
	Content string
}

// ArticleRequest 文章生成请求
type ArticleRequest struct {
	Topic           string           `json:"topic"`
	Transcript      []TranscriptLine `json:"transcript"`
	TargetWordCount int              `json:"targetWordCount,omitempty"`
}

// CountWords 按空白分隔统计词数
func CountWords(content string) int {
	return len(strings.Fields(content))
}
