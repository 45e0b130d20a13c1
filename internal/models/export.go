// internal/models/export.go
package models

import (
	"time"
)

// ExportFormat 文章导出格式
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatText     ExportFormat = "txt"
	ExportFormatDocx     ExportFormat = "docx"
)

// ExportResult 导出结果
type ExportResult struct {
	ArticleID   string       `json:"articleId"`
	Title       string       `json:"title"`
	Format      ExportFormat `json:"format"`
	Filename    string       `json:"filename"`
	ContentType string       `json:"contentType"`
	Content     []byte       `json:"-"`
	GeneratedAt time.Time    `json:"generatedAt"`
}
