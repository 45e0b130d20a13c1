// internal/services/export_service.go
package services

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	apperrors "github.com/Corphon/InterviewScribe/internal/errors"
	"github.com/Corphon/InterviewScribe/internal/models"
)

const (
	docxFontName  = "Times New Roman"
	docxFontSize  = 12
	docxTitleSize = 18
)

var filenameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// ExportService 将已生成的文章导出为 markdown、纯文本或 docx
type ExportService struct {
	articles *ArticleService
	tempDir  string
}

func NewExportService(articles *ArticleService) *ExportService {
	return &ExportService{
		articles: articles,
		tempDir:  os.TempDir(),
	}
}

// ParseExportFormat 解析导出格式，空值默认为 markdown
func ParseExportFormat(format string) (models.ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "markdown", "md":
		return models.ExportFormatMarkdown, nil
	case "txt", "text":
		return models.ExportFormatText, nil
	case "docx":
		return models.ExportFormatDocx, nil
	default:
		return "", apperrors.NewValidationError(
			fmt.Sprintf("unsupported export format %q, supported: markdown, txt, docx", format), nil)
	}
}

// ExportArticle 导出指定文章
func (s *ExportService) ExportArticle(articleID string, format models.ExportFormat) (*models.ExportResult, error) {
	article, err := s.articles.GetArticle(articleID)
	if err != nil {
		return nil, err
	}

	result := &models.ExportResult{
		ArticleID:   article.ID,
		Title:       article.Title,
		Format:      format,
		GeneratedAt: time.Now(),
	}
	base := exportBaseName(article)

	switch format {
	case models.ExportFormatMarkdown:
		result.Content = []byte(formatArticleAsMarkdown(article))
		result.ContentType = "text/markdown; charset=utf-8"
		result.Filename = base + ".md"
	case models.ExportFormatText:
		result.Content = []byte(formatArticleAsText(article))
		result.ContentType = "text/plain; charset=utf-8"
		result.Filename = base + ".txt"
	case models.ExportFormatDocx:
		content, err := s.renderDocx(article)
		if err != nil {
			return nil, apperrors.NewProcessingError("failed to render docx", err)
		}
		result.Content = content
		result.ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
		result.Filename = base + ".docx"
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported export format %q", format), nil)
	}

	return result, nil
}

func exportBaseName(article models.GeneratedArticle) string {
	name := strings.Trim(filenameUnsafe.ReplaceAllString(strings.ToLower(article.Title), "-"), "-")
	if len(name) > 60 {
		name = strings.Trim(name[:60], "-")
	}
	if name == "" {
		name = article.ID
	}
	return name
}

func formatArticleAsMarkdown(article models.GeneratedArticle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", article.Title)
	fmt.Fprintf(&b, "_Topic: %s · %d words · %s_\n\n", article.Topic, article.WordCount, article.CreatedAt.Format("2006-01-02 15:04"))
	b.WriteString(strings.TrimSpace(article.Content))
	b.WriteString("\n")
	return b.String()
}

func formatArticleAsText(article models.GeneratedArticle) string {
	var b strings.Builder
	b.WriteString(article.Title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", len([]rune(article.Title))))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Topic: %s\nWords: %d\nCreated: %s\n\n", article.Topic, article.WordCount, article.CreatedAt.Format(time.RFC3339))
	b.WriteString(strings.TrimSpace(article.Content))
	b.WriteString("\n")
	return b.String()
}

// renderDocx 标题加粗，正文按空行分段；先写临时文件再读回
func (s *ExportService) renderDocx(article models.GeneratedArticle) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, err
	}

	addDocxRun(doc.AddParagraph(""), article.Title, true, docxTitleSize)
	addDocxRun(doc.AddParagraph(""), "Topic: "+article.Topic, false, docxFontSize)

	for _, paragraph := range strings.Split(article.Content, paragraphSeparator) {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		addDocxRun(doc.AddParagraph(""), paragraph, false, docxFontSize)
	}

	tmp, err := os.CreateTemp(s.tempDir, "article-*.docx")
	if err != nil {
		return nil, err
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	if err := doc.SaveTo(filepath.Clean(path)); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func addDocxRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(docxFontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
