// internal/services/article_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/Corphon/InterviewScribe/internal/errors"
	"github.com/Corphon/InterviewScribe/internal/models"
	"github.com/Corphon/InterviewScribe/internal/storage"
)

// ArticleStore 文章存储
type ArticleStore = storage.MemoryStore[models.GeneratedArticle]

// ArticleService 合成文章并保存
type ArticleService struct {
	deps     Deps
	articles *ArticleStore
}

func NewArticleService(deps Deps, articles *ArticleStore) *ArticleService {
	if articles == nil {
		articles = storage.NewArticleStore[models.GeneratedArticle]()
	}
	return &ArticleService{
		deps:     deps.normalize(),
		articles: articles,
	}
}

// ValidateArticleRequest 主题必填；每条记录问答均非空；目标字数 200-1000（0 表示默认）
func ValidateArticleRequest(req models.ArticleRequest) error {
	if strings.TrimSpace(req.Topic) == "" {
		return apperrors.NewValidationError("topic is required", nil)
	}
	for i, line := range req.Transcript {
		if strings.TrimSpace(line.Question) == "" || strings.TrimSpace(line.Answer) == "" {
			return apperrors.NewValidationError(
				fmt.Sprintf("transcript entry %d must have a question and an answer", i+1), nil)
		}
	}
	if req.TargetWordCount != 0 &&
		(req.TargetWordCount < models.MinTargetWordCount || req.TargetWordCount > models.MaxTargetWordCount) {
		return apperrors.NewValidationError(
			fmt.Sprintf("targetWordCount must be between %d and %d", models.MinTargetWordCount, models.MaxTargetWordCount), nil)
	}
	return nil
}

// GenerateArticle 合成并保存文章，字数总是按最终正文重新计算
func (s *ArticleService) GenerateArticle(ctx context.Context, req models.ArticleRequest, sessionID string) (models.GeneratedArticle, error) {
	if err := ValidateArticleRequest(req); err != nil {
		return models.GeneratedArticle{}, err
	}
	if req.TargetWordCount == 0 {
		req.TargetWordCount = s.deps.DefaultWords
	}

	callCtx, cancel := s.deps.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	draft, err := s.deps.Selector.ArticleComposer().Compose(callCtx, req)
	if err = s.deps.record(TaskArticle, start, err); err != nil {
		return models.GeneratedArticle{}, err
	}

	article := s.articles.Create(func(id string) models.GeneratedArticle {
		return models.GeneratedArticle{
			ID:        id,
			Title:     draft.Title,
			Content:   draft.Content,
			WordCount: models.CountWords(draft.Content),
			Topic:     req.Topic,
			CreatedAt: time.Now(),
		}
	})

	s.deps.Logger.Info("Article generated", map[string]interface{}{
		"article_id": article.ID,
		"topic":      article.Topic,
		"word_count": article.WordCount,
		"entries":    len(req.Transcript),
	})
	s.deps.Events.Publish(newEvent(models.EventArticleCreated, article.ID, sessionID, article.Topic))

	return article, nil
}

// GetArticle 按ID查询文章
func (s *ArticleService) GetArticle(id string) (models.GeneratedArticle, error) {
	article, ok := s.articles.Get(id)
	if !ok {
		return models.GeneratedArticle{}, apperrors.NewNotFoundError("Article not found", nil)
	}
	return article, nil
}

// ListArticles 按创建顺序列出全部文章
func (s *ArticleService) ListArticles() []models.GeneratedArticle {
	return s.articles.List()
}

// ArticleCount 文章数量
func (s *ArticleService) ArticleCount() int {
	return s.articles.Len()
}
