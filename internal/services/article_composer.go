// internal/services/article_composer.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/Corphon/InterviewScribe/internal/models"
)

var articleIntroductions = []string{
	"In a recent interview, we had the opportunity to delve deep into the world of %[1]s. The conversation revealed fascinating insights that challenge conventional thinking and offer fresh perspectives on this important subject.",
	"%[1]s continues to capture the attention of professionals and enthusiasts alike. Our recent discussion uncovered valuable perspectives that shed light on both the challenges and opportunities in this space.",
}

var articleTransitions = []string{
	"When asked about their experience,",
	"Diving deeper into the conversation,",
	"On the topic of challenges and growth,",
	"Looking toward the future,",
	"Reflecting on the journey so far,",
}

var articleConclusions = []string{
	"As our conversation concluded, it became clear that %[1]s represents not just a field of study or work, but a passion that drives continuous innovation and growth. The insights shared here offer valuable guidance for anyone looking to deepen their understanding of this dynamic area.",
	"The discussion highlighted the multifaceted nature of %[1]s, revealing both its complexities and its tremendous potential. For those interested in this field, the perspectives shared serve as both inspiration and practical guidance for the journey ahead.",
}

// articleFiller 正文不足目标字数时追加一次，且只追加一次
const articleFiller = "The broader implications of these insights extend beyond immediate applications. In an increasingly connected world, the principles discussed here (continuous learning, adaptability, and genuine engagement) serve as foundational elements for success in any endeavor related to %[1]s. The key takeaway is clear: approach this field with curiosity, embrace challenges as opportunities for growth, and never underestimate the power of persistent effort combined with thoughtful reflection."

const paragraphSeparator = "\n\n"

// offlineArticleTitle 离线文章标题
func offlineArticleTitle(topic string) string {
	return fmt.Sprintf("Insights on %s: An In-Depth Exploration", topic)
}

// defaultArticleTitle AI未给出标题时的默认标题
func defaultArticleTitle(topic string) string {
	return fmt.Sprintf("Insights on %s", topic)
}

func resolveTargetWordCount(target int) int {
	if target <= 0 {
		return models.DefaultTargetWordCount
	}
	return target
}

// TemplateArticleComposer 离线写作：引言 + 逐条引用回答 + 结语，必要时补一段
type TemplateArticleComposer struct {
	latency time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

func NewTemplateArticleComposer(latency time.Duration) *TemplateArticleComposer {
	return &TemplateArticleComposer{
		latency: latency,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *TemplateArticleComposer) Compose(ctx context.Context, req models.ArticleRequest) (*models.ArticleDraft, error) {
	if err := simulateLatency(ctx, c.latency); err != nil {
		return nil, err
	}

	c.mu.Lock()
	intro := articleIntroductions[c.rng.Intn(len(articleIntroductions))]
	conclusion := articleConclusions[c.rng.Intn(len(articleConclusions))]
	c.mu.Unlock()

	content := composeTemplateArticle(req, intro, conclusion)
	return &models.ArticleDraft{
		Title:   offlineArticleTitle(req.Topic),
		Content: content,
	}, nil
}

// composeTemplateArticle 拼接正文；过渡语按 index mod 5 轮换
func composeTemplateArticle(req models.ArticleRequest, intro, conclusion string) string {
	paragraphs := make([]string, 0, len(req.Transcript)+3)
	paragraphs = append(paragraphs, fmt.Sprintf(intro, req.Topic))

	for i, line := range req.Transcript {
		transition := articleTransitions[i%len(articleTransitions)]
		paragraphs = append(paragraphs, fmt.Sprintf("%s the response was illuminating: \"%s\"", transition, line.Answer))
	}

	paragraphs = append(paragraphs, fmt.Sprintf(conclusion, req.Topic))
	content := strings.Join(paragraphs, paragraphSeparator)

	if models.CountWords(content) < resolveTargetWordCount(req.TargetWordCount) {
		content += paragraphSeparator + fmt.Sprintf(articleFiller, req.Topic)
	}
	return content
}

const articleSystemPrompt = "You are a skilled journalist who writes engaging articles based on interviews. Always respond with valid JSON."

const articlePromptTemplate = `Based on the following interview transcript about "%[1]s", write an engaging article of %[2]d-%[3]d words.

INTERVIEW TRANSCRIPT:
%[4]s

REQUIREMENTS:
1. Create a compelling title for the article
2. Write in a professional yet engaging tone
3. Synthesize the interview responses into a cohesive narrative
4. Include relevant quotes from the interview
5. Add an introduction and conclusion
6. Target word count: %[2]d-%[3]d words

FORMAT YOUR RESPONSE AS JSON:
{
  "title": "Your Article Title",
  "content": "Full article content here..."
}`

// AIArticleComposer 调用AI提供者写作；解析失败时以原始响应作为正文，不报错
type AIArticleComposer struct {
	llm *LLMService
}

func NewAIArticleComposer(llmService *LLMService) *AIArticleComposer {
	return &AIArticleComposer{llm: llmService}
}

func (c *AIArticleComposer) Compose(ctx context.Context, req models.ArticleRequest) (*models.ArticleDraft, error) {
	target := resolveTargetWordCount(req.TargetWordCount)
	prompt := fmt.Sprintf(articlePromptTemplate, req.Topic, target, target+100, formatTranscript(req.Transcript))

	text, err := c.llm.CompleteText(ctx, articleSystemPrompt, prompt, 0.7, 1500)
	if err != nil {
		return nil, err
	}

	return parseArticleDraft(text, req.Topic), nil
}

// formatTranscript 将访谈记录格式化为 Q/A 交替的行
func formatTranscript(transcript []models.TranscriptLine) string {
	blocks := make([]string, 0, len(transcript))
	for i, line := range transcript {
		blocks = append(blocks, fmt.Sprintf("Q%d: %s\nA%d: %s", i+1, line.Question, i+1, line.Answer))
	}
	return strings.Join(blocks, paragraphSeparator)
}

// parseArticleDraft 解析 {title, content}；无法解析或缺少正文时退化为原始文本
func parseArticleDraft(text, topic string) *models.ArticleDraft {
	var parsed struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}

	if err := json.Unmarshal([]byte(CleanLLMJSONResponse(text)), &parsed); err != nil || strings.TrimSpace(parsed.Content) == "" {
		return &models.ArticleDraft{
			Title:   defaultArticleTitle(topic),
			Content: text,
		}
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		title = defaultArticleTitle(topic)
	}
	return &models.ArticleDraft{
		Title:   title,
		Content: parsed.Content,
	}
}
