// internal/services/question_generator.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Corphon/InterviewScribe/internal/errors"
	"github.com/Corphon/InterviewScribe/internal/models"
)

// 问题分类
const (
	categoryDefault    = "default"
	categoryTechnology = "technology"
	categoryBusiness   = "business"
)

const topicPlaceholder = "{topic}"

var questionTemplates = map[string][]string{
	categoryDefault: {
		"What inspired you to explore {topic}?",
		"Can you describe your experience with {topic}?",
		"What are the main challenges you face when working with {topic}?",
		"How do you see {topic} evolving in the next few years?",
		"What advice would you give to someone just starting with {topic}?",
	},
	categoryTechnology: {
		"What got you interested in {topic}?",
		"How has {topic} changed the way you work?",
		"What are the biggest misconceptions about {topic}?",
		"Can you share a breakthrough moment you had while learning {topic}?",
		"What resources would you recommend for mastering {topic}?",
	},
	categoryBusiness: {
		"What drove you to start working in {topic}?",
		"What strategies have been most effective for you in {topic}?",
		"How do you measure success in {topic}?",
		"What trends are you seeing in {topic} right now?",
		"What lessons have you learned from failures in {topic}?",
	},
}

// 技术类先于商业类匹配
var (
	technologyKeywords = []string{
		"software", "programming", "ai", "artificial intelligence", "tech", "development",
		"code", "web", "app", "data", "machine learning",
	}
	businessKeywords = []string{
		"business", "startup", "marketing", "sales", "entrepreneur", "management", "finance",
	}
)

// MaxTemplateQuestions 每个分类的模板数量
const MaxTemplateQuestions = 5

func newQuestionID() string {
	return "q-" + uuid.NewString()
}

// classifyTopic 大小写不敏感的子串匹配，第一个命中的分类胜出
func classifyTopic(topic string) string {
	lower := strings.ToLower(topic)
	for _, keyword := range technologyKeywords {
		if strings.Contains(lower, keyword) {
			return categoryTechnology
		}
	}
	for _, keyword := range businessKeywords {
		if strings.Contains(lower, keyword) {
			return categoryBusiness
		}
	}
	return categoryDefault
}

// TemplateQuestionGenerator 离线问题生成：按分类套用固定模板
type TemplateQuestionGenerator struct {
	latency time.Duration
}

func NewTemplateQuestionGenerator(latency time.Duration) *TemplateQuestionGenerator {
	return &TemplateQuestionGenerator{latency: latency}
}

// Generate 对给定的 (topic, count) 结果确定，count 超过模板数量时截断
func (g *TemplateQuestionGenerator) Generate(ctx context.Context, topic string, count int) ([]models.InterviewQuestion, error) {
	if err := simulateLatency(ctx, g.latency); err != nil {
		return nil, err
	}

	templates := questionTemplates[classifyTopic(topic)]
	if count > len(templates) {
		count = len(templates)
	}
	if count < 0 {
		count = 0
	}

	questions := make([]models.InterviewQuestion, 0, count)
	for i, template := range templates[:count] {
		questions = append(questions, models.InterviewQuestion{
			ID:       newQuestionID(),
			Question: strings.ReplaceAll(template, topicPlaceholder, topic),
			Order:    i + 1,
		})
	}
	return questions, nil
}

const questionSystemPrompt = "You are an expert interviewer who crafts thoughtful, engaging questions."

const questionPromptTemplate = `Generate %d engaging interview questions about "%s".

The questions should:
- Be open-ended to encourage detailed responses
- Progress from introductory to more in-depth
- Be suitable for creating an article from the answers
- Cover different aspects of the topic

Return ONLY a JSON array of strings, no other text. Example:
["Question 1?", "Question 2?", "Question 3?"]`

// AIQuestionGenerator 调用AI提供者生成问题；解析失败是硬错误，不回退到模板
type AIQuestionGenerator struct {
	llm *LLMService
}

func NewAIQuestionGenerator(llmService *LLMService) *AIQuestionGenerator {
	return &AIQuestionGenerator{llm: llmService}
}

func (g *AIQuestionGenerator) Generate(ctx context.Context, topic string, count int) ([]models.InterviewQuestion, error) {
	prompt := fmt.Sprintf(questionPromptTemplate, count, topic)

	text, err := g.llm.CompleteText(ctx, questionSystemPrompt, prompt, 0.7, 500)
	if err != nil {
		return nil, err
	}

	return parseQuestionList(text, count)
}

// parseQuestionList 解析JSON字符串数组，丢弃空白项并截断到 count
func parseQuestionList(text string, count int) ([]models.InterviewQuestion, error) {
	var raw []string
	if err := json.Unmarshal([]byte(CleanLLMJSONResponse(text)), &raw); err != nil {
		return nil, apperrors.NewGenerationParseError("Failed to parse AI response", err)
	}

	questions := make([]models.InterviewQuestion, 0, len(raw))
	for _, q := range raw {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if count > 0 && len(questions) == count {
			break
		}
		questions = append(questions, models.InterviewQuestion{
			ID:       newQuestionID(),
			Question: q,
			Order:    len(questions) + 1,
		})
	}

	if len(questions) == 0 {
		return nil, apperrors.NewGenerationParseError("Failed to parse AI response", fmt.Errorf("no questions in response"))
	}
	return questions, nil
}
