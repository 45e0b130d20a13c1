// internal/models/interview.go
package models

import (
	"time"
)

// InterviewQuestion 表示访谈中的一个问题
type InterviewQuestion struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Order    int    `json:"order"` // 从1开始，排序以此为准而不是切片位置
}

// InterviewSession 绑定主题与其生成的问题列表，创建后不可变
type InterviewSession struct {
	ID        string              `json:"id"`
	Topic     string              `json:"topic"`
	Questions []InterviewQuestion `json:"questions"`
	CreatedAt time.Time           `json:"createdAt"`
}

// Clone 返回会话的深拷贝
func (s InterviewSession) Clone() InterviewSession {
	out := s
	if s.Questions != nil {
		out.Questions = make([]InterviewQuestion, len(s.Questions))
		copy(out.Questions, s.Questions)
	}
	return out
}

// QuestionCount 问题数量
func (s InterviewSession) QuestionCount() int {
	return len(s.Questions)
}

// InputMode 回答的输入方式
type InputMode string

const (
	InputModeText  InputMode = "text"
	InputModeVoice InputMode = "voice"
)

// Valid 检查输入方式是否受支持
func (m InputMode) Valid() bool {
	return m == InputModeText || m == InputModeVoice
}

// TranscriptEntry 一条已回答的问答记录（客户端持有，只追加）
type TranscriptEntry struct {
	QuestionID string    `json:"questionId"`
	Question   string    `json:"question"` // 冗余保存问题文本
	Answer     string    `json:"answer"`
	Mode       InputMode `json:"mode"`
	Timestamp  time.Time `json:"timestamp"`
}

// Line 转换为文章生成请求所需的问答对
func (e TranscriptEntry) Line() TranscriptLine {
	return TranscriptLine{Question: e.Question, Answer: e.Answer}
}

// TranscriptLine 文章生成请求中的问答对
type TranscriptLine struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
