// Package tui is a terminal front end for the interview workflow.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Corphon/InterviewScribe/internal/models"
	"github.com/Corphon/InterviewScribe/internal/tui/ui"
	"github.com/Corphon/InterviewScribe/internal/workflow"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const progressBarWidth = 30

// Model is the root bubbletea model. Interview state lives in the
// controller; the model only keeps the input line and display state.
type Model struct {
	ctx        context.Context
	controller *workflow.Controller

	input   string
	notice  string
	spinner int
	width   int
	height  int
}

// New creates a model driving controller.
func New(ctx context.Context, controller *workflow.Controller) Model {
	return Model{
		ctx:        ctx,
		controller: controller,
	}
}

// Init starts the loading indicator.
func (m Model) Init() tea.Cmd {
	return spinnerTickCmd()
}

func spinnerTickCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg {
		return SpinnerTickMsg{}
	})
}

func submitTopicCmd(ctx context.Context, c *workflow.Controller, topic string) tea.Cmd {
	return func() tea.Msg {
		return QuestionsReadyMsg{Err: c.SubmitTopic(ctx, topic)}
	}
}

// answerByVoiceCmd reads a recorded audio file and submits it as a voice answer.
func answerByVoiceCmd(ctx context.Context, c *workflow.Controller, path string) tea.Cmd {
	return func() tea.Msg {
		audio, err := os.ReadFile(path)
		if err != nil {
			return VoiceAnsweredMsg{Err: fmt.Errorf("read audio file: %w", err)}
		}
		complete, err := c.AnswerByVoice(ctx, audio, audioFormat(path))
		return VoiceAnsweredMsg{Complete: complete, Err: err}
	}
}

func generateArticleCmd(ctx context.Context, c *workflow.Controller) tea.Cmd {
	return func() tea.Msg {
		return ArticleReadyMsg{Err: c.GenerateArticle(ctx)}
	}
}

func audioFormat(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return models.DefaultAudioFormat
	}
	return ext
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case SpinnerTickMsg:
		m.spinner = (m.spinner + 1) % len(spinnerFrames)
		return m, spinnerTickCmd()

	case QuestionsReadyMsg:
		if m.setNotice(msg.Err) {
			return m, nil
		}
		m.input = ""
		return m, nil

	case VoiceAnsweredMsg:
		if m.setNotice(msg.Err) {
			return m, nil
		}
		m.input = ""
		if msg.Complete {
			return m, generateArticleCmd(m.ctx, m.controller)
		}
		return m, nil

	case ArticleReadyMsg:
		m.setNotice(msg.Err)
		return m, nil
	}

	return m, nil
}

// setNotice records err for display and reports whether there was one.
// Results dropped by a reset are not errors for the user.
func (m *Model) setNotice(err error) bool {
	if err == nil {
		m.notice = ""
		return false
	}
	if errors.Is(err, workflow.ErrDiscarded) {
		m.notice = ""
		return true
	}
	m.notice = err.Error()
	return true
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := m.controller.Snapshot().Step

	switch msg.String() {
	case KeyCtrlC:
		return m, tea.Quit

	case KeyReset:
		m.controller.Reset()
		m.input = ""
		m.notice = ""
		return m, nil

	case KeyEnter:
		return m.submit()

	case KeyTab:
		if step == workflow.StepQuestionLoop {
			mode := models.InputModeVoice
			if m.controller.Snapshot().InputMode == models.InputModeVoice {
				mode = models.InputModeText
			}
			_ = m.controller.SetInputMode(mode)
			m.input = ""
		}
		return m, nil

	case KeyBackspace:
		if runes := []rune(m.input); len(runes) > 0 {
			m.input = string(runes[:len(runes)-1])
		}
		return m, nil
	}

	if step == workflow.StepArticleDisplay {
		switch msg.String() {
		case KeyQuit:
			return m, tea.Quit
		case KeyNewSession:
			m.controller.Reset()
			m.notice = ""
		}
		return m, nil
	}

	if step == workflow.StepTopicEntry || step == workflow.StepQuestionLoop {
		switch msg.Type {
		case tea.KeyRunes:
			m.input += string(msg.Runes)
		case tea.KeySpace:
			m.input += " "
		}
	}
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	state := m.controller.Snapshot()
	if state.IsLoading {
		return m, nil
	}

	switch state.Step {
	case workflow.StepTopicEntry:
		if strings.TrimSpace(m.input) == "" {
			m.notice = workflow.ErrEmptyTopic.Error()
			return m, nil
		}
		m.notice = ""
		return m, submitTopicCmd(m.ctx, m.controller, strings.TrimSpace(m.input))

	case workflow.StepQuestionLoop:
		if m.controller.IsComplete() {
			// retry after a failed article attempt
			m.notice = ""
			return m, generateArticleCmd(m.ctx, m.controller)
		}
		if state.InputMode == models.InputModeVoice {
			path := strings.TrimSpace(m.input)
			if path == "" {
				m.notice = "enter the path of a recorded audio file"
				return m, nil
			}
			m.notice = ""
			return m, answerByVoiceCmd(m.ctx, m.controller, path)
		}

		complete, err := m.controller.SubmitAnswer(m.input)
		if m.setNotice(err) {
			return m, nil
		}
		m.input = ""
		if complete {
			return m, generateArticleCmd(m.ctx, m.controller)
		}
	}
	return m, nil
}

// View renders the current step.
func (m Model) View() string {
	state := m.controller.Snapshot()
	width := m.width
	if width == 0 {
		width = 80
	}

	var sections []string
	sections = append(sections, m.renderHeader(state))
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", width)))

	switch state.Step {
	case workflow.StepTopicEntry:
		sections = append(sections, m.renderTopicEntry(state))
	case workflow.StepQuestionLoop:
		sections = append(sections, m.renderQuestionLoop(state))
	case workflow.StepGenerating:
		sections = append(sections, m.renderGenerating())
	case workflow.StepArticleDisplay:
		sections = append(sections, m.renderArticle(state, width))
	}

	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", width)))
	if notice := m.currentNotice(state); notice != "" {
		sections = append(sections, ui.ErrorStyle.Render("✗ "+notice))
	}
	sections = append(sections, m.renderFooter(state))

	return strings.Join(sections, "\n")
}

func (m Model) currentNotice(state workflow.State) string {
	if m.notice != "" {
		return m.notice
	}
	return state.Error
}

func (m Model) renderHeader(state workflow.State) string {
	title := ui.TitleStyle.Render("INTERVIEW SCRIBE")
	step := ui.StepStyle.Render(" · " + string(state.Step))
	if state.Topic != "" && state.Step != workflow.StepTopicEntry {
		step += ui.DimStyle.Render(" · " + state.Topic)
	}
	return title + step
}

func (m Model) renderTopicEntry(state workflow.State) string {
	lines := []string{
		ui.PromptStyle.Render("What should the interview be about?"),
		"",
		"> " + ui.InputStyle.Render(m.input) + "█",
	}
	if state.IsLoading {
		lines = append(lines, "", ui.SpinnerStyle.Render(spinnerFrames[m.spinner])+" Generating questions...")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderQuestionLoop(state workflow.State) string {
	var lines []string
	total := 0
	if state.Session != nil {
		total = len(state.Session.Questions)
	}

	lines = append(lines, renderProgress(len(state.Transcript), total))
	lines = append(lines, "")

	for _, entry := range state.Transcript {
		lines = append(lines, ui.DimStyle.Render("Q: "+entry.Question))
		lines = append(lines, ui.AnswerStyle.Render("A: "+entry.Answer))
	}
	if len(state.Transcript) > 0 {
		lines = append(lines, "")
	}

	if total > 0 && len(state.Transcript) >= total {
		lines = append(lines, ui.PromptStyle.Render("All questions answered. Press Enter to write the article."))
		return strings.Join(lines, "\n")
	}

	if q, ok := m.controller.CurrentQuestion(); ok {
		lines = append(lines, ui.QuestionStyle.Render(fmt.Sprintf("%d. %s", q.Order, q.Question)))
	}

	mode := ui.ModeTextStyle.Render("TEXT")
	hint := "type your answer"
	if state.InputMode == models.InputModeVoice {
		mode = ui.ModeVoiceStyle.Render("VOICE")
		hint = "path to a recorded audio file"
	}
	lines = append(lines, "")
	lines = append(lines, mode+ui.DimStyle.Render(" "+hint))
	lines = append(lines, "> "+ui.InputStyle.Render(m.input)+"█")

	if state.IsLoading {
		lines = append(lines, ui.SpinnerStyle.Render(spinnerFrames[m.spinner])+" Transcribing...")
	}
	return strings.Join(lines, "\n")
}

func renderProgress(answered, total int) string {
	if total == 0 {
		return ""
	}
	filled := answered * progressBarWidth / total
	bar := ui.ProgressFullStyle.Render(strings.Repeat("█", filled)) +
		ui.ProgressEmptyStyle.Render(strings.Repeat("░", progressBarWidth-filled))
	return fmt.Sprintf("%s %d/%d", bar, answered, total)
}

func (m Model) renderGenerating() string {
	return ui.SpinnerStyle.Render(spinnerFrames[m.spinner]) + " Writing your article..."
}

func (m Model) renderArticle(state workflow.State, width int) string {
	if state.Article == nil {
		return ""
	}
	a := state.Article
	body := ui.ArticleBodyStyle.Width(width).Render(a.Content)
	meta := ui.DimStyle.Render(fmt.Sprintf("%d words · %s", a.WordCount, a.ID))
	return lipgloss.JoinVertical(lipgloss.Left,
		ui.ArticleTitleStyle.Render(a.Title),
		body,
		"",
		meta,
	)
}

func (m Model) renderFooter(state workflow.State) string {
	var parts []string
	key := func(k, desc string) {
		parts = append(parts, ui.FooterKeyStyle.Render(k)+ui.FooterDescStyle.Render(" "+desc))
	}

	switch state.Step {
	case workflow.StepTopicEntry:
		key("Enter", "Start")
	case workflow.StepQuestionLoop:
		key("Enter", "Submit")
		key("Tab", "Text/Voice")
	case workflow.StepArticleDisplay:
		key("n", "New interview")
		key("q", "Quit")
	}
	key("Ctrl+R", "Reset")
	key("Ctrl+C", "Quit")

	return strings.Join(parts, "  ")
}
