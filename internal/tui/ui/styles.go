package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF5F5F")
	ColorGreen   = lipgloss.Color("#5FD787")
	ColorYellow  = lipgloss.Color("#FFD75F")
	ColorCyan    = lipgloss.Color("#5FD7FF")
	ColorGray    = lipgloss.Color("#767676")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
	ColorMagenta = lipgloss.Color("#D75FD7")
)

// Base styles reused by the interview screens.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	StepStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	PromptStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	QuestionStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	AnswerStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	InputStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	ModeTextStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	ModeVoiceStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true)

	ProgressFullStyle = lipgloss.NewStyle().
				Foreground(ColorGreen)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(ColorDimGray)

	ArticleTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorCyan).
				MarginBottom(1)

	ArticleBodyStyle = lipgloss.NewStyle().
				Foreground(ColorWhite)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)
)
