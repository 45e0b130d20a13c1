package tui

// QuestionsReadyMsg is sent when the topic submission finishes.
type QuestionsReadyMsg struct {
	Err error
}

// VoiceAnsweredMsg is sent when a recorded answer was transcribed and submitted.
type VoiceAnsweredMsg struct {
	Complete bool
	Err      error
}

// ArticleReadyMsg is sent when article generation finishes.
type ArticleReadyMsg struct {
	Err error
}

// SpinnerTickMsg advances the loading indicator.
type SpinnerTickMsg struct{}
