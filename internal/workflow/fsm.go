package workflow

import "fmt"

// Step is a screen of the interview workflow.
type Step string

// Event moves the workflow between steps.
type Event string

const (
	StepTopicEntry     Step = "topic-entry"
	StepQuestionLoop   Step = "question-answer-loop"
	StepGenerating     Step = "generating"
	StepArticleDisplay Step = "article-display"
)

const (
	EventQuestionsReady    Event = "questions-ready"
	EventQuestionsFailed   Event = "questions-failed"
	EventInterviewComplete Event = "interview-complete"
	EventArticleReady      Event = "article-ready"
	EventArticleFailed     Event = "article-failed"
	EventReset             Event = "reset"
)

// Transition returns the step reached by applying event to current.
// Reset is accepted from every known step.
func Transition(current Step, event Event) (Step, error) {
	if !current.known() {
		return current, fmt.Errorf("unknown step %q", current)
	}
	if event == EventReset {
		return StepTopicEntry, nil
	}

	switch current {
	case StepTopicEntry:
		switch event {
		case EventQuestionsReady:
			return StepQuestionLoop, nil
		case EventQuestionsFailed:
			return StepTopicEntry, nil
		}
	case StepQuestionLoop:
		switch event {
		case EventInterviewComplete:
			return StepGenerating, nil
		}
	case StepGenerating:
		switch event {
		case EventArticleReady:
			return StepArticleDisplay, nil
		case EventArticleFailed:
			return StepQuestionLoop, nil
		}
	}
	return current, invalidTransition(current, event)
}

func (s Step) known() bool {
	switch s {
	case StepTopicEntry, StepQuestionLoop, StepGenerating, StepArticleDisplay:
		return true
	default:
		return false
	}
}

func invalidTransition(step Step, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", step, event)
}
