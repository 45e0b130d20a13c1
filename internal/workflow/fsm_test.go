package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionHappyPath(t *testing.T) {
	s := StepTopicEntry

	next, err := Transition(s, EventQuestionsReady)
	require.NoError(t, err)
	require.Equal(t, StepQuestionLoop, next)

	next, err = Transition(next, EventInterviewComplete)
	require.NoError(t, err)
	require.Equal(t, StepGenerating, next)

	next, err = Transition(next, EventArticleReady)
	require.NoError(t, err)
	require.Equal(t, StepArticleDisplay, next)

	next, err = Transition(next, EventReset)
	require.NoError(t, err)
	require.Equal(t, StepTopicEntry, next)
}

func TestTransitionResetFromAnyStep(t *testing.T) {
	steps := []Step{StepTopicEntry, StepQuestionLoop, StepGenerating, StepArticleDisplay}
	for _, step := range steps {
		next, err := Transition(step, EventReset)
		require.NoError(t, err)
		require.Equal(t, StepTopicEntry, next)
	}
}

func TestTransitionMatrix(t *testing.T) {
	tests := []struct {
		name    string
		step    Step
		event   Event
		want    Step
		wantErr bool
	}{
		{name: "questions failed stays on topic", step: StepTopicEntry, event: EventQuestionsFailed, want: StepTopicEntry},
		{name: "topic complete invalid", step: StepTopicEntry, event: EventInterviewComplete, want: StepTopicEntry, wantErr: true},
		{name: "topic article ready invalid", step: StepTopicEntry, event: EventArticleReady, want: StepTopicEntry, wantErr: true},
		{name: "loop questions ready invalid", step: StepQuestionLoop, event: EventQuestionsReady, want: StepQuestionLoop, wantErr: true},
		{name: "loop article ready invalid", step: StepQuestionLoop, event: EventArticleReady, want: StepQuestionLoop, wantErr: true},
		{name: "article failed returns to loop", step: StepGenerating, event: EventArticleFailed, want: StepQuestionLoop},
		{name: "generating questions ready invalid", step: StepGenerating, event: EventQuestionsReady, want: StepGenerating, wantErr: true},
		{name: "display article failed invalid", step: StepArticleDisplay, event: EventArticleFailed, want: StepArticleDisplay, wantErr: true},
		{name: "display complete invalid", step: StepArticleDisplay, event: EventInterviewComplete, want: StepArticleDisplay, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.step, tc.event)
			require.Equal(t, tc.want, next)
			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), "invalid transition")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTransitionUnknownStep(t *testing.T) {
	next, err := Transition(Step("mystery"), EventReset)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown step")
	require.Equal(t, Step("mystery"), next)
}
