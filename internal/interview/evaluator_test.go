package interview

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BasavaMaasti/StudyHub/pkg/model"
)

func testInterview(n int) *model.Interview {
	questions := make([]model.InterviewQuestion, n)
	for i := range questions {
		questions[i] = model.InterviewQuestion{
			QuestionNumber: i + 1,
			Question:       "Explain the CAP theorem and its implications",
		}
	}
	return &model.Interview{
		Role:            "Backend Engineer",
		ExperienceLevel: model.ExperienceSenior,
		Questions:       questions,
		Status:          model.InterviewStatusCreated,
	}
}

func newTestEvaluator(gen *fakeGen) *Evaluator {
	e := NewEvaluator(gen, zap.NewNop())
	e.Now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

func TestEvaluatePartialAnswersOnly(t *testing.T) {
	gen := &fakeGen{fn: func(_ context.Context, prompt string) (string, error) {
		return "Score: 7\nSolid answer overall.", nil
	}}
	e := newTestEvaluator(gen)

	iv := testInterview(3)
	e.Evaluate(context.Background(), iv, []string{"consistency vs availability"})

	assert.Equal(t, "consistency vs availability", iv.Questions[0].UserAnswer)
	assert.NotEmpty(t, iv.Questions[0].Feedback)
	assert.Equal(t, 7, iv.Questions[0].Score)
	require.NotNil(t, iv.Questions[0].EvaluatedAt)

	// Unanswered questions stay untouched.
	for _, q := range iv.Questions[1:] {
		assert.Empty(t, q.UserAnswer)
		assert.Empty(t, q.Feedback)
		assert.Zero(t, q.Score)
		assert.Nil(t, q.EvaluatedAt)
	}

	// Completion is unconditional.
	assert.Equal(t, model.InterviewStatusCompleted, iv.Status)
	require.NotNil(t, iv.CompletedAt)
}

func TestEvaluateExtraAnswersIgnored(t *testing.T) {
	calls := 0
	gen := &fakeGen{fn: func(_ context.Context, prompt string) (string, error) {
		calls++
		return "fine", nil
	}}
	e := newTestEvaluator(gen)

	iv := testInterview(2)
	e.Evaluate(context.Background(), iv, []string{"a1", "a2", "a3", "a4"})

	// Two per-answer calls plus one summary call.
	assert.Equal(t, 3, calls)
	assert.Len(t, iv.Questions, 2)
}

func TestEvaluatePerItemFailureIsolation(t *testing.T) {
	call := 0
	gen := &fakeGen{fn: func(_ context.Context, prompt string) (string, error) {
		call++
		if call == 2 {
			return "", errors.New("rate limited")
		}
		return "Score: 9\nGood.", nil
	}}
	e := newTestEvaluator(gen)

	iv := testInterview(3)
	e.Evaluate(context.Background(), iv, []string{"a", "b", "c"})

	assert.Equal(t, 9, iv.Questions[0].Score)
	assert.Equal(t, "Evaluation failed - rate limited", iv.Questions[1].Feedback)
	assert.Equal(t, "b", iv.Questions[1].UserAnswer, "the answer survives a failed evaluation")
	assert.Nil(t, iv.Questions[1].EvaluatedAt)
	assert.Equal(t, 9, iv.Questions[2].Score)
	assert.Equal(t, model.InterviewStatusCompleted, iv.Status)
}

func TestEvaluateSummaryFailureWritesSentinel(t *testing.T) {
	gen := &fakeGen{fn: func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "overall feedback") {
			return "", errors.New("model unavailable")
		}
		return "ok then", nil
	}}
	e := newTestEvaluator(gen)

	iv := testInterview(1)
	e.Evaluate(context.Background(), iv, []string{"answer"})

	assert.Equal(t, overallFallback, iv.OverallFeedback)
	assert.Equal(t, model.InterviewStatusCompleted, iv.Status)
}

func TestExtractScore(t *testing.T) {
	cases := []struct {
		text string
		want int
		ok   bool
	}{
		{"Score: 8\nfeedback", 8, true},
		{"1. score - 10", 10, true},
		{"The score: 0 here", 0, true},
		{"Score: 42", 0, false},
		{"no numbers at all", 0, false},
	}
	for _, tc := range cases {
		got, ok := extractScore(tc.text)
		assert.Equal(t, tc.ok, ok, tc.text)
		assert.Equal(t, tc.want, got, tc.text)
	}
}
