package interview

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BasavaMaasti/StudyHub/internal/genai"
	"github.com/BasavaMaasti/StudyHub/pkg/model"
)

const overallFallback = "Overall evaluation failed"

var scoreLine = regexp.MustCompile(`(?i)\bscore\b\s*[:\-]?\s*(\d{1,2})\b`)

// Evaluator scores submitted answers against a stored interview. Evaluation
// is best-effort: a failed generative call for one answer writes sentinel
// feedback and never aborts the rest, and the interview always finishes in
// the completed state.
type Evaluator struct {
	Gen    genai.TextGenerator
	Logger *zap.Logger
	Now    func() time.Time
}

func NewEvaluator(gen genai.TextGenerator, log *zap.Logger) *Evaluator {
	return &Evaluator{Gen: gen, Logger: log, Now: time.Now}
}

// Evaluate fills in answers, feedback and scores on iv in place. Extra
// answers beyond the stored question count are ignored.
func (e *Evaluator) Evaluate(ctx context.Context, iv *model.Interview, answers []string) {
	n := len(answers)
	if len(iv.Questions) < n {
		n = len(iv.Questions)
	}

	for i := 0; i < n; i++ {
		prompt := fmt.Sprintf(`Evaluate this technical interview answer (1-10 scale):
Question: %s
Answer: %s

Provide:
1. A score from 1-10
2. Technical accuracy feedback
3. Suggestions for improvement
4. Example better answer`, iv.Questions[i].Question, answers[i])

		iv.Questions[i].UserAnswer = answers[i]

		text, err := e.Gen.GenerateContent(ctx, prompt)
		if err != nil {
			e.Logger.Sugar().Errorw("failed to evaluate question", "index", i, "err", err)
			iv.Questions[i].Feedback = "Evaluation failed - " + err.Error()
			continue
		}

		now := e.Now()
		iv.Questions[i].Feedback = text
		iv.Questions[i].EvaluatedAt = &now
		if score, ok := extractScore(text); ok {
			iv.Questions[i].Score = score
		}
	}

	summaryPrompt := fmt.Sprintf("Provide overall feedback for this %s level %s interview.", iv.ExperienceLevel, iv.Role)
	summary, err := e.Gen.GenerateContent(ctx, summaryPrompt)
	if err != nil {
		e.Logger.Sugar().Errorw("failed to generate summary", "err", err)
		summary = overallFallback
	}
	iv.OverallFeedback = summary

	completed := e.Now()
	iv.Status = model.InterviewStatusCompleted
	iv.CompletedAt = &completed
}

// extractScore pulls a "Score: N" style value out of feedback text. Values
// outside 0-10 are discarded.
func extractScore(text string) (int, bool) {
	m := scoreLine.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(m[1]))
	if err != nil || n < 0 || n > 10 {
		return 0, false
	}
	return n, true
}
