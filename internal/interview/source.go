package interview

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/BasavaMaasti/StudyHub/internal/genai"
	"github.com/BasavaMaasti/StudyHub/pkg/model"
)

// Static question banks used when the generative call fails or returns
// degenerate output.
var localQuestions = map[string][]string{
	"junior": {
		"Explain the difference between let, const, and var in JavaScript",
		"What is React and why would you use it?",
		"How would you center a div in CSS?",
		"Explain RESTful APIs",
		"What is the virtual DOM in React?",
	},
	"mid": {
		"Explain the React component lifecycle",
		"How would you optimize a slow React application?",
		"Describe your approach to state management",
		"Explain the difference between SQL and NoSQL databases",
		"How would you implement authentication in a web app?",
	},
	"senior": {
		"Design a scalable microservice architecture",
		"Explain the CAP theorem and its implications",
		"How would you handle a major production outage?",
		"Design a caching strategy for a high-traffic application",
		"Explain event sourcing and CQRS patterns",
	},
}

var enumPrefix = regexp.MustCompile(`^\d+\.\s*`)

// minQuestionLen mirrors the persistence rule: question text shorter than 10
// characters is never stored, so such lines count toward falling back.
const minQuestionLen = 10

// QuestionSource produces interview questions, preferring the generative API
// and falling back to the local bank on any failure. It never returns an
// error to its caller.
type QuestionSource struct {
	Gen    genai.TextGenerator
	Logger *zap.Logger
}

// Generate returns an ordered, non-empty question set for the given inputs
// together with its provenance.
func (s *QuestionSource) Generate(ctx context.Context, role, techStack string, level model.ExperienceLevel) ([]model.InterviewQuestion, model.QuestionSource) {
	prompt := fmt.Sprintf("Generate 5 %s level questions for %s (%s)", level, role, techStack)

	text, err := s.Gen.GenerateContent(ctx, prompt)
	if err == nil {
		questions := parseQuestions(text)
		if len(questions) >= 3 {
			return questions, model.SourceGenerated
		}
		err = fmt.Errorf("insufficient questions: got %d", len(questions))
	}

	s.Logger.Sugar().Warnw("generative call failed, using local questions", "err", err)
	return fallbackQuestions(level), model.SourceFallback
}

// parseQuestions splits model output into numbered questions. Lines whose
// text falls under minQuestionLen once the numbering prefix is stripped are
// treated as noise.
func parseQuestions(text string) []model.InterviewQuestion {
	var out []model.InterviewQuestion
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		q := strings.TrimSpace(enumPrefix.ReplaceAllString(trimmed, ""))
		if len(q) < minQuestionLen {
			continue
		}
		out = append(out, model.InterviewQuestion{
			QuestionNumber: len(out) + 1,
			Question:       q,
		})
	}
	return out
}

func fallbackQuestions(level model.ExperienceLevel) []model.InterviewQuestion {
	key := "junior"
	lower := strings.ToLower(string(level))
	switch {
	case strings.Contains(lower, "senior"):
		key = "senior"
	case strings.Contains(lower, "mid"):
		key = "mid"
	}

	bank := localQuestions[key]
	out := make([]model.InterviewQuestion, len(bank))
	for i, q := range bank {
		out[i] = model.InterviewQuestion{QuestionNumber: i + 1, Question: q}
	}
	return out
}
