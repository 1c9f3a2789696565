package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ExperienceLevel string

const (
	ExperienceEntry  ExperienceLevel = "Entry"
	ExperienceMid    ExperienceLevel = "Mid"
	ExperienceSenior ExperienceLevel = "Senior"
)

type InterviewStatus string

const (
	InterviewStatusCreated    InterviewStatus = "created"
	InterviewStatusInProgress InterviewStatus = "in-progress" // reserved, not set by the current flow
	InterviewStatusCompleted  InterviewStatus = "completed"
)

// QuestionSource records whether the question set came from the generative
// API or the static local bank.
type QuestionSource string

const (
	SourceGenerated QuestionSource = "generated"
	SourceFallback  QuestionSource = "fallback"
)

type InterviewQuestion struct {
	QuestionNumber int        `json:"questionNumber"`
	Question       string     `json:"question"`
	UserAnswer     string     `json:"userAnswer"`
	Feedback       string     `json:"feedback"`
	Score          int        `json:"score"`
	EvaluatedAt    *time.Time `json:"evaluatedAt,omitempty"`
}

type Interview struct {
	InterviewID     uuid.UUID           `json:"interview_id" db:"interview_id"`
	UserID          uuid.UUID           `json:"user_id" db:"user_id"`
	Role            string              `json:"role" db:"role"`
	TechStack       string              `json:"tech_stack" db:"tech_stack"`
	ExperienceLevel ExperienceLevel     `json:"experience_level" db:"experience_level"`
	Questions       []InterviewQuestion `json:"questions" db:"questions"`
	OverallFeedback string              `json:"overall_feedback" db:"overall_feedback"`
	Status          InterviewStatus     `json:"status" db:"status"`
	Source          QuestionSource      `json:"source" db:"source"`
	DurationMinutes int                 `json:"duration_minutes" db:"duration_minutes"`
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty" db:"completed_at"`
}

type CreateInterviewReq struct {
	Role            string          `json:"role"`
	TechStack       string          `json:"techStack"`
	ExperienceLevel ExperienceLevel `json:"experienceLevel"`
}

// Validate returns one message per invalid field so clients can surface them
// next to the matching form input.
func (r *CreateInterviewReq) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Role) == "" {
		errs = append(errs, "Role is required")
	}
	if strings.TrimSpace(r.TechStack) == "" {
		errs = append(errs, "Tech stack is required")
	}
	switch r.ExperienceLevel {
	case ExperienceEntry, ExperienceMid, ExperienceSenior:
	default:
		errs = append(errs, "Experience level must be Entry, Mid, or Senior")
	}
	return errs
}

type EvaluateInterviewReq struct {
	InterviewID string   `json:"interviewId"`
	Answers     []string `json:"answers"`
}

type ListInterviewsRes struct {
	Interviews []Interview `json:"interviews"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Pages      int         `json:"pages"`
	Limit      int         `json:"limit"`
}
