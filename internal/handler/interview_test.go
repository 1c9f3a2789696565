package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BasavaMaasti/StudyHub/internal/interview"
	"github.com/BasavaMaasti/StudyHub/internal/repository"
	"github.com/BasavaMaasti/StudyHub/pkg/model"
	"github.com/BasavaMaasti/StudyHub/pkg/response"
)

type errGen struct{}

func (errGen) GenerateContent(context.Context, string) (string, error) {
	return "", errors.New("api unavailable")
}

func fiveQuestions() []model.InterviewQuestion {
	qs := make([]model.InterviewQuestion, 5)
	for i := range qs {
		qs[i] = model.InterviewQuestion{QuestionNumber: i + 1, Question: fmt.Sprintf("Question number %d, suitably long", i+1)}
	}
	return qs
}

func TestCreateInterviewValidationErrors(t *testing.T) {
	h := newTestHandler()
	store := &fakeInterviewStore{}
	h.Interviews = store
	h.Questions = &stubGenerator{questions: fiveQuestions(), source: model.SourceGenerated}

	r := routerWith(studentClaims(), http.MethodPost, "/aiinterview", h.CreateInterview)
	rec := performJSON(r, http.MethodPost, "/aiinterview", `{"role":"  ","techStack":"","experienceLevel":"Wizard"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Len(t, env.Errors, 3)
	assert.Nil(t, store.created, "nothing may be persisted on validation failure")
}

func TestCreateInterviewPersistsGeneratedSet(t *testing.T) {
	h := newTestHandler()
	store := &fakeInterviewStore{}
	h.Interviews = store
	h.Questions = &stubGenerator{questions: fiveQuestions(), source: model.SourceGenerated}

	claims := studentClaims()
	r := routerWith(claims, http.MethodPost, "/aiinterview", h.CreateInterview)
	rec := performJSON(r, http.MethodPost, "/aiinterview",
		`{"role":"  Backend Engineer ","techStack":"Go, Postgres","experienceLevel":"Mid"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, store.created)
	assert.Equal(t, claims.UserID, store.created.UserID)
	assert.Equal(t, "Backend Engineer", store.created.Role)
	assert.Equal(t, model.InterviewStatusCreated, store.created.Status)
	assert.Equal(t, model.SourceGenerated, store.created.Source)
	assert.GreaterOrEqual(t, len(store.created.Questions), 1)
}

func TestCreateInterviewFallsBackWhenAPIUnavailable(t *testing.T) {
	h := newTestHandler()
	store := &fakeInterviewStore{}
	h.Interviews = store
	h.Questions = &interview.QuestionSource{Gen: errGen{}, Logger: zap.NewNop()}

	for _, level := range []model.ExperienceLevel{model.ExperienceEntry, model.ExperienceMid, model.ExperienceSenior} {
		r := routerWith(studentClaims(), http.MethodPost, "/aiinterview", h.CreateInterview)
		body := fmt.Sprintf(`{"role":"Dev","techStack":"Go","experienceLevel":"%s"}`, level)
		rec := performJSON(r, http.MethodPost, "/aiinterview", body)

		require.Equal(t, http.StatusCreated, rec.Code, "level %s", level)
		require.NotNil(t, store.created)
		assert.Equal(t, model.SourceFallback, store.created.Source)
		assert.Len(t, store.created.Questions, 5)
	}
}

func TestEvaluateMissingFields(t *testing.T) {
	h := newTestHandler()
	store := &fakeInterviewStore{}
	h.Interviews = store
	h.Evaluator = &stubEvaluator{}

	r := routerWith(studentClaims(), http.MethodPost, "/evaluate", h.EvaluateInterview)
	for _, body := range []string{`{}`, `{"interviewId":"abc"}`, `{"answers":["a"]}`} {
		rec := performJSON(r, http.MethodPost, "/evaluate", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
	assert.Zero(t, store.updateCalls)
}

func TestEvaluateUnknownInterview(t *testing.T) {
	h := newTestHandler()
	store := &fakeInterviewStore{getErr: repository.ErrNotFound}
	h.Interviews = store
	h.Evaluator = &stubEvaluator{}

	r := routerWith(studentClaims(), http.MethodPost, "/evaluate", h.EvaluateInterview)
	body := fmt.Sprintf(`{"interviewId":"%s","answers":["a"]}`, uuid.New())
	rec := performJSON(r, http.MethodPost, "/evaluate", body)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, store.updateCalls, "no writes for an unknown interview")
}

func TestEvaluateOtherUsersInterviewHidden(t *testing.T) {
	h := newTestHandler()
	stored := &model.Interview{
		InterviewID: uuid.New(),
		UserID:      uuid.New(), // different owner
		Questions:   fiveQuestions(),
	}
	store := &fakeInterviewStore{stored: stored}
	h.Interviews = store
	h.Evaluator = &stubEvaluator{}

	r := routerWith(studentClaims(), http.MethodPost, "/evaluate", h.EvaluateInterview)
	body := fmt.Sprintf(`{"interviewId":"%s","answers":["a"]}`, stored.InterviewID)
	rec := performJSON(r, http.MethodPost, "/evaluate", body)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, store.updateCalls)
}

func TestEvaluatePartialAnswersCompleteInterview(t *testing.T) {
	h := newTestHandler()
	claims := studentClaims()
	stored := &model.Interview{
		InterviewID: uuid.New(),
		UserID:      claims.UserID,
		Role:        "Backend Engineer",
		Questions:   fiveQuestions(),
		Status:      model.InterviewStatusCreated,
	}
	store := &fakeInterviewStore{stored: stored}
	h.Interviews = store
	h.Evaluator = &stubEvaluator{}

	r := routerWith(claims, http.MethodPost, "/evaluate", h.EvaluateInterview)
	body := fmt.Sprintf(`{"interviewId":"%s","answers":["first answer","second answer"]}`, stored.InterviewID)
	rec := performJSON(r, http.MethodPost, "/evaluate", body)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, store.updated)
	assert.Equal(t, model.InterviewStatusCompleted, store.updated.Status)
	assert.Equal(t, "first answer", store.updated.Questions[0].UserAnswer)
	assert.Equal(t, "second answer", store.updated.Questions[1].UserAnswer)
	for _, q := range store.updated.Questions[2:] {
		assert.Empty(t, q.Feedback, "unanswered questions keep empty feedback")
	}
}

func TestListInterviewsPaginationClamp(t *testing.T) {
	h := newTestHandler()
	store := &fakeInterviewStore{listTotal: 120}
	h.Interviews = store

	r := routerWith(studentClaims(), http.MethodGet, "/aiinterview", h.ListInterviews)

	rec := performJSON(r, http.MethodGet, "/aiinterview?page=0&limit=1000", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxPageLimit, store.gotLimit)
	assert.Equal(t, 0, store.gotOffset, "page=0 clamps to page 1")

	var env struct {
		Data model.ListInterviewsRes `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 1, env.Data.Page)
	assert.Equal(t, 50, env.Data.Limit)
	assert.Equal(t, 3, env.Data.Pages) // ceil(120/50)

	rec = performJSON(r, http.MethodGet, "/aiinterview?page=3&limit=7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, store.gotLimit)
	assert.Equal(t, 14, store.gotOffset)
}

func TestListInterviewsDefaults(t *testing.T) {
	h := newTestHandler()
	store := &fakeInterviewStore{}
	h.Interviews = store

	r := routerWith(studentClaims(), http.MethodGet, "/aiinterview", h.ListInterviews)
	rec := performJSON(r, http.MethodGet, "/aiinterview", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultPageLimit, store.gotLimit)
	assert.Equal(t, 0, store.gotOffset)
}
