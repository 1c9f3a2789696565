package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BasavaMaasti/StudyHub/internal/auth"
	"github.com/BasavaMaasti/StudyHub/internal/payment"
	"github.com/BasavaMaasti/StudyHub/internal/repository"
	"github.com/BasavaMaasti/StudyHub/internal/retry"
	"github.com/BasavaMaasti/StudyHub/pkg/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestHandler() *Handler {
	return &Handler{
		Logger:          zap.NewNop(),
		WebhookSecret:   "whsec_test",
		FrontendURL:     "http://localhost:5173",
		ReconcilePolicy: retry.Policy{MaxAttempts: 5, Delay: 0, Sleep: noSleep},
	}
}

func noSleep(context.Context, time.Duration) error { return nil }

func studentClaims() *auth.UserClaims {
	return &auth.UserClaims{
		UserID: uuid.New(),
		Email:  "student@example.com",
		Role:   model.UserRoleStudent,
	}
}

// routerWith registers a single route behind a middleware that injects the
// given claims, mirroring what AuthMiddleware does in production.
func routerWith(claims *auth.UserClaims, method, path string, fn gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Handle(method, path, func(c *gin.Context) {
		if claims != nil {
			c.Set("claims", claims)
		}
	}, fn)
	return r
}

func performJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body == "" {
		buf = bytes.NewBuffer(nil)
	} else {
		buf = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// --- store fakes ---

type fakeUserStore struct {
	createErr error
	created   *model.User
	byEmail   map[string]*model.User
	byID      map[uuid.UUID]*model.User
	enrolled  []uuid.UUID
}

func (f *fakeUserStore) CreateUser(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	u.UserID = uuid.New()
	f.created = u
	return nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) ListEnrolledCourseIDs(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return f.enrolled, nil
}

type fakeCourseStore struct {
	courses  map[uuid.UUID]*model.Course
	lectures []model.Lecture
}

func (f *fakeCourseStore) GetCourseByID(_ context.Context, id uuid.UUID) (*model.Course, error) {
	if c, ok := f.courses[id]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCourseStore) ListLecturesByCourse(context.Context, uuid.UUID) ([]model.Lecture, error) {
	return f.lectures, nil
}

type fakeInterviewStore struct {
	created     *model.Interview
	createErr   error
	stored      *model.Interview
	getErr      error
	updated     *model.Interview
	updateErr   error
	listResult  []model.Interview
	listTotal   int
	gotLimit    int
	gotOffset   int
	updateCalls int
}

func (f *fakeInterviewStore) CreateInterview(_ context.Context, iv *model.Interview) error {
	if f.createErr != nil {
		return f.createErr
	}
	iv.InterviewID = uuid.New()
	f.created = iv
	return nil
}

func (f *fakeInterviewStore) GetInterviewByID(_ context.Context, id uuid.UUID) (*model.Interview, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.stored, nil
}

func (f *fakeInterviewStore) UpdateEvaluation(_ context.Context, iv *model.Interview) error {
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = iv
	return nil
}

func (f *fakeInterviewStore) ListInterviewsByUser(_ context.Context, _ uuid.UUID, limit, offset int) ([]model.Interview, int, error) {
	f.gotLimit = limit
	f.gotOffset = offset
	return f.listResult, f.listTotal, nil
}

type fakePurchaseStore struct {
	created        *model.Purchase
	createErr      error
	paymentIDSet   string
	completeCalls  int
	completeFn     func(call int) error
	completedWith  struct {
		sessionID string
		localRef  uuid.UUID
		amount    float64
	}
	completedByUser []model.PurchaseWithCourse
	completedOne    *model.Purchase
	allCompleted    []model.PurchaseWithCourse
}

func (f *fakePurchaseStore) CreatePurchase(_ context.Context, p *model.Purchase) error {
	if f.createErr != nil {
		return f.createErr
	}
	p.PurchaseID = uuid.New()
	f.created = p
	return nil
}

func (f *fakePurchaseStore) UpdatePaymentID(_ context.Context, _ uuid.UUID, paymentID string) error {
	f.paymentIDSet = paymentID
	return nil
}

func (f *fakePurchaseStore) CompletePurchase(_ context.Context, sessionID string, localRef uuid.UUID, amount float64) error {
	f.completeCalls++
	if f.completeFn != nil {
		if err := f.completeFn(f.completeCalls); err != nil {
			return err
		}
	}
	f.completedWith.sessionID = sessionID
	f.completedWith.localRef = localRef
	f.completedWith.amount = amount
	return nil
}

func (f *fakePurchaseStore) GetCompletedPurchase(context.Context, uuid.UUID, uuid.UUID) (*model.Purchase, error) {
	if f.completedOne == nil {
		return nil, repository.ErrNotFound
	}
	return f.completedOne, nil
}

func (f *fakePurchaseStore) ListCompletedByUser(context.Context, uuid.UUID) ([]model.PurchaseWithCourse, error) {
	return f.completedByUser, nil
}

func (f *fakePurchaseStore) ListAllCompleted(context.Context) ([]model.PurchaseWithCourse, error) {
	return f.allCompleted, nil
}

// --- workflow fakes ---

type stubGenerator struct {
	questions []model.InterviewQuestion
	source    model.QuestionSource
}

func (s *stubGenerator) Generate(context.Context, string, string, model.ExperienceLevel) ([]model.InterviewQuestion, model.QuestionSource) {
	return s.questions, s.source
}

type stubEvaluator struct {
	called  bool
	answers []string
}

func (s *stubEvaluator) Evaluate(_ context.Context, iv *model.Interview, answers []string) {
	s.called = true
	s.answers = answers
	n := len(answers)
	if len(iv.Questions) < n {
		n = len(iv.Questions)
	}
	for i := 0; i < n; i++ {
		iv.Questions[i].UserAnswer = answers[i]
		iv.Questions[i].Feedback = "stub feedback"
	}
	iv.Status = model.InterviewStatusCompleted
}

type fakeCheckout struct {
	session *payment.CheckoutSession
	err     error
	got     payment.CheckoutParams
	called  bool
}

func (f *fakeCheckout) CreateCheckoutSession(_ context.Context, p payment.CheckoutParams) (*payment.CheckoutSession, error) {
	f.called = true
	f.got = p
	return f.session, f.err
}
