package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/questguide/questguide-backend/internal/middleware"
	"github.com/questguide/questguide-backend/internal/model"
	"github.com/questguide/questguide-backend/internal/response"
	"github.com/questguide/questguide-backend/internal/service"
	"github.com/questguide/questguide-backend/internal/validator"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

var (
	adminUser   = &model.User{ID: uuid.New(), Name: "Admin", Email: "admin@x.com", Role: model.RoleAdmin}
	studentUser = &model.User{ID: uuid.New(), Name: "Stu", Email: "stu@x.com", Role: model.RoleStudent}
)

// newEngine returns an engine with the production error pipeline. A non-nil
// user is injected as if Protect had run.
func newEngine(user *model.User) *gin.Engine {
	r := gin.New()
	r.Use(response.RequestIDMiddleware(), middleware.ErrorHandler(zerolog.Nop(), ClassifyError))
	if user != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextKeyUser, user)
			c.Set(middleware.ContextKeyClaims, &service.Claims{Role: user.Role})
			c.Next()
		})
	}
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status  string              `json:"status"`
	Results *int                `json:"results"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorBody `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return env
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code response.ErrCode) envelope {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	env := decode(t, w)
	if env.Error == nil || env.Error.Code != code {
		t.Fatalf("error = %+v, want %s", env.Error, code)
	}
	return env
}

type stubAuthService struct {
	signup    func(model.SignupRequest) (*model.AuthResponse, error)
	login     func(model.LoginRequest) (*model.AuthResponse, error)
	updateMe  func(*model.User, model.UpdateMeRequest) (*model.User, string, error)
	loggedOut *service.Claims
}

func (s *stubAuthService) Signup(_ context.Context, req model.SignupRequest) (*model.AuthResponse, error) {
	return s.signup(req)
}

func (s *stubAuthService) Login(_ context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	return s.login(req)
}

func (s *stubAuthService) Logout(_ context.Context, claims *service.Claims) error {
	s.loggedOut = claims
	return nil
}

func (s *stubAuthService) UpdateMe(_ context.Context, u *model.User, req model.UpdateMeRequest) (*model.User, string, error) {
	return s.updateMe(u, req)
}

type stubTestService struct {
	tests      map[uuid.UUID]*model.Test
	submitted  *model.SubmitTestRequest
	deleted    []uuid.UUID
	deleteErr  error
	resultList []model.TestResultWithTitle
}

func newStubTestService(tests ...*model.Test) *stubTestService {
	s := &stubTestService{tests: make(map[uuid.UUID]*model.Test)}
	for _, t := range tests {
		s.tests[t.ID] = t
	}
	return s
}

func (s *stubTestService) List(_ context.Context, _ *model.User) ([]model.PublicTest, error) {
	out := []model.PublicTest{}
	for _, t := range s.tests {
		out = append(out, t.Public())
	}
	return out, nil
}

func (s *stubTestService) Create(_ context.Context, creator *model.User, req model.CreateTestRequest) (*model.Test, error) {
	t := &model.Test{ID: uuid.New(), Title: req.Title, TotalMarks: req.TotalMarks, PassingMarks: req.PassingMarks, CreatedBy: creator.ID}
	s.tests[t.ID] = t
	return t, nil
}

func (s *stubTestService) Get(_ context.Context, id uuid.UUID) (*model.Test, error) {
	t, ok := s.tests[id]
	if !ok {
		return nil, service.ErrTestNotFound
	}
	return t, nil
}

func (s *stubTestService) Update(ctx context.Context, _ *model.User, id uuid.UUID, req model.UpdateTestRequest) (*model.Test, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	return t, nil
}

func (s *stubTestService) Delete(ctx context.Context, _ *model.User, id uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	s.deleted = append(s.deleted, id)
	delete(s.tests, id)
	return nil
}

func (s *stubTestService) Stats(ctx context.Context, id uuid.UUID) (*model.TestStats, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return &model.TestStats{Attempts: 2, AverageScore: 75, MaxScore: 100, MinScore: 50, PassCount: 1, PassRate: 50}, nil
}

func (s *stubTestService) Submit(ctx context.Context, student *model.User, id uuid.UUID, req model.SubmitTestRequest) (*model.SubmitResponse, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.submitted = &req
	g, err := service.Grade(t, req.Answers)
	if err != nil {
		return nil, err
	}
	return &model.SubmitResponse{
		TestResult:  &model.TestResult{ID: uuid.New(), StudentID: student.ID, TestID: t.ID, Score: g.Percentage, Answers: g.Answers},
		TestDetails: &model.TestDetails{Title: t.Title, TotalQuestions: len(t.Questions), MarksObtained: g.MarksObtained, Percentage: g.Percentage, Passed: g.Passed, Answers: g.Review},
	}, nil
}

func (s *stubTestService) Results(context.Context, *model.User) ([]model.TestResultWithTitle, error) {
	return s.resultList, nil
}
