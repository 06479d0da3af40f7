package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/smartquizzer/quizzer-backend/internal/middleware"
	"github.com/smartquizzer/quizzer-backend/internal/model"
	"github.com/smartquizzer/quizzer-backend/internal/response"
	"github.com/smartquizzer/quizzer-backend/internal/service"
	"github.com/smartquizzer/quizzer-backend/internal/validator"
)

const testUserID int64 = 42

type stubQuizzes struct {
	createReq model.GenerateQuizRequest
	submitErr error
	submitted atomic.Int32
	complete  *model.QuizResults
	getStatus model.SessionStatus
	abandoned []int64
}

func (s *stubQuizzes) Create(_ context.Context, userID int64, req model.GenerateQuizRequest) (*model.QuizWithQuestions, error) {
	s.createReq = req
	return &model.QuizWithQuestions{QuizSession: model.QuizSession{ID: 1, UserID: userID, Status: model.SessionStatusInProgress}}, nil
}

func (s *stubQuizzes) Get(_ context.Context, quizID, userID int64) (*model.QuizWithQuestions, error) {
	if quizID == 404 {
		return nil, service.ErrNotFound
	}
	status := s.getStatus
	if status == "" {
		status = model.SessionStatusInProgress
	}
	return &model.QuizWithQuestions{QuizSession: model.QuizSession{ID: quizID, UserID: userID, Status: status}}, nil
}

func (s *stubQuizzes) History(context.Context, int64, int, int) ([]model.QuizSession, error) {
	return []model.QuizSession{}, nil
}

func (s *stubQuizzes) SubmitAnswer(_ context.Context, _, _ int64, req model.SubmitAnswerRequest) (*model.AnswerResult, error) {
	s.submitted.Add(1)
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return &model.AnswerResult{IsCorrect: req.UserAnswer == "Paris", CorrectAnswer: "Paris", NextDifficulty: model.DifficultyMedium}, nil
}

func (s *stubQuizzes) Complete(_ context.Context, _, quizID int64) (*model.QuizResults, error) {
	if s.complete == nil {
		return nil, service.ErrSessionCompleted
	}
	r := *s.complete
	r.QuizID = quizID
	return &r, nil
}

func (s *stubQuizzes) Abandon(_ context.Context, _, quizID int64) error {
	s.abandoned = append(s.abandoned, quizID)
	return nil
}

// newTestRouter mounts routes behind a middleware that injects claims for
// testUserID, standing in for RequireUserJWT.
func newTestRouter(register func(r gin.IRoutes)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.Setup()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyClaims, &service.Claims{UserID: testUserID, Username: "alice"})
		c.Next()
	})
	register(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, w.Body.String())
	}
	return w, env
}

func TestQuizHandlerGenerate(t *testing.T) {
	quizzes := &stubQuizzes{}
	h := NewQuizHandler(quizzes)
	r := newTestRouter(func(r gin.IRoutes) { r.POST("/quiz/generate", h.Generate) })

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   response.ErrCode
	}{
		{"valid", gin.H{"content_id": 7, "num_questions": 5, "difficulty": "hard"}, http.StatusCreated, ""},
		{"missing content id", gin.H{"num_questions": 5}, http.StatusBadRequest, response.ErrValidation},
		{"bad difficulty", gin.H{"content_id": 7, "difficulty": "extreme"}, http.StatusBadRequest, response.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, r, http.MethodPost, "/quiz/generate", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantCode == "" {
				if env.Error != nil {
					t.Fatalf("unexpected error body %+v", env.Error)
				}
				return
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Fatalf("expected code %s, got %+v", tt.wantCode, env.Error)
			}
		})
	}

	if quizzes.createReq.Difficulty != model.DifficultyHard || quizzes.createReq.ContentID != 7 {
		t.Errorf("request not passed through: %+v", quizzes.createReq)
	}
}

func TestQuizHandlerSubmitAnswerErrors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
		wantCode   response.ErrCode
	}{
		{"ok", "/quiz/3/submit-answer", nil, http.StatusOK, ""},
		{"bad id", "/quiz/abc/submit-answer", nil, http.StatusBadRequest, response.ErrInvalidID},
		{"not found", "/quiz/3/submit-answer", service.ErrNotFound, http.StatusNotFound, response.ErrNotFound},
		{"duplicate", "/quiz/3/submit-answer", service.ErrAlreadyAnswered, http.StatusConflict, response.ErrAlreadyAnswered},
		{"completed", "/quiz/3/submit-answer", service.ErrSessionCompleted, http.StatusConflict, response.ErrQuizCompleted},
		{"abandoned", "/quiz/3/submit-answer", service.ErrSessionClosed, http.StatusConflict, response.ErrQuizAbandoned},
		{"unexpected", "/quiz/3/submit-answer", errors.New("db down"), http.StatusInternalServerError, response.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewQuizHandler(&stubQuizzes{submitErr: tt.err})
			r := newTestRouter(func(r gin.IRoutes) { r.POST("/quiz/:id/submit-answer", h.SubmitAnswer) })

			w, env := doJSON(t, r, http.MethodPost, tt.path, gin.H{"question_id": 9, "user_answer": "Paris"})
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantCode != "" && (env.Error == nil || env.Error.Code != tt.wantCode) {
				t.Fatalf("expected code %s, got %+v", tt.wantCode, env.Error)
			}
		})
	}
}

func TestQuizHandlerComplete(t *testing.T) {
	quizzes := &stubQuizzes{complete: &model.QuizResults{Score: 80, Accuracy: 80, CorrectAnswers: 4, TotalQuestions: 5}}
	h := NewQuizHandler(quizzes)
	r := newTestRouter(func(r gin.IRoutes) {
		r.POST("/quiz/:id/complete", h.Complete)
		r.POST("/quiz/:id/abandon", h.Abandon)
	})

	w, env := doJSON(t, r, http.MethodPost, "/quiz/5/complete", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data, _ := env.Data.(map[string]interface{})
	if data["quiz_id"] != float64(5) || data["score"] != float64(80) {
		t.Errorf("unexpected results %v", data)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/quiz/5/abandon", nil)
	if w.Code != http.StatusOK || len(quizzes.abandoned) != 1 || quizzes.abandoned[0] != 5 {
		t.Errorf("abandon not forwarded: status %d, calls %v", w.Code, quizzes.abandoned)
	}
}

func TestPaginationValidation(t *testing.T) {
	h := NewQuizHandler(&stubQuizzes{})
	r := newTestRouter(func(r gin.IRoutes) { r.GET("/quiz/history", h.History) })

	tests := []struct {
		query      string
		wantStatus int
	}{
		{"", http.StatusOK},
		{"?skip=10&limit=5", http.StatusOK},
		{"?skip=-1", http.StatusBadRequest},
		{"?limit=0", http.StatusBadRequest},
		{"?limit=ten", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w, _ := doJSON(t, r, http.MethodGet, "/quiz/history"+tt.query, nil)
		if w.Code != tt.wantStatus {
			t.Errorf("%q: expected %d, got %d", tt.query, tt.wantStatus, w.Code)
		}
	}
}

type stubAuth struct {
	registerErr error
}

func (s *stubAuth) Register(_ context.Context, req model.RegisterRequest) (*model.User, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &model.User{ID: 1, Username: req.Username, Email: req.Email}, nil
}

func (s *stubAuth) Login(_ context.Context, req model.LoginRequest) (string, *model.User, error) {
	if req.Password != "correct-horse" {
		return "", nil, service.ErrInvalidCredentials
	}
	return "signed", &model.User{ID: 1, Username: req.Username}, nil
}

func (s *stubAuth) Me(_ context.Context, userID int64) (*model.User, error) {
	return &model.User{ID: userID, Username: "alice"}, nil
}

func (s *stubAuth) GenerateToken(*model.User) (string, error) { return "signed", nil }

func TestAuthHandler(t *testing.T) {
	register := gin.H{"username": "alice", "email": "alice@example.com", "password": "correct-horse"}

	tests := []struct {
		name       string
		auth       *stubAuth
		method     string
		path       string
		body       interface{}
		wantStatus int
	}{
		{"register", &stubAuth{}, http.MethodPost, "/auth/register", register, http.StatusCreated},
		{"register taken", &stubAuth{registerErr: service.ErrUsernameTaken}, http.MethodPost, "/auth/register", register, http.StatusConflict},
		{"register short password", &stubAuth{}, http.MethodPost, "/auth/register", gin.H{"username": "alice", "email": "alice@example.com", "password": "short"}, http.StatusBadRequest},
		{"login", &stubAuth{}, http.MethodPost, "/auth/login", gin.H{"username": "alice", "password": "correct-horse"}, http.StatusOK},
		{"login wrong password", &stubAuth{}, http.MethodPost, "/auth/login", gin.H{"username": "alice", "password": "nope"}, http.StatusUnauthorized},
		{"me", &stubAuth{}, http.MethodGet, "/auth/me", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(tt.auth)
			r := newTestRouter(func(r gin.IRoutes) {
				r.POST("/auth/register", h.Register)
				r.POST("/auth/login", h.Login)
				r.GET("/auth/me", h.Me)
			})

			w, env := doJSON(t, r, tt.method, tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if w.Code < 300 {
				data, _ := env.Data.(map[string]interface{})
				if tt.path != "/auth/me" && data["access_token"] != "signed" {
					t.Errorf("expected token in %v", data)
				}
			}
		})
	}
}

func TestMissingClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAuthHandler(&stubAuth{})
	r.GET("/auth/me", h.Me)

	w, env := doJSON(t, r, http.MethodGet, "/auth/me", nil)
	if w.Code != http.StatusUnauthorized || env.Error == nil || env.Error.Code != response.ErrTokenRequired {
		t.Fatalf("expected 401 TOKEN_REQUIRED, got %d %+v", w.Code, env.Error)
	}
}
