package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/smartquizzer/quizzer-backend/internal/model"
	"github.com/smartquizzer/quizzer-backend/internal/response"
	ws "github.com/smartquizzer/quizzer-backend/internal/websocket"
)

func dialStream(t *testing.T, quizzes *stubQuizzes, quizID string) (*websocket.Conn, *httptest.Server) {
	t.Helper()

	h := NewWSHandler(quizzes, zerolog.Nop(), nil)
	r := newTestRouter(func(r gin.IRoutes) { r.GET("/ws/v1/quiz/:id/stream", h.QuizStream) })
	srv := httptest.NewServer(r)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/quiz/" + quizID + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, srv
}

func TestQuizStream(t *testing.T) {
	quizzes := &stubQuizzes{complete: &model.QuizResults{Score: 100, Accuracy: 100, CorrectAnswers: 1, TotalQuestions: 1}}
	conn, srv := dialStream(t, quizzes, "3")
	defer srv.Close()
	defer conn.Close()

	steps := []struct {
		send      ws.RequestPayload
		wantEvent ws.Event
	}{
		{ws.RequestPayload{Action: ws.ActionPing}, ws.EventPong},
		{ws.RequestPayload{Action: ws.ActionAnswer, QuestionID: 9, UserAnswer: "Paris"}, ws.EventAnswered},
		{ws.RequestPayload{Action: ws.ActionAnswer}, ws.EventError},
		{ws.RequestPayload{Action: "dance"}, ws.EventError},
		{ws.RequestPayload{Action: ws.ActionComplete}, ws.EventCompleted},
	}

	for _, step := range steps {
		if err := conn.WriteJSON(step.send); err != nil {
			t.Fatalf("write %s: %v", step.send.Action, err)
		}
		var got ws.ResponsePayload
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("read after %s: %v", step.send.Action, err)
		}
		if got.Event != step.wantEvent {
			t.Fatalf("after %q expected %s, got %+v", step.send.Action, step.wantEvent, got)
		}
	}

	// The server closes the stream after completion.
	var extra ws.ResponsePayload
	if err := conn.ReadJSON(&extra); err == nil {
		t.Fatalf("expected closed stream, got %+v", extra)
	}
}

func TestQuizStreamValidatesAnswers(t *testing.T) {
	quizzes := &stubQuizzes{}
	conn, srv := dialStream(t, quizzes, "3")
	defer srv.Close()
	defer conn.Close()

	negative := -1
	tests := []struct {
		name string
		send ws.RequestPayload
	}{
		{"negative time", ws.RequestPayload{Action: ws.ActionAnswer, QuestionID: 9, UserAnswer: "Paris", TimeTakenSeconds: &negative}},
		{"overlong answer", ws.RequestPayload{Action: ws.ActionAnswer, QuestionID: 9, UserAnswer: strings.Repeat("a", 501)}},
		{"missing question", ws.RequestPayload{Action: ws.ActionAnswer, QuestionID: -3, UserAnswer: "Paris"}},
	}

	for _, tt := range tests {
		if err := conn.WriteJSON(tt.send); err != nil {
			t.Fatalf("%s: write: %v", tt.name, err)
		}
		var got ws.ResponsePayload
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("%s: read: %v", tt.name, err)
		}
		if got.Event != ws.EventError {
			t.Fatalf("%s: expected %s, got %+v", tt.name, ws.EventError, got)
		}
		if got.Error == response.GetMessage(response.ErrInternal) {
			t.Errorf("%s: expected a validation message, got %q", tt.name, got.Error)
		}
	}
	if n := quizzes.submitted.Load(); n != 0 {
		t.Fatalf("expected no submissions for invalid answers, got %d", n)
	}

	zero := 0
	if err := conn.WriteJSON(ws.RequestPayload{Action: ws.ActionAnswer, QuestionID: 9, UserAnswer: "Paris", TimeTakenSeconds: &zero}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got ws.ResponsePayload
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Event != ws.EventAnswered {
		t.Fatalf("expected %s, got %+v", ws.EventAnswered, got)
	}
	if n := quizzes.submitted.Load(); n != 1 {
		t.Errorf("expected one submission, got %d", n)
	}
}

func TestQuizStreamRejectsBeforeUpgrade(t *testing.T) {
	tests := []struct {
		name       string
		quizID     string
		status     model.SessionStatus
		wantStatus int
	}{
		{"unknown quiz", "404", "", http.StatusNotFound},
		{"completed quiz", "3", model.SessionStatusCompleted, http.StatusConflict},
		{"bad id", "x", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewWSHandler(&stubQuizzes{getStatus: tt.status}, zerolog.Nop(), nil)
			r := newTestRouter(func(r gin.IRoutes) { r.GET("/ws/v1/quiz/:id/stream", h.QuizStream) })
			srv := httptest.NewServer(r)
			defer srv.Close()

			url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/quiz/" + tt.quizID + "/stream"
			_, resp, err := websocket.DefaultDialer.Dial(url, nil)
			if err == nil {
				t.Fatal("expected handshake failure")
			}
			if resp == nil || resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected status %d, got %v", tt.wantStatus, resp)
			}
		})
	}
}
