package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/smartquizzer/quizzer-backend/internal/service"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(tokenStr string) (*service.Claims, error) {
	if tokenStr != "good" {
		return nil, errors.New("bad token")
	}
	return &service.Claims{UserID: 7, Username: "alice"}, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequireUserJWT(t *testing.T) {
	r := gin.New()
	r.GET("/me", RequireUserJWT(stubValidator{}), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", GetClaims(c).UserID)
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if w.Code == http.StatusOK && w.Body.String() != "7" {
				t.Errorf("expected claims for user 7, got %q", w.Body.String())
			}
		})
	}
}

func TestRequireWSAuth(t *testing.T) {
	r := gin.New()
	r.GET("/ws", RequireWSAuth(stubValidator{}), func(c *gin.Context) { c.Status(http.StatusOK) })

	for query, want := range map[string]int{
		"":            http.StatusUnauthorized,
		"?token=bad":  http.StatusUnauthorized,
		"?token=good": http.StatusOK,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws"+query, nil))
		if w.Code != want {
			t.Errorf("%q: expected %d, got %d", query, want, w.Code)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 2, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	want := []bool{true, true, false}
	for i, w := range want {
		if got := rl.allow("1.2.3.4"); got != w {
			t.Fatalf("request %d: expected %v, got %v", i, w, got)
		}
	}
	if !rl.allow("5.6.7.8") {
		t.Fatal("other IPs have their own bucket")
	}

	now = now.Add(time.Minute)
	if !rl.allow("1.2.3.4") {
		t.Fatal("expected refill after interval")
	}

	now = now.Add(10 * time.Minute)
	rl.cleanup()
	if len(rl.visitors) != 0 {
		t.Errorf("expected stale visitors swept, %d left", len(rl.visitors))
	}
}

func TestBrotli(t *testing.T) {
	large := strings.Repeat("quiz ", 500)
	r := gin.New()
	r.Use(Brotli("/metrics"))
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/large", func(c *gin.Context) { c.Data(http.StatusOK, "text/plain", []byte(large)) })
	r.GET("/metrics", func(c *gin.Context) { c.Data(http.StatusOK, "text/plain", []byte(large)) })

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Accept-Encoding", "gzip, br")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := get("/small"); w.Header().Get("Content-Encoding") != "" || w.Body.String() != "ok" {
		t.Errorf("small body should pass through, got %q", w.Body.String())
	}
	if w := get("/metrics"); w.Header().Get("Content-Encoding") != "" {
		t.Error("skipped path should not be compressed")
	}

	w := get("/large")
	if w.Header().Get("Content-Encoding") != "br" {
		t.Fatal("expected brotli encoding for large body")
	}
	body, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != large {
		t.Error("decompressed body mismatch")
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/quiz/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/quiz/9", nil))

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"path":"/quiz/:id"`, `"status":404`, `"component":"http"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}
