package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"taskpad/api/internal/config"
	"taskpad/api/internal/repository"
	"taskpad/api/internal/service"
	"taskpad/api/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Environment: "test",
		Session: config.SessionConfig{
			TTL:        time.Hour,
			CookieName: "session",
		},
	}
}

// newTestRouter wires the full HTTP surface against in-memory stores.
func newTestRouter(t *testing.T) (*gin.Engine, *session.MemoryStore) {
	t.Helper()

	cfg := testConfig()
	users := repository.NewMemoryUserRepository()
	todos := repository.NewMemoryTodoRepository()
	sessions := session.NewMemoryStore()

	var seq int
	newID := func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}

	authSvc := service.NewAuthService(users, sessions, cfg.Session.TTL, zerolog.Nop(), newID)
	todoSvc := service.NewTodoService(todos, newFakeBlobStore(), zerolog.Nop(), newID)

	engine := gin.New()
	NewHandlerSet(zerolog.Nop(), cfg, authSvc, todoSvc, nil, nil).Register(engine.Group("/api"))
	return engine, sessions
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, body string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if mutate != nil {
		mutate(req)
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "session" {
			return cookie
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestAccountLifecycle(t *testing.T) {
	engine, _ := newTestRouter(t)

	// Create Alice.
	rec := doJSON(t, engine, http.MethodPost, "/api/users",
		`{"name":"Alice","email":"a@x.com","password":"secret123"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user: %d %s", rec.Code, rec.Body.String())
	}

	var created map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created["name"] != "Alice" || created["email"] != "a@x.com" {
		t.Fatalf("create response = %v", created)
	}
	if _, leaked := created["passwordHash"]; leaked {
		t.Fatal("password hash in create response")
	}
	if strings.Contains(rec.Body.String(), "secret123") || strings.Contains(rec.Body.String(), "argon2") {
		t.Fatalf("credential material leaked: %s", rec.Body.String())
	}

	// Login with basic auth; token comes back as a cookie, body stays empty.
	rec = doJSON(t, engine, http.MethodPost, "/api/users/login", "", func(r *http.Request) {
		r.SetBasicAuth("a@x.com", "secret123")
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("login body = %q, want empty", rec.Body.String())
	}
	cookie := sessionCookie(t, rec)
	if cookie.Value == "" {
		t.Fatal("empty session token")
	}
	if !cookie.HttpOnly {
		t.Fatal("session cookie not http-only")
	}

	// The cookie resolves to the same user.
	rec = doJSON(t, engine, http.MethodGet, "/api/users", "", func(r *http.Request) {
		r.AddCookie(cookie)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("current user: %d %s", rec.Code, rec.Body.String())
	}
	var me map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me response: %v", err)
	}
	if me["id"] != created["id"] || me["name"] != "Alice" || me["email"] != "a@x.com" {
		t.Fatalf("me = %v, created = %v", me, created)
	}

	// Logout, then the same cookie is rejected.
	rec = doJSON(t, engine, http.MethodPost, "/api/users/logout", "", func(r *http.Request) {
		r.AddCookie(cookie)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodGet, "/api/users", "", func(r *http.Request) {
		r.AddCookie(cookie)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("after logout: %d, want 401", rec.Code)
	}
}

func TestCreateUserValidation(t *testing.T) {
	engine, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"a@x.com","password":"secret123"}`},
		{"missing email", `{"name":"Alice","password":"secret123"}`},
		{"bad email", `{"name":"Alice","email":"nope","password":"secret123"}`},
		{"short password", `{"name":"Alice","email":"a@x.com","password":"short"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, engine, http.MethodPost, "/api/users", tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("got %d, want 400", rec.Code)
			}
		})
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	engine, _ := newTestRouter(t)

	body := `{"name":"Alice","email":"a@x.com","password":"secret123"}`
	if rec := doJSON(t, engine, http.MethodPost, "/api/users", body, nil); rec.Code != http.StatusCreated {
		t.Fatalf("first create: %d", rec.Code)
	}
	rec := doJSON(t, engine, http.MethodPost, "/api/users", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate create: %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "email") {
		t.Fatalf("duplicate error lacks field detail: %s", rec.Body.String())
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	engine, sessions := newTestRouter(t)

	doJSON(t, engine, http.MethodPost, "/api/users",
		`{"name":"Alice","email":"a@x.com","password":"secret123"}`, nil)

	rec := doJSON(t, engine, http.MethodPost, "/api/users/login", "", func(r *http.Request) {
		r.SetBasicAuth("a@x.com", "wrong-password")
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: %d, want 401", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/users/login", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no credentials: %d, want 401", rec.Code)
	}

	// No session was minted along the way.
	active, err := sessions.ListByUser(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("failed logins created %d sessions", len(active))
	}
}

func TestSessionAuthRejectsBadTokens(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodGet, "/api/users", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no cookie: %d, want 401", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodGet, "/api/users", "", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "session", Value: "forged-token"})
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("forged cookie: %d, want 401", rec.Code)
	}
}

func TestListSessionsFlagsCurrent(t *testing.T) {
	engine, _ := newTestRouter(t)

	doJSON(t, engine, http.MethodPost, "/api/users",
		`{"name":"Alice","email":"a@x.com","password":"secret123"}`, nil)

	login := func() *http.Cookie {
		rec := doJSON(t, engine, http.MethodPost, "/api/users/login", "", func(r *http.Request) {
			r.SetBasicAuth("a@x.com", "secret123")
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("login: %d", rec.Code)
		}
		return sessionCookie(t, rec)
	}

	first := login()
	second := login()
	if first.Value == second.Value {
		t.Fatal("logins reused the same token")
	}

	rec := doJSON(t, engine, http.MethodGet, "/api/users/sessions", "", func(r *http.Request) {
		r.AddCookie(second)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("list sessions: %d %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Sessions []struct {
			Current bool `json:"current"`
		} `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(resp.Sessions))
	}
	var current int
	for _, s := range resp.Sessions {
		if s.Current {
			current++
		}
	}
	if current != 1 {
		t.Fatalf("current flags = %d, want exactly 1", current)
	}
}
