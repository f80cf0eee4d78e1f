package authapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskboard/cmd/identity"
	"taskboard/cmd/internal/auth/session"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	sessCfg := session.DefaultConfig()
	sessCfg.JWTSecret = []byte("0123456789abcdef0123456789abcdef")

	tokens, err := session.NewHS256Manager(sessCfg)
	if err != nil {
		t.Fatalf("NewHS256Manager: %v", err)
	}

	users := identity.NewMemoryStore()
	svc := session.NewService(sessCfg, users, session.NewMemoryStore(), tokens)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h, err := NewHandler(log, LoadConfigFromEnv(), users, svc)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h
}

func newTestMux(t *testing.T) (*Handler, *http.ServeMux) {
	t.Helper()
	h := newTestHandler(t)
	mux := http.NewServeMux()
	h.Register(mux)
	return h, mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestSignup_EndToEnd(t *testing.T) {
	t.Parallel()

	_, mux := newTestMux(t)

	rr := doJSON(t, mux, http.MethodPost, "/users", `{"email":"a@x.com","password":"secret123"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("signup status = %d, body = %s", rr.Code, rr.Body.String())
	}

	if rr.Header().Get(HeaderAccessToken) == "" {
		t.Fatalf("missing x-access-token response header")
	}
	if rr.Header().Get(HeaderRefreshToken) == "" {
		t.Fatalf("missing x-refresh-token response header")
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["_id"] == "" || body["email"] != "a@x.com" {
		t.Fatalf("unexpected user document: %v", body)
	}
	for k := range body {
		if strings.Contains(strings.ToLower(k), "password") {
			t.Fatalf("response body leaks field %q", k)
		}
	}
}

func TestSignup_Validation(t *testing.T) {
	t.Parallel()

	_, mux := newTestMux(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed body", `{"email":`},
		{"missing email", `{"email":"","password":"secret123"}`},
		{"bad email", `{"email":"not-an-email","password":"secret123"}`},
		{"short password", `{"email":"a@x.com","password":"short"}`},
	}
	for _, tc := range cases {
		rr := doJSON(t, mux, http.MethodPost, "/users", tc.body, nil)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", tc.name, rr.Code)
		}
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	t.Parallel()

	_, mux := newTestMux(t)

	if rr := doJSON(t, mux, http.MethodPost, "/users", `{"email":"a@x.com","password":"secret123"}`, nil); rr.Code != http.StatusOK {
		t.Fatalf("first signup: %d", rr.Code)
	}
	rr := doJSON(t, mux, http.MethodPost, "/users", `{"email":"A@x.com","password":"secret456"}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("duplicate signup status = %d, want 400", rr.Code)
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	_, mux := newTestMux(t)

	doJSON(t, mux, http.MethodPost, "/users", `{"email":"a@x.com","password":"secret123"}`, nil)

	rr := doJSON(t, mux, http.MethodPost, "/users/login", `{"email":"a@x.com","password":"secret123"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get(HeaderAccessToken) == "" || rr.Header().Get(HeaderRefreshToken) == "" {
		t.Fatalf("login must return both token headers")
	}

	// Wrong password and unknown email fail identically.
	for _, body := range []string{
		`{"email":"a@x.com","password":"wrongpass"}`,
		`{"email":"ghost@x.com","password":"secret123"}`,
	} {
		rr := doJSON(t, mux, http.MethodPost, "/users/login", body, nil)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("bad login status = %d, want 400", rr.Code)
		}
	}
}

func TestVerifySessionGuard_RefreshAndLogout(t *testing.T) {
	t.Parallel()

	_, mux := newTestMux(t)

	rr := doJSON(t, mux, http.MethodPost, "/users", `{"email":"a@x.com","password":"secret123"}`, nil)
	refresh := rr.Header().Get(HeaderRefreshToken)

	var user map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &user); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	userID, _ := user["_id"].(string)

	hdr := map[string]string{HeaderRefreshToken: refresh, HeaderUserID: userID}

	// Refresh mints a new access token into the response header.
	rr = doJSON(t, mux, http.MethodGet, "/users/me/access-token", "", hdr)
	if rr.Code != http.StatusOK {
		t.Fatalf("access-token status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get(HeaderAccessToken) == "" {
		t.Fatalf("missing refreshed x-access-token header")
	}

	// Wrong token: 401 with an {error: ...} envelope.
	bad := map[string]string{HeaderRefreshToken: "nope", HeaderUserID: userID}
	rr = doJSON(t, mux, http.MethodGet, "/users/me/access-token", "", bad)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad refresh status = %d, want 401", rr.Code)
	}
	var ge guardError
	if err := json.Unmarshal(rr.Body.Bytes(), &ge); err != nil || ge.Error == "" {
		t.Fatalf("expected {error: message} body, got %s", rr.Body.String())
	}

	// Logout removes exactly this session.
	rr = doJSON(t, mux, http.MethodPost, "/users/logout", "", hdr)
	if rr.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rr.Code)
	}
	rr = doJSON(t, mux, http.MethodGet, "/users/me/access-token", "", hdr)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("logged-out session still accepted: %d", rr.Code)
	}
}

func TestAuthenticateGuard(t *testing.T) {
	t.Parallel()

	h, mux := newTestMux(t)

	protected := h.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserID(r.Context())
		if !ok {
			t.Fatalf("guard passed without attaching user id")
		}
		_, _ = io.WriteString(w, id)
	}))
	mux.Handle("GET /protected", protected)

	rr := doJSON(t, mux, http.MethodPost, "/users", `{"email":"a@x.com","password":"secret123"}`, nil)
	access := rr.Header().Get(HeaderAccessToken)

	var user map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &user)
	userID, _ := user["_id"].(string)

	// Valid token passes and resolves the right identity.
	rr = doJSON(t, mux, http.MethodGet, "/protected", "", map[string]string{HeaderAccessToken: access})
	if rr.Code != http.StatusOK {
		t.Fatalf("protected status = %d", rr.Code)
	}
	if rr.Body.String() != userID {
		t.Fatalf("guard attached %q, want %q", rr.Body.String(), userID)
	}

	// Missing and tampered tokens are rejected without a session lookup.
	rr = doJSON(t, mux, http.MethodGet, "/protected", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d, want 401", rr.Code)
	}

	tampered := []byte(access)
	tampered[len(tampered)/2] ^= 0x01
	rr = doJSON(t, mux, http.MethodGet, "/protected", "", map[string]string{HeaderAccessToken: string(tampered)})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("tampered token status = %d, want 401", rr.Code)
	}
}

func TestAuthenticate_SurvivesLogout(t *testing.T) {
	t.Parallel()

	// The stateless guard trusts a still-valid access token even after the
	// backing session is gone. This trust asymmetry is intentional.
	h, mux := newTestMux(t)
	mux.Handle("GET /protected", h.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rr := doJSON(t, mux, http.MethodPost, "/users", `{"email":"a@x.com","password":"secret123"}`, nil)
	access := rr.Header().Get(HeaderAccessToken)
	refresh := rr.Header().Get(HeaderRefreshToken)
	var user map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &user)
	userID, _ := user["_id"].(string)

	doJSON(t, mux, http.MethodPost, "/users/logout", "", map[string]string{HeaderRefreshToken: refresh, HeaderUserID: userID})

	rr = doJSON(t, mux, http.MethodGet, "/protected", "", map[string]string{HeaderAccessToken: access})
	if rr.Code != http.StatusOK {
		t.Fatalf("access token must stay valid after logout, got %d", rr.Code)
	}
}

func TestVerifySession_ExpiredSession(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	mux := http.NewServeMux()
	h.Register(mux)

	// Create a user and an already-expired session record directly.
	ctx := context.Background()
	u, err := h.users.CreateUser(ctx, identity.CreateUserInput{
		Email:    "old@x.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	past := time.Now().UTC().Add(-11 * 24 * time.Hour)
	created, err := h.sessions.CreateSession(ctx, past, u.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	hdr := map[string]string{HeaderRefreshToken: created.RefreshToken, HeaderUserID: u.ID}
	rr := doJSON(t, mux, http.MethodGet, "/users/me/access-token", "", hdr)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expired session status = %d, want 401", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "expired") {
		t.Fatalf("expected an expiry message, got %s", rr.Body.String())
	}
}
