package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func discardLogger() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_MemoryMode(t *testing.T) {
	t.Setenv("TASKBOARD_JWT_SECRET", testSecret)

	cfg := LoadConfig()
	cfg.DatabaseURL = ""

	a, err := New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.st.dbEnabled() {
		t.Fatalf("no database URL must select the in-memory stores")
	}
	if a.auth == nil || a.boards == nil {
		t.Fatalf("handlers must be wired in memory mode")
	}
}

func TestNew_RequiresSecret(t *testing.T) {
	t.Setenv("TASKBOARD_JWT_SECRET", "")

	if _, err := New(Config{}, discardLogger()); err == nil {
		t.Fatalf("New must fail without a signing secret")
	}
}

func TestValidateSecurityConfig(t *testing.T) {
	t.Setenv("TASKBOARD_JWT_SECRET", "short")
	if err := ValidateSecurityConfig(Config{}); err == nil {
		t.Fatalf("short secret must be rejected")
	}

	t.Setenv("TASKBOARD_JWT_SECRET", testSecret)
	if err := ValidateSecurityConfig(Config{}); err != nil {
		t.Fatalf("valid secret rejected: %v", err)
	}

	bad := Config{
		DatabaseURL:          "postgres://db/taskboard",
		CORSAllowedOrigins:   []string{"*"},
		CORSAllowCredentials: true,
	}
	if err := ValidateSecurityConfig(bad); err == nil {
		t.Fatalf("wildcard origin with credentials must be rejected")
	}
}

func TestHealthAndReadiness(t *testing.T) {
	t.Setenv("TASKBOARD_JWT_SECRET", testSecret)

	cfg := LoadConfig()
	cfg.DatabaseURL = ""

	a, err := New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, nil, false, a.metrics, a.auth, a.boards)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("readyz without DB requirement: %d", rr.Code)
	}

	// DB-required readiness fails when no database is wired.
	strictCfg := a.cfg
	strictCfg.ReadinessRequireDB = true
	strict := http.NewServeMux()
	registerHTTP(strict, a.log, strictCfg, nil, false, a.metrics, a.auth, a.boards)

	rr = httptest.NewRecorder()
	strict.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("strict readyz: %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Setenv("TASKBOARD_JWT_SECRET", testSecret)

	cfg := LoadConfig()
	cfg.DatabaseURL = ""
	cfg.MetricsEnabled = true

	a, err := New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, nil, false, a.metrics, a.auth, a.boards)

	handler := a.metrics.WithMetrics(mux)

	// Drive one request through the instrumented stack, then scrape.
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz via metrics: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics scrape: %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "taskboard_http_requests_total") {
		t.Fatalf("request counter missing from scrape")
	}
}

func TestEnvStrings(t *testing.T) {
	t.Setenv("TASKBOARD_TEST_ORIGINS", " https://a.example.com , https://b.example.com ,")

	got := EnvStrings("TASKBOARD_TEST_ORIGINS", nil)
	if len(got) != 2 || got[0] != "https://a.example.com" || got[1] != "https://b.example.com" {
		t.Fatalf("EnvStrings parsed %v", got)
	}

	if got := EnvStrings("TASKBOARD_TEST_ORIGINS_UNSET", []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Fatalf("default not applied: %v", got)
	}
}
