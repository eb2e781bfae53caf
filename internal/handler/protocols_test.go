package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/web3-frozen/defi-sentinel/internal/apperr"
	"github.com/web3-frozen/defi-sentinel/internal/monitor"
	"github.com/web3-frozen/defi-sentinel/internal/registry"
	"github.com/web3-frozen/defi-sentinel/internal/scoring"
)

type fakeChecker struct {
	report *scoring.Report
	err    error
	calls  int
}

func (f *fakeChecker) HealthScore(ctx context.Context, address, slug, tokenSymbol string) (*scoring.Report, error) {
	f.calls++
	return f.report, f.err
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.Load()
	if err != nil {
		t.Fatalf("registry.Load error: %v", err)
	}
	return reg
}

func TestListProtocols(t *testing.T) {
	reg := testRegistry(t)
	req := httptest.NewRequest(http.MethodGet, "/api/protocols", nil)
	rec := httptest.NewRecorder()

	ListProtocols(reg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Protocols []registry.Protocol `json:"protocols"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Protocols) != len(reg.List()) {
		t.Errorf("protocols = %d, want %d", len(body.Protocols), len(reg.List()))
	}
}

func healthRouter(reg *registry.Registry, checker *fakeChecker) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/protocol/{slug}/health", ProtocolHealth(reg, checker, slog.Default()))
	return r
}

func TestProtocolHealth(t *testing.T) {
	reg := testRegistry(t)
	checker := &fakeChecker{report: &scoring.Report{
		HealthScore: 72,
		Confidence:  85,
		Trend:       "stable",
		RiskFactors: []string{},
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/protocol/aave/health", nil)
	rec := httptest.NewRecorder()
	healthRouter(reg, checker).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var body healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Protocol != "Aave V3" {
		t.Errorf("protocol = %q, want %q", body.Protocol, "Aave V3")
	}
	if body.HealthScore != 72 {
		t.Errorf("healthScore = %d, want 72", body.HealthScore)
	}
}

func TestProtocolHealthUnknownSlug(t *testing.T) {
	reg := testRegistry(t)
	checker := &fakeChecker{report: &scoring.Report{}}

	req := httptest.NewRequest(http.MethodGet, "/api/protocol/no-such/health", nil)
	rec := httptest.NewRecorder()
	healthRouter(reg, checker).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if checker.calls != 0 {
		t.Errorf("checker calls = %d, want 0 for unknown slug", checker.calls)
	}
}

func TestSnapshotNoDataYet(t *testing.T) {
	reg := testRegistry(t)
	engine := monitor.NewEngine(reg, &fakeChecker{}, nil, nil, slog.Default())

	r := chi.NewRouter()
	r.Get("/api/protocol/{slug}/snapshot", Snapshot(engine, reg, slog.Default()))

	req := httptest.NewRequest(http.MethodGet, "/api/protocol/aave/snapshot", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestProtocolHealthUpstreamErrorDoesNotLeak(t *testing.T) {
	reg := testRegistry(t)
	checker := &fakeChecker{err: apperr.Upstream("tvl provider unavailable",
		context.DeadlineExceeded)}

	req := httptest.NewRequest(http.MethodGet, "/api/protocol/aave/health", nil)
	rec := httptest.NewRecorder()
	healthRouter(reg, checker).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
	if strings.Contains(rec.Body.String(), "deadline") {
		t.Errorf("body leaks upstream error detail: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "tvl provider unavailable") {
		t.Errorf("body = %s, want client-safe message", rec.Body.String())
	}
}
