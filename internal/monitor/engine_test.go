package monitor

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/web3-frozen/defi-sentinel/internal/registry"
	"github.com/web3-frozen/defi-sentinel/internal/scoring"
)

type fakeChecker struct {
	reports map[string]*scoring.Report
	err     error
}

func (f *fakeChecker) HealthScore(ctx context.Context, address, slug, tokenSymbol string) (*scoring.Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.reports[slug], nil
}

type fakeVoice struct {
	calls int
	err   error
}

func (f *fakeVoice) AlertAudio(ctx context.Context, protocolName string, healthScore int, riskFactors []string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("audio"), nil
}

type fakeGate struct {
	sent map[string]bool
}

func newFakeGate() *fakeGate { return &fakeGate{sent: make(map[string]bool)} }

func (f *fakeGate) AlreadySent(ctx context.Context, key string) bool { return f.sent[key] }
func (f *fakeGate) Record(ctx context.Context, key string)           { f.sent[key] = true }
func (f *fakeGate) Clear(ctx context.Context, key string)            { delete(f.sent, key) }

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.Load()
	if err != nil {
		t.Fatalf("registry.Load error: %v", err)
	}
	return reg
}

func healthyReports(reg *registry.Registry, score int) map[string]*scoring.Report {
	reports := make(map[string]*scoring.Report)
	for _, p := range reg.List() {
		reports[p.Slug] = &scoring.Report{HealthScore: score, Trend: "stable"}
	}
	return reports
}

func TestPollAllCachesSnapshots(t *testing.T) {
	reg := testRegistry(t)
	checker := &fakeChecker{reports: healthyReports(reg, 90)}
	e := NewEngine(reg, checker, nil, nil, slog.Default())

	e.PollAll(context.Background())

	for _, p := range reg.List() {
		snap := e.Snapshot(p.Slug)
		if snap == nil {
			t.Fatalf("Snapshot(%q) = nil after poll", p.Slug)
		}
		if snap.HealthScore != 90 {
			t.Errorf("Snapshot(%q).HealthScore = %d, want 90", p.Slug, snap.HealthScore)
		}
		if snap.Protocol != p.Name {
			t.Errorf("Snapshot(%q).Protocol = %q, want %q", p.Slug, snap.Protocol, p.Name)
		}
	}
}

func TestPollAllCheckerFailureIsNotFatal(t *testing.T) {
	reg := testRegistry(t)
	e := NewEngine(reg, &fakeChecker{err: errors.New("upstream down")}, nil, nil, slog.Default())

	e.PollAll(context.Background())

	if snap := e.Snapshot(reg.List()[0].Slug); snap != nil {
		t.Errorf("Snapshot = %+v after failed poll, want nil", snap)
	}
}

func TestAlertFiresOncePerIncident(t *testing.T) {
	reg := testRegistry(t)
	checker := &fakeChecker{reports: healthyReports(reg, 20)} // below threshold
	voice := &fakeVoice{}
	gate := newFakeGate()
	e := NewEngine(reg, checker, voice, gate, slog.Default())

	e.PollAll(context.Background())
	firstRound := voice.calls
	if firstRound != len(reg.List()) {
		t.Fatalf("voice calls after first poll = %d, want %d", firstRound, len(reg.List()))
	}

	// Same incident: gate suppresses repeats.
	e.PollAll(context.Background())
	if voice.calls != firstRound {
		t.Errorf("voice calls after second poll = %d, want %d", voice.calls, firstRound)
	}

	slug := reg.List()[0].Slug
	if audio := e.AlertAudio(slug); string(audio) != "audio" {
		t.Errorf("AlertAudio(%q) = %q, want cached audio", slug, audio)
	}
}

func TestAlertGateClearsOnRecovery(t *testing.T) {
	reg := testRegistry(t)
	checker := &fakeChecker{reports: healthyReports(reg, 20)}
	voice := &fakeVoice{}
	gate := newFakeGate()
	e := NewEngine(reg, checker, voice, gate, slog.Default())

	e.PollAll(context.Background())
	afterIncident := voice.calls

	// Recovery re-arms the gate...
	checker.reports = healthyReports(reg, 80)
	e.PollAll(context.Background())
	if voice.calls != afterIncident {
		t.Errorf("voice calls during recovery = %d, want %d", voice.calls, afterIncident)
	}

	// ...so the next incident alerts again.
	checker.reports = healthyReports(reg, 10)
	e.PollAll(context.Background())
	if voice.calls != 2*afterIncident {
		t.Errorf("voice calls after new incident = %d, want %d", voice.calls, 2*afterIncident)
	}
}

func TestAlertFailureLeavesGateOpen(t *testing.T) {
	reg := testRegistry(t)
	checker := &fakeChecker{reports: healthyReports(reg, 20)}
	voice := &fakeVoice{err: errors.New("tts down")}
	gate := newFakeGate()
	e := NewEngine(reg, checker, voice, gate, slog.Default())

	e.PollAll(context.Background())
	if len(gate.sent) != 0 {
		t.Errorf("gate recorded %d incidents despite generation failure, want 0", len(gate.sent))
	}

	// A later poll retries the alert.
	voice.err = nil
	e.PollAll(context.Background())
	if len(gate.sent) != len(reg.List()) {
		t.Errorf("gate recorded %d incidents after retry, want %d", len(gate.sent), len(reg.List()))
	}
}
