package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"FinCast/internal/domain/models"
)

type nopMetrics struct{}

func (nopMetrics) RecordUpstreamRequest(endpoint, result string) {}
func (nopMetrics) RecordSnapshotSent(backend, symbol string)     {}
func (nopMetrics) RecordError(kind string)                       {}
func (nopMetrics) RecordLastPrice(symbol string, price float64)  {}
func (nopMetrics) RecordLatency(op string, seconds float64)      {}
func (nopMetrics) RecordForecast(model string)                   {}

type fakeProc struct {
	mu  sync.Mutex
	got []*models.QuoteSnapshot
	err error
}

func (f *fakeProc) Process(ctx context.Context, s *models.QuoteSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.got = append(f.got, s)
	return nil
}

func (f *fakeProc) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

func (f *fakeProc) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func validSnap(symbol string) *models.QuoteSnapshot {
	return &models.QuoteSnapshot{
		Symbol:    symbol,
		Timestamp: time.Now().Unix(),
		Price:     100,
		Volume:    10,
	}
}

func TestPipelineForwards(t *testing.T) {
	proc := &fakeProc{}
	p := NewSnapshotPipeline(proc, nopMetrics{})

	if err := p.Process(context.Background(), validSnap("AAPL")); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(proc.got) != 1 {
		t.Fatalf("expected 1 forwarded snapshot, got %d", len(proc.got))
	}
}

func TestPipelineRejectsInvalid(t *testing.T) {
	proc := &fakeProc{}
	p := NewSnapshotPipeline(proc, nopMetrics{})
	ctx := context.Background()

	cases := []*models.QuoteSnapshot{
		nil,
		{Symbol: "", Timestamp: 1, Price: 1},
		{Symbol: "AAPL", Timestamp: 0, Price: 1},
		{Symbol: "AAPL", Timestamp: 1, Price: -1},
		{Symbol: "AAPL", Timestamp: 1, Price: 1, Volume: -1},
	}
	for i, s := range cases {
		if err := p.Process(ctx, s); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
	if len(proc.got) != 0 {
		t.Errorf("invalid snapshots must not reach downstream, got %d", len(proc.got))
	}
}

func TestPipelineThrottlesPerSymbol(t *testing.T) {
	proc := &fakeProc{}
	p := NewSnapshotPipeline(proc, nopMetrics{}, WithMaxRPS(1))
	ctx := context.Background()

	// Second snapshot within the same second for the same symbol is dropped.
	if err := p.Process(ctx, validSnap("AAPL")); err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	if err := p.Process(ctx, validSnap("AAPL")); err != nil {
		t.Fatalf("throttled snapshot should be dropped without error: %v", err)
	}
	if len(proc.got) != 1 {
		t.Errorf("expected 1 forwarded snapshot after throttle, got %d", len(proc.got))
	}

	// A different symbol has its own budget.
	if err := p.Process(ctx, validSnap("MSFT")); err != nil {
		t.Fatalf("other symbol: %v", err)
	}
	if len(proc.got) != 2 {
		t.Errorf("expected 2 forwarded snapshots, got %d", len(proc.got))
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	sentinel := errors.New("backend down")
	proc := &fakeProc{err: sentinel}
	p := NewSnapshotPipeline(proc, nopMetrics{}, WithBufferSize(4))

	err := p.Process(context.Background(), validSnap("AAPL"))
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped downstream error, got %v", err)
	}
	if len(p.bufCh) != 1 {
		t.Errorf("snapshot should be buffered for retry, buffer depth %d", len(p.bufCh))
	}
}

func TestPipelineFlushesBufferWhenDownstreamRecovers(t *testing.T) {
	proc := &fakeProc{err: errors.New("backend down")}
	p := NewSnapshotPipeline(proc, nopMetrics{}, WithBufferSize(4))
	ctx := context.Background()

	_ = p.Process(ctx, validSnap("AAPL"))

	proc.setErr(nil)
	p.Start(ctx)
	defer p.Stop()

	deadline := time.After(time.Second)
	for proc.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("buffered snapshot was not flushed after recovery")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestPipelineStartStopIdempotent(t *testing.T) {
	p := NewSnapshotPipeline(&fakeProc{}, nopMetrics{})
	ctx := context.Background()

	p.Start(ctx)
	p.Start(ctx)
	p.Stop()
	p.Stop()
}
