package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"FinCast/internal/domain/models"
)

type fakePublisher struct {
	published []*models.QuoteSnapshot
	err       error
	closed    bool
}

func (f *fakePublisher) Publish(ctx context.Context, s *models.QuoteSnapshot) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, s)
	return nil
}

func (f *fakePublisher) PublishBatch(ctx context.Context, snapshots []*models.QuoteSnapshot) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, snapshots...)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

type fakeStorage struct {
	stored []*models.QuoteSnapshot
	err    error
	closed bool
}

func (f *fakeStorage) Init(ctx context.Context) error { return nil }

func (f *fakeStorage) Store(ctx context.Context, s *models.QuoteSnapshot) error {
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, s)
	return nil
}

func (f *fakeStorage) StoreBatch(ctx context.Context, snapshots []*models.QuoteSnapshot) error {
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, snapshots...)
	return nil
}

func (f *fakeStorage) History(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.QuoteSnapshot, error) {
	return f.stored, nil
}

func (f *fakeStorage) Health(ctx context.Context) error { return nil }

func (f *fakeStorage) Close() error {
	f.closed = true
	return nil
}

func snap(symbol string, price float64) *models.QuoteSnapshot {
	return &models.QuoteSnapshot{
		Symbol:    symbol,
		Timestamp: time.Now().Unix(),
		Price:     price,
		Volume:    100,
	}
}

func TestProcessRoutesToKafka(t *testing.T) {
	pub := &fakePublisher{}
	store := &fakeStorage{}
	proc := NewSnapshotProcessor(pub, store, nopMetrics{}, "kafka", 100, time.Second)

	if err := proc.Process(context.Background(), snap("AAPL", 190.5)); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(pub.published) != 1 {
		t.Errorf("expected 1 published snapshot, got %d", len(pub.published))
	}
	if len(store.stored) != 0 {
		t.Errorf("clickhouse store should be untouched on kafka backend, got %d", len(store.stored))
	}
}

func TestProcessRoutesToClickHouse(t *testing.T) {
	pub := &fakePublisher{}
	store := &fakeStorage{}
	proc := NewSnapshotProcessor(pub, store, nopMetrics{}, "clickhouse", 100, time.Second)

	if err := proc.Process(context.Background(), snap("MSFT", 410)); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(store.stored) != 1 {
		t.Errorf("expected 1 stored snapshot, got %d", len(store.stored))
	}
	if len(pub.published) != 0 {
		t.Errorf("publisher should be untouched on clickhouse backend, got %d", len(pub.published))
	}
}

func TestProcessUnknownBackend(t *testing.T) {
	proc := NewSnapshotProcessor(&fakePublisher{}, &fakeStorage{}, nopMetrics{}, "rabbitmq", 100, time.Second)

	if err := proc.Process(context.Background(), snap("AAPL", 1)); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestProcessNilSnapshot(t *testing.T) {
	proc := NewSnapshotProcessor(&fakePublisher{}, &fakeStorage{}, nopMetrics{}, "kafka", 100, time.Second)

	if err := proc.Process(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil snapshot")
	}
}

func TestProcessWrapsBackendError(t *testing.T) {
	sentinel := errors.New("broker down")
	pub := &fakePublisher{err: sentinel}
	proc := NewSnapshotProcessor(pub, &fakeStorage{}, nopMetrics{}, "kafka", 100, time.Second)

	err := proc.Process(context.Background(), snap("AAPL", 1))
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}

func TestProcessBatch(t *testing.T) {
	store := &fakeStorage{}
	proc := NewSnapshotProcessor(&fakePublisher{}, store, nopMetrics{}, "clickhouse", 100, time.Second)

	batch := []*models.QuoteSnapshot{snap("AAPL", 1), snap("MSFT", 2), snap("GOOG", 3)}
	if err := proc.ProcessBatch(context.Background(), batch); err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}
	if len(store.stored) != 3 {
		t.Errorf("expected 3 stored snapshots, got %d", len(store.stored))
	}

	if err := proc.ProcessBatch(context.Background(), nil); err != nil {
		t.Errorf("empty batch should be a no-op, got %v", err)
	}
}

func TestHistoryReadsStorage(t *testing.T) {
	store := &fakeStorage{}
	proc := NewSnapshotProcessor(&fakePublisher{}, store, nopMetrics{}, "clickhouse", 100, time.Second)
	ctx := context.Background()

	if err := proc.Process(ctx, snap("AAPL", 190)); err != nil {
		t.Fatalf("Process: %v", err)
	}

	got, err := proc.History(ctx, "AAPL", time.Now().Add(-time.Hour), time.Now(), 10)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(got) != 1 || got[0].Symbol != "AAPL" {
		t.Errorf("expected stored snapshot back, got %v", got)
	}

	bare := NewSnapshotProcessor(&fakePublisher{}, nil, nopMetrics{}, "kafka", 100, time.Second)
	if _, err := bare.History(ctx, "AAPL", time.Now().Add(-time.Hour), time.Now(), 10); err == nil {
		t.Error("expected error when storage is not configured")
	}
}

func TestCloseClosesBothBackends(t *testing.T) {
	pub := &fakePublisher{}
	store := &fakeStorage{}
	proc := NewSnapshotProcessor(pub, store, nopMetrics{}, "kafka", 100, time.Second)

	proc.Close()
	if !pub.closed || !store.closed {
		t.Errorf("Close should close publisher and storage, got pub=%v store=%v", pub.closed, store.closed)
	}
}
