package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FinCast/internal/domain/models"
	"FinCast/internal/domain/repository"
	pkgkafka "FinCast/pkg/kafka"
)

// ClickHouseStorage implements SnapshotStorage for ClickHouse.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse storage.
func NewClickHouseStorage(db *sql.DB, table string) repository.SnapshotStorage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseStorage) Store(ctx context.Context, snap *models.QuoteSnapshot) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, volume, source, event_id) VALUES (?, ?, ?, ?, ?, ?)", s.table)
	// Idempotency key derived from symbol+timestamp
	eventID := fmt.Sprintf("%s-%d", snap.Symbol, snap.Timestamp)
	_, err := s.db.ExecContext(ctx, q,
		time.Unix(snap.Timestamp, 0),
		snap.Symbol,
		snap.Price,
		snap.Volume,
		"fmp",
		eventID,
	)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, snapshots []*models.QuoteSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	// Chunk size tuned to 2000 rows per batch.
	const chunkSize = 2000
	for start := 0; start < len(snapshots); start += chunkSize {
		end := start + chunkSize
		if end > len(snapshots) {
			end = len(snapshots)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*6)
		for _, snap := range snapshots[start:end] {
			if snap == nil || snap.Symbol == "" || snap.Timestamp == 0 {
				continue
			}
			eventID := fmt.Sprintf("%s-%d", snap.Symbol, snap.Timestamp)
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args,
				time.Unix(snap.Timestamp, 0),
				snap.Symbol,
				snap.Price,
				snap.Volume,
				"fmp",
				eventID,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, volume, source, event_id) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseStorage) History(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.QuoteSnapshot, error) {
	q := fmt.Sprintf("SELECT symbol, ts, price, volume FROM %s WHERE symbol = ? AND ts >= ? AND ts <= ? ORDER BY ts ASC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*models.QuoteSnapshot
	for rows.Next() {
		var snap models.QuoteSnapshot
		var ts time.Time
		if err := rows.Scan(&snap.Symbol, &ts, &snap.Price, &snap.Volume); err != nil {
			return nil, err
		}
		snap.Timestamp = ts.Unix()
		snapshots = append(snapshots, &snap)
	}
	return snapshots, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements SnapshotPublisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.SnapshotPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, snap *models.QuoteSnapshot) error {
	return p.producer.Publish(ctx, p.topic, []byte(snap.Symbol), map[string]interface{}{
		"symbol": snap.Symbol,
		"t":      snap.Timestamp,
		"p":      snap.Price,
		"v":      snap.Volume,
	})
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, snapshots []*models.QuoteSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(snapshots))
	for i, snap := range snapshots {
		msgs[i] = pkgkafka.Message{
			Key: []byte(snap.Symbol),
			Value: map[string]interface{}{
				"symbol": snap.Symbol,
				"t":      snap.Timestamp,
				"p":      snap.Price,
				"v":      snap.Volume,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
