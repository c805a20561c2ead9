package repository

import (
	"context"
	"time"

	"FinCast/internal/domain/models"
)

// MarketData is the opaque fetch capability over the upstream financial data
// API: every method builds one endpoint URL, fetches JSON rows, and reshapes
// them into typed models.
type MarketData interface {
	StockList(ctx context.Context) ([]models.Listing, error)
	ETFList(ctx context.Context) ([]models.Listing, error)
	CryptoList(ctx context.Context) ([]models.Instrument, error)
	ForexList(ctx context.Context) ([]models.Instrument, error)
	CommodityList(ctx context.Context) ([]models.Instrument, error)
	IndexList(ctx context.Context) ([]models.Instrument, error)
	Search(ctx context.Context, query string) ([]models.Instrument, error)

	StockQuotes(ctx context.Context) ([]models.StockQuote, error)
	CryptoQuotes(ctx context.Context) ([]models.AssetQuote, error)
	ForexQuotes(ctx context.Context) ([]models.AssetQuote, error)
	CommodityQuotes(ctx context.Context) ([]models.AssetQuote, error)
	IndexQuotes(ctx context.Context) ([]models.AssetQuote, error)

	SharesFloat(ctx context.Context) ([]models.SharesFloat, error)
	SectorsPerformance(ctx context.Context) ([]models.SectorPerformance, error)
	BiggestGainers(ctx context.Context) ([]models.Mover, error)
	BiggestLosers(ctx context.Context) ([]models.Mover, error)
	MostActive(ctx context.Context) ([]models.Mover, error)

	HistoricalPrices(ctx context.Context, symbol string) ([]models.HistoricalPrice, error)
}

// SnapshotPublisher publishes quote snapshots to a message backend.
type SnapshotPublisher interface {
	Publish(ctx context.Context, s *models.QuoteSnapshot) error
	PublishBatch(ctx context.Context, snapshots []*models.QuoteSnapshot) error
	Close() error
}

// SnapshotStorage persists quote snapshots and serves price history.
type SnapshotStorage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, s *models.QuoteSnapshot) error
	StoreBatch(ctx context.Context, snapshots []*models.QuoteSnapshot) error
	History(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.QuoteSnapshot, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// Metrics records operational counters and latencies.
type Metrics interface {
	RecordUpstreamRequest(endpoint, result string)
	RecordSnapshotSent(backend, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordForecast(model string)
}
