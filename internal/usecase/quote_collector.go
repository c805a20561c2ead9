package usecase

import (
	"context"
	"sync"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	mid "FinCast/internal/middleware"
	applogger "FinCast/pkg/logger"
)

// QuoteCollector polls the upstream quote endpoint on a fixed interval and
// feeds snapshots for the configured symbols into the processing pipeline.
type QuoteCollector struct {
	market   drepo.MarketData
	proc     *SnapshotProcessor
	metrics  drepo.Metrics
	pipe     *mid.SnapshotPipeline
	log      *applogger.Logger
	symbols  map[string]struct{}
	interval time.Duration

	mu      sync.Mutex
	stopCh  chan struct{}
	started bool
	healthy bool
}

// NewQuoteCollector creates a new QuoteCollector instance.
func NewQuoteCollector(
	market drepo.MarketData,
	proc *SnapshotProcessor,
	metrics drepo.Metrics,
	pipe *mid.SnapshotPipeline,
	log *applogger.Logger,
	symbols []string,
	interval time.Duration,
) *QuoteCollector {
	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &QuoteCollector{
		market:   market,
		proc:     proc,
		metrics:  metrics,
		pipe:     pipe,
		log:      log,
		symbols:  set,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// IsHealthy reports whether the last poll succeeded.
func (c *QuoteCollector) IsHealthy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.healthy
}

// Start launches the polling loop. The first poll runs immediately.
func (c *QuoteCollector) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.mu.Unlock()

	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	go c.loop(ctx)
	return nil
}

func (c *QuoteCollector) loop(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.poll(ctx)
		}
	}
}

func (c *QuoteCollector) poll(ctx context.Context) {
	start := time.Now()
	quotes, err := c.market.StockQuotes(ctx)
	if err != nil {
		c.setHealthy(false)
		c.metrics.RecordUpstreamRequest("stock_quotes", "error")
		c.metrics.RecordError("poll")
		c.log.Warn("quote poll failed", applogger.Error(err))
		return
	}
	c.setHealthy(true)
	c.metrics.RecordUpstreamRequest("stock_quotes", "ok")
	c.metrics.RecordLatency("poll", time.Since(start).Seconds())

	now := time.Now().Unix()
	batch := make([]*models.QuoteSnapshot, 0, len(c.symbols))
	for _, q := range quotes {
		if _, ok := c.symbols[q.Symbol]; !ok {
			continue
		}
		ts := q.LastSaleTime
		if ts > 1e11 { // ms
			ts /= 1000
		}
		if ts <= 0 {
			ts = now
		}
		s := &models.QuoteSnapshot{
			Symbol:    q.Symbol,
			Timestamp: ts,
			Price:     q.LastSalePrice,
			Volume:    q.Volume,
		}
		c.metrics.RecordLastPrice(s.Symbol, s.Price)
		if c.pipe != nil {
			if err := c.pipe.Process(ctx, s); err != nil {
				c.log.Debug("pipeline rejected snapshot", applogger.String("symbol", s.Symbol), applogger.Error(err))
			}
			continue
		}
		batch = append(batch, s)
	}

	if c.pipe == nil && len(batch) > 0 {
		if err := c.proc.ProcessBatch(ctx, batch); err != nil {
			c.log.Error("process batch failed", applogger.Int("count", len(batch)), applogger.Error(err))
		}
	}
}

func (c *QuoteCollector) setHealthy(v bool) {
	c.mu.Lock()
	c.healthy = v
	c.mu.Unlock()
}

// Processor returns the underlying SnapshotProcessor for lifecycle management.
func (c *QuoteCollector) Processor() *SnapshotProcessor { return c.proc }

// Shutdown stops the pipeline and the polling loop.
func (c *QuoteCollector) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = false
	c.mu.Unlock()

	if c.pipe != nil {
		c.pipe.Stop()
	}
	close(c.stopCh)
	return nil
}
