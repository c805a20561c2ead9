package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	pkgcache "FinCast/pkg/cache"
)

// MarketCacheTTL sets per-group cache lifetimes.
type MarketCacheTTL struct {
	Listings time.Duration
	Quotes   time.Duration
	History  time.Duration
}

// MarketService serves upstream market data through a cache so repeated
// requests do not burn through the provider's rate limit.
type MarketService struct {
	market  drepo.MarketData
	cache   pkgcache.Service
	metrics drepo.Metrics
	ttl     MarketCacheTTL
}

// NewMarketService creates a new MarketService instance.
func NewMarketService(market drepo.MarketData, cache pkgcache.Service, metrics drepo.Metrics, ttl MarketCacheTTL) *MarketService {
	if ttl.Listings <= 0 {
		ttl.Listings = 6 * time.Hour
	}
	if ttl.Quotes <= 0 {
		ttl.Quotes = 15 * time.Second
	}
	if ttl.History <= 0 {
		ttl.History = 15 * time.Minute
	}
	return &MarketService{market: market, cache: cache, metrics: metrics, ttl: ttl}
}

// fetchCached serves key from cache, falling back to fetch and storing the
// result as JSON. Cache failures degrade to a direct fetch.
func fetchCached[T any](ctx context.Context, s *MarketService, key, endpoint string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if s.cache != nil {
		var raw string
		if err := s.cache.Get(ctx, key, &raw); err == nil {
			var out T
			if err := json.Unmarshal([]byte(raw), &out); err == nil {
				return out, nil
			}
		}
	}

	out, err := fetch(ctx)
	if err != nil {
		s.metrics.RecordUpstreamRequest(endpoint, "error")
		return zero, fmt.Errorf("upstream %s: %w", endpoint, err)
	}
	s.metrics.RecordUpstreamRequest(endpoint, "ok")

	if s.cache != nil {
		if b, err := json.Marshal(out); err == nil {
			_ = s.cache.Set(ctx, key, string(b), ttl)
		}
	}
	return out, nil
}

func (s *MarketService) StockList(ctx context.Context) ([]models.Listing, error) {
	return fetchCached(ctx, s, "market:stock_list", "stock_list", s.ttl.Listings, s.market.StockList)
}

func (s *MarketService) ETFList(ctx context.Context) ([]models.Listing, error) {
	return fetchCached(ctx, s, "market:etf_list", "etf_list", s.ttl.Listings, s.market.ETFList)
}

func (s *MarketService) CryptoList(ctx context.Context) ([]models.Instrument, error) {
	return fetchCached(ctx, s, "market:crypto_list", "crypto_list", s.ttl.Listings, s.market.CryptoList)
}

func (s *MarketService) ForexList(ctx context.Context) ([]models.Instrument, error) {
	return fetchCached(ctx, s, "market:forex_list", "forex_list", s.ttl.Listings, s.market.ForexList)
}

func (s *MarketService) CommodityList(ctx context.Context) ([]models.Instrument, error) {
	return fetchCached(ctx, s, "market:commodity_list", "commodity_list", s.ttl.Listings, s.market.CommodityList)
}

func (s *MarketService) IndexList(ctx context.Context) ([]models.Instrument, error) {
	return fetchCached(ctx, s, "market:index_list", "index_list", s.ttl.Listings, s.market.IndexList)
}

// Search is not cached: queries are free-form.
func (s *MarketService) Search(ctx context.Context, query string) ([]models.Instrument, error) {
	out, err := s.market.Search(ctx, query)
	if err != nil {
		s.metrics.RecordUpstreamRequest("search", "error")
		return nil, fmt.Errorf("upstream search: %w", err)
	}
	s.metrics.RecordUpstreamRequest("search", "ok")
	return out, nil
}

func (s *MarketService) StockQuotes(ctx context.Context) ([]models.StockQuote, error) {
	return fetchCached(ctx, s, "market:stock_quotes", "stock_quotes", s.ttl.Quotes, s.market.StockQuotes)
}

func (s *MarketService) CryptoQuotes(ctx context.Context) ([]models.AssetQuote, error) {
	return fetchCached(ctx, s, "market:crypto_quotes", "crypto_quotes", s.ttl.Quotes, s.market.CryptoQuotes)
}

func (s *MarketService) ForexQuotes(ctx context.Context) ([]models.AssetQuote, error) {
	return fetchCached(ctx, s, "market:forex_quotes", "forex_quotes", s.ttl.Quotes, s.market.ForexQuotes)
}

func (s *MarketService) CommodityQuotes(ctx context.Context) ([]models.AssetQuote, error) {
	return fetchCached(ctx, s, "market:commodity_quotes", "commodity_quotes", s.ttl.Quotes, s.market.CommodityQuotes)
}

func (s *MarketService) IndexQuotes(ctx context.Context) ([]models.AssetQuote, error) {
	return fetchCached(ctx, s, "market:index_quotes", "index_quotes", s.ttl.Quotes, s.market.IndexQuotes)
}

func (s *MarketService) SharesFloat(ctx context.Context) ([]models.SharesFloat, error) {
	return fetchCached(ctx, s, "market:shares_float", "shares_float", s.ttl.Listings, s.market.SharesFloat)
}

func (s *MarketService) SectorsPerformance(ctx context.Context) ([]models.SectorPerformance, error) {
	return fetchCached(ctx, s, "market:sectors_performance", "sectors_performance", s.ttl.History, s.market.SectorsPerformance)
}

func (s *MarketService) BiggestGainers(ctx context.Context) ([]models.Mover, error) {
	return fetchCached(ctx, s, "market:gainers", "gainers", s.ttl.Quotes, s.market.BiggestGainers)
}

func (s *MarketService) BiggestLosers(ctx context.Context) ([]models.Mover, error) {
	return fetchCached(ctx, s, "market:losers", "losers", s.ttl.Quotes, s.market.BiggestLosers)
}

func (s *MarketService) MostActive(ctx context.Context) ([]models.Mover, error) {
	return fetchCached(ctx, s, "market:actives", "actives", s.ttl.Quotes, s.market.MostActive)
}

func (s *MarketService) HistoricalPrices(ctx context.Context, symbol string) ([]models.HistoricalPrice, error) {
	key := "market:history:" + symbol
	return fetchCached(ctx, s, key, "historical_prices", s.ttl.History, func(ctx context.Context) ([]models.HistoricalPrice, error) {
		return s.market.HistoricalPrices(ctx, symbol)
	})
}

// CloseHistory returns a symbol's chronological close prices, at most limit
// points from the end.
func (s *MarketService) CloseHistory(ctx context.Context, symbol string, limit int) ([]float64, error) {
	bars, err := s.HistoricalPrices(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out, nil
}
