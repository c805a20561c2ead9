package usecase

import (
	"context"
	"errors"
	"testing"

	"FinCast/internal/domain/models"
	pkgcache "FinCast/pkg/cache"
)

// fakeMarket counts upstream calls so caching behavior is observable.
type fakeMarket struct {
	stockListCalls int
	historyCalls   int
	searchCalls    int
	err            error
	history        []models.HistoricalPrice
}

func (f *fakeMarket) StockList(ctx context.Context) ([]models.Listing, error) {
	f.stockListCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []models.Listing{{Symbol: "AAPL", Name: "Apple Inc.", Price: 190, Exchange: "NASDAQ Global Select", ExchangeCode: "NASDAQ"}}, nil
}

func (f *fakeMarket) ETFList(ctx context.Context) ([]models.Listing, error)          { return nil, f.err }
func (f *fakeMarket) CryptoList(ctx context.Context) ([]models.Instrument, error)    { return nil, f.err }
func (f *fakeMarket) ForexList(ctx context.Context) ([]models.Instrument, error)     { return nil, f.err }
func (f *fakeMarket) CommodityList(ctx context.Context) ([]models.Instrument, error) { return nil, f.err }
func (f *fakeMarket) IndexList(ctx context.Context) ([]models.Instrument, error)     { return nil, f.err }

func (f *fakeMarket) Search(ctx context.Context, query string) ([]models.Instrument, error) {
	f.searchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []models.Instrument{{Symbol: query, Name: query}}, nil
}

func (f *fakeMarket) StockQuotes(ctx context.Context) ([]models.StockQuote, error)     { return nil, f.err }
func (f *fakeMarket) CryptoQuotes(ctx context.Context) ([]models.AssetQuote, error)    { return nil, f.err }
func (f *fakeMarket) ForexQuotes(ctx context.Context) ([]models.AssetQuote, error)     { return nil, f.err }
func (f *fakeMarket) CommodityQuotes(ctx context.Context) ([]models.AssetQuote, error) { return nil, f.err }
func (f *fakeMarket) IndexQuotes(ctx context.Context) ([]models.AssetQuote, error)     { return nil, f.err }

func (f *fakeMarket) SharesFloat(ctx context.Context) ([]models.SharesFloat, error) {
	return nil, f.err
}

func (f *fakeMarket) SectorsPerformance(ctx context.Context) ([]models.SectorPerformance, error) {
	return nil, f.err
}

func (f *fakeMarket) BiggestGainers(ctx context.Context) ([]models.Mover, error) { return nil, f.err }
func (f *fakeMarket) BiggestLosers(ctx context.Context) ([]models.Mover, error)  { return nil, f.err }
func (f *fakeMarket) MostActive(ctx context.Context) ([]models.Mover, error)     { return nil, f.err }

func (f *fakeMarket) HistoricalPrices(ctx context.Context, symbol string) ([]models.HistoricalPrice, error) {
	f.historyCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

func TestStockListCachesSecondCall(t *testing.T) {
	market := &fakeMarket{}
	svc := NewMarketService(market, pkgcache.NewMemoryCache(), nopMetrics{}, MarketCacheTTL{})
	ctx := context.Background()

	first, err := svc.StockList(ctx)
	if err != nil {
		t.Fatalf("first StockList: %v", err)
	}
	second, err := svc.StockList(ctx)
	if err != nil {
		t.Fatalf("second StockList: %v", err)
	}
	if market.stockListCalls != 1 {
		t.Errorf("expected 1 upstream call, got %d", market.stockListCalls)
	}
	if len(first) != 1 || len(second) != 1 || second[0].Symbol != "AAPL" {
		t.Errorf("cached result mismatch: %v vs %v", first, second)
	}
	if second[0].ExchangeCode != "NASDAQ" {
		t.Errorf("exchange code lost in cache round-trip: %q", second[0].ExchangeCode)
	}
}

func TestStockListWorksWithoutCache(t *testing.T) {
	market := &fakeMarket{}
	svc := NewMarketService(market, nil, nopMetrics{}, MarketCacheTTL{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.StockList(ctx); err != nil {
			t.Fatalf("StockList without cache: %v", err)
		}
	}
	if market.stockListCalls != 2 {
		t.Errorf("expected 2 upstream calls with no cache, got %d", market.stockListCalls)
	}
}

func TestUpstreamErrorWrapped(t *testing.T) {
	sentinel := errors.New("rate limited")
	svc := NewMarketService(&fakeMarket{err: sentinel}, nil, nopMetrics{}, MarketCacheTTL{})

	if _, err := svc.StockList(context.Background()); !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
}

func TestSearchBypassesCache(t *testing.T) {
	market := &fakeMarket{}
	svc := NewMarketService(market, pkgcache.NewMemoryCache(), nopMetrics{}, MarketCacheTTL{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		out, err := svc.Search(ctx, "tesla")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(out) != 1 || out[0].Symbol != "tesla" {
			t.Errorf("unexpected search result: %v", out)
		}
	}
	if market.searchCalls != 2 {
		t.Errorf("search must not be cached, got %d upstream calls", market.searchCalls)
	}
}

func TestCloseHistoryTruncatesToLimit(t *testing.T) {
	market := &fakeMarket{history: []models.HistoricalPrice{
		{Date: "2026-08-18", Close: 1},
		{Date: "2026-08-19", Close: 2},
		{Date: "2026-08-20", Close: 3},
		{Date: "2026-08-21", Close: 4},
	}}
	svc := NewMarketService(market, nil, nopMetrics{}, MarketCacheTTL{})

	closes, err := svc.CloseHistory(context.Background(), "AAPL", 2)
	if err != nil {
		t.Fatalf("CloseHistory: %v", err)
	}
	if len(closes) != 2 || closes[0] != 3 || closes[1] != 4 {
		t.Errorf("expected most recent closes [3 4], got %v", closes)
	}
}

func TestHistoricalPricesCachedPerSymbol(t *testing.T) {
	market := &fakeMarket{history: []models.HistoricalPrice{{Date: "2026-08-21", Close: 4}}}
	svc := NewMarketService(market, pkgcache.NewMemoryCache(), nopMetrics{}, MarketCacheTTL{})
	ctx := context.Background()

	if _, err := svc.HistoricalPrices(ctx, "AAPL"); err != nil {
		t.Fatalf("HistoricalPrices AAPL: %v", err)
	}
	if _, err := svc.HistoricalPrices(ctx, "AAPL"); err != nil {
		t.Fatalf("HistoricalPrices AAPL cached: %v", err)
	}
	if market.historyCalls != 1 {
		t.Fatalf("expected 1 upstream call for repeated symbol, got %d", market.historyCalls)
	}

	if _, err := svc.HistoricalPrices(ctx, "MSFT"); err != nil {
		t.Fatalf("HistoricalPrices MSFT: %v", err)
	}
	if market.historyCalls != 2 {
		t.Errorf("different symbol must miss the cache, got %d upstream calls", market.historyCalls)
	}
}
