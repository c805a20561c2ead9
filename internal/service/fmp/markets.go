package fmp

import (
	"context"
	"sort"

	"FinCast/internal/domain/models"
)

// listingRow carries the raw list row including the instrument type, which
// is filtered on and then dropped from the result.
type listingRow struct {
	models.Listing
	Type string `json:"type"`
}

// StockList returns all listed stocks, keeping only rows typed "stock",
// sorted by symbol.
func (c *Client) StockList(ctx context.Context) ([]models.Listing, error) {
	var rows []listingRow
	if err := c.get(ctx, "/v3/stock/list", nil, &rows); err != nil {
		return nil, err
	}

	out := make([]models.Listing, 0, len(rows))
	for _, r := range rows {
		if r.Type == "stock" {
			out = append(out, r.Listing)
		}
	}
	sortBySymbol(out, func(l models.Listing) string { return l.Symbol })
	return out, nil
}

// ETFList returns all listed ETFs sorted by symbol.
func (c *Client) ETFList(ctx context.Context) ([]models.Listing, error) {
	var rows []listingRow
	if err := c.get(ctx, "/v3/etf/list", nil, &rows); err != nil {
		return nil, err
	}

	out := make([]models.Listing, len(rows))
	for i, r := range rows {
		out[i] = r.Listing
	}
	sortBySymbol(out, func(l models.Listing) string { return l.Symbol })
	return out, nil
}

// CryptoList returns available cryptocurrencies sorted by symbol.
func (c *Client) CryptoList(ctx context.Context) ([]models.Instrument, error) {
	return c.instrumentList(ctx, "/v3/symbol/available-cryptocurrencies")
}

// ForexList returns available forex currency pairs sorted by symbol.
func (c *Client) ForexList(ctx context.Context) ([]models.Instrument, error) {
	return c.instrumentList(ctx, "/v3/symbol/available-forex-currency-pairs")
}

// CommodityList returns available commodities sorted by symbol.
func (c *Client) CommodityList(ctx context.Context) ([]models.Instrument, error) {
	return c.instrumentList(ctx, "/v3/symbol/available-commodities")
}

// IndexList returns available indexes sorted by symbol.
func (c *Client) IndexList(ctx context.Context) ([]models.Instrument, error) {
	return c.instrumentList(ctx, "/v3/symbol/available-indexes")
}

// Search queries instruments by name or symbol, preserving provider order.
func (c *Client) Search(ctx context.Context, query string) ([]models.Instrument, error) {
	var out []models.Instrument
	if err := c.get(ctx, "/v3/search", map[string][]string{"query": {query}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) instrumentList(ctx context.Context, path string) ([]models.Instrument, error) {
	var out []models.Instrument
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	sortBySymbol(out, func(i models.Instrument) string { return i.Symbol })
	return out, nil
}

// StockQuotes returns full real-time prices for all stocks sorted by symbol.
func (c *Client) StockQuotes(ctx context.Context) ([]models.StockQuote, error) {
	var out []models.StockQuote
	if err := c.get(ctx, "/v3/stock/full/real-time-price", nil, &out); err != nil {
		return nil, err
	}
	sortBySymbol(out, func(q models.StockQuote) string { return q.Symbol })
	return out, nil
}

// CryptoQuotes returns quotes for all cryptocurrencies sorted by symbol.
func (c *Client) CryptoQuotes(ctx context.Context) ([]models.AssetQuote, error) {
	return c.assetQuotes(ctx, "/v3/quotes/crypto")
}

// ForexQuotes returns quotes for all forex pairs sorted by symbol.
func (c *Client) ForexQuotes(ctx context.Context) ([]models.AssetQuote, error) {
	return c.assetQuotes(ctx, "/v3/quotes/forex")
}

// CommodityQuotes returns quotes for all commodities sorted by symbol.
func (c *Client) CommodityQuotes(ctx context.Context) ([]models.AssetQuote, error) {
	return c.assetQuotes(ctx, "/v3/quotes/commodity")
}

// IndexQuotes returns quotes for all indexes sorted by symbol.
func (c *Client) IndexQuotes(ctx context.Context) ([]models.AssetQuote, error) {
	return c.assetQuotes(ctx, "/v3/quotes/index")
}

func (c *Client) assetQuotes(ctx context.Context, path string) ([]models.AssetQuote, error) {
	var out []models.AssetQuote
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	sortBySymbol(out, func(q models.AssetQuote) string { return q.Symbol })
	return out, nil
}

// SharesFloat returns free-float data for all stocks sorted by symbol.
func (c *Client) SharesFloat(ctx context.Context) ([]models.SharesFloat, error) {
	var out []models.SharesFloat
	if err := c.get(ctx, "/v4/shares_float/all", nil, &out); err != nil {
		return nil, err
	}
	sortBySymbol(out, func(s models.SharesFloat) string { return s.Symbol })
	return out, nil
}

// SectorsPerformance returns historical per-sector daily changes in
// chronological order.
func (c *Client) SectorsPerformance(ctx context.Context) ([]models.SectorPerformance, error) {
	var out []models.SectorPerformance
	if err := c.get(ctx, "/v3/historical-sectors-performance", nil, &out); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// BiggestGainers returns the day's biggest gainers sorted by symbol.
func (c *Client) BiggestGainers(ctx context.Context) ([]models.Mover, error) {
	return c.movers(ctx, "/v3/stock_market/gainers")
}

// BiggestLosers returns the day's biggest losers sorted by symbol.
func (c *Client) BiggestLosers(ctx context.Context) ([]models.Mover, error) {
	return c.movers(ctx, "/v3/stock_market/losers")
}

// MostActive returns the day's most active stocks sorted by symbol.
func (c *Client) MostActive(ctx context.Context) ([]models.Mover, error) {
	return c.movers(ctx, "/v3/stock_market/actives")
}

func (c *Client) movers(ctx context.Context, path string) ([]models.Mover, error) {
	var out []models.Mover
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	sortBySymbol(out, func(m models.Mover) string { return m.Symbol })
	return out, nil
}

// HistoricalPrices returns daily bars for a symbol in chronological order.
// The provider reports newest-first; the result is reversed.
func (c *Client) HistoricalPrices(ctx context.Context, symbol string) ([]models.HistoricalPrice, error) {
	var resp struct {
		Symbol     string                   `json:"symbol"`
		Historical []models.HistoricalPrice `json:"historical"`
	}
	if err := c.get(ctx, "/v3/historical-price-full/"+symbol, nil, &resp); err != nil {
		return nil, err
	}

	out := resp.Historical
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// sortBySymbol orders rows by their symbol key.
func sortBySymbol[T any](rows []T, key func(T) string) {
	sort.Slice(rows, func(i, j int) bool { return key(rows[i]) < key(rows[j]) })
}
