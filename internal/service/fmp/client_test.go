package fmp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, path, body string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("apikey") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New("test-key", WithBaseURL(srv.URL)), srv
}

func TestStockListFiltersAndSorts(t *testing.T) {
	body := `[
		{"symbol":"MSFT","name":"Microsoft","price":420.5,"exchange":"NASDAQ Global Select","exchangeShortName":"NASDAQ","type":"stock"},
		{"symbol":"SPY","name":"SPDR S&P 500","price":520.1,"exchange":"NYSE Arca","exchangeShortName":"AMEX","type":"etf"},
		{"symbol":"AAPL","name":"Apple","price":190.3,"exchange":"NASDAQ Global Select","exchangeShortName":"NASDAQ","type":"stock"}
	]`
	c, _ := newTestClient(t, "/v3/stock/list", body)

	got, err := c.StockList(context.Background())
	if err != nil {
		t.Fatalf("StockList returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 stocks after filtering, got %d", len(got))
	}
	if got[0].Symbol != "AAPL" || got[1].Symbol != "MSFT" {
		t.Errorf("expected sorted [AAPL MSFT], got [%s %s]", got[0].Symbol, got[1].Symbol)
	}
	if got[0].ExchangeCode != "NASDAQ" {
		t.Errorf("exchange code not renamed from exchangeShortName: %q", got[0].ExchangeCode)
	}
}

func TestStockQuotesRenamesFields(t *testing.T) {
	body := `[
		{"symbol":"AAPL","askPrice":190.4,"askSize":100,"bidPrice":190.2,"bidSize":200,
		 "lastSalePrice":190.3,"lastSaleSize":50,"lastSaleTime":1724450000,"volume":1200000,
		 "fmpLast":190.3,"lastUpdated":1724450001}
	]`
	c, _ := newTestClient(t, "/v3/stock/full/real-time-price", body)

	got, err := c.StockQuotes(context.Background())
	if err != nil {
		t.Fatalf("StockQuotes returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(got))
	}
	q := got[0]
	if q.AskPrice != 190.4 || q.BidPrice != 190.2 || q.LastSalePrice != 190.3 {
		t.Errorf("unexpected quote fields: %+v", q)
	}
	if q.LastSaleTime != 1724450000 {
		t.Errorf("last sale time not decoded: %d", q.LastSaleTime)
	}
}

func TestSectorsPerformanceChronological(t *testing.T) {
	body := `[
		{"date":"2024-08-23","utilitiesChangesPercentage":0.4,"technologyChangesPercentage":1.2},
		{"date":"2024-08-21","utilitiesChangesPercentage":-0.1,"technologyChangesPercentage":0.3},
		{"date":"2024-08-22","utilitiesChangesPercentage":0.2,"technologyChangesPercentage":-0.5}
	]`
	c, _ := newTestClient(t, "/v3/historical-sectors-performance", body)

	got, err := c.SectorsPerformance(context.Background())
	if err != nil {
		t.Fatalf("SectorsPerformance returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Date > got[i].Date {
			t.Errorf("rows not chronological: %s before %s", got[i-1].Date, got[i].Date)
		}
	}
	if got[2].Technology != 1.2 {
		t.Errorf("sector change not renamed from technologyChangesPercentage: %f", got[2].Technology)
	}
}

func TestHistoricalPricesReversedToChronological(t *testing.T) {
	body := `{"symbol":"AAPL","historical":[
		{"date":"2024-08-23","open":189,"high":191,"low":188,"close":190.3,"adjClose":190.3,"volume":100},
		{"date":"2024-08-22","open":187,"high":190,"low":186,"close":189.1,"adjClose":189.1,"volume":90}
	]}`
	c, _ := newTestClient(t, "/v3/historical-price-full/AAPL", body)

	got, err := c.HistoricalPrices(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("HistoricalPrices returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(got))
	}
	if got[0].Date != "2024-08-22" || got[1].Date != "2024-08-23" {
		t.Errorf("bars not chronological: %s, %s", got[0].Date, got[1].Date)
	}
}

func TestSearchPassesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") != "apple" {
			t.Errorf("query param not forwarded, got %q", r.URL.Query().Get("query"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"symbol":"AAPL","name":"Apple","currency":"USD","stockExchange":"NASDAQ"}]`))
	}))
	defer srv.Close()

	c := New("test-key", WithBaseURL(srv.URL))
	got, err := c.Search(context.Background(), "apple")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(got) != 1 || got[0].Exchange != "NASDAQ" {
		t.Errorf("unexpected search result: %+v", got)
	}
}

func TestUpstreamErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"limit reached"}`))
	}))
	defer srv.Close()

	c := New("test-key", WithBaseURL(srv.URL))
	if _, err := c.BiggestGainers(context.Background()); err == nil {
		t.Fatal("expected error on upstream 429")
	}
}
