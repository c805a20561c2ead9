package models

import "time"

// Listing is a tradable stock or ETF as reported by the provider's list
// endpoints. Field names follow the reshaped (renamed) columns; JSON tags
// carry the provider's wire names.
type Listing struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Exchange     string  `json:"exchange"`
	ExchangeCode string  `json:"exchangeShortName"`
}

// Instrument is a crypto, forex, commodity, or index listing, also returned
// by symbol search.
type Instrument struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Exchange string `json:"stockExchange"`
}

// StockQuote is a full real-time stock price record.
type StockQuote struct {
	Symbol        string  `json:"symbol"`
	AskPrice      float64 `json:"askPrice"`
	AskSize       float64 `json:"askSize"`
	BidPrice      float64 `json:"bidPrice"`
	BidSize       float64 `json:"bidSize"`
	LastSalePrice float64 `json:"lastSalePrice"`
	LastSaleSize  float64 `json:"lastSaleSize"`
	LastSaleTime  int64   `json:"lastSaleTime"`
	Volume        float64 `json:"volume"`
}

// AssetQuote is the quote shape shared by crypto, forex, commodity, and
// index quote endpoints.
type AssetQuote struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	ChangePercent     float64 `json:"changesPercentage"`
	Change            float64 `json:"change"`
	DayLow            float64 `json:"dayLow"`
	DayHigh           float64 `json:"dayHigh"`
	YearHigh          float64 `json:"yearHigh"`
	YearLow           float64 `json:"yearLow"`
	MarketCap         float64 `json:"marketCap"`
	PriceAvg50        float64 `json:"priceAvg50"`
	PriceAvg200       float64 `json:"priceAvg200"`
	Volume            float64 `json:"volume"`
	AvgVolume         float64 `json:"avgVolume"`
	Open              float64 `json:"open"`
	PreviousClose     float64 `json:"previousClose"`
	EPS               float64 `json:"eps"`
	PE                float64 `json:"pe"`
	SharesOutstanding float64 `json:"sharesOutstanding"`
	Timestamp         int64   `json:"timestamp"`
}

// Mover is a row from the gainers, losers, and most-active endpoints.
type Mover struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Change        float64 `json:"change"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"changesPercentage"`
}

// SharesFloat is a free-float record for a single symbol.
type SharesFloat struct {
	Symbol            string  `json:"symbol"`
	Date              string  `json:"date"`
	FreeFloat         float64 `json:"freeFloat"`
	FloatShares       float64 `json:"floatShares"`
	OutstandingShares float64 `json:"outstandingShares"`
}

// SectorPerformance is one day of per-sector percentage changes.
type SectorPerformance struct {
	Date                  string  `json:"date"`
	Utilities             float64 `json:"utilitiesChangesPercentage"`
	BasicMaterials        float64 `json:"basicMaterialsChangesPercentage"`
	CommunicationServices float64 `json:"communicationServicesChangesPercentage"`
	ConsumerCyclical      float64 `json:"consumerCyclicalChangesPercentage"`
	ConsumerDefensive     float64 `json:"consumerDefensiveChangesPercentage"`
	Energy                float64 `json:"energyChangesPercentage"`
	Financial             float64 `json:"financialChangesPercentage"`
	Healthcare            float64 `json:"healthcareChangesPercentage"`
	Industrials           float64 `json:"industrialsChangesPercentage"`
	RealEstate            float64 `json:"realEstateChangesPercentage"`
	Technology            float64 `json:"technologyChangesPercentage"`
}

// HistoricalPrice is one daily bar from the historical price endpoint.
type HistoricalPrice struct {
	Date     string  `json:"date"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	AdjClose float64 `json:"adjClose"`
	Volume   float64 `json:"volume"`
}

// QuoteSnapshot is the record the pull pipeline stores: one observed price
// point per symbol per poll.
type QuoteSnapshot struct {
	Symbol    string
	Timestamp int64 // unix seconds
	Price     float64
	Volume    float64
}

// Time returns the snapshot timestamp as time.Time.
func (s *QuoteSnapshot) Time() time.Time {
	return time.Unix(s.Timestamp, 0)
}
