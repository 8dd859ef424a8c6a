package model

// Quote holds supplementary provider metadata for a ticker.
// A nil field means the provider did not report it.
type Quote struct {
	LastPrice        *float64 `json:"last_price,omitempty"`
	Currency         *string  `json:"currency,omitempty"`
	Exchange         *string  `json:"exchange,omitempty"`
	Sector           *string  `json:"sector,omitempty"`
	Industry         *string  `json:"industry,omitempty"`
	MarketCap        *float64 `json:"market_cap,omitempty"`
	FiftyTwoWeekHigh *float64 `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow  *float64 `json:"fifty_two_week_low,omitempty"`
}
