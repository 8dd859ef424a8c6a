package model

// Lookup is the full result of searching one symbol.
type Lookup struct {
	Ticker        string      `json:"ticker"`
	DisplaySymbol string      `json:"display_symbol"`
	Currency      string      `json:"currency"`
	Region        Region      `json:"region"`
	Requested     Timeframe   `json:"requested"`
	Timeframe     Timeframe   `json:"timeframe"`
	Bars          []OHLCV     `json:"bars"`
	LivePrice     float64     `json:"live_price"`
	PriceSource   PriceSource `json:"price_source"`
	Change        float64     `json:"change"`
	ChangePct     float64     `json:"change_pct"`
	Hint          TrendHint   `json:"hint"`
	MA20          []*float64  `json:"ma20"`
	MA50          []*float64  `json:"ma50"`
	WindowHigh    float64     `json:"window_high"`
	WindowLow     float64     `json:"window_low"`
	MarketOpen    bool        `json:"market_open"`
	Quote         *Quote      `json:"quote,omitempty"`
}

// WatchRow is one refreshed watchlist entry.
type WatchRow struct {
	Symbol    string  `json:"symbol"`
	LastPrice float64 `json:"last_price"`
	ChangePct float64 `json:"change_pct"`
}
