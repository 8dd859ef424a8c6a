package recorder

import (
	"time"

	"StockTracker/internal/model"
)

// LookupEvent records one symbol search.
type LookupEvent struct {
	Ticker      string            `json:"ticker"`
	Requested   string            `json:"requested"` // period of the requested timeframe
	Served      string            `json:"served"`    // period actually returned
	Bars        int               `json:"bars"`
	LivePrice   float64           `json:"live_price"`
	PriceSource model.PriceSource `json:"price_source"`
	ChangePct   float64           `json:"change_pct"`
	Trend       model.TrendKind   `json:"trend"`
}

// WatchRefreshEvent records one watchlist refresh.
type WatchRefreshEvent struct {
	Trigger string // "MANUAL" or "SCHEDULED"
	Symbols int
	Rows    []model.WatchRow
}

// AuthEvent records a step of the OTP sign-in flow. Codes are never stored.
type AuthEvent struct {
	Email  string
	Action string // "OTP_SENT", "OTP_FAILED", "VERIFIED", "EXPIRED", "MISMATCH", "LOGOUT"
	Note   string
}

// LookupRecord is a stored LookupEvent.
type LookupRecord struct {
	Time time.Time `json:"time"`
	LookupEvent
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordLookup(evt *LookupEvent) error
	RecordWatchRefresh(evt *WatchRefreshEvent) error
	RecordAuthEvent(evt *AuthEvent) error
	RecentLookups(limit int) ([]LookupRecord, error)
	Close() error
}
