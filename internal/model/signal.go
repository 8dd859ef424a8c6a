package model

// TrendKind is the categorical output of the trend classifier.
type TrendKind string

const (
	TrendStrongUp         TrendKind = "STRONG_UP"
	TrendStrongDown       TrendKind = "STRONG_DOWN"
	TrendMixed            TrendKind = "MIXED"
	TrendInsufficientData TrendKind = "INSUFFICIENT_DATA"
)

// TrendHint is an educational heuristic, not a trading signal.
// MA20 and MA50 are nil when the series is too short to define them.
type TrendHint struct {
	Kind TrendKind `json:"kind"`
	MA20 *float64  `json:"ma20"`
	MA50 *float64  `json:"ma50"`
	Text string    `json:"text"`
}

// PriceSource tells where a live price estimate came from.
type PriceSource string

const (
	PriceFromQuote     PriceSource = "quote"
	PriceFromLastClose PriceSource = "last_close"
)
