package model

import (
	"fmt"
	"strings"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Region selects the default exchange for symbols that carry no suffix.
type Region string

const (
	RegionIndia Region = "INDIA"
	RegionUSA   Region = "USA"
)

// ParseRegion accepts "india", "INDIA", "usa", "us" and similar spellings.
func ParseRegion(s string) (Region, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INDIA", "IN", "NSE", "BSE":
		return RegionIndia, nil
	case "USA", "US":
		return RegionUSA, nil
	default:
		return "", fmt.Errorf("unknown region %q", s)
	}
}

// Timeframe is a provider look-back period sampled at a fixed interval.
type Timeframe struct {
	Label    string `json:"label"`
	Period   string `json:"period"`
	Interval string `json:"interval"`
}

// Timeframes lists the selectable chart ranges in display order.
var Timeframes = []Timeframe{
	{Label: "1D (1m)", Period: "1d", Interval: "1m"},
	{Label: "5D (15m)", Period: "5d", Interval: "15m"},
	{Label: "1M (1d)", Period: "1mo", Interval: "1d"},
	{Label: "6M (1d)", Period: "6mo", Interval: "1d"},
	{Label: "1Y (1d)", Period: "1y", Interval: "1d"},
	{Label: "MAX (1wk)", Period: "max", Interval: "1wk"},
}

// DefaultTimeframe is preselected when the caller does not choose one.
var DefaultTimeframe = Timeframes[4]

// FallbackTimeframe is requested when the chosen range comes back empty.
var FallbackTimeframe = Timeframe{Label: "1Y (1d)", Period: "1y", Interval: "1d"}

// ParseTimeframe matches a label ("6M (1d)"), a short label ("6M") or a
// period ("6mo"), case-insensitively. Empty input yields the default.
func ParseTimeframe(s string) (Timeframe, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTimeframe, nil
	}
	for _, tf := range Timeframes {
		short, _, _ := strings.Cut(tf.Label, " ")
		if strings.EqualFold(s, tf.Label) || strings.EqualFold(s, short) || strings.EqualFold(s, tf.Period) {
			return tf, nil
		}
	}
	return Timeframe{}, fmt.Errorf("unknown timeframe %q", s)
}
