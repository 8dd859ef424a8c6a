package calculator

import (
	"errors"

	"StockTracker/internal/model"
)

// CalculateSMA computes the simple moving average of the last period prices.
// A window of identical prices averages to exactly that price.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	return windowMean(prices[len(prices)-period:]), nil
}

// windowMean averages w with Kahan summation.
func windowMean(w []float64) float64 {
	flat := true
	var sum, comp float64
	for _, p := range w {
		if p != w[0] {
			flat = false
		}
		y := p - comp
		t := sum + y
		comp = (t - sum) - y
		sum = t
	}
	if flat {
		return w[0]
	}
	return sum / float64(len(w))
}

// SMASeries returns the trailing simple moving average at every position.
// Positions with fewer than period observations are nil.
func SMASeries(prices []float64, period int) []*float64 {
	out := make([]*float64, len(prices))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(prices); i++ {
		v, err := CalculateSMA(prices[:i+1], period)
		if err != nil {
			continue
		}
		out[i] = &v
	}
	return out
}

// Last returns the final element of a series, or nil for an empty one.
func Last(series []*float64) *float64 {
	if len(series) == 0 {
		return nil
	}
	return series[len(series)-1]
}

// Closes extracts the closing prices of bars in order.
func Closes(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
