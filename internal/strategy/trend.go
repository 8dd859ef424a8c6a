package strategy

import (
	"StockTracker/internal/calculator"
	"StockTracker/internal/model"
)

const (
	FastWindow = 20
	SlowWindow = 50
)

var hintText = map[model.TrendKind]string{
	model.TrendStrongUp:         "Trend strong (Price > MA20 > MA50). Educational hint: BUY / HOLD zone, do your own research.",
	model.TrendStrongDown:       "Trend weak (Price < MA20 < MA50). Educational hint: better to WAIT, avoid fresh buying.",
	model.TrendMixed:            "Mixed trend (MAs crossing/flat). Educational hint: WAIT and watch; no clear BUY signal.",
	model.TrendInsufficientData: "Not enough past data to compute moving averages.",
}

// Averages returns the MA20 and MA50 series over the closing prices of bars.
func Averages(bars []model.OHLCV) (ma20, ma50 []*float64) {
	closes := calculator.Closes(bars)
	return calculator.SMASeries(closes, FastWindow), calculator.SMASeries(closes, SlowWindow)
}

// Classify compares price against the latest MA20 and MA50.
// Bull alignment: price > MA20 > MA50
// Bear alignment: price < MA20 < MA50
// A single bar can flip the result; there is no smoothing.
func Classify(bars []model.OHLCV, price float64) model.TrendHint {
	ma20s, ma50s := Averages(bars)
	ma20 := calculator.Last(ma20s)
	ma50 := calculator.Last(ma50s)
	if ma20 == nil || ma50 == nil {
		return hint(model.TrendInsufficientData, nil, nil)
	}

	bullish := price > *ma20 && *ma20 > *ma50
	bearish := price < *ma20 && *ma20 < *ma50

	switch {
	case bullish:
		return hint(model.TrendStrongUp, ma20, ma50)
	case bearish:
		return hint(model.TrendStrongDown, ma20, ma50)
	default:
		return hint(model.TrendMixed, ma20, ma50)
	}
}

func hint(kind model.TrendKind, ma20, ma50 *float64) model.TrendHint {
	return model.TrendHint{Kind: kind, MA20: ma20, MA50: ma50, Text: hintText[kind]}
}
