package strategy

import (
	"testing"
	"time"

	"StockTracker/internal/model"
)

func barsFromCloses(closes []float64) []model.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	return bars
}

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestClassify_InsufficientData(t *testing.T) {
	for _, n := range []int{0, 1, 19, 20, 49} {
		h := Classify(barsFromCloses(ramp(n, 100, 1)), 500)
		if h.Kind != model.TrendInsufficientData {
			t.Errorf("n=%d: expected %s, got %s", n, model.TrendInsufficientData, h.Kind)
		}
		if h.MA20 != nil || h.MA50 != nil {
			t.Errorf("n=%d: expected nil averages, got %v/%v", n, h.MA20, h.MA50)
		}
	}
}

func TestClassify_StrongUp(t *testing.T) {
	closes := ramp(60, 100, 1)
	h := Classify(barsFromCloses(closes), closes[len(closes)-1])
	if h.Kind != model.TrendStrongUp {
		t.Fatalf("expected %s, got %s", model.TrendStrongUp, h.Kind)
	}
	if h.MA20 == nil || h.MA50 == nil || *h.MA20 <= *h.MA50 {
		t.Errorf("expected MA20 > MA50, got %v/%v", h.MA20, h.MA50)
	}
	if h.Text == "" {
		t.Error("expected hint text")
	}
}

func TestClassify_StrongDown(t *testing.T) {
	closes := ramp(60, 200, -1)
	h := Classify(barsFromCloses(closes), closes[len(closes)-1])
	if h.Kind != model.TrendStrongDown {
		t.Fatalf("expected %s, got %s", model.TrendStrongDown, h.Kind)
	}
}

func TestClassify_Mixed(t *testing.T) {
	closes := ramp(60, 100, 1)
	// Price dips under MA20 while MA20 stays above MA50.
	h := Classify(barsFromCloses(closes), 120)
	if h.Kind != model.TrendMixed {
		t.Fatalf("expected %s, got %s", model.TrendMixed, h.Kind)
	}
	if h.MA20 == nil || h.MA50 == nil {
		t.Error("expected averages to be reported for MIXED")
	}
}

func TestClassify_ExactlyFiftyBars(t *testing.T) {
	closes := ramp(50, 100, 1)
	h := Classify(barsFromCloses(closes), 1000)
	if h.Kind != model.TrendStrongUp {
		t.Errorf("expected 50 bars to define MA50, got %s", h.Kind)
	}
}

func TestClassify_EqualityIsMixed(t *testing.T) {
	tests := []struct {
		price float64
		n     int
	}{
		{100, 60},
		{17.99, 60},
		{17.99, 250},
		{17.99, 1000},
		{1650.7, 120},
	}
	for _, tt := range tests {
		closes := make([]float64, tt.n)
		for i := range closes {
			closes[i] = tt.price
		}
		h := Classify(barsFromCloses(closes), tt.price)
		if h.Kind != model.TrendMixed {
			t.Errorf("flat %v x%d should be %s, got %s", tt.price, tt.n, model.TrendMixed, h.Kind)
		}
		if h.MA20 == nil || h.MA50 == nil || *h.MA20 != tt.price || *h.MA50 != tt.price {
			t.Errorf("flat %v x%d: averages should equal the price, got %v/%v", tt.price, tt.n, h.MA20, h.MA50)
		}
	}
}
