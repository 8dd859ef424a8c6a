package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockTracker/internal/model"
)

// MockProvider returns controllable fixed data for development and testing.
// Tickers absent from History and Windows yield empty series.
type MockProvider struct {
	// History is keyed by ticker, then by timeframe period.
	History map[string]map[string][]model.OHLCV
	Windows map[string][]model.OHLCV
	Quotes  map[string]*model.Quote
	// Errors makes every call for a ticker fail with the given error.
	Errors map[string]error

	mu    sync.Mutex
	calls []string
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// Calls returns the calls made so far as "method ticker [period]".
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockProvider) FetchHistory(_ context.Context, ticker string, tf model.Timeframe) ([]model.OHLCV, error) {
	m.record(fmt.Sprintf("history %s %s", ticker, tf.Period))
	if err := m.Errors[ticker]; err != nil {
		return nil, err
	}
	return m.History[ticker][tf.Period], nil
}

func (m *MockProvider) FetchWindow(_ context.Context, ticker string, _, _ time.Time) ([]model.OHLCV, error) {
	m.record("window " + ticker)
	if err := m.Errors[ticker]; err != nil {
		return nil, err
	}
	return m.Windows[ticker], nil
}

func (m *MockProvider) FetchQuote(_ context.Context, ticker string) (*model.Quote, error) {
	m.record("quote " + ticker)
	if err := m.Errors[ticker]; err != nil {
		return nil, err
	}
	if q, ok := m.Quotes[ticker]; ok {
		return q, nil
	}
	return &model.Quote{}, nil
}

// GenerateBars builds a gently rising daily series ending today.
func GenerateBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// NewDemoProvider returns a MockProvider preloaded with the quick-pick
// symbols so the dashboard can run offline.
func NewDemoProvider() *MockProvider {
	prices := map[string]float64{
		"RELIANCE.NS": 2900, "HDFCBANK.NS": 1650, "TCS.NS": 4100, "ICICIBANK.NS": 1200, "SBIN.NS": 820,
		"AAPL": 228, "TSLA": 245, "GOOGL": 165, "MSFT": 430, "AMZN": 185,
		"^NSEI": 24500, "^NSEBANK": 52000, "^IXIC": 18000,
	}
	m := &MockProvider{
		History: make(map[string]map[string][]model.OHLCV),
		Windows: make(map[string][]model.OHLCV),
		Quotes:  make(map[string]*model.Quote),
	}
	for ticker, price := range prices {
		byPeriod := make(map[string][]model.OHLCV)
		for _, tf := range model.Timeframes {
			byPeriod[tf.Period] = GenerateBars(price, 120)
		}
		m.History[ticker] = byPeriod
		m.Windows[ticker] = GenerateBars(price, 2)
	}
	return m
}
