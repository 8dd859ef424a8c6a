package collector

import (
	"context"
	"errors"
	"log"
	"sync"

	"StockTracker/internal/model"
)

// History is a fetched price series plus a handle for its metadata.
type History struct {
	Ticker    string
	Requested model.Timeframe
	Timeframe model.Timeframe // the attempt that produced Bars
	Bars      []model.OHLCV
	Meta      *Metadata
}

// Collector fetches history with a fixed fallback range.
type Collector struct {
	Provider Provider
}

// NewCollector creates a new Collector.
func NewCollector(provider Provider) *Collector {
	return &Collector{Provider: provider}
}

// Attempts lists the ranges tried in order for a requested timeframe.
func Attempts(requested model.Timeframe) []model.Timeframe {
	return []model.Timeframe{requested, model.FallbackTimeframe}
}

// Fetch requests the series at tf and falls back to 1y/1d once when it is
// empty. A provider rejection or transport failure ends the attempts.
func (c *Collector) Fetch(ctx context.Context, ticker string, tf model.Timeframe) (*History, error) {
	for _, attempt := range Attempts(tf) {
		bars, err := c.Provider.FetchHistory(ctx, ticker, attempt)
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Ticker: ticker}
		}
		if err != nil {
			return nil, err
		}
		if len(bars) > 0 {
			return &History{
				Ticker:    ticker,
				Requested: tf,
				Timeframe: attempt,
				Bars:      bars,
				Meta:      NewMetadata(c.Provider, ticker),
			}, nil
		}
		log.Printf("[WARN] %s: no data for %s/%s", ticker, attempt.Period, attempt.Interval)
	}
	return nil, &NotFoundError{Ticker: ticker}
}

// Metadata lazily fetches and caches the quote for one ticker.
type Metadata struct {
	provider Provider
	ticker   string

	once  sync.Once
	quote *model.Quote
	err   error
}

// NewMetadata creates a metadata handle for ticker.
func NewMetadata(provider Provider, ticker string) *Metadata {
	return &Metadata{provider: provider, ticker: ticker}
}

// Quote returns the provider quote, calling the provider at most once.
func (m *Metadata) Quote(ctx context.Context) (*model.Quote, error) {
	m.once.Do(func() {
		m.quote, m.err = m.provider.FetchQuote(ctx, m.ticker)
	})
	return m.quote, m.err
}

// LivePrice prefers the provider's last quote and falls back to the last
// close of the series.
func LivePrice(ctx context.Context, meta *Metadata, bars []model.OHLCV) (float64, model.PriceSource, error) {
	if meta != nil {
		q, err := meta.Quote(ctx)
		if err != nil {
			log.Printf("[WARN] quote for %s failed, using last close: %v", meta.ticker, err)
		} else if q != nil && q.LastPrice != nil {
			return *q.LastPrice, model.PriceFromQuote, nil
		}
	}
	if len(bars) == 0 {
		return 0, "", ErrEmptySeries
	}
	return bars[len(bars)-1].Close, model.PriceFromLastClose, nil
}
