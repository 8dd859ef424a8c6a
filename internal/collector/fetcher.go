package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockTracker/internal/model"
)

// Provider defines the interface for fetching market data.
type Provider interface {
	// FetchHistory returns bars for a look-back period at a sampling interval.
	FetchHistory(ctx context.Context, ticker string, tf model.Timeframe) ([]model.OHLCV, error)
	// FetchWindow returns daily bars between start and end.
	FetchWindow(ctx context.Context, ticker string, start, end time.Time) ([]model.OHLCV, error)
	// FetchQuote returns supplementary metadata; absent fields stay nil.
	FetchQuote(ctx context.Context, ticker string) (*model.Quote, error)
	Name() string
}

var (
	// ErrNotFound means the provider does not know the ticker or returned no data after fallback.
	ErrNotFound = errors.New("not found")
	// ErrEmptySeries means a price was requested from an empty series.
	ErrEmptySeries = errors.New("empty price series")
)

// TransportError wraps a network or provider failure. Its message is the
// underlying error text unchanged.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// NotFoundError reports a ticker with no data after every attempt. It
// matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Ticker string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("'%s' not found or no data.", e.Ticker)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func transportErr(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}
