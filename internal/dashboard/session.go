package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"StockTracker/internal/auth"
	"StockTracker/internal/calculator"
	"StockTracker/internal/collector"
	"StockTracker/internal/market"
	"StockTracker/internal/model"
	"StockTracker/internal/recorder"
	"StockTracker/internal/strategy"
	"StockTracker/internal/ticker"
	"StockTracker/internal/watchlist"
)

var (
	ErrUnauthenticated = errors.New("sign in with an OTP first")
	ErrEmptySymbol     = errors.New("enter a symbol")
)

// Status describes the sign-in state of the session.
type Status struct {
	State      auth.State `json:"state"`
	Email      string     `json:"email,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Configured bool       `json:"email_configured"`
}

// Session owns the state of the single dashboard user and wires the core
// together. Gate access is serialized by mu.
type Session struct {
	mu        sync.Mutex
	gate      *auth.Gate
	Watchlist *watchlist.Store
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Region    model.Region

	Now        func() time.Time
	MarketOpen func(ticker string, t time.Time) bool
}

// NewSession creates a session. A nil recorder records nothing.
func NewSession(gate *auth.Gate, store *watchlist.Store, col *collector.Collector, rec recorder.Recorder, region model.Region) *Session {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if region == "" {
		region = model.RegionIndia
	}
	return &Session{
		gate:       gate,
		Watchlist:  store,
		Collector:  col,
		Recorder:   rec,
		Region:     region,
		Now:        time.Now,
		MarketOpen: market.IsOpen,
	}
}

// Status returns the current sign-in state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{State: s.gate.State(), Email: s.gate.Email(), Configured: s.gate.Configured()}
	if st.State == auth.StateOtpSent {
		exp := s.gate.ExpiresAt()
		st.ExpiresAt = &exp
	}
	return st
}

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate.Authenticated()
}

// RequestOtp mails a fresh code to email.
func (s *Session) RequestOtp(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.gate.RequestOtp(email)
	switch {
	case err == nil:
		s.recordAuth(s.gate.Email(), "OTP_SENT", "")
	case errors.Is(err, auth.ErrConfigMissing), errors.Is(err, auth.ErrEmptyEmail), errors.Is(err, auth.ErrInvalidState):
	default:
		s.recordAuth(strings.TrimSpace(email), "OTP_FAILED", err.Error())
	}
	return err
}

// VerifyOtp signs the user in when code matches.
func (s *Session) VerifyOtp(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.gate.VerifyOtp(code)
	switch {
	case err == nil:
		s.recordAuth(s.gate.Email(), "VERIFIED", "")
	case errors.Is(err, auth.ErrExpired):
		s.recordAuth(s.gate.Email(), "EXPIRED", "")
	case errors.Is(err, auth.ErrMismatch):
		s.recordAuth(s.gate.Email(), "MISMATCH", "")
	}
	return err
}

// Logout returns the session to anonymous.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if email := s.gate.Email(); email != "" {
		s.recordAuth(email, "LOGOUT", "")
	}
	s.gate.Logout()
}

func (s *Session) recordAuth(email, action, note string) {
	if err := s.Recorder.RecordAuthEvent(&recorder.AuthEvent{Email: email, Action: action, Note: note}); err != nil {
		log.Printf("[ERROR] record auth event: %v", err)
	}
}

func (s *Session) requireAuth() error {
	if !s.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// Lookup normalizes raw, fetches its history and derives price, change,
// averages and the trend hint.
func (s *Session) Lookup(ctx context.Context, raw string, region model.Region, tf model.Timeframe) (*model.Lookup, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptySymbol
	}
	if region == "" {
		region = s.Region
	}
	if tf == (model.Timeframe{}) {
		tf = model.DefaultTimeframe
	}

	tk := ticker.Normalize(raw, region)
	h, err := s.Collector.Fetch(ctx, tk, tf)
	if err != nil {
		return nil, err
	}
	price, source, err := collector.LivePrice(ctx, h.Meta, h.Bars)
	if err != nil {
		return nil, err
	}

	first := h.Bars[0].Close
	high, low, _ := calculator.CalculateRange(h.Bars)
	ma20, ma50 := strategy.Averages(h.Bars)

	l := &model.Lookup{
		Ticker:        tk,
		DisplaySymbol: ticker.Display(tk),
		Currency:      ticker.Currency(tk, region),
		Region:        region,
		Requested:     tf,
		Timeframe:     h.Timeframe,
		Bars:          h.Bars,
		LivePrice:     price,
		PriceSource:   source,
		Change:        price - first,
		ChangePct:     calculator.PercentChange(first, price),
		Hint:          strategy.Classify(h.Bars, price),
		MA20:          ma20,
		MA50:          ma50,
		WindowHigh:    high,
		WindowLow:     low,
		MarketOpen:    s.MarketOpen(tk, s.Now()),
	}
	if q, err := h.Meta.Quote(ctx); err == nil {
		l.Quote = q
	}

	if err := s.Recorder.RecordLookup(&recorder.LookupEvent{
		Ticker:      tk,
		Requested:   tf.Period,
		Served:      h.Timeframe.Period,
		Bars:        len(h.Bars),
		LivePrice:   price,
		PriceSource: source,
		ChangePct:   l.ChangePct,
		Trend:       l.Hint.Kind,
	}); err != nil {
		log.Printf("[ERROR] record lookup: %v", err)
	}
	return l, nil
}


// Watchlist operations. All require a signed-in user.

func (s *Session) WatchSymbols() ([]string, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	return s.Watchlist.List(), nil
}

// AddToWatchlist reports whether symbol was new.
func (s *Session) AddToWatchlist(symbol string) (bool, error) {
	if err := s.requireAuth(); err != nil {
		return false, err
	}
	if strings.TrimSpace(symbol) == "" {
		return false, ErrEmptySymbol
	}
	return s.Watchlist.Add(symbol), nil
}

func (s *Session) ClearWatchlist() error {
	if err := s.requireAuth(); err != nil {
		return err
	}
	s.Watchlist.Clear()
	return nil
}

// RefreshWatchlist fetches current prices for every watched symbol.
func (s *Session) RefreshWatchlist(ctx context.Context) ([]model.WatchRow, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	rows := s.Watchlist.RefreshAll(ctx, s.Collector.Provider)
	if err := s.Recorder.RecordWatchRefresh(&recorder.WatchRefreshEvent{
		Trigger: "MANUAL",
		Symbols: s.Watchlist.Len(),
		Rows:    rows,
	}); err != nil {
		log.Printf("[ERROR] record watch refresh: %v", err)
	}
	return rows, nil
}

// History returns recent lookups from the recorder.
func (s *Session) History(limit int) ([]recorder.LookupRecord, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	recs, err := s.Recorder.RecentLookups(limit)
	if err != nil {
		return nil, fmt.Errorf("recent lookups: %w", err)
	}
	return recs, nil
}
