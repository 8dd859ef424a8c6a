package watchlist

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"StockTracker/internal/calculator"
	"StockTracker/internal/collector"
	"StockTracker/internal/model"
	"StockTracker/internal/ticker"
)

// refreshWindow is the calendar span requested per symbol on refresh.
const refreshWindow = 48 * time.Hour

// Store holds the ordered watchlist and persists it on every mutation.
// Save failures are logged and the in-memory list stays authoritative.
type Store struct {
	mu       sync.Mutex
	symbols  []string
	filePath string

	// Now is the clock used for refresh windows.
	Now func() time.Time
}

// Load creates a Store from filePath. A missing or malformed file yields an
// empty watchlist.
func Load(filePath string) *Store {
	symbols, err := LoadFile(filePath)
	if err != nil {
		log.Printf("[WARN] watchlist unreadable, starting empty: %v", err)
		symbols = []string{}
	}
	return &Store{symbols: symbols, filePath: filePath, Now: time.Now}
}

// List returns a copy of the watchlist in insertion order.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.symbols...)
}

// Len reports the number of symbols.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.symbols)
}

// Add appends symbol in uppercase. It reports false when the symbol is blank
// or already present.
func (s *Store) Add(symbol string) bool {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.symbols {
		if existing == symbol {
			return false
		}
	}
	s.symbols = append(s.symbols, symbol)
	s.save()
	return true
}

// Clear empties the watchlist. Clearing an empty list does nothing.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.symbols) == 0 {
		return
	}
	s.symbols = []string{}
	s.save()
}

// RefreshAll fetches a short daily window for every symbol, retrying once
// with the India suffix. Symbols that fail both attempts are left out.
func (s *Store) RefreshAll(ctx context.Context, provider collector.Provider) []model.WatchRow {
	symbols := s.List()
	end := s.Now()
	start := end.Add(-refreshWindow)

	rows := make([]model.WatchRow, 0, len(symbols))
	for _, sym := range symbols {
		bars := fetchWindow(ctx, provider, sym, start, end)
		if len(bars) == 0 {
			bars = fetchWindow(ctx, provider, sym+ticker.IndiaSuffix, start, end)
		}
		if len(bars) == 0 {
			log.Printf("[WARN] watchlist: skipping %s, no recent data", sym)
			continue
		}

		closes := calculator.Closes(bars)
		row := model.WatchRow{Symbol: sym, LastPrice: closes[len(closes)-1]}
		if len(closes) >= 2 {
			row.ChangePct = calculator.PercentChange(closes[0], closes[len(closes)-1])
		}
		rows = append(rows, row)
	}
	return rows
}

func fetchWindow(ctx context.Context, provider collector.Provider, sym string, start, end time.Time) []model.OHLCV {
	bars, err := provider.FetchWindow(ctx, sym, start, end)
	if err != nil {
		log.Printf("[WARN] watchlist: fetch %s: %v", sym, err)
		return nil
	}
	return bars
}

func (s *Store) save() {
	if s.filePath == "" {
		return
	}
	if err := SaveFile(s.filePath, s.symbols); err != nil {
		log.Printf("[ERROR] failed to save watchlist: %v", err)
	}
}
