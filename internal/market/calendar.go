package market

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/scmhub/calendar"

	"StockTracker/internal/ticker"
)

// Calendar answers whether the exchange of a ticker is trading.
type Calendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location

	// regular session used when the library has no calendar for MIC
	openMin, closeMin int
}

type session struct {
	tz          string
	open, close int // minutes after midnight, local time
}

var fallbackSessions = map[string]session{
	"xnys": {tz: "America/New_York", open: 9*60 + 30, close: 16 * 60},
	"xnse": {tz: "Asia/Kolkata", open: 9*60 + 15, close: 15*60 + 30},
	"xbom": {tz: "Asia/Kolkata", open: 9*60 + 15, close: 15*60 + 30},
}

// indiaIndices trade on NSE.
var indiaIndices = map[string]bool{"^NSEI": true, "^NSEBANK": true}

// MICFor maps a canonical ticker to an ISO 10383 market code.
func MICFor(symbol string) string {
	upper := strings.ToUpper(symbol)
	switch {
	case indiaIndices[upper]:
		return "xnse"
	case strings.HasSuffix(upper, ".BO"):
		return "xbom"
	case ticker.HasIndiaSuffix(upper):
		return "xnse"
	default:
		return "xnys"
	}
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*Calendar{}
)

// For returns the calendar for the ticker's exchange, loading it once per MIC.
func For(symbol string) *Calendar {
	mic := MICFor(symbol)

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if c, ok := cache[mic]; ok {
		return c
	}
	c := load(mic)
	cache[mic] = c
	return c
}

func load(mic string) *Calendar {
	if cal := calendar.GetCalendar(mic); cal != nil {
		return &Calendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
	}
	log.Printf("[WARN] no trading calendar for %s, using weekday session hours", mic)
	return fallbackCalendar(mic)
}

func fallbackCalendar(mic string) *Calendar {
	s, ok := fallbackSessions[mic]
	if !ok {
		s = fallbackSessions["xnys"]
	}
	loc, err := time.LoadLocation(s.tz)
	if err != nil {
		loc = time.UTC
	}
	return &Calendar{MIC: mic, Fallback: true, Timezone: loc, openMin: s.open, closeMin: s.close}
}

// IsTradingDay reports whether date is a business day on the exchange.
func (c *Calendar) IsTradingDay(date time.Time) bool {
	if c.Timezone != nil {
		date = date.In(c.Timezone)
	}
	if c.Fallback {
		wd := date.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return c.Calendar.IsBusinessDay(date)
}

// IsOpen reports whether the exchange is in its regular session at t.
func (c *Calendar) IsOpen(t time.Time) bool {
	if c.Timezone != nil {
		t = t.In(c.Timezone)
	}
	if c.Fallback {
		if !c.IsTradingDay(t) {
			return false
		}
		m := t.Hour()*60 + t.Minute()
		return m >= c.openMin && m < c.closeMin
	}
	return c.Calendar.IsOpen(t)
}

// IsOpen reports whether the exchange of symbol is trading at t.
func IsOpen(symbol string, t time.Time) bool {
	return For(symbol).IsOpen(t)
}

// AnyOpen reports whether any of the symbols' exchanges is trading at t.
// An empty list counts as closed.
func AnyOpen(symbols []string, t time.Time) bool {
	seen := make(map[string]bool)
	for _, s := range symbols {
		mic := MICFor(s)
		if seen[mic] {
			continue
		}
		seen[mic] = true
		if For(s).IsOpen(t) {
			return true
		}
	}
	return false
}
