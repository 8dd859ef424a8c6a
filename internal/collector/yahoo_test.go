package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"StockTracker/internal/model"
)

const chartJSON = `{"chart":{"result":[{
  "meta":{"currency":"INR","exchangeName":"NSI","fullExchangeName":"NSE","regularMarketPrice":4101.5,"fiftyTwoWeekHigh":4500,"fiftyTwoWeekLow":3300},
  "timestamp":[1700000200,1700000000,1700000100],
  "indicators":{"quote":[{
    "open":[12,10,null],
    "high":[13,11,null],
    "low":[11,9,null],
    "close":[12.5,10.5,null],
    "volume":[300,100,null]}]}}],"error":null}}`

const summaryJSON = `{"quoteSummary":{"result":[{
  "assetProfile":{"sector":"Technology","industry":"Information Technology Services"},
  "summaryDetail":{"marketCap":{"raw":15000000000000,"fmt":"15T"}}}],"error":null}}`

func newTestYahoo(t *testing.T, handler http.HandlerFunc) *YahooProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p := NewYahooProvider("", 5*time.Second)
	p.BaseURL = srv.URL
	return p
}

func TestYahoo_FetchHistory(t *testing.T) {
	var gotQuery string
	p := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/TCS.NS") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(chartJSON))
	})

	bars, err := p.FetchHistory(context.Background(), "TCS.NS", model.Timeframes[3])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotQuery, "range=6mo") || !strings.Contains(gotQuery, "interval=1d") {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if len(bars) != 2 {
		t.Fatalf("expected null bar to be skipped, got %d bars", len(bars))
	}
	if bars[0].Close != 10.5 || bars[1].Close != 12.5 {
		t.Errorf("expected ascending order, got %v then %v", bars[0].Close, bars[1].Close)
	}
}

func TestYahoo_EmptyResultIsEmptySeries(t *testing.T) {
	p := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{},"indicators":{"quote":[{}]}}],"error":null}}`))
	})
	bars, err := p.FetchHistory(context.Background(), "AAPL", model.Timeframes[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 0 {
		t.Errorf("expected no bars, got %d", len(bars))
	}
}

func TestYahoo_NotFound(t *testing.T) {
	p := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})
	_, err := p.FetchHistory(context.Background(), "ZZZZ", model.Timeframes[0])
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestYahoo_ServerErrorIsTransport(t *testing.T) {
	p := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})
	_, err := p.FetchWindow(context.Background(), "AAPL", time.Now().AddDate(0, 0, -2), time.Now())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !strings.Contains(err.Error(), "status 502") {
		t.Errorf("expected status in message, got %q", err.Error())
	}
}

func TestYahoo_RejectedRangeIsEmptySeries(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"422", http.StatusUnprocessableEntity, `{"chart":{"result":null,"error":{"code":"Unprocessable Entity","description":"1m data not available for startTime=1 and endTime=2."}}}`},
		{"400", http.StatusBadRequest, `{"chart":{"result":null,"error":{"code":"Bad Request","description":"Invalid input - interval=1m is not supported for range=5y"}}}`},
		{"error in 200 body", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Unprocessable Entity","description":"range not available"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			bars, err := p.FetchHistory(context.Background(), "AAPL", model.Timeframes[0])
			if err != nil {
				t.Fatalf("expected empty series, got %v", err)
			}
			if len(bars) != 0 {
				t.Errorf("expected no bars, got %d", len(bars))
			}
		})
	}
}

func TestYahoo_RejectedRangeFallsBack(t *testing.T) {
	p := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") != "1d" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Unprocessable Entity","description":"intraday range not available"}}}`))
			return
		}
		w.Write([]byte(chartJSON))
	})
	h, err := NewCollector(p).Fetch(context.Background(), "TCS.NS", model.Timeframes[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Timeframe != model.FallbackTimeframe || len(h.Bars) != 2 {
		t.Errorf("expected fallback to %v with 2 bars, got %v with %d", model.FallbackTimeframe, h.Timeframe, len(h.Bars))
	}
}

func TestYahoo_RateLimitIsTransport(t *testing.T) {
	p := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("Too Many Requests"))
	})
	_, err := p.FetchHistory(context.Background(), "AAPL", model.Timeframes[0])
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestYahoo_FetchQuote(t *testing.T) {
	p := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/") {
			w.Write([]byte(summaryJSON))
			return
		}
		w.Write([]byte(chartJSON))
	})
	q, err := p.FetchQuote(context.Background(), "TCS.NS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.LastPrice == nil || *q.LastPrice != 4101.5 {
		t.Errorf("unexpected last price %v", q.LastPrice)
	}
	if q.Exchange == nil || *q.Exchange != "NSE" {
		t.Errorf("unexpected exchange %v", q.Exchange)
	}
	if q.Sector == nil || *q.Sector != "Technology" {
		t.Errorf("unexpected sector %v", q.Sector)
	}
	if q.MarketCap == nil || *q.MarketCap != 15000000000000 {
		t.Errorf("unexpected market cap %v", q.MarketCap)
	}
}

func TestYahoo_FetchQuote_SummaryFailureLeavesFieldsUnknown(t *testing.T) {
	p := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v10/") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":10}}],"error":null}}`))
	})
	q, err := p.FetchQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.LastPrice == nil || *q.LastPrice != 10 {
		t.Errorf("unexpected last price %v", q.LastPrice)
	}
	if q.Sector != nil || q.Industry != nil || q.MarketCap != nil || q.FiftyTwoWeekHigh != nil {
		t.Errorf("expected unknown profile fields, got %+v", q)
	}
}
