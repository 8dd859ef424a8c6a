package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"StockTracker/internal/model"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider implements Provider using the Yahoo Finance public API.
type YahooProvider struct {
	BaseURL string
	Client  *http.Client
}

// NewYahooProvider creates a Yahoo Finance provider with optional proxy support.
func NewYahooProvider(proxyURL string, timeout time.Duration) *YahooProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YahooProvider{
		BaseURL: defaultYahooBaseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

// yahooChart is the response structure from the Yahoo Finance chart API.
// Pointers keep null entries distinguishable from zero.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           *string  `json:"currency"`
				ExchangeName       *string  `json:"exchangeName"`
				FullExchangeName   *string  `json:"fullExchangeName"`
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				FiftyTwoWeekHigh   *float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow    *float64 `json:"fiftyTwoWeekLow"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

// errRangeRejected marks a request Yahoo refused for its range or interval,
// such as intraday data older than Yahoo keeps.
var errRangeRejected = errors.New("yahoo: range rejected")

// rejectedCodes are chart error codes that mean no data for this range.
var rejectedCodes = map[string]bool{
	"bad request":          true,
	"unprocessable entity": true,
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooRaw struct {
	Raw *float64 `json:"raw"`
}

type yahooSummary struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile *struct {
				Sector   *string `json:"sector"`
				Industry *string `json:"industry"`
			} `json:"assetProfile"`
			SummaryDetail *struct {
				MarketCap        *yahooRaw `json:"marketCap"`
				FiftyTwoWeekHigh *yahooRaw `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow  *yahooRaw `json:"fiftyTwoWeekLow"`
			} `json:"summaryDetail"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

func (p *YahooProvider) get(ctx context.Context, op, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, transportErr(op, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, transportErr(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportErr(op, fmt.Errorf("yahoo read body: %w", err))
	}
	if resp.StatusCode == http.StatusNotFound {
		return body, ErrNotFound
	}
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity {
		return body, errRangeRejected
	}
	if resp.StatusCode != http.StatusOK {
		return nil, transportErr(op, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body)))
	}
	return body, nil
}

func (p *YahooProvider) fetchChart(ctx context.Context, ticker string, params url.Values) (*yahooChart, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", p.BaseURL, url.PathEscape(ticker), params.Encode())
	body, err := p.get(ctx, "chart", endpoint)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ticker)
	}
	if errors.Is(err, errRangeRejected) {
		log.Printf("[WARN] yahoo rejected %s (%s): %s", ticker, params.Encode(), string(body))
		return &yahooChart{}, nil
	}
	if err != nil {
		return nil, err
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, transportErr("chart", fmt.Errorf("yahoo decode: %w", err))
	}
	if e := chart.Chart.Error; e != nil {
		switch {
		case strings.EqualFold(e.Code, "Not Found"):
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ticker)
		case rejectedCodes[strings.ToLower(e.Code)]:
			log.Printf("[WARN] yahoo rejected %s (%s): %s", ticker, params.Encode(), e.Description)
			return &yahooChart{}, nil
		}
		return nil, transportErr("chart", fmt.Errorf("yahoo api error: %s", e.Description))
	}
	return &chart, nil
}

func chartBars(chart *yahooChart) []model.OHLCV {
	if len(chart.Chart.Result) == 0 {
		return nil
	}
	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil
	}
	quote := result.Indicators.Quote[0]
	at := func(s []*float64, i int) *float64 {
		if i < len(s) {
			return s[i]
		}
		return nil
	}

	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, h, l, c := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if o == nil || h == nil || l == nil || c == nil {
			continue // skip null bars (holidays, halted minutes)
		}
		var vol float64
		if v := at(quote.Volume, i); v != nil {
			vol = *v
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0),
			Open:   *o,
			High:   *h,
			Low:    *l,
			Close:  *c,
			Volume: vol,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars
}

func (p *YahooProvider) FetchHistory(ctx context.Context, ticker string, tf model.Timeframe) ([]model.OHLCV, error) {
	params := url.Values{}
	params.Set("range", tf.Period)
	params.Set("interval", tf.Interval)
	chart, err := p.fetchChart(ctx, ticker, params)
	if err != nil {
		return nil, err
	}
	return chartBars(chart), nil
}

func (p *YahooProvider) FetchWindow(ctx context.Context, ticker string, start, end time.Time) ([]model.OHLCV, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	params.Set("interval", "1d")
	chart, err := p.fetchChart(ctx, ticker, params)
	if err != nil {
		return nil, err
	}
	return chartBars(chart), nil
}

// FetchQuote reads the chart meta block for price and exchange, then adds
// profile fields from quoteSummary. A quoteSummary failure only leaves
// those fields unknown.
func (p *YahooProvider) FetchQuote(ctx context.Context, ticker string) (*model.Quote, error) {
	params := url.Values{}
	params.Set("range", "1d")
	params.Set("interval", "1d")
	chart, err := p.fetchChart(ctx, ticker, params)
	if err != nil {
		return nil, err
	}

	q := &model.Quote{}
	if len(chart.Chart.Result) > 0 {
		meta := chart.Chart.Result[0].Meta
		q.LastPrice = meta.RegularMarketPrice
		q.Currency = meta.Currency
		q.Exchange = meta.FullExchangeName
		if q.Exchange == nil {
			q.Exchange = meta.ExchangeName
		}
		q.FiftyTwoWeekHigh = meta.FiftyTwoWeekHigh
		q.FiftyTwoWeekLow = meta.FiftyTwoWeekLow
	}

	if err := p.mergeSummary(ctx, ticker, q); err != nil {
		log.Printf("[WARN] quote summary for %s unavailable: %v", ticker, err)
	}
	return q, nil
}

func (p *YahooProvider) mergeSummary(ctx context.Context, ticker string, q *model.Quote) error {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=assetProfile,summaryDetail",
		p.BaseURL, url.PathEscape(ticker))
	body, err := p.get(ctx, "quoteSummary", endpoint)
	if err != nil {
		return err
	}
	var summary yahooSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return fmt.Errorf("yahoo decode summary: %w", err)
	}
	if e := summary.QuoteSummary.Error; e != nil {
		return fmt.Errorf("yahoo api error: %s", e.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return errors.New("no summary data")
	}

	res := summary.QuoteSummary.Result[0]
	if ap := res.AssetProfile; ap != nil {
		q.Sector = nonEmpty(ap.Sector)
		q.Industry = nonEmpty(ap.Industry)
	}
	if sd := res.SummaryDetail; sd != nil {
		if sd.MarketCap != nil {
			q.MarketCap = sd.MarketCap.Raw
		}
		if q.FiftyTwoWeekHigh == nil && sd.FiftyTwoWeekHigh != nil {
			q.FiftyTwoWeekHigh = sd.FiftyTwoWeekHigh.Raw
		}
		if q.FiftyTwoWeekLow == nil && sd.FiftyTwoWeekLow != nil {
			q.FiftyTwoWeekLow = sd.FiftyTwoWeekLow.Raw
		}
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
