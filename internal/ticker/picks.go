package ticker

import "StockTracker/internal/model"

// Pick is a preset shortcut offered by the dashboard.
type Pick struct {
	Label  string       `json:"label"`
	Symbol string       `json:"symbol"`
	Region model.Region `json:"region,omitempty"`
}

// QuickPicks groups the preset shortcuts by market.
var QuickPicks = map[string][]Pick{
	"india": {
		{Label: "RELIANCE", Symbol: "RELIANCE", Region: model.RegionIndia},
		{Label: "HDFCBANK", Symbol: "HDFCBANK", Region: model.RegionIndia},
		{Label: "TCS", Symbol: "TCS", Region: model.RegionIndia},
		{Label: "ICICIBANK", Symbol: "ICICIBANK", Region: model.RegionIndia},
		{Label: "SBIN", Symbol: "SBIN", Region: model.RegionIndia},
	},
	"usa": {
		{Label: "AAPL", Symbol: "AAPL", Region: model.RegionUSA},
		{Label: "TSLA", Symbol: "TSLA", Region: model.RegionUSA},
		{Label: "GOOGL", Symbol: "GOOGL", Region: model.RegionUSA},
		{Label: "MSFT", Symbol: "MSFT", Region: model.RegionUSA},
		{Label: "AMZN", Symbol: "AMZN", Region: model.RegionUSA},
	},
	"indices": {
		{Label: "NIFTY 50", Symbol: "^NSEI"},
		{Label: "BANK NIFTY", Symbol: "^NSEBANK"},
		{Label: "NASDAQ", Symbol: "^IXIC"},
	},
}

// DefaultSymbol is prefilled in the search box for a region.
func DefaultSymbol(region model.Region) string {
	if region == model.RegionIndia {
		return "RELIANCE"
	}
	return "AAPL"
}
