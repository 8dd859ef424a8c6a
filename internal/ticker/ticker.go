package ticker

import (
	"strings"

	"StockTracker/internal/model"
)

// IndexMarker prefixes global index codes such as ^NSEI or ^IXIC.
const IndexMarker = "^"

// IndiaSuffix is appended to bare symbols when the region is India.
const IndiaSuffix = ".NS"

var indiaSuffixes = []string{".NS", ".BO"}

// indiaIndices are quoted in rupees even though they carry no suffix.
var indiaIndices = map[string]bool{
	"^NSEI":    true,
	"^NSEBANK": true,
}

// Normalize maps a user-entered symbol to the canonical provider ticker.
// Index codes pass through untouched; everything else is uppercased and,
// for India, gets the NSE suffix unless it already names an exchange.
func Normalize(symbol string, region model.Region) string {
	symbol = strings.TrimSpace(symbol)
	if strings.HasPrefix(symbol, IndexMarker) {
		return symbol
	}
	up := strings.ToUpper(symbol)
	if HasIndiaSuffix(up) {
		return up
	}
	if region == model.RegionIndia {
		return up + IndiaSuffix
	}
	return up
}

// IsIndex reports whether the ticker is an index code.
func IsIndex(ticker string) bool {
	return strings.HasPrefix(ticker, IndexMarker)
}

// HasIndiaSuffix reports whether the ticker ends in .NS or .BO.
func HasIndiaSuffix(ticker string) bool {
	for _, s := range indiaSuffixes {
		if strings.HasSuffix(ticker, s) {
			return true
		}
	}
	return false
}

// Display strips the India exchange suffix for presentation.
func Display(ticker string) string {
	for _, s := range indiaSuffixes {
		if strings.HasSuffix(ticker, s) {
			return strings.TrimSuffix(ticker, s)
		}
	}
	return ticker
}

// Currency returns the currency sign for a lookup of ticker in region.
// The chosen region decides; outside INDIA only the India indices are
// labelled in rupees.
func Currency(ticker string, region model.Region) string {
	if region == model.RegionIndia || indiaIndices[strings.ToUpper(ticker)] {
		return "₹"
	}
	return "$"
}
