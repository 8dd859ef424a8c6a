package notifier

import (
	"fmt"
	"math"
	"strings"
	"time"

	"StockTracker/internal/model"
)

// Disclaimer is appended to every report.
const Disclaimer = "⚠ This app is for educational purposes only and is NOT financial advice. Always do your own research."

// NoWatchData is shown when a refresh produced no rows.
const NoWatchData = "No data available for current watchlist symbols."

// SetupInstructions explains how to configure email delivery of OTP codes.
func SetupInstructions() string {
	var b strings.Builder
	b.WriteString("⚠️ Email configuration not found!\n\n")
	b.WriteString("Setup Required\n")
	b.WriteString("This app sends one-time passwords by email, so SMTP credentials are needed.\n\n")
	b.WriteString("Set them in config.yaml:\n\n")
	b.WriteString("  email:\n")
	b.WriteString("    smtp_host: smtp.gmail.com\n")
	b.WriteString("    smtp_port: 587\n")
	b.WriteString("    user: your-email@gmail.com\n")
	b.WriteString("    password: your-app-password\n\n")
	b.WriteString("or in the environment / .env file: SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD.\n\n")
	b.WriteString("Replace the placeholders with your Gmail address and a Gmail App Password (not your regular password).\n")
	b.WriteString("App Passwords: https://myaccount.google.com/apppasswords\n")
	return b.String()
}

// FormatHeadline renders "TCS – ₹4101.50 (+12.30, +0.30%)".
func FormatHeadline(l *model.Lookup) string {
	return fmt.Sprintf("%s – %s%.2f (%+.2f, %+.2f%%)", l.DisplaySymbol, l.Currency, l.LivePrice, l.Change, l.ChangePct)
}

// FormatLookup renders a symbol lookup as a plain-text report.
func FormatLookup(l *model.Lookup) string {
	var b strings.Builder

	b.WriteString(FormatHeadline(l))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Range: %s", l.Timeframe.Label))
	if l.Timeframe != l.Requested {
		b.WriteString(fmt.Sprintf(" (no data for %s)", l.Requested.Label))
	}
	status := "closed"
	if l.MarketOpen {
		status = "open"
	}
	b.WriteString(fmt.Sprintf(" | %d bars | market %s\n", len(l.Bars), status))
	if l.PriceSource == model.PriceFromLastClose {
		b.WriteString("Price: last close (no live quote)\n")
	}

	b.WriteString(fmt.Sprintf("MA20: %s | MA50: %s\n", formatOptional(l.Hint.MA20), formatOptional(l.Hint.MA50)))
	b.WriteString(fmt.Sprintf("High: %.2f | Low: %.2f\n", l.WindowHigh, l.WindowLow))

	closes := make([]float64, len(l.Bars))
	for i, bar := range l.Bars {
		closes[i] = bar.Close
	}
	if spark := Sparkline(closes, 60); spark != "" {
		b.WriteString(spark)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(l.Hint.Text)
	b.WriteString("\n")
	return b.String()
}

// FormatQuoteInfo renders the "more info" panel. Unknown fields show as "-".
func FormatQuoteInfo(display, currency string, q *model.Quote) string {
	if q == nil {
		q = &model.Quote{}
	}
	var b strings.Builder
	row := func(k, v string) { b.WriteString(fmt.Sprintf("%-11s %s\n", k+":", v)) }

	row("Symbol", display)
	row("Currency", currency)
	row("Exchange", optionalString(q.Exchange))
	row("Sector", optionalString(q.Sector))
	row("Industry", optionalString(q.Industry))
	if q.MarketCap != nil {
		row("Market Cap", HumanizeNumber(*q.MarketCap))
	} else {
		row("Market Cap", "-")
	}
	row("52W High", formatOptional(q.FiftyTwoWeekHigh))
	row("52W Low", formatOptional(q.FiftyTwoWeekLow))
	return b.String()
}

// FormatWatchlist renders refreshed rows as a fixed-width table.
func FormatWatchlist(rows []model.WatchRow) string {
	if len(rows) == 0 {
		return NoWatchData + "\n"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-14s %12s %10s\n", "Symbol", "Last Price", "% Change"))
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%-14s %12.2f %+10.2f\n", r.Symbol, r.LastPrice, r.ChangePct))
	}
	return b.String()
}

// FormatDigest builds the subject and body of the scheduled watchlist email.
func FormatDigest(rows []model.WatchRow, at time.Time) (subject, body string) {
	subject = fmt.Sprintf("Global Stock Tracker watchlist | %s", at.Format("2006-01-02 15:04"))

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Watchlist refresh at %s\n\n", at.Format("2006-01-02 15:04 MST")))
	b.WriteString(FormatWatchlist(rows))
	b.WriteString("\n")
	b.WriteString(Disclaimer)
	b.WriteString("\n")
	return subject, b.String()
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws values as a single line of block characters, sampling
// down to at most width points.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		sampled := make([]float64, width)
		for i := range sampled {
			sampled[i] = values[(i+1)*len(values)/width-1]
		}
		values = sampled
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var b strings.Builder
	top := len(sparkLevels) - 1
	for _, v := range values {
		idx := top / 2
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(top)))
		}
		b.WriteRune(sparkLevels[idx])
	}
	return b.String()
}

// HumanizeNumber renders large values with a K/M/B/T suffix.
func HumanizeNumber(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2fT", v/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func optionalString(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
