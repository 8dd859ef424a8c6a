package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"StockTracker/internal/auth"
	"StockTracker/internal/collector"
	"StockTracker/internal/model"
	"StockTracker/internal/notifier"
	"StockTracker/internal/ticker"
)

const anonymousHelp = `Sign in first:
  otp <email>     send a one-time password to email
  verify <code>   enter the code from the email
  help            show this help
  quit            exit`

const signedInHelp = `Commands:
  quote <symbol> [india|usa] [1D|5D|1M|6M|1Y|MAX]   price, trend hint and chart
  info <symbol> [india|usa]                           exchange, sector and 52-week range
  watch                                               list watchlist symbols
  add <symbol>                                        add a symbol to the watchlist
  clear                                               empty the watchlist
  refresh                                             latest prices for the watchlist
  picks                                               quick-pick symbols
  history                                             recent lookups
  logout                                              sign out
  help                                                show this help
  quit                                                exit`

// HandleCommand runs one line of shell input and returns the reply.
func (s *Session) HandleCommand(ctx context.Context, line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	if !s.Authenticated() {
		return s.handleAnonymous(cmd, args)
	}

	switch cmd {
	case "quote", "q":
		return s.cmdQuote(ctx, args)
	case "info":
		return s.cmdInfo(ctx, args)
	case "watch", "list":
		return s.cmdWatch()
	case "add":
		return s.cmdAdd(args)
	case "clear":
		if err := s.ClearWatchlist(); err != nil {
			return ErrorText(err)
		}
		return "Watchlist cleared."
	case "refresh":
		return s.cmdRefresh(ctx)
	case "picks":
		return FormatPicks()
	case "history":
		return s.cmdHistory()
	case "logout":
		s.Logout()
		return "Signed out."
	case "otp", "verify":
		return ErrorText(auth.ErrInvalidState)
	default:
		return signedInHelp
	}
}

func (s *Session) handleAnonymous(cmd string, args []string) string {
	if !s.Status().Configured {
		return notifier.SetupInstructions()
	}
	switch cmd {
	case "otp", "login":
		if len(args) != 1 {
			return "usage: otp <email>"
		}
		if err := s.RequestOtp(args[0]); err != nil {
			return ErrorText(err)
		}
		return fmt.Sprintf("OTP sent to %s. It is valid for 5 minutes.", strings.TrimSpace(args[0]))
	case "verify":
		if len(args) != 1 {
			return "usage: verify <code>"
		}
		if err := s.VerifyOtp(args[0]); err != nil {
			return ErrorText(err)
		}
		return "OTP verified! You are now logged in.\n\n" + signedInHelp
	default:
		return anonymousHelp
	}
}

// parseQuoteArgs reads a symbol followed by optional region and timeframe
// tokens in any order.
func (s *Session) parseQuoteArgs(args []string) (string, model.Region, model.Timeframe, error) {
	if len(args) == 0 {
		return "", "", model.Timeframe{}, ErrEmptySymbol
	}
	region, tf := s.Region, model.DefaultTimeframe
	for _, a := range args[1:] {
		if r, err := model.ParseRegion(a); err == nil {
			region = r
			continue
		}
		t, err := model.ParseTimeframe(a)
		if err != nil {
			return "", "", model.Timeframe{}, fmt.Errorf("%q is neither a region nor a timeframe", a)
		}
		tf = t
	}
	return args[0], region, tf, nil
}

func (s *Session) cmdQuote(ctx context.Context, args []string) string {
	sym, region, tf, err := s.parseQuoteArgs(args)
	if err != nil {
		return ErrorText(err)
	}
	l, err := s.Lookup(ctx, sym, region, tf)
	if err != nil {
		return ErrorText(err)
	}
	return notifier.FormatLookup(l) + "\n" + notifier.Disclaimer
}

func (s *Session) cmdInfo(ctx context.Context, args []string) string {
	sym, region, tf, err := s.parseQuoteArgs(args)
	if err != nil {
		return ErrorText(err)
	}
	l, err := s.Lookup(ctx, sym, region, tf)
	if err != nil {
		return ErrorText(err)
	}
	return notifier.FormatQuoteInfo(l.DisplaySymbol, l.Currency, l.Quote)
}

func (s *Session) cmdWatch() string {
	symbols, err := s.WatchSymbols()
	if err != nil {
		return ErrorText(err)
	}
	if len(symbols) == 0 {
		return "Watchlist is empty. Add some symbols with: add <symbol>"
	}
	return "Current Watchlist: " + strings.Join(symbols, ", ")
}

func (s *Session) cmdAdd(args []string) string {
	if len(args) != 1 {
		return "usage: add <symbol>"
	}
	added, err := s.AddToWatchlist(args[0])
	if err != nil {
		return ErrorText(err)
	}
	sym := strings.ToUpper(strings.TrimSpace(args[0]))
	if !added {
		return sym + " is already in the watchlist."
	}
	return "Added " + sym + "."
}

func (s *Session) cmdRefresh(ctx context.Context) string {
	symbols, err := s.WatchSymbols()
	if err != nil {
		return ErrorText(err)
	}
	if len(symbols) == 0 {
		return "Watchlist is empty. Add some symbols with: add <symbol>"
	}
	rows, err := s.RefreshWatchlist(ctx)
	if err != nil {
		return ErrorText(err)
	}
	return notifier.FormatWatchlist(rows)
}

func (s *Session) cmdHistory() string {
	recs, err := s.History(10)
	if err != nil {
		return ErrorText(err)
	}
	if len(recs) == 0 {
		return "No lookups recorded."
	}
	var b strings.Builder
	for _, r := range recs {
		b.WriteString(fmt.Sprintf("%s  %-12s %10.2f  %+6.2f%%  %s\n",
			r.Time.Format(time.DateTime), r.Ticker, r.LivePrice, r.ChangePct, r.Trend))
	}
	return b.String()
}

// FormatPicks lists the quick-pick groups.
func FormatPicks() string {
	groups := make([]string, 0, len(ticker.QuickPicks))
	for g := range ticker.QuickPicks {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	var b strings.Builder
	for _, g := range groups {
		labels := make([]string, 0, len(ticker.QuickPicks[g]))
		for _, p := range ticker.QuickPicks[g] {
			if p.Label != p.Symbol {
				labels = append(labels, fmt.Sprintf("%s (%s)", p.Label, p.Symbol))
			} else {
				labels = append(labels, p.Symbol)
			}
		}
		b.WriteString(fmt.Sprintf("Quick Picks (%s): %s\n", strings.ToUpper(g), strings.Join(labels, ", ")))
	}
	return b.String()
}

// ErrorText turns a core error into a user-facing message.
func ErrorText(err error) string {
	var te *collector.TransportError
	switch {
	case errors.Is(err, collector.ErrNotFound):
		return err.Error()
	case errors.As(err, &te):
		return "Error: " + te.Error()
	case errors.Is(err, auth.ErrNoActiveRequest):
		return "Please request an OTP first."
	case errors.Is(err, auth.ErrExpired):
		return "OTP has expired. Please request a new one."
	case errors.Is(err, auth.ErrMismatch):
		return "Incorrect OTP. Please try again."
	case errors.Is(err, auth.ErrConfigMissing):
		return notifier.SetupInstructions()
	default:
		return "Error: " + err.Error()
	}
}
