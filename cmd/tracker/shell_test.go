package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"StockTracker/internal/auth"
	"StockTracker/internal/collector"
	"StockTracker/internal/dashboard"
	"StockTracker/internal/watchlist"
)

func TestRunShellWithoutEmail(t *testing.T) {
	store := watchlist.Load(filepath.Join(t.TempDir(), "watchlist.json"))
	session := dashboard.NewSession(auth.NewGate(nil), store, collector.NewCollector(collector.NewDemoProvider()), nil, "")

	var out bytes.Buffer
	runShell(session, strings.NewReader("\nquote TCS\nexit\nhelp\n"), &out)

	got := out.String()
	if !strings.Contains(got, "Setup Required") {
		t.Errorf("expected setup instructions, got:\n%s", got)
	}
	if !strings.Contains(got, "guest > ") {
		t.Errorf("expected anonymous prompt, got:\n%s", got)
	}
	if strings.Contains(got, "TCS –") {
		t.Errorf("quote must not be served before sign-in:\n%s", got)
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		keep  string
	}{
		{"error", "Error: yahoo: status 502", "yahoo: status 502"},
		{"not found", "'NOPE' not found or no data.", "'NOPE' not found or no data."},
		{"headline", "TCS – ₹4101.50 (+12.30, +0.30%)\nTrend: ...", "Trend: ..."},
		{"plain", "Watchlist cleared.", "Watchlist cleared."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(tt.reply); !strings.Contains(got, tt.keep) {
				t.Errorf("render(%q) = %q, want it to contain %q", tt.reply, got, tt.keep)
			}
		})
	}
}
