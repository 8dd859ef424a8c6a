package recorder

import (
	"path/filepath"
	"testing"

	"StockTracker/internal/model"
)

func openTestDB(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func count(t *testing.T, r *SQLiteRecorder, table string) int {
	t.Helper()
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestSQLiteRecorder_Lookups(t *testing.T) {
	r := openTestDB(t)

	for _, tk := range []string{"AAPL", "TCS.NS", "^NSEI"} {
		err := r.RecordLookup(&LookupEvent{
			Ticker:      tk,
			Requested:   "1d",
			Served:      "1y",
			Bars:        250,
			LivePrice:   100,
			PriceSource: model.PriceFromQuote,
			ChangePct:   1.5,
			Trend:       model.TrendStrongUp,
		})
		if err != nil {
			t.Fatalf("record lookup: %v", err)
		}
	}

	recs, err := r.RecentLookups(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Ticker != "^NSEI" || recs[1].Ticker != "TCS.NS" {
		t.Errorf("expected newest first, got %s, %s", recs[0].Ticker, recs[1].Ticker)
	}
	if recs[0].Trend != model.TrendStrongUp || recs[0].PriceSource != model.PriceFromQuote || recs[0].Served != "1y" {
		t.Errorf("fields not round-tripped: %+v", recs[0])
	}
}

func TestSQLiteRecorder_WatchRefresh(t *testing.T) {
	r := openTestDB(t)
	err := r.RecordWatchRefresh(&WatchRefreshEvent{
		Trigger: "SCHEDULED",
		Symbols: 3,
		Rows: []model.WatchRow{
			{Symbol: "AAPL", LastPrice: 210, ChangePct: 1},
			{Symbol: "MSFT", LastPrice: 400, ChangePct: -2},
		},
	})
	if err != nil {
		t.Fatalf("record refresh: %v", err)
	}
	if n := count(t, r, "watch_refreshes"); n != 1 {
		t.Errorf("expected 1 refresh, got %d", n)
	}
	if n := count(t, r, "watch_prices"); n != 2 {
		t.Errorf("expected 2 price rows, got %d", n)
	}

	var returned int
	if err := r.db.QueryRow("SELECT returned FROM watch_refreshes").Scan(&returned); err != nil {
		t.Fatal(err)
	}
	if returned != 2 {
		t.Errorf("expected returned=2, got %d", returned)
	}
}

func TestSQLiteRecorder_AuthEvents(t *testing.T) {
	r := openTestDB(t)
	for _, action := range []string{"OTP_SENT", "MISMATCH", "VERIFIED", "LOGOUT"} {
		if err := r.RecordAuthEvent(&AuthEvent{Email: "user@example.com", Action: action}); err != nil {
			t.Fatalf("record %s: %v", action, err)
		}
	}
	if n := count(t, r, "auth_events"); n != 4 {
		t.Errorf("expected 4 auth events, got %d", n)
	}
}

func TestSQLiteRecorder_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.db")
	r, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatal(err)
	}
	r.RecordLookup(&LookupEvent{Ticker: "AAPL"})
	r.Close()

	r, err = NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer r.Close()
	recs, err := r.RecentLookups(0)
	if err != nil || len(recs) != 1 {
		t.Errorf("expected the earlier lookup after reopen, got %v, %v", recs, err)
	}
}

func TestBind(t *testing.T) {
	pg := &sqlRecorder{dollarPH: true}
	if got := pg.bind("INSERT INTO t (a, b) VALUES (?,?)"); got != "INSERT INTO t (a, b) VALUES ($1,$2)" {
		t.Errorf("unexpected postgres query %q", got)
	}
	lite := &sqlRecorder{}
	if got := lite.bind("SELECT ?"); got != "SELECT ?" {
		t.Errorf("sqlite query should be unchanged, got %q", got)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordLookup(&LookupEvent{}); err != nil {
		t.Error(err)
	}
	if recs, err := r.RecentLookups(5); err != nil || recs != nil {
		t.Errorf("expected nothing from noop, got %v, %v", recs, err)
	}
}

var (
	_ Recorder = (*SQLiteRecorder)(nil)
	_ Recorder = (*PostgresRecorder)(nil)
)
