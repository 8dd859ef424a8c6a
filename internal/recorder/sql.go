package recorder

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"StockTracker/internal/model"
)

// sqlRecorder holds the statements shared by the SQLite and Postgres
// recorders. Queries are written with "?" and rebound for Postgres.
type sqlRecorder struct {
	db       *sql.DB
	mu       sync.Mutex
	dollarPH bool
}

func (r *sqlRecorder) bind(query string) string {
	if !r.dollarPH {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *sqlRecorder) migrate(idColumn string) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS lookups (
			id           ` + idColumn + `,
			timestamp    BIGINT NOT NULL,
			ticker       TEXT NOT NULL,
			requested    TEXT,
			served       TEXT,
			bars         INTEGER,
			live_price   DOUBLE PRECISION,
			price_source TEXT,
			change_pct   DOUBLE PRECISION,
			trend        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lookups_ts ON lookups(timestamp)`,

		`CREATE TABLE IF NOT EXISTS watch_refreshes (
			id         ` + idColumn + `,
			timestamp  BIGINT NOT NULL,
			origin     TEXT,
			symbols    INTEGER,
			returned   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_ts ON watch_refreshes(timestamp)`,

		`CREATE TABLE IF NOT EXISTS watch_prices (
			id         ` + idColumn + `,
			timestamp  BIGINT NOT NULL,
			symbol     TEXT NOT NULL,
			last_price DOUBLE PRECISION,
			change_pct DOUBLE PRECISION
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_symbol_ts ON watch_prices(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS auth_events (
			id        ` + idColumn + `,
			timestamp BIGINT NOT NULL,
			email     TEXT,
			action    TEXT,
			note      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_auth_ts ON auth_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *sqlRecorder) RecordLookup(evt *LookupEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(r.bind(`INSERT INTO lookups
		(timestamp, ticker, requested, served, bars, live_price, price_source, change_pct, trend)
		VALUES (?,?,?,?,?,?,?,?,?)`),
		time.Now().Unix(), evt.Ticker, evt.Requested, evt.Served, evt.Bars,
		evt.LivePrice, string(evt.PriceSource), evt.ChangePct, string(evt.Trend),
	)
	return err
}

// RecordWatchRefresh writes the refresh summary and its rows in one transaction.
func (r *sqlRecorder) RecordWatchRefresh(evt *WatchRefreshEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Unix()
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(r.bind(`INSERT INTO watch_refreshes
		(timestamp, origin, symbols, returned) VALUES (?,?,?,?)`),
		now, evt.Trigger, evt.Symbols, len(evt.Rows),
	); err != nil {
		tx.Rollback()
		return err
	}
	for _, row := range evt.Rows {
		if _, err := tx.Exec(r.bind(`INSERT INTO watch_prices
			(timestamp, symbol, last_price, change_pct) VALUES (?,?,?,?)`),
			now, row.Symbol, row.LastPrice, row.ChangePct,
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *sqlRecorder) RecordAuthEvent(evt *AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(r.bind(`INSERT INTO auth_events
		(timestamp, email, action, note) VALUES (?,?,?,?)`),
		time.Now().Unix(), evt.Email, evt.Action, evt.Note,
	)
	return err
}

// RecentLookups returns the latest lookups, newest first.
func (r *sqlRecorder) RecentLookups(limit int) ([]LookupRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(r.bind(`SELECT timestamp, ticker, requested, served, bars,
		live_price, price_source, change_pct, trend
		FROM lookups ORDER BY timestamp DESC, id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LookupRecord
	for rows.Next() {
		var (
			ts            int64
			rec           LookupRecord
			source, trend string
		)
		if err := rows.Scan(&ts, &rec.Ticker, &rec.Requested, &rec.Served, &rec.Bars,
			&rec.LivePrice, &source, &rec.ChangePct, &trend); err != nil {
			return nil, err
		}
		rec.Time = time.Unix(ts, 0)
		rec.PriceSource = model.PriceSource(source)
		rec.Trend = model.TrendKind(trend)
		out = append(out, rec)
	}
	return out, rows.Err()
}
