package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"StockTracker/internal/collector"
	"StockTracker/internal/market"
	"StockTracker/internal/model"
	"StockTracker/internal/notifier"
	"StockTracker/internal/recorder"
	"StockTracker/internal/watchlist"

	"github.com/robfig/cron/v3"
)

// Scheduler refreshes the watchlist on a cron schedule and mails a digest.
type Scheduler struct {
	Cron      *cron.Cron
	Watchlist *watchlist.Store
	Provider  collector.Provider
	Mailer    notifier.Sender // nil disables the digest
	DigestTo  string
	Recorder  recorder.Recorder
	Ctx       context.Context

	// MarketOpen gates scheduled runs; Now is the job clock.
	MarketOpen func(symbols []string, t time.Time) bool
	Now        func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, store *watchlist.Store, provider collector.Provider, mailer notifier.Sender, digestTo string, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Watchlist:  store,
		Provider:   provider,
		Mailer:     mailer,
		DigestTo:   digestTo,
		Recorder:   rec,
		Ctx:        ctx,
		MarketOpen: market.AnyOpen,
		Now:        time.Now,
	}
}

// RegisterAll registers the watchlist refresh task.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	ctx := s.Cron.Stop()
	<-ctx.Done()
	log.Println("[INFO] scheduler stopped")
}

// RunRefreshNow refreshes immediately, ignoring market hours.
func (s *Scheduler) RunRefreshNow() []model.WatchRow {
	return s.refresh("MANUAL")
}

func (s *Scheduler) refreshTask() {
	symbols := s.Watchlist.List()
	if len(symbols) == 0 {
		log.Println("[INFO] scheduled refresh skipped: watchlist is empty")
		return
	}
	if !s.MarketOpen(symbols, s.Now()) {
		log.Println("[INFO] scheduled refresh skipped: markets closed")
		return
	}
	s.refresh("SCHEDULED")
}

func (s *Scheduler) refresh(trigger string) []model.WatchRow {
	log.Printf("[INFO] running %s watchlist refresh", trigger)
	symbols := s.Watchlist.Len()
	rows := s.Watchlist.RefreshAll(s.Ctx, s.Provider)

	if err := s.Recorder.RecordWatchRefresh(&recorder.WatchRefreshEvent{
		Trigger: trigger,
		Symbols: symbols,
		Rows:    rows,
	}); err != nil {
		log.Printf("[ERROR] record watch refresh: %v", err)
	}

	if trigger == "SCHEDULED" {
		subject, body := notifier.FormatDigest(rows, s.Now())
		s.trySend(subject, body)
	}
	return rows
}

func (s *Scheduler) trySend(subject, body string) {
	if s.Mailer == nil || s.DigestTo == "" {
		return
	}
	if err := notifier.SendWithRetry(s.Ctx, s.Mailer, s.DigestTo, subject, body, 3); err != nil {
		log.Printf("[ERROR] send digest: %v", err)
	}
}
