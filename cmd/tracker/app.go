package main

import (
	"fmt"
	"log"
	"time"

	"StockTracker/internal/auth"
	"StockTracker/internal/collector"
	"StockTracker/internal/config"
	"StockTracker/internal/dashboard"
	"StockTracker/internal/notifier"
	"StockTracker/internal/recorder"
	"StockTracker/internal/watchlist"
)

// app holds the wired components shared by every command.
type app struct {
	cfg       *config.Config
	provider  collector.Provider
	mailer    *notifier.SMTPMailer
	recorder  recorder.Recorder
	watchlist *watchlist.Store
	session   *dashboard.Session
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	var provider collector.Provider
	if cfg.DataSource.Provider == "mock" {
		provider = collector.NewDemoProvider()
	} else {
		provider = collector.NewYahooProvider(cfg.Proxy, time.Duration(cfg.DataSource.TimeoutSeconds)*time.Second)
	}
	log.Printf("[INFO] data source: %s", provider.Name())

	mailer := notifier.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.User, cfg.Email.Password, cfg.Email.From)
	if !cfg.EmailConfigured() {
		log.Println("[WARN] email is not configured; OTP sign-in is unavailable until SMTP credentials are set")
	}

	store := watchlist.Load(cfg.Watchlist.File)
	log.Printf("[INFO] watchlist loaded: %d symbols from %s", store.Len(), cfg.Watchlist.File)

	rec := openRecorder(cfg)
	gate := auth.NewGate(mailer)
	session := dashboard.NewSession(gate, store, collector.NewCollector(provider), rec, cfg.Region())

	return &app{
		cfg:       cfg,
		provider:  provider,
		mailer:    mailer,
		recorder:  rec,
		watchlist: store,
		session:   session,
	}, nil
}

func openRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.PostgresDSN != "" {
		pr, err := recorder.NewPostgresRecorder(cfg.Database.PostgresDSN)
		if err == nil {
			return pr
		}
		log.Printf("[WARN] init postgres recorder failed, trying sqlite: %v", err)
	}
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err == nil {
			return sr
		}
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
	}
	return recorder.NewNoopRecorder()
}

// digestSender returns the mailer for scheduled digests, or nil when no
// digest should be sent.
func (a *app) digestSender() notifier.Sender {
	if !a.mailer.Configured() || a.cfg.Email.DigestTo == "" {
		return nil
	}
	return a.mailer
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		log.Printf("[ERROR] close recorder: %v", err)
	}
}
