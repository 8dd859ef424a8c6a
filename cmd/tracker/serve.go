package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"StockTracker/internal/scheduler"
	"StockTracker/internal/server"
)

func newServeCmd(cfgPath *string) *cobra.Command {
	var (
		listen string
		debug  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP dashboard API and the scheduled watchlist refresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Println("[INFO] StockTracker starting...")
			a, err := newApp(*cfgPath)
			if err != nil {
				log.Printf("[FATAL] %v", err)
				return err
			}
			defer a.Close()

			if listen == "" {
				listen = a.cfg.Server.Listen
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sched := scheduler.NewScheduler(ctx, a.watchlist, a.provider, a.digestSender(), a.cfg.Email.DigestTo, a.recorder)
			if err := sched.RegisterAll(a.cfg.Schedule.RefreshCron); err != nil {
				log.Printf("[FATAL] register cron tasks: %v", err)
				return err
			}
			sched.Start()
			defer sched.Stop()

			if os.Getenv("RUN_ON_START") == "true" {
				log.Println("[INFO] RUN_ON_START enabled, refreshing watchlist now")
				go sched.RunRefreshNow()
			}

			srv := server.NewServer(a.session, debug)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(listen) }()

			log.Println("[INFO] StockTracker is running. Press Ctrl+C to stop.")

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-sigCh:
				log.Println("[INFO] shutdown signal received, stopping...")
			case err := <-errCh:
				if err != nil {
					log.Printf("[ERROR] http server: %v", err)
					return err
				}
			}

			cancel()
			shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
			defer done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("[ERROR] http shutdown: %v", err)
			}
			log.Println("[INFO] StockTracker stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides server.listen)")
	cmd.Flags().BoolVar(&debug, "debug", false, "run gin in debug mode")
	return cmd
}
