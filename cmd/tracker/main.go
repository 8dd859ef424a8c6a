package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:   "tracker",
		Short: "Global stock tracker for India and USA markets",
		Long: `Look up NSE/BSE and US tickers, see moving-average trend hints and keep a
watchlist. Access is protected by a one-time password sent by email.`,
		SilenceUsage: true,
	}

	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", defaultCfg, "path to the YAML config file")

	root.AddCommand(newServeCmd(&cfgPath))
	root.AddCommand(newShellCmd(&cfgPath))
	return root
}
