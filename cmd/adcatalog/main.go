package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ignite/creative-catalog/internal/config"
	"github.com/ignite/creative-catalog/internal/pkg/logger"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	version  = "dev"

	rootCmd = &cobra.Command{
		Use:   "adcatalog",
		Short: "Build and enrich the ad creative catalog",
		Long: `adcatalog turns campaign performance exports into a catalog of ads,
downloads their creatives, audits media availability and tags each image
with creative traits from a vision model.

Every stage saves the catalog as it goes, so an interrupted run can simply
be started again.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in defaults plus .env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(downloadCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(frameworkCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received interrupt, stopping after the current item")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	loaded, err := config.LoadFromEnv(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		loaded.Logging.Level = logLevel
	}
	logger.SetLevel(logger.ParseLevel(loaded.Logging.Level))
	cfg = loaded
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "adcatalog", version)
		},
	}
}
