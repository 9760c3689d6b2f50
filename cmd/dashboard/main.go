package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/vitos/crypto_dashboard/internal/app"
	"github.com/vitos/crypto_dashboard/internal/config"
	"github.com/vitos/crypto_dashboard/internal/infrastructure/logger"
	"github.com/vitos/crypto_dashboard/internal/metrics"
	"github.com/vitos/crypto_dashboard/internal/web"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		source     string
		port       int
	)

	cmd := &cobra.Command{
		Use:          "dashboard",
		Short:        "Crypto market dashboard backend",
		Long:         "Serves live or synthetic crypto prices, multi-currency views and rolling chart series over HTTP and WebSocket.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			if flags.Changed("source") {
				cfg.Market.Source = source
			}
			if flags.Changed("port") {
				cfg.Server.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config/config.yaml", "configuration file path")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	cmd.Flags().StringVar(&source, "source", "", "override market.source (live or synthetic)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "override server.port")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	m := metrics.New()
	market, err := app.NewMarketService(cfg, clockwork.NewRealClock(), m, log)
	if err != nil {
		return fmt.Errorf("init market service: %w", err)
	}
	server := web.NewServer(cfg.Server.Port, market, m, log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting dashboard",
		zap.String("source", cfg.Market.Source),
		zap.String("display_currency", cfg.Market.DisplayCurrency),
		zap.String("time_range", cfg.Market.TimeRange),
		zap.Int("assets", len(cfg.Market.Assets)),
	)

	g, gCtx := errgroup.WithContext(ctx)
	if err := market.Start(gCtx); err != nil {
		return err
	}
	g.Go(server.Start)
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return errors.Join(server.Shutdown(shutdownCtx), market.Stop(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		log.Error("Dashboard stopped with error", zap.Error(err))
		return err
	}
	log.Info("Dashboard stopped")
	return nil
}
