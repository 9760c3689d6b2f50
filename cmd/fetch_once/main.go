package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/vitos/crypto_dashboard/internal/app"
	"github.com/vitos/crypto_dashboard/internal/config"
	"github.com/vitos/crypto_dashboard/internal/domain"
	"github.com/vitos/crypto_dashboard/internal/usecase"
)

// fetch_once performs a single price fetch with the configured source and
// prints every asset in every currency of the rate table.
func main() {
	var configPath, source string

	cmd := &cobra.Command{
		Use:          "fetch_once",
		Short:        "Fetch prices once and print them normalized",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if source != "" {
				cfg.Market.Source = source
			}
			return fetchOnce(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config/config.yaml", "configuration file path")
	cmd.Flags().StringVar(&source, "source", "", "override market.source (live or synthetic)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func fetchOnce(ctx context.Context, cfg *config.Config) error {
	rates, err := cfg.Market.RateTable()
	if err != nil {
		return err
	}
	src, kind := app.NewSource(cfg.Market, usecase.NewRandomWalk(cfg.Market.Seed), clockwork.NewRealClock())

	ids := make([]domain.AssetID, len(cfg.Market.Assets))
	for i, a := range cfg.Market.Assets {
		ids[i] = a.ID
	}

	fmt.Printf("Fetching %d assets from %s (%s)...\n", len(ids), src.Name(), kind)
	start := time.Now()
	entries, err := src.FetchPrices(ctx, ids)
	took := time.Since(start)
	if err != nil {
		fmt.Printf("❌ Fetch failed after %v (%s): %v\n", took, domain.FetchOutcome(err), err)
		fmt.Println("Fallback prices would be served:")
		entries = usecase.NewFallbackDataset(cfg.Market.Assets).Entries(ids, time.Now())
	} else {
		fmt.Printf("✅ Fetched in %v\n", took)
	}

	normalizer := usecase.NewNormalizer(rates)
	for _, a := range cfg.Market.Assets {
		e, ok := entries[a.ID]
		if !ok {
			fmt.Printf("%-6s %s\n", a.Symbol, domain.NotAvailable)
			continue
		}
		fmt.Printf("%-6s %+6.2f%%", a.Symbol, e.Change24h)
		for _, p := range normalizer.NormalizeAll(e) {
			fmt.Printf("  %s", p.Formatted)
		}
		fmt.Println()
	}
	return nil
}
