// Command datahubctl works with the DataHub records offline: it writes
// snapshots, prints analyses and renders reports and charts without a
// running server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soltixdb/datahub/internal/catalog"
	"github.com/soltixdb/datahub/internal/config"
	"github.com/soltixdb/datahub/internal/datagen"
	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/store"
)

var (
	// Global flags
	cfgFile  string
	debug    bool
	seed     uint64
	fromYear int
	toYear   int

	// Loaded configuration
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "datahubctl",
	Short: "DataHub CLI: snapshots, analyses, reports and charts",
	Long: `datahubctl loads the same records as the DataHub service (a snapshot when
one is configured, generated data otherwise) and runs the analytics locally.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml or ./configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "generator seed (overrides config)")
	rootCmd.PersistentFlags().IntVar(&fromYear, "from", 0, "first generated year (overrides config)")
	rootCmd.PersistentFlags().IntVar(&toYear, "to", 0, "last generated year (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	f := cmd.Flags()
	if f.Changed("seed") {
		c.Data.Seed = seed
	}
	if f.Changed("from") {
		c.Data.FromYear = fromYear
	}
	if f.Changed("to") {
		c.Data.ToYear = toYear
	}
	if debug {
		c.Logging.Level = "debug"
	}
	// stdout carries command output
	c.Logging.OutputPath = "stderr"
	c.Logging.Format = "console"

	logger, err := logging.NewFromConfig(c.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.SetGlobal(logger)

	cfg = c
	return nil
}

// openStore loads the configured records. A configured snapshot is read but
// never written here.
func openStore() (*store.Store, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	return store.Open(cat, store.Options{
		Generator:    generatorConfig(),
		SnapshotPath: cfg.Data.SnapshotPath,
	}, logging.Global())
}

func generatorConfig() datagen.Config {
	return datagen.Config{
		Seed:     cfg.Data.Seed,
		FromYear: cfg.Data.FromYear,
		ToYear:   cfg.Data.ToYear,
	}
}
