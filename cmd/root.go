package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/genexpr-cli/internal/config"
	"github.com/KaramelBytes/genexpr-cli/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "genexpr",
	Short: "genexpr: descriptive statistics for HCC vs normal gene-expression tables",
	Long: `genexpr loads a gene-expression table (one row per sample, labeled HCC or normal,
one column per gene) and reports per-gene mean, median, variance, standard deviation,
HCC/normal differential ratios, the most differential genes, values above a threshold
and per-sample minimum/maximum.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		printError(os.Stdout, os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.genexpr/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	// A local .env may provide GENEXPR_* variables; it never overrides the real environment.
	envErr := godotenv.Load()

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		level = zapcore.WarnLevel
	}
	if debug {
		level = zapcore.DebugLevel
	}
	if err := logger.Init(level); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to init logger: %v\n", err)
	}
	if envErr == nil {
		logger.Debug("loaded .env")
	}
}

// effectiveConfig returns the loaded configuration, or defaults when loading
// has not run.
func effectiveConfig() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Default()
	}
	return cfg
}
