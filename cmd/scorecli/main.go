package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"credit_oracle/internal/config"
	"credit_oracle/internal/processor"
	"credit_oracle/internal/report"
	"credit_oracle/internal/repository/memory"
	"credit_oracle/internal/risk"
	"credit_oracle/pkg/crypto"
)

var (
	configPath  string
	signingKey  string
	tokenSymbol string
	tokenRate   string
	outFormat   string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "scorecli",
	Short: "Score bank and exchange snapshots offline",
	Long: `scorecli runs the credit scoring engine on already-fetched bank or
exchange data stored as JSON, without starting the HTTP service.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Scoring parameter file (default: built-in parameters)")
	rootCmd.PersistentFlags().StringVar(&signingKey, "signing-key", os.Getenv("SCORER_SIGNING_KEY"), "HMAC key used to sign results")
	rootCmd.PersistentFlags().StringVar(&tokenSymbol, "token", "", "Token symbol for the loan quote")
	rootCmd.PersistentFlags().StringVar(&tokenRate, "rate", "", "Tokens per USD for the loan quote")
	rootCmd.PersistentFlags().StringVar(&outFormat, "format", "table", "Output format: table, json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log scoring details to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadScoring() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// newProcessor builds a processor without metrics. Results are signed only
// when a key is given.
func newProcessor(workers int) (*processor.ScoreProcessor, error) {
	logger := newLogger()

	cfg, err := loadScoring()
	if err != nil {
		return nil, err
	}
	compiled, err := config.Compile(cfg)
	if err != nil {
		return nil, err
	}
	mapper, err := risk.FromConfig(cfg.Scoring)
	if err != nil {
		return nil, err
	}

	var signer *crypto.Signer
	if signingKey != "" {
		signer = crypto.NewSigner(signingKey, logger)
	}

	tok := report.Token{Symbol: tokenSymbol}
	if tokenRate != "" {
		if tok.Rate, err = decimal.NewFromString(tokenRate); err != nil {
			return nil, fmt.Errorf("invalid --rate: %w", err)
		}
	}

	proc := processor.NewScoreProcessor(compiled, mapper, memory.NewResultRepository(0), signer, nil, workers, logger)
	return proc.WithToken(tok), nil
}
