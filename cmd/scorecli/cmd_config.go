package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"credit_oracle/internal/config"
	"credit_oracle/internal/risk"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect scoring parameters",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the parameter file and print the score brackets",
	RunE:  runConfigValidate,
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the effective parameters as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadScoring()
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd, configDumpCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadScoring()
	if err != nil {
		return err
	}
	if _, err := config.Compile(cfg); err != nil {
		return err
	}
	mapper, err := risk.FromConfig(cfg.Scoring)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d tier(s) valid\n\n", len(cfg.Tiers))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FROM\tTO\tQUALITY\tLOAN (USD)")
	bounds := cfg.Scoring.ScoreBounds
	for i := 0; i+1 < len(bounds); i++ {
		mid := (bounds[i] + bounds[i+1]) / 2
		fmt.Fprintf(w, "%.0f\t%.0f\t%s\t%s\n",
			bounds[i], bounds[i+1], mapper.Quality(mid), mapper.LoanAmount(mid).StringFixed(0))
	}
	return w.Flush()
}
