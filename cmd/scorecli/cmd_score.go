package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"credit_oracle/internal/domain"
	"credit_oracle/internal/processor"
)

var scoreCmd = &cobra.Command{
	Use:   "score <input.json>",
	Short: "Score one bank or exchange snapshot",
	Long: `Score one snapshot. The file holds a bank input (accounts, transactions,
institution_name) or an exchange input (accounts, transactions).

Examples:
  scorecli score --source bank plaid.json
  scorecli score --source exchange --loan 5000 coinbase.json
  scorecli score --source bank --token SCRT --rate 1.25 --format json plaid.json`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

var (
	scoreSource string
	scoreLoan   float64
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreSource, "source", "bank", "Data source: bank, exchange")
	scoreCmd.Flags().Float64Var(&scoreLoan, "loan", 0, "Requested loan amount in USD, selects the parameter tier")
}

func runScore(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	req := processor.Request{LoanRequest: scoreLoan}
	switch domain.Source(strings.ToLower(scoreSource)) {
	case domain.SourceBank:
		req.Bank = &domain.BankInput{}
		err = json.Unmarshal(data, req.Bank)
	case domain.SourceExchange:
		req.Exchange = &domain.ExchangeInput{}
		err = json.Unmarshal(data, req.Exchange)
	default:
		return fmt.Errorf("unknown source %q", scoreSource)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s input: %w", scoreSource, err)
	}

	proc, err := newProcessor(1)
	if err != nil {
		return err
	}
	rec, err := proc.Score(context.Background(), req)
	if err != nil {
		return err
	}
	return printRecords(cmd, rec)
}

func printRecords(cmd *cobra.Command, recs ...*domain.ScoreRecord) error {
	out := cmd.OutOrStdout()
	if outFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if len(recs) == 1 {
			return enc.Encode(recs[0])
		}
		return enc.Encode(recs)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REQUEST\tSOURCE\tSCORE\tQUALITY\tLOAN (USD)\tRISK")
	for _, rec := range recs {
		score, loan := "-", "-"
		if rec.ScoreExist {
			score = fmt.Sprintf("%.0f", rec.Score)
			loan = humanize.Comma(rec.LoanAmount())
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.RequestID, rec.Source, score, rec.Quality, loan, rec.RiskLevel())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, rec := range recs {
		fmt.Fprintf(out, "\n%s\n", rec.Message)
	}
	return nil
}
