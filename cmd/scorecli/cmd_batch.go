package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"credit_oracle/internal/domain"
	"credit_oracle/internal/processor"
)

var batchCmd = &cobra.Command{
	Use:   "batch <requests.json>",
	Short: "Score a list of requests concurrently",
	Long: `Score a JSON array of requests. Each element carries either a "bank" or
an "exchange" input, plus an optional request_id and loan_request.

Examples:
  scorecli batch requests.json
  scorecli batch --workers 16 --timeout 2m --format json requests.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

var (
	batchWorkers int
	batchTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchWorkers, "workers", 4, "Number of concurrent scoring workers")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", time.Minute, "Timeout for the whole batch")
}

func runBatch(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read requests: %w", err)
	}
	var reqs []processor.Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		return fmt.Errorf("failed to parse requests: %w", err)
	}

	proc, err := newProcessor(batchWorkers)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	var (
		recs   []*domain.ScoreRecord
		failed int
	)
	for i, res := range proc.ScoreBatch(ctx, reqs) {
		if res.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "request %d (%s): %v\n", i, reqs[i].RequestID, res.Err)
			continue
		}
		recs = append(recs, res.Record)
	}

	if err := printRecords(cmd, recs...); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(reqs))
	}
	return nil
}
