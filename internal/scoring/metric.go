// Package scoring computes metric, category and final credit scores from
// bank or exchange snapshots.
//
// Metrics never return an error to their caller and never panic. A failed
// metric scores 0, stores its error under the category's "error" key in the
// request's Feedback and reports it on the returned MetricResult.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"credit_oracle/internal/domain"
)

var (
	ErrNoCreditCard       = errors.New(domain.ErrNoCreditCardMsg)
	ErrNoCreditLimit      = errors.New("no credit limit")
	ErrNoCreditHistory    = errors.New("no credit history")
	ErrNoCreditInterest   = errors.New("no credit interest")
	ErrNoCreditLength     = errors.New("no credit length")
	ErrNoCreditActivity   = errors.New("no credit transactions")
	ErrNoWithdrawals      = errors.New("no withdrawals")
	ErrNoDeposits         = errors.New("no deposits")
	ErrNoNetFlow          = errors.New("no consistent net flow")
	ErrNoCheckingActivity = errors.New("no checking account transactions")
	ErrNoBalance          = errors.New("no balance")
	ErrNoTransactions     = errors.New("no transaction history")
	ErrNoSavings          = errors.New("no investing nor savings accounts")
	ErrUnknownLongevity   = errors.New("unknown account longevity")
	ErrNoProfit           = errors.New("no net profit")
	ErrShortSeries        = errors.New("not enough monthly data")
)

// measure is the body of a metric. It may write findings through the scope
// and returns the raw score with the principal feature it was derived from.
type measure func(s domain.Scope) (score, feature float64, err error)

func run(name string, c domain.Category, fb *domain.Feedback, fn measure) (res domain.MetricResult) {
	s := fb.Scope(c)
	res = domain.MetricResult{Metric: name, Category: c}

	defer func() {
		if r := recover(); r != nil {
			res.Score, res.Feature = 0, 0
			res.Err = fmt.Errorf("%s: %v", name, r)
			s.Fail(res.Err)
		}
	}()

	score, feature, err := fn(s)
	if err != nil {
		res.Err = err
		s.Fail(err)
		return res
	}

	res.Score = clamp01(score)
	res.Feature = feature
	return res
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
