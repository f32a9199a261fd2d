package scoring

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"credit_oracle/internal/config"
	"credit_oracle/internal/domain"
	"credit_oracle/pkg/binning"
)

const (
	microTransaction  = 5.0
	minWithdrawal     = 15.0
	minPayroll        = 200.0
	noOutflowRatio    = 10.0
	regressionMinimum = 10
)

// recurringWithdrawals are the category paths treated as automated monthly
// debits.
var recurringWithdrawals = [][]string{
	{"Service", "Subscription"},
	{"Service", "Financial", "Loans and Mortgages"},
	{"Service", "Insurance"},
	{"Payment", "Rent"},
}

func isRecurringWithdrawal(tx domain.Transaction) bool {
	for _, path := range recurringWithdrawals {
		if tx.CategoryIs(path...) {
			return true
		}
	}
	return false
}

func checkingIDs(accounts []domain.Account) map[string]bool {
	ids := make(map[string]bool)
	for _, a := range accounts {
		if a.IsChecking() {
			ids[a.ID] = true
		}
	}
	return ids
}

// bankFlows returns the monthly net flow of checking accounts over the last
// months complete months, inflows positive. Micro transactions and internal
// transfers are ignored.
func bankFlows(in domain.BankInput, months int) (series, error) {
	ids := checkingIDs(in.Accounts)

	var pts []point
	for _, tx := range in.Transactions {
		if !ids[tx.AccountID] || math.Abs(tx.Amount) <= microTransaction || tx.HasCategory("Internal Account Transfer") {
			continue
		}
		pts = append(pts, point{at: tx.Date, amount: -tx.Amount})
	}

	flows := monthly(pts).excludingMonthOf(in.Now()).tail(months)
	if flows.Len() == 0 {
		return series{}, ErrNoNetFlow
	}
	return flows, nil
}

// recurring scores the average monthly count and volume of the matching
// transactions on the diversity/velocity grid.
func recurring(in domain.BankInput, p *config.BankParams, match func(domain.Transaction) bool, edges binning.Vector) (count, volume, score float64, ok bool, err error) {
	var pts []point
	for _, tx := range in.Transactions {
		if match(tx) {
			pts = append(pts, point{at: tx.Date, amount: math.Abs(tx.Amount)})
		}
	}
	if len(pts) == 0 {
		return 0, 0, 0, false, nil
	}

	m := monthly(pts)
	count = mean(m.counts)
	volume = mean(m.sums)

	score, err = p.DiversityVelocity.At(
		p.CountZero.Digitize(count, true),
		edges.Digitize(volume, true),
	)
	return count, volume, score, true, err
}

// VelocityWithdrawals scores recurring monthly debits such as rent,
// subscriptions, insurance and loan repayments.
func VelocityWithdrawals(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) domain.MetricResult {
	return run("velocity_withdrawals", domain.CategoryVelocity, fb, func(s domain.Scope) (float64, float64, error) {
		count, volume, score, ok, err := recurring(in, p, func(tx domain.Transaction) bool {
			return isRecurringWithdrawal(tx) && tx.Amount > minWithdrawal
		}, p.VolumeWithdraw)
		if err != nil {
			return 0, 0, err
		}
		if !ok {
			return 0, 0, ErrNoWithdrawals
		}

		s.Set("withdrawals", binning.Round(count, 0))
		s.Set("withdrawals_volume", binning.Round(volume, 0))
		return score, volume, nil
	})
}

// VelocityDeposits scores payroll deposits above 200 USD.
func VelocityDeposits(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) domain.MetricResult {
	return run("velocity_deposits", domain.CategoryVelocity, fb, func(s domain.Scope) (float64, float64, error) {
		count, volume, score, ok, err := recurring(in, p, func(tx domain.Transaction) bool {
			return tx.Amount < -minPayroll && tx.HasCategory("payroll")
		}, p.VolumeDeposit)
		if err != nil {
			return 0, 0, err
		}
		if !ok {
			return 0, 0, ErrNoDeposits
		}

		s.Set("deposits", binning.Round(count, 0))
		s.Set("deposits_volume", binning.Round(volume, 0))
		return score, volume, nil
	})
}

func splitSigns(x []float64) (pos, neg []float64) {
	for _, v := range x {
		if v < 0 {
			neg = append(neg, v)
		} else {
			pos = append(pos, v)
		}
	}
	return pos, neg
}

// VelocityMonthNetFlow scores the direction (inflow months per outflow
// month) and magnitude of the last 12 months of net flow.
func VelocityMonthNetFlow(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) domain.MetricResult {
	return run("velocity_month_net_flow", domain.CategoryVelocity, fb, func(s domain.Scope) (float64, float64, error) {
		flows, err := bankFlows(in, 12)
		if err != nil {
			return 0, 0, err
		}

		abs := make([]float64, flows.Len())
		for i, v := range flows.sums {
			abs[i] = math.Abs(v)
		}
		magnitude := mean(abs)

		pos, neg := splitSigns(flows.sums)
		direction := noOutflowRatio
		if len(neg) > 0 {
			direction = float64(len(pos)) / float64(len(neg))
		}

		score, err := p.ActivityVolume.At(
			p.FlowRatio.Digitize(direction, true),
			p.VolumeFlow.Digitize(magnitude, true),
		)
		if err != nil {
			return 0, 0, err
		}

		s.Set("avg_net_flow", binning.Round(magnitude, 2))
		return score, magnitude, nil
	})
}

// VelocityMonthTxnCount scores the average monthly count of non-micro
// transactions per checking account.
func VelocityMonthTxnCount(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) domain.MetricResult {
	return run("velocity_month_txn_count", domain.CategoryVelocity, fb, func(s domain.Scope) (float64, float64, error) {
		var counts []float64
		for _, a := range in.Accounts {
			if !a.IsChecking() {
				continue
			}
			var pts []point
			for _, tx := range in.Transactions {
				if tx.AccountID == a.ID && math.Abs(tx.Amount) > microTransaction {
					pts = append(pts, point{at: tx.Date, amount: tx.Amount})
				}
			}
			counts = append(counts, monthly(pts).counts...)
		}
		if len(counts) == 0 {
			return 0, 0, ErrNoCheckingActivity
		}

		avg := mean(counts)
		score, err := p.FicoMedians.At(p.CountTxn.Digitize(avg, true))
		if err != nil {
			return 0, 0, err
		}

		s.Set("count_monthly_txn", binning.Round(avg, 0))
		return score, avg, nil
	})
}

// VelocitySlope scores the trend of the last 24 months of net flow. A least
// squares slope is used when there are at least 10 months or no outflow
// month; shorter mixed series fall back to a ratio of ratios on the
// transposed activity grid.
func VelocitySlope(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) domain.MetricResult {
	return run("velocity_slope", domain.CategoryVelocity, fb, func(s domain.Scope) (float64, float64, error) {
		flows, err := bankFlows(in, 24)
		if err != nil {
			return 0, 0, err
		}

		pos, neg := splitSigns(flows.sums)
		if flows.Len() >= regressionMinimum || len(neg) == 0 {
			if flows.Len() < 2 {
				return 0, 0, ErrShortSeries
			}
			x := make([]float64, flows.Len())
			floats.Span(x, 0, float64(flows.Len()-1))
			_, slope := stat.LinearRegression(x, flows.sums, nil, false)

			score, err := p.FicoMedians.At(p.SlopeLR.Digitize(slope, true))
			if err != nil {
				return 0, 0, err
			}
			s.Set("slope", binning.Round(slope, 2))
			return score, slope, nil
		}

		direction := float64(len(pos)) / float64(len(neg))
		magnitude := math.Abs(floats.Sum(pos) / floats.Sum(neg))
		if direction < 1 {
			magnitude = -magnitude
		}

		score, err := p.ActivityVolume.T().At(
			p.Slope.Digitize(direction, true),
			p.Slope.Digitize(magnitude, true),
		)
		if err != nil {
			return 0, 0, err
		}
		s.Set("monthly_flow", binning.Round(magnitude, 2))
		return score, magnitude, nil
	})
}
