package scoring

import (
	"math"

	"credit_oracle/internal/config"
	"credit_oracle/internal/domain"
	"credit_oracle/pkg/binning"
)

const (
	overdraftPenalty = 0.025
	maxPaybackMonths = 6
	minPaybackMonths = 3
)

// StabilityTotBalanceNow scores the current balance of depository accounts
// plus the available balance of every other account.
func StabilityTotBalanceNow(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) domain.MetricResult {
	return run("stability_tot_balance_now", domain.CategoryStability, fb, func(s domain.Scope) (float64, float64, error) {
		var balance float64
		for _, a := range in.Accounts {
			if a.IsDepository() {
				balance += math.Trunc(a.Balances.Current)
			} else {
				balance += math.Trunc(a.Balances.Available)
			}
		}
		if balance <= 0 {
			return 0, 0, ErrNoBalance
		}

		score, err := p.FicoMedians.At(p.VolumeBalance.Digitize(balance, true))
		if err != nil {
			return 0, 0, err
		}

		s.Set(domain.KeyCumBalance, balance)
		return score, balance, nil
	})
}

func checkingBalance(accounts []domain.Account) float64 {
	var balance float64
	for _, a := range accounts {
		if a.IsChecking() {
			balance += math.Trunc(a.Balances.Current)
		}
	}
	return balance
}

// StabilityMinRunningBalance reconstructs the month-end checking balance
// over the last 12 months and scores its recency weighted mean. Each month
// that ends overdrawn costs 0.025.
func StabilityMinRunningBalance(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) domain.MetricResult {
	return run("stability_min_running_balance", domain.CategoryStability, fb, func(s domain.Scope) (float64, float64, error) {
		flows, err := bankFlows(in, 12)
		if err != nil {
			return 0, 0, err
		}

		running := runningBalances(flows.sums, checkingBalance(in.Accounts))
		volume := recencyWeightedMean(running, 0.01)
		length := float64(len(running) * 30)

		score, err := p.ActivityConsistency.At(
			p.Duration.Digitize(length, true),
			p.VolumeMin.Digitize(volume, true),
		)
		if err != nil {
			return 0, 0, err
		}
		score -= overdraftPenalty * float64(countNegative(running))

		s.Set("min_running_balance", binning.Round(volume, 2))
		s.Set("min_running_timeframe", length)
		return score, volume, nil
	})
}

// paybackMonths maps months of history onto a recommended number of monthly
// installments between 3 and 6.
func paybackMonths(historyMonths int, edges binning.Vector) int {
	months := minPaybackMonths + edges.Digitize(float64(historyMonths), true)
	return min(months, maxPaybackMonths)
}

// StabilityLoanDueDate records the recommended payback period. It carries
// no weight in the stability score.
func StabilityLoanDueDate(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) domain.MetricResult {
	return run("stability_loan_duedate", domain.CategoryStability, fb, func(s domain.Scope) (float64, float64, error) {
		first, ok := oldest(in.Transactions)
		if !ok {
			return 0, 0, ErrNoTransactions
		}

		months := paybackMonths(monthsBetween(first, in.Now()), p.DueDate)
		s.Set(domain.KeyLoanDueDate, months)
		return 0, float64(months), nil
	})
}
