package scoring

import (
	"math"
	"time"

	"credit_oracle/internal/config"
	"credit_oracle/internal/domain"
	"credit_oracle/pkg/binning"
)

const (
	minLiquidBalance = 500.0
	dustScore        = 0.01
	consistencyScale = 1.5
)

func walletBalance(accounts []domain.Account) float64 {
	var total float64
	for _, a := range accounts {
		total += a.Balances.Current
	}
	return total
}

// KYC is 1 when the user holds at least one funded wallet with some
// transaction history. An unverified user is not an error.
func KYC(in domain.ExchangeInput, _ *config.ExchangeParams, fb *domain.Feedback) domain.MetricResult {
	return run("kyc", domain.CategoryKYC, fb, func(s domain.Scope) (float64, float64, error) {
		funded := false
		for _, a := range in.Accounts {
			if a.Balances.Current != 0 {
				funded = true
				break
			}
		}
		verified := funded && len(in.Transactions) > 0
		s.Set(domain.KeyVerified, verified)
		if !verified {
			return 0, 0, nil
		}
		return 1, 1, nil
	})
}

// HistoryAccLongevity scores the age of the oldest wallet.
func HistoryAccLongevity(in domain.ExchangeInput, p *config.ExchangeParams, fb *domain.Feedback) domain.MetricResult {
	return run("history_acc_longevity", domain.CategoryHistory, fb, func(s domain.Scope) (float64, float64, error) {
		var first time.Time
		for _, a := range in.Accounts {
			if a.CreatedAt.IsZero() {
				continue
			}
			if first.IsZero() || a.CreatedAt.Before(first) {
				first = a.CreatedAt
			}
		}
		if first.IsZero() {
			return 0, 0, ErrUnknownLongevity
		}

		age := daysBetween(first, in.Now())
		score, err := p.FicoMedians.At(p.Duration.Digitize(age, true))
		if err != nil {
			return 0, 0, err
		}

		s.Set(domain.KeyWalletAge, age)
		return score, age, nil
	})
}

// LiquidityTotBalanceNow scores the total wallet balance. Balances under
// 500 USD get a token score.
func LiquidityTotBalanceNow(in domain.ExchangeInput, p *config.ExchangeParams, fb *domain.Feedback) domain.MetricResult {
	return run("liquidity_tot_balance_now", domain.CategoryLiquidity, fb, func(s domain.Scope) (float64, float64, error) {
		if len(in.Accounts) == 0 {
			return 0, 0, ErrNoBalance
		}

		balance := walletBalance(in.Accounts)
		var score float64
		switch {
		case balance == 0:
			score = 0
		case balance < minLiquidBalance:
			score = dustScore
		default:
			var err error
			if score, err = p.FicoMedians.At(p.VolumeBalance.Digitize(balance, true)); err != nil {
				return 0, 0, err
			}
		}

		s.Set(domain.KeyCurrentBalance, binning.Round(balance, 2))
		return score, balance, nil
	})
}

// exchangeFlows returns monthly income minus expenses over the last months
// complete months.
func exchangeFlows(in domain.ExchangeInput, months int) series {
	var pts []point
	for _, tx := range in.Transactions {
		if sign := tx.Type.FlowSign(); sign != 0 {
			pts = append(pts, point{at: tx.Date, amount: float64(sign) * math.Abs(tx.Amount)})
		}
	}
	return monthly(pts).excludingMonthOf(in.Now()).tail(months)
}

// LiquidityAvgRunningBalance reconstructs month-end wallet balances over the
// last 12 months and scores their recency weighted mean, minus 0.025 per
// overdrawn month.
func LiquidityAvgRunningBalance(in domain.ExchangeInput, p *config.ExchangeParams, fb *domain.Feedback) domain.MetricResult {
	return run("liquidity_avg_running_balance", domain.CategoryLiquidity, fb, func(s domain.Scope) (float64, float64, error) {
		if len(in.Transactions) == 0 {
			return 0, 0, ErrNoTransactions
		}
		flows := exchangeFlows(in, 12)
		if flows.Len() == 0 {
			return 0, 0, ErrNoNetFlow
		}

		running := runningBalances(flows.sums, walletBalance(in.Accounts))
		volume := recencyWeightedMean(running, 0.1)

		score := dustScore
		if volume >= minLiquidBalance {
			grid, err := p.ActivityConsistency.At(
				p.VolumeBalance.Digitize(volume, true),
				p.Duration.Digitize(float64(len(running)*30), true),
			)
			if err != nil {
				return 0, 0, err
			}
			score = grid - overdraftPenalty*float64(countNegative(running))
		}

		s.Set("avg_running_balance", binning.Round(volume, 2))
		s.Set("balance_timeframe(months)", len(running))
		return score, volume, nil
	})
}

func roleAmounts(txns []domain.Transaction, match func(domain.TransactionType) bool) []point {
	var pts []point
	for _, tx := range txns {
		if match(tx.Type) {
			pts = append(pts, point{at: tx.Date, amount: math.Abs(tx.Amount)})
		}
	}
	return pts
}

// ActivityTotVolumeTotCount scores the count and total volume of credit or
// debit transactions.
func ActivityTotVolumeTotCount(role domain.Role) func(domain.ExchangeInput, *config.ExchangeParams, *domain.Feedback) domain.MetricResult {
	return func(in domain.ExchangeInput, p *config.ExchangeParams, fb *domain.Feedback) domain.MetricResult {
		return run("activity_tot_volume_tot_count_"+string(role), domain.CategoryActivity, fb, func(s domain.Scope) (float64, float64, error) {
			if len(in.Transactions) == 0 {
				return 0, 0, ErrNoTransactions
			}

			pts := roleAmounts(in.Transactions, func(t domain.TransactionType) bool { return t.HasActivityRole(role) })
			var volume float64
			for _, pt := range pts {
				volume += pt.amount
			}

			score, err := p.ActivityVolume.At(
				p.CountTxn.Digitize(float64(len(pts)), true),
				p.VolumeBalance.Digitize(volume, true),
			)
			if err != nil {
				return 0, 0, err
			}

			s.SetNested(string(role), "balance", binning.Round(volume, 2))
			s.SetNested(string(role), "count", len(pts))
			return score, volume, nil
		})
	}
}

// ActivityConsistency scores the recency weighted monthly volume of credit
// or debit transactions over the last 12 active months.
func ActivityConsistency(role domain.Role) func(domain.ExchangeInput, *config.ExchangeParams, *domain.Feedback) domain.MetricResult {
	return func(in domain.ExchangeInput, p *config.ExchangeParams, fb *domain.Feedback) domain.MetricResult {
		return run("activity_consistency_"+string(role), domain.CategoryActivity, fb, func(s domain.Scope) (float64, float64, error) {
			pts := roleAmounts(in.Transactions, func(t domain.TransactionType) bool { return t.HasActivityRole(role) })

			var active []float64
			for _, v := range monthly(pts).tail(12).sums {
				if v != 0 {
					active = append(active, v)
				}
			}
			if len(active) == 0 {
				return 0, 0, ErrNoTransactions
			}

			wavg := recencyWeightedMean(active, 0.1)
			length := float64(len(active) * 30)

			score, err := p.ActivityConsistency.At(
				p.VolumeProfit.Scale(consistencyScale).Digitize(wavg, true),
				p.Duration.Digitize(length, true),
			)
			if err != nil {
				return 0, 0, err
			}

			s.SetNested(string(role), "weighted_avg_volume", binning.Round(wavg, 2))
			s.SetNested(string(role), "timeframe(days)", length)
			return score, wavg, nil
		})
	}
}

// Profit returns balance - lifetime credits + lifetime debits. Sells are not
// counted as debits.
func Profit(in domain.ExchangeInput) float64 {
	var credits, debits float64
	for _, tx := range in.Transactions {
		switch {
		case tx.Type.HasProfitRole(domain.RoleCredit):
			credits += math.Abs(tx.Amount)
		case tx.Type.HasProfitRole(domain.RoleDebit):
			debits += math.Abs(tx.Amount)
		}
	}
	return walletBalance(in.Accounts) - credits + debits
}

// ActivityProfitSinceInception scores the net profit since the first wallet
// was opened.
func ActivityProfitSinceInception(in domain.ExchangeInput, p *config.ExchangeParams, fb *domain.Feedback) domain.MetricResult {
	return run("activity_profit_since_inception", domain.CategoryActivity, fb, func(s domain.Scope) (float64, float64, error) {
		profit := Profit(in)
		if profit == 0 {
			return 0, 0, ErrNoProfit
		}

		score, err := p.FicoMedians.At(p.VolumeProfit.Digitize(profit, true))
		if err != nil {
			return 0, 0, err
		}

		s.Set("total_net_profit", binning.Round(profit, 2))
		return score, profit, nil
	})
}

// LiquidityLoanDueDate records the recommended payback period from the
// length of the transaction history. It carries no weight.
func LiquidityLoanDueDate(in domain.ExchangeInput, p *config.ExchangeParams, fb *domain.Feedback) domain.MetricResult {
	return run("liquidity_loan_duedate", domain.CategoryLiquidity, fb, func(s domain.Scope) (float64, float64, error) {
		first, ok := oldest(in.Transactions)
		if !ok {
			return 0, 0, ErrNoTransactions
		}

		months := paybackMonths(monthsBetween(first, in.Now()), p.DueDate)
		s.Set(domain.KeyLoanDueDate, months)
		return 0, float64(months), nil
	})
}
