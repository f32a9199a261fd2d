package scoring

import (
	"gonum.org/v1/gonum/floats"

	"credit_oracle/internal/config"
	"credit_oracle/internal/domain"
)

type (
	bankMetric     func(domain.BankInput, *config.BankParams, *domain.Feedback) domain.MetricResult
	exchangeMetric func(domain.ExchangeInput, *config.ExchangeParams, *domain.Feedback) domain.MetricResult
)

// CategoryScore is the weighted combination of one category's metrics.
type CategoryScore struct {
	Category domain.Category
	Score    float64
	Metrics  []domain.MetricResult
}

func combine(c domain.Category, results []domain.MetricResult, weights []float64) CategoryScore {
	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	return CategoryScore{
		Category: c,
		Score:    clamp01(floats.Dot(weights, scores)),
		Metrics:  results,
	}
}

func runBank(in domain.BankInput, p *config.BankParams, fb *domain.Feedback, metrics ...bankMetric) []domain.MetricResult {
	out := make([]domain.MetricResult, len(metrics))
	for i, m := range metrics {
		out[i] = m(in, p, fb)
	}
	return out
}

func runExchange(in domain.ExchangeInput, p *config.ExchangeParams, fb *domain.Feedback, metrics ...exchangeMetric) []domain.MetricResult {
	out := make([]domain.MetricResult, len(metrics))
	for i, m := range metrics {
		out[i] = m(in, p, fb)
	}
	return out
}

// Metric order in every model below matches the Array order of its weight
// record.

func BankCredit(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) CategoryScore {
	w := p.Weights.Credit.Array()
	return combine(domain.CategoryCredit, runBank(in, p, fb,
		CreditLimit,
		CreditUtilRatio,
		CreditInterest,
		CreditLength,
		CreditLivelihood,
	), w[:])
}

func BankVelocity(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) CategoryScore {
	w := p.Weights.Velocity.Array()
	return combine(domain.CategoryVelocity, runBank(in, p, fb,
		VelocityWithdrawals,
		VelocityDeposits,
		VelocityMonthNetFlow,
		VelocityMonthTxnCount,
		VelocitySlope,
	), w[:])
}

// BankStability also records the recommended loan due date, which is not
// weighted.
func BankStability(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) CategoryScore {
	w := p.Weights.Stability.Array()
	cs := combine(domain.CategoryStability, runBank(in, p, fb,
		StabilityTotBalanceNow,
		StabilityMinRunningBalance,
	), w[:])
	cs.Metrics = append(cs.Metrics, StabilityLoanDueDate(in, p, fb))
	return cs
}

func BankDiversity(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) CategoryScore {
	w := p.Weights.Diversity.Array()
	return combine(domain.CategoryDiversity, runBank(in, p, fb,
		DiversityAccCount,
		DiversityProfile,
	), w[:])
}

func ExchangeKYC(in domain.ExchangeInput, p *config.ExchangeParams, fb *domain.Feedback) CategoryScore {
	return combine(domain.CategoryKYC, runExchange(in, p, fb, KYC), []float64{1})
}

func ExchangeHistory(in domain.ExchangeInput, p *config.ExchangeParams, fb *domain.Feedback) CategoryScore {
	return combine(domain.CategoryHistory, runExchange(in, p, fb, HistoryAccLongevity), []float64{1})
}

func ExchangeLiquidity(in domain.ExchangeInput, p *config.ExchangeParams, fb *domain.Feedback) CategoryScore {
	w := p.Weights.Liquidity.Array()
	cs := combine(domain.CategoryLiquidity, runExchange(in, p, fb,
		LiquidityTotBalanceNow,
		LiquidityAvgRunningBalance,
	), w[:])
	cs.Metrics = append(cs.Metrics, LiquidityLoanDueDate(in, p, fb))
	return cs
}

func ExchangeActivity(in domain.ExchangeInput, p *config.ExchangeParams, fb *domain.Feedback) CategoryScore {
	w := p.Weights.Activity.Array()
	return combine(domain.CategoryActivity, runExchange(in, p, fb,
		ActivityTotVolumeTotCount(domain.RoleCredit),
		ActivityTotVolumeTotCount(domain.RoleDebit),
		ActivityConsistency(domain.RoleCredit),
		ActivityConsistency(domain.RoleDebit),
		ActivityProfitSinceInception,
	), w[:])
}
