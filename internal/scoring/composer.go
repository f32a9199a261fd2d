package scoring

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"credit_oracle/internal/config"
	"credit_oracle/internal/domain"
)

const (
	MinScore   = 300.0
	MaxScore   = 900.0
	scoreRange = MaxScore - MinScore
)

// Branch names the weight set the final score was composed with.
type Branch string

const (
	BranchFull     Branch = "full"
	BranchPenalty  Branch = "penalty"
	BranchExchange Branch = "exchange"
)

// Outcome is the composed result of one scoring request.
type Outcome struct {
	Source     domain.Source                `json:"source"`
	Score      float64                      `json:"score"`
	Branch     Branch                       `json:"branch"`
	Categories map[domain.Category]float64 `json:"categories"`
	Metrics    []domain.MetricResult        `json:"metrics"`
	Feedback   *domain.Feedback             `json:"feedback"`
}

// Failures returns the metrics that recorded an error.
func (o Outcome) Failures() []domain.MetricResult {
	var out []domain.MetricResult
	for _, m := range o.Metrics {
		if m.Failed() {
			out = append(out, m)
		}
	}
	return out
}

// compose maps a [0,1] weighted sum onto [300, 900).
func compose(weights, scores []float64) float64 {
	score := MinScore + scoreRange*floats.Dot(weights, scores)
	if math.IsNaN(score) || score < MinScore {
		return MinScore
	}
	return math.Min(score, math.Nextafter(MaxScore, 0))
}

func collect(o *Outcome, parts ...CategoryScore) []float64 {
	scores := make([]float64, len(parts))
	for i, cs := range parts {
		o.Categories[cs.Category] = cs.Score
		o.Metrics = append(o.Metrics, cs.Metrics...)
		scores[i] = cs.Score
	}
	return scores
}

// ScoreBank runs every bank category. A user without a credit product is
// scored on the penalty weights, whose credit weight is zero and whose sum
// is below one, so the credit model is skipped entirely.
func ScoreBank(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) Outcome {
	o := Outcome{
		Source:     domain.SourceBank,
		Categories: make(map[domain.Category]float64, 4),
		Feedback:   fb,
	}

	mix := CreditMix(in, p, fb)
	o.Metrics = append(o.Metrics, mix)

	var (
		credit  CategoryScore
		weights [4]float64
	)
	if mix.Score == 0 {
		o.Branch = BranchPenalty
		weights = p.Weights.Penalty.Array()
		credit = CategoryScore{Category: domain.CategoryCredit}
	} else {
		o.Branch = BranchFull
		weights = p.Weights.Score.Array()
		credit = BankCredit(in, p, fb)
	}

	scores := collect(&o,
		credit,
		BankVelocity(in, p, fb),
		BankStability(in, p, fb),
		BankDiversity(in, p, fb),
	)
	o.Score = compose(weights[:], scores)
	return o
}

// ScoreExchange runs every exchange category on fixed weights.
func ScoreExchange(in domain.ExchangeInput, p *config.ExchangeParams, fb *domain.Feedback) Outcome {
	o := Outcome{
		Source:     domain.SourceExchange,
		Branch:     BranchExchange,
		Categories: make(map[domain.Category]float64, 4),
		Feedback:   fb,
	}

	weights := p.Weights.Score.Array()
	scores := collect(&o,
		ExchangeKYC(in, p, fb),
		ExchangeHistory(in, p, fb),
		ExchangeLiquidity(in, p, fb),
		ExchangeActivity(in, p, fb),
	)
	o.Score = compose(weights[:], scores)
	return o
}
