// Package config loads the scoring parameter set: score and loan bins,
// per-tier weight records, bin edges and score-matrix specifications.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"credit_oracle/pkg/binning"
)

var (
	ErrNoTier        = errors.New("no tier covers the loan request")
	ErrInvalidConfig = errors.New("invalid scoring config")
)

const defaultTolerance = 0.01

type Config struct {
	Scoring    ScoringConfig    `yaml:"scoring"`
	Tiers      []Tier           `yaml:"tiers"`
	Validation ValidationConfig `yaml:"validation"`
}

// ScoringConfig holds the ranges shared by every tier. ScoreBounds spans the
// whole score range, e.g. [300 500 560 650 740 800 870 900]; LoanBins are in
// thousands and hold one entry per score bracket.
type ScoringConfig struct {
	ScoreBounds []float64 `yaml:"score_bounds"`
	LoanBins    []float64 `yaml:"loan_bins"`
	Qualities   []string  `yaml:"qualities"`
}

type ValidationConfig struct {
	WeightSumTolerance float64 `yaml:"weight_sum_tolerance"`
}

// Tier applies to loan requests up to MaximumAmount.
type Tier struct {
	MaximumAmount float64      `yaml:"maximum_amount"`
	Bank          BankTier     `yaml:"bank"`
	Exchange      ExchangeTier `yaml:"exchange"`
}

type BankTier struct {
	Weights  BankWeights  `yaml:"weights"`
	Metrics  BankMetrics  `yaml:"metrics"`
	Matrices BankMatrices `yaml:"matrices"`
}

type ExchangeTier struct {
	Weights  ExchangeWeights  `yaml:"weights"`
	Metrics  ExchangeMetrics  `yaml:"metrics"`
	Matrices ExchangeMatrices `yaml:"matrices"`
}

// BankMetrics are bin edges. Fields documented as thousands are scaled by
// 1000 when parameters are built.
type BankMetrics struct {
	DueDate       []float64 `yaml:"due_date"`
	Duration      []float64 `yaml:"duration"`
	CountZero     []float64 `yaml:"count_zero"`
	VolumeCredit  []float64 `yaml:"volume_credit"`  // thousands
	VolumeInvest  []float64 `yaml:"volume_invest"`  // thousands
	VolumeBalance []float64 `yaml:"volume_balance"` // thousands
	FlowRatio     []float64 `yaml:"flow_ratio"`
	Slope         []float64 `yaml:"slope"`
	SlopeLR       []float64 `yaml:"slope_lr"`
}

type ExchangeMetrics struct {
	DueDate       []float64 `yaml:"due_date"`
	Duration      []float64 `yaml:"duration"`
	VolumeBalance []float64 `yaml:"volume_balance"` // thousands
	VolumeProfit  []float64 `yaml:"volume_profit"`  // thousands
	CountTxn      []float64 `yaml:"count_txn"`
}

// MatrixSpec describes a log-rule grid. Scalars are divisors: a spec of
// [3.03, 1.17] builds the grid with row and column scalars 1/3.03 and 1/1.17.
type MatrixSpec struct {
	Shape   []int     `yaml:"shape"`
	Scalars []float64 `yaml:"scalars"`
}

func (s MatrixSpec) Build() (binning.Matrix, error) {
	if len(s.Shape) != 2 || len(s.Scalars) != 2 {
		return binning.Matrix{}, fmt.Errorf("%w: matrix needs 2 shape values and 2 scalars", ErrInvalidConfig)
	}
	if s.Scalars[0] == 0 || s.Scalars[1] == 0 {
		return binning.Matrix{}, fmt.Errorf("%w: matrix scalar divisor is zero", ErrInvalidConfig)
	}
	return binning.BuildLogMatrix(s.Shape[0], s.Shape[1], 1/s.Scalars[0], 1/s.Scalars[1])
}

type BankMatrices struct {
	ActivityVolume      MatrixSpec `yaml:"activity_volume"`
	ActivityConsistency MatrixSpec `yaml:"activity_consistency"`
	CreditMix           MatrixSpec `yaml:"credit_mix"`
	DiversityVelocity   MatrixSpec `yaml:"diversity_velocity"`
}

type ExchangeMatrices struct {
	ActivityVolume      MatrixSpec `yaml:"activity_volume"`
	ActivityConsistency MatrixSpec `yaml:"activity_consistency"`
}

// Load reads, parses and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Tier returns the first tier whose maximum amount covers loanRequest.
func (c *Config) Tier(loanRequest float64) (Tier, error) {
	for _, t := range c.Tiers {
		if t.MaximumAmount >= loanRequest {
			return t, nil
		}
	}
	return Tier{}, fmt.Errorf("%w: %.2f", ErrNoTier, loanRequest)
}

func (c *Config) tolerance() float64 {
	if c.Validation.WeightSumTolerance > 0 {
		return c.Validation.WeightSumTolerance
	}
	return defaultTolerance
}

// Validate checks ranges, weight sums, edge monotonicity and matrix shapes.
func (c *Config) Validate() error {
	s := c.Scoring
	if len(s.ScoreBounds) < 3 {
		return fmt.Errorf("%w: need at least 3 score bounds", ErrInvalidConfig)
	}
	if !binning.NewVector(s.ScoreBounds...).Ascending() {
		return fmt.Errorf("%w: score bounds must ascend", ErrInvalidConfig)
	}
	brackets := len(s.ScoreBounds) - 1
	if len(s.LoanBins) != brackets {
		return fmt.Errorf("%w: %d loan bins for %d score brackets", ErrInvalidConfig, len(s.LoanBins), brackets)
	}
	if !binning.NewVector(s.LoanBins...).Ascending() {
		return fmt.Errorf("%w: loan bins must ascend", ErrInvalidConfig)
	}
	if len(s.Qualities) != brackets {
		return fmt.Errorf("%w: %d quality labels for %d score brackets", ErrInvalidConfig, len(s.Qualities), brackets)
	}

	if len(c.Tiers) == 0 {
		return fmt.Errorf("%w: no tiers", ErrInvalidConfig)
	}
	prev := math.Inf(-1)
	for i, t := range c.Tiers {
		if t.MaximumAmount <= prev {
			return fmt.Errorf("%w: tier %d maximum_amount must exceed the previous tier", ErrInvalidConfig, i)
		}
		prev = t.MaximumAmount

		if err := c.validateTier(t); err != nil {
			return fmt.Errorf("tier %.0f: %w", t.MaximumAmount, err)
		}
	}
	return nil
}

func (c *Config) validateTier(t Tier) error {
	tol := c.tolerance()

	bw := t.Bank.Weights
	ew := t.Exchange.Weights
	credit, velocity := bw.Credit.Array(), bw.Velocity.Array()
	stability, diversity := bw.Stability.Array(), bw.Diversity.Array()
	bankScore := bw.Score.Array()
	liquidity, activity := ew.Liquidity.Array(), ew.Activity.Array()
	exchangeScore := ew.Score.Array()

	sums := []struct {
		name    string
		weights []float64
	}{
		{"bank.credit", credit[:]},
		{"bank.velocity", velocity[:]},
		{"bank.stability", stability[:]},
		{"bank.diversity", diversity[:]},
		{"bank.score", bankScore[:]},
		{"exchange.liquidity", liquidity[:]},
		{"exchange.activity", activity[:]},
		{"exchange.score", exchangeScore[:]},
	}
	for _, s := range sums {
		if err := checkWeights(s.name, s.weights, tol); err != nil {
			return err
		}
	}

	if bw.Penalty.Credit != 0 {
		return fmt.Errorf("%w: bank.penalty credit weight must be 0", ErrInvalidConfig)
	}
	if sum := bw.Penalty.Sum(); sum >= 1 {
		return fmt.Errorf("%w: bank.penalty weights sum to %.3f, must be below 1", ErrInvalidConfig, sum)
	}

	m := t.Bank.Metrics
	edges := map[string][]float64{
		"bank.due_date":       m.DueDate,
		"bank.duration":       m.Duration,
		"bank.count_zero":     m.CountZero,
		"bank.volume_credit":  m.VolumeCredit,
		"bank.volume_invest":  m.VolumeInvest,
		"bank.volume_balance": m.VolumeBalance,
		"bank.flow_ratio":     m.FlowRatio,
		"bank.slope":          m.Slope,
		"bank.slope_lr":       m.SlopeLR,
		"exchange.due_date":   t.Exchange.Metrics.DueDate,
		"exchange.duration":   t.Exchange.Metrics.Duration,
		"exchange.volume_bal": t.Exchange.Metrics.VolumeBalance,
		"exchange.profit":     t.Exchange.Metrics.VolumeProfit,
		"exchange.count_txn":  t.Exchange.Metrics.CountTxn,
	}
	for name, e := range edges {
		if err := binning.NewVector(e...).Monotonic(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
	}

	specs := map[string]MatrixSpec{
		"bank.activity_volume":          t.Bank.Matrices.ActivityVolume,
		"bank.activity_consistency":     t.Bank.Matrices.ActivityConsistency,
		"bank.credit_mix":               t.Bank.Matrices.CreditMix,
		"bank.diversity_velocity":       t.Bank.Matrices.DiversityVelocity,
		"exchange.activity_volume":      t.Exchange.Matrices.ActivityVolume,
		"exchange.activity_consistency": t.Exchange.Matrices.ActivityConsistency,
	}
	for name, spec := range specs {
		if _, err := spec.Build(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
	}
	return nil
}

func checkWeights(name string, weights []float64, tol float64) error {
	var sum float64
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("%w: %s has a negative weight", ErrInvalidConfig, name)
		}
		sum += w
	}
	if math.Abs(sum-1) > tol {
		return fmt.Errorf("%w: %s weights sum to %.3f, expected 1.0", ErrInvalidConfig, name, sum)
	}
	return nil
}
