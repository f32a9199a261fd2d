package config

import (
	"fmt"

	"credit_oracle/pkg/binning"
)

const thousand = 1000

// BankParams is the compiled, read-only parameter set for bank scoring.
// Concurrent requests share one instance.
type BankParams struct {
	Weights BankWeights

	FicoMedians binning.Vector

	DueDate       binning.Vector
	Duration      binning.Vector
	CountZero     binning.Vector
	VolumeCredit  binning.Vector
	VolumeInvest  binning.Vector
	VolumeBalance binning.Vector
	FlowRatio     binning.Vector
	Slope         binning.Vector
	SlopeLR       binning.Vector

	// derived from the normalised score bounds
	CountLively       binning.Vector
	CountTxn          binning.Vector
	VolumeFlow        binning.Vector
	VolumeWithdraw    binning.Vector
	VolumeDeposit     binning.Vector
	VolumeMin         binning.Vector
	CreditUtilPct     binning.Vector
	FrequencyInterest binning.Vector

	ActivityVolume      binning.Matrix
	ActivityConsistency binning.Matrix
	CreditMix           binning.Matrix
	DiversityVelocity   binning.Matrix
}

// ExchangeParams is the compiled parameter set for exchange scoring.
type ExchangeParams struct {
	Weights ExchangeWeights

	FicoMedians binning.Vector

	DueDate       binning.Vector
	Duration      binning.Vector
	VolumeBalance binning.Vector
	VolumeProfit  binning.Vector
	CountTxn      binning.Vector

	ActivityVolume      binning.Matrix
	ActivityConsistency binning.Matrix
}

func NewBankParams(scoring ScoringConfig, tier BankTier) (*BankParams, error) {
	bounds := binning.NewVector(scoring.ScoreBounds...)
	fico, err := binning.FicoScale(bounds)
	if err != nil {
		return nil, fmt.Errorf("bank params: %w", err)
	}
	medians, err := binning.FicoMedians(bounds)
	if err != nil {
		return nil, fmt.Errorf("bank params: %w", err)
	}

	m := tier.Metrics
	p := &BankParams{
		Weights:     tier.Weights,
		FicoMedians: medians,

		DueDate:       binning.NewVector(m.DueDate...),
		Duration:      binning.NewVector(m.Duration...),
		CountZero:     binning.NewVector(m.CountZero...),
		VolumeCredit:  binning.NewVector(m.VolumeCredit...).Scale(thousand),
		VolumeInvest:  binning.NewVector(m.VolumeInvest...).Scale(thousand),
		VolumeBalance: binning.NewVector(m.VolumeBalance...).Scale(thousand),
		FlowRatio:     binning.NewVector(m.FlowRatio...),
		Slope:         binning.NewVector(m.Slope...),
		SlopeLR:       binning.NewVector(m.SlopeLR...),

		CountLively:       binning.DeriveEdges(fico, 25, 0),
		CountTxn:          binning.DeriveEdges(fico, 40, 0),
		VolumeFlow:        binning.DeriveEdges(fico, 1500, 0),
		VolumeWithdraw:    binning.DeriveEdges(fico, 1500, 0),
		VolumeDeposit:     binning.DeriveEdges(fico, 7000, 0),
		VolumeMin:         binning.DeriveEdges(fico, 10000, 0),
		CreditUtilPct:     binning.DeriveInverseEdges(fico, 0.9, 2),
		FrequencyInterest: binning.DeriveInverseEdges(fico, 0.6, 2),
	}

	mx := tier.Matrices
	for _, b := range []struct {
		name string
		spec MatrixSpec
		dst  *binning.Matrix
	}{
		{"activity_volume", mx.ActivityVolume, &p.ActivityVolume},
		{"activity_consistency", mx.ActivityConsistency, &p.ActivityConsistency},
		{"credit_mix", mx.CreditMix, &p.CreditMix},
		{"diversity_velocity", mx.DiversityVelocity, &p.DiversityVelocity},
	} {
		grid, err := b.spec.Build()
		if err != nil {
			return nil, fmt.Errorf("bank params: %s: %w", b.name, err)
		}
		*b.dst = grid
	}

	return p, nil
}

func NewExchangeParams(scoring ScoringConfig, tier ExchangeTier) (*ExchangeParams, error) {
	medians, err := binning.FicoMedians(binning.NewVector(scoring.ScoreBounds...))
	if err != nil {
		return nil, fmt.Errorf("exchange params: %w", err)
	}

	m := tier.Metrics
	p := &ExchangeParams{
		Weights:       tier.Weights,
		FicoMedians:   medians,
		DueDate:       binning.NewVector(m.DueDate...),
		Duration:      binning.NewVector(m.Duration...),
		VolumeBalance: binning.NewVector(m.VolumeBalance...).Scale(thousand),
		VolumeProfit:  binning.NewVector(m.VolumeProfit...).Scale(thousand),
		CountTxn:      binning.NewVector(m.CountTxn...),
	}

	if p.ActivityVolume, err = tier.Matrices.ActivityVolume.Build(); err != nil {
		return nil, fmt.Errorf("exchange params: activity_volume: %w", err)
	}
	if p.ActivityConsistency, err = tier.Matrices.ActivityConsistency.Build(); err != nil {
		return nil, fmt.Errorf("exchange params: activity_consistency: %w", err)
	}
	return p, nil
}

// Compiled holds the parameters of every tier, built once at start-up.
type Compiled struct {
	cfg      *Config
	bank     []*BankParams
	exchange []*ExchangeParams
}

func Compile(cfg *Config) (*Compiled, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Compiled{cfg: cfg}
	for _, t := range cfg.Tiers {
		bp, err := NewBankParams(cfg.Scoring, t.Bank)
		if err != nil {
			return nil, err
		}
		ep, err := NewExchangeParams(cfg.Scoring, t.Exchange)
		if err != nil {
			return nil, err
		}
		c.bank = append(c.bank, bp)
		c.exchange = append(c.exchange, ep)
	}
	return c, nil
}

func (c *Compiled) Scoring() ScoringConfig {
	return c.cfg.Scoring
}

func (c *Compiled) tierIndex(loanRequest float64) (int, error) {
	for i, t := range c.cfg.Tiers {
		if t.MaximumAmount >= loanRequest {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %.2f", ErrNoTier, loanRequest)
}

func (c *Compiled) Bank(loanRequest float64) (*BankParams, error) {
	i, err := c.tierIndex(loanRequest)
	if err != nil {
		return nil, err
	}
	return c.bank[i], nil
}

func (c *Compiled) Exchange(loanRequest float64) (*ExchangeParams, error) {
	i, err := c.tierIndex(loanRequest)
	if err != nil {
		return nil, err
	}
	return c.exchange[i], nil
}
