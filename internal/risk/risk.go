// Package risk maps a final score onto a loan amount and a qualitative risk
// level.
package risk

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"credit_oracle/internal/config"
	"credit_oracle/internal/domain"
)

var ErrBins = errors.New("score and loan bins do not line up")

var thousand = decimal.NewFromInt(1000)

// Mapper is immutable once built and safe for concurrent use.
type Mapper struct {
	bounds    []float64
	loans     []decimal.Decimal
	qualities []string
}

// NewMapper takes the full score bounds (outer 300 and 900 included), one
// loan bin per bracket in thousands, and optional quality labels.
func NewMapper(bounds, loanBins []float64, qualities []string) (*Mapper, error) {
	if len(bounds) < 2 || len(loanBins) != len(bounds)-1 {
		return nil, fmt.Errorf("%w: %d bounds, %d loan bins", ErrBins, len(bounds), len(loanBins))
	}
	if len(qualities) != 0 && len(qualities) != len(loanBins) {
		return nil, fmt.Errorf("%w: %d qualities for %d brackets", ErrBins, len(qualities), len(loanBins))
	}
	if !sort.Float64sAreSorted(bounds) {
		return nil, fmt.Errorf("%w: bounds not ascending", ErrBins)
	}

	m := &Mapper{
		bounds:    append([]float64(nil), bounds...),
		qualities: append([]string(nil), qualities...),
	}
	for _, l := range loanBins {
		m.loans = append(m.loans, decimal.NewFromFloat(l).Mul(thousand))
	}
	return m, nil
}

func FromConfig(sc config.ScoringConfig) (*Mapper, error) {
	return NewMapper(sc.ScoreBounds, sc.LoanBins, sc.Qualities)
}

func (m *Mapper) clamp(score float64) float64 {
	return min(max(score, m.bounds[0]), m.bounds[len(m.bounds)-1])
}

// bracket returns the index i with bounds[i] <= score <= bounds[i+1]. A
// score exactly on an inner edge belongs to the bracket below it.
func (m *Mapper) bracket(score float64) int {
	score = m.clamp(score)
	i := sort.SearchFloat64s(m.bounds, score) - 1
	return min(max(i, 0), len(m.loans)-1)
}

// Map returns the loan amount (upper bound of the score's loan bin) and the
// risk level: the bracket is split into thirds, lowest third high risk.
func (m *Mapper) Map(score float64) domain.Risk {
	score = m.clamp(score)
	i := m.bracket(score)

	lo, hi := m.bounds[i], m.bounds[i+1]
	third := (hi - lo) / 3

	level := domain.RiskLow
	switch {
	case score <= lo+third:
		level = domain.RiskHigh
	case score <= lo+2*third:
		level = domain.RiskMedium
	}

	return domain.Risk{LoanAmount: m.loans[i].IntPart(), Level: level}
}

// LoanAmount is the decimal loan bin for score.
func (m *Mapper) LoanAmount(score float64) decimal.Decimal {
	return m.loans[m.bracket(score)]
}

// Quality returns the label of the score's bracket, or "" without labels.
func (m *Mapper) Quality(score float64) string {
	if len(m.qualities) == 0 {
		return ""
	}
	return m.qualities[m.bracket(score)]
}
