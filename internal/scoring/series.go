package scoring

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"credit_oracle/internal/domain"
)

type calMonth struct {
	Year  int
	Month time.Month
}

func monthOf(t time.Time) calMonth {
	y, m, _ := t.Date()
	return calMonth{Year: y, Month: m}
}

func (m calMonth) ord() int {
	return m.Year*12 + int(m.Month) - 1
}

func monthFromOrd(o int) calMonth {
	return calMonth{Year: o / 12, Month: time.Month(o%12 + 1)}
}

type point struct {
	at     time.Time
	amount float64
}

// series is a contiguous run of calendar months. Months without points are
// present with a zero sum and count.
type series struct {
	first  calMonth
	sums   []float64
	counts []float64
}

func monthly(points []point) series {
	if len(points) == 0 {
		return series{}
	}

	lo, hi := monthOf(points[0].at).ord(), monthOf(points[0].at).ord()
	for _, p := range points[1:] {
		o := monthOf(p.at).ord()
		lo = min(lo, o)
		hi = max(hi, o)
	}

	s := series{
		first:  monthFromOrd(lo),
		sums:   make([]float64, hi-lo+1),
		counts: make([]float64, hi-lo+1),
	}
	for _, p := range points {
		i := monthOf(p.at).ord() - lo
		s.sums[i] += p.amount
		s.counts[i]++
	}
	return s
}

func (s series) Len() int {
	return len(s.sums)
}

func (s series) slice(from, to int) series {
	return series{
		first:  monthFromOrd(s.first.ord() + from),
		sums:   s.sums[from:to],
		counts: s.counts[from:to],
	}
}

// excludingMonthOf drops the last month when it is the (incomplete) month
// of now.
func (s series) excludingMonthOf(now time.Time) series {
	if s.Len() == 0 {
		return s
	}
	if s.first.ord()+s.Len()-1 == monthOf(now).ord() {
		return s.slice(0, s.Len()-1)
	}
	return s
}

// tail keeps the most recent n months.
func (s series) tail(n int) series {
	if s.Len() <= n {
		return s
	}
	return s.slice(s.Len()-n, s.Len())
}

// trimSparseEnds drops the first and then the last month when they hold
// fewer than minCount points. Series shorter than two months are kept as is.
func (s series) trimSparseEnds(minCount float64) series {
	if s.Len() < 2 {
		return s
	}
	if s.counts[0] < minCount {
		s = s.slice(1, s.Len())
	}
	if s.Len() > 0 && s.counts[s.Len()-1] < minCount {
		s = s.slice(0, s.Len()-1)
	}
	return s
}

// runningBalances walks monthly net flows backward from the current
// balance. The result is chronological; its last element equals current.
func runningBalances(flows []float64, current float64) []float64 {
	out := make([]float64, len(flows))
	bal := current
	for i := len(flows) - 1; i >= 0; i-- {
		out[i] = bal
		bal -= flows[i]
	}
	return out
}

// linspace returns n evenly spaced points from lo to hi inclusive. A single
// point is lo.
func linspace(lo, hi float64, n int) []float64 {
	switch n {
	case 0:
		return nil
	case 1:
		return []float64{lo}
	}
	w := make([]float64, n)
	return floats.Span(w, lo, hi)
}

// recencyWeightedMean weights a chronological series from lo (oldest) to 1
// (newest).
func recencyWeightedMean(x []float64, lo float64) float64 {
	return stat.Mean(x, linspace(lo, 1, len(x)))
}

func countNegative(x []float64) int {
	n := 0
	for _, v := range x {
		if v < 0 {
			n++
		}
	}
	return n
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

// daysBetween counts whole calendar days from a to b.
func daysBetween(a, b time.Time) float64 {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return math.Round(db.Sub(da).Hours() / 24)
}

// monthsBetween counts calendar months from a to b, inclusive of both.
func monthsBetween(a, b time.Time) int {
	return monthOf(b).ord() - monthOf(a).ord() + 1
}

func oldest(txns []domain.Transaction) (time.Time, bool) {
	if len(txns) == 0 {
		return time.Time{}, false
	}
	first := txns[0].Date
	for _, tx := range txns[1:] {
		if tx.Date.Before(first) {
			first = tx.Date
		}
	}
	return first, true
}

func transactionsOf(txns []domain.Transaction, ids map[string]bool) []domain.Transaction {
	var out []domain.Transaction
	for _, tx := range txns {
		if ids[tx.AccountID] {
			out = append(out, tx)
		}
	}
	return out
}
