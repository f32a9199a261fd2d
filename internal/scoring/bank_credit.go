package scoring

import (
	"math"
	"strings"
	"time"

	"credit_oracle/internal/config"
	"credit_oracle/internal/domain"
	"credit_oracle/pkg/binning"
)

// Selection is the account picked by DynamicSelect.
type Selection struct {
	ID    string
	Limit float64
}

// Composite weights used by DynamicSelect.
const (
	selectLimitWeight = 1
	selectCountWeight = 10
	selectAgeWeight   = 3
)

// DynamicSelect picks the best account whose "type_subtype" label contains
// kind, by limit*1 + transaction count*10 + history age in days*3. The first
// account reaching the maximum wins.
func DynamicSelect(accounts []domain.Account, txns []domain.Transaction, kind string, asOf time.Time) (Selection, bool) {
	var (
		best      Selection
		bestScore = math.Inf(-1)
		found     bool
	)

	for _, a := range accounts {
		if !strings.Contains(a.Kind(), strings.ToLower(kind)) {
			continue
		}

		own := transactionsOf(txns, map[string]bool{a.ID: true})
		var age float64
		if first, ok := oldest(own); ok {
			age = daysBetween(first, asOf)
		}

		limit := math.Trunc(a.Balances.Limit)
		composite := limit*selectLimitWeight + float64(len(own))*selectCountWeight + age*selectAgeWeight
		if composite > bestScore {
			best = Selection{ID: a.ID, Limit: limit}
			bestScore = composite
			found = true
		}
	}
	return best, found
}

func creditAccounts(accounts []domain.Account) []domain.Account {
	var out []domain.Account
	for _, a := range accounts {
		if a.IsCredit() {
			out = append(out, a)
		}
	}
	return out
}

func idSet(accounts []domain.Account) map[string]bool {
	ids := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		ids[a.ID] = true
	}
	return ids
}

// selectedCredit returns the transactions of the best credit account.
func selectedCredit(in domain.BankInput) (Selection, []domain.Transaction, bool) {
	sel, ok := DynamicSelect(in.Accounts, in.Transactions, string(domain.AccountCredit), in.Now())
	if !ok {
		return Selection{}, nil, false
	}
	return sel, transactionsOf(in.Transactions, map[string]bool{sel.ID: true}), true
}

// CreditMix scores the number of credit accounts against the age of the
// oldest credit transaction.
func CreditMix(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) domain.MetricResult {
	return run("credit_mix", domain.CategoryCredit, fb, func(s domain.Scope) (float64, float64, error) {
		credit := creditAccounts(in.Accounts)
		if len(credit) == 0 {
			return 0, 0, ErrNoCreditCard
		}

		names := make([]string, 0, len(credit))
		for _, a := range credit {
			if a.OfficialName != "" {
				names = append(names, a.OfficialName)
			}
		}

		first, ok := oldest(transactionsOf(in.Transactions, idSet(credit)))
		if !ok {
			return 0, 0, ErrNoCreditHistory
		}
		age := daysBetween(first, in.Now())

		score, err := p.CreditMix.At(
			p.CountZero.Digitize(float64(len(credit)), true),
			p.Duration.Digitize(age, true),
		)
		if err != nil {
			return 0, 0, err
		}

		s.Set(domain.KeyCreditCards, len(credit))
		s.Set(domain.KeyCardNames, names)
		return score, age, nil
	})
}

// CreditLimit scores the cumulative limit across all credit accounts.
func CreditLimit(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) domain.MetricResult {
	return run("credit_limit", domain.CategoryCredit, fb, func(s domain.Scope) (float64, float64, error) {
		credit := creditAccounts(in.Accounts)
		if len(credit) == 0 {
			return 0, 0, ErrNoCreditLimit
		}

		var limit float64
		for _, a := range credit {
			limit += math.Trunc(a.Balances.Limit)
		}

		first, ok := oldest(transactionsOf(in.Transactions, idSet(credit)))
		if !ok {
			return 0, 0, ErrNoCreditHistory
		}

		score, err := p.ActivityVolume.At(
			p.Duration.Digitize(daysBetween(first, in.Now()), true),
			p.VolumeCredit.Digitize(limit, true),
		)
		if err != nil {
			return 0, 0, err
		}

		s.Set("credit_limit", limit)
		return score, limit, nil
	})
}

// CreditUtilRatio scores the average monthly share of the limit spent on the
// best credit account. The current month is excluded.
func CreditUtilRatio(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) domain.MetricResult {
	return run("credit_util_ratio", domain.CategoryCredit, fb, func(s domain.Scope) (float64, float64, error) {
		sel, txns, ok := selectedCredit(in)
		if !ok || sel.Limit == 0 {
			return 0, 0, ErrNoCreditLimit
		}
		if len(txns) == 0 {
			return 0, 0, ErrNoCreditHistory
		}

		pts := make([]point, 0, len(txns))
		for _, tx := range txns {
			var purchase float64
			if tx.Amount > 0 {
				purchase = tx.Amount
			}
			pts = append(pts, point{at: tx.Date, amount: purchase})
		}

		util := monthly(pts).excludingMonthOf(in.Now())
		if util.Len() == 0 {
			return 0, 0, ErrShortSeries
		}

		ratios := make([]float64, util.Len())
		for i, purchases := range util.sums {
			ratios[i] = purchases / sel.Limit
		}
		avg := mean(ratios)

		score, err := p.ActivityConsistency.At(
			p.Duration.Digitize(float64(util.Len()*30), true),
			p.CreditUtilPct.Digitize(avg, true),
		)
		if err != nil {
			return 0, 0, err
		}

		s.Set("utilization_ratio", binning.Round(avg, 2))
		return score, avg, nil
	})
}

const interestWindow = 2 * 365 * 24 * time.Hour

// CreditInterest scores how often interest was charged on the best credit
// account over the last 24 months.
func CreditInterest(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) domain.MetricResult {
	return run("credit_interest", domain.CategoryCredit, fb, func(s domain.Scope) (float64, float64, error) {
		_, txns, ok := selectedCredit(in)
		if !ok {
			return 0, 0, ErrNoCreditCard
		}
		first, ok := oldest(txns)
		if !ok {
			return 0, 0, ErrNoCreditInterest
		}

		now := in.Now()
		length := math.Min(24, math.RoundToEven(daysBetween(first, now)/30))
		if length <= 0 {
			return 0, 0, ErrShortSeries
		}

		cutoff := now.Add(-interestWindow)
		var charged int
		for _, tx := range txns {
			if tx.HasCategory("Interest Charged") && tx.Date.After(cutoff) {
				charged++
			}
		}

		frequency := float64(charged) / length
		score, err := p.FicoMedians.At(p.FrequencyInterest.Digitize(frequency, true))
		if err != nil {
			return 0, 0, err
		}

		s.Set("count_charged_interest", binning.Round(frequency, 0))
		return score, frequency, nil
	})
}

// CreditLength scores the age of the best credit account's history.
func CreditLength(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) domain.MetricResult {
	return run("credit_length", domain.CategoryCredit, fb, func(s domain.Scope) (float64, float64, error) {
		_, txns, _ := selectedCredit(in)
		first, ok := oldest(txns)
		if !ok {
			return 0, 0, ErrNoCreditLength
		}

		age := daysBetween(first, in.Now())
		score, err := p.FicoMedians.At(p.Duration.Digitize(age, true))
		if err != nil {
			return 0, 0, err
		}

		s.Set("credit_duration_(days)", age)
		return score, age, nil
	})
}

const sparseMonth = 5

// CreditLivelihood scores the average monthly transaction count on the best
// credit account, ignoring sparse first and last months.
func CreditLivelihood(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) domain.MetricResult {
	return run("credit_livelihood", domain.CategoryCredit, fb, func(s domain.Scope) (float64, float64, error) {
		_, txns, _ := selectedCredit(in)
		if len(txns) == 0 {
			return 0, 0, ErrNoCreditActivity
		}

		pts := make([]point, len(txns))
		for i, tx := range txns {
			pts[i] = point{at: tx.Date, amount: tx.Amount}
		}
		counts := monthly(pts).trimSparseEnds(sparseMonth)
		if counts.Len() == 0 {
			return 0, 0, ErrNoCreditActivity
		}

		avg := mean(counts.counts)
		score, err := p.FicoMedians.At(p.CountLively.Digitize(avg, true))
		if err != nil {
			return 0, 0, err
		}

		s.Set("avg_count_monthly_txn", binning.Round(avg, 0))
		return score, avg, nil
	})
}
