package scoring

import (
	"math"

	"credit_oracle/internal/config"
	"credit_oracle/internal/domain"
)

// DiversityAccCount scores the number of linked accounts against the age of
// the oldest transaction. The institution name is recorded when known.
func DiversityAccCount(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) domain.MetricResult {
	return run("diversity_acc_count", domain.CategoryDiversity, fb, func(s domain.Scope) (float64, float64, error) {
		if in.InstitutionName != "" {
			s.Set(domain.KeyBankName, in.InstitutionName)
		}

		first, ok := oldest(in.Transactions)
		if !ok {
			return 0, 0, ErrNoTransactions
		}

		size := float64(len(in.Accounts))
		score, err := p.DiversityVelocity.At(
			p.CountZero.Shift(2).Digitize(size, false),
			p.Duration.Digitize(daysBetween(first, in.Now()), true),
		)
		if err != nil {
			return 0, 0, err
		}

		s.Set(domain.KeyBankAccounts, len(in.Accounts))
		return score, size, nil
	})
}

// DiversityProfile scores the balance held in savings-like depository
// accounts and investment accounts.
func DiversityProfile(in domain.BankInput, p *config.BankParams, fb *domain.Feedback) domain.MetricResult {
	return run("diversity_profile", domain.CategoryDiversity, fb, func(s domain.Scope) (float64, float64, error) {
		var (
			balance float64
			held    int
		)
		for _, a := range in.Accounts {
			current := math.Trunc(a.Balances.Current)
			if !a.Is(domain.AccountLoan) && current == 0 {
				continue
			}

			savings := a.IsDepository() && !a.IsChecking()
			if savings || a.Is(domain.AccountInvestment) {
				balance += current
				held++
			}
		}
		if balance == 0 {
			return 0, 0, ErrNoSavings
		}

		score, err := p.FicoMedians.At(p.VolumeInvest.Digitize(balance, true))
		if err != nil {
			return 0, 0, err
		}

		s.Set("investment_accounts", held)
		s.Set("investment_total_balance", balance)
		return score, balance, nil
	})
}
