// Package report turns a score and its feedback into a structured
// interpretation and a plain-language message for the user.
package report

import (
	"strings"
	"unicode"

	"credit_oracle/internal/domain"
	"credit_oracle/internal/risk"
)

type BankSummary struct {
	ScoreExist   bool     `json:"score_exist"`
	Points       *int     `json:"points"`
	Quality      *string  `json:"quality"`
	LoanAmount   *int64   `json:"loan_amount"`
	LoanDueDate  *int     `json:"loan_duedate"`
	CardNames    []string `json:"card_names"`
	CumBalance   *float64 `json:"cum_balance"`
	BankAccounts *int     `json:"bank_accounts"`
}

type BankAdvice struct {
	CreditExist    bool `json:"credit_exist"`
	CreditError    bool `json:"credit_error"`
	VelocityError  bool `json:"velocity_error"`
	StabilityError bool `json:"stability_error"`
	DiversityError bool `json:"diversity_error"`
}

type BankInterpretation struct {
	Score  BankSummary `json:"score"`
	Advice BankAdvice  `json:"advice"`
}

type ExchangeSummary struct {
	ScoreExist     bool     `json:"score_exist"`
	Points         *int     `json:"points"`
	Quality        *string  `json:"quality"`
	LoanAmount     *int64   `json:"loan_amount"`
	LoanDueDate    *int     `json:"loan_duedate"`
	WalletAge      *float64 `json:"wallet_age(days)"`
	CurrentBalance *float64 `json:"current_balance"`
}

type ExchangeAdvice struct {
	KYCError       bool `json:"kyc_error"`
	HistoryError   bool `json:"history_error"`
	LiquidityError bool `json:"liquidity_error"`
	ActivityError  bool `json:"activity_error"`
}

type ExchangeInterpretation struct {
	Score  ExchangeSummary `json:"score"`
	Advice ExchangeAdvice  `json:"advice"`
}

// HasBankScore is false when the fetch step recorded anything.
func HasBankScore(fb *domain.Feedback) bool {
	return fb.Len(domain.CategoryFetch) == 0
}

// HasExchangeScore is false when the user has no active wallet.
func HasExchangeScore(fb *domain.Feedback) bool {
	v, ok := fb.Get(domain.CategoryKYC, domain.KeyVerified)
	if !ok {
		return true
	}
	verified, isBool := v.(bool)
	return !isBool || verified
}

func ptr[T any](v T) *T {
	return &v
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func cardNames(fb *domain.Feedback) []string {
	v, _ := fb.Get(domain.CategoryCredit, domain.KeyCardNames)
	names, _ := v.([]string)
	return names
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// noCreditCard reports whether the credit category recorded the missing
// credit card signal.
func noCreditCard(fb *domain.Feedback) bool {
	msg, ok := fb.Error(domain.CategoryCredit)
	return ok && msg == domain.ErrNoCreditCardMsg
}

func InterpretBank(score float64, fb *domain.Feedback, m *risk.Mapper) BankInterpretation {
	var out BankInterpretation
	if !HasBankScore(fb) {
		return out
	}

	s := &out.Score
	s.ScoreExist = true
	s.Points = ptr(int(score))
	s.Quality = ptr(m.Quality(score))
	s.LoanAmount = ptr(m.Map(score).LoanAmount)

	if v, ok := fb.Get(domain.CategoryStability, domain.KeyLoanDueDate); ok {
		if n, ok := intValue(v); ok {
			s.LoanDueDate = ptr(n)
		}
	}
	for _, name := range cardNames(fb) {
		s.CardNames = append(s.CardNames, capitalize(name))
	}
	if v, ok := fb.Get(domain.CategoryStability, domain.KeyCumBalance); ok {
		if f, ok := floatValue(v); ok {
			s.CumBalance = ptr(f)
		}
	}
	if v, ok := fb.Get(domain.CategoryDiversity, domain.KeyBankAccounts); ok {
		if n, ok := intValue(v); ok {
			s.BankAccounts = ptr(n)
		}
	}

	out.Advice = BankAdvice{
		CreditExist:    !noCreditCard(fb),
		CreditError:    fb.Has(domain.CategoryCredit, domain.KeyError),
		VelocityError:  fb.Has(domain.CategoryVelocity, domain.KeyError),
		StabilityError: fb.Has(domain.CategoryStability, domain.KeyError),
		DiversityError: fb.Has(domain.CategoryDiversity, domain.KeyError),
	}
	return out
}

func InterpretExchange(score float64, fb *domain.Feedback, m *risk.Mapper) ExchangeInterpretation {
	var out ExchangeInterpretation
	if !HasExchangeScore(fb) {
		return out
	}

	s := &out.Score
	s.ScoreExist = true
	s.Points = ptr(int(score))
	s.Quality = ptr(m.Quality(score))
	s.LoanAmount = ptr(m.Map(score).LoanAmount)

	if v, ok := fb.Get(domain.CategoryLiquidity, domain.KeyLoanDueDate); ok {
		if n, ok := intValue(v); ok {
			s.LoanDueDate = ptr(n)
		}
	}
	if v, ok := fb.Get(domain.CategoryHistory, domain.KeyWalletAge); ok {
		if f, ok := floatValue(v); ok && f != 0 {
			s.WalletAge = ptr(f)
		}
	}
	if v, ok := fb.Get(domain.CategoryLiquidity, domain.KeyCurrentBalance); ok {
		if f, ok := floatValue(v); ok {
			s.CurrentBalance = ptr(f)
		}
	}

	out.Advice = ExchangeAdvice{
		KYCError:       fb.Has(domain.CategoryKYC, domain.KeyError),
		HistoryError:   fb.Has(domain.CategoryHistory, domain.KeyError),
		LiquidityError: fb.Has(domain.CategoryLiquidity, domain.KeyError),
		ActivityError:  fb.Has(domain.CategoryActivity, domain.KeyError),
	}
	return out
}
