package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"credit_oracle/internal/domain"
	"credit_oracle/internal/risk"
)

// Token converts the USD loan amount into a token quote. A zero Rate turns
// the quote off.
type Token struct {
	Symbol string
	Rate   decimal.Decimal // tokens per USD
}

func (t Token) enabled() bool {
	return t.Symbol != "" && t.Rate.IsPositive()
}

// Convert returns usd expressed in tokens, rounded to whole units.
func (t Token) Convert(usd decimal.Decimal) decimal.Decimal {
	return usd.Mul(t.Rate).Round(0)
}

const (
	bankNoScore = "We could not calculate your credit score because no account or transaction data was retrieved. " +
		"Try linking a different bank account."
	exchangeNoScore = "Your exchange account is connected, but we could not calculate your credit score because it has " +
		"no active wallet or transaction history. Try linking a different exchange account."
	noCreditCardAdvice = " We found no credit card on this bank account. Credit scores rely heavily on credit card " +
		"history, so linking an account with a credit line will improve your score."
)

// commaList joins items as "a", "a and b" or "a, b, and c".
func commaList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}

func usd(v float64) string {
	return "$" + humanize.Comma(int64(math.Round(v)))
}

func headline(b *strings.Builder, score float64, m *risk.Mapper, tok Token, dueDate any, hasDueDate bool) {
	loan := m.LoanAmount(score)
	fmt.Fprintf(b, "Your credit score is %s - %d points. This score qualifies you for a short term loan of up to %s USD",
		strings.ToUpper(m.Quality(score)), int(score), usd(loan.InexactFloat64()))
	if tok.enabled() {
		fmt.Fprintf(b, " (%s %s)", humanize.Comma(tok.Convert(loan).IntPart()), tok.Symbol)
	}
	if hasDueDate {
		fmt.Fprintf(b, " over a recommended payback period of %v monthly installments.", dueDate)
	} else {
		b.WriteString(".")
	}
}

func failedList(fb *domain.Feedback) string {
	failed := fb.FailedCategories()
	names := make([]string, len(failed))
	for i, c := range failed {
		names[i] = string(c)
	}
	return commaList(names)
}

func BankMessage(score float64, fb *domain.Feedback, m *risk.Mapper, tok Token) string {
	if !HasBankScore(fb) {
		return bankNoScore
	}

	var b strings.Builder
	due, hasDue := fb.Get(domain.CategoryStability, domain.KeyLoanDueDate)
	headline(&b, score, m, tok, due, hasDue)

	if names := cardNames(fb); len(names) > 0 {
		fmt.Fprintf(&b, " Part of your score is based on the transaction history of your %s credit card", strings.Join(names, ", "))
		if len(names) > 1 {
			b.WriteString("s")
		}
		b.WriteString(".")
	}

	if v, ok := fb.Get(domain.CategoryStability, domain.KeyCumBalance); ok {
		balance, _ := floatValue(v)
		if bank, ok := fb.Get(domain.CategoryDiversity, domain.KeyBankName); ok {
			fmt.Fprintf(&b, " Your total current balance is %s USD across all accounts held with %v.", usd(balance), bank)
		} else {
			fmt.Fprintf(&b, " Your total current balance is %s USD across all your accounts.", usd(balance))
		}
	}

	switch {
	case noCreditCard(fb):
		b.WriteString(noCreditCardAdvice)
	case len(fb.FailedCategories()) > 0:
		fmt.Fprintf(&b, " An error occurred while computing the %s metrics, so your score was rounded down. "+
			"Try again later or link a different bank account.", failedList(fb))
	}
	return b.String()
}

func ExchangeMessage(score float64, fb *domain.Feedback, m *risk.Mapper, tok Token) string {
	if !HasExchangeScore(fb) {
		return exchangeNoScore
	}

	var b strings.Builder
	due, hasDue := fb.Get(domain.CategoryLiquidity, domain.KeyLoanDueDate)
	headline(&b, score, m, tok, due, hasDue)

	age, hasAge := fb.Get(domain.CategoryHistory, domain.KeyWalletAge)
	balance, hasBalance := fb.Get(domain.CategoryLiquidity, domain.KeyCurrentBalance)
	bal, _ := floatValue(balance)

	switch {
	case hasAge && hasBalance:
		fmt.Fprintf(&b, " Your exchange account has been active for %v days and your total balance across all wallets is %s USD.", age, usd(bal))
	case hasAge:
		fmt.Fprintf(&b, " Your exchange account has been active for %v days.", age)
	case hasBalance:
		fmt.Fprintf(&b, " Your total balance across all wallets is %s USD.", usd(bal))
	}

	if len(fb.FailedCategories()) > 0 {
		fmt.Fprintf(&b, " An error occurred while computing the %s metrics, so your score was rounded down. "+
			"Try linking your exchange account again later.", failedList(fb))
	}
	return b.String()
}
