package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"credit_oracle/internal/domain"
)

var (
	ErrNoAccounts           = errors.New("no accounts")
	ErrInvalidAccount       = errors.New("invalid account")
	ErrInvalidCurrency      = errors.New("invalid currency")
	ErrUnknownAccount       = errors.New("transaction references an unknown account")
	ErrMissingDate          = errors.New("transaction date is missing")
	ErrFutureTransaction    = errors.New("transaction date cannot be in the future")
	ErrDuplicateTransaction = errors.New("duplicate transaction")
)

const clockSkew = 5 * time.Minute

// DefaultExchangeCurrencies are the wallet currencies scored for exchange
// users.
var DefaultExchangeCurrencies = []string{"USD", "EUR", "BTC", "ETH", "USDT", "USDC", "BNB", "XRP", "SCRT"}

// InputValidator checks already-fetched snapshots before they are scored
// and returns normalised copies. It holds no per-request state.
type InputValidator struct {
	currencyRegex *regexp.Regexp
	exchange      map[string]bool
	allowedTypes  map[domain.TransactionType]bool
}

func NewInputValidator(exchangeCurrencies ...string) *InputValidator {
	if len(exchangeCurrencies) == 0 {
		exchangeCurrencies = DefaultExchangeCurrencies
	}

	v := &InputValidator{
		currencyRegex: regexp.MustCompile(`^[A-Z]{3,5}$`),
		exchange:      make(map[string]bool, len(exchangeCurrencies)),
		allowedTypes:  make(map[domain.TransactionType]bool),
	}
	for _, c := range exchangeCurrencies {
		v.exchange[strings.ToUpper(c)] = true
	}
	// relabelled sends are accepted so normalising twice is a no-op
	for _, t := range append(domain.AllowedExchangeTypes(), domain.TypeSendCredit, domain.TypeSendDebit) {
		v.allowedTypes[t] = true
	}
	return v
}

func (v *InputValidator) checkAccounts(accounts []domain.Account) (map[string]bool, error) {
	ids := make(map[string]bool, len(accounts))
	var errs []error
	for _, a := range accounts {
		if a.ID == "" || ids[a.ID] {
			errs = append(errs, fmt.Errorf("%w: id %q", ErrInvalidAccount, a.ID))
			continue
		}
		if a.Currency != "" && !v.currencyRegex.MatchString(strings.ToUpper(a.Currency)) {
			errs = append(errs, fmt.Errorf("%w: %q on account %s", ErrInvalidCurrency, a.Currency, a.ID))
		}
		ids[a.ID] = true
	}
	return ids, errors.Join(errs...)
}

func checkTransaction(tx domain.Transaction, ids map[string]bool, seen map[string]bool, now time.Time) error {
	var errs []error
	if !ids[tx.AccountID] {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownAccount, tx.AccountID))
	}
	if tx.Date.IsZero() {
		errs = append(errs, ErrMissingDate)
	} else if tx.Date.After(now.Add(clockSkew)) {
		errs = append(errs, ErrFutureTransaction)
	}
	if tx.ID != "" {
		if seen[tx.ID] {
			errs = append(errs, ErrDuplicateTransaction)
		}
		seen[tx.ID] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("transaction %s: %w", tx.ID, errors.Join(errs...))
	}
	return nil
}

// NormalizeBank drops pending transactions and rejects snapshots with
// malformed accounts or transactions.
func (v *InputValidator) NormalizeBank(in domain.BankInput) (domain.BankInput, error) {
	if len(in.Accounts) == 0 {
		return domain.BankInput{}, ErrNoAccounts
	}
	ids, err := v.checkAccounts(in.Accounts)
	if err != nil {
		return domain.BankInput{}, fmt.Errorf("validation errors: %w", err)
	}

	out := in
	out.Accounts = append([]domain.Account(nil), in.Accounts...)
	out.Transactions = make([]domain.Transaction, 0, len(in.Transactions))

	seen := make(map[string]bool, len(in.Transactions))
	var errs []error
	for _, tx := range in.Transactions {
		if tx.Pending || tx.Status == domain.StatusPending {
			continue
		}
		if err := checkTransaction(tx, ids, seen, in.Now()); err != nil {
			errs = append(errs, err)
			continue
		}
		out.Transactions = append(out.Transactions, tx)
	}
	if len(errs) > 0 {
		return domain.BankInput{}, fmt.Errorf("validation errors: %w", errors.Join(errs...))
	}
	return out, nil
}

// NormalizeExchange keeps funded wallets in scored currencies and their
// completed transactions of known types, then relabels raw sends.
func (v *InputValidator) NormalizeExchange(in domain.ExchangeInput) (domain.ExchangeInput, error) {
	if _, err := v.checkAccounts(in.Accounts); err != nil {
		return domain.ExchangeInput{}, fmt.Errorf("validation errors: %w", err)
	}

	out := domain.ExchangeInput{AsOf: in.AsOf}
	ids := make(map[string]bool)
	for _, a := range in.Accounts {
		if a.Balances.Current == 0 || !v.exchange[strings.ToUpper(a.Currency)] {
			continue
		}
		out.Accounts = append(out.Accounts, a)
		ids[a.ID] = true
	}

	seen := make(map[string]bool, len(in.Transactions))
	var (
		kept []domain.Transaction
		errs []error
	)
	for _, tx := range in.Transactions {
		if !ids[tx.AccountID] || tx.Status != domain.StatusCompleted || !v.allowedTypes[tx.Type] {
			continue
		}
		if err := checkTransaction(tx, ids, seen, in.Now()); err != nil {
			errs = append(errs, err)
			continue
		}
		kept = append(kept, tx)
	}
	if len(errs) > 0 {
		return domain.ExchangeInput{}, fmt.Errorf("validation errors: %w", errors.Join(errs...))
	}

	out.Transactions = domain.RelabelSends(kept)
	return out, nil
}
