package domain

import "time"

// BankInput is the already-fetched aggregator snapshot for one user.
// Transactions are expected newest first, as the aggregator returns them,
// but no metric depends on that order.
type BankInput struct {
	Accounts        []Account     `json:"accounts"`
	Transactions    []Transaction `json:"transactions"`
	InstitutionName string        `json:"institution_name,omitempty"`
	AsOf            time.Time     `json:"as_of,omitempty"`
}

// Now returns the scoring date, defaulting to the wall clock.
func (in BankInput) Now() time.Time {
	if in.AsOf.IsZero() {
		return time.Now()
	}
	return in.AsOf
}

// ExchangeInput holds non-zero exchange wallets and their completed,
// relabelled transactions.
type ExchangeInput struct {
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
	AsOf         time.Time     `json:"as_of,omitempty"`
}

func (in ExchangeInput) Now() time.Time {
	if in.AsOf.IsZero() {
		return time.Now()
	}
	return in.AsOf
}
