package domain

import (
	"strings"
	"time"
)

type AccountType string

const (
	AccountDepository AccountType = "depository"
	AccountCredit     AccountType = "credit"
	AccountLoan       AccountType = "loan"
	AccountInvestment AccountType = "investment"
	AccountWallet     AccountType = "wallet"
	AccountOther      AccountType = "other"
)

const SubtypeChecking = "checking"

// Balances mirrors the aggregator's balance block. A zero value stands for a
// missing figure; Limit is only set on credit accounts.
type Balances struct {
	Current   float64 `json:"current"`
	Available float64 `json:"available"`
	Limit     float64 `json:"limit,omitempty"`
}

type Account struct {
	ID           string      `json:"id"`
	Type         AccountType `json:"type"`
	Subtype      string      `json:"subtype,omitempty"`
	OfficialName string      `json:"official_name,omitempty"`
	Currency     string      `json:"currency"`
	Balances     Balances    `json:"balances"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Kind returns the lowercase "type_subtype" label used for account matching.
func (a Account) Kind() string {
	return strings.ToLower(string(a.Type) + "_" + a.Subtype)
}

func (a Account) IsChecking() bool {
	return a.Kind() == string(AccountDepository)+"_"+SubtypeChecking
}

// Is compares the account type ignoring case.
func (a Account) Is(t AccountType) bool {
	return strings.EqualFold(string(a.Type), string(t))
}

func (a Account) IsCredit() bool {
	return a.Is(AccountCredit)
}

func (a Account) IsDepository() bool {
	return a.Is(AccountDepository)
}
