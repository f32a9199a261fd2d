package domain

import (
	"strings"
	"time"
)

type TransactionType string
type TransactionStatus string

// Exchange transaction types. SendCredit and SendDebit only exist after
// RelabelSends has disambiguated a raw send.
const (
	TypeFiatDeposit     TransactionType = "fiat_deposit"
	TypeRequest         TransactionType = "request"
	TypeBuy             TransactionType = "buy"
	TypeFiatWithdrawal  TransactionType = "fiat_withdrawal"
	TypeVaultWithdrawal TransactionType = "vault_withdrawal"
	TypeSell            TransactionType = "sell"
	TypeSend            TransactionType = "send"
	TypeSendCredit      TransactionType = "send_credit"
	TypeSendDebit       TransactionType = "send_debit"

	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// Transaction is a single bank or exchange record. Bank amounts follow the
// aggregator convention: positive is money leaving the account. Exchange
// amounts are native (USD) amounts signed per type.
type Transaction struct {
	ID        string            `json:"id"`
	AccountID string            `json:"account_id"`
	Date      time.Time         `json:"date"`
	Amount    float64           `json:"amount"`
	Category  []string          `json:"category,omitempty"`
	Type      TransactionType   `json:"type,omitempty"`
	Status    TransactionStatus `json:"status,omitempty"`
	Pending   bool              `json:"pending,omitempty"`
}

// HasCategory reports whether any category label equals label, ignoring case.
func (tx Transaction) HasCategory(label string) bool {
	for _, c := range tx.Category {
		if strings.EqualFold(c, label) {
			return true
		}
	}
	return false
}

// CategoryIs reports whether the category path equals path exactly.
func (tx Transaction) CategoryIs(path ...string) bool {
	if len(tx.Category) != len(path) {
		return false
	}
	for i := range path {
		if tx.Category[i] != path[i] {
			return false
		}
	}
	return true
}

// Role is the economic direction of an exchange transaction.
type Role string

const (
	RoleCredit Role = "credit"
	RoleDebit  Role = "debit"
)

var (
	activityRoles = map[Role][]TransactionType{
		RoleCredit: {TypeFiatDeposit, TypeRequest, TypeBuy, TypeSendCredit},
		RoleDebit:  {TypeFiatWithdrawal, TypeVaultWithdrawal, TypeSell, TypeSendDebit},
	}
	profitRoles = map[Role][]TransactionType{
		RoleCredit: {TypeFiatDeposit, TypeRequest, TypeBuy, TypeSendCredit},
		RoleDebit:  {TypeFiatWithdrawal, TypeVaultWithdrawal, TypeSendDebit},
	}
	incomeTypes  = []TransactionType{TypeFiatDeposit, TypeRequest, TypeSell, TypeSendCredit}
	expenseTypes = []TransactionType{TypeFiatWithdrawal, TypeVaultWithdrawal, TypeBuy, TypeSendDebit}
)

// AllowedExchangeTypes lists the raw types accepted from the exchange before
// send relabelling.
func AllowedExchangeTypes() []TransactionType {
	return []TransactionType{
		TypeFiatDeposit, TypeRequest, TypeBuy, TypeFiatWithdrawal,
		TypeVaultWithdrawal, TypeSell, TypeSend,
	}
}

// HasActivityRole is used by the volume and consistency metrics.
func (t TransactionType) HasActivityRole(r Role) bool {
	return contains(activityRoles[r], t)
}

// HasProfitRole differs from HasActivityRole only in that a sell is not
// counted as a debit.
func (t TransactionType) HasProfitRole(r Role) bool {
	return contains(profitRoles[r], t)
}

// FlowSign is +1 for income, -1 for expense and 0 for types that do not
// move the net flow.
func (t TransactionType) FlowSign() int {
	switch {
	case contains(incomeTypes, t):
		return 1
	case contains(expenseTypes, t):
		return -1
	default:
		return 0
	}
}

// RelabelSends returns a copy of txns where every raw send is replaced by
// send_credit or send_debit according to the sign of its amount. Sends with a
// zero amount keep their type. Applying it twice is a no-op.
func RelabelSends(txns []Transaction) []Transaction {
	out := make([]Transaction, len(txns))
	copy(out, txns)

	for i := range out {
		if out[i].Type != TypeSend {
			continue
		}
		switch {
		case out[i].Amount > 0:
			out[i].Type = TypeSendCredit
		case out[i].Amount < 0:
			out[i].Type = TypeSendDebit
		}
	}
	return out
}

func contains(types []TransactionType, t TransactionType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}
