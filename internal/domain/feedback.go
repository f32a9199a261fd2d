package domain

import (
	"bytes"
	"encoding/json"
)

type Category string

const (
	CategoryFetch     Category = "fetch"
	CategoryCredit    Category = "credit"
	CategoryVelocity  Category = "velocity"
	CategoryStability Category = "stability"
	CategoryDiversity Category = "diversity"

	CategoryKYC       Category = "kyc"
	CategoryHistory   Category = "history"
	CategoryLiquidity Category = "liquidity"
	CategoryActivity  Category = "activity"
)

// Feedback keys read back by the report layer.
const (
	KeyError           = "error"
	KeyCardNames       = "card_names"
	KeyCreditCards     = "credit_cards"
	KeyCumBalance      = "cumulative_current_balance"
	KeyBankAccounts    = "bank_accounts"
	KeyBankName        = "bank_name"
	KeyLoanDueDate     = "loan_duedate"
	KeyVerified        = "verified"
	KeyWalletAge       = "wallet_age(days)"
	KeyCurrentBalance  = "current_balance"
	ErrNoCreditCardMsg = "no credit card"
)

func BankCategories() []Category {
	return []Category{CategoryFetch, CategoryCredit, CategoryVelocity, CategoryStability, CategoryDiversity}
}

func ExchangeCategories() []Category {
	return []Category{CategoryKYC, CategoryHistory, CategoryLiquidity, CategoryActivity}
}

// Feedback accumulates per-metric findings for one scoring request. Each
// category holds metric keys plus at most one "error" entry, where the last
// failure wins. A Feedback must not be shared between requests and is not
// safe for concurrent writers.
type Feedback struct {
	order   []Category
	entries map[Category]map[string]any
}

// NewFeedback pre-seeds every category with an empty mapping.
func NewFeedback(categories ...Category) *Feedback {
	fb := &Feedback{
		order:   make([]Category, 0, len(categories)),
		entries: make(map[Category]map[string]any, len(categories)),
	}
	for _, c := range categories {
		if _, ok := fb.entries[c]; ok {
			continue
		}
		fb.order = append(fb.order, c)
		fb.entries[c] = make(map[string]any)
	}
	return fb
}

func NewBankFeedback() *Feedback {
	return NewFeedback(BankCategories()...)
}

func NewExchangeFeedback() *Feedback {
	return NewFeedback(ExchangeCategories()...)
}

// Scope returns a writer bound to one category. Unknown categories are
// appended after the seeded ones.
func (f *Feedback) Scope(c Category) Scope {
	if _, ok := f.entries[c]; !ok {
		f.order = append(f.order, c)
		f.entries[c] = make(map[string]any)
	}
	return Scope{fb: f, category: c}
}

func (f *Feedback) Categories() []Category {
	out := make([]Category, len(f.order))
	copy(out, f.order)
	return out
}

func (f *Feedback) Get(c Category, key string) (any, bool) {
	v, ok := f.entries[c][key]
	return v, ok
}

func (f *Feedback) Has(c Category, key string) bool {
	_, ok := f.entries[c][key]
	return ok
}

// Len returns the number of keys recorded under c.
func (f *Feedback) Len(c Category) int {
	return len(f.entries[c])
}

func (f *Feedback) Error(c Category) (string, bool) {
	v, ok := f.entries[c][KeyError]
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, true
}

// FailedCategories lists, in category order, every category holding an error.
func (f *Feedback) FailedCategories() []Category {
	var out []Category
	for _, c := range f.order {
		if f.Has(c, KeyError) {
			out = append(out, c)
		}
	}
	return out
}

// Snapshot returns a deep copy of the accumulated mapping.
func (f *Feedback) Snapshot() map[Category]map[string]any {
	out := make(map[Category]map[string]any, len(f.entries))
	for c, kv := range f.entries {
		out[c] = copyMap(kv)
	}
	return out
}

// MarshalJSON writes categories in seeding order and keys sorted.
func (f *Feedback) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range f.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(string(c))
		if err != nil {
			return nil, err
		}
		// encoding/json sorts map keys, which gives a stable document.
		body, err := json.Marshal(f.entries[c])
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Scope is a category-bound writer into a Feedback.
type Scope struct {
	fb       *Feedback
	category Category
}

func (s Scope) Category() Category {
	return s.category
}

func (s Scope) Set(key string, value any) {
	s.fb.entries[s.category][key] = value
}

// SetNested writes value under group/key, creating the group on first use.
func (s Scope) SetNested(group, key string, value any) {
	kv := s.fb.entries[s.category]
	inner, ok := kv[group].(map[string]any)
	if !ok {
		inner = make(map[string]any)
		kv[group] = inner
	}
	inner[key] = value
}

// Fail records err as the category's single error slot.
func (s Scope) Fail(err error) {
	if err == nil {
		return
	}
	s.fb.entries[s.category][KeyError] = err.Error()
}

func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if nested, ok := v.(map[string]any); ok {
			out[k] = copyMap(nested)
			continue
		}
		if list, ok := v.([]string); ok {
			out[k] = append([]string(nil), list...)
			continue
		}
		out[k] = v
	}
	return out
}
