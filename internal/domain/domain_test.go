package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelabelSends(t *testing.T) {
	raw := []Transaction{
		{ID: "1", Type: TypeSend, Amount: 120},
		{ID: "2", Type: TypeSend, Amount: -40},
		{ID: "3", Type: TypeBuy, Amount: 10},
		{ID: "4", Type: TypeSend, Amount: 0},
	}

	once := RelabelSends(raw)
	require.Len(t, once, 4)
	assert.Equal(t, TypeSendCredit, once[0].Type)
	assert.Equal(t, TypeSendDebit, once[1].Type)
	assert.Equal(t, TypeBuy, once[2].Type)
	assert.Equal(t, TypeSend, once[3].Type)

	assert.Equal(t, TypeSend, raw[0].Type, "input must not be mutated")

	twice := RelabelSends(once)
	assert.Equal(t, once, twice)
}

func TestTransactionType_Roles(t *testing.T) {
	assert.True(t, TypeSell.HasActivityRole(RoleDebit))
	assert.False(t, TypeSell.HasProfitRole(RoleDebit))
	assert.True(t, TypeBuy.HasActivityRole(RoleCredit))
	assert.False(t, TypeSend.HasActivityRole(RoleCredit))

	assert.Equal(t, 1, TypeSell.FlowSign())
	assert.Equal(t, -1, TypeBuy.FlowSign())
	assert.Equal(t, 0, TypeSend.FlowSign())
}

func TestTransaction_Category(t *testing.T) {
	tx := Transaction{Category: []string{"Transfer", "Payroll"}}

	assert.True(t, tx.HasCategory("payroll"))
	assert.False(t, tx.HasCategory("rent"))
	assert.True(t, tx.CategoryIs("Transfer", "Payroll"))
	assert.False(t, tx.CategoryIs("Transfer"))
}

func TestAccount_Kind(t *testing.T) {
	acc := Account{Type: "Depository", Subtype: "Checking"}

	assert.Equal(t, "depository_checking", acc.Kind())
	assert.True(t, acc.IsChecking())
	assert.True(t, acc.IsDepository())
	assert.False(t, acc.IsCredit())
}

func TestFeedback_Scope(t *testing.T) {
	fb := NewBankFeedback()

	assert.Equal(t, BankCategories(), fb.Categories())
	for _, c := range fb.Categories() {
		assert.Zero(t, fb.Len(c))
	}

	credit := fb.Scope(CategoryCredit)
	credit.Set(KeyCreditCards, 2)
	credit.Fail(errors.New("first"))
	credit.Fail(errors.New("second"))

	msg, ok := fb.Error(CategoryCredit)
	require.True(t, ok)
	assert.Equal(t, "second", msg, "last failure wins")
	assert.Equal(t, []Category{CategoryCredit}, fb.FailedCategories())

	fb.Scope(CategoryVelocity).Fail(nil)
	assert.False(t, fb.Has(CategoryVelocity, KeyError))
}

func TestFeedback_SetNestedAndJSON(t *testing.T) {
	fb := NewExchangeFeedback()
	activity := fb.Scope(CategoryActivity)
	activity.SetNested("credit", "balance", 1500.0)
	activity.SetNested("credit", "timeframe(days)", 90)
	fb.Scope(CategoryKYC).Set(KeyVerified, true)

	raw, err := json.Marshal(fb)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"kyc": {"verified": true},
		"history": {},
		"liquidity": {},
		"activity": {"credit": {"balance": 1500, "timeframe(days)": 90}}
	}`, string(raw))

	snap := fb.Snapshot()
	snap[CategoryKYC][KeyVerified] = false
	v, _ := fb.Get(CategoryKYC, KeyVerified)
	assert.Equal(t, true, v)
}

func TestFeedback_MarshalJSONOrder(t *testing.T) {
	fb := NewBankFeedback()
	stability := fb.Scope(CategoryStability)
	stability.Set("min_running_timeframe", 360.0)
	stability.Set("loan_duedate", 4)
	stability.Set("min_running_balance", 120.5)

	raw, err := json.Marshal(fb)
	require.NoError(t, err)
	assert.Equal(t,
		`{"fetch":{},"credit":{},"velocity":{},"stability":{"loan_duedate":4,"min_running_balance":120.5,"min_running_timeframe":360},"diversity":{}}`,
		string(raw))
}

func TestMetricResult_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(MetricResult{Metric: "kyc", Category: CategoryKYC, Err: errors.New("boom")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"metric":"kyc","category":"kyc","score":0,"feature":0,"error":"boom"}`, string(raw))
}
