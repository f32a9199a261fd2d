package report

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit_oracle/internal/config"
	"credit_oracle/internal/domain"
	"credit_oracle/internal/risk"
)

func mapper(t *testing.T) *risk.Mapper {
	t.Helper()
	m, err := risk.FromConfig(config.Default().Scoring)
	require.NoError(t, err)
	return m
}

func TestCommaList(t *testing.T) {
	assert.Equal(t, "", commaList(nil))
	assert.Equal(t, "credit", commaList([]string{"credit"}))
	assert.Equal(t, "credit and velocity", commaList([]string{"credit", "velocity"}))
	assert.Equal(t, "credit, velocity, and stability", commaList([]string{"credit", "velocity", "stability"}))
}

func TestBankMessage_NoScore(t *testing.T) {
	fb := domain.NewBankFeedback()
	fb.Scope(domain.CategoryFetch).Fail(errors.New("item login required"))

	assert.Equal(t, bankNoScore, BankMessage(300, fb, mapper(t), Token{}))
	assert.False(t, InterpretBank(300, fb, mapper(t)).Score.ScoreExist)
}

func TestBankMessage_NoCreditCard(t *testing.T) {
	fb := domain.NewBankFeedback()
	fb.Scope(domain.CategoryCredit).Fail(errors.New(domain.ErrNoCreditCardMsg))
	fb.Scope(domain.CategoryStability).Set(domain.KeyCumBalance, 16200.0)
	fb.Scope(domain.CategoryStability).Set(domain.KeyLoanDueDate, 5)
	fb.Scope(domain.CategoryDiversity).Set(domain.KeyBankName, "First Test Bank")

	msg := BankMessage(612.4, fb, mapper(t), Token{})

	assert.Contains(t, msg, "FAIR - 612 points")
	assert.Contains(t, msg, "up to $5,000 USD over a recommended payback period of 5 monthly installments.")
	assert.Contains(t, msg, "$16,200 USD across all accounts held with First Test Bank.")
	assert.Contains(t, msg, noCreditCardAdvice)
	assert.NotContains(t, msg, "An error occurred")

	in := InterpretBank(612.4, fb, mapper(t))
	assert.True(t, in.Score.ScoreExist)
	assert.False(t, in.Advice.CreditExist)
	assert.True(t, in.Advice.CreditError)
	require.NotNil(t, in.Score.LoanDueDate)
	assert.Equal(t, 5, *in.Score.LoanDueDate)
}

func TestBankMessage_FailedCategories(t *testing.T) {
	fb := domain.NewBankFeedback()
	fb.Scope(domain.CategoryCredit).Set(domain.KeyCardNames, []string{"Platinum Rewards", "Cash Back"})
	fb.Scope(domain.CategoryVelocity).Fail(errors.New("no withdrawals"))
	fb.Scope(domain.CategoryDiversity).Fail(errors.New("no investing nor savings accounts"))

	msg := BankMessage(700, fb, mapper(t), Token{})

	assert.Contains(t, msg, "Platinum Rewards, Cash Back credit cards.")
	assert.Contains(t, msg, "the velocity and diversity metrics")
	assert.NotContains(t, msg, noCreditCardAdvice)
	assert.NotContains(t, msg, "installments")
	assert.True(t, len(msg) > 0 && msg[len(msg)-1] == '.')

	in := InterpretBank(700, fb, mapper(t))
	assert.True(t, in.Advice.CreditExist)
	assert.True(t, in.Advice.VelocityError)
	assert.True(t, in.Advice.DiversityError)
	assert.False(t, in.Advice.StabilityError)
	assert.Equal(t, []string{"Platinum rewards", "Cash back"}, in.Score.CardNames)
}

func TestBankMessage_TokenQuote(t *testing.T) {
	fb := domain.NewBankFeedback()
	tok := Token{Symbol: "SCRT", Rate: decimal.RequireFromString("1.25")}

	msg := BankMessage(650, fb, mapper(t), tok)
	assert.Contains(t, msg, "up to $5,000 USD (6,250 SCRT).")
	assert.Equal(t, "6250", tok.Convert(decimal.NewFromInt(5000)).String())
}

func TestExchangeMessage_NoActiveWallet(t *testing.T) {
	fb := domain.NewExchangeFeedback()
	fb.Scope(domain.CategoryKYC).Set(domain.KeyVerified, false)
	fb.Scope(domain.CategoryHistory).Fail(errors.New("unknown account longevity"))

	assert.Equal(t, exchangeNoScore, ExchangeMessage(300, fb, mapper(t), Token{}))

	in := InterpretExchange(300, fb, mapper(t))
	assert.False(t, in.Score.ScoreExist)
	assert.Nil(t, in.Score.Points)
}

func TestExchangeMessage_Score(t *testing.T) {
	fb := domain.NewExchangeFeedback()
	fb.Scope(domain.CategoryKYC).Set(domain.KeyVerified, true)
	fb.Scope(domain.CategoryHistory).Set(domain.KeyWalletAge, 832.0)
	fb.Scope(domain.CategoryLiquidity).Set(domain.KeyCurrentBalance, 6400.0)
	fb.Scope(domain.CategoryLiquidity).Set(domain.KeyLoanDueDate, 6)
	fb.Scope(domain.CategoryActivity).Fail(errors.New("no net profit"))

	msg := ExchangeMessage(745, fb, mapper(t), Token{})

	assert.Contains(t, msg, "score is VERY GOOD - 745 points")
	assert.Contains(t, msg, "up to $15,000 USD over a recommended payback period of 6 monthly installments.")
	assert.Contains(t, msg, "active for 832 days and your total balance across all wallets is $6,400 USD.")
	assert.Contains(t, msg, "the activity metrics")

	in := InterpretExchange(745, fb, mapper(t))
	assert.True(t, in.Score.ScoreExist)
	assert.True(t, in.Advice.ActivityError)
	require.NotNil(t, in.Score.WalletAge)
	assert.Equal(t, 832.0, *in.Score.WalletAge)

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"wallet_age(days)":832`)
}

func TestExchangeMessage_BracketEdge(t *testing.T) {
	fb := domain.NewExchangeFeedback()
	fb.Scope(domain.CategoryKYC).Set(domain.KeyVerified, true)

	assert.Contains(t, ExchangeMessage(740, fb, mapper(t), Token{}), "score is GOOD - 740 points. This score qualifies you for a short term loan of up to $10,000 USD")
	assert.Contains(t, ExchangeMessage(741, fb, mapper(t), Token{}), "score is VERY GOOD - 741 points. This score qualifies you for a short term loan of up to $15,000 USD")
}

func TestExchangeMessage_BalanceOnly(t *testing.T) {
	fb := domain.NewExchangeFeedback()
	fb.Scope(domain.CategoryLiquidity).Set(domain.KeyCurrentBalance, 1234.5)

	msg := ExchangeMessage(400, fb, mapper(t), Token{})
	assert.Contains(t, msg, "Your total balance across all wallets is $1,235 USD.")
	assert.NotContains(t, msg, "active for")
	assert.NotContains(t, msg, "An error occurred")
}
