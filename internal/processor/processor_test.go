package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"credit_oracle/internal/config"
	"credit_oracle/internal/domain"
	"credit_oracle/internal/repository/memory"
	"credit_oracle/internal/risk"
	"credit_oracle/pkg/crypto"
	"credit_oracle/pkg/metrics"
)

var asOf = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

func newProcessor(t *testing.T) (*ScoreProcessor, *memory.ResultRepository) {
	t.Helper()
	cfg := config.Default()
	compiled, err := config.Compile(cfg)
	if err != nil {
		t.Fatalf("compile default config: %v", err)
	}
	mapper, err := risk.FromConfig(cfg.Scoring)
	if err != nil {
		t.Fatalf("build risk mapper: %v", err)
	}

	repo := memory.NewResultRepository(0)
	proc := NewScoreProcessor(compiled, mapper, repo, crypto.NewSigner("test-key", nil),
		metrics.NewMetricsCollector(nil), 4, nil)
	proc.now = func() time.Time { return asOf }
	return proc, repo
}

func bankInput() *domain.BankInput {
	in := &domain.BankInput{
		InstitutionName: "First Test Bank",
		AsOf:            asOf,
		Accounts: []domain.Account{
			{ID: "chk", Type: domain.AccountDepository, Subtype: "checking", Currency: "USD",
				Balances: domain.Balances{Current: 3100, Available: 3000}},
			{ID: "cc", Type: domain.AccountCredit, Subtype: "credit card", OfficialName: "Cash Back",
				Currency: "USD", Balances: domain.Balances{Current: 400, Available: 4600, Limit: 5000}},
		},
	}

	n := 0
	add := func(acc string, at time.Time, amount float64, category ...string) {
		n++
		in.Transactions = append(in.Transactions, domain.Transaction{
			ID: fmt.Sprintf("tx%d", n), AccountID: acc, Date: at, Amount: amount, Category: category,
		})
	}
	for i := 0; i < 12; i++ {
		m := asOf.AddDate(0, i-12, 0)
		y, mon := m.Year(), m.Month()
		add("chk", time.Date(y, mon, 1, 0, 0, 0, 0, time.UTC), -2200, "Transfer", "Payroll")
		add("chk", time.Date(y, mon, 4, 0, 0, 0, 0, time.UTC), 950, "Payment", "Rent")
		add("chk", time.Date(y, mon, 9, 0, 0, 0, 0, time.UTC), 160, "Shops", "Groceries")
		add("cc", time.Date(y, mon, 12, 0, 0, 0, 0, time.UTC), 210, "Shops", "Electronics")
		add("cc", time.Date(y, mon, 20, 0, 0, 0, 0, time.UTC), -300, "Payment", "Credit Card")
	}
	return in
}

func exchangeInput() *domain.ExchangeInput {
	in := &domain.ExchangeInput{
		AsOf: asOf,
		Accounts: []domain.Account{
			{ID: "btc", Type: domain.AccountWallet, Currency: "BTC",
				Balances: domain.Balances{Current: 2500}, CreatedAt: time.Date(2022, time.May, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
	for i := 0; i < 10; i++ {
		m := asOf.AddDate(0, i-10, 0)
		in.Transactions = append(in.Transactions,
			domain.Transaction{ID: fmt.Sprintf("d%d", i), AccountID: "btc", Type: domain.TypeFiatDeposit,
				Status: domain.StatusCompleted, Amount: 600, Date: time.Date(m.Year(), m.Month(), 3, 0, 0, 0, 0, time.UTC)},
			domain.Transaction{ID: fmt.Sprintf("w%d", i), AccountID: "btc", Type: domain.TypeFiatWithdrawal,
				Status: domain.StatusCompleted, Amount: -250, Date: time.Date(m.Year(), m.Month(), 18, 0, 0, 0, 0, time.UTC)},
		)
	}
	return in
}

func TestScoreProcessor_ScoreBank_Success(t *testing.T) {
	ctx := context.Background()
	proc, repo := newProcessor(t)

	rec, err := proc.ScoreBank(ctx, Request{RequestID: "req-1", Bank: bankInput()})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.ScoreExist || rec.Score < 300 || rec.Score >= 900 {
		t.Fatalf("expected a score in [300, 900), got exist=%v score=%f", rec.ScoreExist, rec.Score)
	}
	if rec.Risk == nil || rec.Quality == "" {
		t.Fatalf("expected risk and quality, got %+v / %q", rec.Risk, rec.Quality)
	}
	if !strings.HasPrefix(rec.Message, "Your credit score is") {
		t.Errorf("unexpected message: %s", rec.Message)
	}
	if err := proc.VerifyResult(rec); err != nil {
		t.Errorf("expected a valid signature, got %v", err)
	}

	stored, err := repo.GetByID(ctx, "req-1")
	if err != nil {
		t.Fatalf("expected record to be stored: %v", err)
	}
	if stored.Score != rec.Score {
		t.Errorf("expected stored score %f, got %f", rec.Score, stored.Score)
	}
}

func TestScoreProcessor_ScoreBank_InvalidInputIsNotScored(t *testing.T) {
	proc, _ := newProcessor(t)
	in := bankInput()
	in.Transactions[0].AccountID = "unknown"

	rec, err := proc.ScoreBank(context.Background(), Request{Bank: in})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ScoreExist || rec.Risk != nil {
		t.Fatalf("expected no score, got %+v", rec)
	}
	if _, failed := rec.Feedback.Error(domain.CategoryFetch); !failed {
		t.Errorf("expected a fetch error in feedback")
	}
	if !strings.Contains(rec.Message, "could not calculate your credit score") {
		t.Errorf("expected the no-score message, got %s", rec.Message)
	}
	if rec.RequestID == "" {
		t.Errorf("expected a generated request id")
	}
}

func TestScoreProcessor_ScoreBank_TamperedRecord(t *testing.T) {
	proc, _ := newProcessor(t)
	rec, err := proc.ScoreBank(context.Background(), Request{Bank: bankInput()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec.Score += 50

	if err := proc.VerifyResult(rec); !errors.Is(err, crypto.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestScoreProcessor_LoanRequestAboveTiers(t *testing.T) {
	proc, _ := newProcessor(t)

	_, err := proc.ScoreBank(context.Background(), Request{LoanRequest: 1e6, Bank: bankInput()})

	if !errors.Is(err, config.ErrNoTier) {
		t.Fatalf("expected ErrNoTier, got %v", err)
	}
}

func TestScoreProcessor_ScoreExchange_Success(t *testing.T) {
	proc, _ := newProcessor(t)

	rec, err := proc.ScoreExchange(context.Background(), Request{Exchange: exchangeInput()})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.ScoreExist || rec.Branch != "exchange" {
		t.Fatalf("expected an exchange score, got exist=%v branch=%s", rec.ScoreExist, rec.Branch)
	}
	if rec.Score < 300 || rec.Score >= 900 {
		t.Errorf("score out of range: %f", rec.Score)
	}
}

func TestScoreProcessor_ScoreExchange_NoWallet(t *testing.T) {
	proc, _ := newProcessor(t)

	rec, err := proc.ScoreExchange(context.Background(), Request{Exchange: &domain.ExchangeInput{AsOf: asOf}})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ScoreExist || rec.Risk != nil {
		t.Fatalf("expected no score without wallets, got %+v", rec)
	}
	if !strings.Contains(rec.Message, "no active wallet") {
		t.Errorf("expected the no-wallet message, got %s", rec.Message)
	}
}

func TestScoreProcessor_ScoreExchange_InvalidInput(t *testing.T) {
	proc, _ := newProcessor(t)
	in := exchangeInput()
	in.Accounts = append(in.Accounts, in.Accounts[0])

	_, err := proc.ScoreExchange(context.Background(), Request{Exchange: in})

	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestScoreProcessor_Score_MissingInput(t *testing.T) {
	proc, _ := newProcessor(t)

	_, err := proc.Score(context.Background(), Request{RequestID: "empty"})

	if !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

func TestScoreProcessor_ScoreBatch_KeepsOrder(t *testing.T) {
	ctx := context.Background()
	proc, repo := newProcessor(t)
	reqs := []Request{
		{RequestID: "b1", Bank: bankInput()},
		{RequestID: "e1", Exchange: exchangeInput()},
		{RequestID: "x1"},
		{RequestID: "b2", Bank: bankInput()},
	}

	results := proc.ScoreBatch(ctx, reqs)

	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	for i, want := range []string{"b1", "e1", "", "b2"} {
		if want == "" {
			if !errors.Is(results[i].Err, ErrMissingInput) {
				t.Errorf("result %d: expected ErrMissingInput, got %v", i, results[i].Err)
			}
			continue
		}
		if results[i].Err != nil || results[i].Record.RequestID != want {
			t.Errorf("result %d: expected record %s, got %+v", i, want, results[i])
		}
	}
	if n, _ := repo.Count(ctx); n != 3 {
		t.Errorf("expected 3 stored records, got %d", n)
	}
}

func TestScoreProcessor_CancelledContext(t *testing.T) {
	proc, _ := newProcessor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := proc.ScoreBank(ctx, Request{Bank: bankInput()})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
