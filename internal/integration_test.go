package internal_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"credit_oracle/internal/api"
	"credit_oracle/internal/config"
	"credit_oracle/internal/domain"
	"credit_oracle/internal/processor"
	"credit_oracle/internal/repository/memory"
	"credit_oracle/internal/risk"
	"credit_oracle/pkg/crypto"
	"credit_oracle/pkg/metrics"
)

var asOf = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

type testEnv struct {
	repo      *memory.ResultRepository
	processor *processor.ScoreProcessor
	mux       *http.ServeMux
	logger    *slog.Logger
}

type scoreResponse struct {
	RequestID  string       `json:"request_id"`
	Source     string       `json:"source"`
	ScoreExist bool         `json:"score_exist"`
	Score      float64      `json:"score"`
	Risk       *domain.Risk `json:"risk"`
	Message    string       `json:"message"`
	Signature  string       `json:"signature"`
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Default()
	compiled, err := config.Compile(cfg)
	if err != nil {
		t.Fatalf("compile config failed: %v", err)
	}
	mapper, err := risk.FromConfig(cfg.Scoring)
	if err != nil {
		t.Fatalf("risk mapper failed: %v", err)
	}

	repo := memory.NewResultRepository(0)
	metricsCollector := metrics.NewMetricsCollector(nil)
	signer := crypto.NewSigner("test-secret", nil)
	logger := slog.Default()

	proc := processor.NewScoreProcessor(compiled, mapper, repo, signer, metricsCollector, 4, logger)
	handler := api.NewAPIHandler(proc, metricsCollector, logger)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	return &testEnv{
		repo:      repo,
		processor: proc,
		mux:       mux,
		logger:    logger,
	}
}

func bankInput() domain.BankInput {
	in := domain.BankInput{
		InstitutionName: "Test Credit Union",
		AsOf:            asOf,
		Accounts: []domain.Account{
			{ID: "chk", Type: domain.AccountDepository, Subtype: "checking", Currency: "USD",
				Balances: domain.Balances{Current: 2800, Available: 2700}},
			{ID: "cc", Type: domain.AccountCredit, Subtype: "credit card", OfficialName: "Everyday Card",
				Currency: "USD", Balances: domain.Balances{Current: 650, Available: 2350, Limit: 3000}},
		},
	}
	for i := 0; i < 9; i++ {
		m := asOf.AddDate(0, i-9, 0)
		at := func(d int) time.Time { return time.Date(m.Year(), m.Month(), d, 0, 0, 0, 0, time.UTC) }
		in.Transactions = append(in.Transactions,
			domain.Transaction{ID: fmt.Sprintf("p%d", i), AccountID: "chk", Date: at(1), Amount: -1900, Category: []string{"Transfer", "Payroll"}},
			domain.Transaction{ID: fmt.Sprintf("r%d", i), AccountID: "chk", Date: at(5), Amount: 800, Category: []string{"Payment", "Rent"}},
			domain.Transaction{ID: fmt.Sprintf("c%d", i), AccountID: "cc", Date: at(11), Amount: 140, Category: []string{"Food and Drink", "Restaurants"}},
		)
	}
	return in
}

func post(t *testing.T, env *testEnv, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request failed: %v", err)
	}
	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.mux.ServeHTTP(w, r)
	return w
}

func get(env *testEnv, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	env.mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decodeScore(t *testing.T, w *httptest.ResponseRecorder) scoreResponse {
	t.Helper()
	var resp scoreResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response failed: %v", err)
	}
	return resp
}

func TestIntegration_BankScoreSuccess(t *testing.T) {
	env := setup(t)

	w := post(t, env, "/api/v1/scores/bank", api.BankScoreRequest{Input: bankInput()})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decodeScore(t, w)
	if resp.RequestID == "" || resp.Signature == "" {
		t.Fatalf("expected request id and signature, got %+v", resp)
	}
	if !resp.ScoreExist || resp.Score < 300 || resp.Score >= 900 {
		t.Fatalf("expected a score in [300, 900), got %+v", resp)
	}
	if resp.Risk == nil || resp.Risk.LoanAmount <= 0 {
		t.Fatalf("expected a loan amount, got %+v", resp.Risk)
	}

	stored, err := env.repo.GetByID(context.Background(), resp.RequestID)
	if err != nil {
		t.Fatalf("score not stored: %v", err)
	}
	if stored.Score != resp.Score {
		t.Fatalf("expected stored score %v, got %v", resp.Score, stored.Score)
	}
}

func TestIntegration_GetScoreByID(t *testing.T) {
	env := setup(t)
	created := decodeScore(t, post(t, env, "/api/v1/scores/bank", api.BankScoreRequest{
		RequestID: "loan-42",
		Input:     bankInput(),
	}))

	w := get(env, "/api/v1/scores/loan-42")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	got := decodeScore(t, w)
	if got.RequestID != "loan-42" || got.Score != created.Score || got.Signature != created.Signature {
		t.Fatalf("expected %+v, got %+v", created, got)
	}
}

func TestIntegration_VerifyScore(t *testing.T) {
	env := setup(t)
	post(t, env, "/api/v1/scores/bank", api.BankScoreRequest{RequestID: "loan-7", Input: bankInput()})

	w := get(env, "/api/v1/scores/loan-7/verify")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp api.VerifyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !resp.Valid {
		t.Fatalf("expected a valid attestation")
	}
}

func TestIntegration_GetScoreMissing(t *testing.T) {
	env := setup(t)

	w := get(env, "/api/v1/scores/nope")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", resp.Code)
	}
}

func TestIntegration_BankNoAccounts(t *testing.T) {
	env := setup(t)

	w := post(t, env, "/api/v1/scores/bank", api.BankScoreRequest{Input: domain.BankInput{AsOf: asOf}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	resp := decodeScore(t, w)
	if resp.ScoreExist || resp.Risk != nil {
		t.Fatalf("expected no score, got %+v", resp)
	}
}

func TestIntegration_ExchangeInvalidInput(t *testing.T) {
	env := setup(t)
	in := domain.ExchangeInput{
		AsOf: asOf,
		Accounts: []domain.Account{
			{ID: "w1", Type: domain.AccountWallet, Currency: "BTC", Balances: domain.Balances{Current: 10}},
			{ID: "w1", Type: domain.AccountWallet, Currency: "ETH", Balances: domain.Balances{Current: 20}},
		},
	}

	w := post(t, env, "/api/v1/scores/exchange", api.ExchangeScoreRequest{Input: in})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %s", resp.Code)
	}
}

func TestIntegration_LoanRequestAboveTiers(t *testing.T) {
	env := setup(t)

	w := post(t, env, "/api/v1/scores/bank", api.BankScoreRequest{LoanRequest: 250000, Input: bankInput()})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestIntegration_InvalidRequestBody(t *testing.T) {
	env := setup(t)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/scores/exchange", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()

	env.mux.ServeHTTP(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != "INVALID_REQUEST" {
		t.Fatalf("expected INVALID_REQUEST, got %s", resp.Code)
	}
}

func TestIntegration_ConcurrentScores(t *testing.T) {
	env := setup(t)
	const n = 20

	bodies := make([][]byte, n)
	for i := range bodies {
		b, err := json.Marshal(api.BankScoreRequest{RequestID: fmt.Sprintf("req-%d", i), Input: bankInput()})
		if err != nil {
			t.Fatalf("marshal request failed: %v", err)
		}
		bodies[i] = b
	}

	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			env.mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/scores/bank", bytes.NewReader(bodies[i])))
			codes[i] = w.Code
		}()
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusOK {
			t.Errorf("request %d: expected 200, got %d", i, code)
		}
	}
	if count, _ := env.repo.Count(context.Background()); count != n {
		t.Fatalf("expected %d stored scores, got %d", n, count)
	}
}

func TestIntegration_HealthCheck(t *testing.T) {
	env := setup(t)

	w := get(env, "/api/health")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
