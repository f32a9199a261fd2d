package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"credit_oracle/internal/config"
	"credit_oracle/internal/domain"
	"credit_oracle/internal/report"
	"credit_oracle/internal/repository"
	"credit_oracle/internal/risk"
	"credit_oracle/internal/scoring"
	"credit_oracle/pkg/crypto"
	"credit_oracle/pkg/metrics"
	"credit_oracle/pkg/validator"
)

var (
	ErrMissingInput = errors.New("request carries no input for the source")
	ErrInvalidInput = errors.New("invalid input")
)

// Request is one scoring job. Exactly one of Bank or Exchange is set.
type Request struct {
	RequestID   string                `json:"request_id,omitempty"`
	LoanRequest float64               `json:"loan_request,omitempty"`
	Bank        *domain.BankInput     `json:"bank,omitempty"`
	Exchange    *domain.ExchangeInput `json:"exchange,omitempty"`
}

type BatchResult struct {
	Record *domain.ScoreRecord
	Err    error
}

// ScoreProcessor runs validation, scoring, risk mapping and reporting for
// one request at a time and keeps the signed record.
type ScoreProcessor struct {
	params     *config.Compiled
	mapper     *risk.Mapper
	validator  *validator.InputValidator
	results    repository.ResultRepository
	signer     *crypto.Signer
	metrics    *metrics.MetricsCollector
	token      report.Token
	workerPool chan struct{}
	now        func() time.Time
	logger     *slog.Logger
}

func NewScoreProcessor(
	params *config.Compiled,
	mapper *risk.Mapper,
	results repository.ResultRepository,
	signer *crypto.Signer,
	metrics *metrics.MetricsCollector,
	maxWorkers int,
	logger *slog.Logger,
) *ScoreProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	return &ScoreProcessor{
		params:     params,
		mapper:     mapper,
		validator:  validator.NewInputValidator(),
		results:    results,
		signer:     signer,
		metrics:    metrics,
		workerPool: make(chan struct{}, maxWorkers),
		now:        time.Now,
		logger:     logger,
	}
}

// WithToken enables the token quote in user messages.
func (p *ScoreProcessor) WithToken(tok report.Token) *ScoreProcessor {
	p.token = tok
	return p
}

func (p *ScoreProcessor) Score(ctx context.Context, req Request) (*domain.ScoreRecord, error) {
	switch {
	case req.Bank != nil:
		return p.ScoreBank(ctx, req)
	case req.Exchange != nil:
		return p.ScoreExchange(ctx, req)
	default:
		return nil, ErrMissingInput
	}
}

// ScoreBank scores a bank snapshot. Input that fails validation is not
// scored: the failure is recorded under the fetch category and the record
// carries the no-score message.
func (p *ScoreProcessor) ScoreBank(ctx context.Context, req Request) (*domain.ScoreRecord, error) {
	if req.Bank == nil {
		return nil, fmt.Errorf("%w: bank", ErrMissingInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params, err := p.params.Bank(req.LoanRequest)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	fb := domain.NewBankFeedback()
	rec := p.newRecord(req, domain.SourceBank, fb)

	in, err := p.validator.NormalizeBank(*req.Bank)
	if err != nil {
		p.logger.WarnContext(ctx, "Bank input rejected",
			slog.String("request_id", rec.RequestID),
			slog.String("error", err.Error()))
		fb.Scope(domain.CategoryFetch).Fail(err)
		p.recordRejected(domain.SourceBank, "validation")
	} else {
		outcome := scoring.ScoreBank(in, params, fb)
		p.applyOutcome(rec, outcome, report.HasBankScore(fb), time.Since(start))
	}

	rec.Interpretation = report.InterpretBank(rec.Score, fb, p.mapper)
	rec.Message = report.BankMessage(rec.Score, fb, p.mapper, p.token)

	if err := p.finish(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ScoreExchange scores exchange wallets. Unlike bank input, malformed
// exchange input is returned as an error.
func (p *ScoreProcessor) ScoreExchange(ctx context.Context, req Request) (*domain.ScoreRecord, error) {
	if req.Exchange == nil {
		return nil, fmt.Errorf("%w: exchange", ErrMissingInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params, err := p.params.Exchange(req.LoanRequest)
	if err != nil {
		return nil, err
	}

	in, err := p.validator.NormalizeExchange(*req.Exchange)
	if err != nil {
		p.recordRejected(domain.SourceExchange, "validation")
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	start := time.Now()
	fb := domain.NewExchangeFeedback()
	rec := p.newRecord(req, domain.SourceExchange, fb)

	outcome := scoring.ScoreExchange(in, params, fb)
	exists := report.HasExchangeScore(fb)
	p.applyOutcome(rec, outcome, exists, time.Since(start))
	if !exists {
		p.recordRejected(domain.SourceExchange, "no_wallet")
	}

	rec.Interpretation = report.InterpretExchange(rec.Score, fb, p.mapper)
	rec.Message = report.ExchangeMessage(rec.Score, fb, p.mapper, p.token)

	if err := p.finish(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ScoreBatch scores requests concurrently, bounded by the worker pool.
// Results keep the order of reqs.
func (p *ScoreProcessor) ScoreBatch(ctx context.Context, reqs []Request) []BatchResult {
	results := make([]BatchResult, len(reqs))
	var wg sync.WaitGroup

	for i, req := range reqs {
		select {
		case p.workerPool <- struct{}{}:
		case <-ctx.Done():
			results[i].Err = ctx.Err()
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-p.workerPool }()
			rec, err := p.Score(ctx, req)
			results[i] = BatchResult{Record: rec, Err: err}
		}()
	}

	wg.Wait()
	return results
}

func (p *ScoreProcessor) GetResult(ctx context.Context, requestID string) (*domain.ScoreRecord, error) {
	return p.results.GetByID(ctx, requestID)
}

// VerifyResult checks the signature of a stored record.
func (p *ScoreProcessor) VerifyResult(rec *domain.ScoreRecord) error {
	if p.signer == nil {
		return crypto.ErrInvalidSignature
	}
	return p.signer.VerifyScore(rec.RequestID, string(rec.Source), rec.Score,
		rec.LoanAmount(), rec.RiskLevel(), rec.IssuedAt.Unix(), rec.Signature)
}

func (p *ScoreProcessor) newRecord(req Request, source domain.Source, fb *domain.Feedback) *domain.ScoreRecord {
	id := req.RequestID
	if id == "" {
		id = uuid.NewString()
	}
	return &domain.ScoreRecord{
		RequestID: id,
		Source:    source,
		Feedback:  fb,
	}
}

func (p *ScoreProcessor) applyOutcome(rec *domain.ScoreRecord, o scoring.Outcome, exists bool, elapsed time.Duration) {
	rec.Categories = o.Categories
	rec.Branch = string(o.Branch)
	rec.ScoreExist = exists
	if !exists {
		return
	}

	r := p.mapper.Map(o.Score)
	rec.Score = o.Score
	rec.Risk = &r
	rec.Quality = p.mapper.Quality(o.Score)

	if p.metrics == nil {
		return
	}
	p.metrics.RecordScore(string(o.Source), rec.Branch, o.Score, elapsed)
	p.metrics.RecordRisk(string(o.Source), string(r.Level))
	for _, c := range o.Feedback.FailedCategories() {
		p.metrics.RecordMetricFailure(string(o.Source), string(c))
	}
}

func (p *ScoreProcessor) finish(ctx context.Context, rec *domain.ScoreRecord) error {
	rec.IssuedAt = p.now().UTC().Truncate(time.Second)
	if p.signer != nil {
		rec.Signature = p.signer.SignScore(rec.RequestID, string(rec.Source), rec.Score,
			rec.LoanAmount(), rec.RiskLevel(), rec.IssuedAt.Unix())
	}

	if p.results != nil {
		if err := p.results.Save(ctx, rec); err != nil {
			return fmt.Errorf("failed to save score: %w", err)
		}
	}

	p.logger.InfoContext(ctx, "Score issued",
		slog.String("request_id", rec.RequestID),
		slog.String("source", string(rec.Source)),
		slog.Bool("score_exist", rec.ScoreExist),
		slog.Float64("score", rec.Score),
		slog.String("branch", rec.Branch),
		slog.String("risk_level", rec.RiskLevel()),
		slog.Int("failed_categories", len(rec.Feedback.FailedCategories())))
	return nil
}

func (p *ScoreProcessor) recordRejected(source domain.Source, reason string) {
	if p.metrics != nil {
		p.metrics.RecordRejected(string(source), reason)
	}
}
