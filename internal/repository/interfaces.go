package repository

import (
	"context"
	"errors"

	"credit_oracle/internal/domain"
)

// ResultRepository keeps issued score records so a lender can look one up by
// request id and check its signature.
type ResultRepository interface {
	Save(ctx context.Context, record *domain.ScoreRecord) error
	GetByID(ctx context.Context, requestID string) (*domain.ScoreRecord, error)
	List(ctx context.Context, source domain.Source, limit int) ([]*domain.ScoreRecord, error)
	Count(ctx context.Context) (int, error)
}

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
)
