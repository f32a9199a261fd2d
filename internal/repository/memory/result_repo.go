package memory

import (
	"context"
	"fmt"
	"sync"

	"credit_oracle/internal/domain"
	"credit_oracle/internal/repository"
)

var _ repository.ResultRepository = (*ResultRepository)(nil)

const DefaultCapacity = 10000

// ResultRepository holds the most recent records in memory. Once capacity is
// reached the oldest record is evicted.
type ResultRepository struct {
	mu       sync.RWMutex
	records  map[string]*domain.ScoreRecord
	order    []string
	capacity int
}

func NewResultRepository(capacity int) *ResultRepository {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ResultRepository{
		records:  make(map[string]*domain.ScoreRecord),
		capacity: capacity,
	}
}

func (r *ResultRepository) Save(ctx context.Context, record *domain.ScoreRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[record.RequestID]; exists {
		return fmt.Errorf("%w: score %s", repository.ErrDuplicate, record.RequestID)
	}

	if len(r.order) >= r.capacity {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.records, oldest)
	}

	r.records[record.RequestID] = record
	r.order = append(r.order, record.RequestID)
	return nil
}

func (r *ResultRepository) GetByID(ctx context.Context, requestID string) (*domain.ScoreRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[requestID]
	if !exists {
		return nil, fmt.Errorf("%w: score %s", repository.ErrNotFound, requestID)
	}
	return record, nil
}

// List returns up to limit records, newest first. An empty source matches
// every record.
func (r *ResultRepository) List(ctx context.Context, source domain.Source, limit int) ([]*domain.ScoreRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.ScoreRecord
	for i := len(r.order) - 1; i >= 0; i-- {
		if limit > 0 && len(result) >= limit {
			break
		}
		record := r.records[r.order[i]]
		if source == "" || record.Source == source {
			result = append(result, record)
		}
	}
	return result, nil
}

func (r *ResultRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}
