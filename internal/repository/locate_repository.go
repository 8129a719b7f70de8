package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"locate-service/internal/domain"
)

// LocateRepository defines the interface for locate request persistence.
//
// Save is optimistic: it fails with domain.ErrConcurrentModification when the
// stored request has a different Version than the one passed in. A successful
// Save increments req.Version.
type LocateRepository interface {
	FindByRequestID(ctx context.Context, requestID string) (*domain.LocateRequest, error)
	FindPendingLocates(ctx context.Context) ([]*domain.LocateRequest, error)
	FindActiveLocates(ctx context.Context, asOf time.Time) ([]*domain.LocateRequest, error)
	FindExpiredLocates(ctx context.Context, asOf time.Time) ([]*domain.LocateRequest, error)
	FindByBusinessDateAndCalculationStatus(ctx context.Context, businessDate time.Time, calculationStatus string) ([]*domain.LocateRequest, error)
	Save(ctx context.Context, req *domain.LocateRequest) error
	SaveAll(ctx context.Context, reqs []*domain.LocateRequest) error
}

// InMemoryLocateRepository keeps requests in a map. Used in tests and as the
// fallback when no database is configured.
type InMemoryLocateRepository struct {
	mu       sync.RWMutex
	requests map[string]*domain.LocateRequest
}

func NewInMemoryLocateRepository() *InMemoryLocateRepository {
	return &InMemoryLocateRepository{
		requests: make(map[string]*domain.LocateRequest),
	}
}

func (r *InMemoryLocateRepository) FindByRequestID(ctx context.Context, requestID string) (*domain.LocateRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, exists := r.requests[requestID]
	if !exists {
		return nil, &domain.NotFoundError{RequestID: requestID}
	}
	return req.Clone(), nil
}

func (r *InMemoryLocateRepository) FindPendingLocates(ctx context.Context) ([]*domain.LocateRequest, error) {
	return r.filter(func(req *domain.LocateRequest) bool {
		return req.Status == domain.StatusPending
	}), nil
}

func (r *InMemoryLocateRepository) FindActiveLocates(ctx context.Context, asOf time.Time) ([]*domain.LocateRequest, error) {
	return r.filter(func(req *domain.LocateRequest) bool {
		return req.Status == domain.StatusApproved && req.Approval != nil && !req.Approval.ExpiryDate.Before(asOf)
	}), nil
}

func (r *InMemoryLocateRepository) FindExpiredLocates(ctx context.Context, asOf time.Time) ([]*domain.LocateRequest, error) {
	return r.filter(func(req *domain.LocateRequest) bool {
		return req.IsExpiredAt(asOf)
	}), nil
}

func (r *InMemoryLocateRepository) FindByBusinessDateAndCalculationStatus(ctx context.Context, businessDate time.Time, calculationStatus string) ([]*domain.LocateRequest, error) {
	y, m, d := businessDate.Date()
	return r.filter(func(req *domain.LocateRequest) bool {
		ry, rm, rd := req.BusinessDate.Date()
		return ry == y && rm == m && rd == d && req.CalculationStatus == calculationStatus
	}), nil
}

func (r *InMemoryLocateRepository) Save(ctx context.Context, req *domain.LocateRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkVersion(req); err != nil {
		return err
	}
	req.Version++
	r.requests[req.RequestID] = req.Clone()
	return nil
}

// SaveAll stores every request or none of them.
func (r *InMemoryLocateRepository) SaveAll(ctx context.Context, reqs []*domain.LocateRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, req := range reqs {
		if err := r.checkVersion(req); err != nil {
			return err
		}
	}
	for _, req := range reqs {
		req.Version++
		r.requests[req.RequestID] = req.Clone()
	}
	return nil
}

func (r *InMemoryLocateRepository) checkVersion(req *domain.LocateRequest) error {
	stored, exists := r.requests[req.RequestID]
	if !exists {
		if req.Version != 0 {
			return domain.ErrConcurrentModification
		}
		return nil
	}
	if stored.Version != req.Version {
		return domain.ErrConcurrentModification
	}
	return nil
}

func (r *InMemoryLocateRepository) filter(keep func(*domain.LocateRequest) bool) []*domain.LocateRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.LocateRequest, 0)
	for _, req := range r.requests {
		if keep(req) {
			result = append(result, req.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RequestTimestamp.Before(result[j].RequestTimestamp)
	})
	return result
}
