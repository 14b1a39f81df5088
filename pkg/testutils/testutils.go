// Package testutils provides in-memory fakes of the persistence contracts
// for service and handler tests. FakeInvestmentRepo applies the same
// compare-and-set discipline as the SQL implementation, under a mutex, so
// concurrency properties can be exercised without a database.
package testutils

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/elmoushy/makanezm-backend/pkg/domain/investment"
	"github.com/elmoushy/makanezm-backend/pkg/repository"
	"github.com/google/uuid"
)

// FakeInvestmentRepo is an in-memory InvestmentRepository.
type FakeInvestmentRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*investment.Investment
}

// NewFakeInvestmentRepo creates an empty FakeInvestmentRepo.
func NewFakeInvestmentRepo() *FakeInvestmentRepo {
	return &FakeInvestmentRepo{byID: make(map[uuid.UUID]*investment.Investment)}
}

// Create stores a copy of inv.
func (r *FakeInvestmentRepo) Create(_ context.Context, inv *investment.Investment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *inv
	r.byID[inv.ID] = &cp
	return nil
}

// Get returns a copy of the stored investment, mirroring a row read.
func (r *FakeInvestmentRepo) Get(_ context.Context, id uuid.UUID) (*investment.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.byID[id]
	if !ok {
		return nil, investment.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

// ListPendingPayout filters stored matured plus due active, ordered by
// maturity date then id.
func (r *FakeInvestmentRepo) ListPendingPayout(_ context.Context, asOf time.Time) ([]*investment.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*investment.Investment
	for _, inv := range r.byID {
		if inv.Status == investment.StatusMatured || inv.IsDue(asOf) {
			cp := *inv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MaturityDate.Equal(out[j].MaturityDate) {
			return out[i].MaturityDate.Before(out[j].MaturityDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// ListByUser returns copies of the user's investments.
func (r *FakeInvestmentRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*investment.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*investment.Investment
	for _, inv := range r.byID {
		if inv.UserID == userID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ListByOrder returns copies of the order's investments.
func (r *FakeInvestmentRepo) ListByOrder(_ context.Context, orderID uuid.UUID) ([]*investment.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*investment.Investment
	for _, inv := range r.byID {
		if inv.OrderID == orderID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Transition applies the update iff the stored status still matches the
// expected pre-state.
func (r *FakeInvestmentRepo) Transition(_ context.Context, id uuid.UUID, expected investment.Status, update repository.TransitionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.byID[id]
	if !ok {
		return investment.ErrNotFound
	}
	if inv.Status != expected {
		return repository.ErrStatusConflict
	}
	inv.Status = update.Status
	if update.PaidOutAt != nil {
		inv.PaidOutAt = update.PaidOutAt
	}
	if update.PaidBy != nil {
		inv.PaidBy = update.PaidBy
	}
	if update.CancelledAt != nil {
		inv.CancelledAt = update.CancelledAt
	}
	if update.CancelReason != nil {
		inv.CancelReason = *update.CancelReason
	}
	return nil
}

// Patch mutates the stored record directly, for test setup only.
func (r *FakeInvestmentRepo) Patch(id uuid.UUID, fn func(inv *investment.Investment)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.byID[id]; ok {
		fn(inv)
	}
}

// FakeOrderRepo is an in-memory OrderRepository.
type FakeOrderRepo struct {
	Views map[uuid.UUID]*repository.OrderResaleView
}

// ResaleView returns the configured view or repository.ErrOrderNotFound.
func (r *FakeOrderRepo) ResaleView(_ context.Context, orderID uuid.UUID) (*repository.OrderResaleView, error) {
	view, ok := r.Views[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return view, nil
}

// FakeUoW is a pass-through UnitOfWork over the fakes.
type FakeUoW struct {
	Investments *FakeInvestmentRepo
	Orders      *FakeOrderRepo
}

// Do invokes fn directly; the fakes are individually atomic.
func (u *FakeUoW) Do(_ context.Context, fn func(uow repository.UnitOfWork) error) error {
	return fn(u)
}

// InvestmentRepository returns the fake investment repository.
func (u *FakeUoW) InvestmentRepository() (repository.InvestmentRepository, error) {
	return u.Investments, nil
}

// OrderRepository returns the fake order repository.
func (u *FakeUoW) OrderRepository() (repository.OrderRepository, error) {
	return u.Orders, nil
}
