// Package repository defines the persistence contracts consumed by the
// investment lifecycle services. Implementations live under infra.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/elmoushy/makanezm-backend/pkg/domain/investment"
	"github.com/elmoushy/makanezm-backend/pkg/domain/resale"
	"github.com/google/uuid"
)

// ErrStatusConflict is returned by Transition when the status guard fails:
// the row exists but its stored status no longer matches the expected
// pre-state. The caller re-reads to find out what won.
var ErrStatusConflict = errors.New("investment status changed concurrently")

// ErrOrderNotFound is returned by OrderRepository when no order exists
// with the given id.
var ErrOrderNotFound = errors.New("order not found")

// TransitionUpdate carries the fields written by a guarded status
// transition. Nil pointer fields are left untouched.
type TransitionUpdate struct {
	Status       investment.Status
	PaidOutAt    *time.Time
	PaidBy       *uuid.UUID
	CancelledAt  *time.Time
	CancelReason *string
}

// InvestmentRepository defines data access for investment records.
type InvestmentRepository interface {
	Create(ctx context.Context, inv *investment.Investment) error

	// Get retrieves an investment by id, or investment.ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*investment.Investment, error)

	// ListPendingPayout returns the effective matured set as of asOf:
	// stored matured plus due active, never pending, cancelled or paid
	// out. Ordered by maturity date ascending, then id, so repeated
	// admin-panel loads are stable.
	ListPendingPayout(ctx context.Context, asOf time.Time) ([]*investment.Investment, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]*investment.Investment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*investment.Investment, error)

	// Transition atomically applies update to the investment iff its
	// stored status still equals expected. Returns investment.ErrNotFound
	// when no such row exists and ErrStatusConflict when the guard fails.
	Transition(ctx context.Context, id uuid.UUID, expected investment.Status, update TransitionUpdate) error
}

// OrderResaleView is a read-only projection of an order for resale
// aggregation: when it was placed and its resale-flagged line items. The
// lifecycle core never mutates orders.
type OrderResaleView struct {
	OrderID  uuid.UUID
	PlacedAt time.Time
	Items    []resale.ItemView

	// Stored is the explicit order-level resale summary when one was
	// written at checkout time; nil means the summary must be derived
	// from Items.
	Stored *resale.Summary
}

// OrderRepository exposes the order data the lifecycle needs.
type OrderRepository interface {
	// ResaleView returns the resale projection of an order, or
	// ErrOrderNotFound when the order does not exist. Items is empty
	// for orders without resale line items.
	ResaleView(ctx context.Context, orderID uuid.UUID) (*OrderResaleView, error)
}

// UnitOfWork defines the contract for transactional work and repository
// access. Do runs the given function inside a transaction boundary; the
// repositories obtained from the UnitOfWork passed to fn are bound to that
// transaction, so a failed transition rolls back atomically.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	InvestmentRepository() (InvestmentRepository, error)
	OrderRepository() (OrderRepository, error)
}
