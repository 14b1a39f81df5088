// Package investment owns the investment lifecycle: a state machine from
// creation through maturity to payout or cancellation.
//
// Invariants:
//   - ProfitAmount always equals ExpectedReturn minus InvestedAmount.
//   - MaturityDate is never before InvestedAt.
//   - Status only moves forward through the lifecycle, or sideways into
//     cancelled; paid_out and cancelled are terminal.
//   - "Matured" is derivative: a stored active investment whose maturity
//     date has passed is logically matured before any write happens.
//     EffectiveStatus re-derives it on every read; nothing caches it.
package investment

import (
	"errors"
	"time"

	"github.com/elmoushy/makanezm-backend/pkg/domain/resale"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status enumerates the lifecycle states of an investment.
type Status string

const (
	// StatusPending means the backing order is not yet confirmed.
	StatusPending Status = "pending"
	// StatusActive means the order is confirmed and the investment is
	// accruing toward its maturity date.
	StatusActive Status = "active"
	// StatusMatured means the maturity date has passed and the investment
	// awaits payout.
	StatusMatured Status = "matured"
	// StatusPaidOut is terminal: the admin has disbursed the return.
	StatusPaidOut Status = "paid_out"
	// StatusCancelled is terminal: the backing order was refunded or voided.
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusMatured, StatusPaidOut, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// Investment is the aggregate root for a single resale investment. It is
// created once at order-confirmation time by snapshotting the resale plan's
// terms, and afterwards mutated only by Activate, MarkPaidOut and Cancel.
type Investment struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	OrderID     uuid.UUID
	OrderItemID uuid.UUID
	ProductID   uuid.UUID

	InvestedAmount decimal.Decimal
	ExpectedReturn decimal.Decimal
	ProfitAmount   decimal.Decimal

	Plan resale.PlanSnapshot

	InvestedAt   time.Time
	MaturityDate time.Time
	PaidOutAt    *time.Time
	PaidBy       *uuid.UUID
	CancelledAt  *time.Time
	CancelReason string
	Notes        string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Builder provides a fluent API for constructing Investment instances,
// enforcing the creation invariants before an Investment exists.
type Builder struct {
	id          uuid.UUID
	userID      uuid.UUID
	orderID     uuid.UUID
	orderItemID uuid.UUID
	productID   uuid.UUID
	invested    decimal.Decimal
	expected    decimal.Decimal
	plan        resale.PlanSnapshot
	investedAt  time.Time
	status      Status
	notes       string
}

// New creates a Builder with a fresh id, a pending status and the current
// time as the investment date.
func New() *Builder {
	return &Builder{
		id:         uuid.New(),
		investedAt: time.Now(),
		status:     StatusPending,
	}
}

// WithID sets the id, for hydrating an existing record.
func (b *Builder) WithID(id uuid.UUID) *Builder {
	b.id = id
	return b
}

// WithUserID sets the owning user. Mandatory.
func (b *Builder) WithUserID(id uuid.UUID) *Builder {
	b.userID = id
	return b
}

// WithOrder sets the backing order and line item. The order id is mandatory.
func (b *Builder) WithOrder(orderID, orderItemID uuid.UUID) *Builder {
	b.orderID = orderID
	b.orderItemID = orderItemID
	return b
}

// WithProductID sets the purchased product reference.
func (b *Builder) WithProductID(id uuid.UUID) *Builder {
	b.productID = id
	return b
}

// WithAmounts sets the principal and the expected return. ProfitAmount is
// derived at Build time, never supplied.
func (b *Builder) WithAmounts(invested, expected decimal.Decimal) *Builder {
	b.invested = invested
	b.expected = expected
	return b
}

// WithPlan snapshots the resale plan terms into the investment.
func (b *Builder) WithPlan(plan resale.PlanSnapshot) *Builder {
	b.plan = plan
	return b
}

// WithInvestedAt sets the investment date. The maturity date is derived
// from it at Build time.
func (b *Builder) WithInvestedAt(t time.Time) *Builder {
	b.investedAt = t
	return b
}

// WithStatus sets the stored status, for hydrating an existing record.
func (b *Builder) WithStatus(s Status) *Builder {
	b.status = s
	return b
}

// WithNotes attaches free-text notes.
func (b *Builder) WithNotes(notes string) *Builder {
	b.notes = notes
	return b
}

// Build validates the creation invariants and returns the Investment.
// ProfitAmount is computed as ExpectedReturn - InvestedAmount, and
// MaturityDate as InvestedAt plus the plan's months.
func (b *Builder) Build() (*Investment, error) {
	if b.userID == uuid.Nil {
		return nil, errors.New("userID is required")
	}
	if b.orderID == uuid.Nil {
		return nil, errors.New("orderID is required")
	}
	if b.invested.IsNegative() {
		return nil, errors.New("invested amount must not be negative")
	}
	if b.expected.LessThan(b.invested) {
		return nil, errors.New("expected return must not be less than invested amount")
	}
	if b.plan.Months < 0 {
		return nil, errors.New("plan months must not be negative")
	}
	if !b.status.Valid() {
		return nil, errors.New("unknown status " + string(b.status))
	}
	return &Investment{
		ID:             b.id,
		UserID:         b.userID,
		OrderID:        b.orderID,
		OrderItemID:    b.orderItemID,
		ProductID:      b.productID,
		InvestedAmount: b.invested,
		ExpectedReturn: b.expected,
		ProfitAmount:   b.expected.Sub(b.invested),
		Plan:           b.plan,
		InvestedAt:     b.investedAt,
		MaturityDate:   b.plan.MaturityDate(b.investedAt),
		Status:         b.status,
		Notes:          b.notes,
	}, nil
}

// dateOnly truncates t to midnight in its own location. Maturity is a
// date-level concept; the time of day never matters.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsDue reports whether the investment is stored active and its maturity
// date has passed as of asOf. Same-day maturity counts as due. Pure, no
// side effects.
func (inv *Investment) IsDue(asOf time.Time) bool {
	return inv.Status == StatusActive && !dateOnly(inv.MaturityDate).After(dateOnly(asOf))
}

// EffectiveStatus derives the logical status as of asOf: a due active
// investment reads as matured even though no write has happened. All
// transition validation goes through this, so displayed and enforced state
// never drift apart.
func (inv *Investment) EffectiveStatus(asOf time.Time) Status {
	if inv.IsDue(asOf) {
		return StatusMatured
	}
	return inv.Status
}

// Activate transitions a pending investment to active when its backing
// order is confirmed.
func (inv *Investment) Activate(at time.Time) error {
	if inv.Status != StatusPending {
		return &InvalidTransitionError{From: inv.EffectiveStatus(at), To: StatusActive}
	}
	inv.Status = StatusActive
	return nil
}

// MarkPaidOut transitions an effectively matured investment to paid_out,
// recording the disbursing admin and timestamp. The transition is
// irreversible; a repeated attempt fails with ErrAlreadyPaidOut and leaves
// the original audit fields untouched. On any failure the investment is
// not mutated.
func (inv *Investment) MarkPaidOut(adminID uuid.UUID, at time.Time) error {
	switch eff := inv.EffectiveStatus(at); eff {
	case StatusMatured:
		// eligible
	case StatusPaidOut:
		return ErrAlreadyPaidOut
	case StatusActive:
		return ErrNotYetMatured
	default:
		return &InvalidTransitionError{From: eff, To: StatusPaidOut}
	}
	inv.Status = StatusPaidOut
	inv.PaidOutAt = &at
	inv.PaidBy = &adminID
	return nil
}

// Cancel transitions a pending or active investment to cancelled, recording
// the reason and timestamp. An effectively matured or paid-out investment
// cannot be cancelled: funds are presumed committed or disbursed.
func (inv *Investment) Cancel(reason string, at time.Time) error {
	switch eff := inv.EffectiveStatus(at); eff {
	case StatusPending, StatusActive:
		// eligible
	default:
		return &InvalidTransitionError{From: eff, To: StatusCancelled}
	}
	inv.Status = StatusCancelled
	inv.CancelledAt = &at
	inv.CancelReason = reason
	return nil
}
