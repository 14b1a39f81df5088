// Package investment provides the application service for the investment
// lifecycle: creating investments from confirmed orders, deriving the
// pending-payout set, executing payouts and cancellations, and aggregating
// order-level resale summaries.
//
// Every transition runs inside one unit-of-work: load, pure domain
// validation, then a guarded compare-and-set update. Two concurrent payout
// attempts on the same investment therefore serialize to exactly one
// success; the loser observes ErrAlreadyPaidOut.
package investment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/elmoushy/makanezm-backend/pkg/domain/investment"
	"github.com/elmoushy/makanezm-backend/pkg/domain/resale"
	"github.com/elmoushy/makanezm-backend/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service provides business logic for investment lifecycle operations.
type Service struct {
	uow    repository.UnitOfWork
	clock  func() time.Time
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the current-time provider. Tests use it to pin the
// maturity boundary.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// NewService creates a Service with the provided dependencies. The clock
// defaults to time.Now.
func NewService(uow repository.UnitOfWork, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		uow:    uow,
		clock:  time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParams carries the inputs for creating an investment from a resale
// order line item.
type CreateParams struct {
	UserID      uuid.UUID
	OrderID     uuid.UUID
	OrderItemID uuid.UUID
	ProductID   uuid.UUID
	Amount      decimal.Decimal
	Plan        resale.PlanSnapshot
	Notes       string
}

// CreateFromOrderItem creates a pending investment by snapshotting the
// resale plan's terms at this moment. Later edits to the plan template do
// not touch the created record.
func (s *Service) CreateFromOrderItem(ctx context.Context, params CreateParams) (*investment.Investment, error) {
	logger := s.logger.With("userID", params.UserID, "orderID", params.OrderID)

	inv, err := investment.New().
		WithUserID(params.UserID).
		WithOrder(params.OrderID, params.OrderItemID).
		WithProductID(params.ProductID).
		WithAmounts(params.Amount, params.Plan.ExpectedReturn(params.Amount)).
		WithPlan(params.Plan).
		WithInvestedAt(s.clock()).
		WithNotes(params.Notes).
		Build()
	if err != nil {
		logger.Error("invalid investment parameters", "error", err)
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.InvestmentRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, inv)
	})
	if err != nil {
		logger.Error("failed to create investment", "error", err)
		return nil, err
	}
	logger.Info("investment created", "investmentID", inv.ID, "maturityDate", inv.MaturityDate)
	return inv, nil
}

// ActivateForOrder transitions an order's pending investments to active
// when the order is confirmed.
func (s *Service) ActivateForOrder(ctx context.Context, orderID uuid.UUID) error {
	logger := s.logger.With("orderID", orderID)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.InvestmentRepository()
		if err != nil {
			return err
		}
		invs, err := repo.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		for _, inv := range invs {
			if inv.Status != investment.StatusPending {
				continue
			}
			update := repository.TransitionUpdate{Status: investment.StatusActive}
			if err := repo.Transition(ctx, inv.ID, investment.StatusPending, update); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to activate investments for order", "error", err)
		return err
	}
	logger.Info("order investments activated")
	return nil
}

// CancelForOrder cancels an order's pending and active investments, e.g.
// when the order is refunded or voided. Investments already effectively
// matured or paid out are left untouched and reported as an error.
func (s *Service) CancelForOrder(ctx context.Context, orderID uuid.UUID, reason string) error {
	logger := s.logger.With("orderID", orderID)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.InvestmentRepository()
		if err != nil {
			return err
		}
		invs, err := repo.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		now := s.clock()
		for _, inv := range invs {
			if inv.Status == investment.StatusCancelled {
				continue
			}
			stored := inv.Status
			if err := inv.Cancel(reason, now); err != nil {
				return err
			}
			update := repository.TransitionUpdate{
				Status:       investment.StatusCancelled,
				CancelledAt:  inv.CancelledAt,
				CancelReason: &reason,
			}
			if err := repo.Transition(ctx, inv.ID, stored, update); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to cancel investments for order", "error", err)
		return err
	}
	logger.Info("order investments cancelled", "reason", reason)
	return nil
}

// PendingPayout returns the investments awaiting payout as of now: stored
// matured plus due active, ordered by maturity date then id. Maturation is
// observed, not persisted; no write happens here.
func (s *Service) PendingPayout(ctx context.Context) (invs []*investment.Investment, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.InvestmentRepository()
		if err != nil {
			return err
		}
		invs, err = repo.ListPendingPayout(ctx, s.clock())
		return err
	})
	if err != nil {
		s.logger.Error("failed to list pending payouts", "error", err)
		return nil, err
	}
	return invs, nil
}

// ListByUser returns a user's investments.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) (invs []*investment.Investment, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.InvestmentRepository()
		if err != nil {
			return err
		}
		invs, err = repo.ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		s.logger.Error("failed to list investments", "userID", userID, "error", err)
		return nil, err
	}
	return invs, nil
}

// MarkPaidOut executes the payout of an effectively matured investment,
// recording the disbursing admin and timestamp. The stored status read at
// the start guards the update, so of two concurrent attempts exactly one
// succeeds and the other gets investment.ErrAlreadyPaidOut.
func (s *Service) MarkPaidOut(ctx context.Context, id, adminID uuid.UUID) (*investment.Investment, error) {
	logger := s.logger.With("investmentID", id, "adminID", adminID)

	var inv *investment.Investment
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.InvestmentRepository()
		if err != nil {
			return err
		}
		inv, err = repo.Get(ctx, id)
		if err != nil {
			return err
		}
		stored := inv.Status
		now := s.clock()
		if err := inv.MarkPaidOut(adminID, now); err != nil {
			return err
		}
		update := repository.TransitionUpdate{
			Status:    investment.StatusPaidOut,
			PaidOutAt: inv.PaidOutAt,
			PaidBy:    inv.PaidBy,
		}
		err = repo.Transition(ctx, id, stored, update)
		if errors.Is(err, repository.ErrStatusConflict) {
			return s.classifyConflict(ctx, repo, id, investment.StatusPaidOut, now)
		}
		return err
	})
	if err != nil {
		logger.Error("payout rejected", "error", err)
		return nil, err
	}
	logger.Info("investment paid out", "paidOutAt", inv.PaidOutAt)
	return inv, nil
}

// Cancel cancels a single pending or active investment, recording the
// reason. Effectively matured and paid-out investments are rejected with
// no mutation.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*investment.Investment, error) {
	logger := s.logger.With("investmentID", id)

	var inv *investment.Investment
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.InvestmentRepository()
		if err != nil {
			return err
		}
		inv, err = repo.Get(ctx, id)
		if err != nil {
			return err
		}
		stored := inv.Status
		now := s.clock()
		if err := inv.Cancel(reason, now); err != nil {
			return err
		}
		update := repository.TransitionUpdate{
			Status:       investment.StatusCancelled,
			CancelledAt:  inv.CancelledAt,
			CancelReason: &reason,
		}
		err = repo.Transition(ctx, id, stored, update)
		if errors.Is(err, repository.ErrStatusConflict) {
			return s.classifyConflict(ctx, repo, id, investment.StatusCancelled, now)
		}
		return err
	})
	if err != nil {
		logger.Error("cancellation rejected", "error", err)
		return nil, err
	}
	logger.Info("investment cancelled", "reason", reason)
	return inv, nil
}

// classifyConflict re-reads an investment after a failed status guard and
// maps the outcome to the lifecycle error the caller should see.
func (s *Service) classifyConflict(
	ctx context.Context,
	repo repository.InvestmentRepository,
	id uuid.UUID,
	target investment.Status,
	asOf time.Time,
) error {
	current, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == investment.StatusPaidOut {
		return investment.ErrAlreadyPaidOut
	}
	return &investment.InvalidTransitionError{From: current.EffectiveStatus(asOf), To: target}
}

// OrderResaleSummary returns the order-level resale aggregate: the stored
// override when one exists, otherwise the sum/max/mean derivation over the
// order's resale line items. Returns nil for orders without resale items.
func (s *Service) OrderResaleSummary(ctx context.Context, orderID uuid.UUID) (summary *resale.Summary, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		orders, err := uow.OrderRepository()
		if err != nil {
			return err
		}
		view, err := orders.ResaleView(ctx, orderID)
		if err != nil {
			return err
		}
		if view.Stored != nil {
			summary = view.Stored
			return nil
		}
		summary = resale.AggregateOrder(view.PlacedAt, view.Items)
		return nil
	})
	if err != nil {
		s.logger.Error("failed to aggregate order resale summary", "orderID", orderID, "error", err)
		return nil, err
	}
	return summary, nil
}
