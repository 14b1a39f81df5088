// Package repository provides the GORM implementations of the persistence
// contracts in pkg/repository.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/elmoushy/makanezm-backend/pkg/domain/investment"
	"github.com/elmoushy/makanezm-backend/pkg/domain/resale"
	repo "github.com/elmoushy/makanezm-backend/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type investmentRepository struct {
	db *gorm.DB
}

// NewInvestmentRepository creates an InvestmentRepository using the
// provided *gorm.DB (which may be a transaction session).
func NewInvestmentRepository(db *gorm.DB) repo.InvestmentRepository {
	return &investmentRepository{db: db}
}

func (r *investmentRepository) Create(ctx context.Context, inv *investment.Investment) error {
	row := mapDomainToModel(inv)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *investmentRepository) Get(ctx context.Context, id uuid.UUID) (*investment.Investment, error) {
	var row Investment
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, investment.ErrNotFound
		}
		return nil, err
	}
	return mapModelToDomain(&row), nil
}

// ListPendingPayout selects stored matured plus due active in one
// predicate, so the two representations never need de-duplication. The
// maturity comparison is date-level: anything maturing before the day
// after asOf counts.
func (r *investmentRepository) ListPendingPayout(ctx context.Context, asOf time.Time) ([]*investment.Investment, error) {
	y, m, d := asOf.Date()
	nextDay := time.Date(y, m, d, 0, 0, 0, 0, asOf.Location()).AddDate(0, 0, 1)

	var rows []Investment
	err := r.db.WithContext(ctx).
		Where("status = ? OR (status = ? AND maturity_date < ?)",
			string(investment.StatusMatured), string(investment.StatusActive), nextDay).
		Order("maturity_date ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapModelsToDomain(rows), nil
}

func (r *investmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*investment.Investment, error) {
	var rows []Investment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("invested_at DESC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapModelsToDomain(rows), nil
}

func (r *investmentRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*investment.Investment, error) {
	var rows []Investment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapModelsToDomain(rows), nil
}

// Transition performs the guarded compare-and-set: the UPDATE is
// conditioned on the stored status still matching the expected pre-state.
// Zero rows affected means either the row is gone or another writer got
// there first; the two cases are told apart with a follow-up count.
func (r *investmentRepository) Transition(ctx context.Context, id uuid.UUID, expected investment.Status, update repo.TransitionUpdate) error {
	updates := map[string]any{"status": string(update.Status)}
	if update.PaidOutAt != nil {
		updates["paid_out_at"] = *update.PaidOutAt
	}
	if update.PaidBy != nil {
		updates["paid_by"] = *update.PaidBy
	}
	if update.CancelledAt != nil {
		updates["cancelled_at"] = *update.CancelledAt
	}
	if update.CancelReason != nil {
		updates["cancel_reason"] = *update.CancelReason
	}

	res := r.db.WithContext(ctx).
		Model(&Investment{}).
		Where("id = ? AND status = ?", id, string(expected)).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&Investment{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return investment.ErrNotFound
	}
	return repo.ErrStatusConflict
}

func mapDomainToModel(inv *investment.Investment) Investment {
	var reason *string
	if inv.CancelReason != "" {
		r := inv.CancelReason
		reason = &r
	}
	return Investment{
		ID:                inv.ID,
		UserID:            inv.UserID,
		OrderID:           inv.OrderID,
		OrderItemID:       inv.OrderItemID,
		ProductID:         inv.ProductID,
		InvestedAmount:    inv.InvestedAmount,
		ExpectedReturn:    inv.ExpectedReturn,
		ProfitAmount:      inv.ProfitAmount,
		PlanMonths:        inv.Plan.Months,
		PlanProfitPercent: inv.Plan.ProfitPercent,
		PlanLabel:         inv.Plan.Label,
		InvestedAt:        inv.InvestedAt,
		MaturityDate:      inv.MaturityDate,
		PaidOutAt:         inv.PaidOutAt,
		PaidBy:            inv.PaidBy,
		CancelledAt:       inv.CancelledAt,
		CancelReason:      reason,
		Notes:             inv.Notes,
		Status:            string(inv.Status),
	}
}

func mapModelToDomain(row *Investment) *investment.Investment {
	var reason string
	if row.CancelReason != nil {
		reason = *row.CancelReason
	}
	return &investment.Investment{
		ID:             row.ID,
		UserID:         row.UserID,
		OrderID:        row.OrderID,
		OrderItemID:    row.OrderItemID,
		ProductID:      row.ProductID,
		InvestedAmount: row.InvestedAmount,
		ExpectedReturn: row.ExpectedReturn,
		ProfitAmount:   row.ProfitAmount,
		Plan: resale.PlanSnapshot{
			Months:        row.PlanMonths,
			ProfitPercent: row.PlanProfitPercent,
			Label:         row.PlanLabel,
		},
		InvestedAt:   row.InvestedAt,
		MaturityDate: row.MaturityDate,
		PaidOutAt:    row.PaidOutAt,
		PaidBy:       row.PaidBy,
		CancelledAt:  row.CancelledAt,
		CancelReason: reason,
		Notes:        row.Notes,
		Status:       investment.Status(row.Status),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func mapModelsToDomain(rows []Investment) []*investment.Investment {
	out := make([]*investment.Investment, 0, len(rows))
	for i := range rows {
		out = append(out, mapModelToDomain(&rows[i]))
	}
	return out
}
