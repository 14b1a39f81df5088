package repository

import (
	"context"
	"errors"

	"github.com/elmoushy/makanezm-backend/pkg/domain/resale"
	repo "github.com/elmoushy/makanezm-backend/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates the read-only OrderRepository used for resale
// aggregation.
func NewOrderRepository(db *gorm.DB) repo.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) ResaleView(ctx context.Context, orderID uuid.UUID) (*repo.OrderResaleView, error) {
	var order Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrOrderNotFound
		}
		return nil, err
	}

	var rows []OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND is_resale = ?", orderID, true).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	view := &repo.OrderResaleView{
		OrderID:  order.ID,
		PlacedAt: order.PlacedAt,
	}
	for _, row := range rows {
		view.Items = append(view.Items, resale.ItemView{
			ExpectedReturn: row.ExpectedReturn,
			Months:         row.PlanMonths,
			ProfitPercent:  row.PlanPercent,
		})
	}
	// The stored override is only usable when complete.
	if order.ResaleExpectedReturn != nil && order.ResaleReturnDate != nil && order.ResaleProfitPercent != nil {
		view.Stored = &resale.Summary{
			ExpectedReturn: *order.ResaleExpectedReturn,
			ReturnDate:     *order.ResaleReturnDate,
			ProfitPercent:  *order.ResaleProfitPercent,
		}
	}
	return view, nil
}
