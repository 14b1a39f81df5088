package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Investment represents an investment record in the database. The plan_*
// columns are the denormalized snapshot of the resale plan at purchase
// time; they are written once and never updated.
type Investment struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderItemID uuid.UUID `gorm:"type:uuid"`
	ProductID   uuid.UUID `gorm:"type:uuid"`

	InvestedAmount decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	ExpectedReturn decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	ProfitAmount   decimal.Decimal `gorm:"type:decimal(15,2);not null"`

	PlanMonths        int             `gorm:"not null"`
	PlanProfitPercent decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	PlanLabel         string          `gorm:"size:100"`

	InvestedAt   time.Time `gorm:"not null"`
	MaturityDate time.Time `gorm:"not null;index"`
	PaidOutAt    *time.Time
	PaidBy       *uuid.UUID `gorm:"type:uuid"`
	CancelledAt  *time.Time
	CancelReason *string `gorm:"size:255"`
	Notes        string

	Status string `gorm:"type:varchar(20);not null;default:'pending';index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Investment) TableName() string {
	return "investments"
}

// Order represents the slice of an order the lifecycle reads: when it was
// placed and the optional stored resale summary override.
type Order struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index"`
	PlacedAt time.Time `gorm:"not null"`

	ResaleExpectedReturn *decimal.Decimal `gorm:"type:decimal(15,2)"`
	ResaleReturnDate     *time.Time
	ResaleProfitPercent  *decimal.Decimal `gorm:"type:decimal(5,2)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem represents an order line item. Resale-flagged items carry the
// plan terms the aggregation reads.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`

	Amount         decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	IsResale       bool            `gorm:"not null;default:false"`
	PlanMonths     int             `gorm:"not null;default:0"`
	PlanPercent    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	ExpectedReturn decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (OrderItem) TableName() string {
	return "order_items"
}
