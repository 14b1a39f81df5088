package repository

import (
	"context"

	repo "github.com/elmoushy/makanezm-backend/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides the transaction boundary and repository access in one
// abstraction. Repositories handed out inside Do share the transaction
// session, so a rejected transition rolls back atomically.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn in a transaction boundary, providing a UoW bound to it.
func (u *UoW) Do(ctx context.Context, fn func(uow repo.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// InvestmentRepository returns an InvestmentRepository bound to the
// current session.
func (u *UoW) InvestmentRepository() (repo.InvestmentRepository, error) {
	return NewInvestmentRepository(u.session()), nil
}

// OrderRepository returns an OrderRepository bound to the current session.
func (u *UoW) OrderRepository() (repo.OrderRepository, error) {
	return NewOrderRepository(u.session()), nil
}
