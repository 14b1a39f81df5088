package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elmoushy/makanezm-backend/pkg/domain/investment"
	"github.com/elmoushy/makanezm-backend/pkg/domain/resale"
	repo "github.com/elmoushy/makanezm-backend/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func newDomainInvestment(t *testing.T) *investment.Investment {
	t.Helper()
	inv, err := investment.New().
		WithUserID(uuid.New()).
		WithOrder(uuid.New(), uuid.New()).
		WithProductID(uuid.New()).
		WithAmounts(decimal.RequireFromString("1000.00"), decimal.RequireFromString("1100.00")).
		WithPlan(resale.PlanSnapshot{Months: 6, ProfitPercent: decimal.RequireFromString("10"), Label: "6-month resale"}).
		WithInvestedAt(time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)).
		WithStatus(investment.StatusActive).
		Build()
	require.NoError(t, err)
	return inv
}

func TestInvestmentRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	r := investmentRepository{db: db}
	inv := newDomainInvestment(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "investments" (.+) VALUES (.+)`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, r.Create(context.Background(), inv))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "investments" (.+) VALUES (.+)`).
		WillReturnError(errors.New("create error"))
	mock.ExpectRollback()

	require.Error(t, r.Create(context.Background(), inv))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func investmentColumns() []string {
	return []string{
		"id", "user_id", "order_id", "order_item_id", "product_id",
		"invested_amount", "expected_return", "profit_amount",
		"plan_months", "plan_profit_percent", "plan_label",
		"invested_at", "maturity_date", "status",
	}
}

func TestInvestmentRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	r := investmentRepository{db: db}
	inv := newDomainInvestment(t)

	rows := sqlmock.NewRows(investmentColumns()).AddRow(
		inv.ID.String(), inv.UserID.String(), inv.OrderID.String(), inv.OrderItemID.String(), inv.ProductID.String(),
		"1000.00", "1100.00", "100.00",
		6, "10.00", "6-month resale",
		inv.InvestedAt, inv.MaturityDate, "active",
	)
	mock.ExpectQuery(`SELECT (.+) FROM "investments" WHERE id = (.+)`).
		WillReturnRows(rows)

	got, err := r.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
	assert.Equal(t, investment.StatusActive, got.Status)
	assert.True(t, inv.InvestedAmount.Equal(got.InvestedAmount))
	assert.True(t, inv.ProfitAmount.Equal(got.ProfitAmount))
	assert.Equal(t, 6, got.Plan.Months)
	assert.Equal(t, "6-month resale", got.Plan.Label)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvestmentRepository_Get_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	r := investmentRepository{db: db}

	mock.ExpectQuery(`SELECT (.+) FROM "investments" WHERE id = (.+)`).
		WillReturnRows(sqlmock.NewRows(investmentColumns()))

	_, err := r.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, investment.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvestmentRepository_Transition_Success(t *testing.T) {
	db, mock := newMockDB(t)
	r := investmentRepository{db: db}
	id := uuid.New()
	now := time.Now()
	adminID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "investments" SET (.+) WHERE id = (.+) AND status = (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := r.Transition(context.Background(), id, investment.StatusMatured, repo.TransitionUpdate{
		Status:    investment.StatusPaidOut,
		PaidOutAt: &now,
		PaidBy:    &adminID,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvestmentRepository_Transition_Conflict(t *testing.T) {
	db, mock := newMockDB(t)
	r := investmentRepository{db: db}
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "investments" SET (.+) WHERE id = (.+) AND status = (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT count(.+) FROM "investments" WHERE id = (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := r.Transition(context.Background(), id, investment.StatusActive, repo.TransitionUpdate{
		Status: investment.StatusPaidOut,
	})
	require.ErrorIs(t, err, repo.ErrStatusConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvestmentRepository_Transition_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	r := investmentRepository{db: db}
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "investments" SET (.+) WHERE id = (.+) AND status = (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT count(.+) FROM "investments" WHERE id = (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := r.Transition(context.Background(), id, investment.StatusActive, repo.TransitionUpdate{
		Status: investment.StatusCancelled,
	})
	require.ErrorIs(t, err, investment.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvestmentRepository_ListPendingPayout(t *testing.T) {
	db, mock := newMockDB(t)
	r := investmentRepository{db: db}

	first := newDomainInvestment(t)
	second := newDomainInvestment(t)

	rows := sqlmock.NewRows(investmentColumns()).
		AddRow(
			first.ID.String(), first.UserID.String(), first.OrderID.String(), first.OrderItemID.String(), first.ProductID.String(),
			"1000.00", "1100.00", "100.00", 6, "10.00", "6-month resale",
			first.InvestedAt, first.MaturityDate, "matured",
		).
		AddRow(
			second.ID.String(), second.UserID.String(), second.OrderID.String(), second.OrderItemID.String(), second.ProductID.String(),
			"1000.00", "1100.00", "100.00", 6, "10.00", "6-month resale",
			second.InvestedAt, second.MaturityDate, "active",
		)
	mock.ExpectQuery(`SELECT (.+) FROM "investments" WHERE status = (.+) OR \(status = (.+) AND maturity_date < (.+)\) ORDER BY maturity_date ASC, id ASC`).
		WillReturnRows(rows)

	got, err := r.ListPendingPayout(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, investment.Status("matured"), got[0].Status)
	assert.Equal(t, second.ID, got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
