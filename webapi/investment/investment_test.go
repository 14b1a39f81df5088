package investment_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elmoushy/makanezm-backend/pkg/config"
	"github.com/elmoushy/makanezm-backend/pkg/domain/investment"
	"github.com/elmoushy/makanezm-backend/pkg/domain/resale"
	"github.com/elmoushy/makanezm-backend/pkg/repository"
	authsvc "github.com/elmoushy/makanezm-backend/pkg/service/auth"
	investmentsvc "github.com/elmoushy/makanezm-backend/pkg/service/investment"
	"github.com/elmoushy/makanezm-backend/pkg/testutils"
	"github.com/elmoushy/makanezm-backend/webapi"
	investmentapi "github.com/elmoushy/makanezm-backend/webapi/investment"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type testEnv struct {
	app   *fiber.App
	uow   *testutils.FakeUoW
	token string
	admin uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.AppConfig{Jwt: config.JwtConfig{Secret: "test-secret", Expiry: time.Hour}}
	uow := &testutils.FakeUoW{
		Investments: testutils.NewFakeInvestmentRepo(),
		Orders:      &testutils.FakeOrderRepo{Views: map[uuid.UUID]*repository.OrderResaleView{}},
	}
	authSvc := authsvc.New(cfg.Jwt, testLogger)
	invSvc := investmentsvc.NewService(uow, testLogger)
	app := webapi.NewApp(invSvc, authSvc, cfg, investmentapi.Routes)

	adminID := uuid.New()
	token, err := authSvc.GenerateToken(adminID)
	require.NoError(t, err)
	return &testEnv{app: app, uow: uow, token: token, admin: adminID}
}

func (e *testEnv) request(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+e.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close() //nolint:errcheck
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func seed(t *testing.T, env *testEnv, status investment.Status, investedAt time.Time, months int) *investment.Investment {
	t.Helper()
	inv, err := investment.New().
		WithUserID(uuid.New()).
		WithOrder(uuid.New(), uuid.New()).
		WithProductID(uuid.New()).
		WithAmounts(d("1000.00"), d("1100.00")).
		WithPlan(resale.PlanSnapshot{Months: months, ProfitPercent: d("10"), Label: "seed plan"}).
		WithInvestedAt(investedAt).
		WithStatus(status).
		Build()
	require.NoError(t, err)
	require.NoError(t, env.uow.Investments.Create(t.Context(), inv))
	return inv
}

func TestPendingPayouts_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/investments/pending-payout", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, fiber.StatusOK, resp.StatusCode)
}

func TestPendingPayouts(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()

	due := seed(t, env, investment.StatusActive, now.AddDate(0, -6, 0), 6)
	seed(t, env, investment.StatusActive, now, 6) // not due

	resp := env.request(t, http.MethodGet, "/admin/investments/pending-payout", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 1)

	item := data[0].(map[string]any)
	assert.Equal(t, due.ID.String(), item["id"])
	assert.Equal(t, "matured", item["status"], "due active reads as matured")
	assert.Equal(t, "1000.00", item["invested_amount"])
	assert.Equal(t, "100.00", item["profit_amount"])
}

func TestPayout(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	inv := seed(t, env, investment.StatusMatured, now.AddDate(0, -8, 0), 6)

	resp := env.request(t, http.MethodPost, "/admin/investments/"+inv.ID.String()+"/payout", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, "paid_out", data["status"])
	assert.Equal(t, env.admin.String(), data["paid_by"])
	assert.NotEmpty(t, data["paid_out_at"])

	// Second attempt is a conflict, never a silent repeat.
	resp = env.request(t, http.MethodPost, "/admin/investments/"+inv.ID.String()+"/payout", nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestPayout_NotYetMatured(t *testing.T) {
	env := newTestEnv(t)
	inv := seed(t, env, investment.StatusActive, time.Now(), 6)

	resp := env.request(t, http.MethodPost, "/admin/investments/"+inv.ID.String()+"/payout", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestPayout_NotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodPost, "/admin/investments/"+uuid.NewString()+"/payout", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPayout_InvalidID(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodPost, "/admin/investments/not-a-uuid/payout", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCancel(t *testing.T) {
	env := newTestEnv(t)
	inv := seed(t, env, investment.StatusActive, time.Now(), 6)

	resp := env.request(t, http.MethodPost, "/admin/investments/"+inv.ID.String()+"/cancel",
		map[string]string{"reason": "order refunded"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, "cancelled", data["status"])
	assert.Equal(t, "order refunded", data["cancel_reason"])
}

func TestCancel_MissingReason(t *testing.T) {
	env := newTestEnv(t)
	inv := seed(t, env, investment.StatusActive, time.Now(), 6)

	resp := env.request(t, http.MethodPost, "/admin/investments/"+inv.ID.String()+"/cancel",
		map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// The validation failure must render as problem details, not get
	// re-rendered by the app-level error handler as a 500.
	body := decodeBody(t, resp)
	assert.Equal(t, "Validation failed", body["title"])

	stored, err := env.uow.Investments.Get(t.Context(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, investment.StatusActive, stored.Status)
}

func TestCancel_MalformedBody(t *testing.T) {
	env := newTestEnv(t)
	inv := seed(t, env, investment.StatusActive, time.Now(), 6)

	req := httptest.NewRequest(http.MethodPost,
		"/admin/investments/"+inv.ID.String()+"/cancel",
		bytes.NewReader([]byte("{not json")))
	req.Header.Set("Authorization", "Bearer "+env.token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Invalid request body", body["title"])
}

func TestCancel_Matured(t *testing.T) {
	env := newTestEnv(t)
	inv := seed(t, env, investment.StatusMatured, time.Now().AddDate(0, -8, 0), 6)

	resp := env.request(t, http.MethodPost, "/admin/investments/"+inv.ID.String()+"/cancel",
		map[string]string{"reason": "order refunded"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	stored, err := env.uow.Investments.Get(t.Context(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, investment.StatusMatured, stored.Status)
}

func TestUserInvestments(t *testing.T) {
	env := newTestEnv(t)
	inv := seed(t, env, investment.StatusActive, time.Now(), 6)

	resp := env.request(t, http.MethodGet, "/admin/users/"+inv.UserID.String()+"/investments", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, inv.ID.String(), data[0].(map[string]any)["id"])
}

func TestOrderResaleSummary(t *testing.T) {
	env := newTestEnv(t)
	orderID := uuid.New()
	placedAt := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	env.uow.Orders.Views[orderID] = &repository.OrderResaleView{
		OrderID:  orderID,
		PlacedAt: placedAt,
		Items: []resale.ItemView{
			{ExpectedReturn: d("200.00"), Months: 3, ProfitPercent: d("8")},
			{ExpectedReturn: d("300.00"), Months: 6, ProfitPercent: d("12")},
		},
	}

	resp := env.request(t, http.MethodGet, "/admin/orders/"+orderID.String()+"/resale-summary", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, "500.00", data["expected_return"])
	assert.Equal(t, "2025-07-01", data["return_date"])
	assert.Equal(t, "10.00", data["profit_percent"])
}

func TestOrderResaleSummary_OrderNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodGet, "/admin/orders/"+uuid.NewString()+"/resale-summary", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "order not found", body["detail"])
}

func TestOrderResaleSummary_NoResaleItems(t *testing.T) {
	env := newTestEnv(t)
	orderID := uuid.New()
	env.uow.Orders.Views[orderID] = &repository.OrderResaleView{OrderID: orderID, PlacedAt: time.Now()}

	resp := env.request(t, http.MethodGet, "/admin/orders/"+orderID.String()+"/resale-summary", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	_, hasData := body["data"]
	assert.False(t, hasData, "no resale items yields an absent summary")
}
