package investment

import (
	"time"

	"github.com/elmoushy/makanezm-backend/pkg/domain/investment"
	"github.com/elmoushy/makanezm-backend/pkg/domain/resale"
)

const dateLayout = "2006-01-02"

// CancelRequest is the body for cancelling an investment.
type CancelRequest struct {
	Reason string `json:"reason" validate:"required,max=255"`
}

// InvestmentResponse is the JSON shape of an investment. Monetary fields
// are rendered with two decimals; rounding happens here and nowhere
// earlier. Status is the effective status as of the request time, so a
// due-but-not-yet-written investment reads as matured.
type InvestmentResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	OrderID     string `json:"order_id"`
	OrderItemID string `json:"order_item_id"`
	ProductID   string `json:"product_id"`

	InvestedAmount string `json:"invested_amount"`
	ExpectedReturn string `json:"expected_return"`
	ProfitAmount   string `json:"profit_amount"`

	PlanMonths        int    `json:"plan_months"`
	PlanProfitPercent string `json:"plan_profit_percent"`
	PlanLabel         string `json:"plan_label"`

	InvestedAt   string  `json:"invested_at"`
	MaturityDate string  `json:"maturity_date"`
	PaidOutAt    *string `json:"paid_out_at,omitempty"`
	PaidBy       *string `json:"paid_by,omitempty"`
	CancelledAt  *string `json:"cancelled_at,omitempty"`
	CancelReason string  `json:"cancel_reason,omitempty"`
	Notes        string  `json:"notes,omitempty"`

	Status string `json:"status"`
}

func toInvestmentResponse(inv *investment.Investment, asOf time.Time) InvestmentResponse {
	resp := InvestmentResponse{
		ID:                inv.ID.String(),
		UserID:            inv.UserID.String(),
		OrderID:           inv.OrderID.String(),
		OrderItemID:       inv.OrderItemID.String(),
		ProductID:         inv.ProductID.String(),
		InvestedAmount:    inv.InvestedAmount.StringFixed(2),
		ExpectedReturn:    inv.ExpectedReturn.StringFixed(2),
		ProfitAmount:      inv.ProfitAmount.StringFixed(2),
		PlanMonths:        inv.Plan.Months,
		PlanProfitPercent: inv.Plan.ProfitPercent.StringFixed(2),
		PlanLabel:         inv.Plan.Label,
		InvestedAt:        inv.InvestedAt.Format(time.RFC3339),
		MaturityDate:      inv.MaturityDate.Format(dateLayout),
		CancelReason:      inv.CancelReason,
		Notes:             inv.Notes,
		Status:            inv.EffectiveStatus(asOf).String(),
	}
	if inv.PaidOutAt != nil {
		s := inv.PaidOutAt.Format(time.RFC3339)
		resp.PaidOutAt = &s
	}
	if inv.PaidBy != nil {
		s := inv.PaidBy.String()
		resp.PaidBy = &s
	}
	if inv.CancelledAt != nil {
		s := inv.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &s
	}
	return resp
}

func toInvestmentResponses(invs []*investment.Investment, asOf time.Time) []InvestmentResponse {
	out := make([]InvestmentResponse, 0, len(invs))
	for _, inv := range invs {
		out = append(out, toInvestmentResponse(inv, asOf))
	}
	return out
}

// ResaleSummaryResponse is the JSON shape of an order-level resale
// aggregate.
type ResaleSummaryResponse struct {
	ExpectedReturn string `json:"expected_return"`
	ReturnDate     string `json:"return_date"`
	ProfitPercent  string `json:"profit_percent"`
}

func toResaleSummaryResponse(s *resale.Summary) *ResaleSummaryResponse {
	if s == nil {
		return nil
	}
	return &ResaleSummaryResponse{
		ExpectedReturn: s.ExpectedReturn.StringFixed(2),
		ReturnDate:     s.ReturnDate.Format(dateLayout),
		ProfitPercent:  s.ProfitPercent.StringFixed(2),
	}
}
