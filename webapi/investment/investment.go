// Package investment exposes the investment lifecycle over HTTP for the
// admin panel: the pending-payout view, payout execution, cancellation and
// the order resale summary.
package investment

import (
	"time"

	"github.com/elmoushy/makanezm-backend/pkg/config"
	"github.com/elmoushy/makanezm-backend/pkg/middleware"
	authsvc "github.com/elmoushy/makanezm-backend/pkg/service/auth"
	investmentsvc "github.com/elmoushy/makanezm-backend/pkg/service/investment"
	"github.com/elmoushy/makanezm-backend/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Routes registers the investment endpoints. All admin routes require a
// valid admin token.
//
// Routes:
//   - GET  /admin/investments/pending-payout      : Investments awaiting payout.
//   - POST /admin/investments/:id/payout          : Execute a payout.
//   - POST /admin/investments/:id/cancel          : Cancel an investment.
//   - GET  /admin/users/:id/investments           : A user's investments.
//   - GET  /admin/orders/:id/resale-summary       : Order resale aggregate.
func Routes(app *fiber.App, invSvc *investmentsvc.Service, authSvc *authsvc.Service, cfg *config.AppConfig) {
	admin := app.Group("/admin", middleware.JwtProtected(cfg.Jwt))
	admin.Get("/investments/pending-payout", PendingPayouts(invSvc))
	admin.Post("/investments/:id/payout", Payout(invSvc, authSvc))
	admin.Post("/investments/:id/cancel", Cancel(invSvc))
	admin.Get("/users/:id/investments", UserInvestments(invSvc))
	admin.Get("/orders/:id/resale-summary", OrderResaleSummary(invSvc))
}

// PendingPayouts returns the investments whose maturity date has passed
// and which have not been paid out, ordered by maturity date so repeated
// panel loads are stable.
func PendingPayouts(invSvc *investmentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		invs, err := invSvc.PendingPayout(c.UserContext())
		if err != nil {
			log.Errorf("Failed to list pending payouts: %v", err)
			return webapi.ErrorResponseJSON(c, webapi.ErrorToStatusCode(err), "Failed to list pending payouts", err.Error())
		}
		return webapi.SuccessResponseJSON(c, fiber.StatusOK, "Pending payouts", toInvestmentResponses(invs, time.Now()))
	}
}

// Payout executes the payout of a matured investment on behalf of the
// authenticated admin.
func Payout(invSvc *investmentsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("admin").(*jwt.Token)
		if !ok {
			return webapi.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "missing admin context")
		}
		adminID, err := authSvc.GetCurrentAdminID(token)
		if err != nil {
			log.Errorf("Failed to parse admin ID from token: %v", err)
			return webapi.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Invalid admin token", err.Error())
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return webapi.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid investment ID", "Investment ID must be a valid UUID")
		}
		inv, err := invSvc.MarkPaidOut(c.UserContext(), id, adminID)
		if err != nil {
			log.Errorf("Payout rejected for investment %s: %v", id, err)
			return webapi.ErrorResponseJSON(c, webapi.ErrorToStatusCode(err), "Payout rejected", err.Error())
		}
		return webapi.SuccessResponseJSON(c, fiber.StatusOK, "Investment paid out", toInvestmentResponse(inv, time.Now()))
	}
}

// Cancel cancels a pending or active investment with a reason.
func Cancel(invSvc *investmentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return webapi.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid investment ID", "Investment ID must be a valid UUID")
		}
		input, err := webapi.BindAndValidate[CancelRequest](c)
		if input == nil {
			return err // error response already written
		}
		inv, err := invSvc.Cancel(c.UserContext(), id, input.Reason)
		if err != nil {
			log.Errorf("Cancellation rejected for investment %s: %v", id, err)
			return webapi.ErrorResponseJSON(c, webapi.ErrorToStatusCode(err), "Cancellation rejected", err.Error())
		}
		return webapi.SuccessResponseJSON(c, fiber.StatusOK, "Investment cancelled", toInvestmentResponse(inv, time.Now()))
	}
}

// UserInvestments lists a user's investments for the admin panel.
func UserInvestments(invSvc *investmentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return webapi.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid user ID", "User ID must be a valid UUID")
		}
		invs, err := invSvc.ListByUser(c.UserContext(), userID)
		if err != nil {
			log.Errorf("Failed to list investments for user %s: %v", userID, err)
			return webapi.ErrorResponseJSON(c, webapi.ErrorToStatusCode(err), "Failed to list investments", err.Error())
		}
		return webapi.SuccessResponseJSON(c, fiber.StatusOK, "User investments", toInvestmentResponses(invs, time.Now()))
	}
}

// OrderResaleSummary returns the derived (or stored) order-level resale
// aggregate. Data is null when the order has no resale items.
func OrderResaleSummary(invSvc *investmentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orderID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return webapi.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid order ID", "Order ID must be a valid UUID")
		}
		summary, err := invSvc.OrderResaleSummary(c.UserContext(), orderID)
		if err != nil {
			log.Errorf("Failed to aggregate resale summary for order %s: %v", orderID, err)
			return webapi.ErrorResponseJSON(c, webapi.ErrorToStatusCode(err), "Failed to aggregate resale summary", err.Error())
		}
		if summary == nil {
			return webapi.SuccessResponseJSON(c, fiber.StatusOK, "Order has no resale items", nil)
		}
		return webapi.SuccessResponseJSON(c, fiber.StatusOK, "Order resale summary", toResaleSummaryResponse(summary))
	}
}
