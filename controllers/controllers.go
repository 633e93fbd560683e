package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/zenithex/zenithex/controllers/helpers"
	"github.com/zenithex/zenithex/services/order"
	"github.com/zenithex/zenithex/services/pricing"
	"github.com/zenithex/zenithex/services/recon"
)

var (
	OrderService *order.Service
	Pricer       *pricing.Pricer
	Checker      *recon.Checker
)

func Initialize(orderService *order.Service, pricer *pricing.Pricer, checker *recon.Checker) {
	OrderService = orderService
	Pricer = pricer
	Checker = checker
}

// currentMemberID trusts the gateway-injected member header. There is
// no session handling here; authentication lives in front of this
// service.
func currentMemberID(c *fiber.Ctx) (uint64, bool) {
	raw := c.Get("X-Member-ID")

	memberID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}

	return memberID, true
}

func renderError(c *fiber.Ctx, err error) error {
	return c.Status(helpers.StatusOf(err)).JSON(helpers.Errors{
		Errors: []string{err.Error()},
	})
}
