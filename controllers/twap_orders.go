package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/zenithex/zenithex/config"
	"github.com/zenithex/zenithex/controllers/helpers"
	"github.com/zenithex/zenithex/models"
	"github.com/zenithex/zenithex/services/twap"
	"github.com/zenithex/zenithex/types"
)

type CreateTwapPayload struct {
	Market        string          `json:"market" validate:"required"`
	Side          types.OrderSide `json:"side" validate:"required"`
	TotalQuantity decimal.Decimal `json:"total_quantity" validate:"required"`
	SlicesTotal   int64           `json:"slices_total" validate:"required"`
	SliceInterval int64           `json:"slice_interval" validate:"required"`
}

func CreateTwapOrder(c *fiber.Ctx) error {
	memberID, ok := currentMemberID(c)
	if !ok {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{"member.missing_identity"},
		})
	}

	payload := new(CreateTwapPayload)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	market, err := models.GetMarket(payload.Market)
	if err != nil {
		return renderError(c, err)
	}

	errors := new(helpers.Errors)
	if payload.SlicesTotal <= 0 || payload.SliceInterval <= 0 {
		errors.Add("market.twap_order.invalid_schedule")
	}
	if payload.Side != types.SideBuy && payload.Side != types.SideSell {
		errors.Add("market.twap_order.invalid_side")
	}

	total := market.RoundAmount(payload.TotalQuantity)
	if !total.IsPositive() || total.LessThan(market.MinAmount) {
		errors.Add("market.twap_order.invalid_total_quantity")
	}

	// Reject plans that round down to nothing at all.
	if errors.Size() == 0 {
		plan := twap.PlanSlices(total, payload.SlicesTotal, market.AmountStep)

		planned := decimal.Zero
		for _, slice := range plan {
			planned = planned.Add(slice)
		}
		if !planned.IsPositive() {
			errors.Add("market.twap_order.slices_below_lot")
		}
	}

	if errors.Size() > 0 {
		return c.Status(422).JSON(errors)
	}

	t := &models.TwapOrder{
		MemberID:      memberID,
		MarketID:      market.Symbol,
		Side:          payload.Side,
		TotalQuantity: total,
		SlicesTotal:   payload.SlicesTotal,
		SliceInterval: payload.SliceInterval,
		Status:        types.TwapActive,
		StartAt:       time.Now(),
	}

	if err := config.DataBase.Create(t).Error; err != nil {
		return renderError(c, err)
	}

	return c.Status(201).JSON(t)
}
