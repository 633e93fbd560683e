package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zenithex/zenithex/config"
	"github.com/zenithex/zenithex/controllers/helpers"
	"github.com/zenithex/zenithex/models"
	"github.com/zenithex/zenithex/types"
)

type CreateConditionalPayload struct {
	Market          string                `json:"market" validate:"required"`
	Kind            types.ConditionalKind `json:"kind" validate:"required"`
	Side            types.OrderSide       `json:"side" validate:"required"`
	Quantity        decimal.Decimal       `json:"quantity" validate:"required"`
	TriggerPrice    decimal.NullDecimal   `json:"trigger_price"`
	LimitPrice      decimal.NullDecimal   `json:"limit_price"`
	TakeProfitPrice decimal.NullDecimal   `json:"take_profit_price"`
	TrailBps        int64                 `json:"trail_bps"`
	ActivationPrice decimal.NullDecimal   `json:"activation_price"`
}

// checkShape enforces the per-kind required price fields before the
// row is accepted.
func (p *CreateConditionalPayload) checkShape(errors *helpers.Errors) {
	switch p.Kind {
	case types.KindStopLimit:
		if !p.TriggerPrice.Valid || !p.LimitPrice.Valid {
			errors.Add("market.conditional_order.missing_stop_prices")
		}
	case types.KindOco:
		if !p.TriggerPrice.Valid || !p.LimitPrice.Valid || !p.TakeProfitPrice.Valid {
			errors.Add("market.conditional_order.missing_oco_prices")
		}
	case types.KindTrailingStop:
		if p.TrailBps <= 0 {
			errors.Add("market.conditional_order.invalid_trail_bps")
		}
		if !p.ActivationPrice.Valid {
			errors.Add("market.conditional_order.missing_activation_price")
		}
	default:
		errors.Add("market.conditional_order.invalid_kind")
	}

	if !p.Quantity.IsPositive() {
		errors.Add("market.conditional_order.invalid_quantity")
	}
	if p.Side != types.SideBuy && p.Side != types.SideSell {
		errors.Add("market.conditional_order.invalid_side")
	}
}

func CreateConditionalOrder(c *fiber.Ctx) error {
	memberID, ok := currentMemberID(c)
	if !ok {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{"member.missing_identity"},
		})
	}

	payload := new(CreateConditionalPayload)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	errors := new(helpers.Errors)
	payload.checkShape(errors)
	if errors.Size() > 0 {
		return c.Status(422).JSON(errors)
	}

	market, err := models.GetMarket(payload.Market)
	if err != nil {
		return renderError(c, err)
	}

	co := &models.ConditionalOrder{
		MemberID:        memberID,
		MarketID:        market.Symbol,
		Kind:            payload.Kind,
		Side:            payload.Side,
		Quantity:        market.RoundAmount(payload.Quantity),
		TriggerPrice:    payload.TriggerPrice,
		LimitPrice:      payload.LimitPrice,
		TakeProfitPrice: payload.TakeProfitPrice,
		TrailBps:        payload.TrailBps,
		ActivationPrice: payload.ActivationPrice,
		Status:          types.ConditionalActive,
	}

	if !co.Quantity.IsPositive() || co.Quantity.LessThan(market.MinAmount) {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"market.conditional_order.invalid_quantity"},
		})
	}

	if err := config.DataBase.Create(co).Error; err != nil {
		return renderError(c, err)
	}

	return c.Status(201).JSON(co)
}

func CancelConditionalOrder(c *fiber.Ctx) error {
	memberID, ok := currentMemberID(c)
	if !ok {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{"member.missing_identity"},
		})
	}

	id, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"market.conditional_order.invalid_uuid"},
		})
	}

	co := &models.ConditionalOrder{}
	result := config.DataBase.First(co, "uuid = ? AND member_id = ?", id, memberID)
	if result.Error != nil {
		return c.Status(404).JSON(helpers.Errors{
			Errors: []string{"market.conditional_order.not_found"},
		})
	}

	if err := co.Cancel(config.DataBase); err != nil {
		return renderError(c, err)
	}

	return c.Status(200).JSON(co)
}
