package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zenithex/zenithex/controllers/helpers"
	"github.com/zenithex/zenithex/models"
	"github.com/zenithex/zenithex/services/order"
	"github.com/zenithex/zenithex/types"
)

type CreateOrderPayload struct {
	Market         string              `json:"market" validate:"required"`
	Side           types.OrderSide     `json:"side" validate:"required"`
	OrdType        types.OrderType     `json:"ord_type" validate:"required"`
	Price          decimal.NullDecimal `json:"price"`
	Quantity       decimal.Decimal     `json:"quantity" validate:"required"`
	IdempotencyKey string              `json:"idempotency_key"`
}

func CreateOrder(c *fiber.Ctx) error {
	memberID, ok := currentMemberID(c)
	if !ok {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{"member.missing_identity"},
		})
	}

	payload := new(CreateOrderPayload)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	placed, executions, err := OrderService.PlaceOrder(order.PlaceRequest{
		MemberID:       memberID,
		MarketID:       payload.Market,
		Side:           payload.Side,
		OrdType:        payload.OrdType,
		Price:          payload.Price,
		Quantity:       payload.Quantity,
		IdempotencyKey: payload.IdempotencyKey,
	})
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"order":      placed,
		"executions": executions,
	})
}

func GetOrderByUUID(c *fiber.Ctx) error {
	memberID, ok := currentMemberID(c)
	if !ok {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{"member.missing_identity"},
		})
	}

	id, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"market.order.invalid_uuid"},
		})
	}

	found, err := models.FindOrderByUUID(id)
	if err != nil || found.MemberID != memberID {
		return c.Status(404).JSON(helpers.Errors{
			Errors: []string{"market.order.not_found"},
		})
	}

	return c.Status(200).JSON(found)
}

func CancelOrder(c *fiber.Ctx) error {
	memberID, ok := currentMemberID(c)
	if !ok {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{"member.missing_identity"},
		})
	}

	canceled, err := OrderService.CancelOrder(c.Params("uuid"), memberID)
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(200).JSON(canceled)
}
