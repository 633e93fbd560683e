package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/zenithex/zenithex/config"
	"github.com/zenithex/zenithex/controllers/helpers"
	"github.com/zenithex/zenithex/models"
	"github.com/zenithex/zenithex/services/recon"
	"github.com/zenithex/zenithex/types"
)

func GetTimestamp(c *fiber.Ctx) error {
	return c.Status(200).JSON(time.Now().Unix())
}

type DepthResponse struct {
	Asks      []models.PriceLevel `json:"asks"`
	Bids      []models.PriceLevel `json:"bids"`
	Timestamp int64               `json:"timestamp"`
}

func GetDepth(c *fiber.Ctx) error {
	market := c.Params("market")

	if _, err := models.GetMarket(market); err != nil {
		return renderError(c, err)
	}

	return c.Status(200).JSON(DepthResponse{
		Asks:      models.GetDepth(config.DataBase, types.SideSell, market),
		Bids:      models.GetDepth(config.DataBase, types.SideBuy, market),
		Timestamp: time.Now().Unix(),
	})
}

func GetConvertQuote(c *fiber.Ctx) error {
	market := c.Params("market")
	side := types.OrderSide(c.Query("side", "buy"))

	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil || !amount.IsPositive() {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"market.convert.invalid_amount"},
		})
	}

	spreadBps, err := strconv.ParseInt(c.Query("spread_bps", "0"), 10, 64)
	if err != nil || spreadBps < 0 {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"market.convert.invalid_spread"},
		})
	}

	quote, ok := Pricer.ConvertQuote(market, side, amount, spreadBps)
	if !ok {
		return c.Status(404).JSON(helpers.Errors{
			Errors: []string{"market.convert.no_price"},
		})
	}

	return c.Status(200).JSON(quote)
}

// GetReconReport serves the cron job's cached report when present and
// only falls back to a live run when the cache is cold.
func GetReconReport(c *fiber.Ctx) error {
	var report recon.Report

	if err := config.Redis.GetKey("zenithex:recon:latest_report", &report); err == nil {
		return c.Status(200).JSON(report)
	}

	return c.Status(200).JSON(Checker.Run())
}
