package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zenithex/zenithex/controllers"
)

func SetupRouter() *fiber.App {
	app := fiber.New()

	app.Get("/api/v2/public/timestamp", controllers.GetTimestamp)
	app.Get("/api/v2/public/markets/:market/depth", controllers.GetDepth)
	app.Get("/api/v2/public/markets/:market/convert_quote", controllers.GetConvertQuote)
	app.Get("/api/v2/public/recon/report", controllers.GetReconReport)

	app.Post("/api/v2/market/orders", controllers.CreateOrder)
	app.Get("/api/v2/market/orders/:uuid", controllers.GetOrderByUUID)
	app.Delete("/api/v2/market/orders/:uuid", controllers.CancelOrder)

	app.Post("/api/v2/market/conditional_orders", controllers.CreateConditionalOrder)
	app.Delete("/api/v2/market/conditional_orders/:uuid", controllers.CancelConditionalOrder)

	app.Post("/api/v2/market/twap_orders", controllers.CreateTwapOrder)

	return app
}
