package main

import (
	"fmt"
	"os"

	"github.com/zenithex/zenithex/config"
	"github.com/zenithex/zenithex/controllers"
	"github.com/zenithex/zenithex/models"
	"github.com/zenithex/zenithex/mq_client"
	"github.com/zenithex/zenithex/routes"
	"github.com/zenithex/zenithex/services/order"
	"github.com/zenithex/zenithex/services/pricing"
	"github.com/zenithex/zenithex/services/recon"
)

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}
	mq_client.Connect()

	if seedPath := os.Getenv("SEED_FILE"); seedPath != "" {
		if err := models.LoadSeeds(seedPath); err != nil {
			config.Logger.Errorf("[api] load seeds: %v", err)
			return
		}
	}

	orderService := order.NewService()
	if err := orderService.ReloadBooks(); err != nil {
		config.Logger.Errorf("[api] reload books: %v", err)
		return
	}

	controllers.Initialize(
		orderService,
		pricing.NewPricer(config.DataBase, orderService),
		recon.NewChecker(config.DataBase),
	)

	r := routes.SetupRouter()
	r.Listen(":3000")
}
