package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zenithex/zenithex/config"
	"github.com/zenithex/zenithex/mq_client"
	"github.com/zenithex/zenithex/services/order"
	"github.com/zenithex/zenithex/services/pricing"
	"github.com/zenithex/zenithex/services/recon"
	"github.com/zenithex/zenithex/workers/daemons"
)

func CreateWorker(id string) daemons.Worker {
	switch id {
	case "cron_job":
		orderService := order.NewService()
		if err := orderService.ReloadBooks(); err != nil {
			config.Logger.Errorf("[daemon] reload books: %v", err)
			return nil
		}

		return daemons.NewCronJob(
			orderService,
			pricing.NewPricer(config.DataBase, orderService),
			recon.NewChecker(config.DataBase),
		)
	default:
		return nil
	}
}

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}
	mq_client.Connect()

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":9090", nil); err != nil {
			config.Logger.Errorf("[daemon] metrics listener: %v", err)
		}
	}()

	ARVG := os.Args[1:]

	for _, id := range ARVG {
		fmt.Println("Start zenithex-daemon: " + id)
		worker := CreateWorker(id)
		if worker == nil {
			fmt.Println("Unknown worker: " + id)
			continue
		}

		worker.Start()
	}
}
