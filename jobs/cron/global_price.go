package cron

import (
	"time"

	"github.com/zenithex/zenithex/config"
	"github.com/zenithex/zenithex/models"
	"github.com/zenithex/zenithex/services/pricing"
)

// GlobalPriceJob snapshots every enabled market's last price into
// Redis so other processes can read prices without a database or
// book lookup.
type GlobalPriceJob struct {
	Pricer *pricing.Pricer
}

func (j *GlobalPriceJob) Process() {
	var markets []models.Market

	if err := config.DataBase.Where("enabled = ?", true).Find(&markets).Error; err != nil {
		config.Logger.Errorf("[cron] global price markets: %v", err)
		time.Sleep(time.Minute)
		return
	}

	for _, market := range markets {
		price, ok := j.Pricer.LastPrice(market.Symbol)
		if !ok {
			continue
		}

		key := "zenithex:global_price:" + market.Symbol
		if err := config.Redis.SetKey(key, price.String(), time.Minute); err != nil {
			config.Logger.Errorf("[cron] global price cache %s: %v", market.Symbol, err)
		}
	}

	time.Sleep(10 * time.Second)
}
