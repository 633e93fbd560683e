package cron

import (
	"time"

	"github.com/zenithex/zenithex/config"
	"github.com/zenithex/zenithex/services/twap"
)

type TwapJob struct {
	Scheduler *twap.Scheduler
}

func (j *TwapJob) Process() {
	if err := j.Scheduler.Run(); err != nil {
		config.Logger.Errorf("[cron] twap scheduler run: %v", err)
	}

	time.Sleep(config.TwapInterval())
}
