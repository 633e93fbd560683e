package cron

import (
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/zenithex/zenithex/config"
	"github.com/zenithex/zenithex/services/recon"
)

// ReconciliationJob runs the invariant battery and keeps the latest
// report in Redis so the API can serve it without rerunning the
// queries.
type ReconciliationJob struct {
	Checker *recon.Checker
}

func (j *ReconciliationJob) Process() {
	report := j.Checker.Run()

	for _, result := range report.Checks {
		if result.OK {
			continue
		}

		config.Logger.Errorf("[cron] reconciliation check %s: %d violations %v",
			result.Check, len(result.Violations), result.Violations)
	}

	if err := config.Redis.SetKey("zenithex:recon:latest_report", report, redis.KeepTTL); err != nil {
		config.Logger.Errorf("[cron] reconciliation report cache: %v", err)
	}

	time.Sleep(config.ReconInterval())
}
