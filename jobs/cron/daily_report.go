package cron

import (
	"time"

	"github.com/jasonlvhit/gocron"

	"github.com/zenithex/zenithex/config"
	"github.com/zenithex/zenithex/mq_client"
	"github.com/zenithex/zenithex/services/recon"
)

// DailyReportJob runs the full invariant battery once a day at
// midnight and publishes the report for downstream archival, on top
// of the tighter operational cadence of ReconciliationJob.
type DailyReportJob struct {
	Checker *recon.Checker
}

func (j *DailyReportJob) Process() {
	s := gocron.NewScheduler()
	s.Every(1).Day().At("00:00:00").Do(j.publishReport)
	<-s.Start()
}

func (j *DailyReportJob) publishReport() {
	report := j.Checker.Run()

	if !report.OK {
		config.Logger.Errorf("[cron] daily ledger report found violations at %s",
			report.RanAt.Format(time.RFC3339))
	}

	mq_client.EnqueueEvent("public", "recon", "daily_report", report)
}
