package daemons

import (
	"time"

	"github.com/zenithex/zenithex/jobs"
	"github.com/zenithex/zenithex/jobs/cron"
	"github.com/zenithex/zenithex/services/conditional"
	"github.com/zenithex/zenithex/services/order"
	"github.com/zenithex/zenithex/services/pricing"
	"github.com/zenithex/zenithex/services/recon"
	"github.com/zenithex/zenithex/services/twap"
)

type Worker interface {
	Start()
	Stop()
}

type CronJob struct {
	Running bool
	Jobs    []jobs.Job
}

func NewCronJob(orderService *order.Service, pricer *pricing.Pricer, checker *recon.Checker) *CronJob {
	jobs := []jobs.Job{
		&cron.ConditionalOrdersJob{Evaluator: conditional.NewEvaluator(orderService, pricer)},
		&cron.TwapJob{Scheduler: twap.NewScheduler(orderService)},
		&cron.ReconciliationJob{Checker: checker},
		&cron.DailyReportJob{Checker: checker},
		&cron.GlobalPriceJob{Pricer: pricer},
	}

	return &CronJob{Running: true, Jobs: jobs}
}

func (c *CronJob) Stop() {
	c.Running = false
}

func (c *CronJob) Start() {
	for _, job := range c.Jobs {
		go c.Process(job)
	}

	for c.Running {
		time.Sleep(1 * time.Second)
	}
}

func (c *CronJob) Process(job jobs.Job) {
	for c.Running {
		job.Process()
	}
}
