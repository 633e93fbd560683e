package cron

import (
	"time"

	"github.com/zenithex/zenithex/config"
	"github.com/zenithex/zenithex/services/conditional"
)

// ConditionalOrdersJob drives the evaluator on a fixed cadence. Every
// run is bounded by batch size and time budget, so a huge backlog
// degrades into more runs, not a longer one.
type ConditionalOrdersJob struct {
	Evaluator *conditional.Evaluator
}

func (j *ConditionalOrdersJob) Process() {
	if err := j.Evaluator.Run(); err != nil {
		config.Logger.Errorf("[cron] conditional evaluator run: %v", err)
	}

	time.Sleep(config.EvaluatorInterval())
}
