package twap

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zenithex/zenithex/config"
	"github.com/zenithex/zenithex/errs"
	"github.com/zenithex/zenithex/metrics"
	"github.com/zenithex/zenithex/models"
	"github.com/zenithex/zenithex/pkg/fixedpoint"
)

// SlicePlacer is the order-placement path a slice goes out through.
type SlicePlacer interface {
	PlaceTwapSlice(t *models.TwapOrder, sliceIndex int64, quantity decimal.Decimal) (*models.Order, error)
}

// Scheduler drives active TWAP orders on a fixed cadence, submitting
// the slices that have come due since the last run.
type Scheduler struct {
	Placer     SlicePlacer
	BatchSize  int
	TimeBudget time.Duration
}

func NewScheduler(placer SlicePlacer) *Scheduler {
	return &Scheduler{
		Placer:     placer,
		BatchSize:  config.EvaluatorBatchSize(),
		TimeBudget: config.EvaluatorTimeBudget(),
	}
}

// PlanSlices splits the total into per-slice quantities, each floored
// to the market lot. The last slice absorbs the rounding remainder so
// the plan sums back to a lot-aligned total.
func PlanSlices(total decimal.Decimal, slices int64, step decimal.Decimal) []decimal.Decimal {
	if slices <= 0 {
		return nil
	}

	base := fixedpoint.QuantizeDownToStep(
		total.DivRound(decimal.NewFromInt(slices), fixedpoint.Scale),
		step,
	)

	plan := make([]decimal.Decimal, slices)
	allocated := decimal.Zero
	for i := int64(0); i < slices-1; i++ {
		plan[i] = base
		allocated = allocated.Add(base)
	}

	plan[slices-1] = fixedpoint.QuantizeDownToStep(total.Sub(allocated), step)

	return plan
}

// DueSlices is how many slices should have been submitted by now.
func DueSlices(startAt time.Time, interval time.Duration, now time.Time, slicesTotal int64) int64 {
	if now.Before(startAt) {
		return 0
	}

	due := int64(now.Sub(startAt)/interval) + 1
	if due > slicesTotal {
		return slicesTotal
	}

	return due
}

// Run submits due slices for each active TWAP order. One order's
// failure only skips that order; the cursor guard in RecordSlice
// keeps a racing run from double-submitting a slice.
func (s *Scheduler) Run() error {
	deadline := time.Now().Add(s.TimeBudget)

	twaps, err := models.ActiveTwapOrders(config.DataBase, s.BatchSize)
	if err != nil {
		return err
	}

	for _, t := range twaps {
		if time.Now().After(deadline) {
			break
		}

		if err := s.process(t); err != nil {
			config.Logger.Errorf("[twap] order %d: %v", t.ID, err)
		}
	}

	return nil
}

func (s *Scheduler) process(t *models.TwapOrder) error {
	market, err := models.GetMarket(t.MarketID)
	if err != nil {
		return err
	}

	plan := PlanSlices(t.TotalQuantity, t.SlicesTotal, market.AmountStep)
	interval := time.Duration(t.SliceInterval) * time.Second
	due := DueSlices(t.StartAt, interval, time.Now(), t.SlicesTotal)

	for index := t.ExecutedSlices; index < due; index++ {
		quantity := plan[index]

		if !quantity.IsPositive() {
			// Dust slice: advance the cursor without an order.
			if err := t.RecordSlice(config.DataBase, index, decimal.Zero); err != nil {
				return err
			}
			continue
		}

		if _, err := s.Placer.PlaceTwapSlice(t, index, quantity); err != nil {
			if errs.Expected(err) {
				// Thin book or funds shortfall: leave the slice for
				// the next cycle.
				metrics.TwapSlices.WithLabelValues("deferred").Inc()
				return nil
			}
			metrics.TwapSlices.WithLabelValues("error").Inc()
			return err
		}

		if err := t.RecordSlice(config.DataBase, index, quantity); err != nil {
			return err
		}

		metrics.TwapSlices.WithLabelValues("submitted").Inc()
	}

	if t.ExecutedSlices >= t.SlicesTotal {
		if err := t.MarkCompleted(config.DataBase); err != nil && err != errs.ErrTradeStateConflict {
			return err
		}
	}

	return nil
}
