package conditional

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zenithex/zenithex/config"
	"github.com/zenithex/zenithex/errs"
	"github.com/zenithex/zenithex/metrics"
	"github.com/zenithex/zenithex/models"
	"github.com/zenithex/zenithex/mq_client"
	"github.com/zenithex/zenithex/types"
)

// OrderPlacer is the order-placement path the evaluator re-enters on
// a trigger. Submissions are idempotent by (conditional_order_id, leg).
type OrderPlacer interface {
	PlaceConditional(co *models.ConditionalOrder, leg types.ConditionalLeg) (*models.Order, error)
}

// PriceSource resolves the current market price. Absence of a price
// is a skip, not a fault.
type PriceSource interface {
	LastPrice(marketID string) (decimal.Decimal, bool)
}

// Evaluator is the periodic batch driver over conditional orders. It
// assumes at-least-once invocation and makes re-invocation safe with
// the status-guarded claim in the model plus idempotent submissions.
// No hard lock, so a crashed run's claims age out and get retaken.
type Evaluator struct {
	Placer     OrderPlacer
	Prices     PriceSource
	BatchSize  int
	TimeBudget time.Duration
	AttemptCap int64
	StaleAfter time.Duration
}

func NewEvaluator(placer OrderPlacer, prices PriceSource) *Evaluator {
	return &Evaluator{
		Placer:     placer,
		Prices:     prices,
		BatchSize:  config.EvaluatorBatchSize(),
		TimeBudget: config.EvaluatorTimeBudget(),
		AttemptCap: config.EvaluatorAttemptCap(),
		StaleAfter: config.EvaluatorStaleAfter(),
	}
}

// Run processes one batch of candidates. A run that exhausts its time
// budget stops claiming and leaves the rest for the next cycle.
func (e *Evaluator) Run() error {
	metrics.EvaluatorRuns.Inc()
	deadline := time.Now().Add(e.TimeBudget)

	candidates, err := models.EvaluationCandidates(config.DataBase, e.BatchSize, e.StaleAfter, e.AttemptCap)
	if err != nil {
		return err
	}

	for _, candidate := range candidates {
		if time.Now().After(deadline) {
			config.Logger.Warnf("[evaluator] time budget exhausted, %d candidates deferred", len(candidates))
			break
		}

		price, ok := e.Prices.LastPrice(candidate.MarketID)
		if !ok {
			continue
		}

		if err := e.evaluateOne(candidate, price); err != nil {
			config.Logger.Errorf("[evaluator] conditional order %d: %v", candidate.ID, err)
		}
	}

	return nil
}

// evaluateOne handles a single candidate in its own transaction
// scope, so one candidate's failure cannot corrupt another's state.
func (e *Evaluator) evaluateOne(candidate *models.ConditionalOrder, price decimal.Decimal) error {
	decision := Evaluate(candidate, price)

	switch decision.Action {
	case ActionNone:
		return nil

	case ActionArm:
		err := config.DataBase.Transaction(func(tx *gorm.DB) error {
			return candidate.Arm(tx, decision.RefPrice, decision.StopPrice)
		})
		if err == errs.ErrTradeStateConflict {
			// Another run armed or canceled it first.
			return nil
		}
		return err

	case ActionRatchet:
		err := config.DataBase.Transaction(func(tx *gorm.DB) error {
			return candidate.Ratchet(tx, decision.RefPrice, decision.StopPrice)
		})
		if err == errs.ErrTradeStateConflict {
			return nil
		}
		return err

	case ActionTrigger:
		return e.trigger(candidate, decision.Leg)
	}

	return nil
}

func (e *Evaluator) trigger(candidate *models.ConditionalOrder, leg types.ConditionalLeg) error {
	// The claim is the optimistic lock: losing it means another run
	// owns the row right now.
	err := candidate.ClaimTriggering(config.DataBase, e.StaleAfter, e.AttemptCap)
	if err == errs.ErrTradeStateConflict {
		metrics.ConditionalTriggers.WithLabelValues("lost_claim").Inc()
		return nil
	}
	if err != nil {
		return err
	}

	placed, placeErr := e.Placer.PlaceConditional(candidate, leg)
	if placeErr == nil {
		if err := candidate.MarkTriggered(config.DataBase, leg, placed.ID); err != nil {
			return err
		}

		metrics.ConditionalTriggers.WithLabelValues("triggered").Inc()
		e.notify(candidate, "conditional_order_triggered")
		return nil
	}

	if candidate.AttemptCount >= e.AttemptCap {
		if err := candidate.MarkFailed(config.DataBase, placeErr.Error()); err != nil {
			return err
		}

		metrics.ConditionalTriggers.WithLabelValues("failed").Inc()
		e.notify(candidate, "conditional_order_failed")
		return nil
	}

	if err := candidate.ReleaseToActive(config.DataBase); err != nil {
		return err
	}

	metrics.ConditionalTriggers.WithLabelValues("retry").Inc()
	return nil
}

func (e *Evaluator) notify(candidate *models.ConditionalOrder, event string) {
	member, err := models.GetMember(candidate.MemberID)
	if err != nil {
		return
	}

	mq_client.EnqueueEvent("private", member.UID, event, candidate)
}
