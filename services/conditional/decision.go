package conditional

import (
	"github.com/shopspring/decimal"

	"github.com/zenithex/zenithex/models"
	"github.com/zenithex/zenithex/pkg/fixedpoint"
	"github.com/zenithex/zenithex/types"
)

// Action is what one evaluation cycle decided for a candidate.
type Action int

const (
	ActionNone Action = iota
	ActionTrigger
	ActionArm
	ActionRatchet
)

// Decision carries the action plus the leg to fire or the new
// trailing ref/stop pair.
type Decision struct {
	Action    Action
	Leg       types.ConditionalLeg
	RefPrice  decimal.Decimal
	StopPrice decimal.Decimal
}

var none = Decision{Action: ActionNone}

// Evaluate maps (candidate, current price) to a decision. Pure: the
// caller owns persisting arms, ratchets and trigger claims.
func Evaluate(co *models.ConditionalOrder, price decimal.Decimal) Decision {
	switch co.Kind {
	case types.KindStopLimit:
		return evaluateStopLimit(co, price)
	case types.KindOco:
		return evaluateOco(co, price)
	case types.KindTrailingStop:
		return evaluateTrailingStop(co, price)
	}

	return none
}

// stopCrossed is the directional sense of a stop trigger: a buy stop
// fires when the price rises to the trigger, a sell stop when it
// falls to it.
func stopCrossed(side types.OrderSide, price, trigger decimal.Decimal) bool {
	if side == types.SideBuy {
		return price.GreaterThanOrEqual(trigger)
	}

	return price.LessThanOrEqual(trigger)
}

// takeProfitCrossed is the opposite sense: a sell take-profit fires
// when the price rises to the target, a buy take-profit when it falls
// to it.
func takeProfitCrossed(side types.OrderSide, price, target decimal.Decimal) bool {
	if side == types.SideBuy {
		return price.LessThanOrEqual(target)
	}

	return price.GreaterThanOrEqual(target)
}

func evaluateStopLimit(co *models.ConditionalOrder, price decimal.Decimal) Decision {
	if !co.TriggerPrice.Valid {
		return none
	}

	if stopCrossed(co.Side, price, co.TriggerPrice.Decimal) {
		return Decision{Action: ActionTrigger, Leg: types.LegStop}
	}

	return none
}

// evaluateOco checks both legs each cycle. The stop leg wins whenever
// it fires, even if the take-profit condition is met in the same
// cycle.
func evaluateOco(co *models.ConditionalOrder, price decimal.Decimal) Decision {
	stopMet := co.TriggerPrice.Valid && stopCrossed(co.Side, price, co.TriggerPrice.Decimal)
	takeProfitMet := co.TakeProfitPrice.Valid && takeProfitCrossed(co.Side, price, co.TakeProfitPrice.Decimal)

	if stopMet {
		return Decision{Action: ActionTrigger, Leg: types.LegStop}
	}

	if takeProfitMet {
		return Decision{Action: ActionTrigger, Leg: types.LegTakeProfit}
	}

	return none
}

// trailOffset derives the stop from the reference: below it for a
// sell, above it for a buy, rounded up at the ledger scale.
func trailOffset(side types.OrderSide, ref decimal.Decimal, bps int64) decimal.Decimal {
	if side == types.SideSell {
		return fixedpoint.ApplyBpsOffsetCeil(ref, -bps)
	}

	return fixedpoint.ApplyBpsOffsetCeil(ref, bps)
}

func evaluateTrailingStop(co *models.ConditionalOrder, price decimal.Decimal) Decision {
	if !co.Armed() {
		if co.ActivationPrice.Valid {
			activation := co.ActivationPrice.Decimal
			reached := price.GreaterThanOrEqual(activation)
			if co.Side == types.SideBuy {
				reached = price.LessThanOrEqual(activation)
			}

			if !reached {
				return none
			}
		}

		return Decision{
			Action:    ActionArm,
			RefPrice:  price,
			StopPrice: trailOffset(co.Side, price, co.TrailBps),
		}
	}

	ref := co.TrailingRefPrice.Decimal
	stop := co.TrailingStopPrice.Decimal

	if co.Side == types.SideSell {
		if price.GreaterThan(ref) {
			// Favorable move: the stop only ever rises.
			newStop := decimal.Max(stop, trailOffset(co.Side, price, co.TrailBps))
			return Decision{Action: ActionRatchet, RefPrice: price, StopPrice: newStop}
		}

		if price.LessThanOrEqual(stop) {
			return Decision{Action: ActionTrigger, Leg: types.LegStop}
		}

		return none
	}

	if price.LessThan(ref) {
		// Favorable move for a buy: the stop only ever falls.
		newStop := decimal.Min(stop, trailOffset(co.Side, price, co.TrailBps))
		return Decision{Action: ActionRatchet, RefPrice: price, StopPrice: newStop}
	}

	if price.GreaterThanOrEqual(stop) {
		return Decision{Action: ActionTrigger, Leg: types.LegStop}
	}

	return none
}
