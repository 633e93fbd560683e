package conditional

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zenithex/zenithex/models"
	"github.com/zenithex/zenithex/types"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func stopLimit(side types.OrderSide, trigger string) *models.ConditionalOrder {
	return &models.ConditionalOrder{
		Kind:         types.KindStopLimit,
		Side:         side,
		TriggerPrice: nullDec(trigger),
		LimitPrice:   nullDec(trigger),
		Quantity:     dec("1"),
	}
}

func TestEvaluateStopLimit(t *testing.T) {
	buyStop := stopLimit(types.SideBuy, "100")

	if d := Evaluate(buyStop, dec("99")); d.Action != ActionNone {
		t.Errorf("buy stop below trigger must not fire, got %v", d.Action)
	}
	if d := Evaluate(buyStop, dec("100")); d.Action != ActionTrigger || d.Leg != types.LegStop {
		t.Errorf("buy stop at trigger must fire the stop leg, got %+v", d)
	}

	sellStop := stopLimit(types.SideSell, "100")

	if d := Evaluate(sellStop, dec("101")); d.Action != ActionNone {
		t.Errorf("sell stop above trigger must not fire, got %v", d.Action)
	}
	if d := Evaluate(sellStop, dec("99")); d.Action != ActionTrigger {
		t.Errorf("sell stop below trigger must fire, got %v", d.Action)
	}
}

func TestEvaluateOcoStopBeatsTakeProfit(t *testing.T) {
	// Sell OCO protecting a long: stop below, take-profit above.
	oco := &models.ConditionalOrder{
		Kind:            types.KindOco,
		Side:            types.SideSell,
		TriggerPrice:    nullDec("90"),
		LimitPrice:      nullDec("89"),
		TakeProfitPrice: nullDec("110"),
		Quantity:        dec("1"),
	}

	if d := Evaluate(oco, dec("100")); d.Action != ActionNone {
		t.Errorf("neither leg met, got %+v", d)
	}

	if d := Evaluate(oco, dec("111")); d.Action != ActionTrigger || d.Leg != types.LegTakeProfit {
		t.Errorf("take-profit only: want take_profit leg, got %+v", d)
	}

	if d := Evaluate(oco, dec("90")); d.Action != ActionTrigger || d.Leg != types.LegStop {
		t.Errorf("stop met: want stop leg, got %+v", d)
	}

	// Degenerate configuration where both cross at once: the stop
	// still takes priority.
	both := &models.ConditionalOrder{
		Kind:            types.KindOco,
		Side:            types.SideSell,
		TriggerPrice:    nullDec("100"),
		TakeProfitPrice: nullDec("90"),
		Quantity:        dec("1"),
	}
	if d := Evaluate(both, dec("95")); d.Action != ActionTrigger || d.Leg != types.LegStop {
		t.Errorf("both legs met: want stop leg, got %+v", d)
	}
}

func trailingSell(trailBps int64, activation string) *models.ConditionalOrder {
	co := &models.ConditionalOrder{
		Kind:     types.KindTrailingStop,
		Side:     types.SideSell,
		TrailBps: trailBps,
		Quantity: dec("1"),
	}
	if activation != "" {
		co.ActivationPrice = nullDec(activation)
	}
	return co
}

func arm(co *models.ConditionalOrder, ref, stop string) {
	now := time.Now()
	co.TrailingRefPrice = nullDec(ref)
	co.TrailingStopPrice = nullDec(stop)
	co.ActivatedAt = &now
}

func TestEvaluateTrailingStopActivation(t *testing.T) {
	co := trailingSell(100, "105")

	if d := Evaluate(co, dec("104")); d.Action != ActionNone {
		t.Errorf("below activation threshold, got %v", d.Action)
	}

	d := Evaluate(co, dec("105"))
	if d.Action != ActionArm {
		t.Fatalf("at activation threshold: want arm, got %v", d.Action)
	}
	if !d.RefPrice.Equal(dec("105")) {
		t.Errorf("ref = %s, want 105", d.RefPrice)
	}
	// 105 * (10000-100)/10000 = 103.95
	if !d.StopPrice.Equal(dec("103.95")) {
		t.Errorf("stop = %s, want 103.95", d.StopPrice)
	}
}

func TestEvaluateTrailingStopRatchetNeverLoosens(t *testing.T) {
	co := trailingSell(100, "")
	arm(co, "100", "99")

	stop := co.TrailingStopPrice.Decimal
	for _, price := range []string{"101", "102", "101.5", "103", "102.9"} {
		d := Evaluate(co, dec(price))

		if d.Action == ActionRatchet {
			if d.StopPrice.LessThan(stop) {
				t.Fatalf("sell stop loosened from %s to %s at price %s", stop, d.StopPrice, price)
			}

			stop = d.StopPrice
			co.TrailingRefPrice = decimal.NewNullDecimal(d.RefPrice)
			co.TrailingStopPrice = decimal.NewNullDecimal(d.StopPrice)
		}
	}

	// 103 * 0.99 = 101.97 is the tightest stop seen.
	if !stop.Equal(dec("101.97")) {
		t.Errorf("final stop = %s, want 101.97", stop)
	}
}

func TestEvaluateTrailingStopTriggers(t *testing.T) {
	co := trailingSell(100, "")
	arm(co, "100", "99")

	if d := Evaluate(co, dec("99.5")); d.Action != ActionNone {
		t.Errorf("between stop and ref: want none, got %v", d.Action)
	}

	if d := Evaluate(co, dec("99")); d.Action != ActionTrigger || d.Leg != types.LegStop {
		t.Errorf("at stop: want trigger, got %+v", d)
	}
}

func TestEvaluateTrailingBuyRatchetsDown(t *testing.T) {
	co := &models.ConditionalOrder{
		Kind:     types.KindTrailingStop,
		Side:     types.SideBuy,
		TrailBps: 100,
		Quantity: dec("1"),
	}
	arm(co, "100", "101")

	d := Evaluate(co, dec("98"))
	if d.Action != ActionRatchet {
		t.Fatalf("favorable drop: want ratchet, got %v", d.Action)
	}
	// 98 * 1.01 = 98.98, below the old stop.
	if !d.StopPrice.Equal(dec("98.98")) {
		t.Errorf("stop = %s, want 98.98", d.StopPrice)
	}

	co.TrailingRefPrice = decimal.NewNullDecimal(d.RefPrice)
	co.TrailingStopPrice = decimal.NewNullDecimal(d.StopPrice)

	if d := Evaluate(co, dec("99")); d.Action != ActionTrigger {
		t.Errorf("price back above stop: want trigger, got %v", d.Action)
	}
}
