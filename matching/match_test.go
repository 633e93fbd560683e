package matching

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zenithex/zenithex/types"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func limitOrder(id int64, side types.OrderSide, price, qty string, at time.Time) *Order {
	return &Order{
		ID:        id,
		Side:      side,
		Type:      types.TypeLimit,
		Price:     dec(price),
		Remaining: dec(qty),
		CreatedAt: at,
	}
}

func marketOrder(id int64, side types.OrderSide, qty string) *Order {
	return &Order{
		ID:        id,
		Side:      side,
		Type:      types.TypeMarket,
		Remaining: dec(qty),
		CreatedAt: t0,
	}
}

func TestMatch_PriceTimePriority(t *testing.T) {
	taker := limitOrder(100, types.SideBuy, "12", "10", t0)
	makers := []*Order{
		limitOrder(1, types.SideSell, "11", "3", t0),
		limitOrder(2, types.SideSell, "10", "4", t0),
		limitOrder(3, types.SideSell, "12", "5", t0),
	}

	result := Match(taker, makers, 0)

	if len(result.Fills) != 3 {
		t.Fatalf("expected 3 fills, got %d", len(result.Fills))
	}

	wantOrder := []struct {
		makerID int64
		price   string
		qty     string
	}{
		{2, "10", "4"},
		{1, "11", "3"},
		{3, "12", "3"},
	}

	for i, want := range wantOrder {
		fill := result.Fills[i]
		if fill.MakerOrderID != want.makerID {
			t.Errorf("fill %d maker = %d, want %d", i, fill.MakerOrderID, want.makerID)
		}
		if !fill.Price.Equal(dec(want.price)) {
			t.Errorf("fill %d price = %s, want %s", i, fill.Price, want.price)
		}
		if !fill.Quantity.Equal(dec(want.qty)) {
			t.Errorf("fill %d quantity = %s, want %s", i, fill.Quantity, want.qty)
		}
	}

	if !result.TakerRemaining.IsZero() {
		t.Errorf("taker remaining = %s, want 0", result.TakerRemaining)
	}
	if !result.MakerRemaining[3].Equal(dec("2")) {
		t.Errorf("maker 3 remaining = %s, want 2", result.MakerRemaining[3])
	}
}

func TestMatch_NoCrossWhenPricesDoNotOverlap(t *testing.T) {
	taker := limitOrder(100, types.SideBuy, "8", "5", t0)
	makers := []*Order{limitOrder(1, types.SideSell, "9", "5", t0)}

	result := Match(taker, makers, 0)

	if len(result.Fills) != 0 {
		t.Fatalf("expected no fills, got %d", len(result.Fills))
	}
	if !result.TakerRemaining.Equal(dec("5")) {
		t.Errorf("taker remaining = %s, want 5 unchanged", result.TakerRemaining)
	}
}

func TestMatch_MakerPriceWins(t *testing.T) {
	taker := limitOrder(100, types.SideSell, "9", "2", t0)
	makers := []*Order{limitOrder(1, types.SideBuy, "10", "2", t0)}

	result := Match(taker, makers, 0)

	if len(result.Fills) != 1 {
		t.Fatalf("expected 1 fill, got %d", len(result.Fills))
	}
	if !result.Fills[0].Price.Equal(dec("10")) {
		t.Errorf("fill price = %s, want maker price 10", result.Fills[0].Price)
	}
}

func TestMatch_TimePriorityAtEqualPrice(t *testing.T) {
	taker := limitOrder(100, types.SideBuy, "10", "1", t0.Add(time.Minute))
	makers := []*Order{
		limitOrder(2, types.SideSell, "10", "3", t0.Add(time.Second)),
		limitOrder(1, types.SideSell, "10", "3", t0),
	}

	result := Match(taker, makers, 0)

	if len(result.Fills) != 1 {
		t.Fatalf("expected 1 fill, got %d", len(result.Fills))
	}
	if result.Fills[0].MakerOrderID != 1 {
		t.Errorf("filled maker %d first, want the earlier maker 1", result.Fills[0].MakerOrderID)
	}
}

func TestMatch_MarketTakerSweepsAllPrices(t *testing.T) {
	taker := marketOrder(100, types.SideSell, "7")
	makers := []*Order{
		limitOrder(1, types.SideBuy, "9", "3", t0),
		limitOrder(2, types.SideBuy, "11", "3", t0),
		limitOrder(3, types.SideBuy, "10", "3", t0),
	}

	result := Match(taker, makers, 0)

	if len(result.Fills) != 3 {
		t.Fatalf("expected 3 fills, got %d", len(result.Fills))
	}

	// Best bid first for a sell taker.
	wantMakers := []int64{2, 3, 1}
	for i, id := range wantMakers {
		if result.Fills[i].MakerOrderID != id {
			t.Errorf("fill %d maker = %d, want %d", i, result.Fills[i].MakerOrderID, id)
		}
	}

	if !result.TakerRemaining.IsZero() {
		t.Errorf("taker remaining = %s, want 0", result.TakerRemaining)
	}
	if !result.MakerRemaining[1].Equal(dec("2")) {
		t.Errorf("maker 1 remaining = %s, want 2", result.MakerRemaining[1])
	}
}

func TestMatch_MaxFillsCap(t *testing.T) {
	taker := limitOrder(100, types.SideBuy, "12", "10", t0)
	makers := []*Order{
		limitOrder(1, types.SideSell, "10", "1", t0),
		limitOrder(2, types.SideSell, "11", "1", t0),
		limitOrder(3, types.SideSell, "12", "1", t0),
	}

	result := Match(taker, makers, 2)

	if len(result.Fills) != 2 {
		t.Fatalf("expected cap at 2 fills, got %d", len(result.Fills))
	}
	if !result.TakerRemaining.Equal(dec("8")) {
		t.Errorf("taker remaining = %s, want 8", result.TakerRemaining)
	}
}

func TestMatch_IgnoresSameSideAndFilledMakers(t *testing.T) {
	taker := limitOrder(100, types.SideBuy, "12", "5", t0)
	makers := []*Order{
		limitOrder(1, types.SideBuy, "11", "3", t0),
		{ID: 2, Side: types.SideSell, Type: types.TypeLimit, Price: dec("10"), Remaining: decimal.Zero, CreatedAt: t0},
	}

	result := Match(taker, makers, 0)

	if len(result.Fills) != 0 {
		t.Fatalf("expected no fills, got %d", len(result.Fills))
	}
}

func TestMatch_DoesNotMutateInputs(t *testing.T) {
	taker := limitOrder(100, types.SideBuy, "12", "10", t0)
	maker := limitOrder(1, types.SideSell, "10", "4", t0)

	Match(taker, []*Order{maker}, 0)

	if !taker.Remaining.Equal(dec("10")) {
		t.Errorf("taker input mutated: remaining = %s", taker.Remaining)
	}
	if !maker.Remaining.Equal(dec("4")) {
		t.Errorf("maker input mutated: remaining = %s", maker.Remaining)
	}
}
