package matching

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PlannedFill is one prospective execution produced by Match. The
// caller persists it as an Execution in the same transaction that
// decrements both orders' remaining quantity.
type PlannedFill struct {
	MakerOrderID int64
	Price        decimal.Decimal
	Quantity     decimal.Decimal
}

// Result carries the fills plus both sides' final remainders.
type Result struct {
	Fills          []PlannedFill
	TakerRemaining decimal.Decimal
	MakerRemaining map[int64]decimal.Decimal
}

// Match runs one taker against a candidate set of resting makers and
// plans the fills. Pure and deterministic: no I/O, no clock, no
// mutation of the inputs. Fills happen at the maker's price, so the
// taker only ever sees price improvement over its limit.
//
// maxFills <= 0 means unlimited.
func Match(taker *Order, makers []*Order, maxFills int) Result {
	result := Result{
		Fills:          []PlannedFill{},
		TakerRemaining: taker.Remaining,
		MakerRemaining: map[int64]decimal.Decimal{},
	}

	candidates := make([]*Order, 0, len(makers))
	for _, maker := range makers {
		if maker.Side == taker.Side || maker.Filled() {
			continue
		}

		if !taker.Crosses(maker.Price) {
			continue
		}

		candidates = append(candidates, maker)
		result.MakerRemaining[maker.ID] = maker.Remaining
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return Comparator(candidates[i].Key(), candidates[j].Key()) < 0
	})

	for _, maker := range candidates {
		if result.TakerRemaining.IsZero() {
			break
		}

		if maxFills > 0 && len(result.Fills) >= maxFills {
			break
		}

		quantity := decimal.Min(result.TakerRemaining, result.MakerRemaining[maker.ID])
		if !quantity.IsPositive() {
			continue
		}

		result.Fills = append(result.Fills, PlannedFill{
			MakerOrderID: maker.ID,
			Price:        maker.Price,
			Quantity:     quantity,
		})

		result.TakerRemaining = result.TakerRemaining.Sub(quantity)
		result.MakerRemaining[maker.ID] = result.MakerRemaining[maker.ID].Sub(quantity)
	}

	return result
}
