package matching

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zenithex/zenithex/types"
)

// Order is the matcher's view of an order: no storage, no owner, just
// the fields price-time priority needs.
type Order struct {
	ID        int64
	Side      types.OrderSide
	Type      types.OrderType
	Price     decimal.Decimal
	Remaining decimal.Decimal
	CreatedAt time.Time
}

func (o *Order) Filled() bool {
	return o.Remaining.IsZero()
}

// Crosses reports whether a maker at makerPrice is matchable by this
// taker: market takers cross everything, a buy limit crosses asks at
// or below it, a sell limit crosses bids at or above it.
func (o *Order) Crosses(makerPrice decimal.Decimal) bool {
	if o.Type == types.TypeMarket {
		return true
	}

	if o.Side == types.SideBuy {
		return makerPrice.LessThanOrEqual(o.Price)
	}

	return makerPrice.GreaterThanOrEqual(o.Price)
}

// Key sorts the resting side of a book. Asks order ascending by
// price, bids descending, ties broken by earliest creation then ID.
type Key struct {
	ID        int64
	Side      types.OrderSide
	Price     decimal.Decimal
	CreatedAt time.Time
}

func (o *Order) Key() *Key {
	return &Key{
		ID:        o.ID,
		Side:      o.Side,
		Price:     o.Price,
		CreatedAt: o.CreatedAt,
	}
}

// Comparator orders book keys best-first within one side.
func Comparator(a, b interface{}) int {
	this := a.(*Key)
	that := b.(*Key)

	if this.ID == that.ID {
		return 0
	}

	var byPrice int
	switch {
	case this.Price.LessThan(that.Price):
		byPrice = -1
	case this.Price.GreaterThan(that.Price):
		byPrice = 1
	}

	if byPrice != 0 {
		// Bids iterate best-first from the highest price.
		if this.Side == types.SideBuy {
			return -byPrice
		}

		return byPrice
	}

	switch {
	case this.CreatedAt.Before(that.CreatedAt):
		return -1
	case this.CreatedAt.After(that.CreatedAt):
		return 1
	}

	if this.ID < that.ID {
		return -1
	}

	return 1
}
