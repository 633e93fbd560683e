package matching

import (
	"sync"

	rbt "github.com/emirpasic/gods/trees/redblacktree"
	"github.com/shopspring/decimal"

	"github.com/zenithex/zenithex/types"
)

// Book is the in-memory view of one market's resting limit orders,
// kept sorted best-first on red-black trees. The database stays the
// source of truth; the book serves depth reads and worst-case cost
// estimation without a table scan, and is rebuilt from storage on
// startup.
type Book struct {
	sync.RWMutex
	Symbol string

	bids *rbt.Tree
	asks *rbt.Tree
	byID map[int64]*Order
}

func NewBook(symbol string) *Book {
	return &Book{
		Symbol: symbol,
		bids:   rbt.NewWith(Comparator),
		asks:   rbt.NewWith(Comparator),
		byID:   make(map[int64]*Order, 1024),
	}
}

func (b *Book) tree(side types.OrderSide) *rbt.Tree {
	if side == types.SideBuy {
		return b.bids
	}

	return b.asks
}

// Insert places or replaces a resting order.
func (b *Book) Insert(order *Order) {
	b.Lock()
	defer b.Unlock()

	if existing, ok := b.byID[order.ID]; ok {
		b.tree(existing.Side).Remove(existing.Key())
	}

	b.tree(order.Side).Put(order.Key(), order)
	b.byID[order.ID] = order
}

// Reduce shrinks a resting order's remaining quantity, dropping it
// once filled.
func (b *Book) Reduce(id int64, remaining decimal.Decimal) {
	b.Lock()
	defer b.Unlock()

	order, ok := b.byID[id]
	if !ok {
		return
	}

	if remaining.IsPositive() {
		order.Remaining = remaining
		return
	}

	b.tree(order.Side).Remove(order.Key())
	delete(b.byID, id)
}

// Remove drops a resting order, e.g. on cancel.
func (b *Book) Remove(id int64) {
	b.Lock()
	defer b.Unlock()

	order, ok := b.byID[id]
	if !ok {
		return
	}

	b.tree(order.Side).Remove(order.Key())
	delete(b.byID, id)
}

// BestBid returns the highest resting bid price.
func (b *Book) BestBid() (decimal.Decimal, bool) {
	b.RLock()
	defer b.RUnlock()

	node := b.bids.Left()
	if node == nil {
		return decimal.Zero, false
	}

	return node.Value.(*Order).Price, true
}

// BestAsk returns the lowest resting ask price.
func (b *Book) BestAsk() (decimal.Decimal, bool) {
	b.RLock()
	defer b.RUnlock()

	node := b.asks.Left()
	if node == nil {
		return decimal.Zero, false
	}

	return node.Value.(*Order).Price, true
}

// Mid is the midpoint of the best bid and ask, present only when both
// sides have depth.
func (b *Book) Mid() (decimal.Decimal, bool) {
	bid, okBid := b.BestBid()
	ask, okAsk := b.BestAsk()
	if !okBid || !okAsk {
		return decimal.Zero, false
	}

	return bid.Add(ask).Div(decimal.New(2, 0)), true
}

// Depth aggregates one side into price levels, best-first, up to
// limit levels (0 = all).
func (b *Book) Depth(side types.OrderSide, limit int) [][]decimal.Decimal {
	b.RLock()
	defer b.RUnlock()

	levels := make([][]decimal.Decimal, 0)

	it := b.tree(side).Iterator()
	for it.Next() {
		order := it.Value().(*Order)

		n := len(levels)
		if n > 0 && levels[n-1][0].Equal(order.Price) {
			levels[n-1][1] = levels[n-1][1].Add(order.Remaining)
			continue
		}

		if limit > 0 && n == limit {
			break
		}

		levels = append(levels, []decimal.Decimal{order.Price, order.Remaining})
	}

	return levels
}

func (b *Book) Size() int {
	b.RLock()
	defer b.RUnlock()
	return len(b.byID)
}
