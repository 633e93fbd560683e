package matching

import (
	"testing"
	"time"

	"github.com/zenithex/zenithex/types"
)

func TestBook_BestAndMid(t *testing.T) {
	book := NewBook("btcusdt")

	if _, ok := book.Mid(); ok {
		t.Error("empty book must have no mid price")
	}

	book.Insert(limitOrder(1, types.SideBuy, "9", "1", t0))
	book.Insert(limitOrder(2, types.SideBuy, "10", "1", t0))
	book.Insert(limitOrder(3, types.SideSell, "12", "1", t0))
	book.Insert(limitOrder(4, types.SideSell, "11", "1", t0))

	bid, ok := book.BestBid()
	if !ok || !bid.Equal(dec("10")) {
		t.Errorf("best bid = %s, want 10", bid)
	}

	ask, ok := book.BestAsk()
	if !ok || !ask.Equal(dec("11")) {
		t.Errorf("best ask = %s, want 11", ask)
	}

	mid, ok := book.Mid()
	if !ok || !mid.Equal(dec("10.5")) {
		t.Errorf("mid = %s, want 10.5", mid)
	}
}

func TestBook_ReduceAndRemove(t *testing.T) {
	book := NewBook("btcusdt")
	book.Insert(limitOrder(1, types.SideSell, "11", "5", t0))

	book.Reduce(1, dec("2"))
	depth := book.Depth(types.SideSell, 0)
	if len(depth) != 1 || !depth[0][1].Equal(dec("2")) {
		t.Fatalf("depth after reduce = %v", depth)
	}

	book.Reduce(1, dec("0"))
	if book.Size() != 0 {
		t.Errorf("book size after full fill = %d, want 0", book.Size())
	}

	book.Insert(limitOrder(2, types.SideBuy, "9", "5", t0))
	book.Remove(2)
	if book.Size() != 0 {
		t.Errorf("book size after remove = %d, want 0", book.Size())
	}
}

func TestBook_DepthAggregatesPriceLevels(t *testing.T) {
	book := NewBook("btcusdt")
	book.Insert(limitOrder(1, types.SideSell, "11", "2", t0))
	book.Insert(limitOrder(2, types.SideSell, "11", "3", t0.Add(time.Second)))
	book.Insert(limitOrder(3, types.SideSell, "12", "1", t0))

	depth := book.Depth(types.SideSell, 0)
	if len(depth) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(depth))
	}
	if !depth[0][0].Equal(dec("11")) || !depth[0][1].Equal(dec("5")) {
		t.Errorf("level 0 = %v, want [11 5]", depth[0])
	}
	if !depth[1][0].Equal(dec("12")) || !depth[1][1].Equal(dec("1")) {
		t.Errorf("level 1 = %v, want [12 1]", depth[1])
	}
}
