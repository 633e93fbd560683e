package pricing

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zenithex/zenithex/matching"
	"github.com/zenithex/zenithex/pkg/fixedpoint"
	"github.com/zenithex/zenithex/types"
)

// BookSource exposes the in-memory books for mid-price fallback.
type BookSource interface {
	Book(marketID string) *matching.Book
}

// Pricer resolves market prices for the conditional evaluator and
// convert quoting: freshest execution price first, book mid as the
// fallback, fronted by the bounded TTL cache.
type Pricer struct {
	DB    *gorm.DB
	Books BookSource
	Cache *Cache
}

func NewPricer(db *gorm.DB, books BookSource) *Pricer {
	return &Pricer{
		DB:    db,
		Books: books,
		Cache: NewCache(1024, 2*time.Second),
	}
}

// LastPrice implements the evaluator's PriceSource. "No price" is a
// legitimate answer for a dead market, reported via ok.
func (p *Pricer) LastPrice(marketID string) (decimal.Decimal, bool) {
	if price, ok := p.Cache.Get(marketID); ok {
		return price, true
	}

	var row struct {
		Price decimal.Decimal
		Found bool
	}

	err := p.DB.Raw(
		"SELECT price, TRUE AS found FROM executions WHERE market_id = ? ORDER BY id DESC LIMIT 1",
		marketID,
	).Scan(&row).Error
	if err == nil && row.Found && row.Price.IsPositive() {
		p.Cache.Set(marketID, row.Price)
		return row.Price, true
	}

	if p.Books != nil {
		if mid, ok := p.Books.Book(marketID).Mid(); ok {
			p.Cache.Set(marketID, mid)
			return mid, true
		}
	}

	return decimal.Zero, false
}

// Quote is a convert quote: the gross amount at the current price
// minus the platform spread.
type Quote struct {
	MarketID  string          `json:"market"`
	Side      types.OrderSide `json:"side"`
	Amount    decimal.Decimal `json:"amount"`
	Price     decimal.Decimal `json:"price"`
	Gross     decimal.Decimal `json:"gross"`
	SpreadFee decimal.Decimal `json:"spread_fee"`
	Net       decimal.Decimal `json:"net"`
}

// ConvertQuote prices an amount of base in quote terms with spreadBps
// taken off the top, fee rounding always in the platform's favor.
func (p *Pricer) ConvertQuote(marketID string, side types.OrderSide, amount decimal.Decimal, spreadBps int64) (*Quote, bool) {
	price, ok := p.LastPrice(marketID)
	if !ok {
		return nil, false
	}

	gross := fixedpoint.MulRound(amount, price)
	fee := fixedpoint.BpsFeeCeil(gross, spreadBps)

	net, err := fixedpoint.SubNonNegative(gross, fee)
	if err != nil {
		net = decimal.Zero
	}

	return &Quote{
		MarketID:  marketID,
		Side:      side,
		Amount:    amount,
		Price:     price,
		Gross:     gross,
		SpreadFee: fee,
		Net:       net,
	}, true
}
