package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gookit/validate"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zenithex/zenithex/config"
	"github.com/zenithex/zenithex/errs"
	"github.com/zenithex/zenithex/types"
)

type Order struct {
	ID                int64               `json:"id" gorm:"primaryKey"`
	UUID              uuid.UUID           `json:"uuid" gorm:"default:gen_random_uuid()"`
	MemberID          uint64              `json:"member_id" validate:"required"`
	MarketID          string              `json:"market_id" validate:"required"`
	Side              types.OrderSide     `json:"side" validate:"required"`
	OrdType           types.OrderType     `json:"ord_type" validate:"OrdTypeValidator"`
	Price             decimal.NullDecimal `json:"price" validate:"PriceValidator"`
	Quantity          decimal.Decimal     `json:"quantity" validate:"QuantityValidator"`
	RemainingQuantity decimal.Decimal     `json:"remaining_quantity"`
	Status            types.OrderStatus   `json:"status" gorm:"default:open;index"`
	HoldID            uint64              `json:"hold_id"`
	IdempotencyKey    string              `json:"idempotency_key" gorm:"uniqueIndex:idx_orders_idempotency_key,where:idempotency_key <> ''"`
	TradesCount       int64               `json:"trades_count" gorm:"default:0"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

func (o Order) Messages() map[string]string {
	return validate.MS{
		"required": "market.order.invalid_{field}",
	}
}

func (o Order) OrdTypeValidator(ordType types.OrderType) bool {
	switch ordType {
	case types.TypeLimit:
		return o.Price.Valid && o.Price.Decimal.IsPositive()
	case types.TypeMarket:
		return !o.Price.Valid
	}

	return false
}

func (o Order) PriceValidator(price decimal.NullDecimal) bool {
	if o.OrdType == types.TypeMarket {
		return true // skip
	}

	return price.Decimal.IsPositive()
}

func (o Order) QuantityValidator(quantity decimal.Decimal) bool {
	return quantity.IsPositive()
}

func (o *Order) Market() (*Market, error) {
	return GetMarket(o.MarketID)
}

func (o *Order) IsLimitOrder() bool {
	return o.OrdType == types.TypeLimit
}

func (o *Order) IsMarketOrder() bool {
	return o.OrdType == types.TypeMarket
}

func (o *Order) Filled() bool {
	return o.RemainingQuantity.IsZero()
}

func (o *Order) FilledQuantity() decimal.Decimal {
	return o.Quantity.Sub(o.RemainingQuantity)
}

func (o *Order) Terminal() bool {
	return o.Status == types.StatusFilled || o.Status == types.StatusCanceled
}

// OutcomeAssetID is the asset the order spends: quote for buys, base
// for sells. The order's hold is denominated in it.
func (o *Order) OutcomeAssetID(market *Market) uint64 {
	if o.Side == types.SideBuy {
		return market.QuoteAssetID
	}

	return market.BaseAssetID
}

// IncomeAssetID is the asset the order receives.
func (o *Order) IncomeAssetID(market *Market) uint64 {
	if o.Side == types.SideBuy {
		return market.BaseAssetID
	}

	return market.QuoteAssetID
}

type PriceLevel struct {
	Price  decimal.Decimal
	Amount decimal.Decimal
}

// GetDepth aggregates resting limit orders by price level, best side
// first. Buy depth descends, sell depth ascends.
func GetDepth(tx *gorm.DB, side types.OrderSide, market string) []PriceLevel {
	priceLevels := make([]PriceLevel, 0)

	query := tx.Model(&Order{}).
		Select("price, SUM(remaining_quantity) AS amount").
		Where("market_id = ? AND ord_type = ? AND side = ? AND status IN ?",
			market, types.TypeLimit, side,
			[]types.OrderStatus{types.StatusOpen, types.StatusPartiallyFilled})

	switch side {
	case types.SideBuy:
		query = query.Order("price desc")
	default:
		query = query.Order("price asc")
	}

	query.Group("price").Find(&priceLevels)

	return priceLevels
}

// ComputeLocked is the worst-case cost a hold must reserve before the
// order may enter the book. Market orders sweep the current depth; a
// book too thin to absorb them fails with insufficient liquidity.
func (o *Order) ComputeLocked(tx *gorm.DB) (decimal.Decimal, error) {
	if o.IsLimitOrder() {
		if o.Side == types.SideBuy {
			return o.Price.Decimal.Mul(o.Quantity), nil
		}

		return o.Quantity, nil
	}

	requiredFunds := decimal.Zero
	expectedQuantity := o.Quantity

	var levels []PriceLevel
	if o.Side == types.SideBuy {
		levels = GetDepth(tx, types.SideSell, o.MarketID)
	} else {
		levels = GetDepth(tx, types.SideBuy, o.MarketID)
	}

	for _, level := range levels {
		if expectedQuantity.IsZero() {
			break
		}

		q := decimal.Min(expectedQuantity, level.Amount)
		if o.Side == types.SideBuy {
			requiredFunds = requiredFunds.Add(level.Price.Mul(q))
		} else {
			requiredFunds = requiredFunds.Add(q)
		}
		expectedQuantity = expectedQuantity.Sub(q)
	}

	if !expectedQuantity.IsZero() {
		return decimal.Zero, errs.ErrInsufficientLiquidity
	}

	return requiredFunds, nil
}

// OpenMakers loads the opposite-side resting orders eligible to match
// a taker, locked for update, in price-time priority.
func OpenMakers(tx *gorm.DB, marketID string, takerSide types.OrderSide) ([]*Order, error) {
	var makers []*Order

	makerSide := types.SideSell
	priceOrder := "price asc"
	if takerSide == types.SideSell {
		makerSide = types.SideBuy
		priceOrder = "price desc"
	}

	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("market_id = ? AND side = ? AND ord_type = ? AND status IN ?",
		marketID, makerSide, types.TypeLimit,
		[]types.OrderStatus{types.StatusOpen, types.StatusPartiallyFilled}).
		Order(priceOrder + ", created_at asc, id asc").
		Find(&makers).Error
	if err != nil {
		return nil, err
	}

	return makers, nil
}

func FindOrderByUUID(id uuid.UUID) (*Order, error) {
	var order *Order

	result := config.DataBase.First(&order, "uuid = ?", id)
	if result.Error != nil {
		return nil, errs.ErrNotFound
	}

	return order, nil
}

func FindOrderByIdempotencyKey(tx *gorm.DB, key string) (*Order, bool) {
	var order *Order

	result := tx.First(&order, "idempotency_key = ?", key)
	if result.Error != nil {
		return nil, false
	}

	return order, true
}
