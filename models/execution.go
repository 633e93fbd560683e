package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zenithex/zenithex/types"
)

// Execution is an immutable fill record. Fees are denominated in the
// asset each side received: base for the buyer, quote for the seller.
type Execution struct {
	ID              uint64          `json:"id" gorm:"primaryKey"`
	MarketID        string          `json:"market_id" gorm:"index"`
	MakerOrderID    int64           `json:"maker_order_id" gorm:"index"`
	TakerOrderID    int64           `json:"taker_order_id" gorm:"index"`
	Price           decimal.Decimal `json:"price" validate:"ValidatePrice"`
	Quantity        decimal.Decimal `json:"quantity" validate:"ValidateQuantity"`
	Total           decimal.Decimal `json:"total"`
	MakerFee        decimal.Decimal `json:"maker_fee" gorm:"default:0.0"`
	TakerFee        decimal.Decimal `json:"taker_fee" gorm:"default:0.0"`
	MakerFeeAssetID uint64          `json:"maker_fee_asset_id"`
	TakerFeeAssetID uint64          `json:"taker_fee_asset_id"`
	TakerSide       types.OrderSide `json:"taker_side"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (e Execution) ValidatePrice(price decimal.Decimal) bool {
	return price.IsPositive()
}

func (e Execution) ValidateQuantity(quantity decimal.Decimal) bool {
	return quantity.IsPositive()
}
