package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zenithex/zenithex/config"
	"github.com/zenithex/zenithex/pkg/fixedpoint"
)

type Market struct {
	Symbol       string          `json:"symbol" gorm:"primaryKey"`
	BaseAssetID  uint64          `json:"base_asset_id"`
	QuoteAssetID uint64          `json:"quote_asset_id"`
	PriceStep    decimal.Decimal `json:"price_step" gorm:"default:0.0"`
	AmountStep   decimal.Decimal `json:"amount_step" gorm:"default:0.0"`
	MinAmount    decimal.Decimal `json:"min_amount" gorm:"default:0.0"`
	MakerFeeBps  int64           `json:"maker_fee_bps" gorm:"default:0"`
	TakerFeeBps  int64           `json:"taker_fee_bps" gorm:"default:0"`
	Enabled      bool            `json:"enabled" gorm:"default:true"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func GetMarket(symbol string) (*Market, error) {
	market := &Market{}

	result := config.DataBase.First(market, "symbol = ?", symbol)
	if result.Error != nil {
		return nil, result.Error
	}

	return market, nil
}

// RoundPrice floors a price to the market tick.
func (m *Market) RoundPrice(price decimal.Decimal) decimal.Decimal {
	return fixedpoint.QuantizeDownToStep(price, m.PriceStep)
}

// RoundAmount floors a quantity to the market lot, preventing dust
// that violates the exchange step rules.
func (m *Market) RoundAmount(amount decimal.Decimal) decimal.Decimal {
	return fixedpoint.QuantizeDownToStep(amount, m.AmountStep)
}
