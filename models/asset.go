package models

import (
	"time"

	"github.com/zenithex/zenithex/config"
)

// Asset is a tradable unit identified by (chain, symbol). Decimals is
// the on-chain precision; ledger amounts always carry the internal
// 18-digit scale regardless. Immutable once referenced by any ledger
// row.
type Asset struct {
	ID        uint64    `json:"id" gorm:"primaryKey"`
	Chain     string    `json:"chain" gorm:"uniqueIndex:idx_assets_chain_symbol"`
	Symbol    string    `json:"symbol" gorm:"uniqueIndex:idx_assets_chain_symbol"`
	Decimals  int32     `json:"decimals"`
	CreatedAt time.Time `json:"created_at"`
}

func GetAsset(id uint64) (*Asset, error) {
	var asset *Asset

	result := config.DataBase.First(&asset, "id = ?", id)
	if result.Error != nil {
		return nil, result.Error
	}

	return asset, nil
}
