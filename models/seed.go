package models

import (
	"io/ioutil"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
	"gopkg.in/yaml.v2"

	"github.com/zenithex/zenithex/config"
)

type assetSeed struct {
	ID       uint64 `yaml:"id"`
	Chain    string `yaml:"chain"`
	Symbol   string `yaml:"symbol"`
	Decimals int32  `yaml:"decimals"`
}

type marketSeed struct {
	Symbol       string `yaml:"symbol"`
	BaseAssetID  uint64 `yaml:"base_asset_id"`
	QuoteAssetID uint64 `yaml:"quote_asset_id"`
	PriceStep    string `yaml:"price_step"`
	AmountStep   string `yaml:"amount_step"`
	MinAmount    string `yaml:"min_amount"`
	MakerFeeBps  int64  `yaml:"maker_fee_bps"`
	TakerFeeBps  int64  `yaml:"taker_fee_bps"`
	Enabled      bool   `yaml:"enabled"`
}

type seedFile struct {
	Assets  []assetSeed  `yaml:"assets"`
	Markets []marketSeed `yaml:"markets"`
}

// LoadSeeds upserts assets and markets from a YAML seed file. Reruns
// are safe: existing rows are updated in place, never duplicated.
func LoadSeeds(path string) error {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}

	var seeds seedFile
	if err := yaml.Unmarshal(raw, &seeds); err != nil {
		return err
	}

	for _, seed := range seeds.Assets {
		asset := Asset{
			ID:       seed.ID,
			Chain:    seed.Chain,
			Symbol:   seed.Symbol,
			Decimals: seed.Decimals,
		}

		err := config.DataBase.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&asset).Error
		if err != nil {
			return err
		}
	}

	for _, seed := range seeds.Markets {
		priceStep, err := decimal.NewFromString(seed.PriceStep)
		if err != nil {
			return err
		}
		amountStep, err := decimal.NewFromString(seed.AmountStep)
		if err != nil {
			return err
		}
		minAmount, err := decimal.NewFromString(seed.MinAmount)
		if err != nil {
			return err
		}

		market := Market{
			Symbol:       seed.Symbol,
			BaseAssetID:  seed.BaseAssetID,
			QuoteAssetID: seed.QuoteAssetID,
			PriceStep:    priceStep,
			AmountStep:   amountStep,
			MinAmount:    minAmount,
			MakerFeeBps:  seed.MakerFeeBps,
			TakerFeeBps:  seed.TakerFeeBps,
			Enabled:      seed.Enabled,
		}

		err = config.DataBase.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			UpdateAll: true,
		}).Create(&market).Error
		if err != nil {
			return err
		}
	}

	config.Logger.Infof("[seed] loaded %d assets, %d markets from %s",
		len(seeds.Assets), len(seeds.Markets), path)

	return nil
}
