package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zenithex/zenithex/errs"
	"github.com/zenithex/zenithex/types"
)

// TwapOrder slices a large parent order into smaller taker orders
// spaced over time. Slice submission is keyed (twap_id, slice_index)
// so a rerun after a crash cannot place a slice twice.
type TwapOrder struct {
	ID               int64            `json:"id" gorm:"primaryKey"`
	UUID             uuid.UUID        `json:"uuid" gorm:"default:gen_random_uuid()"`
	MemberID         uint64           `json:"member_id" validate:"required"`
	MarketID         string           `json:"market_id" validate:"required"`
	Side             types.OrderSide  `json:"side" validate:"required"`
	TotalQuantity    decimal.Decimal  `json:"total_quantity" validate:"ValidateTotalQuantity"`
	SlicesTotal      int64            `json:"slices_total"`
	SliceInterval    int64            `json:"slice_interval"`
	ExecutedSlices   int64            `json:"executed_slices" gorm:"default:0"`
	ExecutedQuantity decimal.Decimal  `json:"executed_quantity" gorm:"default:0.0"`
	Status           types.TwapStatus `json:"status" gorm:"default:active;index"`
	StartAt          time.Time        `json:"start_at"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (t TwapOrder) ValidateTotalQuantity(quantity decimal.Decimal) bool {
	return quantity.IsPositive()
}

func ActiveTwapOrders(tx *gorm.DB, limit int) ([]*TwapOrder, error) {
	var twaps []*TwapOrder

	err := tx.Where("status = ?", types.TwapActive).Order("id asc").Limit(limit).Find(&twaps).Error
	if err != nil {
		return nil, err
	}

	return twaps, nil
}

// RecordSlice advances the slice cursor after a successful submission.
// Guarded on executed_slices so a concurrent scheduler run cannot
// double-count the same slice.
func (t *TwapOrder) RecordSlice(tx *gorm.DB, sliceIndex int64, quantity decimal.Decimal) error {
	result := tx.Model(&TwapOrder{}).
		Where("id = ? AND status = ? AND executed_slices = ?", t.ID, types.TwapActive, sliceIndex).
		Updates(map[string]interface{}{
			"executed_slices":   sliceIndex + 1,
			"executed_quantity": gorm.Expr("executed_quantity + ?", quantity),
			"updated_at":        time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrTradeStateConflict
	}

	t.ExecutedSlices = sliceIndex + 1
	t.ExecutedQuantity = t.ExecutedQuantity.Add(quantity)
	return nil
}

func (t *TwapOrder) MarkCompleted(tx *gorm.DB) error {
	result := tx.Model(&TwapOrder{}).
		Where("id = ? AND status = ?", t.ID, types.TwapActive).
		Updates(map[string]interface{}{"status": types.TwapCompleted, "updated_at": time.Now()})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrTradeStateConflict
	}

	t.Status = types.TwapCompleted
	return nil
}
