package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zenithex/zenithex/errs"
	"github.com/zenithex/zenithex/types"
)

// ConditionalOrder is a stop-limit, OCO or trailing-stop instruction
// that only becomes a live order once its trigger condition is met.
// The status column plus attempt_count/last_attempt_at is the
// optimistic lock: two evaluator runs racing for the same row resolve
// through the conditional UPDATE in ClaimTriggering, never through an
// in-process mutex.
type ConditionalOrder struct {
	ID                int64                   `json:"id" gorm:"primaryKey"`
	UUID              uuid.UUID               `json:"uuid" gorm:"default:gen_random_uuid()"`
	MemberID          uint64                  `json:"member_id" validate:"required"`
	MarketID          string                  `json:"market_id" validate:"required"`
	Kind              types.ConditionalKind   `json:"kind" validate:"required"`
	Side              types.OrderSide         `json:"side" validate:"required"`
	Quantity          decimal.Decimal         `json:"quantity" validate:"ValidateQuantity"`
	TriggerPrice      decimal.NullDecimal     `json:"trigger_price"`
	LimitPrice        decimal.NullDecimal     `json:"limit_price"`
	TakeProfitPrice   decimal.NullDecimal     `json:"take_profit_price"`
	TrailBps          int64                   `json:"trail_bps" gorm:"default:0"`
	ActivationPrice   decimal.NullDecimal     `json:"activation_price"`
	TrailingRefPrice  decimal.NullDecimal     `json:"trailing_ref_price"`
	TrailingStopPrice decimal.NullDecimal     `json:"trailing_stop_price"`
	ActivatedAt       *time.Time              `json:"activated_at"`
	Status            types.ConditionalStatus `json:"status" gorm:"default:active;index"`
	AttemptCount      int64                   `json:"attempt_count" gorm:"default:0"`
	LastAttemptAt     *time.Time              `json:"last_attempt_at"`
	TriggeredLeg      types.ConditionalLeg    `json:"triggered_leg"`
	PlacedOrderID     *int64                  `json:"placed_order_id"`
	FailureReason     string                  `json:"failure_reason"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

func (c ConditionalOrder) ValidateQuantity(quantity decimal.Decimal) bool {
	return quantity.IsPositive()
}

// Armed reports whether a trailing stop has passed its activation
// phase and carries a live ref/stop price pair.
func (c *ConditionalOrder) Armed() bool {
	return c.ActivatedAt != nil && c.TrailingRefPrice.Valid && c.TrailingStopPrice.Valid
}

// EvaluationCandidates loads rows an evaluator run may work on:
// active rows, plus triggering rows whose last attempt is older than
// staleAfter (a crashed run) and still under the attempt cap.
func EvaluationCandidates(tx *gorm.DB, limit int, staleAfter time.Duration, attemptCap int64) ([]*ConditionalOrder, error) {
	var candidates []*ConditionalOrder

	staleBefore := time.Now().Add(-staleAfter)

	err := tx.Where(
		"status = ? OR (status = ? AND last_attempt_at < ? AND attempt_count < ?)",
		types.ConditionalActive, types.ConditionalTriggering, staleBefore, attemptCap,
	).Order("id asc").Limit(limit).Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	return candidates, nil
}

// ClaimTriggering performs the optimistic active -> triggering
// transition, bumping attempt_count and stamping last_attempt_at. A
// zero row count means another run won the row (or it left the
// claimable states) and this run must skip it.
func (c *ConditionalOrder) ClaimTriggering(tx *gorm.DB, staleAfter time.Duration, attemptCap int64) error {
	staleBefore := time.Now().Add(-staleAfter)

	result := tx.Model(&ConditionalOrder{}).
		Where("id = ? AND (status = ? OR (status = ? AND last_attempt_at < ? AND attempt_count < ?))",
			c.ID, types.ConditionalActive, types.ConditionalTriggering, staleBefore, attemptCap).
		Updates(map[string]interface{}{
			"status":          types.ConditionalTriggering,
			"attempt_count":   gorm.Expr("attempt_count + 1"),
			"last_attempt_at": time.Now(),
			"updated_at":      time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrTradeStateConflict
	}

	c.Status = types.ConditionalTriggering
	c.AttemptCount++
	return nil
}

// MarkTriggered records the winning leg and the placed order.
func (c *ConditionalOrder) MarkTriggered(tx *gorm.DB, leg types.ConditionalLeg, placedOrderID int64) error {
	result := tx.Model(&ConditionalOrder{}).
		Where("id = ? AND status = ?", c.ID, types.ConditionalTriggering).
		Updates(map[string]interface{}{
			"status":          types.ConditionalTriggered,
			"triggered_leg":   leg,
			"placed_order_id": placedOrderID,
			"updated_at":      time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrTradeStateConflict
	}

	c.Status = types.ConditionalTriggered
	c.TriggeredLeg = leg
	c.PlacedOrderID = &placedOrderID
	return nil
}

// ReleaseToActive returns a failed attempt to the pool for the next
// cycle.
func (c *ConditionalOrder) ReleaseToActive(tx *gorm.DB) error {
	result := tx.Model(&ConditionalOrder{}).
		Where("id = ? AND status = ?", c.ID, types.ConditionalTriggering).
		Updates(map[string]interface{}{"status": types.ConditionalActive, "updated_at": time.Now()})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrTradeStateConflict
	}

	c.Status = types.ConditionalActive
	return nil
}

// MarkFailed parks the order once the retry budget is exhausted.
func (c *ConditionalOrder) MarkFailed(tx *gorm.DB, reason string) error {
	result := tx.Model(&ConditionalOrder{}).
		Where("id = ? AND status = ?", c.ID, types.ConditionalTriggering).
		Updates(map[string]interface{}{
			"status":         types.ConditionalFailed,
			"failure_reason": reason,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrTradeStateConflict
	}

	c.Status = types.ConditionalFailed
	c.FailureReason = reason
	return nil
}

// Arm records the trailing reference and stop price the first time the
// activation threshold is reached.
func (c *ConditionalOrder) Arm(tx *gorm.DB, refPrice, stopPrice decimal.Decimal) error {
	now := time.Now()

	result := tx.Model(&ConditionalOrder{}).
		Where("id = ? AND status = ? AND activated_at IS NULL", c.ID, types.ConditionalActive).
		Updates(map[string]interface{}{
			"trailing_ref_price":  refPrice,
			"trailing_stop_price": stopPrice,
			"activated_at":        now,
			"updated_at":          now,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrTradeStateConflict
	}

	c.TrailingRefPrice = decimal.NewNullDecimal(refPrice)
	c.TrailingStopPrice = decimal.NewNullDecimal(stopPrice)
	c.ActivatedAt = &now
	return nil
}

// Ratchet advances an armed trailing stop after a favorable move. The
// stop only ever tightens toward the market.
func (c *ConditionalOrder) Ratchet(tx *gorm.DB, refPrice, stopPrice decimal.Decimal) error {
	result := tx.Model(&ConditionalOrder{}).
		Where("id = ? AND status = ? AND activated_at IS NOT NULL", c.ID, types.ConditionalActive).
		Updates(map[string]interface{}{
			"trailing_ref_price":  refPrice,
			"trailing_stop_price": stopPrice,
			"updated_at":          time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrTradeStateConflict
	}

	c.TrailingRefPrice = decimal.NewNullDecimal(refPrice)
	c.TrailingStopPrice = decimal.NewNullDecimal(stopPrice)
	return nil
}

// Cancel takes an unfired conditional order out of the pool.
func (c *ConditionalOrder) Cancel(tx *gorm.DB) error {
	result := tx.Model(&ConditionalOrder{}).
		Where("id = ? AND status IN ?", c.ID, []types.ConditionalStatus{types.ConditionalActive, types.ConditionalTriggering}).
		Updates(map[string]interface{}{"status": types.ConditionalCanceled, "updated_at": time.Now()})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrTradeStateConflict
	}

	c.Status = types.ConditionalCanceled
	return nil
}
