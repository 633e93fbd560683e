package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zenithex/zenithex/errs"
	"github.com/zenithex/zenithex/types"
)

// Hold reserves posted funds without moving them: order margin, P2P
// escrow and vault locks all go through it. Active holds shrink the
// available balance; release returns the funds with no ledger effect;
// consume pairs the hold with the journal entry that moved the funds.
type Hold struct {
	ID              uint64            `json:"id" gorm:"primaryKey"`
	AccountID       uint64            `json:"account_id" gorm:"index"`
	AssetID         uint64            `json:"asset_id"`
	Amount          decimal.Decimal   `json:"amount" validate:"ValidateAmount"`
	RemainingAmount decimal.Decimal   `json:"remaining_amount"`
	Status          types.HoldStatus  `json:"status" gorm:"default:active;index"`
	Reason          types.HoldReason  `json:"reason"`
	EntryID         *uint64           `json:"entry_id"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (h Hold) ValidateAmount(amount decimal.Decimal) bool {
	return amount.IsPositive()
}

// CreateHold reserves amount against the account's available balance.
// The caller must already hold the account row lock (FindOrCreateAccount
// takes it); the availability read then cannot race another hold.
func CreateHold(tx *gorm.DB, account *LedgerAccount, amount decimal.Decimal, reason types.HoldReason) (*Hold, error) {
	if !amount.IsPositive() {
		return nil, errs.ErrInvalidAmount
	}

	available, err := account.AvailableBalance(tx)
	if err != nil {
		return nil, err
	}

	if available.LessThan(amount) {
		return nil, errs.ErrInsufficientBalance
	}

	hold := &Hold{
		AccountID:       account.ID,
		AssetID:         account.AssetID,
		Amount:          amount,
		RemainingAmount: amount,
		Status:          types.HoldActive,
		Reason:          reason,
	}

	if err := tx.Create(hold).Error; err != nil {
		return nil, err
	}

	return hold, nil
}

// Release returns the reserved funds to the available balance. No
// ledger effect. Guarded by status so a consumed or already-released
// hold cannot be released twice.
func (h *Hold) Release(tx *gorm.DB) error {
	result := tx.Model(&Hold{}).
		Where("id = ? AND status = ?", h.ID, types.HoldActive).
		Updates(map[string]interface{}{"status": types.HoldReleased, "updated_at": time.Now()})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrTradeStateConflict
	}

	h.Status = types.HoldReleased
	return nil
}

// Consume marks the hold fully drained by the given journal entry.
func (h *Hold) Consume(tx *gorm.DB, entryID uint64) error {
	result := tx.Model(&Hold{}).
		Where("id = ? AND status = ?", h.ID, types.HoldActive).
		Updates(map[string]interface{}{
			"status":     types.HoldConsumed,
			"entry_id":   entryID,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrTradeStateConflict
	}

	h.Status = types.HoldConsumed
	h.EntryID = &entryID
	return nil
}

// Decrement drains part of the hold, leaving it active until the
// remaining amount hits zero, at which point it flips to consumed.
// Partial escrow releases and fill-by-fill order settlement use this.
func (h *Hold) Decrement(tx *gorm.DB, amount decimal.Decimal, entryID uint64) error {
	if !amount.IsPositive() {
		return errs.ErrInvalidAmount
	}

	result := tx.Model(&Hold{}).
		Where("id = ? AND status = ? AND remaining_amount >= ?", h.ID, types.HoldActive, amount).
		Updates(map[string]interface{}{
			"remaining_amount": gorm.Expr("remaining_amount - ?", amount),
			"entry_id":         entryID,
			"updated_at":       time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrTradeStateConflict
	}

	if err := tx.First(h, "id = ?", h.ID).Error; err != nil {
		return err
	}

	if h.RemainingAmount.IsZero() {
		return h.Consume(tx, entryID)
	}

	return nil
}
