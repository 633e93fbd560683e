package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerAccount is keyed (member_id, asset_id) and created lazily on
// first use, never deleted. It carries no balance column: the posted
// balance is always the sum of the account's journal lines, so there
// is no stored figure to drift out of sync.
type LedgerAccount struct {
	ID        uint64    `json:"id" gorm:"primaryKey"`
	MemberID  uint64    `json:"member_id" gorm:"uniqueIndex:idx_accounts_member_asset"`
	AssetID   uint64    `json:"asset_id" gorm:"uniqueIndex:idx_accounts_member_asset"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LedgerAccount) TableName() string {
	return "ledger_accounts"
}

// FindOrCreateAccount loads the (member, asset) account under a row
// lock, creating it on first use. The lock serializes concurrent hold
// creation and journal posting against the same account.
func FindOrCreateAccount(tx *gorm.DB, memberID, assetID uint64) (*LedgerAccount, error) {
	var account *LedgerAccount

	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_id = ? AND asset_id = ?", memberID, assetID).
		First(&account)

	if result.Error == nil {
		return account, nil
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	account = &LedgerAccount{MemberID: memberID, AssetID: assetID}
	if err := tx.Create(account).Error; err != nil {
		return nil, err
	}

	return account, nil
}

// FeeCollectorAccount returns the platform account collecting fees in
// the given asset.
func FeeCollectorAccount(tx *gorm.DB, assetID uint64) (*LedgerAccount, error) {
	return FindOrCreateAccount(tx, FeeCollectorMemberID, assetID)
}

type sumRow struct {
	Sum decimal.Decimal
}

// PostedBalance is the sum of the account's journal line amounts.
func (a *LedgerAccount) PostedBalance(tx *gorm.DB) (decimal.Decimal, error) {
	var row sumRow

	err := tx.Raw(
		"SELECT COALESCE(SUM(amount), 0) AS sum FROM journal_lines WHERE account_id = ?",
		a.ID,
	).Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}

	return row.Sum, nil
}

// HeldAmount is the sum of the account's active holds' remaining
// amounts.
func (a *LedgerAccount) HeldAmount(tx *gorm.DB) (decimal.Decimal, error) {
	var row sumRow

	err := tx.Raw(
		"SELECT COALESCE(SUM(remaining_amount), 0) AS sum FROM holds WHERE account_id = ? AND status = 'active'",
		a.ID,
	).Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}

	return row.Sum, nil
}

// AvailableBalance is posted minus held, computed in one statement so
// both figures come from the same snapshot. A hold created between
// two separate reads could otherwise slip past the check.
func (a *LedgerAccount) AvailableBalance(tx *gorm.DB) (decimal.Decimal, error) {
	var row sumRow

	err := tx.Raw(
		`SELECT COALESCE((SELECT SUM(amount) FROM journal_lines WHERE account_id = ?), 0)
		      - COALESCE((SELECT SUM(remaining_amount) FROM holds WHERE account_id = ? AND status = 'active'), 0) AS sum`,
		a.ID, a.ID,
	).Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}

	return row.Sum, nil
}
