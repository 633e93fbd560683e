package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zenithex/zenithex/errs"
	"github.com/zenithex/zenithex/types"
)

// JournalEntry is an atomic economic event. Reference doubles as the
// idempotency key: a retried posting with an already-used reference is
// rejected with errs.ErrReferenceTaken, which callers treat as "the
// work already happened".
type JournalEntry struct {
	ID        uint64          `json:"id" gorm:"primaryKey"`
	EntryType types.EntryType `json:"entry_type"`
	Reference string          `json:"reference" gorm:"uniqueIndex"`
	Metadata  string          `json:"metadata" gorm:"type:jsonb;default:'{}'"`
	CreatedAt time.Time       `json:"created_at"`
}

type JournalLine struct {
	ID        uint64          `json:"id" gorm:"primaryKey"`
	EntryID   uint64          `json:"entry_id" gorm:"index"`
	AccountID uint64          `json:"account_id" gorm:"index"`
	AssetID   uint64          `json:"asset_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// CheckBalanced verifies the per-asset zero-sum invariant on a line
// set before anything touches the database.
func CheckBalanced(lines []JournalLine) error {
	if len(lines) == 0 {
		return errs.ErrImbalancedEntry
	}

	sums := map[uint64]decimal.Decimal{}
	for _, line := range lines {
		sums[line.AssetID] = sums[line.AssetID].Add(line.Amount)
	}

	for _, sum := range sums {
		if !sum.IsZero() {
			return errs.ErrImbalancedEntry
		}
	}

	return nil
}

// PostEntry writes a balanced journal entry and its lines inside the
// caller's transaction. It fails with ErrImbalancedEntry when any
// asset's lines do not sum to zero (a programmer error that must roll
// the transaction back), with ErrReferenceTaken on a duplicate
// reference, and with ErrInsufficientBalance when a debit would drive
// an account's posted balance negative.
func PostEntry(tx *gorm.DB, entryType types.EntryType, reference string, metadata string, lines []JournalLine) (*JournalEntry, error) {
	if err := CheckBalanced(lines); err != nil {
		return nil, err
	}

	var existing JournalEntry
	result := tx.Where("reference = ?", reference).First(&existing)
	if result.Error == nil {
		return nil, errs.ErrReferenceTaken
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	if metadata == "" {
		metadata = "{}"
	}

	entry := &JournalEntry{
		EntryType: entryType,
		Reference: reference,
		Metadata:  metadata,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}

	debited := map[uint64]bool{}
	for i := range lines {
		lines[i].ID = 0
		lines[i].EntryID = entry.ID

		if lines[i].Amount.IsNegative() {
			debited[lines[i].AccountID] = true
		}
	}

	if err := tx.Create(&lines).Error; err != nil {
		return nil, err
	}

	// Any debited account must still be non-negative once the lines
	// are in. The caller's row locks make this read race-free.
	for accountID := range debited {
		account := &LedgerAccount{ID: accountID}
		posted, err := account.PostedBalance(tx)
		if err != nil {
			return nil, err
		}

		if posted.IsNegative() {
			return nil, errs.ErrInsufficientBalance
		}
	}

	return entry, nil
}
