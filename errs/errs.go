package errs

import "errors"

// Caller-facing outcomes keep the dotted machine codes the API layer
// returns verbatim.
var (
	ErrInvalidAmount         = errors.New("core.invalid_amount")
	ErrUnderflow             = errors.New("core.decimal_underflow")
	ErrInsufficientBalance   = errors.New("market.account.insufficient_balance")
	ErrInsufficientLiquidity = errors.New("market.order.insufficient_market_liquidity")
	ErrImbalancedEntry       = errors.New("core.imbalanced_entry")
	ErrTradeStateConflict    = errors.New("core.trade_state_conflict")
	ErrReferenceTaken        = errors.New("core.reference_taken")
	ErrNotFound              = errors.New("record.not_found")
	ErrInternal              = errors.New("server.internal_error")
)

// Expected reports whether err is a business outcome the caller should
// handle, as opposed to a bug or storage failure that must abort.
func Expected(err error) bool {
	for _, e := range []error{
		ErrInvalidAmount,
		ErrUnderflow,
		ErrInsufficientBalance,
		ErrInsufficientLiquidity,
		ErrTradeStateConflict,
		ErrReferenceTaken,
		ErrNotFound,
	} {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}
