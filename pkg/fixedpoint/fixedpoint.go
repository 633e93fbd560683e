package fixedpoint

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zenithex/zenithex/errs"
)

// Scale is the fractional width every ledger amount is carried at.
// Amounts are exact scaled integers (value * 10^18) underneath, so
// equality and the zero-sum invariant never depend on binary floats.
const Scale int32 = 18

var (
	oneAtScale  = decimal.New(1, -Scale)
	maxIntegral = decimal.New(1, 40)
)

// ToScaled parses decimal text into an exact amount. Input with more
// than Scale fractional digits, malformed text or out-of-range values
// fails with errs.ErrInvalidAmount.
func ToScaled(s string) (decimal.Decimal, error) {
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, errs.ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errs.ErrInvalidAmount
	}

	if d.Exponent() < -Scale {
		return decimal.Zero, errs.ErrInvalidAmount
	}

	if d.Abs().GreaterThan(maxIntegral) {
		return decimal.Zero, errs.ErrInvalidAmount
	}

	return d, nil
}

// FromScaled renders canonical display text: trailing fractional
// zeros trimmed, so "3.000000000000000000" comes out as "3".
// Internal values keep their full scale; only display is trimmed.
func FromScaled(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		return s
	}

	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func Add(a, b decimal.Decimal) decimal.Decimal {
	return a.Add(b)
}

// SubNonNegative clamps at zero and signals underflow instead of
// going negative. Used for defensive "available" computations.
func SubNonNegative(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.GreaterThan(a) {
		return decimal.Zero, errs.ErrUnderflow
	}

	return a.Sub(b), nil
}

// MulRound multiplies two amounts and rounds half-up back to Scale.
func MulRound(a, b decimal.Decimal) decimal.Decimal {
	return a.Mul(b).Round(Scale)
}

// BpsFeeCeil computes amount * bps / 10000 rounded up at Scale, so a
// fee is never under-collected by rounding. bps/10000 is applied as
// an exact power-of-ten scaling, never a lossy division.
func BpsFeeCeil(amount decimal.Decimal, bps int64) decimal.Decimal {
	return amount.Mul(decimal.New(bps, -4)).RoundCeil(Scale)
}

// ApplyBpsOffsetCeil scales amount by (10000+bps)/10000 (bps may be
// negative), rounding up at Scale. Trailing-stop price offsets use
// this with the sign picked by side.
func ApplyBpsOffsetCeil(amount decimal.Decimal, bps int64) decimal.Decimal {
	return amount.Mul(decimal.New(10000+bps, -4)).RoundCeil(Scale)
}

// QuantizeDownToStep floors amount to the nearest multiple of step.
// A zero or negative step leaves the amount untouched.
func QuantizeDownToStep(amount, step decimal.Decimal) decimal.Decimal {
	if !step.IsPositive() {
		return amount
	}

	// QuoRem is exact; Div would round at its own precision.
	q, _ := amount.QuoRem(step, 0)
	return q.Mul(step)
}

// IsDust reports whether amount is positive but below one unit at
// Scale, i.e. unrepresentable after quantization.
func IsDust(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.LessThan(oneAtScale)
}
