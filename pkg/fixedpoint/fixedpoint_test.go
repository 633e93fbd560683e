package fixedpoint

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/zenithex/zenithex/errs"
)

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	v, err := ToScaled(s)
	if err != nil {
		t.Fatalf("ToScaled(%q): %v", s, err)
	}
	return v
}

func TestToScaled(t *testing.T) {
	valid := []string{"0", "1", "0.5", "-3.25", "123456.000000000000000001"}
	for _, s := range valid {
		if _, err := ToScaled(s); err != nil {
			t.Errorf("ToScaled(%q) unexpected error: %v", s, err)
		}
	}

	invalid := []string{"", "abc", "1.2.3", "NaN", "Inf", "1e5", "0.0000000000000000001"}
	for _, s := range invalid {
		if _, err := ToScaled(s); !errors.Is(err, errs.ErrInvalidAmount) {
			t.Errorf("ToScaled(%q) expected ErrInvalidAmount, got %v", s, err)
		}
	}
}

func TestFromScaledTrimsTrailingZeros(t *testing.T) {
	cases := map[string]string{
		"3.000000000000000000": "3",
		"3.140000000000000000": "3.14",
		"0.000000000000000001": "0.000000000000000001",
		"10":                   "10",
	}

	for in, want := range cases {
		if got := FromScaled(d(t, in)); got != want {
			t.Errorf("FromScaled(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestSubNonNegative(t *testing.T) {
	got, err := SubNonNegative(d(t, "5"), d(t, "2"))
	if err != nil || !got.Equal(d(t, "3")) {
		t.Errorf("SubNonNegative(5, 2) = %s, %v", got, err)
	}

	got, err = SubNonNegative(d(t, "2"), d(t, "5"))
	if !errors.Is(err, errs.ErrUnderflow) {
		t.Errorf("expected ErrUnderflow, got %v", err)
	}
	if !got.IsZero() {
		t.Errorf("underflow result must clamp to zero, got %s", got)
	}
}

func TestMulRoundHalfUp(t *testing.T) {
	// 0.0000000000000000015 at scale 18 rounds half-up to ...2.
	a := d(t, "0.000000000000000003")
	b := d(t, "0.5")

	got := MulRound(a, b)
	want := d(t, "0.000000000000000002")
	if !got.Equal(want) {
		t.Errorf("MulRound = %s, want %s", FromScaled(got), FromScaled(want))
	}
}

func TestBpsFeeCeil(t *testing.T) {
	// 10 bps of 1 = 0.001 exactly.
	if got := BpsFeeCeil(d(t, "1"), 10); !got.Equal(d(t, "0.001")) {
		t.Errorf("BpsFeeCeil(1, 10) = %s", FromScaled(got))
	}

	// 1 bps of the smallest unit must round up, never to zero.
	got := BpsFeeCeil(d(t, "0.000000000000000001"), 1)
	if !got.Equal(d(t, "0.000000000000000001")) {
		t.Errorf("fee rounded under-collected: %s", FromScaled(got))
	}
}

func TestQuantizeDownToStep(t *testing.T) {
	cases := []struct{ amount, step, want string }{
		{"10.7", "0.5", "10.5"},
		{"10.7", "1", "10"},
		{"0.3", "0.5", "0"},
		{"10.7", "0", "10.7"},
		{"2.999999999999999999", "1", "2"},
	}

	for _, c := range cases {
		got := QuantizeDownToStep(d(t, c.amount), d(t, c.step))
		if !got.Equal(d(t, c.want)) {
			t.Errorf("QuantizeDownToStep(%s, %s) = %s, want %s", c.amount, c.step, FromScaled(got), c.want)
		}
	}
}
