package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/zenithex/zenithex/errs"
)

func amount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCheckBalanced(t *testing.T) {
	balanced := []JournalLine{
		{AccountID: 1, AssetID: 1, Amount: amount("-5")},
		{AccountID: 2, AssetID: 1, Amount: amount("4.999")},
		{AccountID: 3, AssetID: 1, Amount: amount("0.001")},
		{AccountID: 1, AssetID: 2, Amount: amount("-1")},
		{AccountID: 2, AssetID: 2, Amount: amount("1")},
	}

	if err := CheckBalanced(balanced); err != nil {
		t.Errorf("balanced lines rejected: %v", err)
	}
}

func TestCheckBalancedRejectsImbalance(t *testing.T) {
	cases := map[string][]JournalLine{
		"empty": {},
		"single_leg": {
			{AccountID: 1, AssetID: 1, Amount: amount("1")},
		},
		"one_asset_off": {
			{AccountID: 1, AssetID: 1, Amount: amount("-5")},
			{AccountID: 2, AssetID: 1, Amount: amount("5")},
			{AccountID: 1, AssetID: 2, Amount: amount("-1")},
			{AccountID: 2, AssetID: 2, Amount: amount("0.999999999999999999")},
		},
	}

	for name, lines := range cases {
		if err := CheckBalanced(lines); !errors.Is(err, errs.ErrImbalancedEntry) {
			t.Errorf("%s: want ErrImbalancedEntry, got %v", name, err)
		}
	}
}
