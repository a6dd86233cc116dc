package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"-12,34", "-12.34", true},
		{"1.005", "1.01", true}, // half away from zero
		{" 2.50 ", "2.5", true},
		{"0", "0", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestSignFor(t *testing.T) {
	ten := decimal.NewFromInt(10)
	if got := SignFor(Expense, ten); !got.Equal(ten.Neg()) {
		t.Fatalf("expense: got %s", got)
	}
	if got := SignFor(Revenue, ten.Neg()); !got.Equal(ten) {
		t.Fatalf("revenue: got %s", got)
	}
}
