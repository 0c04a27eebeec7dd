package format

import "testing"

func TestRupeesIndianGrouping(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{0, "₹0"},
		{999, "₹999"},
		{1000, "₹1,000"},
		{244296, "₹2,44,296"},
		{12345678, "₹1,23,45,678"},
		{244295.5, "₹2,44,296"},
	}

	for _, tc := range cases {
		if got := Rupees(tc.amount); got != tc.want {
			t.Errorf("Rupees(%v) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestQuantity(t *testing.T) {
	if got := Quantity(8760.5); got != "8,760.5" {
		t.Errorf("Quantity(8760.5) = %q", got)
	}
	if got := Quantity(240); got != "240" {
		t.Errorf("Quantity(240) = %q", got)
	}
}

func TestCount(t *testing.T) {
	if got := Count(117); got != "117" {
		t.Errorf("Count(117) = %q", got)
	}
	if got := Count(123456); got != "1,23,456" {
		t.Errorf("Count(123456) = %q", got)
	}
}
