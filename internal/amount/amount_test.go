package amount

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"12.34", "12.34"},
		{"$1,234.56", "1234.56"},
		{"12.345", "12.34"},
		{"0.5", "0.5"},
		{".75", "0.75"},
		{"7.", "7"},
		{"1.2.3", "1.2"},
		{"-4.20", "4.2"},
		{"abc", "0"},
		{"", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Parse(tt.input)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Parse(%q) = %v, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		value    string
		currency string
		want     string
	}{
		{"25.65", "USD", "$25.65"},
		{"12.825", "USD", "$12.83"},
		{"1234.5", "usd", "$1,234.50"},
		{"0", "USD", "$0.00"},
		{"3.3333333333333333", "USD", "$3.33"},
		{"10", "", "$10.00"},
		{"10", "NOPE", "$10.00"},
		{"92233720368547758.07", "USD", "$92,233,720,368,547,758.07"},
		{"100000000000000000000", "USD", "$100,000,000,000,000,000,000.00"},
		{"-100000000000000000000.005", "USD", "-$100,000,000,000,000,000,000.01"},
	}

	for _, tt := range tests {
		t.Run(tt.value+" "+tt.currency, func(t *testing.T) {
			got := Format(decimal.RequireFromString(tt.value), tt.currency)
			if got != tt.want {
				t.Errorf("Format(%s, %q) = %q, want %q", tt.value, tt.currency, got, tt.want)
			}
		})
	}
}

func TestRound(t *testing.T) {
	got := Round(decimal.RequireFromString("12.825"), "USD")
	if !got.Equal(decimal.RequireFromString("12.83")) {
		t.Errorf("Round() = %v, want 12.83", got)
	}
	if Valid("XYZ") {
		t.Error("Valid(XYZ) = true, want false")
	}
	if !Valid("eur") {
		t.Error("Valid(eur) = false, want true")
	}
}
