package triasync

import (
	"testing"
	"time"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"5321234567", "05321234567"},
		{"05321234567", "05321234567"},
		{"905321234567", "05321234567"},
		{"+90 532 123 45 67", "05321234567"},
		{"0 (532) 123-45-67", "05321234567"},
		{"02121234567", "02121234567"},
		{"12345", ""},
		{"", ""},
		{"telefon yok", ""},
	}
	for _, tc := range cases {
		if got := NormalizePhone(tc.in); got != tc.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.234,56", "1234.56"},
		{"150,00", "150"},
		// Dots are thousand separators in the Turkish format.
		{"1.250", "1250"},
		{"1000", "1000"},
		{"", "0"},
		{"abc", "0"},
		{"  12,5  ", "12.5"},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.in); got.String() != tc.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", tc.in, got.String(), tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	expected := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"15/03/2024", "15.03.2024", "2024-03-15", "15-03-2024"} {
		if got := ParseDate(in); !got.Equal(expected) {
			t.Errorf("ParseDate(%q) = %v, want %v", in, got, expected)
		}
	}
}

func TestParseDateFallback(t *testing.T) {
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	restore := nowFunc
	nowFunc = func() time.Time { return fixed }
	defer func() { nowFunc = restore }()

	if got := ParseDate("tarih yok"); !got.Equal(fixed) {
		t.Errorf("ParseDate fallback = %v, want %v", got, fixed)
	}
}
