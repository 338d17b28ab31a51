package triasync

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var nowFunc = time.Now

// NormalizePhone rewrites Turkish phone numbers to the local 0XXXXXXXXXX
// form. Values too short to be a phone number come back empty; unrecognized
// long values pass through with non-digits stripped.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, ch := range raw {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 10 && strings.HasPrefix(digits, "5"):
		return "0" + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "05"):
		return digits
	case len(digits) == 12 && strings.HasPrefix(digits, "905"):
		return "0" + digits[2:]
	case len(digits) >= 10:
		return digits
	}
	return ""
}

// ParseAmount reads Turkish formatted numbers ("1.234,56") with a fallback
// for plain decimal notation. Unparseable input yields zero.
func ParseAmount(raw string) decimal.Decimal {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero
	}

	turkish := strings.ReplaceAll(trimmed, ".", "")
	turkish = strings.ReplaceAll(turkish, ",", ".")
	if value, err := decimal.NewFromString(turkish); err == nil {
		return value
	}
	if value, err := decimal.NewFromString(trimmed); err == nil {
		return value
	}
	return decimal.Zero
}

var dateLayouts = []string{
	"02/01/2006",
	"02.01.2006",
	"2006-01-02",
	"02-01-2006",
}

// ParseDate accepts the date formats seen in POS exports. Unparseable input
// falls back to the current time so a bad cell never drops the row.
func ParseDate(raw string) time.Time {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t
		}
	}
	return nowFunc()
}
