package pricing

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	litreToken       = regexp.MustCompile(`\bl\b`)
	amountCharacters = strings.NewReplacer("$", "", ",", "", " ", "", "\u00a0", "")
)

// CleanUnit returns unit annotation formatted for display.
// Only the part before the first comma is used. Units which are prices (start with "$") are returned as they are,
// other units are prefixed with a single slash. Returns empty string when there is no unit.
func CleanUnit(unit string) string {
	if !isPresent(unit) {
		return ""
	}

	cleaned, _, _ := strings.Cut(unit, ",")
	cleaned = strings.TrimLeft(strings.TrimSpace(cleaned), "/")
	cleaned = strings.TrimSpace(litreToken.ReplaceAllString(cleaned, "L"))

	switch {
	case cleaned == "":
		return ""
	case strings.HasPrefix(cleaned, "$"):
		return cleaned
	default:
		return "/" + cleaned
	}
}

// ParseAmount parses price string like "$1,299.99" into decimal amount.
// Returns false for the "N/A" sentinel and for text which isn't a plain amount (e.g. "2 for $5").
func ParseAmount(price string) (decimal.Decimal, bool) {
	if !isPresent(strings.TrimSpace(price)) {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(amountCharacters.Replace(price))
	if err != nil || amount.IsNegative() {
		return decimal.Zero, false
	}

	return amount, true
}

// FormatAmount formats amount as dollar price, e.g. "$8.97".
func FormatAmount(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
