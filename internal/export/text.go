package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/MichalMitros/flyer-shopper/internal/platform/models"
	"github.com/MichalMitros/flyer-shopper/internal/pricing"
	"github.com/shopspring/decimal"
)

const (
	textHeader    = "Your Shopping List"
	textEmptyList = "Your shopping list is empty."
	separator     = " — "
)

// Text renders grouped entries as a plain text summary.
// Estimated total is included only when every entry's price is a plain amount.
func Text(groups []models.StoreGroup) string {
	var b strings.Builder
	b.WriteString(textHeader + "\n\n")

	totalItems := 0
	total := decimal.Zero
	totalKnown := true

	for _, group := range groups {
		if len(group.Entries) == 0 {
			continue
		}

		fmt.Fprintf(&b, "--- %s ---\n", models.StoreDisplayName(group.Store))
		for _, entry := range group.Entries {
			b.WriteString(EntryLine(entry) + "\n")

			totalItems += entry.Quantity
			amount, ok := pricing.ParseAmount(pricing.Derive(entry.FlyerItem).MainPrice)
			if !ok {
				totalKnown = false
				continue
			}
			total = total.Add(amount.Mul(decimal.NewFromInt(int64(entry.Quantity))))
		}
		b.WriteString("\n")
	}

	if totalItems == 0 {
		b.WriteString(textEmptyList + "\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Total items: %d\n", totalItems)
	if totalKnown {
		fmt.Fprintf(&b, "Estimated total: %s\n", pricing.FormatAmount(total))
	}

	return b.String()
}

// EntryLine renders entry as "2 × Fuji Apples — $1.99/lb (was $2.99/lb) — save 33%".
func EntryLine(entry models.Entry) string {
	parts := []string{fmt.Sprintf("%d × %s", entry.Quantity, entry.Name)}

	if line := pricing.Derive(entry.FlyerItem).PriceLine(); line != "" {
		parts = append(parts, line)
	}
	if note := savingsNote(entry.FlyerItem); note != "" {
		parts = append(parts, note)
	}
	if details := strings.TrimSpace(entry.Details); details != "" && details != models.NotAvailable {
		parts = append(parts, details)
	}

	return strings.Join(parts, separator)
}

func savingsNote(item models.FlyerItem) string {
	if item.SavingsPercentage == nil || *item.SavingsPercentage <= 0 {
		return ""
	}
	return fmt.Sprintf("save %.0f%%", math.Round(*item.SavingsPercentage))
}
