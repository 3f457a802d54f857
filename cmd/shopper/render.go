package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/MichalMitros/flyer-shopper/internal/export"
	"github.com/MichalMitros/flyer-shopper/internal/platform/models"
	"github.com/MichalMitros/flyer-shopper/internal/preferences"
	"github.com/MichalMitros/flyer-shopper/internal/pricing"
	"github.com/samber/lo"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[93m"
)

// display holds preferences affecting rendering.
type display struct {
	viewMode string
	darkMode bool
	color    bool
}

func (d display) sale(text string) string {
	if !d.color {
		return text
	}
	if d.darkMode {
		return ansiYellow + text + ansiReset
	}
	return ansiRed + text + ansiReset
}

type storeView struct {
	stores []string
	active string
	items  []models.FlyerItem
}

func renderFlyers(w io.Writer, view storeView, d display) {
	if len(view.stores) == 0 {
		fmt.Fprintln(w, "No flyers available.")
		return
	}

	tabs := lo.Map(view.stores, func(store string, _ int) string {
		if store == view.active {
			return "[" + models.StoreDisplayName(store) + "]"
		}
		return models.StoreDisplayName(store)
	})
	fmt.Fprintln(w, "Stores: "+strings.Join(tabs, " "))
	fmt.Fprintln(w)

	if len(view.items) == 0 {
		fmt.Fprintln(w, "No items found.")
		return
	}

	for _, item := range view.items {
		if d.viewMode == preferences.ViewList {
			fmt.Fprintln(w, listLine(item, d))
			continue
		}
		renderCard(w, item, d)
	}
}

func listLine(item models.FlyerItem, d display) string {
	pres := pricing.Derive(item)
	parts := []string{item.Slug(), pres.Name}
	if line := priceText(pres, d); line != "" {
		parts = append(parts, line)
	}
	if item.SavingsPercentage != nil && *item.SavingsPercentage > 0 {
		parts = append(parts, fmt.Sprintf("save %d%%", int(math.Round(*item.SavingsPercentage))))
	}
	return strings.Join(parts, "  ")
}

func renderCard(w io.Writer, item models.FlyerItem, d display) {
	pres := pricing.Derive(item)

	fmt.Fprintln(w, pres.Name)
	if line := priceText(pres, d); line != "" {
		fmt.Fprintln(w, "  "+line)
	}
	if item.Details != "" && item.Details != models.NotAvailable {
		fmt.Fprintln(w, "  "+item.Details)
	}
	if pres.ImageURL != "" {
		fmt.Fprintln(w, "  image: "+pres.ImageURL)
	}
	fmt.Fprintln(w, "  id: "+item.Slug())
	fmt.Fprintln(w)
}

func priceText(pres pricing.Presentation, d display) string {
	line := pres.PriceLine()
	if pres.MainStyle == pricing.StyleSale {
		return d.sale("SALE " + line)
	}
	return line
}

func renderList(w io.Writer, groups []models.StoreGroup, total int) {
	if total == 0 {
		fmt.Fprintln(w, "Your shopping list is empty.")
		return
	}

	for _, group := range groups {
		fmt.Fprintf(w, "--- %s ---\n", models.StoreDisplayName(group.Store))
		for _, entry := range group.Entries {
			fmt.Fprintf(w, "%s  %s\n", entry.ID, export.EntryLine(entry))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Total items: %d\n", total)
}

func renderStatistics(w io.Writer, stats models.Statistics) {
	fmt.Fprintf(w, "Total items: %d\n", stats.TotalItems)
	fmt.Fprintf(w, "On sale: %d\n", stats.OnSaleItems)
	fmt.Fprintf(w, "Average savings: %.1f%%\n", stats.AverageSavings)

	if len(stats.PriceRanges) > 0 {
		fmt.Fprintln(w, "Price ranges:")
		ranges := lo.Keys(stats.PriceRanges)
		sort.Strings(ranges)
		for _, r := range ranges {
			fmt.Fprintf(w, "  %s: %d\n", r, stats.PriceRanges[r])
		}
	}

	if len(stats.Stores) > 0 {
		fmt.Fprintln(w, "Stores:")
		stores := lo.Keys(stats.Stores)
		sort.Strings(stores)
		for _, store := range stores {
			fmt.Fprintf(w, "  %s: %d\n", models.StoreDisplayName(store), stats.Stores[store])
		}
	}
}
