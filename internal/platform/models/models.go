package models

import (
	"regexp"
	"strings"
)

const (
	// NotAvailable is the sentinel backends use for an absent price or unit.
	NotAvailable = "N/A"
	// Uncategorized is the store key used for entries without a store.
	Uncategorized = "Uncategorized"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// FlyerItem is one priced product entry of a store's flyer.
type FlyerItem struct {
	Name              string   `json:"name"`
	Price             string   `json:"price,omitempty"`
	OriginalPrice     string   `json:"original_price,omitempty"`
	Unit              string   `json:"unit,omitempty"`
	ImageURL          string   `json:"image_url,omitempty"`
	Store             string   `json:"store,omitempty"`
	OnSale            *bool    `json:"on_sale,omitempty"`
	SavingsPercentage *float64 `json:"savings_percentage,omitempty"`
	Details           string   `json:"details,omitempty"`
}

// Slug returns item's stable identifier built from its store and name.
func (i FlyerItem) Slug() string {
	return ItemID(i.Store, i.Name)
}

// ItemID builds the identifier joining catalog items and shopping list entries.
// Store keys are snake_case and must not contain "-", or ids of different stores may collide.
func ItemID(store, name string) string {
	return store + "-" + nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "-")
}

// Entry is a shopping list entry.
type Entry struct {
	FlyerItem

	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// NewEntry returns an entry for item with quantity 1.
func NewEntry(item FlyerItem) Entry {
	return Entry{
		FlyerItem: item,
		ID:        item.Slug(),
		Quantity:  1,
	}
}

// StoreKey returns entry's store or Uncategorized when it has none.
func (e Entry) StoreKey() string {
	if strings.TrimSpace(e.Store) == "" {
		return Uncategorized
	}
	return e.Store
}

// Statistics are aggregate catalog counts.
type Statistics struct {
	TotalItems     int            `json:"total_items"`
	OnSaleItems    int            `json:"on_sale_items"`
	AverageSavings float64        `json:"average_savings"`
	PriceRanges    map[string]int `json:"price_ranges"`
	Stores         map[string]int `json:"stores,omitempty"`
}

// LastUpdated describes when flyer data was last refreshed.
type LastUpdated struct {
	LastUpdated   string `json:"last_updated"`
	HumanReadable string `json:"human_readable"`
}

// StoreDisplayName returns store key formatted for headers, e.g. "TNT SUPERMARKET".
func StoreDisplayName(store string) string {
	return strings.ToUpper(strings.ReplaceAll(store, "_", " "))
}

// StoreGroup holds shopping list entries of one store.
type StoreGroup struct {
	Store   string
	Entries []Entry
}
