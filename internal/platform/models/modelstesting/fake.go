package modelstesting

import (
	"fmt"
	"math/rand"

	"github.com/MichalMitros/flyer-shopper/internal/platform/models"
	"github.com/go-faker/faker/v4"
	"github.com/samber/lo"
)

var stores = []string{"galleria", "tnt_supermarket", "foodbasics", "nofrills"}

// FakeFlyerItem returns models.FlyerItem with fake data and a sale price lower than the original one.
func FakeFlyerItem(ops ...func(i *models.FlyerItem)) models.FlyerItem {
	original := float64(rand.Intn(2000)+200) / 100
	sale := original * 0.75

	item := models.FlyerItem{
		Name:              faker.Word() + " " + faker.Word(),
		Price:             fmt.Sprintf("$%.2f", sale),
		OriginalPrice:     fmt.Sprintf("$%.2f", original),
		Unit:              "/ea",
		ImageURL:          faker.URL(),
		Store:             lo.Sample(stores),
		OnSale:            lo.ToPtr(true),
		SavingsPercentage: lo.ToPtr(25.0),
	}

	for _, op := range ops {
		op(&item)
	}

	return item
}

// FakeEntry returns models.Entry built from fake flyer item with random quantity.
func FakeEntry(ops ...func(e *models.Entry)) models.Entry {
	entry := models.NewEntry(FakeFlyerItem())
	entry.Quantity = rand.Intn(5) + 1

	for _, op := range ops {
		op(&entry)
	}

	return entry
}

// FakeEntries returns n fake entries with distinct ids.
func FakeEntries(n int) []models.Entry {
	entries := make([]models.Entry, 0, n)
	for ix := range n {
		entries = append(entries, FakeEntry(func(e *models.Entry) {
			e.Name = fmt.Sprintf("%s %d", e.Name, ix)
			e.ID = e.Slug()
		}))
	}
	return entries
}
