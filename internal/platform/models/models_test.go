package models_test

import (
	"encoding/json"
	"testing"

	"github.com/MichalMitros/flyer-shopper/internal/platform/models"
	"github.com/MichalMitros/flyer-shopper/internal/platform/models/modelstesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitItemID(t *testing.T) {
	tests := map[string]struct {
		store string
		name  string
		want  string
	}{
		"simple":           {store: "nofrills", name: "Apples", want: "nofrills-apples"},
		"collapses runs":   {store: "tnt_supermarket", name: "Fuji  Apples (3 lb)", want: "tnt_supermarket-fuji-apples-3-lb-"},
		"non ascii":        {store: "galleria", name: "Crème Brûlée", want: "galleria-cr-me-br-l-e"},
		"empty name":       {store: "foodbasics", name: "", want: "foodbasics-"},
		"keeps store case": {store: "Uncategorized", name: "Milk 2%", want: "Uncategorized-milk-2-"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.ItemID(tt.store, tt.name), "should build correct id")
		})
	}
}

func TestUnitSlugIsStable(t *testing.T) {
	item := modelstesting.FakeFlyerItem()
	same := item
	same.Price = "$0.01"
	same.OnSale = nil

	assert.Equal(t, item.Slug(), same.Slug(), "should not depend on fields other than store and name")

	otherStore := item
	otherStore.Store = item.Store + "_other"
	assert.NotEqual(t, item.Slug(), otherStore.Slug(), "should differ for different stores")

	otherName := item
	otherName.Name = item.Name + " xl"
	assert.NotEqual(t, item.Slug(), otherName.Slug(), "should differ for different names")
}

func TestUnitEntryJSON(t *testing.T) {
	raw := `{"name":"Milk","price":"$4.99","store":"nofrills","id":"nofrills-milk","quantity":2,"on_sale":false}`

	var entry models.Entry
	require.NoError(t, json.Unmarshal([]byte(raw), &entry), "should decode entry")

	assert.Equal(t, "Milk", entry.Name, "should decode embedded item fields")
	assert.Equal(t, "nofrills-milk", entry.ID, "should decode id")
	assert.Equal(t, 2, entry.Quantity, "should decode quantity")
	require.NotNil(t, entry.OnSale, "should keep explicit false flag")
	assert.False(t, *entry.OnSale, "should keep explicit false flag")
}

func TestUnitEntryStoreKey(t *testing.T) {
	assert.Equal(t, models.Uncategorized, models.Entry{}.StoreKey(), "should default to Uncategorized")
	assert.Equal(t, "galleria", models.Entry{FlyerItem: models.FlyerItem{Store: "galleria"}}.StoreKey())
}

func TestUnitCatalog(t *testing.T) {
	catalog := models.NewCatalog()
	catalog.Add("nofrills", models.FlyerItem{Name: "Milk"})
	catalog.Add("galleria", models.FlyerItem{Name: "Kimchi", Store: "galleria"})
	catalog.Add("nofrills", models.FlyerItem{Name: "Eggs"})

	assert.Equal(t, []string{"nofrills", "galleria"}, catalog.Stores, "should keep store order of first appearance")
	assert.Equal(t, 3, catalog.Len(), "should count all items")
	assert.True(t, catalog.Has("galleria"), "should have added store")
	assert.False(t, catalog.Has("walmart"), "should not have unknown store")

	item, ok := catalog.Find("nofrills-eggs")
	require.True(t, ok, "should find item by id")
	assert.Equal(t, "nofrills", item.Store, "should fill in missing store")

	_, ok = catalog.Find("nofrills-bread")
	assert.False(t, ok, "should not find missing item")

	assert.Equal(t, "TNT SUPERMARKET", models.StoreDisplayName("tnt_supermarket"))
}

func TestUnitCatalogOverridesItemStore(t *testing.T) {
	catalog := models.NewCatalog()
	catalog.Add("tnt_supermarket", models.FlyerItem{Name: "Apples", Store: "tnt"})

	item, ok := catalog.Find("tnt_supermarket-apples")
	require.True(t, ok, "should find item by catalog key")
	assert.Equal(t, "tnt_supermarket", item.Store, "should use catalog key as store")
	assert.Equal(t, "tnt_supermarket-apples", item.Slug(), "should build slug matching catalog id")

	items := catalog.StoreItems("tnt_supermarket")
	require.Len(t, items, 1)
	assert.Equal(t, "tnt_supermarket-apples", models.NewEntry(items[0]).ID, "should build entry id from catalog key")

	_, ok = catalog.Find("tnt-apples")
	assert.False(t, ok, "shouldn't find item by its own store field")
}

func TestUnitItemIDStoreKeys(t *testing.T) {
	assert.Equal(t, "tnt_supermarket-b-c", models.ItemID("tnt_supermarket", "b c"), "should keep snake_case store key")
	assert.NotEqual(t,
		models.ItemID("tnt_supermarket", "b c"),
		models.ItemID("tnt_supermarket_b", "c"),
		"shouldn't collide for snake_case store keys",
	)
	assert.Equal(t,
		models.ItemID("a", "b c"),
		models.ItemID("a-b", "c"),
		"hyphenated store keys collide, so store keys must not contain hyphens",
	)
}
