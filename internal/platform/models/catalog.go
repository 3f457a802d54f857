package models

// Catalog holds flyer items grouped by store, in the order the backend listed the stores.
type Catalog struct {
	Stores []string
	Items  map[string][]FlyerItem
}

// NewCatalog returns empty Catalog.
func NewCatalog() Catalog {
	return Catalog{
		Stores: []string{},
		Items:  map[string][]FlyerItem{},
	}
}

// Add appends items to store, registering store if it is new.
func (c *Catalog) Add(store string, items ...FlyerItem) {
	if c.Items == nil {
		c.Items = map[string][]FlyerItem{}
	}
	if _, ok := c.Items[store]; !ok {
		c.Stores = append(c.Stores, store)
		c.Items[store] = []FlyerItem{}
	}
	c.Items[store] = append(c.Items[store], items...)
}

// Has reports whether store is listed in catalog.
func (c Catalog) Has(store string) bool {
	_, ok := c.Items[store]
	return ok
}

// Find returns the item with provided id.
func (c Catalog) Find(id string) (FlyerItem, bool) {
	for _, store := range c.Stores {
		for _, item := range c.Items[store] {
			if ItemID(store, item.Name) == id {
				return withStore(item, store), true
			}
		}
	}
	return FlyerItem{}, false
}

// StoreItems returns items of store with their store field set to store.
func (c Catalog) StoreItems(store string) []FlyerItem {
	items := c.Items[store]
	result := make([]FlyerItem, 0, len(items))
	for _, item := range items {
		result = append(result, withStore(item, store))
	}
	return result
}

// Len returns number of items across all stores.
func (c Catalog) Len() int {
	total := 0
	for _, items := range c.Items {
		total += len(items)
	}
	return total
}

// withStore sets item's store to the catalog key it was listed under, so item.Slug() matches Find.
func withStore(item FlyerItem, store string) FlyerItem {
	item.Store = store
	return item
}
