package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/MichalMitros/flyer-shopper/internal/catalog"
	"github.com/MichalMitros/flyer-shopper/internal/catalog/mocks"
	"github.com/MichalMitros/flyer-shopper/internal/debounce"
	"github.com/MichalMitros/flyer-shopper/internal/debounce/debouncetesting"
	"github.com/MichalMitros/flyer-shopper/internal/filter"
	"github.com/MichalMitros/flyer-shopper/internal/platform"
	"github.com/MichalMitros/flyer-shopper/internal/platform/models"
	"github.com/MichalMitros/flyer-shopper/internal/platform/models/modelstesting"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// reusable test data
var (
	ctx                            = context.TODO()
	errShouldContainAssertErrorMsg = "should return error containing assert.AnError"
)

func TestUnitRefresh(t *testing.T) {
	first := fakeCatalog("tnt_supermarket", "galleria")
	second := fakeCatalog("nofrills", "galleria")
	third := fakeCatalog("foodbasics")

	source := mocks.NewFlyerSource(t)
	source.On("GetFlyers", ctx, filter.Default()).Return(first, nil).Once()
	source.On("GetFlyers", ctx, filter.Default()).Return(second, nil).Once()
	source.On("GetFlyers", ctx, filter.Default()).Return(third, nil).Once()

	updates := 0
	sess := catalog.NewSession(source, mocks.NewNotifier(t), catalog.WithOnUpdate(func() { updates++ }))
	assert.Empty(t, sess.ActiveStore(), "shouldn't select store before first fetch")

	require.NoError(t, sess.Refresh(ctx), "should not return any error")
	assert.Equal(t, []string{"tnt_supermarket", "galleria"}, sess.Stores(), "should keep store order")
	assert.Equal(t, "tnt_supermarket", sess.ActiveStore(), "should select first store")
	require.NoError(t, sess.SelectStore("galleria"))

	require.NoError(t, sess.Refresh(ctx), "should not return any error")
	assert.Equal(t, "galleria", sess.ActiveStore(), "should keep active store which is still listed")

	require.NoError(t, sess.Refresh(ctx), "should not return any error")
	assert.Equal(t, "foodbasics", sess.ActiveStore(), "should fall back to first store")
	assert.Equal(t, 3, updates, "should call update function after every applied fetch")
}

func TestUnitRefreshFailure(t *testing.T) {
	loaded := fakeCatalog("nofrills")
	source := mocks.NewFlyerSource(t)
	notifier := mocks.NewNotifier(t)
	source.On("GetFlyers", ctx, mock.Anything).Return(loaded, nil).Once()
	source.On("GetFlyers", ctx, mock.Anything).Return(models.Catalog{}, assert.AnError).Once()
	notifier.On("Error", "Failed to load flyers. Please try again later.", assert.AnError).Once()

	sess := catalog.NewSession(source, notifier)
	require.NoError(t, sess.Refresh(ctx))

	err := sess.Refresh(ctx)

	require.ErrorIs(t, err, assert.AnError, errShouldContainAssertErrorMsg)
	assert.Equal(t, []string{"nofrills"}, sess.Stores(), "should keep previous catalog")
	assert.Equal(t, "nofrills", sess.ActiveStore(), "should keep active store")
}

func TestUnitRefreshDropsStaleResponse(t *testing.T) {
	stale := fakeCatalog("tnt_supermarket")
	fresh := fakeCatalog("galleria")
	staleStarted := make(chan struct{})
	releaseStale := make(chan struct{})

	source := mocks.NewFlyerSource(t)
	source.On("GetFlyers", ctx, mock.Anything).
		Run(func(mock.Arguments) {
			close(staleStarted)
			<-releaseStale
		}).
		Return(stale, nil).Once()
	source.On("GetFlyers", ctx, mock.Anything).Return(fresh, nil).Once()

	updates := 0
	sess := catalog.NewSession(source, mocks.NewNotifier(t), catalog.WithOnUpdate(func() { updates++ }))

	staleDone := make(chan error)
	go func() { staleDone <- sess.Refresh(ctx) }()
	<-staleStarted

	require.NoError(t, sess.Refresh(ctx), "should apply fresh response")
	close(releaseStale)
	require.NoError(t, <-staleDone, "shouldn't fail on stale response")

	assert.Equal(t, []string{"galleria"}, sess.Stores(), "should keep the newer catalog")
	assert.Equal(t, 1, updates, "shouldn't apply stale response")
}

func TestUnitSetSearchDebounced(t *testing.T) {
	clock := debouncetesting.NewFakeClock()
	deb := debounce.New(debounce.DefaultDelay, debounce.WithClock(clock))

	want := filter.Default()
	want.Search = "apple"

	source := mocks.NewFlyerSource(t)
	source.On("GetFlyers", ctx, want).Return(fakeCatalog("tnt_supermarket"), nil).Once()

	sess := catalog.NewSession(source, mocks.NewNotifier(t), catalog.WithDebouncer(deb))
	for _, query := range []string{"a", "ap", "app", "appl", "apple"} {
		sess.SetSearch(ctx, query)
		clock.Advance(100 * time.Millisecond)
	}
	source.AssertNotCalled(t, "GetFlyers", mock.Anything, mock.Anything)

	clock.Advance(debounce.DefaultDelay)

	source.AssertNumberOfCalls(t, "GetFlyers", 1)
	assert.Equal(t, want, sess.Filter(), "should keep last search")
	assert.Equal(t, "tnt_supermarket", sess.ActiveStore(), "should apply fetched catalog")
}

func TestUnitUpdateFilter(t *testing.T) {
	clock := debouncetesting.NewFakeClock()
	deb := debounce.New(debounce.DefaultDelay, debounce.WithClock(clock))

	want := filter.State{
		SaleFilter: filter.SaleOnSale,
		MinPrice:   lo.ToPtr(2.0),
		MinSavings: 100,
		SortBy:     filter.SortByPrice,
		SortOrder:  filter.OrderAsc,
	}

	source := mocks.NewFlyerSource(t)
	source.On("GetFlyers", ctx, want).Return(fakeCatalog("nofrills"), nil).Once()

	sess := catalog.NewSession(source, mocks.NewNotifier(t), catalog.WithDebouncer(deb))
	sess.UpdateFilter(ctx, func(s *filter.State) { s.SaleFilter = "sale" })
	sess.UpdateFilter(ctx, func(s *filter.State) {
		s.MinPrice = lo.ToPtr(2.0)
		s.MinSavings = 150
		s.SortBy = "price"
	})

	assert.True(t, sess.Flush(), "should run scheduled refresh")
	assert.False(t, sess.Flush(), "shouldn't have another scheduled refresh")
	assert.Zero(t, clock.Pending(), "should stop debounce timer")
	assert.Equal(t, want, sess.Filter(), "should keep normalized filter")
}

func TestUnitSetFilter(t *testing.T) {
	clock := debouncetesting.NewFakeClock()
	deb := debounce.New(debounce.DefaultDelay, debounce.WithClock(clock))
	sess := catalog.NewSession(mocks.NewFlyerSource(t), mocks.NewNotifier(t), catalog.WithDebouncer(deb))

	sess.SetFilter(filter.State{Search: "  milk ", SortBy: "savings", SortOrder: "DESC"})

	want := filter.Default()
	want.Search = "milk"
	want.SortBy = filter.SortBySavings
	want.SortOrder = filter.OrderDesc
	assert.Equal(t, want, sess.Filter(), "should keep normalized filter")
	assert.False(t, deb.Pending(), "shouldn't schedule refresh")
}

func TestUnitSelectStore(t *testing.T) {
	source := mocks.NewFlyerSource(t)
	source.On("GetFlyers", ctx, mock.Anything).Return(fakeCatalog("nofrills", "galleria"), nil).Once()

	sess := catalog.NewSession(source, mocks.NewNotifier(t))
	require.NoError(t, sess.Refresh(ctx))

	require.NoError(t, sess.SelectStore("galleria"), "should select listed store")
	assert.Equal(t, "galleria", sess.ActiveStore())

	err := sess.SelectStore("walmart")
	require.ErrorIs(t, err, platform.ErrUnknownStore, "should reject unknown store")
	assert.Equal(t, "galleria", sess.ActiveStore(), "should keep active store")
}

func TestUnitViewAndFind(t *testing.T) {
	cat := models.NewCatalog()
	cat.Add("nofrills",
		models.FlyerItem{Name: "Milk", Price: "$4.99"},
		models.FlyerItem{Name: "Bread", Price: "$2.49", OriginalPrice: "$3.49"},
		models.FlyerItem{Name: "Butter", Price: "$6.99"},
	)
	cat.Add("galleria", models.FlyerItem{Name: "Kimchi", Price: "$5.99"})

	source := mocks.NewFlyerSource(t)
	source.On("GetFlyers", ctx, mock.Anything).Return(cat, nil).Once()

	// clock is never advanced, so filter changes only affect the view
	deb := debounce.New(debounce.DefaultDelay, debounce.WithClock(debouncetesting.NewFakeClock()))
	sess := catalog.NewSession(source, mocks.NewNotifier(t), catalog.WithDebouncer(deb))
	require.NoError(t, sess.Refresh(ctx))

	names := func(items []models.FlyerItem) []string {
		return lo.Map(items, func(i models.FlyerItem, _ int) string { return i.Name })
	}
	assert.Equal(t, []string{"Bread", "Butter", "Milk"}, names(sess.View()), "should sort active store by name")
	assert.Equal(t, "nofrills", sess.View()[0].Store, "should fill in store key")
	assert.Len(t, sess.StoreItems("galleria"), 1, "should return other store items")

	sess.UpdateFilter(ctx, func(s *filter.State) { s.SaleFilter = "sale" })
	assert.Equal(t, []string{"Bread"}, names(sess.View()), "should apply filter to view")
	sess.UpdateFilter(ctx, func(s *filter.State) { s.SaleFilter = "all" })
	assert.Len(t, sess.View(), 3, "should reset filter")

	item, ok := sess.Find("galleria-kimchi")
	require.True(t, ok, "should find item by id")
	assert.Equal(t, "galleria", item.Store, "should fill in store of found item")

	_, ok = sess.Find("galleria-tofu")
	assert.False(t, ok, "shouldn't find unknown item")
}

// fakeCatalog returns catalog with one fake item per store.
func fakeCatalog(stores ...string) models.Catalog {
	cat := models.NewCatalog()
	for _, store := range stores {
		cat.Add(store, modelstesting.FakeFlyerItem(func(i *models.FlyerItem) { i.Store = store }))
	}
	return cat
}
