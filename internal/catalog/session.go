package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/MichalMitros/flyer-shopper/internal/debounce"
	"github.com/MichalMitros/flyer-shopper/internal/filter"
	"github.com/MichalMitros/flyer-shopper/internal/platform"
	"github.com/MichalMitros/flyer-shopper/internal/platform/models"
	"github.com/rs/zerolog"
)

//go:generate mockery --name FlyerSource --filename flyer_source.go
//go:generate mockery --name Notifier --filename notifier.go

// FlyerSource fetches flyer catalogs.
type FlyerSource interface {
	GetFlyers(ctx context.Context, state filter.State) (models.Catalog, error)
}

// Notifier shows failures to the shopper.
type Notifier interface {
	Error(msg string, err error)
}

// Option is custom configuration of Session.
type Option func(s *Session)

// WithDebouncer sets debouncer used for search and filter changes.
func WithDebouncer(debouncer *debounce.Debouncer) Option {
	return func(s *Session) {
		s.debouncer = debouncer
	}
}

// WithLogger sets logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithOnUpdate sets function called after each fetched catalog is applied.
func WithOnUpdate(onUpdate func()) Option {
	return func(s *Session) {
		s.onUpdate = onUpdate
	}
}

// Session holds the fetched catalog, the selected store and the filter used for fetching.
type Session struct {
	source    FlyerSource
	notifier  Notifier
	debouncer *debounce.Debouncer
	logger    *zerolog.Logger
	onUpdate  func()

	mu          sync.RWMutex
	catalog     models.Catalog
	activeStore string
	state       filter.State
	// issued is the sequence number of the latest fetch, applied of the latest applied response.
	issued  uint64
	applied uint64
}

// NewSession returns new Session with default filter and empty catalog.
func NewSession(source FlyerSource, notifier Notifier, ops ...Option) *Session {
	nop := zerolog.Nop()
	sess := &Session{
		source:   source,
		notifier: notifier,
		logger:   &nop,
		catalog:  models.NewCatalog(),
		state:    filter.Default(),
	}

	for _, op := range ops {
		op(sess)
	}

	if sess.debouncer == nil {
		sess.debouncer = debounce.New(debounce.DefaultDelay)
	}

	return sess
}

// Refresh fetches catalog for current filter and applies it, unless a newer fetch was applied meanwhile.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	state := s.state
	s.mu.Unlock()

	catalog, err := s.source.GetFlyers(ctx, state)
	if err != nil {
		s.logger.Error().Err(err).Uint64("seq", seq).Msg("can't fetch flyers")
		s.notifier.Error("Failed to load flyers. Please try again later.", err)
		return fmt.Errorf("can't refresh catalog: %w", err)
	}

	if !s.apply(seq, catalog) {
		s.logger.Debug().Uint64("seq", seq).Msg("dropping stale catalog")
		return nil
	}

	s.logger.Debug().Uint64("seq", seq).Int("items", catalog.Len()).Msg("catalog refreshed")
	if s.onUpdate != nil {
		s.onUpdate()
	}

	return nil
}

func (s *Session) apply(seq uint64, catalog models.Catalog) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.applied {
		return false
	}

	s.applied = seq
	s.catalog = catalog
	if !catalog.Has(s.activeStore) {
		s.activeStore = ""
		if len(catalog.Stores) > 0 {
			s.activeStore = catalog.Stores[0]
		}
	}

	return true
}

// SetSearch changes search query and schedules a debounced refresh.
func (s *Session) SetSearch(ctx context.Context, query string) {
	s.UpdateFilter(ctx, func(state *filter.State) { state.Search = query })
}

// UpdateFilter changes filter with update and schedules a debounced refresh.
func (s *Session) UpdateFilter(ctx context.Context, update func(state *filter.State)) {
	s.mu.Lock()
	update(&s.state)
	s.state = s.state.Normalize()
	s.mu.Unlock()

	s.debouncer.Schedule(func() {
		// failures are logged and notified by Refresh
		_ = s.Refresh(ctx)
	})
}

// SetFilter replaces filter without fetching.
func (s *Session) SetFilter(state filter.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state.Normalize()
}

// Flush runs scheduled refresh immediately. Returns false when nothing was scheduled.
func (s *Session) Flush() bool {
	return s.debouncer.Flush()
}

// Filter returns current filter.
func (s *Session) Filter() filter.State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// SelectStore makes store the active one.
func (s *Session) SelectStore(store string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.catalog.Has(store) {
		return fmt.Errorf("can't select store %q: %w", store, platform.ErrUnknownStore)
	}
	s.activeStore = store

	return nil
}

// ActiveStore returns selected store, empty when catalog has no stores.
func (s *Session) ActiveStore() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.activeStore
}

// Stores returns store keys in catalog order.
func (s *Session) Stores() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.catalog.Stores)
}

// StoreItems returns all items of store, unfiltered.
func (s *Session) StoreItems(store string) []models.FlyerItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.catalog.StoreItems(store)
}

// View returns active store's items filtered and sorted with current filter.
func (s *Session) View() []models.FlyerItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Apply(s.catalog.StoreItems(s.activeStore))
}

// Find returns catalog item with id.
func (s *Session) Find(id string) (models.FlyerItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.catalog.Find(id)
}
