package shoppinglist

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/MichalMitros/flyer-shopper/internal/export"
	"github.com/MichalMitros/flyer-shopper/internal/platform/models"
	"github.com/rs/zerolog"
)

//go:generate mockery --name Remote --filename remote.go
//go:generate mockery --name Notifier --filename notifier.go

// DefaultMaxQuantity is the highest quantity increments can reach.
const DefaultMaxQuantity = 99

// ClearPrompt is the question shoppers confirm before the list is cleared.
const ClearPrompt = "Are you sure you want to clear your shopping list? This action cannot be undone."

// Remote is the server side of the shopping list.
type Remote interface {
	// GetShoppingList returns the canonical list.
	GetShoppingList(ctx context.Context) ([]models.Entry, error)
	// ReplaceShoppingList replaces the whole list and returns what the server stored.
	ReplaceShoppingList(ctx context.Context, entries []models.Entry) ([]models.Entry, error)
	// DeleteShoppingListEntry deletes the entry with id.
	DeleteShoppingListEntry(ctx context.Context, id string) error
	// ClearShoppingList removes all entries.
	ClearShoppingList(ctx context.Context) error
}

// Notifier shows transient messages to the shopper.
type Notifier interface {
	Info(msg string)
	Error(msg string, err error)
}

// Confirmer asks the shopper to confirm prompt.
type Confirmer func(prompt string) bool

// Option is custom configuration of List.
type Option func(l *List)

// WithMaxQuantity overrides DefaultMaxQuantity.
func WithMaxQuantity(maxQuantity int) Option {
	return func(l *List) {
		if maxQuantity > 0 {
			l.maxQuantity = maxQuantity
		}
	}
}

// WithLogger sets logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(l *List) {
		l.logger = logger
	}
}

// List is the local copy of the server's shopping list.
// Mutations are optimistic full replaces of the server's list, reverted when the server call fails.
type List struct {
	remote      Remote
	notifier    Notifier
	maxQuantity int
	logger      *zerolog.Logger

	// opMu serializes mutations including their server round trip.
	opMu    sync.Mutex
	mu      sync.RWMutex
	entries []models.Entry
}

// NewList returns new empty List. Call Load to fetch server's entries.
func NewList(remote Remote, notifier Notifier, ops ...Option) *List {
	nop := zerolog.Nop()
	list := &List{
		remote:      remote,
		notifier:    notifier,
		maxQuantity: DefaultMaxQuantity,
		logger:      &nop,
		entries:     []models.Entry{},
	}

	for _, op := range ops {
		op(list)
	}

	return list
}

// Load replaces local entries with the server's list.
func (l *List) Load(ctx context.Context) error {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	entries, err := l.remote.GetShoppingList(ctx)
	if err != nil {
		l.notifier.Error("Failed to load shopping list. Please try again later.", err)
		return fmt.Errorf("can't load shopping list: %w", err)
	}

	l.set(l.normalize(entries))

	return nil
}

// Entries returns copy of entries in server order.
func (l *List) Entries() []models.Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return slices.Clone(l.entries)
}

// Find returns the entry with id.
func (l *List) Find(id string) (models.Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ix := indexOf(l.entries, id)
	if ix < 0 {
		return models.Entry{}, false
	}

	return l.entries[ix], true
}

// Add adds item with quantity 1, or increments its quantity when it is already listed.
func (l *List) Add(ctx context.Context, item models.FlyerItem) error {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	id := item.Slug()
	snapshot := l.Entries()
	if indexOf(snapshot, id) >= 0 {
		return l.incrementQuantity(ctx, snapshot, id, 1)
	}

	next := append(slices.Clone(snapshot), models.NewEntry(item))
	if err := l.replace(ctx, snapshot, next); err != nil {
		l.notifier.Error("Failed to add item to shopping list. Please try again.", err)
		return fmt.Errorf("can't add %q to shopping list: %w", id, err)
	}

	l.notifier.Info(fmt.Sprintf("%s added to shopping list.", item.Name))

	return nil
}

// IncrementQuantity changes quantity of the entry with id by delta, keeping it within [1, max quantity].
// Does nothing when there is no such entry.
func (l *List) IncrementQuantity(ctx context.Context, id string, delta int) error {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	return l.incrementQuantity(ctx, l.Entries(), id, delta)
}

func (l *List) incrementQuantity(ctx context.Context, snapshot []models.Entry, id string, delta int) error {
	ix := indexOf(snapshot, id)
	if ix < 0 {
		l.logger.Debug().Str("id", id).Msg("entry to update not found")
		return nil
	}

	next := slices.Clone(snapshot)
	next[ix].Quantity = l.clamp(next[ix].Quantity + delta)

	if err := l.replace(ctx, snapshot, next); err != nil {
		l.notifier.Error("Failed to update item quantity. Please try again.", err)
		return fmt.Errorf("can't update quantity of %q: %w", id, err)
	}

	return nil
}

// Remove deletes the entry with id from the server and then from the local list.
func (l *List) Remove(ctx context.Context, id string) error {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	if err := l.remote.DeleteShoppingListEntry(ctx, id); err != nil {
		l.notifier.Error("Failed to remove item from shopping list. Please try again.", err)
		return fmt.Errorf("can't remove %q from shopping list: %w", id, err)
	}

	l.mu.Lock()
	l.entries = slices.DeleteFunc(slices.Clone(l.entries), func(e models.Entry) bool { return e.ID == id })
	l.mu.Unlock()

	return nil
}

// Clear removes all entries once confirm approves ClearPrompt, then reloads the server's list.
// Nothing happens when confirm declines.
func (l *List) Clear(ctx context.Context, confirm Confirmer) error {
	if confirm == nil || !confirm(ClearPrompt) {
		l.logger.Debug().Msg("clearing shopping list not confirmed")
		return nil
	}

	l.opMu.Lock()
	defer l.opMu.Unlock()

	if err := l.remote.ClearShoppingList(ctx); err != nil {
		l.notifier.Error("Failed to clear shopping list. Please try again.", err)
		return fmt.Errorf("can't clear shopping list: %w", err)
	}

	entries, err := l.remote.GetShoppingList(ctx)
	if err != nil {
		// the server confirmed clearing
		l.set([]models.Entry{})
		l.notifier.Error("Shopping list cleared, but it couldn't be reloaded.", err)
		return fmt.Errorf("can't reload cleared shopping list: %w", err)
	}

	l.set(l.normalize(entries))
	l.notifier.Info("Shopping list cleared.")

	return nil
}

// GroupByStore partitions entries by store in order of first appearance.
// Entries without a store are grouped under models.Uncategorized.
func (l *List) GroupByStore() []models.StoreGroup {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return groupByStore(l.entries)
}

// TotalItemCount returns sum of entries' quantities.
func (l *List) TotalItemCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0
	for _, entry := range l.entries {
		total += entry.Quantity
	}

	return total
}

// ExportAsText returns the list as plain text summary.
func (l *List) ExportAsText() string {
	return export.Text(l.GroupByStore())
}

// replace applies next optimistically and persists it. On failure local entries go back to snapshot.
func (l *List) replace(ctx context.Context, snapshot, next []models.Entry) error {
	l.set(next)

	stored, err := l.remote.ReplaceShoppingList(ctx, next)
	if err != nil {
		l.set(snapshot)
		return err
	}

	l.set(l.normalize(stored))

	return nil
}

func (l *List) set(entries []models.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = entries
}

// normalize fixes entries received from the server: quantities below 1 become 1,
// missing ids are rebuilt and duplicated ids are merged.
func (l *List) normalize(entries []models.Entry) []models.Entry {
	result := make([]models.Entry, 0, len(entries))

	for _, entry := range entries {
		if entry.Quantity < 1 {
			entry.Quantity = 1
		}
		if entry.ID == "" {
			entry.ID = entry.Slug()
		}

		if ix := indexOf(result, entry.ID); ix >= 0 {
			l.logger.Warn().Str("id", entry.ID).Msg("merging duplicated shopping list entry")
			result[ix].Quantity = l.clamp(result[ix].Quantity + entry.Quantity)
			continue
		}

		result = append(result, entry)
	}

	return result
}

func (l *List) clamp(quantity int) int {
	return max(1, min(l.maxQuantity, quantity))
}

func groupByStore(entries []models.Entry) []models.StoreGroup {
	groups := []models.StoreGroup{}
	positions := map[string]int{}

	for _, entry := range entries {
		store := entry.StoreKey()
		ix, ok := positions[store]
		if !ok {
			ix = len(groups)
			positions[store] = ix
			groups = append(groups, models.StoreGroup{Store: store})
		}
		groups[ix].Entries = append(groups[ix].Entries, entry)
	}

	return groups
}

func indexOf(entries []models.Entry, id string) int {
	return slices.IndexFunc(entries, func(e models.Entry) bool { return e.ID == id })
}
