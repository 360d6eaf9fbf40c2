// Package inventory manages the studio's product and service collection.
//
// A Store loads the whole collection from a KV key when it is created and
// writes the whole collection back after every mutation. Reads are served
// from memory. The filtered view and the statistics are derived on every
// call; the statistics always cover the unfiltered collection.
//
// Storage failures never take the collection away from the caller. An
// unreadable stored value yields an empty collection and a logged warning. A
// failed write keeps the in-memory change, returns an error wrapping
// types.ErrPersist, and leaves the store pending until Flush succeeds.
package inventory

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/studiobook/pkg/types"
)

// Store is the inventory collection with its current filter. It is safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	kv      types.KV
	key     string
	items   []types.InventoryItem
	filter  types.InventoryFilter
	pending bool

	now   func() time.Time
	newID func() (string, error)
	log   *logrus.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the KV key holding the collection. The default is
// types.InventoryKey.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithClock sets the clock used for LastUpdated.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the item ID generator. The default produces UUIDv7
// strings.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger sets the logger used for storage warnings.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a store over kv, loaded with the stored collection and the
// default filter.
func New(kv types.KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		key:    types.InventoryKey,
		filter: types.DefaultInventoryFilter(),
		now:    time.Now,
		newID:  newUUIDv7,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.items = s.load()
	return s
}

func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (s *Store) load() []types.InventoryItem {
	var items []types.InventoryItem
	found, err := s.kv.Get(s.key, &items)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"key": s.key,
		}).WithError(err).Warn("inventory unreadable, starting empty")
		return []types.InventoryItem{}
	}
	if !found || items == nil {
		return []types.InventoryItem{}
	}
	return items
}

// persist writes the whole collection. The caller must hold s.mu.
func (s *Store) persist() error {
	if err := s.kv.Set(s.key, s.items); err != nil {
		s.pending = true
		s.log.WithFields(logrus.Fields{
			"key":   s.key,
			"items": len(s.items),
		}).WithError(err).Warn("saving inventory failed, change kept in memory")
		if !errors.Is(err, types.ErrPersist) {
			err = fmt.Errorf("%w: %w", types.ErrPersist, err)
		}
		return fmt.Errorf("saving inventory: %w", err)
	}
	s.pending = false
	return nil
}

// Add appends a new item with a fresh ID and LastUpdated set to now, then
// saves the collection. Fields are stored as given. A save failure is
// returned together with the added item, which stays in the collection.
func (s *Store) Add(n types.NewInventoryItem) (types.InventoryItem, error) {
	id, err := s.newID()
	if err != nil {
		return types.InventoryItem{}, fmt.Errorf("generating item id: %w", err)
	}

	item := types.InventoryItem{
		ID:          id,
		SKU:         n.SKU,
		Name:        n.Name,
		Description: n.Description,
		Category:    n.Category,
		Quantity:    n.Quantity,
		Price:       n.Price,
		Location:    n.Location,
		Status:      n.Status,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item.LastUpdated = s.now().UTC()
	s.items = append(s.items, item)
	return item, s.persist()
}

// Update merges patch into the item with the given ID, refreshes its
// LastUpdated, and saves the collection. An unknown ID changes nothing and
// returns nil.
func (s *Store) Update(id string, patch types.InventoryPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	patch.Apply(&s.items[i])
	s.items[i].LastUpdated = s.now().UTC()
	return s.persist()
}

// Remove deletes the item with the given ID and saves the collection. An
// unknown ID changes nothing and returns nil.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return s.persist()
}

// indexOf returns the position of id or -1. The caller must hold s.mu.
func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Flush retries a save that previously failed. It does nothing when the
// stored collection is current.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending {
		return nil
	}
	return s.persist()
}

// Pending reports whether in-memory changes are waiting to be saved.
func (s *Store) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// Get returns the item with the given ID.
func (s *Store) Get(id string) (types.InventoryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return types.InventoryItem{}, false
	}
	return s.items[i], true
}

// All returns a copy of the whole collection in insertion order.
func (s *Store) All() []types.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.InventoryItem{}, s.items...)
}

// SetFilter replaces the current filter. Filters are never saved.
func (s *Store) SetFilter(f types.InventoryFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// Filter returns the current filter.
func (s *Store) Filter() types.InventoryFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Items returns the items matching the current filter in insertion order.
func (s *Store) Items() []types.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Apply(s.filter, s.items)
}

// Stats summarizes the whole collection regardless of the filter.
func (s *Store) Stats() types.InventoryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Summarize(s.items)
}
