package inventory

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/studiobook/internal/memory"
	"github.com/mesh-intelligence/studiobook/internal/sqlite"
	"github.com/mesh-intelligence/studiobook/pkg/types"
)

var t0 = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

// sequentialIDs returns a generator yielding item-1, item-2, ...
func sequentialIDs() func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("item-%d", n), nil
	}
}

// fixedClock returns a clock that advances one minute per call.
func fixedClock() func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Minute)
	}
}

func newTestStore(t *testing.T, kv types.KV) (*Store, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	s := New(kv,
		WithClock(fixedClock()),
		WithIDGenerator(sequentialIDs()),
		WithLogger(logger),
	)
	return s, hook
}

func shampoo() types.NewInventoryItem {
	return types.NewInventoryItem{
		SKU:      "SH-001",
		Name:     "Argan Shampoo",
		Category: types.CategoryItem,
		Quantity: 10,
		Price:    price("2"),
		Location: "Shelf A",
		Status:   types.StatusAvailable,
	}
}

func consult() types.NewInventoryItem {
	return types.NewInventoryItem{
		SKU:      "SV-CON",
		Name:     "Consultation",
		Category: types.CategoryService,
		Quantity: 5,
		Price:    price("1"),
		Location: "Studio",
		Status:   types.StatusLow,
	}
}

func TestNewEmpty(t *testing.T) {
	s, hook := newTestStore(t, memory.NewAttached())
	assert.Empty(t, s.All())
	assert.Empty(t, s.Items())
	assert.Equal(t, types.DefaultInventoryFilter(), s.Filter())
	assert.Equal(t, 0, s.Stats().TotalItems)
	assert.True(t, s.Stats().TotalValue.IsZero())
	assert.Empty(t, hook.AllEntries())
}

func TestAddAssignsIDAndTimestamp(t *testing.T) {
	s, _ := newTestStore(t, memory.NewAttached())

	a, err := s.Add(shampoo())
	require.NoError(t, err)
	b, err := s.Add(shampoo())
	require.NoError(t, err)

	assert.Equal(t, "item-1", a.ID)
	assert.Equal(t, "item-2", b.ID)
	assert.Equal(t, t0.Add(time.Minute), a.LastUpdated)
	assert.Equal(t, "Argan Shampoo", a.Name)
	assert.Len(t, s.All(), 2)
}

func TestDefaultIDsAreUnique(t *testing.T) {
	s := New(memory.NewAttached())
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		item, err := s.Add(shampoo())
		require.NoError(t, err)
		assert.False(t, seen[item.ID], "duplicate id %s", item.ID)
		seen[item.ID] = true
	}
}

func TestAddDoesNotValidate(t *testing.T) {
	s, _ := newTestStore(t, memory.NewAttached())
	_, err := s.Add(types.NewInventoryItem{Quantity: -3, Price: price("-1")})
	require.NoError(t, err)
	assert.Equal(t, -3, s.All()[0].Quantity)
}

func TestUpdate(t *testing.T) {
	s, _ := newTestStore(t, memory.NewAttached())
	a, _ := s.Add(shampoo())
	b, _ := s.Add(consult())

	require.NoError(t, s.Update(a.ID, types.InventoryPatch{
		Quantity: ptr(0),
		Status:   ptr(types.StatusOut),
	}))

	got, ok := s.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, 0, got.Quantity)
	assert.Equal(t, types.StatusOut, got.Status)
	assert.Equal(t, "Argan Shampoo", got.Name, "untouched fields kept")
	assert.True(t, got.LastUpdated.After(a.LastUpdated))

	other, _ := s.Get(b.ID)
	assert.Equal(t, b, other, "other items unchanged")
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	kv := memory.NewAttached()
	s, _ := newTestStore(t, kv)
	_, _ = s.Add(shampoo())
	before := s.All()

	require.NoError(t, s.Update("missing", types.InventoryPatch{Name: ptr("x")}))
	assert.Equal(t, before, s.All())
}

func TestRemove(t *testing.T) {
	s, _ := newTestStore(t, memory.NewAttached())
	a, _ := s.Add(shampoo())
	b, _ := s.Add(consult())

	require.NoError(t, s.Remove(a.ID))
	_, ok := s.Get(a.ID)
	assert.False(t, ok)
	assert.Equal(t, []types.InventoryItem{b}, s.All())

	require.NoError(t, s.Remove("missing"))
	assert.Len(t, s.All(), 1)
}

func TestStats(t *testing.T) {
	s, _ := newTestStore(t, memory.NewAttached())
	_, _ = s.Add(shampoo())
	_, _ = s.Add(consult())
	out := shampoo()
	out.Quantity = 0
	out.Status = types.StatusOut
	_, _ = s.Add(out)

	stats := s.Stats()
	assert.Equal(t, 3, stats.TotalItems)
	assert.True(t, stats.TotalValue.Equal(price("25")), "10x2 + 5x1 + 0x2, got %s", stats.TotalValue)
	assert.Equal(t, 1, stats.LowStock)
	assert.Equal(t, 1, stats.OutOfStock)
}

func TestStatsIgnoreFilter(t *testing.T) {
	s, _ := newTestStore(t, memory.NewAttached())
	_, _ = s.Add(shampoo())
	_, _ = s.Add(consult())
	full := s.Stats()

	f := types.DefaultInventoryFilter()
	f.Search = "no such thing"
	s.SetFilter(f)

	assert.Empty(t, s.Items())
	assert.Equal(t, full, s.Stats())
}

func TestStatsDecimalExact(t *testing.T) {
	s, _ := newTestStore(t, memory.NewAttached())
	for i := 0; i < 3; i++ {
		n := shampoo()
		n.Quantity = 1
		n.Price = price("0.10")
		_, _ = s.Add(n)
	}
	assert.Equal(t, "0.3", s.Stats().TotalValue.String())
}

func TestPersistenceRoundTrip(t *testing.T) {
	kv := memory.NewAttached()
	s, _ := newTestStore(t, kv)
	a, _ := s.Add(shampoo())
	_, _ = s.Add(consult())
	require.NoError(t, s.Update(a.ID, types.InventoryPatch{Price: ptr(price("3.50"))}))

	fresh := New(kv)
	require.Len(t, fresh.All(), 2)
	for i, item := range s.All() {
		got := fresh.All()[i]
		assert.Equal(t, item.ID, got.ID)
		assert.Equal(t, item.Name, got.Name)
		assert.True(t, item.Price.Equal(got.Price))
		assert.True(t, item.LastUpdated.Equal(got.LastUpdated))
	}
}

func TestPersistenceSQLite(t *testing.T) {
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}

	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(cfg))
	s, _ := newTestStore(t, b)
	_, err := s.Add(shampoo())
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	b2 := sqlite.NewBackend()
	require.NoError(t, b2.Attach(cfg))
	defer b2.Detach()
	fresh := New(b2)
	require.Len(t, fresh.All(), 1)
	assert.Equal(t, "SH-001", fresh.All()[0].SKU)
}

func TestFilterDoesNotPersist(t *testing.T) {
	kv := memory.NewAttached()
	s, _ := newTestStore(t, kv)
	f := types.DefaultInventoryFilter()
	f.Status = types.StatusLow
	s.SetFilter(f)

	keys, err := kv.Keys("")
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Equal(t, types.DefaultInventoryFilter(), New(kv).Filter())
}

func TestCorruptStorageStartsEmpty(t *testing.T) {
	kv := memory.NewAttached()
	require.NoError(t, kv.SetRaw(types.InventoryKey, []byte(`{"not":"a list"`)))

	s, hook := newTestStore(t, kv)
	assert.Empty(t, s.All())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, types.InventoryKey, hook.LastEntry().Data["key"])

	_, err := s.Add(shampoo())
	require.NoError(t, err)
	assert.Len(t, New(kv).All(), 1, "the next write replaces the corrupt value")
}

func TestDetachedStorageStartsEmpty(t *testing.T) {
	s, hook := newTestStore(t, memory.NewBackend())
	assert.Empty(t, s.All())
	assert.Len(t, hook.AllEntries(), 1)
}

func TestCustomKey(t *testing.T) {
	kv := memory.NewAttached()
	s := New(kv, WithKey("inventory/backroom"))
	_, err := s.Add(shampoo())
	require.NoError(t, err)

	keys, _ := kv.Keys("")
	assert.Equal(t, []string{"inventory/backroom"}, keys)
}

// flakyKV fails every Set while down is true.
type flakyKV struct {
	*memory.Backend
	down bool
}

func (f *flakyKV) Set(key string, value any) error {
	if f.down {
		return errors.New("disk full")
	}
	return f.Backend.Set(key, value)
}

func TestWriteFailureKeepsMemoryState(t *testing.T) {
	kv := &flakyKV{Backend: memory.NewAttached()}
	s, hook := newTestStore(t, kv)
	a, err := s.Add(shampoo())
	require.NoError(t, err)

	kv.down = true
	b, err := s.Add(consult())
	assert.ErrorIs(t, err, types.ErrPersist)
	assert.Equal(t, "item-2", b.ID)
	assert.Len(t, s.All(), 2, "added item kept in memory")
	assert.True(t, s.Pending())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	err = s.Update(a.ID, types.InventoryPatch{Quantity: ptr(1)})
	assert.ErrorIs(t, err, types.ErrPersist)
	got, _ := s.Get(a.ID)
	assert.Equal(t, 1, got.Quantity)

	assert.Len(t, New(kv.Backend).All(), 1, "storage still holds the last good write")

	assert.ErrorIs(t, s.Flush(), types.ErrPersist)

	kv.down = false
	require.NoError(t, s.Flush())
	assert.False(t, s.Pending())
	assert.Len(t, New(kv.Backend).All(), 2)
	assert.NoError(t, s.Flush(), "nothing pending")
}
