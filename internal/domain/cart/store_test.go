package cart

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tejash97/klassico-style-haven/internal/catalog"
	"github.com/Tejash97/klassico-style-haven/internal/infrastructure/storage"
	"github.com/Tejash97/klassico-style-haven/internal/infrastructure/storage/mocks"
	"github.com/Tejash97/klassico-style-haven/internal/notification"
)

func intPtr(v int) *int { return &v }

func product(id string, price int64) catalog.Product {
	return catalog.Product{ID: id, Name: "Product " + id, Slug: id, Price: decimal.NewFromInt(price)}
}

func saleProduct(id string, price int64, discount int) catalog.Product {
	p := product(id, price)
	p.IsSale = true
	p.Discount = intPtr(discount)
	return p
}

func newTestStore() (*Store, *mocks.MockStorage, *notification.Queue) {
	st := mocks.NewMockStorage()
	q := notification.NewQueue(50)
	return NewStore(st, WithNotifier(q)), st, q
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

// ============================================
// Add Tests
// ============================================

func TestStore_Add_AppendsNewEntry(t *testing.T) {
	s, st, q := newTestStore()

	err := s.Add(product("p1", 2499), 1)

	require.NoError(t, err)
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].Product.ID)
	assert.Equal(t, 1, items[0].Quantity)

	require.Len(t, st.SetCalls, 1)
	assert.Equal(t, storage.DefaultKey, st.SetCalls[0].Key)

	toasts := q.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, notification.LevelSuccess, toasts[0].Level)
	assert.Equal(t, "Product p1 added to cart", toasts[0].Message)
}

func TestStore_Add_AccumulatesQuantity(t *testing.T) {
	s, _, _ := newTestStore()

	require.NoError(t, s.Add(product("p1", 100), 2))
	require.NoError(t, s.Add(product("p1", 100), 3))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestStore_Add_KeepsOriginalSnapshot(t *testing.T) {
	s, _, _ := newTestStore()

	require.NoError(t, s.Add(product("p1", 1000), 1))
	repriced := product("p1", 1500)
	repriced.Name = "Renamed"
	require.NoError(t, s.Add(repriced, 1))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Product p1", items[0].Product.Name)
	assertDecimal(t, "1000", items[0].Product.Price)
	assertDecimal(t, "2000", s.Total())
}

func TestStore_Add_PreservesInsertionOrder(t *testing.T) {
	s, _, _ := newTestStore()

	require.NoError(t, s.Add(product("a", 1), 1))
	require.NoError(t, s.Add(product("b", 1), 1))
	require.NoError(t, s.Add(product("c", 1), 1))
	require.NoError(t, s.Add(product("a", 1), 4))

	var ids []string
	for _, e := range s.Items() {
		ids = append(ids, e.Product.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestStore_Add_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		product  catalog.Product
		quantity int
		err      error
	}{
		{"zero quantity", product("p1", 1), 0, ErrInvalidQuantity},
		{"negative quantity", product("p1", 1), -2, ErrInvalidQuantity},
		{"missing product id", catalog.Product{Name: "ghost"}, 1, ErrInvalidProduct},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, st, q := newTestStore()

			err := s.Add(tt.product, tt.quantity)

			assert.ErrorIs(t, err, tt.err)
			assert.True(t, s.IsEmpty())
			assert.Empty(t, st.SetCalls)
			assert.Empty(t, q.Drain())
		})
	}
}

func TestStore_Add_Uniqueness(t *testing.T) {
	s, _, _ := newTestStore()
	ids := []string{"a", "b", "a", "c", "b", "a", "d", "c"}

	for i, id := range ids {
		require.NoError(t, s.Add(product(id, int64(i+1)), i%3+1))
	}

	seen := make(map[string]bool)
	for _, e := range s.Items() {
		assert.False(t, seen[e.Product.ID], "duplicate entry for %s", e.Product.ID)
		seen[e.Product.ID] = true
		assert.GreaterOrEqual(t, e.Quantity, 1)
	}
	assert.Len(t, seen, 4)
}

// ============================================
// Remove / SetQuantity / Clear Tests
// ============================================

func TestStore_Remove(t *testing.T) {
	s, st, q := newTestStore()
	require.NoError(t, s.Add(product("a", 100), 2))
	require.NoError(t, s.Add(product("b", 50), 1))
	q.Drain()

	s.Remove("a")

	assert.Equal(t, 0, s.Quantity("a"))
	assert.Equal(t, 1, s.Count())
	assertDecimal(t, "50", s.Total())
	assert.Len(t, st.SetCalls, 3)

	toasts := q.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, notification.LevelInfo, toasts[0].Level)
	assert.Equal(t, "Item removed from cart", toasts[0].Message)
}

func TestStore_Remove_AbsentIsNoop(t *testing.T) {
	s, _, _ := newTestStore()
	require.NoError(t, s.Add(product("a", 100), 2))

	s.Remove("missing")

	assert.Equal(t, 2, s.Count())
	assert.Len(t, s.Items(), 1)
}

func TestStore_SetQuantity_IsAbsolute(t *testing.T) {
	s, st, q := newTestStore()
	require.NoError(t, s.Add(product("p", 10), 2))
	q.Drain()

	s.SetQuantity("p", 5)

	assert.Equal(t, 5, s.Quantity("p"))
	assert.Len(t, st.SetCalls, 2)
	assert.Empty(t, q.Drain())
}

func TestStore_SetQuantity_NonPositiveRemoves(t *testing.T) {
	for _, qty := range []int{0, -1} {
		s, _, _ := newTestStore()
		require.NoError(t, s.Add(product("p", 10), 3))

		s.SetQuantity("p", qty)

		assert.True(t, s.IsEmpty(), "quantity %d", qty)
	}
}

func TestStore_SetQuantity_UnknownIsNoop(t *testing.T) {
	s, _, _ := newTestStore()
	require.NoError(t, s.Add(product("p", 10), 3))

	s.SetQuantity("other", 7)

	assert.Equal(t, 3, s.Count())
	assert.Equal(t, 0, s.Quantity("other"))
}

func TestStore_Clear(t *testing.T) {
	s, st, q := newTestStore()
	require.NoError(t, s.Add(product("a", 10), 1))
	q.Drain()

	s.Clear()

	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.Count())
	assert.True(t, s.Total().IsZero())
	assert.Equal(t, []string{storage.DefaultKey}, st.DeleteCalls)
	_, found := st.Value(storage.DefaultKey)
	assert.False(t, found)

	toasts := q.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Cart cleared", toasts[0].Message)
}

// ============================================
// Total / Count Tests
// ============================================

func TestStore_Total_Discount(t *testing.T) {
	tests := []struct {
		name     string
		product  catalog.Product
		expected string
	}{
		{"on sale with discount", saleProduct("p", 1000, 20), "800"},
		{"discount without sale flag", func() catalog.Product {
			p := saleProduct("p", 1000, 20)
			p.IsSale = false
			return p
		}(), "1000"},
		{"sale without discount", func() catalog.Product {
			p := product("p", 1000)
			p.IsSale = true
			return p
		}(), "1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestStore()
			require.NoError(t, s.Add(tt.product, 1))
			assertDecimal(t, tt.expected, s.Total())
		})
	}
}

func TestStore_Count_IsQuantitySum(t *testing.T) {
	s, _, _ := newTestStore()
	require.NoError(t, s.Add(product("a", 1), 2))
	require.NoError(t, s.Add(product("b", 1), 3))

	assert.Equal(t, 5, s.Count())
}

func TestStore_EmptyIdentities(t *testing.T) {
	s, _, _ := newTestStore()

	assert.Equal(t, 0, s.Count())
	assert.True(t, s.Total().IsZero())
	assert.True(t, s.IsEmpty())
	assert.NotNil(t, s.Items())
}

func TestStore_Scenario(t *testing.T) {
	s, _, _ := newTestStore()

	require.NoError(t, s.Add(product("A", 2499), 1))
	require.NoError(t, s.Add(saleProduct("B", 1899, 15), 2))
	assert.Equal(t, 3, s.Count())
	assertDecimal(t, "5727.3", s.Total())

	s.Remove("A")
	assert.Equal(t, 2, s.Count())
	assertDecimal(t, "3228.3", s.Total())

	s.Clear()
	assert.Equal(t, 0, s.Count())
	assert.True(t, s.Total().IsZero())
}

// ============================================
// Persistence Tests
// ============================================

func TestStore_LoadsPersistedCart(t *testing.T) {
	st := mocks.NewMockStorage()
	first := NewStore(st)
	require.NoError(t, first.Add(product("A", 2499), 1))
	require.NoError(t, first.Add(saleProduct("B", 1899, 15), 2))

	reloaded := NewStore(st)

	assert.Equal(t, first.Count(), reloaded.Count())
	assert.True(t, first.Total().Equal(reloaded.Total()))
	require.Len(t, reloaded.Items(), 2)
	assert.Equal(t, "A", reloaded.Items()[0].Product.ID)
	assert.Equal(t, 2, reloaded.Quantity("B"))
}

func TestStore_CustomKey(t *testing.T) {
	st := mocks.NewMockStorage()
	s := NewStore(st, WithKey("other_cart"))
	require.NoError(t, s.Add(product("A", 1), 1))

	_, found := st.Value(storage.DefaultKey)
	assert.False(t, found)
	_, found = st.Value("other_cart")
	assert.True(t, found)
	assert.Equal(t, []string{"other_cart"}, st.GetCalls)
}

func TestStore_CorruptStorageYieldsEmptyCart(t *testing.T) {
	for _, raw := range []string{"{not json", `{"product":{}}`, `"text"`, ""} {
		st := mocks.NewMockStorage()
		st.SetValue(storage.DefaultKey, raw)

		s := NewStore(st)

		assert.True(t, s.IsEmpty(), "stored value %q", raw)
		assert.Equal(t, 0, s.Count())
	}
}

func TestStore_ReadFailureYieldsEmptyCart(t *testing.T) {
	st := mocks.NewMockStorage()
	st.SetValue(storage.DefaultKey, `[{"product":{"id":"A","price":"10"},"quantity":1}]`)
	st.GetErr = errors.New("storage unavailable")

	s := NewStore(st)

	assert.True(t, s.IsEmpty())
}

func TestStore_WriteFailureKeepsInMemoryState(t *testing.T) {
	s, st, q := newTestStore()
	st.SetErr = errors.New("quota exceeded")

	require.NoError(t, s.Add(product("A", 100), 2))
	s.SetQuantity("A", 4)

	assert.Equal(t, 4, s.Count())
	assertDecimal(t, "400", s.Total())
	assert.Len(t, st.SetCalls, 2)
	_, found := st.Value(storage.DefaultKey)
	assert.False(t, found)
	assert.Len(t, q.Drain(), 1)
}

// ============================================
// Observer Tests
// ============================================

func TestStore_Subscribe_ReceivesChanges(t *testing.T) {
	s, st, _ := newTestStore()
	var changes []Change
	s.Subscribe(func(c Change) {
		// state is persisted before observers run
		assert.Equal(t, len(changes)+1, len(st.SetCalls)+len(st.DeleteCalls))
		changes = append(changes, c)
	})

	require.NoError(t, s.Add(product("A", 100), 2))
	s.SetQuantity("A", 3)
	s.Remove("A")
	s.Clear()

	require.Len(t, changes, 4)
	assert.Equal(t, EventItemAdded, changes[0].Type)
	assert.Equal(t, "A", changes[0].ProductID)
	assert.Equal(t, 2, changes[0].Quantity)
	assert.Equal(t, 2, changes[0].Count)
	assertDecimal(t, "200", changes[0].Total)

	assert.Equal(t, EventQuantityUpdated, changes[1].Type)
	assert.Equal(t, 3, changes[1].Quantity)

	assert.Equal(t, EventItemRemoved, changes[2].Type)
	assert.Equal(t, 0, changes[2].Quantity)
	assert.Empty(t, changes[2].Entries)

	assert.Equal(t, EventCartCleared, changes[3].Type)
	assert.Equal(t, 0, changes[3].Count)
}

func TestStore_Unsubscribe(t *testing.T) {
	s, _, _ := newTestStore()
	calls := 0
	unsubscribe := s.Subscribe(func(Change) { calls++ })

	require.NoError(t, s.Add(product("A", 1), 1))
	unsubscribe()
	require.NoError(t, s.Add(product("A", 1), 1))
	unsubscribe()

	assert.Equal(t, 1, calls)
}

func TestStore_ReentrantObserver(t *testing.T) {
	s, _, _ := newTestStore()
	limit := 3
	s.Subscribe(func(c Change) {
		if c.Type == EventItemAdded && c.Quantity > limit {
			s.SetQuantity(c.ProductID, limit)
		}
	})

	require.NoError(t, s.Add(product("A", 10), 5))

	assert.Equal(t, limit, s.Quantity("A"))
	assert.Equal(t, limit, s.Count())
}

func TestStore_ChangeEntriesAreCopies(t *testing.T) {
	s, _, _ := newTestStore()
	var got Change
	s.Subscribe(func(c Change) { got = c })

	require.NoError(t, s.Add(product("A", 10), 1))
	got.Entries[0].Quantity = 99

	assert.Equal(t, 1, s.Quantity("A"))
}

// ============================================
// AddWithin Tests
// ============================================

func TestStore_AddWithin_EnforcesLimit(t *testing.T) {
	s, st, q := newTestStore()

	require.NoError(t, s.AddWithin(product("A", 100), 2, 3))
	q.Drain()
	sets := len(st.SetCalls)

	err := s.AddWithin(product("A", 100), 2, 3)

	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.Equal(t, 2, s.Quantity("A"))
	assert.Len(t, st.SetCalls, sets)
	assert.Empty(t, q.Drain())

	require.NoError(t, s.AddWithin(product("A", 100), 1, 3))
	assert.Equal(t, 3, s.Quantity("A"))
}

func TestStore_AddWithin_NoLimit(t *testing.T) {
	s, _, _ := newTestStore()

	require.NoError(t, s.AddWithin(product("A", 100), 50, 0))

	assert.Equal(t, 50, s.Quantity("A"))
}

func TestStore_AddWithin_ConcurrentAddsRespectLimit(t *testing.T) {
	s, _, _ := newTestStore()
	const limit = 5

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.AddWithin(product("A", 100), 1, limit); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, accepted)
	assert.Equal(t, limit, s.Quantity("A"))
}

// ============================================
// Snapshot Tests
// ============================================

func TestStore_Snapshot(t *testing.T) {
	s, _, _ := newTestStore()
	require.NoError(t, s.Add(product("A", 2499), 1))
	require.NoError(t, s.Add(saleProduct("B", 1899, 15), 2))

	snap := s.Snapshot()

	require.Len(t, snap.Entries, 2)
	assert.Equal(t, 3, snap.Count)
	assertDecimal(t, "5727.3", snap.Total)

	snap.Entries[0].Quantity = 99
	assert.Equal(t, 1, s.Quantity("A"))
}

func TestStore_Snapshot_Empty(t *testing.T) {
	s, _, _ := newTestStore()

	snap := s.Snapshot()

	assert.NotNil(t, snap.Entries)
	assert.Empty(t, snap.Entries)
	assert.Equal(t, 0, snap.Count)
	assert.True(t, snap.Total.IsZero())
}

// ============================================
// Clear Persistence Tests
// ============================================

func TestStore_ClearedCartReloadsEmpty(t *testing.T) {
	st := mocks.NewMockStorage()
	first := NewStore(st)
	require.NoError(t, first.Add(product("A", 100), 1))

	first.Clear()
	reloaded := NewStore(st)

	assert.True(t, reloaded.IsEmpty())
}

func TestStore_ClearDeleteFailureKeepsInMemoryState(t *testing.T) {
	s, st, _ := newTestStore()
	require.NoError(t, s.Add(product("A", 100), 1))
	st.DeleteErr = errors.New("throttled")

	s.Clear()

	assert.True(t, s.IsEmpty())
	_, found := st.Value(storage.DefaultKey)
	assert.True(t, found)
}

func TestStore_Total_NeverNegative(t *testing.T) {
	s, _, _ := newTestStore()
	require.NoError(t, s.Add(saleProduct("A", 1000, 250), 2))
	require.NoError(t, s.Add(product("B", 300), 1))

	assertDecimal(t, "300", s.Total())
}
