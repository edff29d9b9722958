package cart

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/shopfront/internal/domain/catalog"
)

func newTestProduct(id int64, title, price string) catalog.Product {
	return catalog.Product{
		ID:       id,
		Title:    title,
		Price:    decimal.RequireFromString(price),
		Category: "test",
		Image:    "https://img.example.com/product.jpg",
	}
}

func TestAddItem_NewLine(t *testing.T) {
	s := New()
	s.AddItem(newTestProduct(1, "Lamp", "10.00"))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, "Lamp", items[0].Title)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestAddItem_RepeatedAddsIncrement(t *testing.T) {
	s := New()
	p := newTestProduct(1, "Lamp", "10.00")

	for range 5 {
		s.AddItem(p)
	}

	items := s.Items()
	require.Len(t, items, 1, "repeated adds must not create duplicate lines")
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 5, s.TotalItems())
}

func TestAddItem_FirstSnapshotWins(t *testing.T) {
	s := New()
	s.AddItem(newTestProduct(1, "Lamp", "10.00"))
	s.AddItem(newTestProduct(1, "Renamed Lamp", "99.00"))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Lamp", items[0].Title)
	assert.True(t, decimal.RequireFromString("10.00").Equal(items[0].Price))
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddItem_PreservesInsertionOrder(t *testing.T) {
	s := New()
	s.AddItem(newTestProduct(3, "C", "3.00"))
	s.AddItem(newTestProduct(1, "A", "1.00"))
	s.AddItem(newTestProduct(2, "B", "2.00"))
	s.AddItem(newTestProduct(1, "A", "1.00"))

	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, int64(3), items[0].ID)
	assert.Equal(t, int64(1), items[1].ID)
	assert.Equal(t, int64(2), items[2].ID)
}

func TestRemoveItem(t *testing.T) {
	s := New()
	s.AddItem(newTestProduct(1, "Lamp", "10.00"))
	s.AddItem(newTestProduct(2, "Chair", "25.00"))

	s.RemoveItem(1)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ID)
}

func TestRemoveItem_UnknownIDIsNoop(t *testing.T) {
	s := New()
	s.AddItem(newTestProduct(1, "Lamp", "10.00"))

	s.RemoveItem(999)

	assert.Len(t, s.Items(), 1)
	assert.Equal(t, 1, s.TotalItems())
}

func TestUpdateQuantity_AbsoluteSet(t *testing.T) {
	s := New()
	s.AddItem(newTestProduct(1, "Lamp", "10.00"))

	s.UpdateQuantity(1, 7)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity, "update is an absolute set, not a delta")
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	s := New()
	s.AddItem(newTestProduct(1, "Lamp", "10.00"))
	s.UpdateQuantity(1, 3)

	s.UpdateQuantity(1, 0)

	assert.Empty(t, s.Items())
	assert.True(t, s.TotalPrice().IsZero())
	assert.Equal(t, 0, s.TotalItems())
}

func TestUpdateQuantity_NegativeRemovesLine(t *testing.T) {
	s := New()
	s.AddItem(newTestProduct(1, "Lamp", "10.00"))

	s.UpdateQuantity(1, -4)

	assert.Empty(t, s.Items())
}

func TestUpdateQuantity_MatchesRemoveItem(t *testing.T) {
	build := func() *Store {
		s := New()
		s.AddItem(newTestProduct(1, "Lamp", "10.00"))
		s.AddItem(newTestProduct(2, "Chair", "25.00"))
		s.UpdateQuantity(2, 4)
		return s
	}

	viaUpdate := build()
	viaUpdate.UpdateQuantity(1, 0)

	viaRemove := build()
	viaRemove.RemoveItem(1)

	assert.Equal(t, viaRemove.Items(), viaUpdate.Items())
}

func TestUpdateQuantity_UnknownIDIsNoop(t *testing.T) {
	s := New()
	s.AddItem(newTestProduct(1, "Lamp", "10.00"))

	s.UpdateQuantity(999, 5)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestClear(t *testing.T) {
	s := New()
	s.AddItem(newTestProduct(1, "Lamp", "10.00"))
	s.AddItem(newTestProduct(2, "Chair", "25.00"))

	s.Clear()

	assert.Empty(t, s.Items())
	assert.True(t, s.TotalPrice().IsZero())
	assert.Equal(t, 0, s.TotalItems())
}

func TestTotals_EmptyCart(t *testing.T) {
	s := New()
	assert.True(t, s.TotalPrice().IsZero())
	assert.Equal(t, 0, s.TotalItems())
}

func TestTotals_MixedCart(t *testing.T) {
	s := New()
	p1 := newTestProduct(1, "Lamp", "10.00")
	p2 := newTestProduct(2, "Chair", "5.00")

	s.AddItem(p1)
	s.AddItem(p1)
	s.AddItem(p2)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
	assert.True(t, decimal.RequireFromString("25.00").Equal(s.TotalPrice()))
	assert.Equal(t, 3, s.TotalItems())
}

func TestTotals_RecomputedAfterMutation(t *testing.T) {
	s := New()
	s.AddItem(newTestProduct(1, "Lamp", "10.00"))
	require.True(t, decimal.RequireFromString("10.00").Equal(s.TotalPrice()))

	s.UpdateQuantity(1, 3)
	assert.True(t, decimal.RequireFromString("30.00").Equal(s.TotalPrice()))

	s.RemoveItem(1)
	assert.True(t, s.TotalPrice().IsZero())
}

func TestOnChange_FiresOnMutation(t *testing.T) {
	var calls int
	s := New(WithOnChange(func() { calls++ }))

	p := newTestProduct(1, "Lamp", "10.00")
	s.AddItem(p)        // 1
	s.AddItem(p)        // 2
	s.UpdateQuantity(1, 5) // 3
	s.RemoveItem(1)     // 4
	s.Clear()           // empty, no change

	assert.Equal(t, 4, calls)
}

func TestOnChange_NoopsDoNotFire(t *testing.T) {
	var calls int
	s := New(WithOnChange(func() { calls++ }))

	s.RemoveItem(42)
	s.UpdateQuantity(42, 3)
	s.Clear()

	assert.Equal(t, 0, calls)
}

func TestTake_SnapshotAndClear(t *testing.T) {
	s := New()
	s.AddItem(newTestProduct(1, "Lamp", "10.00"))
	s.AddItem(newTestProduct(1, "Lamp", "10.00"))
	s.AddItem(newTestProduct(2, "Mug", "5.00"))

	items, total, count := s.Take()
	require.Len(t, items, 2)
	assert.Equal(t, "25.00", total.StringFixed(2))
	assert.Equal(t, 3, count)
	assert.Empty(t, s.Items())
	assert.Equal(t, 0, s.TotalItems())
}

func TestTake_EmptyCart(t *testing.T) {
	var fired int
	s := New(WithOnChange(func() { fired++ }))

	items, total, count := s.Take()
	assert.Empty(t, items)
	assert.True(t, total.IsZero())
	assert.Zero(t, count)
	assert.Zero(t, fired)
}

func TestTake_ConcurrentAddsNeverLost(t *testing.T) {
	s := New()
	p := newTestProduct(1, "Lamp", "10.00")

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	start := make(chan struct{})
	for range n {
		go func() {
			defer wg.Done()
			<-start
			s.AddItem(p)
		}()
	}

	close(start)
	_, _, taken := s.Take()
	wg.Wait()

	// Every add lands either in the snapshot or in the emptied cart.
	assert.Equal(t, n, taken+s.TotalItems())
}

func TestAddItem_ConcurrentSameProduct(t *testing.T) {
	s := New()
	p := newTestProduct(1, "Lamp", "10.00")

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			s.AddItem(p)
		}()
	}
	wg.Wait()

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, n, items[0].Quantity)
	assert.Equal(t, n, s.TotalItems())
}
