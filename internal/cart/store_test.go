package cart

import (
	"sync"
	"testing"

	"github.com/abgdnv/shopmate/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int64, price string, category string) catalog.Product {
	return catalog.Product{
		ID:       catalog.ProductID(id),
		Title:    "product " + price,
		Price:    decimal.RequireFromString(price),
		Category: category,
	}
}

func Test_Store_Add(t *testing.T) {
	// given
	s := NewStore()
	a := product(1, "10.00", "x")
	b := product(2, "5.50", "y")

	// when
	s.Add(a)
	s.Add(b)
	s.Add(a)

	// then
	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, catalog.ProductID(1), lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, catalog.ProductID(2), lines[1].ProductID)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.Equal(t, 3, s.ItemCount())
	assert.True(t, s.Total().Equal(decimal.RequireFromString("25.50")))
}

func Test_Store_Add_KeepsCapturedProductData(t *testing.T) {
	// given
	s := NewStore()
	p := product(1, "10.00", "x")
	s.Add(p)

	// when
	p.Price = decimal.RequireFromString("99.00")
	p.Title = "renamed"
	s.Add(p)

	// then
	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "product 10.00", lines[0].Title)
	assert.True(t, lines[0].Price.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, 2, lines[0].Quantity)
}

func Test_Store_Remove(t *testing.T) {
	testCases := []struct {
		name      string
		remove    int64
		expectIDs []catalog.ProductID
	}{
		{name: "present line is removed", remove: 2, expectIDs: []catalog.ProductID{1, 3}},
		{name: "absent line is a no-op", remove: 42, expectIDs: []catalog.ProductID{1, 2, 3}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s := NewStore()
			s.Add(product(1, "1", "x"))
			s.Add(product(2, "2", "x"))
			s.Add(product(3, "3", "x"))

			// when
			s.Remove(catalog.ProductID(tc.remove))

			// then
			assert.Equal(t, tc.expectIDs, ids(s.Lines()))
		})
	}
}

func Test_Store_SetQuantity(t *testing.T) {
	testCases := []struct {
		name          string
		id            int64
		quantity      int
		expectIDs     []catalog.ProductID
		expectCount   int
		expectVersion uint64
	}{
		{name: "replaces quantity", id: 1, quantity: 5, expectIDs: []catalog.ProductID{1, 2}, expectCount: 6, expectVersion: 3},
		{name: "zero removes the line", id: 1, quantity: 0, expectIDs: []catalog.ProductID{2}, expectCount: 1, expectVersion: 3},
		{name: "negative removes the line", id: 2, quantity: -3, expectIDs: []catalog.ProductID{1}, expectCount: 1, expectVersion: 3},
		{name: "absent line is a no-op", id: 9, quantity: 4, expectIDs: []catalog.ProductID{1, 2}, expectCount: 2, expectVersion: 2},
		{name: "same quantity is a no-op", id: 1, quantity: 1, expectIDs: []catalog.ProductID{1, 2}, expectCount: 2, expectVersion: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s := NewStore()
			s.Add(product(1, "1", "x"))
			s.Add(product(2, "2", "x"))

			// when
			s.SetQuantity(catalog.ProductID(tc.id), tc.quantity)

			// then
			assert.Equal(t, tc.expectIDs, ids(s.Lines()))
			assert.Equal(t, tc.expectCount, s.ItemCount())
			assert.Equal(t, tc.expectVersion, s.Snapshot().Version)
		})
	}
}

func Test_Store_SetQuantity_PreservesPosition(t *testing.T) {
	// given
	s := NewStore()
	s.Add(product(1, "1", "x"))
	s.Add(product(2, "2", "x"))
	s.Add(product(3, "3", "x"))

	// when
	s.SetQuantity(2, 7)

	// then
	assert.Equal(t, []catalog.ProductID{1, 2, 3}, ids(s.Lines()))
	assert.Equal(t, 7, s.Lines()[1].Quantity)
}

func Test_Store_Clear(t *testing.T) {
	// given
	s := NewStore()
	s.Add(product(1, "1", "x"))
	s.Add(product(2, "2", "y"))

	// when
	s.Clear()

	// then
	lines := s.Lines()
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
	assert.Equal(t, 0, s.ItemCount())
	assert.True(t, s.Total().IsZero())
	assert.False(t, s.Contains(1))
}

func Test_Store_EmptyCart(t *testing.T) {
	s := NewStore()

	assert.NotNil(t, s.Lines())
	assert.Empty(t, s.Lines())
	assert.True(t, s.Total().IsZero())
	assert.Equal(t, 0, s.ItemCount())
	assert.Equal(t, uint64(0), s.Snapshot().Version)
}

func Test_Store_Contains(t *testing.T) {
	s := NewStore()
	s.Add(product(1, "1", "x"))

	assert.True(t, s.Contains(1))
	assert.False(t, s.Contains(2))

	s.Remove(1)
	assert.False(t, s.Contains(1))
}

func Test_Store_LinesReturnsCopy(t *testing.T) {
	// given
	s := NewStore()
	s.Add(product(1, "1", "x"))

	// when
	lines := s.Lines()
	lines[0].Quantity = 100

	// then
	assert.Equal(t, 1, s.ItemCount())
}

func Test_Store_Subscribe(t *testing.T) {
	// given
	s := NewStore()
	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		got = append(got, snap)
	})

	// when
	s.Add(product(1, "2.00", "x"))
	s.Add(product(1, "2.00", "x"))
	s.Remove(42)
	s.SetQuantity(42, 3)
	s.Remove(1)
	s.Clear()

	// then
	require.Len(t, got, 3)
	assert.Equal(t, uint64(1), got[0].Version)
	assert.Equal(t, 1, got[0].ItemCount())
	assert.Equal(t, uint64(2), got[1].Version)
	assert.Equal(t, 2, got[1].ItemCount())
	assert.True(t, got[1].Total().Equal(decimal.RequireFromString("4.00")))
	assert.Equal(t, uint64(3), got[2].Version)
	assert.Empty(t, got[2].Lines)

	unsubscribe()
	s.Add(product(2, "1", "x"))
	assert.Len(t, got, 3)
}

func Test_Store_Subscribe_ObservesStateBeforeReturn(t *testing.T) {
	// given
	s := NewStore()
	var countInside int
	s.Subscribe(func(Snapshot) {
		countInside = s.ItemCount()
	})

	// when
	s.Add(product(1, "1", "x"))

	// then
	assert.Equal(t, 1, countInside)
}

func Test_Store_ConcurrentMutations(t *testing.T) {
	// given
	s := NewStore()
	p := product(1, "1.00", "x")
	var versions []uint64
	var mu sync.Mutex
	s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		versions = append(versions, snap.Version)
		mu.Unlock()
	})

	// when
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(p)
			_ = s.Total()
		}()
	}
	wg.Wait()

	// then
	assert.Equal(t, 50, s.ItemCount())
	assert.True(t, s.Total().Equal(decimal.NewFromInt(50)))
	require.Len(t, versions, 50)
	for i, v := range versions {
		assert.Equal(t, uint64(i+1), v)
	}
}

func Test_Categories(t *testing.T) {
	lines := []Line{
		{ProductID: 1, Category: "b"},
		{ProductID: 2, Category: "a"},
		{ProductID: 3, Category: "b"},
	}

	assert.Equal(t, []string{"b", "a"}, Categories(lines))
	assert.Empty(t, Categories(nil))
}

func ids(lines []Line) []catalog.ProductID {
	out := make([]catalog.ProductID, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.ProductID)
	}
	return out
}

func Test_Store_ClearIfVersion(t *testing.T) {
	// given
	s := NewStore()
	s.Add(product(1, "1", "x"))
	version := s.Snapshot().Version

	// when
	s.Add(product(2, "1", "x"))
	stale := s.ClearIfVersion(version)

	// then
	assert.False(t, stale)
	assert.Equal(t, 2, s.ItemCount())

	assert.True(t, s.ClearIfVersion(s.Snapshot().Version))
	assert.Empty(t, s.Lines())
	assert.False(t, s.ClearIfVersion(s.Snapshot().Version))
}
