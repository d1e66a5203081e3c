package catalogue_test

import (
	"testing"
	"time"

	"github.com/niksmo/salesops/internal/core/catalogue"
	"github.com/niksmo/salesops/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(ps []domain.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestKeysOf(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want catalogue.SortKeys
	}{
		{"ColorBeforeParen", "Dog Collar Red (XL)", catalogue.SortKeys{Color: "Red", Size: "XL", SizeOrder: 8}},
		{"LongestSize", "Harness XXXL", catalogue.SortKeys{Color: "XXXL", Size: "XXXL", SizeOrder: 10}},
		{"NoSize", "Dog Bowl", catalogue.SortKeys{Color: "Bowl", Size: "ZZZ", SizeOrder: 99}},
		{"SizeInsideWordIgnored", "Medium Bowl", catalogue.SortKeys{Color: "Bowl", Size: "ZZZ", SizeOrder: 99}},
		{"SmallestSize", "Tee (XXXXS)", catalogue.SortKeys{Color: "Tee", Size: "XXXXS", SizeOrder: 1}},
		{"Empty", "", catalogue.SortKeys{Color: "", Size: "ZZZ", SizeOrder: 99}},
		{"Underscore", "Tee_XL", catalogue.SortKeys{Color: "Tee_XL", Size: "XL", SizeOrder: 8}},
		{"HyphenBound", "Harness-Pink-XXL", catalogue.SortKeys{Color: "Harness-Pink-XXL", Size: "XXL", SizeOrder: 9}},
		{"DigitPrefixIgnored", "Bowl 3XL", catalogue.SortKeys{Color: "3XL", Size: "ZZZ", SizeOrder: 99}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, catalogue.KeysOf(tt.in))
		})
	}
}

func TestMarkNew(t *testing.T) {
	since := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	ps := []domain.Product{
		{Name: "old", CreatedAt: since.Add(-time.Hour)},
		{Name: "edge", CreatedAt: since},
		{Name: "fresh", CreatedAt: since.Add(time.Hour)},
		{Name: "unknown"},
	}

	catalogue.MarkNew(ps, since)

	assert.False(t, ps[0].New)
	assert.True(t, ps[1].New)
	assert.True(t, ps[2].New)
	assert.False(t, ps[3].New)
}

func TestSort(t *testing.T) {
	t.Run("RateBreaksTies", func(t *testing.T) {
		ps := []domain.Product{
			{Name: "Bowl", Brand: "A", Rate: 300},
			{Name: "Bowl", Brand: "A", Rate: 100},
			{Name: "Bowl", Brand: "A", Rate: 200},
		}
		catalogue.Sort(ps, domain.SortDefault)
		require.Len(t, ps, 3)
		assert.Equal(t, 100.0, ps[0].Rate)
		assert.Equal(t, 200.0, ps[1].Rate)
		assert.Equal(t, 300.0, ps[2].Rate)
	})

	t.Run("DefaultComposite", func(t *testing.T) {
		ps := []domain.Product{
			{Name: "b-old", Brand: "Beta"},
			{Name: "a-old", Brand: "Alpha", Category: "Toys"},
			{Name: "a-new", Brand: "Alpha", Category: "Toys", New: true},
			{Name: "a-food", Brand: "Alpha", Category: "Food"},
			{Name: "a-food-2024", Brand: "Alpha", Category: "Food", Series: "2024"},
		}
		catalogue.Sort(ps, domain.SortDefault)
		assert.Equal(t,
			[]string{"a-new", "a-food-2024", "a-food", "a-old", "b-old"},
			names(ps),
		)
	})

	t.Run("ColorThenSize", func(t *testing.T) {
		ps := []domain.Product{
			{Name: "Harness Red (XL)", Brand: "A"},
			{Name: "Harness Blue (S)", Brand: "A"},
			{Name: "Harness Red (S)", Brand: "A"},
			{Name: "Harness Blue (XXL)", Brand: "A"},
			{Name: "Harness Red", Brand: "A"},
		}
		catalogue.Sort(ps, domain.SortDefault)
		assert.Equal(t,
			[]string{
				"Harness Blue (S)",
				"Harness Blue (XXL)",
				"Harness Red (S)",
				"Harness Red (XL)",
				"Harness Red",
			},
			names(ps),
		)
	})

	t.Run("PriceAsc", func(t *testing.T) {
		ps := []domain.Product{
			{Name: "c", Rate: 20},
			{Name: "b", Rate: 10},
			{Name: "a", Rate: 20},
		}
		catalogue.Sort(ps, domain.SortPriceAsc)
		assert.Equal(t, []string{"b", "a", "c"}, names(ps))
	})

	t.Run("PriceDesc", func(t *testing.T) {
		ps := []domain.Product{
			{Name: "c", Rate: 20},
			{Name: "b", Rate: 10},
			{Name: "a", Rate: 20},
		}
		catalogue.Sort(ps, domain.SortPriceDesc)
		assert.Equal(t, []string{"a", "c", "b"}, names(ps))
	})

	t.Run("Catalogue", func(t *testing.T) {
		ps := []domain.Product{
			{Name: "p2o1", CataloguePage: 2, CatalogueOrder: 1},
			{Name: "p1o2", CataloguePage: 1, CatalogueOrder: 2},
			{Name: "p1o1", CataloguePage: 1, CatalogueOrder: 1},
		}
		catalogue.Sort(ps, domain.SortCatalogue)
		assert.Equal(t, []string{"p1o1", "p1o2", "p2o1"}, names(ps))
	})
}
