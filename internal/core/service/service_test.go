package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/niksmo/salesops/internal/core/domain"
	"github.com/niksmo/salesops/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func testConfig() service.Config {
	return service.Config{
		NewArrivalWindow: 90 * 24 * time.Hour,
		UpperCaseBrands:  []string{"FOFOS"},
		Now:              func() time.Time { return testNow },
	}
}

func TestListCatalogue(t *testing.T) {
	t.Run("SalespersonSeesActiveInStock", func(t *testing.T) {
		storage := new(MockStorage)
		storage.On("ListProducts", mock.Anything, domain.ProductFilter{
			Status: domain.StatusActive,
			Stock:  domain.StockGtZero,
		}).Return([]domain.Product{
			{Name: "Bowl", Brand: "B", Rate: 10},
			{Name: "Leash", Brand: "A", Rate: 5, CreatedAt: testNow},
		}, nil)

		s := service.New(storage, nil, nil, nil, nil, nil, nil, testConfig())
		page, err := s.ListCatalogue(t.Context(), domain.CatalogueQuery{
			Role:   domain.RoleSalesperson,
			Status: domain.StatusInactive,
		})
		require.NoError(t, err)

		assert.False(t, page.Grouped)
		assert.Equal(t, 2, page.TotalCount)
		assert.Equal(t, 1, page.TotalPages)
		assert.Equal(t, 25, page.PerPage)
		require.Len(t, page.Products, 2)
		assert.Equal(t, "Leash", page.Products[0].Name)
		assert.True(t, page.Products[0].New)
		assert.False(t, page.Products[1].New)
		storage.AssertExpectations(t)
	})

	t.Run("GroupedPagesCountDisplayItems", func(t *testing.T) {
		storage := new(MockStorage)
		storage.On("ListProducts", mock.Anything, mock.Anything).Return(
			[]domain.Product{
				{ID: "1", Name: "Harness Red (S)", Brand: "A"},
				{ID: "2", Name: "Harness Red (XL)", Brand: "A"},
				{ID: "3", Name: "Harness Red (M)", Brand: "A"},
				{ID: "4", Name: "Rope Toy", Brand: "B"},
			}, nil,
		)

		s := service.New(storage, nil, nil, nil, nil, nil, nil, testConfig())
		page, err := s.ListCatalogue(t.Context(), domain.CatalogueQuery{
			Role:        domain.RoleAdmin,
			Page:        0,
			PerPage:     1,
			GroupByName: true,
		})
		require.NoError(t, err)

		assert.True(t, page.Grouped)
		assert.Equal(t, 2, page.TotalCount)
		assert.Equal(t, 2, page.TotalPages)
		require.Len(t, page.Items, 1)

		group := page.Items[0]
		assert.Equal(t, domain.DisplayGroup, group.Kind)
		assert.Equal(t, "Harness Red", group.BaseName)
		require.Len(t, group.Products, 3)
		assert.Equal(t, "1", group.Products[0].ID)
		assert.Equal(t, "3", group.Products[1].ID)
		assert.Equal(t, "2", group.Products[2].ID)
	})

	t.Run("NewArrivalsFilter", func(t *testing.T) {
		storage := new(MockStorage)
		storage.On("ListProducts", mock.Anything, domain.ProductFilter{
			Brand:        "Fofos",
			CreatedAfter: testNow.Add(-90 * 24 * time.Hour),
		}).Return([]domain.Product{}, nil)

		s := service.New(storage, nil, nil, nil, nil, nil, nil, testConfig())
		page, err := s.ListCatalogue(t.Context(), domain.CatalogueQuery{
			Brand:       " Fofos ",
			Category:    "ALL",
			NewArrivals: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 0, page.TotalCount)
		assert.Equal(t, 1, page.TotalPages)
		assert.Empty(t, page.Products)
		storage.AssertExpectations(t)
	})

	t.Run("PageOutOfRange", func(t *testing.T) {
		storage := new(MockStorage)
		storage.On("ListProducts", mock.Anything, mock.Anything).Return(
			[]domain.Product{{Name: "Bowl"}}, nil,
		)

		s := service.New(storage, nil, nil, nil, nil, nil, nil, testConfig())
		_, err := s.ListCatalogue(t.Context(), domain.CatalogueQuery{Page: 1})
		assert.ErrorIs(t, err, domain.ErrPageOutOfRange)
	})

	t.Run("InvalidQuery", func(t *testing.T) {
		queries := map[string]domain.CatalogueQuery{
			"PerPageTooBig": {PerPage: 101},
			"NegativePage":  {Page: -1},
			"UnknownSort":   {SortBy: "popularity"},
			"UnknownStatus": {Status: "archived"},
			"UnknownStock":  {Stock: "few"},
		}
		for name, q := range queries {
			t.Run(name, func(t *testing.T) {
				storage := new(MockStorage)
				s := service.New(storage, nil, nil, nil, nil, nil, nil, testConfig())
				_, err := s.ListCatalogue(t.Context(), q)
				assert.ErrorIs(t, err, domain.ErrInvalidQuery)
				storage.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("StorageError", func(t *testing.T) {
		storageErr := errors.New("connection refused")
		storage := new(MockStorage)
		storage.On("ListProducts", mock.Anything, mock.Anything).Return(nil, storageErr)

		s := service.New(storage, nil, nil, nil, nil, nil, nil, testConfig())
		_, err := s.ListCatalogue(t.Context(), domain.CatalogueQuery{})
		assert.ErrorIs(t, err, storageErr)
	})
}

func TestListBrands(t *testing.T) {
	storage := new(MockStorage)
	storage.On("DistinctValues", mock.Anything, domain.FieldBrand).Return(
		[]string{"Fofos", "", "  ", "Royal"}, nil,
	)

	s := service.New(storage, nil, nil, nil, nil, nil, nil, testConfig())
	brands, err := s.ListBrands(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"Fofos", "Royal"}, brands)
}

func TestUpdateProduct(t *testing.T) {
	t.Run("EmptyPatch", func(t *testing.T) {
		storage := new(MockStorage)
		s := service.New(storage, nil, nil, nil, nil, nil, nil, testConfig())
		err := s.UpdateProduct(t.Context(), "id", domain.ProductPatch{})
		assert.ErrorIs(t, err, domain.ErrEmptyPatch)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		storage := new(MockStorage)
		s := service.New(storage, nil, nil, nil, nil, nil, nil, testConfig())
		status := "archived"
		err := s.UpdateProduct(t.Context(), "id", domain.ProductPatch{Status: &status})
		assert.ErrorIs(t, err, domain.ErrInvalidQuery)
	})

	t.Run("NotFound", func(t *testing.T) {
		rate := 99.5
		patch := domain.ProductPatch{Rate: &rate}
		storage := new(MockStorage)
		storage.On("UpdateProduct", mock.Anything, "id", patch).Return(domain.ErrNotFound)

		s := service.New(storage, nil, nil, nil, nil, nil, nil, testConfig())
		err := s.UpdateProduct(t.Context(), "id", patch)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSearchProducts(t *testing.T) {
	t.Run("HitOrderKept", func(t *testing.T) {
		index := new(MockIndex)
		index.On("Search", mock.Anything, "collar", 20).Return(
			[]string{"3", "1", "2"}, nil,
		)
		storage := new(MockStorage)
		storage.On("ReadProducts", mock.Anything, []string{"3", "1", "2"}).Return(
			[]domain.Product{{ID: "1"}, {ID: "3"}}, nil,
		)

		s := service.New(storage, index, nil, nil, nil, nil, nil, testConfig())
		ps, err := s.SearchProducts(t.Context(), " collar ", 0)
		require.NoError(t, err)
		require.Len(t, ps, 2)
		assert.Equal(t, "3", ps[0].ID)
		assert.Equal(t, "1", ps[1].ID)
	})

	t.Run("Disabled", func(t *testing.T) {
		s := service.New(new(MockStorage), nil, nil, nil, nil, nil, nil, testConfig())
		_, err := s.SearchProducts(t.Context(), "collar", 10)
		assert.ErrorIs(t, err, domain.ErrDisabled)
	})

	t.Run("EmptyQuery", func(t *testing.T) {
		s := service.New(new(MockStorage), new(MockIndex), nil, nil, nil, nil, nil, testConfig())
		_, err := s.SearchProducts(t.Context(), "  ", 10)
		assert.ErrorIs(t, err, domain.ErrInvalidQuery)
	})
}

func TestSaveProducts(t *testing.T) {
	ps := []domain.Product{{ItemID: "i1", Name: "Bowl"}, {ItemID: "i2", Name: "Leash"}}

	t.Run("IndexesWithStoredIDs", func(t *testing.T) {
		storage := new(MockStorage)
		storage.On("StoreProducts", mock.Anything, ps).Return([]string{"a", "b"}, nil)
		index := new(MockIndex)
		index.On("IndexProducts", mock.Anything, []domain.Product{
			{ID: "a", ItemID: "i1", Name: "Bowl"},
			{ID: "b", ItemID: "i2", Name: "Leash"},
		}).Return(nil)

		s := service.New(storage, index, nil, nil, nil, nil, nil, testConfig())
		require.NoError(t, s.SaveProducts(t.Context(), ps))
		index.AssertExpectations(t)
		assert.Empty(t, ps[0].ID)
	})

	t.Run("IndexFailureIsNotFatal", func(t *testing.T) {
		storage := new(MockStorage)
		storage.On("StoreProducts", mock.Anything, ps).Return([]string{"a", "b"}, nil)
		index := new(MockIndex)
		index.On("IndexProducts", mock.Anything, mock.Anything).Return(errors.New("meili down"))

		s := service.New(storage, index, nil, nil, nil, nil, nil, testConfig())
		assert.NoError(t, s.SaveProducts(t.Context(), ps))
	})

	t.Run("StorageFailure", func(t *testing.T) {
		storageErr := errors.New("tx aborted")
		storage := new(MockStorage)
		storage.On("StoreProducts", mock.Anything, ps).Return(nil, storageErr)
		index := new(MockIndex)

		s := service.New(storage, index, nil, nil, nil, nil, nil, testConfig())
		assert.ErrorIs(t, s.SaveProducts(t.Context(), ps), storageErr)
		index.AssertNotCalled(t, "IndexProducts", mock.Anything, mock.Anything)
	})
}

func TestAcceptItem(t *testing.T) {
	t.Run("NormalizesItem", func(t *testing.T) {
		producer := new(MockItemsProducer)
		producer.On("ProduceItems", mock.Anything, mock.Anything).Return(nil)

		s := service.New(new(MockStorage), nil, producer, nil, nil, nil, nil, testConfig())
		err := s.AcceptItem(t.Context(), domain.Item{
			ItemID:      "460000000026049",
			Name:        " ROYAL Canin Maxi Adult ",
			Rate:        1250,
			StockOnHand: 12,
			CreatedTime: "2026-09-01T10:30:00+0530",
		})
		require.NoError(t, err)

		ps := producer.Calls[0].Arguments.Get(1).([]domain.Product)
		require.Len(t, ps, 1)
		p := ps[0]
		assert.Equal(t, "ROYAL Canin Maxi Adult", p.Name)
		assert.Equal(t, "Royal", p.Brand)
		assert.Equal(t, domain.StatusInactive, p.Status)
		assert.Equal(t, "pcs", p.Unit)
		assert.Equal(t, 12, p.Stock)
		assert.True(t, p.CreatedAt.Equal(
			time.Date(2026, 9, 1, 5, 0, 0, 0, time.UTC),
		))
		assert.Equal(t, testNow, p.UpdatedAt)
	})

	t.Run("UpperCaseBrandKept", func(t *testing.T) {
		producer := new(MockItemsProducer)
		producer.On("ProduceItems", mock.Anything, mock.Anything).Return(nil)

		s := service.New(new(MockStorage), nil, producer, nil, nil, nil, nil, testConfig())
		err := s.AcceptItem(t.Context(), domain.Item{
			ItemID: "1", Name: "fofos Bone Toy", Status: domain.StatusActive,
		})
		require.NoError(t, err)

		ps := producer.Calls[0].Arguments.Get(1).([]domain.Product)
		assert.Equal(t, "FOFOS", ps[0].Brand)
		assert.Equal(t, domain.StatusActive, ps[0].Status)
	})

	t.Run("MissingItemID", func(t *testing.T) {
		producer := new(MockItemsProducer)
		s := service.New(new(MockStorage), nil, producer, nil, nil, nil, nil, testConfig())
		err := s.AcceptItem(t.Context(), domain.Item{Name: "Bowl"})
		assert.ErrorIs(t, err, domain.ErrInvalidItem)
		producer.AssertNotCalled(t, "ProduceItems", mock.Anything, mock.Anything)
	})
}

func TestSetExclusion(t *testing.T) {
	producer := new(MockExclusionProducer)
	producer.On("ProduceExclusion", mock.Anything, domain.ExclusionRule{
		GroupKey: "dog collar - blue",
		Hidden:   true,
	}).Return(nil)

	s := service.New(new(MockStorage), nil, nil, producer, nil, nil, nil, testConfig())
	require.NoError(t, s.SetExclusion(t.Context(), "Dog Collar - Blue - XL", true))
	producer.AssertExpectations(t)

	err := s.SetExclusion(t.Context(), " ", true)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

type stubView struct {
	hidden map[string]bool
}

func (stubView) Run(_ context.Context, _ context.CancelFunc, wg *sync.WaitGroup) {
	wg.Done()
}

func (v stubView) IsHidden(groupKey string) (bool, error) {
	return v.hidden[groupKey], nil
}

func TestGetExclusion(t *testing.T) {
	view := stubView{hidden: map[string]bool{"harness red": true}}
	s := service.New(new(MockStorage), nil, nil, nil, nil, nil, view, testConfig())

	rule, err := s.GetExclusion(t.Context(), "Harness Red (XL)")
	require.NoError(t, err)
	assert.Equal(t, domain.ExclusionRule{GroupKey: "harness red", Hidden: true}, rule)

	rule, err = s.GetExclusion(t.Context(), "Rope Toy")
	require.NoError(t, err)
	assert.False(t, rule.Hidden)

	noView := service.New(new(MockStorage), nil, nil, nil, nil, nil, nil, testConfig())
	_, err = noView.GetExclusion(t.Context(), "Rope Toy")
	assert.ErrorIs(t, err, domain.ErrDisabled)
}
