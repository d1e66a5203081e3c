package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/niksmo/salesops/internal/core/catalogue"
	"github.com/niksmo/salesops/internal/core/domain"
	"github.com/niksmo/salesops/internal/core/port"
	"github.com/niksmo/salesops/pkg/retry"
)

var _ port.SearchIndex = (*ProductsIndex)(nil)

const primaryKey = "id"

var errUnhealthy = errors.New("meilisearch is unhealthy")

var indexSettings = meilisearch.Settings{
	SearchableAttributes: []string{"name", "base_name", "sku_code", "brand"},
	FilterableAttributes: []string{"brand", "category", "status"},
	SortableAttributes:   []string{"rate", "name"},
}

// A ProductsConfig used for setup [ProductsIndex].
type ProductsConfig struct {
	URL    string
	APIKey string
	Index  string
}

// A ProductsIndex keeps a Meilisearch index of catalogue products.
type ProductsIndex struct {
	index meilisearch.IndexManager
}

type productDocument struct {
	ID          string  `json:"id"`
	ItemID      string  `json:"item_id"`
	Name        string  `json:"name"`
	BaseName    string  `json:"base_name"`
	SKUCode     string  `json:"sku_code"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
	SubCategory string  `json:"sub_category"`
	Status      string  `json:"status"`
	Rate        float64 `json:"rate"`
}

type hit struct {
	ID string `json:"id"`
}

// NewProductsIndex waits for the server, creates the index if missing
// and applies the settings.
func NewProductsIndex(
	ctx context.Context, config ProductsConfig,
) (ProductsIndex, error) {
	const op = "NewProductsIndex"
	log := slog.With("op", op, "index", config.Index)

	client := meilisearch.New(config.URL, meilisearch.WithAPIKey(config.APIKey))

	err := retry.Do(ctx, retry.Policy{
		MaxAttempts: 5,
		Backoff:     retry.ExponentialBackoff(200 * time.Millisecond),
	}, func() error {
		h, err := client.Health()
		if err != nil {
			return err
		}
		if h.Status != "available" {
			return errUnhealthy
		}
		return nil
	})
	if err != nil {
		return ProductsIndex{}, fmt.Errorf("%s: %w", op, err)
	}

	_, err = client.CreateIndexWithContext(ctx, &meilisearch.IndexConfig{
		Uid:        config.Index,
		PrimaryKey: primaryKey,
	})
	if err != nil {
		return ProductsIndex{}, fmt.Errorf("%s: %w", op, err)
	}

	index := client.Index(config.Index)

	settings := indexSettings
	if _, err := index.UpdateSettingsWithContext(ctx, &settings); err != nil {
		return ProductsIndex{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("search index is available")
	return ProductsIndex{index}, nil
}

// IndexProducts enqueues an add-or-replace of the products. Products
// without id are skipped.
func (i ProductsIndex) IndexProducts(
	ctx context.Context, ps []domain.Product,
) error {
	const op = "ProductsIndex.IndexProducts"

	docs := make([]productDocument, 0, len(ps))
	for _, p := range ps {
		if p.ID == "" {
			continue
		}
		docs = append(docs, toDocument(p))
	}
	if len(docs) == 0 {
		return nil
	}

	if _, err := i.index.AddDocumentsWithContext(ctx, docs, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Search returns product ids in relevance order.
func (i ProductsIndex) Search(
	ctx context.Context, q string, limit int,
) ([]string, error) {
	const op = "ProductsIndex.Search"

	res, err := i.index.SearchWithContext(ctx, q, &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{primaryKey},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids, err := hitIDs(res.Hits)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

func toDocument(p domain.Product) productDocument {
	return productDocument{
		ID:          p.ID,
		ItemID:      p.ItemID,
		Name:        p.Name,
		BaseName:    catalogue.ExtractBaseName(p.Name),
		SKUCode:     p.SKUCode,
		Brand:       p.Brand,
		Category:    p.Category,
		SubCategory: p.SubCategory,
		Status:      p.Status,
		Rate:        p.Rate,
	}
}

// hitIDs reads the primary key of JSON shaped hits.
func hitIDs(hits any) ([]string, error) {
	b, err := json.Marshal(hits)
	if err != nil {
		return nil, err
	}

	var hs []hit
	if err := json.Unmarshal(b, &hs); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(hs))
	for _, h := range hs {
		if h.ID != "" {
			ids = append(ids, h.ID)
		}
	}
	return ids, nil
}
