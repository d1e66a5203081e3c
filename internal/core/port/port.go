package port

import (
	"context"
	"sync"

	"github.com/niksmo/salesops/internal/core/domain"
)

type (
	runnerContextWg interface {
		Run(context.Context, context.CancelFunc, *sync.WaitGroup)
	}

	closer interface {
		Close()
	}
)

// Inbound ports.

type CatalogueLister interface {
	ListCatalogue(context.Context, domain.CatalogueQuery) (domain.CataloguePage, error)
	ListBrands(context.Context) ([]string, error)
	ListCategories(context.Context) ([]string, error)
	ListSubCategories(context.Context) ([]string, error)
}

type ProductsEditor interface {
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) error
	DeleteProduct(ctx context.Context, id string) error
}

type ProductsSearcher interface {
	SearchProducts(ctx context.Context, q string, limit int) ([]domain.Product, error)
}

type ItemAccepter interface {
	AcceptItem(context.Context, domain.Item) error
}

type ExclusionSetter interface {
	SetExclusion(ctx context.Context, name string, hidden bool) error
}

type ExclusionGetter interface {
	GetExclusion(ctx context.Context, name string) (domain.ExclusionRule, error)
}

type ProductsSaver interface {
	SaveProducts(context.Context, []domain.Product) error
}

// Outbound ports.

type ProductsStorage interface {
	ListProducts(context.Context, domain.ProductFilter) ([]domain.Product, error)
	DistinctValues(ctx context.Context, field domain.ProductField) ([]string, error)
	ReadProduct(ctx context.Context, id string) (domain.Product, error)
	ReadProducts(ctx context.Context, ids []string) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) error
	DeleteProduct(ctx context.Context, id string) error
	StoreProducts(context.Context, []domain.Product) ([]string, error)
}

type SearchIndex interface {
	IndexProducts(context.Context, []domain.Product) error
	Search(ctx context.Context, q string, limit int) ([]string, error)
}

type ItemsProducer interface {
	ProduceItems(context.Context, []domain.Product) error
}

type ExclusionProducer interface {
	ProduceExclusion(context.Context, domain.ExclusionRule) error
}

type ExclusionRulesProcessor interface {
	runnerContextWg
	closer
}

type ItemGateProcessor interface {
	runnerContextWg
	closer
}

type ExclusionsView interface {
	runnerContextWg
	IsHidden(groupKey string) (bool, error)
}
