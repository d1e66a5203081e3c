package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/niksmo/salesops/internal/core/catalogue"
	"github.com/niksmo/salesops/internal/core/domain"
)

func (s Service) ListCatalogue(
	ctx context.Context, q domain.CatalogueQuery,
) (domain.CataloguePage, error) {
	const op = "Service.ListCatalogue"

	if err := ctx.Err(); err != nil {
		return domain.CataloguePage{}, fmt.Errorf("%s: %w", op, err)
	}

	q, err := s.normalizeQuery(q)
	if err != nil {
		return domain.CataloguePage{}, fmt.Errorf("%s: %w", op, err)
	}

	since := s.newSince()

	ps, err := s.storage.ListProducts(ctx, s.toFilter(q, since))
	if err != nil {
		return domain.CataloguePage{}, fmt.Errorf("%s: %w", op, err)
	}

	catalogue.MarkNew(ps, since)
	catalogue.Sort(ps, q.SortBy)

	page := domain.CataloguePage{
		Grouped: q.GroupByName,
		Page:    q.Page,
		PerPage: q.PerPage,
	}

	if q.GroupByName {
		items := catalogue.Group(ps)
		page.Items, page.TotalCount, page.TotalPages, err = paginate(
			items, q.Page, q.PerPage,
		)
	} else {
		page.Products, page.TotalCount, page.TotalPages, err = paginate(
			ps, q.Page, q.PerPage,
		)
	}
	if err != nil {
		return domain.CataloguePage{}, fmt.Errorf("%s: %w", op, err)
	}

	return page, nil
}

func (s Service) ListBrands(ctx context.Context) ([]string, error) {
	const op = "Service.ListBrands"
	return s.distinct(ctx, op, domain.FieldBrand)
}

func (s Service) ListCategories(ctx context.Context) ([]string, error) {
	const op = "Service.ListCategories"
	return s.distinct(ctx, op, domain.FieldCategory)
}

func (s Service) ListSubCategories(ctx context.Context) ([]string, error) {
	const op = "Service.ListSubCategories"
	return s.distinct(ctx, op, domain.FieldSubCategory)
}

func (s Service) distinct(
	ctx context.Context, op string, field domain.ProductField,
) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	vs, err := s.storage.DistinctValues(ctx, field)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s Service) normalizeQuery(
	q domain.CatalogueQuery,
) (domain.CatalogueQuery, error) {
	if q.Page < 0 {
		return q, fmt.Errorf("%w: negative page", domain.ErrInvalidQuery)
	}

	switch {
	case q.PerPage == 0:
		q.PerPage = s.cfg.DefaultPerPage
	case q.PerPage < 0 || q.PerPage > s.cfg.MaxPerPage:
		return q, fmt.Errorf(
			"%w: per_page must be within 1..%d",
			domain.ErrInvalidQuery, s.cfg.MaxPerPage,
		)
	}

	if q.SortBy == "" {
		q.SortBy = domain.SortDefault
	}
	if !q.SortBy.Valid() {
		return q, fmt.Errorf(
			"%w: unknown sort %q", domain.ErrInvalidQuery, q.SortBy,
		)
	}

	switch q.Status {
	case "", domain.StatusActive, domain.StatusInactive:
	default:
		return q, fmt.Errorf(
			"%w: unknown status %q", domain.ErrInvalidQuery, q.Status,
		)
	}

	switch q.Stock {
	case domain.StockAny, domain.StockZero, domain.StockGtZero:
	default:
		return q, fmt.Errorf(
			"%w: unknown stock filter %q", domain.ErrInvalidQuery, q.Stock,
		)
	}

	if q.Role == domain.RoleSalesperson {
		q.Status = domain.StatusActive
		q.Stock = domain.StockGtZero
	}

	q.Brand = dropAll(q.Brand)
	q.Category = dropAll(q.Category)
	q.SubCategory = dropAll(q.SubCategory)
	q.Search = strings.TrimSpace(q.Search)
	return q, nil
}

// dropAll treats the "all" choice of a filter as no filter.
func dropAll(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

func (Service) toFilter(
	q domain.CatalogueQuery, since time.Time,
) domain.ProductFilter {
	f := domain.ProductFilter{
		Brand:       q.Brand,
		Category:    q.Category,
		SubCategory: q.SubCategory,
		Search:      q.Search,
		Status:      q.Status,
		Stock:       q.Stock,
		MissingInfo: q.MissingInfo,
	}
	if q.NewArrivals {
		f.CreatedAfter = since
	}
	return f
}

// paginate cuts the zero-based page out of xs. An empty result still has
// one (empty) page.
func paginate[T any](
	xs []T, page, perPage int,
) (window []T, total int, totalPages int, err error) {
	total = len(xs)
	totalPages = max(1, (total+perPage-1)/perPage)

	if page >= totalPages {
		return nil, total, totalPages, domain.ErrPageOutOfRange
	}

	start := page * perPage
	end := min(start+perPage, total)
	return xs[start:end], total, totalPages, nil
}
