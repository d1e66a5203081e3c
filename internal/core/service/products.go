package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/niksmo/salesops/internal/core/catalogue"
	"github.com/niksmo/salesops/internal/core/domain"
)

const defaultSearchLimit = 20

func (s Service) GetProduct(
	ctx context.Context, id string,
) (domain.Product, error) {
	const op = "Service.GetProduct"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := s.storage.ReadProduct(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	ps := []domain.Product{p}
	catalogue.MarkNew(ps, s.newSince())
	return ps[0], nil
}

func (s Service) UpdateProduct(
	ctx context.Context, id string, patch domain.ProductPatch,
) error {
	const op = "Service.UpdateProduct"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if patch.IsEmpty() {
		return fmt.Errorf("%s: %w", op, domain.ErrEmptyPatch)
	}

	if patch.Status != nil {
		switch *patch.Status {
		case domain.StatusActive, domain.StatusInactive:
		default:
			return fmt.Errorf(
				"%s: %w: unknown status %q",
				op, domain.ErrInvalidQuery, *patch.Status,
			)
		}
	}

	if err := s.storage.UpdateProduct(ctx, id, patch); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s Service) DeleteProduct(ctx context.Context, id string) error {
	const op = "Service.DeleteProduct"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SearchProducts returns products in the relevance order of the index.
// Hits missing from the storage (deleted meanwhile) are skipped.
func (s Service) SearchProducts(
	ctx context.Context, q string, limit int,
) ([]domain.Product, error) {
	const op = "Service.SearchProducts"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.index == nil {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrDisabled)
	}

	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%s: %w: empty search", op, domain.ErrInvalidQuery)
	}

	switch {
	case limit <= 0:
		limit = defaultSearchLimit
	case limit > s.cfg.MaxPerPage:
		limit = s.cfg.MaxPerPage
	}

	ids, err := s.index.Search(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	stored, err := s.storage.ReadProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byID := make(map[string]domain.Product, len(stored))
	for _, p := range stored {
		byID[p.ID] = p
	}

	ps := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ps = append(ps, p)
		}
	}

	catalogue.MarkNew(ps, s.newSince())
	return ps, nil
}

// SaveProducts upserts products and refreshes the search index.
// Indexing is best effort: a failure is logged, the products stay saved.
func (s Service) SaveProducts(ctx context.Context, ps []domain.Product) error {
	const op = "Service.SaveProducts"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ids, err := s.storage.StoreProducts(ctx, ps)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.index == nil {
		return nil
	}

	indexed := make([]domain.Product, len(ps))
	copy(indexed, ps)
	for i := range indexed {
		if i < len(ids) {
			indexed[i].ID = ids[i]
		}
	}

	if err := s.index.IndexProducts(ctx, indexed); err != nil {
		log.Warn("failed to index products", "nProducts", len(ps), "err", err)
	}
	return nil
}

func (s Service) newSince() time.Time {
	return s.cfg.Now().Add(-s.cfg.NewArrivalWindow)
}
