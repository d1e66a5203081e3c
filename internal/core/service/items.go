package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/niksmo/salesops/internal/core/catalogue"
	"github.com/niksmo/salesops/internal/core/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const defaultUnit = "pcs"

// itemTimeLayouts are tried in order. The accounting system sends
// offsets without a colon.
var itemTimeLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// AcceptItem turns an accounting item into a product and publishes it
// to the ingestion pipeline.
func (s Service) AcceptItem(ctx context.Context, it domain.Item) error {
	const op = "Service.AcceptItem"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if strings.TrimSpace(it.ItemID) == "" {
		return fmt.Errorf("%s: %w: empty item_id", op, domain.ErrInvalidItem)
	}
	if strings.TrimSpace(it.Name) == "" {
		return fmt.Errorf("%s: %w: empty name", op, domain.ErrInvalidItem)
	}

	if s.itemsProducer == nil {
		return fmt.Errorf("%s: %w", op, domain.ErrDisabled)
	}

	p := s.itemToProduct(it)

	err := s.itemsProducer.ProduceItems(ctx, []domain.Product{p})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("item accepted", "itemID", p.ItemID, "brand", p.Brand)
	return nil
}

// SetExclusion hides or reveals the family the given product name
// belongs to.
func (s Service) SetExclusion(
	ctx context.Context, name string, hidden bool,
) error {
	const op = "Service.SetExclusion"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s: %w: empty name", op, domain.ErrInvalidQuery)
	}

	if s.exclusionProducer == nil {
		return fmt.Errorf("%s: %w", op, domain.ErrDisabled)
	}

	rule := domain.ExclusionRule{
		GroupKey: catalogue.GroupKey(name),
		Hidden:   hidden,
	}

	if err := s.exclusionProducer.ProduceExclusion(ctx, rule); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetExclusion reports whether the family of the given product name
// is hidden.
func (s Service) GetExclusion(
	ctx context.Context, name string,
) (domain.ExclusionRule, error) {
	const op = "Service.GetExclusion"

	if err := ctx.Err(); err != nil {
		return domain.ExclusionRule{}, fmt.Errorf("%s: %w", op, err)
	}

	if strings.TrimSpace(name) == "" {
		return domain.ExclusionRule{}, fmt.Errorf(
			"%s: %w: empty name", op, domain.ErrInvalidQuery,
		)
	}

	if s.exclusionsView == nil {
		return domain.ExclusionRule{}, fmt.Errorf("%s: %w", op, domain.ErrDisabled)
	}

	rule := domain.ExclusionRule{GroupKey: catalogue.GroupKey(name)}

	hidden, err := s.exclusionsView.IsHidden(rule.GroupKey)
	if err != nil {
		return domain.ExclusionRule{}, fmt.Errorf("%s: %w", op, err)
	}
	rule.Hidden = hidden
	return rule, nil
}

func (s Service) itemToProduct(it domain.Item) domain.Product {
	now := s.cfg.Now()
	name := strings.TrimSpace(it.Name)

	p := domain.Product{
		ItemID:      it.ItemID,
		Name:        name,
		SKUCode:     it.SKUCode,
		ItemCode:    it.ItemCode,
		Brand:       s.brandOf(name),
		Category:    it.Category,
		SubCategory: it.SubCategory,
		Series:      it.Series,
		Rate:        it.Rate,
		Stock:       int(it.StockOnHand),
		Status:      it.Status,
		Unit:        it.Unit,
		CreatedAt:   parseItemTime(it.CreatedTime, now),
		UpdatedAt:   parseItemTime(it.LastModifiedTime, now),
	}

	if p.Status == "" {
		p.Status = domain.StatusInactive
	}
	if p.Unit == "" {
		p.Unit = defaultUnit
	}
	return p
}

// brandOf takes the first word of a product name as its brand.
func (s Service) brandOf(name string) string {
	first, _, _ := strings.Cut(name, " ")
	for _, b := range s.cfg.UpperCaseBrands {
		if strings.EqualFold(first, b) {
			return strings.ToUpper(first)
		}
	}
	return cases.Title(language.Und).String(first)
}

// parseItemTime falls back to now for missing or malformed values.
func parseItemTime(v string, now time.Time) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return now
	}
	for _, layout := range itemTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return now
}
