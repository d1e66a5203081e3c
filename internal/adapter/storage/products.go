package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/niksmo/salesops/internal/core/domain"
	"github.com/niksmo/salesops/internal/core/port"
)

var _ port.ProductsStorage = (*ProductsRepository)(nil)

// upsertQuery keeps the merchandising fields an admin already filled in.
const upsertQuery = `
	INSERT INTO products (
		id, item_id, name, sku_code, item_code,
		brand, category, sub_category, series,
		rate, stock, status, unit, image_url,
		created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (item_id) DO UPDATE SET
		name = EXCLUDED.name,
		sku_code = EXCLUDED.sku_code,
		item_code = EXCLUDED.item_code,
		brand = COALESCE(NULLIF(products.brand, ''), EXCLUDED.brand),
		category = COALESCE(NULLIF(EXCLUDED.category, ''), products.category),
		sub_category = COALESCE(NULLIF(EXCLUDED.sub_category, ''), products.sub_category),
		series = COALESCE(NULLIF(EXCLUDED.series, ''), products.series),
		rate = EXCLUDED.rate,
		stock = EXCLUDED.stock,
		status = EXCLUDED.status,
		unit = EXCLUDED.unit,
		image_url = COALESCE(NULLIF(EXCLUDED.image_url, ''), products.image_url),
		updated_at = EXCLUDED.updated_at,
		is_deleted = FALSE
	RETURNING id::text;`

type ProductsRepository struct {
	sqldb sqldb
}

func NewProductsRepository(sqldb sqldb) ProductsRepository {
	return ProductsRepository{sqldb}
}

// StoreProducts upserts products by item id in one transaction and
// returns their ids in input order.
func (r ProductsRepository) StoreProducts(
	ctx context.Context, vs []domain.Product,
) (ids []string, storeErr error) {
	const op = "ProductsRepository.StoreProducts"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := r.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if storeErr == nil {
			if err := tx.Commit(); err != nil {
				ids = nil
				storeErr = fmt.Errorf("%s: failed to commit %w", op, err)
			}
			return
		}

		err := tx.Rollback()
		if err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertQuery)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to prepare stmt: %w", op, err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Error("failed to close prepared stmt", "err", err)
		}
	}()

	ids = make([]string, 0, len(vs))
	for _, v := range vs {
		var id string
		err := stmt.QueryRowContext(ctx,
			uuid.NewString(), v.ItemID, v.Name, v.SKUCode, v.ItemCode,
			v.Brand, v.Category, v.SubCategory, v.Series,
			v.Rate, v.Stock, v.Status, v.Unit, v.ImageURL,
			v.CreatedAt, v.UpdatedAt,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to exec: %w", op, err)
		}
		ids = append(ids, id)
	}

	log.Debug("products stored", "nProducts", len(ids))
	return ids, nil
}

func (r ProductsRepository) ListProducts(
	ctx context.Context, f domain.ProductFilter,
) ([]domain.Product, error) {
	const op = "ProductsRepository.ListProducts"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query, args := buildListQuery(f)
	ps, err := r.queryProducts(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (r ProductsRepository) DistinctValues(
	ctx context.Context, field domain.ProductField,
) ([]string, error) {
	const op = "ProductsRepository.DistinctValues"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query, err := buildDistinctQuery(field)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.sqldb.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	vs := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		vs = append(vs, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

func (r ProductsRepository) ReadProduct(
	ctx context.Context, id string,
) (domain.Product, error) {
	const op = "ProductsRepository.ReadProduct"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	if !validID(id) {
		return domain.Product{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	query := "SELECT " + productColumns +
		" FROM products WHERE id = $1::uuid AND NOT is_deleted"

	v, err := scanProduct(r.sqldb.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// ReadProducts skips unknown and deleted ids. The result order is
// unspecified.
func (r ProductsRepository) ReadProducts(
	ctx context.Context, ids []string,
) ([]domain.Product, error) {
	const op = "ProductsRepository.ReadProducts"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []domain.Product{}, nil
	}

	query := "SELECT " + productColumns +
		" FROM products WHERE id = ANY($1::uuid[]) AND NOT is_deleted"

	ps, err := r.queryProducts(ctx, query, valid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (r ProductsRepository) UpdateProduct(
	ctx context.Context, id string, patch domain.ProductPatch,
) error {
	const op = "ProductsRepository.UpdateProduct"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !validID(id) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	query, args := buildUpdateQuery(id, patch)
	if err := r.execOne(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteProduct marks the product deleted. The row is kept so that a
// later webhook for the same item revives it.
func (r ProductsRepository) DeleteProduct(ctx context.Context, id string) error {
	const op = "ProductsRepository.DeleteProduct"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !validID(id) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	query := `UPDATE products SET is_deleted = TRUE, updated_at = now()
		WHERE id = $1::uuid AND NOT is_deleted`

	if err := r.execOne(ctx, query, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r ProductsRepository) execOne(
	ctx context.Context, query string, args ...any,
) error {
	res, err := r.sqldb.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r ProductsRepository) queryProducts(
	ctx context.Context, query string, args ...any,
) ([]domain.Product, error) {
	rows, err := r.sqldb.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ps := []domain.Product{}
	for rows.Next() {
		v, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		ps = append(ps, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ps, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (v domain.Product, err error) {
	err = s.Scan(
		&v.ID, &v.ItemID, &v.Name, &v.SKUCode, &v.ItemCode,
		&v.Brand, &v.Category, &v.SubCategory, &v.Series,
		&v.Rate, &v.Stock, &v.Status, &v.Unit,
		&v.ImageURL, &v.CataloguePage, &v.CatalogueOrder,
		&v.CreatedAt, &v.UpdatedAt,
	)
	return v, err
}

func validID(id string) bool {
	return uuid.Validate(id) == nil
}
