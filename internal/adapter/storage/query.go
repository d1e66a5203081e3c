package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/niksmo/salesops/internal/core/domain"
)

const productColumns = `id::text, item_id, name, sku_code, item_code,
	brand, category, sub_category, series, rate, stock, status, unit,
	image_url, catalogue_page, catalogue_order, created_at, updated_at`

var distinctColumns = map[domain.ProductField]string{
	domain.FieldBrand:       "brand",
	domain.FieldCategory:    "category",
	domain.FieldSubCategory: "sub_category",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// A whereBuilder numbers positional parameters in the order
// conditions are added. A "?" in a condition stands for the
// parameter of that condition.
type whereBuilder struct {
	conds []string
	args  []any
}

func (b *whereBuilder) cond(c string) {
	b.conds = append(b.conds, c)
}

func (b *whereBuilder) condArg(c string, arg any) {
	b.args = append(b.args, arg)
	ph := "$" + strconv.Itoa(len(b.args))
	b.conds = append(b.conds, strings.ReplaceAll(c, "?", ph))
}

func (b *whereBuilder) String() string {
	return strings.Join(b.conds, " AND ")
}

func buildListQuery(f domain.ProductFilter) (string, []any) {
	var b whereBuilder
	b.cond("NOT is_deleted")

	if f.Brand != "" {
		b.condArg("LOWER(brand) = LOWER(?)", f.Brand)
	}
	if f.Category != "" {
		b.condArg("LOWER(category) = LOWER(?)", f.Category)
	}
	if f.SubCategory != "" {
		b.condArg("LOWER(sub_category) = LOWER(?)", f.SubCategory)
	}
	if f.Status != "" {
		b.condArg("status = ?", f.Status)
	}

	switch f.Stock {
	case domain.StockZero:
		b.cond("stock <= 0")
	case domain.StockGtZero:
		b.cond("stock > 0")
	}

	if !f.CreatedAfter.IsZero() {
		b.condArg("created_at >= ?", f.CreatedAfter)
	}
	if f.Search != "" {
		pattern := "%" + likeEscaper.Replace(f.Search) + "%"
		b.condArg("(name ILIKE ? OR sku_code ILIKE ?)", pattern)
	}
	if f.MissingInfo {
		b.cond("(brand = '' OR category = '' OR sub_category = '' OR image_url = '')")
	}

	query := "SELECT " + productColumns +
		" FROM products WHERE " + b.String() +
		" ORDER BY name ASC, id ASC"
	return query, b.args
}

func buildDistinctQuery(field domain.ProductField) (string, error) {
	col, ok := distinctColumns[field]
	if !ok {
		return "", fmt.Errorf("unknown product field %q", field)
	}
	return fmt.Sprintf(
		"SELECT DISTINCT %[1]s FROM products"+
			" WHERE NOT is_deleted AND stock > 0 AND %[1]s <> ''"+
			" ORDER BY %[1]s ASC",
		col,
	), nil
}

func buildUpdateQuery(id string, p domain.ProductPatch) (string, []any) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}

	if p.Name != nil {
		set("name", *p.Name)
	}
	if p.Brand != nil {
		set("brand", *p.Brand)
	}
	if p.Category != nil {
		set("category", *p.Category)
	}
	if p.SubCategory != nil {
		set("sub_category", *p.SubCategory)
	}
	if p.Series != nil {
		set("series", *p.Series)
	}
	if p.Rate != nil {
		set("rate", *p.Rate)
	}
	if p.Status != nil {
		set("status", *p.Status)
	}
	if p.ImageURL != nil {
		set("image_url", *p.ImageURL)
	}
	if p.CataloguePage != nil {
		set("catalogue_page", *p.CataloguePage)
	}
	if p.CatalogueOrder != nil {
		set("catalogue_order", *p.CatalogueOrder)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := "UPDATE products SET " + strings.Join(sets, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) + "::uuid AND NOT is_deleted"
	return query, args
}
