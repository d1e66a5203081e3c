package domain

import "time"

type SortMode string

const (
	SortDefault   SortMode = "default"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
	SortCatalogue SortMode = "catalogue"
)

func (m SortMode) Valid() bool {
	switch m {
	case SortDefault, SortPriceAsc, SortPriceDesc, SortCatalogue:
		return true
	}
	return false
}

type StockFilter string

const (
	StockAny    StockFilter = ""
	StockZero   StockFilter = "zero"
	StockGtZero StockFilter = "gt_zero"
)

const (
	RoleAdmin       = "admin"
	RoleSalesperson = "salesperson"
)

// A ProductField names a product column with distinct listable values.
type ProductField string

const (
	FieldBrand       ProductField = "brand"
	FieldCategory    ProductField = "category"
	FieldSubCategory ProductField = "sub_category"
)

// A ProductFilter is what the storage needs to select catalogue rows.
// Empty string fields are not applied.
type ProductFilter struct {
	Brand        string
	Category     string
	SubCategory  string
	Search       string
	Status       string
	Stock        StockFilter
	CreatedAfter time.Time
	MissingInfo  bool
}

type CatalogueQuery struct {
	Role        string
	Page        int
	PerPage     int
	Brand       string
	Category    string
	SubCategory string
	Search      string
	Status      string
	Stock       StockFilter
	NewArrivals bool
	MissingInfo bool
	SortBy      SortMode
	GroupByName bool
}

type DisplayKind string

const (
	DisplayProduct DisplayKind = "product"
	DisplayGroup   DisplayKind = "group"
)

// A DisplayItem is a catalogue row: a single product or a group of
// products sharing a base name. Products is never empty.
type DisplayItem struct {
	Kind     DisplayKind
	GroupID  string
	BaseName string
	Products []Product
}

// Primary returns the product that opened the item.
func (d DisplayItem) Primary() Product {
	return d.Products[0]
}

type CataloguePage struct {
	Grouped    bool
	Products   []Product
	Items      []DisplayItem
	TotalCount int
	Page       int
	PerPage    int
	TotalPages int
}
