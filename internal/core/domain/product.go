package domain

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Product struct {
	ID             string
	ItemID         string
	Name           string
	SKUCode        string
	ItemCode       string
	Brand          string
	Category       string
	SubCategory    string
	Series         string
	Rate           float64
	Stock          int
	Status         string
	Unit           string
	ImageURL       string
	CataloguePage  int
	CatalogueOrder int
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// New is computed per request from CreatedAt.
	New bool
}

// A ProductPatch holds the fields to overwrite. Nil fields are left as is.
type ProductPatch struct {
	Name           *string
	Brand          *string
	Category       *string
	SubCategory    *string
	Series         *string
	Rate           *float64
	Status         *string
	ImageURL       *string
	CataloguePage  *int
	CatalogueOrder *int
}

func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Brand == nil && p.Category == nil &&
		p.SubCategory == nil && p.Series == nil && p.Rate == nil &&
		p.Status == nil && p.ImageURL == nil &&
		p.CataloguePage == nil && p.CatalogueOrder == nil
}

// An Item is the accounting system's representation of a product,
// as delivered by its item webhook.
type Item struct {
	ItemID           string
	Name             string
	Status           string
	Rate             float64
	Unit             string
	SKUCode          string
	ItemCode         string
	Category         string
	SubCategory      string
	Series           string
	StockOnHand      float64
	CreatedTime      string
	LastModifiedTime string
}

// An ExclusionRule hides (or reveals) a whole product family
// identified by its group key.
type ExclusionRule struct {
	GroupKey string
	Hidden   bool
}
