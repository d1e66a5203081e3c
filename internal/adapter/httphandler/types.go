package httphandler

import (
	"encoding/json"
	"time"

	"github.com/niksmo/salesops/internal/core/domain"
)

type (
	Product struct {
		ID             string    `json:"id"`
		ItemID         string    `json:"item_id"`
		Name           string    `json:"name"`
		SKUCode        string    `json:"sku_code"`
		ItemCode       string    `json:"item_code"`
		Brand          string    `json:"brand"`
		Category       string    `json:"category"`
		SubCategory    string    `json:"sub_category"`
		Series         string    `json:"series"`
		Rate           float64   `json:"rate"`
		Stock          int       `json:"stock"`
		Status         string    `json:"status"`
		Unit           string    `json:"unit"`
		ImageURL       string    `json:"image_url"`
		CataloguePage  int       `json:"catalogue_page"`
		CatalogueOrder int       `json:"catalogue_order"`
		CreatedAt      time.Time `json:"created_at"`
		UpdatedAt      time.Time `json:"updated_at"`
		New            bool      `json:"new"`
	}

	// A DisplayItem is either {type:"product", product} or
	// {type:"group", groupId, baseName, products, primaryProduct}.
	DisplayItem struct {
		Type           string    `json:"type"`
		Product        *Product  `json:"product,omitempty"`
		GroupID        string    `json:"groupId,omitempty"`
		BaseName       string    `json:"baseName,omitempty"`
		Products       []Product `json:"products,omitempty"`
		PrimaryProduct *Product  `json:"primaryProduct,omitempty"`
	}

	CataloguePage struct {
		Grouped    bool          `json:"grouped"`
		Products   []Product     `json:"products,omitempty"`
		Items      []DisplayItem `json:"items,omitempty"`
		TotalCount int           `json:"total_count"`
		Page       int           `json:"page"`
		PerPage    int           `json:"per_page"`
		TotalPages int           `json:"total_pages"`
	}

	ProductList struct {
		Products []Product `json:"products"`
	}

	ValueList struct {
		Values []string `json:"values"`
	}

	ProductPatch struct {
		Name           *string  `json:"name"`
		Brand          *string  `json:"brand"`
		Category       *string  `json:"category"`
		SubCategory    *string  `json:"sub_category"`
		Series         *string  `json:"series"`
		Rate           *float64 `json:"rate"`
		Status         *string  `json:"status"`
		ImageURL       *string  `json:"image_url"`
		CataloguePage  *int     `json:"catalogue_page"`
		CatalogueOrder *int     `json:"catalogue_order"`
	}
)

type (
	// An ItemWebhook is the item event body of the accounting system.
	ItemWebhook struct {
		Item WebhookItem `json:"item"`
	}

	WebhookItem struct {
		ItemID           string            `json:"item_id"`
		Name             string            `json:"name"`
		Status           string            `json:"status"`
		Rate             float64           `json:"rate"`
		Unit             string            `json:"unit"`
		SKU              string            `json:"sku"`
		CategoryName     string            `json:"category_name"`
		StockOnHand      float64           `json:"stock_on_hand"`
		CreatedTime      string            `json:"created_time"`
		LastModifiedTime string            `json:"last_modified_time"`
		CustomFieldHash  map[string]string `json:"custom_field_hash"`
	}
)

type (
	ExclusionRequest struct {
		Name   string `json:"name"`
		Hidden bool   `json:"hidden"`
	}

	ExclusionRule struct {
		GroupKey string `json:"group_key"`
		Hidden   bool   `json:"hidden"`
	}
)

func fromProduct(p domain.Product) Product {
	return Product{
		ID:             p.ID,
		ItemID:         p.ItemID,
		Name:           p.Name,
		SKUCode:        p.SKUCode,
		ItemCode:       p.ItemCode,
		Brand:          p.Brand,
		Category:       p.Category,
		SubCategory:    p.SubCategory,
		Series:         p.Series,
		Rate:           p.Rate,
		Stock:          p.Stock,
		Status:         p.Status,
		Unit:           p.Unit,
		ImageURL:       p.ImageURL,
		CataloguePage:  p.CataloguePage,
		CatalogueOrder: p.CatalogueOrder,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		New:            p.New,
	}
}

func fromProducts(ps []domain.Product) []Product {
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = fromProduct(p)
	}
	return out
}

func fromDisplayItem(it domain.DisplayItem) DisplayItem {
	if it.Kind == domain.DisplayProduct {
		p := fromProduct(it.Primary())
		return DisplayItem{Type: string(domain.DisplayProduct), Product: &p}
	}

	primary := fromProduct(it.Primary())
	return DisplayItem{
		Type:           string(domain.DisplayGroup),
		GroupID:        it.GroupID,
		BaseName:       it.BaseName,
		Products:       fromProducts(it.Products),
		PrimaryProduct: &primary,
	}
}

func fromCataloguePage(page domain.CataloguePage) CataloguePage {
	out := CataloguePage{
		Grouped:    page.Grouped,
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
	}
	if page.Grouped {
		out.Items = make([]DisplayItem, len(page.Items))
		for i, it := range page.Items {
			out.Items[i] = fromDisplayItem(it)
		}
		return out
	}
	out.Products = fromProducts(page.Products)
	return out
}

// MarshalJSON always writes the array of the active mode, so an empty
// page carries "products":[] or "items":[] instead of dropping the key.
func (p CataloguePage) MarshalJSON() ([]byte, error) {
	out := struct {
		Grouped    bool           `json:"grouped"`
		Products   *[]Product     `json:"products,omitempty"`
		Items      *[]DisplayItem `json:"items,omitempty"`
		TotalCount int            `json:"total_count"`
		Page       int            `json:"page"`
		PerPage    int            `json:"per_page"`
		TotalPages int            `json:"total_pages"`
	}{
		Grouped:    p.Grouped,
		TotalCount: p.TotalCount,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: p.TotalPages,
	}
	if p.Grouped {
		items := p.Items
		if items == nil {
			items = []DisplayItem{}
		}
		out.Items = &items
	} else {
		products := p.Products
		if products == nil {
			products = []Product{}
		}
		out.Products = &products
	}
	return json.Marshal(out)
}

func (p ProductPatch) toDomain() domain.ProductPatch {
	return domain.ProductPatch{
		Name:           p.Name,
		Brand:          p.Brand,
		Category:       p.Category,
		SubCategory:    p.SubCategory,
		Series:         p.Series,
		Rate:           p.Rate,
		Status:         p.Status,
		ImageURL:       p.ImageURL,
		CataloguePage:  p.CataloguePage,
		CatalogueOrder: p.CatalogueOrder,
	}
}

func (it WebhookItem) toDomain() domain.Item {
	sku := it.CustomFieldHash["cf_sku_code"]
	if sku == "" {
		sku = it.SKU
	}
	return domain.Item{
		ItemID:           it.ItemID,
		Name:             it.Name,
		Status:           it.Status,
		Rate:             it.Rate,
		Unit:             it.Unit,
		SKUCode:          sku,
		ItemCode:         it.CustomFieldHash["cf_item_code"],
		Category:         it.CategoryName,
		SubCategory:      it.CustomFieldHash["cf_sub_category"],
		Series:           it.CustomFieldHash["cf_series"],
		StockOnHand:      it.StockOnHand,
		CreatedTime:      it.CreatedTime,
		LastModifiedTime: it.LastModifiedTime,
	}
}
