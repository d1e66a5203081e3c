package schema

import "time"

const ItemSchemaTextV1 = `{
	"type": "record",
	"namespace": "salesops.items",
	"name": "item",
	"fields": [
		{"name": "item_id", "type": "string"},
		{"name": "name", "type": "string"},
		{"name": "sku_code", "type": "string", "default": ""},
		{"name": "item_code", "type": "string", "default": ""},
		{"name": "brand", "type": "string", "default": ""},
		{"name": "category", "type": "string", "default": ""},
		{"name": "sub_category", "type": "string", "default": ""},
		{"name": "series", "type": "string", "default": ""},
		{"name": "rate", "type": "double"},
		{"name": "stock", "type": "long"},
		{"name": "status", "type": "string"},
		{"name": "unit", "type": "string"},
		{"name": "image_url", "type": "string", "default": ""},
		{"name": "created_at", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "updated_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

// ItemV1 is a normalized accounting item travelling from the webhook
// to the products storage.
type ItemV1 struct {
	ItemID      string    `avro:"item_id"`
	Name        string    `avro:"name"`
	SKUCode     string    `avro:"sku_code"`
	ItemCode    string    `avro:"item_code"`
	Brand       string    `avro:"brand"`
	Category    string    `avro:"category"`
	SubCategory string    `avro:"sub_category"`
	Series      string    `avro:"series"`
	Rate        float64   `avro:"rate"`
	Stock       int       `avro:"stock"`
	Status      string    `avro:"status"`
	Unit        string    `avro:"unit"`
	ImageURL    string    `avro:"image_url"`
	CreatedAt   time.Time `avro:"created_at"`
	UpdatedAt   time.Time `avro:"updated_at"`
}
