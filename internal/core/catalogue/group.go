package catalogue

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/niksmo/salesops/internal/core/domain"
)

var nonSlugRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// GroupID derives a stable identifier from a group key: a readable slug
// followed by the first 8 hex digits of the key's sha256. Keys with the
// same slug get distinct ids.
func GroupID(key string) string {
	sum := sha256.Sum256([]byte(key))
	slug := strings.Trim(nonSlugRe.ReplaceAllString(key, "-"), "-")
	if slug == "" {
		return "grp-" + hex.EncodeToString(sum[:4])
	}
	return "grp-" + slug + "-" + hex.EncodeToString(sum[:4])
}

// Group folds products sharing a group key into one display item.
//
// A single pass over ps: the first product of a family reserves the output
// slot, later products join that slot and turn it into a group. The output
// is therefore ordered by first appearance and never reorders ps.
func Group(ps []domain.Product) []domain.DisplayItem {
	items := make([]domain.DisplayItem, 0, len(ps))
	slot := make(map[string]int, len(ps))

	for _, p := range ps {
		base := ExtractBaseName(p.Name)
		key := strings.ToLower(base)

		if i, ok := slot[key]; ok {
			items[i].Products = append(items[i].Products, p)
			items[i].Kind = domain.DisplayGroup
			continue
		}

		slot[key] = len(items)
		items = append(items, domain.DisplayItem{
			Kind:     domain.DisplayProduct,
			GroupID:  GroupID(key),
			BaseName: base,
			Products: []domain.Product{p},
		})
	}
	return items
}

// Flatten lists the products of items in display order.
func Flatten(items []domain.DisplayItem) []domain.Product {
	var ps []domain.Product
	for _, it := range items {
		ps = append(ps, it.Products...)
	}
	return ps
}
