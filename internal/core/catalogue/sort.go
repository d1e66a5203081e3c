package catalogue

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/niksmo/salesops/internal/core/domain"
)

const (
	noSize      = "ZZZ"
	noSizeOrder = 99
)

var sizeOrder = map[string]int{
	"XXXXS": 1,
	"XXXS":  2,
	"XXS":   3,
	"XS":    4,
	"S":     5,
	"M":     6,
	"L":     7,
	"XL":    8,
	"XXL":   9,
	"XXXL":  10,
	"XXXXL": 11,
}

// sizeTokenRe takes a size token bounded by anything but a letter or
// digit, so "Tee_XL" ranks as XL the same way its base name drops "_XL".
var sizeTokenRe = regexp.MustCompile(
	`(?:^|[^A-Za-z0-9])(` + sizeAlt + `)(?:$|[^A-Za-z0-9])`,
)

// SortKeys are the values derived from a product name for default ordering.
type SortKeys struct {
	Color     string
	Size      string
	SizeOrder int
}

// KeysOf derives the default-order sort keys from a product name.
func KeysOf(name string) SortKeys {
	k := SortKeys{
		Color:     extractColor(name),
		Size:      noSize,
		SizeOrder: noSizeOrder,
	}
	if m := sizeTokenRe.FindStringSubmatch(name); m != nil {
		k.Size = m[1]
		k.SizeOrder = sizeOrder[m[1]]
	}
	return k
}

// extractColor returns the last word before the first parenthesis.
func extractColor(name string) string {
	head, _, _ := strings.Cut(name, "(")
	fields := strings.Fields(head)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// MarkNew flags products created at or after since.
func MarkNew(ps []domain.Product, since time.Time) {
	for i := range ps {
		ps[i].New = !ps[i].CreatedAt.IsZero() && !ps[i].CreatedAt.Before(since)
	}
}

// Sort orders ps in place. The sort is stable, so products equal on
// every key keep the order the storage returned them in.
func Sort(ps []domain.Product, mode domain.SortMode) {
	switch mode {
	case domain.SortPriceAsc:
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return cmp.Or(cmp.Compare(a.Rate, b.Rate), strings.Compare(a.Name, b.Name))
		})
	case domain.SortPriceDesc:
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return cmp.Or(cmp.Compare(b.Rate, a.Rate), strings.Compare(a.Name, b.Name))
		})
	case domain.SortCatalogue:
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return cmp.Or(
				cmp.Compare(a.CataloguePage, b.CataloguePage),
				cmp.Compare(a.CatalogueOrder, b.CatalogueOrder),
				strings.Compare(a.Name, b.Name),
			)
		})
	default:
		sortDefault(ps)
	}
}

type keyed struct {
	p    domain.Product
	keys SortKeys
}

func sortDefault(ps []domain.Product) {
	ks := make([]keyed, len(ps))
	for i, p := range ps {
		ks[i] = keyed{p, KeysOf(p.Name)}
	}

	slices.SortStableFunc(ks, compareDefault)

	for i := range ks {
		ps[i] = ks[i].p
	}
}

func compareDefault(a, b keyed) int {
	return cmp.Or(
		strings.Compare(a.p.Brand, b.p.Brand),
		compareNewFirst(a.p.New, b.p.New),
		strings.Compare(a.p.Category, b.p.Category),
		strings.Compare(a.p.SubCategory, b.p.SubCategory),
		strings.Compare(b.p.Series, a.p.Series),
		strings.Compare(a.keys.Color, b.keys.Color),
		cmp.Compare(a.keys.SizeOrder, b.keys.SizeOrder),
		cmp.Compare(a.p.Rate, b.p.Rate),
		strings.Compare(a.p.Name, b.p.Name),
	)
}

func compareNewFirst(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}
