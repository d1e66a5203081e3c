// Package catalogue holds the pure catalogue logic: base name extraction,
// sort key derivation, ordering and grouping of products.
//
// Everything here works on in-memory slices and is safe for concurrent use.
package catalogue

import (
	"regexp"
	"strings"
	"unicode"
)

// sizeTokens lists abbreviated sizes longest first. Regexp alternation
// is leftmost-first, so "XXXL" must be tried before "XL" and "L".
var sizeTokens = []string{
	"XXXXL", "XXXL", "XXL", "XL",
	"XXXXS", "XXXS", "XXS", "XS",
	"S", "M", "L",
}

// sizeWords lists full word sizes longest first.
var sizeWords = []string{
	"XXX-Large", "XX-Large", "X-Large", "Extra[- ]Large",
	"XXX-Small", "XX-Small", "X-Small", "Extra[- ]Small",
	"Medium", "Large", "Small",
}

var (
	sizeAlt = "(?:" + strings.Join(sizeTokens, "|") + ")"
	wordAlt = "(?:" + strings.Join(sizeWords, "|") + ")"
)

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

func rw(expr, repl string) rewrite {
	return rewrite{regexp.MustCompile(expr), repl}
}

// baseNamePasses are applied in order. Later passes rely on earlier ones
// having collapsed their patterns.
var baseNamePasses = []rewrite{
	// (XXL/62CM), （L/45 cm）
	rw(`(?i)\s*[(（]?\s*\b`+sizeAlt+`\s*/\s*\d+(?:\.\d+)?\s*(?:cm|mm|inch(?:es)?|in)\s*[)）]?`, " "),

	// full word sizes
	rw(`(?i)\s*[(（]\s*`+wordAlt+`\s*[)）]`, ""),
	rw(`(?i)\s+-\s*`+wordAlt+`\s*$`, ""),
	rw(`(?i)\s+`+wordAlt+`\s*$`, ""),
	rw(`(?i)-`+wordAlt+`\s*$`, ""),
	rw(`(?i)\s*-\s*`+wordAlt+`\s*-\s*`, " - "),
	rw(`(?i)\s+`+wordAlt+`\s+`, " "),

	// abbreviated sizes
	rw(`\s*[(（]\s*(?i:size)?\s*:?\s*`+sizeAlt+`\s*[)）]`, ""),
	rw(`\s+`+sizeAlt+`\s*/\s*`+sizeAlt+`\s*$`, ""),
	rw(`(-\s*[A-Za-z]+)\s*-\s*`+sizeAlt+`\s*$`, "$1"),
	rw(`\s*-\s*`+sizeAlt+`\s*-\s*`, " - "),
	rw(`\s*-\s*`+sizeAlt+`\s*$`, ""),
	rw(`\s+`+sizeAlt+`\s*$`, ""),
	rw(`\s+`+sizeAlt+`\s+`, " "),
	rw(`^\s*`+sizeAlt+`\s*-\s*`, ""),
	rw(`^\s*`+sizeAlt+`\s+`, ""),
	rw(`_`+sizeAlt+`$`, ""),

	// weights
	rw(`(?i)\s*[(（]\s*max\.?\s*\d+(?:\.\d+)?\s*kgs?\s*[)）]`, ""),
	rw(`(?i)\s*[(（]\s*\d+(?:\.\d+)?\s*-\s*\d+(?:\.\d+)?\s*kgs?\s*[)）]`, ""),
}

var (
	spacesRe = regexp.MustCompile(`\s+`)
	hyphenRe = regexp.MustCompile(`\s+-\s*|\s*-\s+`)
)

// ExtractBaseName strips size, measurement and weight qualifiers from a
// product name, leaving the family name shared by its variants.
//
// When stripping leaves nothing, the normalized input is returned, so a
// name made only of a size token is its own family.
func ExtractBaseName(name string) string {
	s := name
	for _, p := range baseNamePasses {
		s = p.re.ReplaceAllString(s, p.repl)
	}
	s = NormalizeWhitespace(s)
	if s == "" {
		return NormalizeWhitespace(name)
	}
	return s
}

// NormalizeWhitespace collapses runs of whitespace, puts single spaces
// around free-standing hyphens and trims hyphens and spaces at both ends.
// Hyphens inside words ("T-Shirt") are kept as they are.
func NormalizeWhitespace(s string) string {
	s = spacesRe.ReplaceAllString(s, " ")
	s = hyphenRe.ReplaceAllString(s, " - ")
	s = strings.TrimFunc(s, func(r rune) bool {
		return r == '-' || unicode.IsSpace(r)
	})
	return spacesRe.ReplaceAllString(s, " ")
}

// GroupKey is the key products are grouped and excluded by.
func GroupKey(name string) string {
	return strings.ToLower(ExtractBaseName(name))
}
