package extract

import "strings"

// DefaultTaxonomy is the closed set of category labels transactions are
// sorted into. Exactly one variant is in use; do not mix it with the older
// five-label or underscore schemas.
var DefaultTaxonomy = Taxonomy{
	Labels: []string{
		"Food & Dining",
		"Transportation",
		"Shopping & Entertainment",
		"Bills & Utilities",
		"Health & Wellness",
		"Other",
	},
	CatchAll: "Other",
}

// Taxonomy is a fixed, ordered set of category labels with one designated
// catch-all that absorbs everything the model cannot place.
type Taxonomy struct {
	Labels   []string
	CatchAll string
}

// Contains reports whether label is in the taxonomy, ignoring case and
// surrounding whitespace.
func (t Taxonomy) Contains(label string) bool {
	return t.Canonical(label) != ""
}

// Canonical maps a model-supplied label to the exact taxonomy spelling, or
// returns "" when the label is not in the taxonomy.
func (t Taxonomy) Canonical(label string) string {
	norm := normalizeLabel(label)
	for _, l := range t.Labels {
		if normalizeLabel(l) == norm {
			return l
		}
	}
	return ""
}

func normalizeLabel(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
