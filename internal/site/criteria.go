package site

import "slices"

// Filter selects pages by tags and categories. Each non-empty dimension
// must match; a dimension matches when the page has ANY of the listed
// values, or ALL of them when the matching All flag is set.
type Filter struct {
	Tags          []string
	Categories    []string
	AllTags       bool
	AllCategories bool
}

// Criteria narrows FindPages. Include keeps matching pages; Exclude then
// drops matching pages. Nil or empty clauses do not filter.
type Criteria struct {
	Include *Filter
	Exclude *Filter
	// Limit caps the result when positive.
	Limit int
}

func (f *Filter) empty() bool {
	return f == nil || (len(f.Tags) == 0 && len(f.Categories) == 0)
}

// Matches reports whether m satisfies every non-empty dimension of f.
func (f *Filter) Matches(m Meta) bool {
	if len(f.Tags) > 0 && !matchSet(m.Tags, f.Tags, f.AllTags) {
		return false
	}
	if len(f.Categories) > 0 && !matchSet(m.Categories, f.Categories, f.AllCategories) {
		return false
	}
	return true
}

func matchSet(have, want []string, all bool) bool {
	for _, w := range want {
		found := slices.Contains(have, w)
		if all && !found {
			return false
		}
		if !all && found {
			return true
		}
	}
	return all
}
