package match

import "strings"

// less is the pipeline's default comparator: case-insensitive
// lexicographic with a case-sensitive tie-break. Sorting is always
// stable, so equal candidates keep their insertion order.
func less(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// Comparator orders candidates. Commands can register their own through
// the grammar layer; the pipeline falls back to the default.
type Comparator func(a, b Candidate) bool

// DefaultComparator is the standard ordering.
func DefaultComparator(a, b Candidate) bool {
	return less(a.Text, b.Text)
}
