package query

// Projection is the ordered list of columns requested from a read.
type Projection []string

// Columns builds a projection from the given column names, collapsing
// duplicates while preserving first-seen order. Requesting the same column
// twice is not an error.
func Columns(names ...string) Projection {
	seen := make(map[string]bool, len(names))
	proj := make(Projection, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		proj = append(proj, name)
	}
	return proj
}
