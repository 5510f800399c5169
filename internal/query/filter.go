// Package query holds the value types the persistence engine is built from:
// a composable boolean filter tree, a duplicate-free column projection, and
// the static descriptors binding logical entities to their physical relations.
//
// Everything in this package is immutable data. Building a filter or a
// projection has no side effects; translation into an actual store operation
// happens in the storage package.
package query

// Operator identifies the comparison or combination applied by a filter node.
type Operator string

const (
	// OpEqual is the only comparison operator any consumer of this engine
	// uses. Range, LIKE and negation are deliberately absent.
	OpEqual Operator = "="

	// OpAnd is the only combination operator. Multi-column composite keys
	// are expressed as nested conjunctions.
	OpAnd Operator = "AND"
)

// Filter is a node in the predicate tree describing which rows an operation
// touches. The three implementations are NoOp, Compare and Combine.
type Filter interface {
	filterNode()
}

// NoOp matches every row. Used for full-relation scans.
type NoOp struct{}

// Compare matches rows whose column equals the given value.
type Compare struct {
	Column string
	Value  any
	Op     Operator
}

// Combine conjoins two sub-filters. The tree nests arbitrarily deep, e.g.
// ((tenant = X) AND (role = Y)) AND (account = Z).
type Combine struct {
	Left  Filter
	Right Filter
	Op    Operator
}

func (NoOp) filterNode()    {}
func (Compare) filterNode() {}
func (Combine) filterNode() {}

// All returns the match-everything filter.
func All() Filter {
	return NoOp{}
}

// Eq returns an equality comparison on a single column.
func Eq(column string, value any) Filter {
	return Compare{Column: column, Value: value, Op: OpEqual}
}

// And conjoins two filters.
func And(left, right Filter) Filter {
	return Combine{Left: left, Right: right, Op: OpAnd}
}
