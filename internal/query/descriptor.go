package query

// Attribute maps a logical attribute name to its physical column.
type Attribute struct {
	Name   string
	Column string
}

// Descriptor is the static binding of a logical entity to its physical
// relation: the relation name, the primary lookup column, and the ordered
// attribute enumeration used to validate and translate write payloads.
// Descriptors are constructed once and shared read-only.
type Descriptor struct {
	Relation   string
	KeyColumn  string
	Attributes []Attribute
}

// Column resolves a logical attribute name to its physical column. The
// second return is false when the attribute is not part of the descriptor.
func (d Descriptor) Column(attr string) (string, bool) {
	for _, a := range d.Attributes {
		if a.Name == attr {
			return a.Column, true
		}
	}
	return "", false
}

// Columns returns the physical columns in declaration order.
func (d Descriptor) Columns() []string {
	cols := make([]string, len(d.Attributes))
	for i, a := range d.Attributes {
		cols[i] = a.Column
	}
	return cols
}
