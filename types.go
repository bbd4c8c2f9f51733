package vecwire

import "sort"

// Row is one row of user data: a mapping from a normalized field-name
// string to a value. Keys are matched case-sensitively against the schema.
type Row = map[string]any

// SparseEntry is one (index, value) pair of a sparse vector.
type SparseEntry struct {
	Index uint32
	Value float32
}

// SparseVector is a variable-length list of (index, value) pairs
// representing a vector with mostly-zero entries.
//
// The wire format requires entries sorted by index ascending; Sort
// normalizes in place and the codec sorts a copy when needed, so callers
// may build entries in any order.
type SparseVector []SparseEntry

// Sort orders the entries by index ascending.
func (v SparseVector) Sort() {
	sort.Slice(v, func(i, j int) bool { return v[i].Index < v[j].Index })
}

// Dim returns the vector's dimension: max index + 1, or 0 when empty.
func (v SparseVector) Dim() int {
	dim := 0
	for _, e := range v {
		if int(e.Index)+1 > dim {
			dim = int(e.Index) + 1
		}
	}
	return dim
}
