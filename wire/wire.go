// Package wire defines the in-memory shapes of the protocol's columnar
// field messages.
//
// Each union is a closed Kind tag plus payload slots; exactly one slot is
// populated per value. Serializing these messages to bytes-on-the-network
// is the RPC layer's job, not this package's.
package wire

import (
	"github.com/hupe1980/vecwire/schema"
)

// ScalarKind identifies the concrete array stored in a ScalarField.
type ScalarKind uint8

const (
	ScalarKindInvalid ScalarKind = iota
	ScalarKindBool
	ScalarKindInt    // 32-bit container; Int8/Int16/Int32 columns widen into it
	ScalarKindLong   // 64-bit container
	ScalarKindFloat
	ScalarKindDouble
	ScalarKindString
	ScalarKindJSON
	ScalarKindArray
)

// String returns the string representation of the ScalarKind.
func (k ScalarKind) String() string {
	switch k {
	case ScalarKindBool:
		return "Bool"
	case ScalarKindInt:
		return "Int"
	case ScalarKindLong:
		return "Long"
	case ScalarKindFloat:
		return "Float"
	case ScalarKindDouble:
		return "Double"
	case ScalarKindString:
		return "String"
	case ScalarKindJSON:
		return "JSON"
	case ScalarKindArray:
		return "Array"
	default:
		return "Invalid"
	}
}

// ScalarField is one scalar wire column: a tagged union over the typed
// array representations.
type ScalarField struct {
	Kind ScalarKind

	Bools    []bool
	Ints     []int32
	Longs    []int64
	Floats   []float32
	Doubles  []float64
	Strings  []string
	JSONData [][]byte

	// Arrays holds one sub-field per row for array columns (each row is
	// itself a typed scalar array, e.g. a struct-array sub-field).
	Arrays []*ScalarField
}

// Len returns the number of rows (elements) held by the field.
func (f *ScalarField) Len() int {
	if f == nil {
		return 0
	}
	switch f.Kind {
	case ScalarKindBool:
		return len(f.Bools)
	case ScalarKindInt:
		return len(f.Ints)
	case ScalarKindLong:
		return len(f.Longs)
	case ScalarKindFloat:
		return len(f.Floats)
	case ScalarKindDouble:
		return len(f.Doubles)
	case ScalarKindString:
		return len(f.Strings)
	case ScalarKindJSON:
		return len(f.JSONData)
	case ScalarKindArray:
		return len(f.Arrays)
	default:
		return 0
	}
}

// VectorKind identifies the concrete layout stored in a VectorField.
type VectorKind uint8

const (
	VectorKindInvalid VectorKind = iota
	VectorKindFloat
	VectorKindBinary
	VectorKindFloat16
	VectorKindBFloat16
	VectorKindInt8
	VectorKindSparse
	VectorKindArray // recursive per-row vectors (struct-array sub-fields)
)

// String returns the string representation of the VectorKind.
func (k VectorKind) String() string {
	switch k {
	case VectorKindFloat:
		return "Float"
	case VectorKindBinary:
		return "Binary"
	case VectorKindFloat16:
		return "Float16"
	case VectorKindBFloat16:
		return "BFloat16"
	case VectorKindInt8:
		return "Int8"
	case VectorKindSparse:
		return "Sparse"
	case VectorKindArray:
		return "Array"
	default:
		return "Invalid"
	}
}

// VectorField is one vector wire column.
//
// Dense layouts flatten all rows into one contiguous buffer (Floats for
// the float vector, Bytes for the packed binary/fp16/bf16/int8 layouts);
// Dim is the per-row element count. Sparse holds one (index, value)
// record stream per row; its Dim is the batch-wide max index + 1. Vectors
// is the recursive form carrying one VectorField per row.
type VectorField struct {
	Kind VectorKind
	Dim  int64

	Floats  []float32
	Bytes   []byte
	Sparse  [][]byte
	Vectors []*VectorField
}

// Len returns the number of rows held by the field.
func (f *VectorField) Len() int {
	if f == nil {
		return 0
	}
	switch f.Kind {
	case VectorKindFloat:
		if f.Dim <= 0 {
			return 0
		}
		return len(f.Floats) / int(f.Dim)
	case VectorKindBinary:
		// Dim below one byte would make the stride zero; treat it as no
		// rows and let the decoder report the malformed dimension.
		if f.Dim < 8 {
			return 0
		}
		return len(f.Bytes) / (int(f.Dim) / 8)
	case VectorKindFloat16, VectorKindBFloat16:
		if f.Dim <= 0 {
			return 0
		}
		return len(f.Bytes) / (int(f.Dim) * 2)
	case VectorKindInt8:
		if f.Dim <= 0 {
			return 0
		}
		return len(f.Bytes) / int(f.Dim)
	case VectorKindSparse:
		return len(f.Sparse)
	case VectorKindArray:
		return len(f.Vectors)
	default:
		return 0
	}
}

// StructArrayField wraps the nested per-sub-field columns of an
// array-of-struct column.
type StructArrayField struct {
	Fields []*FieldData
}

// FieldData is the envelope for one encoded column.
//
// Exactly one of Scalars, Vectors or StructArrays is set, matching Type.
// ValidData is the validity mask for nullable columns: true marks a
// present value, in original row order. An empty mask means all rows are
// valid and the scalar payload is uncompacted.
type FieldData struct {
	FieldName string
	Type      schema.DataType
	IsDynamic bool
	ValidData []bool

	Scalars      *ScalarField
	Vectors      *VectorField
	StructArrays *StructArrayField
}

// RowCount returns the number of rows the field covers. For masked
// (nullable) columns this is the mask length, since the payload is
// compacted.
func (fd *FieldData) RowCount() int {
	if fd == nil {
		return 0
	}
	if len(fd.ValidData) > 0 {
		return len(fd.ValidData)
	}
	switch {
	case fd.Scalars != nil:
		return fd.Scalars.Len()
	case fd.Vectors != nil:
		return fd.Vectors.Len()
	case fd.StructArrays != nil && len(fd.StructArrays.Fields) > 0:
		return fd.StructArrays.Fields[0].RowCount()
	default:
		return 0
	}
}
