// Package schema defines the field descriptors and collection schemas
// consumed by the codec layer.
//
// A schema is built once (by the caller or an external schema DSL) and is
// immutable afterward; every codec call receives it by reference.
package schema

import (
	"fmt"
)

// DynamicFieldName is the reserved column holding schema-undeclared or
// dynamic-flagged field values, bundled per row as JSON.
const DynamicFieldName = "$meta"

// MaxVarCharLength is the upper bound for Field.MaxLength on string-like
// fields.
const MaxVarCharLength = 65535

// Field describes one column: its wire type and the constraints the codec
// enforces per call.
type Field struct {
	Name     string
	DataType DataType

	// ElementType is set for container types. Today the only container is
	// ArrayOfStruct, whose element type is DataTypeArrayOfStruct itself is
	// implied; ElementType records the declared element kind for forward
	// compatibility with scalar arrays.
	ElementType DataType

	// Dim is required and positive for dense vector types. BinaryVector
	// additionally requires a multiple of 8. Sparse vectors carry no Dim;
	// theirs is derived per batch from the data.
	Dim int

	// MaxLength bounds string-like fields, in [1, MaxVarCharLength].
	MaxLength int

	Nullable   bool
	AutoID     bool
	PrimaryKey bool

	// IsDynamic routes the field's values into the dynamic bucket instead
	// of a declared wire column.
	IsDynamic bool

	// StructSchema lists the nested sub-fields of an ArrayOfStruct field.
	StructSchema []*Field

	// DefaultValue, when non-nil, makes the field optional on insert.
	DefaultValue any
}

// FunctionType identifies a server-side value derivation.
type FunctionType uint8

const (
	FunctionTypeUnknown FunctionType = iota
	FunctionTypeBM25
	FunctionTypeTextEmbedding
)

// String returns the string representation of the FunctionType.
func (t FunctionType) String() string {
	switch t {
	case FunctionTypeBM25:
		return "BM25"
	case FunctionTypeTextEmbedding:
		return "TextEmbedding"
	default:
		return "Unknown"
	}
}

// Function describes a server-side derivation (e.g. text → sparse vector).
// Its output fields are produced by the server and must not be supplied by
// the client.
type Function struct {
	Name             string
	Type             FunctionType
	InputFieldNames  []string
	OutputFieldNames []string
}

// CollectionSchema is an ordered, name-unique list of fields plus the
// dynamic-storage flag and the server-side functions.
type CollectionSchema struct {
	Name               string
	Fields             []*Field
	EnableDynamicField bool
	Functions          []*Function
}

// Field returns the descriptor with the given name, or nil.
func (s *CollectionSchema) Field(name string) *Field {
	for _, f := range s.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FunctionOutputFields returns the set of field names produced server-side.
func (s *CollectionSchema) FunctionOutputFields() map[string]bool {
	out := make(map[string]bool)
	for _, fn := range s.Functions {
		for _, name := range fn.OutputFieldNames {
			out[name] = true
		}
	}
	return out
}

// HasDynamic reports whether dynamic storage applies: either the schema
// enables it, or at least one field is flagged dynamic.
func (s *CollectionSchema) HasDynamic() bool {
	if s.EnableDynamicField {
		return true
	}
	for _, f := range s.Fields {
		if f.IsDynamic {
			return true
		}
	}
	return false
}

// RequiredFields returns the fields the client must supply on insert:
// not auto-generated, not nullable, not dynamic, not a function output and
// without a default value.
func (s *CollectionSchema) RequiredFields() []*Field {
	outputs := s.FunctionOutputFields()
	var required []*Field
	for _, f := range s.Fields {
		if f.AutoID || f.Nullable || f.IsDynamic || f.DefaultValue != nil {
			continue
		}
		if outputs[f.Name] {
			continue
		}
		required = append(required, f)
	}
	return required
}

// InsertableFields returns the fields whose columns are built from client
// input: not auto-generated, not a function output and not dynamic.
func (s *CollectionSchema) InsertableFields() []*Field {
	outputs := s.FunctionOutputFields()
	var fields []*Field
	for _, f := range s.Fields {
		if f.AutoID || f.IsDynamic || outputs[f.Name] {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

// Validate checks the schema-level invariants. The codec layer relies on
// these holding and performs no schema validation of its own.
func (s *CollectionSchema) Validate() error {
	seen := make(map[string]bool, len(s.Fields))
	primaryKeys := 0
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %q: field with empty name", s.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema %q: duplicate field %q", s.Name, f.Name)
		}
		seen[f.Name] = true

		if f.PrimaryKey {
			primaryKeys++
		}
		if err := f.validate(); err != nil {
			return fmt.Errorf("schema %q: %w", s.Name, err)
		}
	}
	if primaryKeys != 1 {
		return fmt.Errorf("schema %q: exactly one primary key required, got %d", s.Name, primaryKeys)
	}
	return nil
}

func (f *Field) validate() error {
	switch {
	case f.DataType.IsDense():
		if f.Dim <= 0 {
			return fmt.Errorf("field %q: %s requires a positive dimension", f.Name, f.DataType)
		}
		if f.DataType == DataTypeBinaryVector && f.Dim%8 != 0 {
			return fmt.Errorf("field %q: BinaryVector dimension must be a multiple of 8, got %d", f.Name, f.Dim)
		}
	case f.DataType == DataTypeSparseFloatVector:
		if f.Dim != 0 {
			return fmt.Errorf("field %q: SparseFloatVector carries no fixed dimension", f.Name)
		}
	case f.DataType.IsString():
		if f.MaxLength < 1 || f.MaxLength > MaxVarCharLength {
			return fmt.Errorf("field %q: max length must be in [1, %d], got %d", f.Name, MaxVarCharLength, f.MaxLength)
		}
	case f.DataType == DataTypeArrayOfStruct:
		if len(f.StructSchema) == 0 {
			return fmt.Errorf("field %q: ArrayOfStruct requires a non-empty struct schema", f.Name)
		}
		for _, sub := range f.StructSchema {
			if sub.DataType == DataTypeArrayOfStruct {
				return fmt.Errorf("field %q: nested struct field %q may not itself be a struct array", f.Name, sub.Name)
			}
			if sub.DataType == DataTypeSparseFloatVector {
				return fmt.Errorf("field %q: nested struct field %q may not be sparse", f.Name, sub.Name)
			}
			if err := sub.validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
