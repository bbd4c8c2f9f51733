package codec

import (
	"github.com/hupe1980/vecwire"
	"github.com/hupe1980/vecwire/schema"
	"github.com/hupe1980/vecwire/wire"
)

// EncodeStructArrayColumn encodes an array-of-struct column. Each row
// holds a variable-length list of struct instances (maps keyed by the
// nested schema's field names); an absent row encodes as an empty array.
//
// The encoding is a two-pass gather/encode pipeline: for every nested
// field, that field's values are gathered across all instances of every
// row (row grouping preserved), then encoded as one nested wire column.
func EncodeStructArrayColumn(f *schema.Field, values []any) (*wire.FieldData, error) {
	rows := make([][]map[string]any, len(values))
	for i, v := range values {
		insts, err := asStructInstances(v)
		if err != nil {
			return nil, vecwire.NewInvalid(f.Name, "row %d: %v", i, err)
		}
		rows[i] = insts
	}

	nested := make([]*wire.FieldData, 0, len(f.StructSchema))
	for _, sub := range f.StructSchema {
		gathered := make([][]any, len(rows))
		for i, insts := range rows {
			vals := make([]any, len(insts))
			for j, inst := range insts {
				vals[j] = inst[sub.Name]
			}
			gathered[i] = vals
		}

		var (
			nfd *wire.FieldData
			err error
		)
		if sub.DataType.IsDense() {
			nfd, err = encodeVectorRows(sub, gathered)
		} else {
			nfd, err = encodeScalarRows(sub, gathered)
		}
		if err != nil {
			return nil, err
		}
		nested = append(nested, nfd)
	}

	return &wire.FieldData{
		FieldName:    f.Name,
		Type:         f.DataType,
		StructArrays: &wire.StructArrayField{Fields: nested},
	}, nil
}

func asStructInstances(v any) ([]map[string]any, error) {
	switch insts := v.(type) {
	case nil:
		return nil, nil
	case []map[string]any:
		return insts, nil
	case []any:
		out := make([]map[string]any, len(insts))
		for i, e := range insts {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, vecwire.NewInvalid("struct", "instance %d: expected map, got %T", i, e)
			}
			out[i] = m
		}
		return out, nil
	default:
		return nil, vecwire.NewInvalid("struct", "expected struct instances, got %T", v)
	}
}

// encodeScalarRows encodes a per-row-grouped scalar column: one
// sub-ScalarField per row, wrapped in an Array-kind field.
func encodeScalarRows(f *schema.Field, rows [][]any) (*wire.FieldData, error) {
	arrays := make([]*wire.ScalarField, len(rows))
	for i, vals := range rows {
		sf, err := encodeScalars(f.Name, f.DataType, vals)
		if err != nil {
			return nil, err
		}
		arrays[i] = sf
	}
	return &wire.FieldData{
		FieldName: f.Name,
		Type:      f.DataType,
		Scalars:   &wire.ScalarField{Kind: wire.ScalarKindArray, Arrays: arrays},
	}, nil
}

// encodeVectorRows encodes a per-row-grouped dense vector column: one
// sub-VectorField per row, wrapped in an Array-kind field carrying the
// dimension and element type.
func encodeVectorRows(f *schema.Field, rows [][]any) (*wire.FieldData, error) {
	vectors := make([]*wire.VectorField, len(rows))
	for i, vals := range rows {
		vf, err := encodeVectors(f.Name, f.DataType, f.Dim, vals)
		if err != nil {
			return nil, err
		}
		vectors[i] = vf
	}
	return &wire.FieldData{
		FieldName: f.Name,
		Type:      f.DataType,
		Vectors:   &wire.VectorField{Kind: wire.VectorKindArray, Dim: int64(f.Dim), Vectors: vectors},
	}, nil
}

// DecodeStructArrayColumn decodes an array-of-struct wire field back to
// per-row instance lists. Each nested column is decoded independently into
// a list-of-lists (outer index = row, inner index = instance), then the
// lists are zip-transposed into per-instance maps.
func DecodeStructArrayColumn(f *schema.Field, fd *wire.FieldData) ([]any, error) {
	sa := fd.StructArrays
	if sa == nil {
		return nil, vecwire.NewInvalid(fd.FieldName, "field carries no struct-array data")
	}

	names := make([]string, len(sa.Fields))
	lists := make([][]any, len(sa.Fields))
	rowCount := -1
	for i, nfd := range sa.Fields {
		var sub *schema.Field
		if f != nil {
			for _, s := range f.StructSchema {
				if s.Name == nfd.FieldName {
					sub = s
					break
				}
			}
		}

		var (
			vals []any
			err  error
		)
		switch {
		case nfd.Vectors != nil:
			vals, err = DecodeVectorColumn(sub, nfd)
		case nfd.Scalars != nil:
			vals, err = DecodeScalarColumn(sub, nfd)
		default:
			err = vecwire.NewInvalid(nfd.FieldName, "nested field carries no data")
		}
		if err != nil {
			return nil, err
		}

		names[i] = nfd.FieldName
		lists[i] = vals
		if rowCount == -1 {
			rowCount = len(vals)
		} else if len(vals) != rowCount {
			return nil, vecwire.NewInvalid(fd.FieldName, "nested field %q has %d rows, expected %d", nfd.FieldName, len(vals), rowCount)
		}
	}
	if rowCount == -1 {
		rowCount = 0
	}

	out := make([]any, rowCount)
	for i := 0; i < rowCount; i++ {
		instCount := 0
		if len(lists) > 0 {
			instCount = rowLen(lists[0][i])
		}
		insts := make([]map[string]any, instCount)
		for j := range insts {
			insts[j] = make(map[string]any, len(names))
		}
		for fi, vals := range lists {
			inner := asAnySlice(vals[i])
			if len(inner) != instCount {
				return nil, vecwire.NewInvalid(fd.FieldName, "row %d: nested field %q has %d instances, expected %d", i, names[fi], len(inner), instCount)
			}
			for j, v := range inner {
				insts[j][names[fi]] = v
			}
		}
		out[i] = insts
	}
	return out, nil
}

func rowLen(v any) int {
	return len(asAnySlice(v))
}

// asAnySlice views a decoded per-row value as []any. Decoded nested
// columns always produce []any rows; typed slices only appear for dense
// vector singletons handed back unchunked.
func asAnySlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case nil:
		return nil
	default:
		return []any{s}
	}
}
