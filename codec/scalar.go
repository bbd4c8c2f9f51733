package codec

import (
	"time"

	"github.com/hupe1980/vecwire"
	"github.com/hupe1980/vecwire/schema"
	"github.com/hupe1980/vecwire/wire"
)

// EncodeScalarColumn encodes one column of primitive values into its wire
// field. Row order is preserved end-to-end.
//
// For nullable fields containing nils the payload is compacted to the
// non-null values and a validity mask (true = present, original row order)
// is attached; a column without nils carries an empty mask meaning "all
// valid".
func EncodeScalarColumn(f *schema.Field, values []any) (*wire.FieldData, error) {
	compacted, mask := compactNulls(f, values)
	sf, err := encodeScalars(f.Name, f.DataType, compacted)
	if err != nil {
		return nil, err
	}
	return &wire.FieldData{
		FieldName: f.Name,
		Type:      f.DataType,
		ValidData: mask,
		Scalars:   sf,
	}, nil
}

// compactNulls drops nil elements and builds the validity mask. Fields
// that cannot hold nulls (not nullable, no server-side default) pass
// through untouched; a stray nil then fails coercion with the row index.
func compactNulls(f *schema.Field, values []any) ([]any, []bool) {
	if !f.Nullable && f.DefaultValue == nil {
		return values, nil
	}
	hasNull := false
	for _, v := range values {
		if v == nil {
			hasNull = true
			break
		}
	}
	if !hasNull {
		return values, nil
	}
	mask := make([]bool, len(values))
	compacted := make([]any, 0, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		mask[i] = true
		compacted = append(compacted, v)
	}
	return compacted, mask
}

func encodeScalars(name string, dt schema.DataType, values []any) (*wire.ScalarField, error) {
	switch dt {
	case schema.DataTypeBool:
		out := make([]bool, len(values))
		for i, v := range values {
			b, err := asBool(v)
			if err != nil {
				return nil, vecwire.NewInvalid(name, "row %d: %v", i, err)
			}
			out[i] = b
		}
		return &wire.ScalarField{Kind: wire.ScalarKindBool, Bools: out}, nil

	case schema.DataTypeInt8, schema.DataTypeInt16, schema.DataTypeInt32:
		// Sized integers widen into the wire's 32-bit container.
		out := make([]int32, len(values))
		for i, v := range values {
			n, err := asInt32(v)
			if err != nil {
				return nil, vecwire.NewInvalid(name, "row %d: %v", i, err)
			}
			out[i] = n
		}
		return &wire.ScalarField{Kind: wire.ScalarKindInt, Ints: out}, nil

	case schema.DataTypeInt64:
		out := make([]int64, len(values))
		for i, v := range values {
			n, err := asInt64(v)
			if err != nil {
				return nil, vecwire.NewInvalid(name, "row %d: %v", i, err)
			}
			out[i] = n
		}
		return &wire.ScalarField{Kind: wire.ScalarKindLong, Longs: out}, nil

	case schema.DataTypeFloat:
		out := make([]float32, len(values))
		for i, v := range values {
			n, err := asFloat32(v)
			if err != nil {
				return nil, vecwire.NewInvalid(name, "row %d: %v", i, err)
			}
			out[i] = n
		}
		return &wire.ScalarField{Kind: wire.ScalarKindFloat, Floats: out}, nil

	case schema.DataTypeDouble:
		out := make([]float64, len(values))
		for i, v := range values {
			n, err := asFloat64(v)
			if err != nil {
				return nil, vecwire.NewInvalid(name, "row %d: %v", i, err)
			}
			out[i] = n
		}
		return &wire.ScalarField{Kind: wire.ScalarKindDouble, Doubles: out}, nil

	case schema.DataTypeVarChar, schema.DataTypeText:
		out := make([]string, len(values))
		for i, v := range values {
			s, err := asString(v)
			if err != nil {
				return nil, vecwire.NewInvalid(name, "row %d: %v", i, err)
			}
			out[i] = s
		}
		return &wire.ScalarField{Kind: wire.ScalarKindString, Strings: out}, nil

	case schema.DataTypeJSON:
		out := make([][]byte, len(values))
		for i, v := range values {
			b, err := marshalJSONElement(v)
			if err != nil {
				return nil, vecwire.NewInvalid(name, "row %d: %v", i, err)
			}
			out[i] = b
		}
		return &wire.ScalarField{Kind: wire.ScalarKindJSON, JSONData: out}, nil

	case schema.DataTypeTimestamp:
		out := make([]string, len(values))
		for i, v := range values {
			t, err := asTimestamp(v)
			if err != nil {
				return nil, vecwire.NewInvalid(name, "row %d: %v", i, err)
			}
			out[i] = t.Format(time.RFC3339Nano)
		}
		return &wire.ScalarField{Kind: wire.ScalarKindString, Strings: out}, nil

	default:
		panic("codec: encodeScalars called with non-scalar type " + dt.String())
	}
}

// marshalJSONElement treats strings and byte slices as pre-encoded JSON;
// everything else goes through the configured JSON codec.
func marshalJSONElement(v any) ([]byte, error) {
	switch e := v.(type) {
	case string:
		return []byte(e), nil
	case []byte:
		return e, nil
	default:
		return Default.Marshal(v)
	}
}

// DecodeScalarColumn decodes one scalar wire field back to application
// values. For masked (nullable) columns the compacted value list is
// returned as-is; re-expanding against the validity mask is the caller's
// concern.
//
// f supplies decode refinements (integer narrowing, timestamp parsing) and
// may be nil for undeclared columns.
func DecodeScalarColumn(f *schema.Field, fd *wire.FieldData) ([]any, error) {
	sf := fd.Scalars
	if sf == nil {
		return nil, vecwire.NewInvalid(fd.FieldName, "field carries no scalar data")
	}

	switch sf.Kind {
	case wire.ScalarKindBool:
		out := make([]any, len(sf.Bools))
		for i, v := range sf.Bools {
			out[i] = v
		}
		return out, nil

	case wire.ScalarKindInt:
		out := make([]any, len(sf.Ints))
		for i, v := range sf.Ints {
			out[i] = narrowInt(f, v)
		}
		return out, nil

	case wire.ScalarKindLong:
		out := make([]any, len(sf.Longs))
		for i, v := range sf.Longs {
			if fd.Type == schema.DataTypeTimestamp {
				// Microseconds since epoch.
				out[i] = time.UnixMicro(v).UTC()
				continue
			}
			out[i] = v
		}
		return out, nil

	case wire.ScalarKindFloat:
		out := make([]any, len(sf.Floats))
		for i, v := range sf.Floats {
			out[i] = v
		}
		return out, nil

	case wire.ScalarKindDouble:
		out := make([]any, len(sf.Doubles))
		for i, v := range sf.Doubles {
			out[i] = v
		}
		return out, nil

	case wire.ScalarKindString:
		out := make([]any, len(sf.Strings))
		for i, v := range sf.Strings {
			if fd.Type == schema.DataTypeTimestamp {
				if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
					out[i] = t.UTC()
					continue
				}
				// Unparseable wire timestamps surface as the raw string.
			}
			out[i] = v
		}
		return out, nil

	case wire.ScalarKindJSON:
		out := make([]any, len(sf.JSONData))
		for i, raw := range sf.JSONData {
			out[i] = unmarshalJSONElement(raw)
		}
		return out, nil

	case wire.ScalarKindArray:
		out := make([]any, len(sf.Arrays))
		for i, sub := range sf.Arrays {
			vals, err := DecodeScalarColumn(f, &wire.FieldData{
				FieldName: fd.FieldName,
				Type:      fd.Type,
				Scalars:   sub,
			})
			if err != nil {
				return nil, err
			}
			out[i] = vals
		}
		return out, nil

	default:
		return nil, vecwire.NewInvalid(fd.FieldName, "unknown scalar kind %d", sf.Kind)
	}
}

// unmarshalJSONElement parses best-effort: JSON fields are metadata, so a
// malformed element degrades to the raw bytes instead of failing the row.
func unmarshalJSONElement(raw []byte) any {
	var v any
	if err := Default.Unmarshal(raw, &v); err != nil {
		return raw
	}
	return v
}

func narrowInt(f *schema.Field, v int32) any {
	if f == nil {
		return v
	}
	switch f.DataType {
	case schema.DataTypeInt8:
		return int8(v)
	case schema.DataTypeInt16:
		return int16(v)
	default:
		return v
	}
}
