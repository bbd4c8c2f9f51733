package codec

import (
	"github.com/hupe1980/vecwire"
	"github.com/hupe1980/vecwire/schema"
	"github.com/hupe1980/vecwire/wire"
)

// EncodeColumn encodes one column according to its field descriptor,
// dispatching to the scalar, vector or struct-array codec.
func EncodeColumn(f *schema.Field, values []any) (*wire.FieldData, error) {
	switch {
	case f.DataType == schema.DataTypeArrayOfStruct:
		return EncodeStructArrayColumn(f, values)
	case f.DataType.IsVector():
		return EncodeVectorColumn(f, values)
	default:
		return EncodeScalarColumn(f, values)
	}
}

// DecodeColumn decodes one wire field back to application values. The
// descriptor refines decoding (integer narrowing, dimensions) and may be
// nil for undeclared columns.
func DecodeColumn(f *schema.Field, fd *wire.FieldData) ([]any, error) {
	switch {
	case fd.StructArrays != nil:
		return DecodeStructArrayColumn(f, fd)
	case fd.Vectors != nil:
		return DecodeVectorColumn(f, fd)
	case fd.Scalars != nil:
		return DecodeScalarColumn(f, fd)
	default:
		return nil, vecwire.NewInvalid(fd.FieldName, "field carries no data")
	}
}

// EncodeDynamicColumn encodes the dynamic bucket: one JSON object per row
// ({} for rows without dynamic data), flagged schema-less so the server
// routes it to its reserved metadata storage.
func EncodeDynamicColumn(values []any) (*wire.FieldData, error) {
	out := make([][]byte, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = []byte("{}")
			continue
		}
		b, err := Default.Marshal(v)
		if err != nil {
			return nil, vecwire.WrapInvalid(schema.DynamicFieldName, err)
		}
		out[i] = b
	}
	return &wire.FieldData{
		FieldName: schema.DynamicFieldName,
		Type:      schema.DataTypeJSON,
		IsDynamic: true,
		Scalars:   &wire.ScalarField{Kind: wire.ScalarKindJSON, JSONData: out},
	}, nil
}

// DecodeDynamicColumn decodes the dynamic bucket back to per-row maps.
// Elements that fail to parse as objects decode to nil rather than
// failing; dynamic data is best-effort metadata.
func DecodeDynamicColumn(fd *wire.FieldData) ([]map[string]any, error) {
	sf := fd.Scalars
	if sf == nil || sf.Kind != wire.ScalarKindJSON {
		return nil, vecwire.NewInvalid(fd.FieldName, "dynamic field must be a JSON scalar column")
	}
	out := make([]map[string]any, len(sf.JSONData))
	for i, raw := range sf.JSONData {
		var m map[string]any
		if err := Default.Unmarshal(raw, &m); err != nil {
			continue
		}
		out[i] = m
	}
	return out, nil
}
