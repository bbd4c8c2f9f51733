package columnar

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecwire"
	"github.com/hupe1980/vecwire/schema"
	"github.com/hupe1980/vecwire/wire"
)

func fullSchema() *schema.CollectionSchema {
	return &schema.CollectionSchema{
		Name: "library",
		Fields: []*schema.Field{
			{Name: "id", DataType: schema.DataTypeInt64, PrimaryKey: true},
			{Name: "title", DataType: schema.DataTypeVarChar, MaxLength: 256},
			{Name: "pages", DataType: schema.DataTypeInt32, Nullable: true},
			{Name: "embedding", DataType: schema.DataTypeFloatVector, Dim: 4},
			{Name: "keywords", DataType: schema.DataTypeSparseFloatVector},
			{
				Name:     "chunks",
				DataType: schema.DataTypeArrayOfStruct,
				StructSchema: []*schema.Field{
					{Name: "text", DataType: schema.DataTypeVarChar, MaxLength: 512},
					{Name: "vec", DataType: schema.DataTypeFloatVector, Dim: 2},
				},
			},
		},
		EnableDynamicField: true,
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	sch := fullSchema()
	rows := []vecwire.Row{
		{
			"id":        int64(1),
			"title":     "Moby-Dick",
			"pages":     int32(635),
			"embedding": []float32{0.1, 0.2, 0.3, 0.4},
			"keywords":  vecwire.SparseVector{{Index: 3, Value: 0.9}},
			"chunks": []map[string]any{
				{"text": "Call me Ishmael.", "vec": []float32{1, 2}},
			},
			"genre": "novel",
		},
		{
			"id":        int64(2),
			"title":     "Pale Fire",
			"pages":     nil,
			"embedding": []float32{0.5, 0.6, 0.7, 0.8},
			"keywords":  vecwire.SparseVector{},
			"chunks":    []map[string]any{},
			"genre":     "poetry",
		},
	}

	d, err := FromRows(sch, rows)
	require.NoError(t, err)

	fields, err := d.Fields()
	require.NoError(t, err)
	// Regular fields in schema order, dynamic bucket appended last.
	require.Len(t, fields, 7)
	assert.Equal(t, "id", fields[0].FieldName)
	assert.Equal(t, "chunks", fields[5].FieldName)
	last := fields[6]
	assert.Equal(t, schema.DynamicFieldName, last.FieldName)
	assert.True(t, last.IsDynamic)
	assert.JSONEq(t, `{"genre":"novel"}`, string(last.Scalars.JSONData[0]))
	assert.JSONEq(t, `{"genre":"poetry"}`, string(last.Scalars.JSONData[1]))

	got, err := ToRows(sch, fields)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0]["id"])
	assert.Equal(t, "Moby-Dick", got[0]["title"])
	assert.Equal(t, int32(635), got[0]["pages"])
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, got[0]["embedding"])
	assert.Equal(t, vecwire.SparseVector{{Index: 3, Value: 0.9}}, got[0]["keywords"])
	assert.Equal(t, "novel", got[0]["genre"])

	chunks := got[0]["chunks"].([]map[string]any)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Call me Ishmael.", chunks[0]["text"])
	assert.Equal(t, []float32{1, 2}, chunks[0]["vec"])

	// The nulled value comes back as a nil hole after mask expansion.
	assert.Nil(t, got[1]["pages"])
	assert.Equal(t, "Pale Fire", got[1]["title"])
	assert.Empty(t, got[1]["chunks"])
}

func TestFieldsSkipsAutoID(t *testing.T) {
	sch := &schema.CollectionSchema{
		Fields: []*schema.Field{
			{Name: "id", DataType: schema.DataTypeInt64, PrimaryKey: true, AutoID: true},
			{Name: "v", DataType: schema.DataTypeFloatVector, Dim: 2},
		},
	}
	d, err := FromRows(sch, []vecwire.Row{{"v": []float32{1, 2}}})
	require.NoError(t, err)

	fields, err := d.Fields()
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "v", fields[0].FieldName)
}

func TestFieldsEncodeErrorNamesField(t *testing.T) {
	sch := &schema.CollectionSchema{
		Fields: []*schema.Field{
			{Name: "id", DataType: schema.DataTypeInt64, PrimaryKey: true},
			{Name: "v", DataType: schema.DataTypeFloatVector, Dim: 4},
		},
	}
	d, err := FromRows(sch, []vecwire.Row{{"id": int64(1), "v": []float32{1, 2}}})
	require.NoError(t, err)

	_, err = d.Fields()
	require.Error(t, err)
	assert.ErrorIs(t, err, vecwire.ErrInvalid)
	assert.Contains(t, err.Error(), "v")
}

func TestToRowsMaskMismatch(t *testing.T) {
	sch := docSchema()
	fd := &wire.FieldData{
		FieldName: "title",
		Type:      schema.DataTypeVarChar,
		ValidData: []bool{true, true, false},
		Scalars:   &wire.ScalarField{Kind: wire.ScalarKindString, Strings: []string{"only one"}},
	}
	_, err := ToRows(sch, []*wire.FieldData{fd})
	require.Error(t, err)
	assert.ErrorIs(t, err, vecwire.ErrMalformedWire)
}

func TestToRowsBinaryVectorBadDim(t *testing.T) {
	// A binary vector with a sub-byte dimension must surface as a
	// malformed-wire error, not a panic in the row-count scan.
	sch := docSchema()
	fd := &wire.FieldData{
		FieldName: "bits",
		Type:      schema.DataTypeBinaryVector,
		Vectors:   &wire.VectorField{Kind: wire.VectorKindBinary, Dim: 4, Bytes: []byte{0xF0}},
	}
	_, err := ToRows(sch, []*wire.FieldData{fd})
	require.Error(t, err)
	assert.ErrorIs(t, err, vecwire.ErrMalformedWire)
}

func TestToRowsUndeclaredWireField(t *testing.T) {
	// Server-side additions (e.g. function outputs) decode by wire kind
	// even without a descriptor.
	sch := docSchema()
	fields := []*wire.FieldData{
		{
			FieldName: "id",
			Type:      schema.DataTypeInt64,
			Scalars:   &wire.ScalarField{Kind: wire.ScalarKindLong, Longs: []int64{7}},
		},
		{
			FieldName: "score",
			Type:      schema.DataTypeFloat,
			Scalars:   &wire.ScalarField{Kind: wire.ScalarKindFloat, Floats: []float32{0.5}},
		},
	}
	rows, err := ToRows(sch, fields, WithLogger(slog.Default()))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(7), rows[0]["id"])
	assert.Equal(t, float32(0.5), rows[0]["score"])
}

func TestToRowsDeclaredWinsOverDynamic(t *testing.T) {
	sch := dynamicDocSchema()
	fields := []*wire.FieldData{
		{
			FieldName: "title",
			Type:      schema.DataTypeVarChar,
			Scalars:   &wire.ScalarField{Kind: wire.ScalarKindString, Strings: []string{"declared"}},
		},
		{
			FieldName: schema.DynamicFieldName,
			Type:      schema.DataTypeJSON,
			IsDynamic: true,
			Scalars: &wire.ScalarField{
				Kind:     wire.ScalarKindJSON,
				JSONData: [][]byte{[]byte(`{"title":"shadowed","extra":1}`)},
			},
		},
	}
	rows, err := ToRows(sch, fields)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "declared", rows[0]["title"])
	assert.Equal(t, float64(1), rows[0]["extra"])
}

func TestToRowsEmpty(t *testing.T) {
	rows, err := ToRows(docSchema(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
