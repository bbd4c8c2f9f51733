package columnar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecwire"
	"github.com/hupe1980/vecwire/schema"
)

func docSchema() *schema.CollectionSchema {
	return &schema.CollectionSchema{
		Name: "docs",
		Fields: []*schema.Field{
			{Name: "id", DataType: schema.DataTypeInt64, PrimaryKey: true},
			{Name: "title", DataType: schema.DataTypeVarChar, MaxLength: 256},
			{Name: "vector", DataType: schema.DataTypeFloatVector, Dim: 4},
		},
	}
}

func dynamicDocSchema() *schema.CollectionSchema {
	sch := docSchema()
	sch.EnableDynamicField = true
	return sch
}

func TestFromRows(t *testing.T) {
	sch := docSchema()
	rows := []vecwire.Row{
		{"id": int64(1), "title": "First", "vector": []float32{1, 2, 3, 4}},
		{"id": int64(2), "title": "Second", "vector": []float32{5, 6, 7, 8}},
	}

	d, err := FromRows(sch, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, d.RowCount)
	assert.Equal(t, []any{int64(1), int64(2)}, d.Columns["id"])
	assert.Equal(t, []any{"First", "Second"}, d.Columns["title"])
	assert.NotContains(t, d.Columns, schema.DynamicFieldName)
}

func TestFromRowsEmpty(t *testing.T) {
	d, err := FromRows(docSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, d.RowCount)
	assert.Empty(t, d.Columns)
}

func TestFromRowsInconsistentFields(t *testing.T) {
	sch := docSchema()
	rows := []vecwire.Row{
		{"id": int64(1), "title": "A", "vector": []float32{1, 2, 3, 4}},
		{"id": int64(2), "vector": []float32{5, 6, 7, 8}},
	}

	_, err := FromRows(sch, rows)
	require.Error(t, err)
	assert.ErrorIs(t, err, vecwire.ErrInvalid)
	assert.Contains(t, err.Error(), "different fields")
}

func TestFromRowsMissingRequired(t *testing.T) {
	sch := docSchema()
	rows := []vecwire.Row{
		{"id": int64(1), "vector": []float32{1, 2, 3, 4}},
		{"id": int64(2), "vector": []float32{5, 6, 7, 8}},
	}

	_, err := FromRows(sch, rows)
	require.Error(t, err)
	assert.ErrorIs(t, err, vecwire.ErrInvalid)
	assert.Contains(t, err.Error(), "missing required fields")
	assert.Contains(t, err.Error(), "title")
}

func TestFromRowsOptionalFieldsNotRequired(t *testing.T) {
	sch := docSchema()
	sch.Fields = append(sch.Fields,
		&schema.Field{Name: "note", DataType: schema.DataTypeVarChar, MaxLength: 64, Nullable: true},
		&schema.Field{Name: "rank", DataType: schema.DataTypeInt32, DefaultValue: int32(0)},
		&schema.Field{Name: "serial", DataType: schema.DataTypeInt64, AutoID: true},
	)
	sch.Functions = []*schema.Function{
		{
			Name:             "bm25",
			Type:             schema.FunctionTypeBM25,
			InputFieldNames:  []string{"title"},
			OutputFieldNames: []string{"sparse"},
		},
	}
	sch.Fields = append(sch.Fields, &schema.Field{Name: "sparse", DataType: schema.DataTypeSparseFloatVector})

	rows := []vecwire.Row{
		{"id": int64(1), "title": "A", "vector": []float32{1, 2, 3, 4}},
	}

	d, err := FromRows(sch, rows)
	require.NoError(t, err)
	// Nullable and defaulted columns materialize with nil holes.
	assert.Equal(t, []any{nil}, d.Columns["note"])
	assert.Equal(t, []any{nil}, d.Columns["rank"])
	// Auto-generated and function-output columns are not built at all.
	assert.NotContains(t, d.Columns, "serial")
	assert.NotContains(t, d.Columns, "sparse")
}

func TestFromRowsDynamicBucket(t *testing.T) {
	t.Run("undeclared keys land in the bucket", func(t *testing.T) {
		rows := []vecwire.Row{
			{"id": int64(1), "title": "A", "vector": []float32{1, 2, 3, 4}, "category": "news"},
			{"id": int64(2), "title": "B", "vector": []float32{5, 6, 7, 8}, "category": "blog"},
		}

		d, err := FromRows(dynamicDocSchema(), rows)
		require.NoError(t, err)

		bucket := d.Columns[schema.DynamicFieldName]
		require.Len(t, bucket, 2)
		assert.Equal(t, map[string]any{"category": "news"}, bucket[0])
		assert.Equal(t, map[string]any{"category": "blog"}, bucket[1])
	})

	t.Run("no dynamic data means no bucket", func(t *testing.T) {
		rows := []vecwire.Row{
			{"id": int64(1), "title": "A", "vector": []float32{1, 2, 3, 4}},
		}
		d, err := FromRows(dynamicDocSchema(), rows)
		require.NoError(t, err)
		assert.NotContains(t, d.Columns, schema.DynamicFieldName)
	})

	t.Run("dynamic-flagged fields route to the bucket", func(t *testing.T) {
		sch := docSchema()
		sch.Fields = append(sch.Fields, &schema.Field{
			Name:      "tags",
			DataType:  schema.DataTypeJSON,
			IsDynamic: true,
		})

		rows := []vecwire.Row{
			{"id": int64(1), "title": "A", "vector": []float32{1, 2, 3, 4}, "tags": []any{"x"}},
		}
		d, err := FromRows(sch, rows)
		require.NoError(t, err)

		assert.NotContains(t, d.Columns, "tags")
		bucket := d.Columns[schema.DynamicFieldName]
		require.Len(t, bucket, 1)
		assert.Equal(t, map[string]any{"tags": []any{"x"}}, bucket[0])
	})

	t.Run("undeclared keys dropped without dynamic storage", func(t *testing.T) {
		rows := []vecwire.Row{
			{"id": int64(1), "title": "A", "vector": []float32{1, 2, 3, 4}, "extra": true},
		}
		d, err := FromRows(docSchema(), rows)
		require.NoError(t, err)
		assert.NotContains(t, d.Columns, schema.DynamicFieldName)
		assert.NotContains(t, d.Columns, "extra")
	})
}

func TestFromColumns(t *testing.T) {
	sch := docSchema()
	d, err := FromColumns(sch, map[string][]any{
		"id":     {int64(1), int64(2), int64(3)},
		"title":  {"A", "B", "C"},
		"vector": {[]float32{1, 2, 3, 4}, []float32{5, 6, 7, 8}, []float32{9, 10, 11, 12}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, d.RowCount)
	assert.Len(t, d.Columns, 3)
}

func TestFromColumnsLengthMismatch(t *testing.T) {
	sch := docSchema()
	_, err := FromColumns(sch, map[string][]any{
		"id":   {int64(1), int64(2), int64(3)},
		"name": {"A", "B"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, vecwire.ErrInvalid)
	assert.Contains(t, err.Error(), "same length")
}

func TestFromColumnsEmpty(t *testing.T) {
	sch := &schema.CollectionSchema{
		Fields: []*schema.Field{
			{Name: "id", DataType: schema.DataTypeInt64, PrimaryKey: true, AutoID: true},
		},
	}
	d, err := FromColumns(sch, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, d.RowCount)
}

func TestFromColumnsMissingRequired(t *testing.T) {
	_, err := FromColumns(docSchema(), map[string][]any{
		"id": {int64(1)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required fields")
}

func TestFromColumnsDynamicPartition(t *testing.T) {
	sch := dynamicDocSchema()
	d, err := FromColumns(sch, map[string][]any{
		"id":       {int64(1), int64(2)},
		"title":    {"A", "B"},
		"vector":   {[]float32{1, 2, 3, 4}, []float32{5, 6, 7, 8}},
		"category": {"news", "blog"},
	})
	require.NoError(t, err)

	assert.NotContains(t, d.Columns, "category")
	bucket := d.Columns[schema.DynamicFieldName]
	require.Len(t, bucket, 2)
	assert.Equal(t, map[string]any{"category": "news"}, bucket[0])
	assert.Equal(t, map[string]any{"category": "blog"}, bucket[1])
}
