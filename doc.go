// Package vecwire is the client-side data layer for a vector database wire
// protocol.
//
// It converts between application-level row/column values and the server's
// strict columnar wire representation: row↔column transposition with schema
// validation, typed scalar columns, dense/binary/half-precision/int8/sparse
// vector encodings, nested struct-array columns and schema-less dynamic
// fields.
//
// # Quick Start
//
//	sch := &schema.CollectionSchema{
//	    Name: "docs",
//	    Fields: []*schema.Field{
//	        {Name: "id", DataType: schema.DataTypeInt64, PrimaryKey: true},
//	        {Name: "title", DataType: schema.DataTypeVarChar, MaxLength: 256},
//	        {Name: "embedding", DataType: schema.DataTypeFloatVector, Dim: 768},
//	    },
//	    EnableDynamicField: true,
//	}
//
//	data, _ := columnar.FromRows(sch, []vecwire.Row{
//	    {"id": int64(1), "title": "hello", "embedding": vec, "tag": "extra"},
//	})
//	fields, _ := data.Fields() // []*wire.FieldData, ready for the RPC layer
//
// Decoding runs the pipeline in reverse:
//
//	rows, _ := columnar.ToRows(sch, fields)
//
// The root package holds the shared value types and the error contract. The
// actual work happens in the subpackages:
//
//   - schema:   field descriptors and collection schemas
//   - wire:     wire-format message shapes (FieldData et al.)
//   - codec:    per-column encoders/decoders
//   - columnar: the row↔column transposer driving the codecs
//
// Vecwire performs no I/O and keeps no shared state: every encode/decode is
// a pure transformation over in-memory values. Transmitting the result
// belongs to the RPC layer.
package vecwire
