package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/hupe1980/vecwire"
	"github.com/hupe1980/vecwire/internal/conv"
	"github.com/hupe1980/vecwire/schema"
	"github.com/hupe1980/vecwire/wire"
)

// EncodeVectorColumn encodes one column of per-row embeddings into its
// wire field. Dense layouts flatten all rows into one contiguous
// little-endian buffer; sparse rows become per-row (index, value) record
// streams.
func EncodeVectorColumn(f *schema.Field, values []any) (*wire.FieldData, error) {
	vf, err := encodeVectors(f.Name, f.DataType, f.Dim, values)
	if err != nil {
		return nil, err
	}
	return &wire.FieldData{
		FieldName: f.Name,
		Type:      f.DataType,
		Vectors:   vf,
	}, nil
}

func encodeVectors(name string, dt schema.DataType, dim int, values []any) (*wire.VectorField, error) {
	switch dt {
	case schema.DataTypeFloatVector:
		flat := make([]float32, 0, len(values)*dim)
		for i, v := range values {
			row, err := asFloat32Slice(v)
			if err != nil {
				return nil, vecwire.NewInvalid(name, "row %d: %v", i, err)
			}
			if dim > 0 && len(row) != dim {
				return nil, vecwire.NewInvalid(name, "row %d: dimension mismatch: expected %d, got %d", i, dim, len(row))
			}
			flat = append(flat, row...)
		}
		return &wire.VectorField{Kind: wire.VectorKindFloat, Dim: int64(dim), Floats: flat}, nil

	case schema.DataTypeBinaryVector:
		buf := make([]byte, 0, len(values)*(dim+7)/8)
		for i, v := range values {
			packed, err := packBits(v, dim)
			if err != nil {
				return nil, vecwire.NewInvalid(name, "row %d: %v", i, err)
			}
			buf = append(buf, packed...)
		}
		return &wire.VectorField{Kind: wire.VectorKindBinary, Dim: int64(dim), Bytes: buf}, nil

	case schema.DataTypeFloat16Vector:
		buf, err := encodeHalfColumn(name, dim, values, Float16FromFloat32)
		if err != nil {
			return nil, err
		}
		return &wire.VectorField{Kind: wire.VectorKindFloat16, Dim: int64(dim), Bytes: buf}, nil

	case schema.DataTypeBFloat16Vector:
		buf, err := encodeHalfColumn(name, dim, values, BFloat16FromFloat32)
		if err != nil {
			return nil, err
		}
		return &wire.VectorField{Kind: wire.VectorKindBFloat16, Dim: int64(dim), Bytes: buf}, nil

	case schema.DataTypeInt8Vector:
		buf := make([]byte, 0, len(values)*dim)
		for i, v := range values {
			row, err := packInt8s(v, dim)
			if err != nil {
				return nil, vecwire.NewInvalid(name, "row %d: %v", i, err)
			}
			buf = append(buf, row...)
		}
		return &wire.VectorField{Kind: wire.VectorKindInt8, Dim: int64(dim), Bytes: buf}, nil

	case schema.DataTypeSparseFloatVector:
		rows := make([][]byte, len(values))
		maxDim := 0
		for i, v := range values {
			sv, err := asSparse(v)
			if err != nil {
				return nil, vecwire.NewInvalid(name, "row %d: %v", i, err)
			}
			if d := sv.Dim(); d > maxDim {
				maxDim = d
			}
			rows[i] = encodeSparseRow(sv)
		}
		return &wire.VectorField{Kind: wire.VectorKindSparse, Dim: int64(maxDim), Sparse: rows}, nil

	default:
		// Vector dispatch is exhaustive; reaching this is a programmer
		// error, not bad user input.
		panic("codec: encodeVectors called with non-vector type " + dt.String())
	}
}

// packBits packs a row of 0/1 values into bytes, most-significant bit
// first, zero-padding an incomplete final byte. A []byte of exactly dim/8
// bytes is treated as already packed and passed through.
func packBits(v any, dim int) ([]byte, error) {
	var bit func(i int) (bool, error)
	n := 0

	switch row := v.(type) {
	case []byte:
		if dim > 0 && len(row) == (dim+7)/8 {
			return row, nil
		}
		n = len(row)
		bit = func(i int) (bool, error) {
			switch row[i] {
			case 0:
				return false, nil
			case 1:
				return true, nil
			default:
				return false, fmt.Errorf("bit %d: expected 0 or 1, got %d", i, row[i])
			}
		}
	case []bool:
		n = len(row)
		bit = func(i int) (bool, error) { return row[i], nil }
	case []int:
		n = len(row)
		bit = func(i int) (bool, error) {
			switch row[i] {
			case 0:
				return false, nil
			case 1:
				return true, nil
			default:
				return false, fmt.Errorf("bit %d: expected 0 or 1, got %d", i, row[i])
			}
		}
	case []any:
		n = len(row)
		bit = func(i int) (bool, error) {
			switch e := row[i].(type) {
			case bool:
				return e, nil
			default:
				b, err := asInt64(row[i])
				if err != nil || (b != 0 && b != 1) {
					return false, fmt.Errorf("bit %d: expected 0 or 1, got %v", i, row[i])
				}
				return b == 1, nil
			}
		}
	default:
		return nil, fmt.Errorf("expected binary vector, got %T", v)
	}

	if dim > 0 && n != dim {
		return nil, fmt.Errorf("dimension mismatch: expected %d bits, got %d", dim, n)
	}
	packed := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		set, err := bit(i)
		if err != nil {
			return nil, err
		}
		if set {
			packed[i/8] |= 1 << (7 - i%8)
		}
	}
	return packed, nil
}

func encodeHalfColumn(name string, dim int, values []any, convert func(float32) uint16) ([]byte, error) {
	buf := make([]byte, 0, len(values)*dim*2)
	for i, v := range values {
		// Pre-encoded rows pass through unchanged.
		if raw, ok := v.([]byte); ok {
			if dim > 0 && len(raw) != dim*2 {
				return nil, vecwire.NewInvalid(name, "row %d: expected %d bytes, got %d", i, dim*2, len(raw))
			}
			buf = append(buf, raw...)
			continue
		}
		row, err := asFloat32Slice(v)
		if err != nil {
			return nil, vecwire.NewInvalid(name, "row %d: %v", i, err)
		}
		if dim > 0 && len(row) != dim {
			return nil, vecwire.NewInvalid(name, "row %d: dimension mismatch: expected %d, got %d", i, dim, len(row))
		}
		for _, f := range row {
			buf = binary.LittleEndian.AppendUint16(buf, convert(f))
		}
	}
	return buf, nil
}

// packInt8s biases signed [-128,127] elements to unsigned [0,255] bytes.
// A []byte row of exactly dim bytes is treated as pre-packed.
func packInt8s(v any, dim int) ([]byte, error) {
	switch row := v.(type) {
	case []byte:
		if dim > 0 && len(row) != dim {
			return nil, fmt.Errorf("dimension mismatch: expected %d bytes, got %d", dim, len(row))
		}
		return row, nil
	case []int8:
		if dim > 0 && len(row) != dim {
			return nil, fmt.Errorf("dimension mismatch: expected %d, got %d", dim, len(row))
		}
		out := make([]byte, len(row))
		for i, e := range row {
			out[i] = byte(int(e) + 128)
		}
		return out, nil
	case []int:
		if dim > 0 && len(row) != dim {
			return nil, fmt.Errorf("dimension mismatch: expected %d, got %d", dim, len(row))
		}
		out := make([]byte, len(row))
		for i, e := range row {
			n, err := conv.IntToInt8(e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = byte(int(n) + 128)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected int8 vector, got %T", v)
	}
}

// asSparse normalizes the accepted sparse forms to index-sorted entries.
// The caller's value is never mutated.
func asSparse(v any) (vecwire.SparseVector, error) {
	var sv vecwire.SparseVector

	switch row := v.(type) {
	case nil:
		return nil, nil
	case vecwire.SparseVector:
		sv = append(vecwire.SparseVector(nil), row...)
	case []vecwire.SparseEntry:
		sv = append(vecwire.SparseVector(nil), row...)
	case map[uint32]float32:
		sv = make(vecwire.SparseVector, 0, len(row))
		for idx, val := range row {
			sv = append(sv, vecwire.SparseEntry{Index: idx, Value: val})
		}
	case map[int]float32:
		sv = make(vecwire.SparseVector, 0, len(row))
		for idx, val := range row {
			u, err := conv.IntToUint32(idx)
			if err != nil {
				return nil, fmt.Errorf("sparse index %d: %w", idx, err)
			}
			sv = append(sv, vecwire.SparseEntry{Index: u, Value: val})
		}
	case map[int]float64:
		sv = make(vecwire.SparseVector, 0, len(row))
		for idx, val := range row {
			u, err := conv.IntToUint32(idx)
			if err != nil {
				return nil, fmt.Errorf("sparse index %d: %w", idx, err)
			}
			sv = append(sv, vecwire.SparseEntry{Index: u, Value: float32(val)})
		}
	case map[string]float64:
		// JSON-decoded form with stringified indexes.
		sv = make(vecwire.SparseVector, 0, len(row))
		for key, val := range row {
			idx, err := strconv.ParseUint(key, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("sparse index %q: %w", key, err)
			}
			sv = append(sv, vecwire.SparseEntry{Index: uint32(idx), Value: float32(val)})
		}
	default:
		return nil, fmt.Errorf("expected sparse vector, got %T", v)
	}

	sort.Slice(sv, func(i, j int) bool { return sv[i].Index < sv[j].Index })
	return sv, nil
}

// encodeSparseRow writes each (index, value) pair as a fixed 8-byte
// record: 4-byte little-endian unsigned index, 4-byte little-endian float
// bits. Entries must already be index-sorted.
func encodeSparseRow(sv vecwire.SparseVector) []byte {
	buf := make([]byte, 0, len(sv)*8)
	for _, e := range sv {
		buf = binary.LittleEndian.AppendUint32(buf, e.Index)
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(e.Value))
	}
	return buf
}

// DecodeVectorColumn decodes one vector wire field back to per-row
// embeddings. A nil or empty field decodes to an empty list.
func DecodeVectorColumn(f *schema.Field, fd *wire.FieldData) ([]any, error) {
	vf := fd.Vectors
	if vf == nil {
		return []any{}, nil
	}

	dim := int(vf.Dim)
	if dim <= 0 && f != nil {
		dim = f.Dim
	}

	switch vf.Kind {
	case wire.VectorKindFloat:
		if len(vf.Floats) == 0 {
			return []any{}, nil
		}
		if dim <= 0 || len(vf.Floats)%dim != 0 {
			// No usable dimension: hand back a single chunk.
			return []any{vf.Floats}, nil
		}
		out := make([]any, 0, len(vf.Floats)/dim)
		for off := 0; off < len(vf.Floats); off += dim {
			out = append(out, vf.Floats[off:off+dim:off+dim])
		}
		return out, nil

	case wire.VectorKindBinary:
		if len(vf.Bytes) == 0 {
			return []any{}, nil
		}
		if dim <= 0 || dim%8 != 0 {
			return nil, fmt.Errorf("%w: field %q: binary vector needs a dimension that is a multiple of 8, got %d", vecwire.ErrMalformedWire, fd.FieldName, dim)
		}
		stride := dim / 8
		if len(vf.Bytes)%stride != 0 {
			return nil, fmt.Errorf("%w: field %q: binary buffer length %d not a multiple of row size %d", vecwire.ErrMalformedWire, fd.FieldName, len(vf.Bytes), stride)
		}
		out := make([]any, 0, len(vf.Bytes)/stride)
		for off := 0; off < len(vf.Bytes); off += stride {
			out = append(out, unpackBits(vf.Bytes[off:off+stride], dim))
		}
		return out, nil

	case wire.VectorKindFloat16:
		return decodeHalfColumn(fd.FieldName, vf.Bytes, dim, Float16ToFloat32)

	case wire.VectorKindBFloat16:
		return decodeHalfColumn(fd.FieldName, vf.Bytes, dim, BFloat16ToFloat32)

	case wire.VectorKindInt8:
		if len(vf.Bytes) == 0 {
			return []any{}, nil
		}
		if dim <= 0 || len(vf.Bytes)%dim != 0 {
			return nil, fmt.Errorf("%w: field %q: int8 buffer length %d not a multiple of dimension %d", vecwire.ErrMalformedWire, fd.FieldName, len(vf.Bytes), dim)
		}
		out := make([]any, 0, len(vf.Bytes)/dim)
		for off := 0; off < len(vf.Bytes); off += dim {
			row := make([]int8, dim)
			for i, b := range vf.Bytes[off : off+dim] {
				row[i] = int8(int(b) - 128)
			}
			out = append(out, row)
		}
		return out, nil

	case wire.VectorKindSparse:
		out := make([]any, len(vf.Sparse))
		for i, raw := range vf.Sparse {
			sv, err := decodeSparseRow(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: field %q row %d: %v", vecwire.ErrMalformedWire, fd.FieldName, i, err)
			}
			out[i] = sv
		}
		return out, nil

	case wire.VectorKindArray:
		out := make([]any, len(vf.Vectors))
		for i, sub := range vf.Vectors {
			rows, err := DecodeVectorColumn(f, &wire.FieldData{
				FieldName: fd.FieldName,
				Type:      fd.Type,
				Vectors:   sub,
			})
			if err != nil {
				return nil, err
			}
			out[i] = rows
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: field %q: unknown vector kind %d", vecwire.ErrMalformedWire, fd.FieldName, vf.Kind)
	}
}

// unpackBits expands packed bytes into one 0/1 byte per bit, MSB first,
// truncated to dim.
func unpackBits(packed []byte, dim int) []byte {
	bits := make([]byte, 0, dim)
	for _, b := range packed {
		for i := 7; i >= 0; i-- {
			if len(bits) == dim {
				return bits
			}
			bits = append(bits, (b>>uint(i))&1)
		}
	}
	return bits
}

func decodeHalfColumn(name string, buf []byte, dim int, convert func(uint16) float32) ([]any, error) {
	if len(buf) == 0 {
		return []any{}, nil
	}
	stride := dim * 2
	if dim <= 0 || len(buf)%stride != 0 {
		return nil, fmt.Errorf("%w: field %q: half buffer length %d not a multiple of row size %d", vecwire.ErrMalformedWire, name, len(buf), stride)
	}
	out := make([]any, 0, len(buf)/stride)
	for off := 0; off < len(buf); off += stride {
		row := make([]float32, dim)
		for i := 0; i < dim; i++ {
			row[i] = convert(binary.LittleEndian.Uint16(buf[off+i*2:]))
		}
		out = append(out, row)
	}
	return out, nil
}

// decodeSparseRow reads 8-byte records until the buffer is exhausted. A
// trailing partial record means the producer violated the wire contract.
func decodeSparseRow(raw []byte) (vecwire.SparseVector, error) {
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("truncated sparse record: %d trailing bytes", len(raw)%8)
	}
	sv := make(vecwire.SparseVector, 0, len(raw)/8)
	for off := 0; off < len(raw); off += 8 {
		sv = append(sv, vecwire.SparseEntry{
			Index: binary.LittleEndian.Uint32(raw[off:]),
			Value: math.Float32frombits(binary.LittleEndian.Uint32(raw[off+4:])),
		})
	}
	return sv, nil
}
