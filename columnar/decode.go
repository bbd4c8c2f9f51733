package columnar

import (
	"fmt"

	"github.com/hupe1980/vecwire"
	"github.com/hupe1980/vecwire/codec"
	"github.com/hupe1980/vecwire/schema"
	"github.com/hupe1980/vecwire/wire"
)

// ToRows runs the encode pipeline in reverse: each wire field decodes to
// its column, validity masks re-expand to nil holes, dynamic-bucket
// objects merge back into their rows, and the columns transpose into
// row-oriented maps.
//
// Declared fields win over dynamic keys on a name clash.
func ToRows(sch *schema.CollectionSchema, fields []*wire.FieldData, opts ...Option) ([]vecwire.Row, error) {
	o := applyOptions(opts)

	rowCount := 0
	for _, fd := range fields {
		if n := fd.RowCount(); n > rowCount {
			rowCount = n
		}
	}

	rows := make([]vecwire.Row, rowCount)
	for i := range rows {
		rows[i] = make(vecwire.Row)
	}

	for _, fd := range fields {
		if !isDynamic(fd) {
			continue
		}
		maps, err := codec.DecodeDynamicColumn(fd)
		if err != nil {
			return nil, err
		}
		if len(maps) != rowCount {
			return nil, fmt.Errorf("%w: dynamic field %q has %d rows, expected %d", vecwire.ErrMalformedWire, fd.FieldName, len(maps), rowCount)
		}
		for i, m := range maps {
			for k, v := range m {
				rows[i][k] = v
			}
		}
	}

	for _, fd := range fields {
		if isDynamic(fd) {
			continue
		}
		f := sch.Field(fd.FieldName)
		if f == nil {
			o.logger.Debug("decoding undeclared wire field", "field", fd.FieldName)
		}
		vals, err := codec.DecodeColumn(f, fd)
		if err != nil {
			return nil, err
		}
		if len(fd.ValidData) > 0 {
			vals, err = expandMask(fd.FieldName, vals, fd.ValidData)
			if err != nil {
				return nil, err
			}
		}
		if len(vals) != rowCount {
			return nil, fmt.Errorf("%w: field %q has %d rows, expected %d", vecwire.ErrMalformedWire, fd.FieldName, len(vals), rowCount)
		}
		for i, v := range vals {
			rows[i][fd.FieldName] = v
		}
	}

	return rows, nil
}

func isDynamic(fd *wire.FieldData) bool {
	return fd.IsDynamic || fd.FieldName == schema.DynamicFieldName
}

// expandMask re-expands a compacted value list against its validity mask:
// masked-out rows become nil in original row order.
func expandMask(name string, compacted []any, mask []bool) ([]any, error) {
	valid := 0
	for _, ok := range mask {
		if ok {
			valid++
		}
	}
	if valid != len(compacted) {
		return nil, fmt.Errorf("%w: field %q: validity mask marks %d values, payload has %d", vecwire.ErrMalformedWire, name, valid, len(compacted))
	}

	out := make([]any, len(mask))
	next := 0
	for i, ok := range mask {
		if !ok {
			continue
		}
		out[i] = compacted[next]
		next++
	}
	return out, nil
}
