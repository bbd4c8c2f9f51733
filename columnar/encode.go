package columnar

import (
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vecwire/codec"
	"github.com/hupe1980/vecwire/schema"
	"github.com/hupe1980/vecwire/wire"
)

// Fields encodes the column set into wire-format field entries, one per
// schema field present in the data (auto-generated fields are skipped).
// The dynamic bucket, when present, is appended after the regular fields.
//
// Columns are independent, so they are encoded concurrently; the result
// keeps schema order. Row order within each column is preserved.
func (d *Data) Fields() ([]*wire.FieldData, error) {
	type slot struct {
		f   *schema.Field
		col []any
	}
	var slots []slot
	for _, f := range d.sch.Fields {
		col, ok := d.Columns[f.Name]
		if !ok || f.AutoID {
			continue
		}
		slots = append(slots, slot{f: f, col: col})
	}

	results := make([]*wire.FieldData, len(slots))
	var g errgroup.Group
	for i, s := range slots {
		i, s := i, s
		g.Go(func() error {
			fd, err := codec.EncodeColumn(s.f, s.col)
			if err != nil {
				return err
			}
			results[i] = fd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if bucket, ok := d.Columns[schema.DynamicFieldName]; ok {
		fd, err := codec.EncodeDynamicColumn(bucket)
		if err != nil {
			return nil, err
		}
		results = append(results, fd)
	}

	d.logger.Debug("encoded columnar batch",
		"fields", len(results),
		"rows", d.RowCount,
	)
	return results, nil
}
