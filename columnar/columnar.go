// Package columnar reshapes row-oriented input into the schema's column
// set and drives the per-column codecs to and from the wire format.
//
// All validation happens up front: a Data value is only constructed from
// consistent input, so encoding never partially succeeds. Data is
// read-only after construction.
package columnar

import (
	"io"
	"log/slog"
	"strings"

	"github.com/hupe1980/vecwire"
	"github.com/hupe1980/vecwire/schema"
)

type options struct {
	logger *slog.Logger
}

// Option configures the transposer.
type Option func(*options)

// WithLogger sets the structured logger used for non-fatal events
// (dropped undeclared columns, decode fallbacks). The default discards
// all output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Data is one validated batch in columnar form. Every column's length
// equals RowCount; only schema-declared columns and the reserved dynamic
// bucket are retained.
type Data struct {
	Columns  map[string][]any
	RowCount int

	sch    *schema.CollectionSchema
	logger *slog.Logger
}

// Schema returns the collection schema the data was validated against.
func (d *Data) Schema() *schema.CollectionSchema { return d.sch }

// FromRows builds columnar data from row-oriented input. Keys are matched
// case-sensitively against the schema; undeclared keys go to the dynamic
// bucket when dynamic storage applies and are dropped (with a warning)
// otherwise.
//
// Zero rows is valid and produces an empty column set. All rows must
// share the first row's key set, and the first row must contain every
// required field.
func FromRows(sch *schema.CollectionSchema, rows []vecwire.Row, opts ...Option) (*Data, error) {
	o := applyOptions(opts)
	d := &Data{
		Columns: make(map[string][]any),
		sch:     sch,
		logger:  o.logger,
	}
	if len(rows) == 0 {
		return d, nil
	}

	first := rows[0]
	for i := 1; i < len(rows); i++ {
		if !sameKeys(first, rows[i]) {
			return nil, vecwire.NewInvalid("rows", "rows have different fields: row %d does not match row 0", i)
		}
	}

	if missing := missingRequired(sch, func(name string) bool {
		_, ok := first[name]
		return ok
	}); len(missing) > 0 {
		return nil, vecwire.NewInvalid("rows", "missing required fields: %s", strings.Join(missing, ", "))
	}

	for _, f := range sch.InsertableFields() {
		col := make([]any, len(rows))
		for i, row := range rows {
			col[i] = row[f.Name] // absent keys default to nil
		}
		d.Columns[f.Name] = col
	}

	declared := declaredNames(sch)
	if sch.HasDynamic() {
		bucket := make([]any, len(rows))
		nonEmpty := false
		for i, row := range rows {
			m := make(map[string]any)
			for k, v := range row {
				if !declared[k] {
					m[k] = v
				}
			}
			for _, f := range sch.Fields {
				if !f.IsDynamic {
					continue
				}
				if v, ok := row[f.Name]; ok {
					m[f.Name] = v
				}
			}
			if len(m) > 0 {
				nonEmpty = true
			}
			bucket[i] = m
		}
		// A bucket with no content at all is omitted entirely.
		if nonEmpty {
			d.Columns[schema.DynamicFieldName] = bucket
		}
	} else {
		var dropped []string
		for k := range first {
			if !declared[k] {
				dropped = append(dropped, k)
			}
		}
		if len(dropped) > 0 {
			d.logger.Warn("dropping undeclared row keys; schema has no dynamic storage",
				"keys", dropped,
			)
		}
	}

	d.RowCount = len(rows)
	return d, nil
}

// FromColumns builds columnar data from column-oriented input. All
// supplied columns must share one length; empty input is valid with
// length zero.
func FromColumns(sch *schema.CollectionSchema, cols map[string][]any, opts ...Option) (*Data, error) {
	o := applyOptions(opts)
	d := &Data{
		Columns: make(map[string][]any),
		sch:     sch,
		logger:  o.logger,
	}

	length := -1
	for _, col := range cols {
		if length == -1 {
			length = len(col)
			continue
		}
		if len(col) != length {
			return nil, vecwire.NewInvalid("columns", "all columns must have the same length")
		}
	}
	if length == -1 {
		length = 0
	}

	if missing := missingRequired(sch, func(name string) bool {
		_, ok := cols[name]
		return ok
	}); len(missing) > 0 {
		return nil, vecwire.NewInvalid("columns", "missing required fields: %s", strings.Join(missing, ", "))
	}

	var otherNames []string
	for name, col := range cols {
		f := sch.Field(name)
		if f != nil && !f.IsDynamic {
			d.Columns[name] = col
			continue
		}
		otherNames = append(otherNames, name)
	}

	if sch.HasDynamic() {
		if len(otherNames) > 0 {
			bucket := make([]any, length)
			for i := range bucket {
				m := make(map[string]any, len(otherNames))
				for _, name := range otherNames {
					m[name] = cols[name][i]
				}
				bucket[i] = m
			}
			d.Columns[schema.DynamicFieldName] = bucket
		}
	} else if len(otherNames) > 0 {
		d.logger.Warn("dropping undeclared columns; schema has no dynamic storage",
			"columns", otherNames,
		)
	}

	d.RowCount = length
	return d, nil
}

func sameKeys(a, b vecwire.Row) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			return false
		}
	}
	return true
}

func missingRequired(sch *schema.CollectionSchema, has func(name string) bool) []string {
	var missing []string
	for _, f := range sch.RequiredFields() {
		if !has(f.Name) {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

func declaredNames(sch *schema.CollectionSchema) map[string]bool {
	names := make(map[string]bool, len(sch.Fields))
	for _, f := range sch.Fields {
		names[f.Name] = true
	}
	return names
}
