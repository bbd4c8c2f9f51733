// Package codec encodes and decodes single columns between application
// values and the wire's columnar field formats.
//
// Scalar, vector and struct-array columns each have a dedicated
// encoder/decoder; EncodeColumn and DecodeColumn dispatch on the field
// descriptor. All functions are pure: no shared state, no I/O, safe for
// concurrent use on distinct inputs.
package codec

import "fmt"

// JSONCodec marshals individual JSON scalar elements and dynamic-bucket
// rows. Implementations must be safe for concurrent use.
type JSONCodec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in JSON codec by its stable name.
func ByName(name string) (JSONCodec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for internal tests/benchmarks.
func MustMarshal(c JSONCodec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
