package codec

import "math"

// The wire carries two distinct 16-bit float layouts and they are not
// interchangeable:
//
//   - Float16 is the sign/5-exponent/10-mantissa layout. Encoding rebias
//     the exponent (127 → 15), rounds the mantissa to nearest-even, clamps
//     exponent overflow to ±Inf and flushes underflow to zero.
//   - BFloat16 is the upper half of the float32 representation
//     (sign/8-exponent/7-mantissa). Encoding truncates the low 16 bits; it
//     is not a rounding conversion.
//
// Using the wrong conversion for either layout silently corrupts
// embeddings, so the asymmetry is deliberate and load-bearing.

// Float16FromFloat32 converts a float32 to the 16-bit half layout.
func Float16FromFloat32(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & 0x8000
	exp := int32(bits>>23) & 0xff
	man := bits & 0x7fffff

	if exp == 0xff {
		if man != 0 {
			return sign | 0x7e00 // NaN
		}
		return sign | 0x7c00 // Inf
	}

	e := exp - 127 + 15
	if e >= 0x1f {
		return sign | 0x7c00 // overflow clamps to Inf
	}
	if e <= 0 {
		return sign // underflow flushes to zero
	}

	h := uint32(e)<<10 | man>>13

	// Round to nearest, ties to even, on the 13 dropped mantissa bits.
	// A mantissa carry ripples into the exponent; reaching 0x7c00 that way
	// is exactly the Inf clamp.
	rem := man & 0x1fff
	if rem > 0x1000 || (rem == 0x1000 && h&1 == 1) {
		h++
	}
	return sign | uint16(h)
}

// Float16ToFloat32 converts a 16-bit half value back to float32.
func Float16ToFloat32(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	exp := uint32(h>>10) & 0x1f
	man := uint32(h & 0x3ff)

	switch exp {
	case 0:
		if man == 0 {
			return math.Float32frombits(sign) // ±0
		}
		// Subnormal: normalize the fraction. Half subnormals carry an
		// exponent of -14 and no implicit leading 1; this encoder never
		// emits them, but other writers may.
		e := int32(-14)
		m := man
		for m&0x400 == 0 {
			m <<= 1
			e--
		}
		m &= 0x3ff // strip the leading 1 made explicit by the shift
		return math.Float32frombits(sign | uint32(e+127)<<23 | m<<13)
	case 0x1f:
		if man == 0 {
			return math.Float32frombits(sign | 0x7f800000) // ±Inf
		}
		return math.Float32frombits(sign | 0x7fc00000 | man<<13) // NaN
	default:
		return math.Float32frombits(sign | (exp-15+127)<<23 | man<<13)
	}
}

// BFloat16FromFloat32 converts a float32 to bfloat16 by truncating the low
// 16 bits of its representation.
func BFloat16FromFloat32(f float32) uint16 {
	return uint16(math.Float32bits(f) >> 16)
}

// BFloat16ToFloat32 converts a bfloat16 value back to float32 by
// zero-extending into the low 16 bits.
func BFloat16ToFloat32(b uint16) float32 {
	return math.Float32frombits(uint32(b) << 16)
}
