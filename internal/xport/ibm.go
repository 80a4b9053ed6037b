package xport

import (
	"encoding/binary"
	"math"
)

// XPORT numerics are IBM System/360 doubles: 1 sign bit, a 7-bit
// base-16 exponent biased by 64, and a 56-bit fraction in [1/16, 1).

// ibmToFloat converts an 8-byte IBM double to IEEE 754. SAS missing
// values ('.', '_', 'A'..'Z' in the first byte, zeros after) map to NaN.
func ibmToFloat(b []byte) float64 {
	u := binary.BigEndian.Uint64(b)
	if u == 0 {
		return 0
	}

	if isMissing(b) {
		return math.NaN()
	}

	frac := u & 0x00ffffffffffffff
	exp := int(b[0]&0x7f) - 64

	v := math.Ldexp(float64(frac), 4*exp-56)
	if b[0]&0x80 != 0 {
		v = -v
	}

	return v
}

func isMissing(b []byte) bool {
	c := b[0]
	if c != '.' && c != '_' && (c < 'A' || c > 'Z') {
		return false
	}

	for _, rest := range b[1:] {
		if rest != 0 {
			return false
		}
	}

	return true
}

// floatToIBM converts an IEEE 754 double to the 8-byte IBM layout. NaN
// encodes as the standard '.' missing value. The IBM fraction carries 56
// bits, so every finite IEEE double in the representable exponent range
// round-trips exactly.
func floatToIBM(v float64) [8]byte {
	var out [8]byte

	if v == 0 {
		return out
	}

	if math.IsNaN(v) {
		out[0] = '.'
		return out
	}

	neg := math.Signbit(v)

	f, e := math.Frexp(math.Abs(v)) // |v| = f * 2^e, f in [0.5, 1)

	exp16 := e / 4
	if e%4 != 0 && e > 0 {
		exp16++
	}

	m := math.Ldexp(f, e-4*exp16) // in [1/16, 1)

	biased := exp16 + 64
	switch {
	case biased < 0:
		return out // underflow to zero
	case biased > 0x7f:
		biased = 0x7f // clamp on overflow
		m = 1 - 0x1p-56
	}

	u := uint64(biased)<<56 | uint64(math.Ldexp(m, 56))
	binary.BigEndian.PutUint64(out[:], u)

	if neg {
		out[0] |= 0x80
	}

	return out
}
