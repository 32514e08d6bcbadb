package scd30

import "errors"

// The sensor reports IEEE 754 big-endian floats. The targets this runs on
// have no FPU worth using from an interrupt-adjacent path, so readings are
// converted straight from the raw bit pattern to thousandths (milli-units)
// in integer arithmetic.

var (
	ErrNegative = errors.New("scd30: negative reading")
	ErrTooSmall = errors.New("scd30: reading underflows milli resolution")
	ErrTooBig   = errors.New("scd30: reading overflows int32 milli")
)

// FixedE3FromBits converts float32 bits to thousandths of the unit,
// rounded half up. Readings are physical quantities, so negatives and
// NaN/Inf patterns are rejected rather than propagated.
func FixedE3FromBits(bits uint32) (int32, error) {
	if bits == 0 {
		return 0, nil
	}
	if bits&0x8000_0000 != 0 {
		return 0, ErrNegative
	}
	exp := int32(bits >> 23 & 0xFF)
	frac := bits & 0x7F_FFFF
	switch exp {
	case 0:
		// Subnormal: far below one thousandth.
		return 0, ErrTooSmall
	case 0xFF:
		return 0, ErrTooBig
	}

	// value = (2^23 + frac) * 2^(exp-150); milli = value * 1000.
	v := uint64(1<<23|frac) * 1000
	shift := 150 - exp
	switch {
	case shift <= 0:
		// Even the smallest mantissa at 2^0 scale exceeds int32 milli.
		return 0, ErrTooBig
	case shift >= 64:
		return 0, ErrTooSmall
	default:
		v = (v + 1<<uint(shift-1)) >> uint(shift)
	}
	if v > 1<<31-1 {
		return 0, ErrTooBig
	}
	if v == 0 {
		return 0, ErrTooSmall
	}
	return int32(v), nil
}
