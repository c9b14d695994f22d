// Package fixed implements the 24.8 signed fixed-point scalar used by the
// Wayland wire protocol.
package fixed

import "fmt"

// Fixed is a signed decimal type offering a sign bit, 23 bits of integer
// precision and 8 bits of fractional precision. It wraps a wire-format
// int32 directly; the zero value is 0.0.
type Fixed int32

const (
	shift = 8
	mul   = 1 << shift
)

// Zero, One and Two are convenience constants.
const (
	Zero Fixed = 0
	One  Fixed = 1 * mul
	Two  Fixed = 2 * mul
)

// MaxFixed and MinFixed are the largest and smallest representable values.
const (
	MaxFixed Fixed = 1<<31 - 1
	MinFixed Fixed = -1 << 31
)

// Epsilon is the smallest positive Fixed; NegativeEpsilon is the largest
// negative one.
const (
	Epsilon         Fixed = 1
	NegativeEpsilon Fixed = -1
)

// FromWire creates a Fixed from the raw bits carried on the wire.
func FromWire(v int32) Fixed { return Fixed(v) }

// ToWire returns the raw bits to place on the wire.
func (f Fixed) ToWire() int32 { return int32(f) }

// ToFloat64 converts f to a float64. This conversion is lossless.
func (f Fixed) ToFloat64() float64 { return float64(f) / mul }

// ToFloat32Lossy converts f to a float32. Lossy if f has more than 24
// significant bits.
func (f Fixed) ToFloat32Lossy() float32 { return float32(f.ToFloat64()) }

// FromFloat64Lossy creates a Fixed from a float64.
//
// Values are rounded towards 0. NaN returns Zero. Values outside the
// representable range saturate to MinFixed/MaxFixed.
func FromFloat64Lossy(v float64) Fixed {
	if v != v { // NaN
		return Zero
	}
	scaled := v * mul
	if scaled >= float64(MaxFixed) {
		return MaxFixed
	}
	if scaled <= float64(MinFixed) {
		return MinFixed
	}
	return Fixed(int32(scaled))
}

// FromFloat32Lossy creates a Fixed from a float32 with the same behavior as
// FromFloat64Lossy.
func FromFloat32Lossy(v float32) Fixed {
	return FromFloat64Lossy(float64(v))
}

// FromInt32Saturating creates a Fixed from an int32, clamping to
// MinFixed/MaxFixed if it does not fit.
func FromInt32Saturating(v int32) Fixed {
	return FromInt64Saturating(int64(v))
}

// FromInt64Saturating creates a Fixed from an int64, clamping to
// MinFixed/MaxFixed if it does not fit.
func FromInt64Saturating(v int64) Fixed {
	scaled := v * mul
	// Overflow check: multiplying by mul (a small power of two) can wrap in
	// int64 only for values far outside the representable i32.8 range, but
	// guard explicitly rather than relying on that not mattering.
	if v > int64(MaxFixed)/mul {
		return MaxFixed
	}
	if v < int64(MinFixed)/mul {
		return MinFixed
	}
	if scaled > int64(MaxFixed) {
		return MaxFixed
	}
	if scaled < int64(MinFixed) {
		return MinFixed
	}
	return Fixed(int32(scaled))
}

// ToInt32RoundTowardsNearest converts f to an int32, rounding to the
// nearest integer, half-way away from zero.
func (f Fixed) ToInt32RoundTowardsNearest() int32 {
	v := int64(f)
	if v >= 0 {
		return int32((v + mul/2) / mul)
	}
	return int32((v - mul/2) / mul)
}

// ToInt32RoundTowardsZero converts f to an int32, truncating towards zero.
func (f Fixed) ToInt32RoundTowardsZero() int32 {
	return int32(int64(f) / mul)
}

// ToInt32Floor converts f to an int32, rounding towards negative infinity.
func (f Fixed) ToInt32Floor() int32 {
	return int32(f) >> shift
}

// ToInt32Ceil converts f to an int32, rounding towards positive infinity.
func (f Fixed) ToInt32Ceil() int32 {
	return int32((int64(f) + mul - 1) >> shift)
}

// Add, Sub and Rem use native int32 overflow semantics (wrap on overflow),
// matching Go's own integer arithmetic.
func (f Fixed) Add(g Fixed) Fixed { return f + g }
func (f Fixed) Sub(g Fixed) Fixed { return f - g }
func (f Fixed) Rem(g Fixed) Fixed { return f % g }

// Mul always wraps: (a*b)>>8 computed in a 64-bit temporary, truncated to 32 bits.
func (f Fixed) Mul(g Fixed) Fixed {
	return Fixed(int32((int64(f) * int64(g)) >> shift))
}

// Div always wraps: (a<<8)/b computed in a 64-bit temporary, truncated to 32 bits.
func (f Fixed) Div(g Fixed) Fixed {
	return Fixed(int32((int64(f) << shift) / int64(g)))
}

func (f Fixed) And(g Fixed) Fixed { return f & g }
func (f Fixed) Or(g Fixed) Fixed  { return f | g }
func (f Fixed) Xor(g Fixed) Fixed { return f ^ g }
func (f Fixed) Neg() Fixed        { return -f }
func (f Fixed) Not() Fixed        { return ^f }

func (f Fixed) String() string {
	return fmt.Sprintf("%v", f.ToFloat64())
}
