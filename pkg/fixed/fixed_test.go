package fixed

import (
	"math"
	"testing"
)

func TestFromFloat64LossyRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   float64
	}{
		{"zero", 0},
		{"one", 1},
		{"negative", -12.5},
		{"fraction", 0.00390625}, // 1/256
		{"large", 1 << 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FromFloat64Lossy(tt.in)
			got := f.ToFloat64()
			if diff := math.Abs(got - tt.in); diff > 1.0/256 {
				t.Errorf("FromFloat64Lossy(%v).ToFloat64() = %v, diff %v > 1/256", tt.in, got, diff)
			}
		})
	}
}

func TestFromFloat64LossyNaN(t *testing.T) {
	if got := FromFloat64Lossy(math.NaN()); got != Zero {
		t.Errorf("FromFloat64Lossy(NaN) = %v, want Zero", got)
	}
}

func TestFromFloat64LossySaturates(t *testing.T) {
	if got := FromFloat64Lossy(1e20); got != MaxFixed {
		t.Errorf("FromFloat64Lossy(1e20) = %v, want MaxFixed", got)
	}
	if got := FromFloat64Lossy(-1e20); got != MinFixed {
		t.Errorf("FromFloat64Lossy(-1e20) = %v, want MinFixed", got)
	}
}

func TestFromInt32SaturatingRoundTrip(t *testing.T) {
	tests := []int32{0, 1, -1, 100, -100, 1 << 20, -(1 << 20)}
	for _, n := range tests {
		f := FromInt32Saturating(n)
		if got := f.ToInt32RoundTowardsNearest(); got != n {
			t.Errorf("ToInt32RoundTowardsNearest(FromInt32Saturating(%d)) = %d, want %d", n, got, n)
		}
	}
}

func TestFromInt32SaturatingClamps(t *testing.T) {
	if got := FromInt32Saturating(math.MaxInt32); got != MaxFixed {
		t.Errorf("FromInt32Saturating(MaxInt32) = %v, want MaxFixed", got)
	}
	if got := FromInt32Saturating(math.MinInt32); got != MinFixed {
		t.Errorf("FromInt32Saturating(MinInt32) = %v, want MinFixed", got)
	}
}

func TestRoundingModes(t *testing.T) {
	half := Fixed(mul/2 + 1*mul) // 1.5
	if got := half.ToInt32RoundTowardsNearest(); got != 2 {
		t.Errorf("1.5 round-nearest = %d, want 2", got)
	}
	negHalf := Fixed(-(mul/2 + 1*mul)) // -1.5
	if got := negHalf.ToInt32RoundTowardsNearest(); got != -2 {
		t.Errorf("-1.5 round-nearest = %d, want -2", got)
	}

	threeQuarters := Fixed(mul + mul*3/4) // 1.75
	if got := threeQuarters.ToInt32RoundTowardsZero(); got != 1 {
		t.Errorf("1.75 round-towards-zero = %d, want 1", got)
	}
	if got := threeQuarters.ToInt32Floor(); got != 1 {
		t.Errorf("1.75 floor = %d, want 1", got)
	}
	if got := threeQuarters.ToInt32Ceil(); got != 2 {
		t.Errorf("1.75 ceil = %d, want 2", got)
	}

	negThreeQuarters := Fixed(-(mul + mul*3/4)) // -1.75
	if got := negThreeQuarters.ToInt32Floor(); got != -2 {
		t.Errorf("-1.75 floor = %d, want -2", got)
	}
	if got := negThreeQuarters.ToInt32Ceil(); got != -1 {
		t.Errorf("-1.75 ceil = %d, want -1", got)
	}
}

func TestMulAlwaysWraps(t *testing.T) {
	a := MaxFixed
	b := Fixed(2 * mul) // 2.0
	// (MaxFixed * 2.0) overflows int32 once rescaled; must wrap, not panic.
	_ = a.Mul(b)
}

func TestDivByFraction(t *testing.T) {
	// 1.0 / 0.5 == 2.0
	one := One
	half := Fixed(mul / 2)
	got := one.Div(half)
	if got != Two {
		t.Errorf("1.0 / 0.5 = %v, want 2.0", got.ToFloat64())
	}
}

func TestMulBasic(t *testing.T) {
	// 2.0 * 3.0 == 6.0
	two := Two
	three := Fixed(3 * mul)
	got := two.Mul(three)
	want := Fixed(6 * mul)
	if got != want {
		t.Errorf("2.0 * 3.0 = %v, want %v", got.ToFloat64(), want.ToFloat64())
	}
}
