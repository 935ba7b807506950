package wheel

import (
	"fmt"
	"math"
)

const (
	// FullTurn is one revolution in degrees.
	FullTurn = 360.0
	// PointerAngle is where the fixed pointer sits: the top of the wheel, with
	// 0 on the positive x axis and angles growing clockwise.
	PointerAngle = -90.0
)

// Slice is the angular sector of one prize, in wheel coordinates before any
// rotation is applied.
type Slice struct {
	Index int
	Start float64
	End   float64
	Mid   float64
}

// Normalize maps deg into [0, 360).
func Normalize(deg float64) float64 {
	n := math.Mod(deg, FullTurn)
	if n < 0 {
		n += FullTurn
	}
	if n >= FullTurn {
		n = 0
	}
	return n
}

// SliceWidth is the size of every slice on a wheel of n prizes. Slices are
// uniform regardless of prize weight.
func SliceWidth(n int) float64 {
	mustCount(n)
	return FullTurn / float64(n)
}

// Slices lays out n slices clockwise, slice 0 starting at the pointer.
func Slices(n int) []Slice {
	w := SliceWidth(n)
	out := make([]Slice, n)
	for i := range out {
		start := PointerAngle + float64(i)*w
		out[i] = Slice{Index: i, Start: start, End: start + w, Mid: start + w/2}
	}
	return out
}

// AngleForIndex returns the normalized rotation that brings the midpoint of
// slice index under the pointer.
func AngleForIndex(index, n int) float64 {
	mustIndex(index, n)
	w := FullTurn / float64(n)
	mid := PointerAngle + float64(index)*w + w/2
	return Normalize(PointerAngle - mid)
}

// IndexForAngle returns the slice under the pointer once the wheel has been
// rotated by angle. The result is clamped into [0, n-1].
func IndexForAngle(angle float64, n int) int {
	mustCount(n)
	w := FullTurn / float64(n)
	// Wheel-frame angle that ended up under the pointer.
	alpha := Normalize(PointerAngle - Normalize(angle))
	idx := int(math.Floor(Normalize(alpha-PointerAngle) / w))
	return max(0, min(n-1, idx))
}

// PlanSpin returns the smallest rotation >= previous + minTurns full turns
// that settles with slice index under the pointer.
func PlanSpin(previous float64, index, n, minTurns int) float64 {
	mustIndex(index, n)
	if minTurns < 0 {
		panic(fmt.Sprintf("wheel: negative minimum turns %d", minTurns))
	}
	base := previous + float64(minTurns)*FullTurn
	delta := Normalize(AngleForIndex(index, n) - Normalize(base))
	return base + delta
}

func mustCount(n int) {
	if n <= 0 {
		panic(fmt.Sprintf("wheel: prize count must be positive, got %d", n))
	}
}

func mustIndex(index, n int) {
	mustCount(n)
	if index < 0 || index >= n {
		panic(fmt.Sprintf("wheel: index %d out of range [0,%d)", index, n))
	}
}
