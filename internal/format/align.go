package format

import "math"

// Align4 returns n rounded up to the next multiple of Alignment.
// ok is false when the rounded value does not fit in a uint; callers must
// treat that as a failed request rather than use the wrapped result.
//
// Example:
//
//	Align4(1) = 4, true
//	Align4(4) = 4, true
//	Align4(5) = 8, true
//	Align4(math.MaxUint) = 0, false
func Align4(n uint) (uint, bool) {
	if n > math.MaxUint-AlignmentMask {
		return 0, false
	}
	return (n + AlignmentMask) &^ AlignmentMask, true
}

// AlignPage returns n rounded up to the next multiple of pageSize, which must
// be a power of two. ok is false on overflow.
func AlignPage(n, pageSize uint) (uint, bool) {
	mask := pageSize - 1
	if n > math.MaxUint-mask {
		return 0, false
	}
	return (n + mask) &^ mask, true
}
