/*
Package bitint provides power-of-two helpers for buffer sizing in the
real-time audio path.

Design Principles:
- Zero Allocations: stack memory only
- Predictable Performance: O(1) bit operations
- Real-Time Safe: no locks, syscalls, or blocking operations
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size. Powers of 2 map to
// themselves; zero and negative sizes map to 1. The size-1 before taking
// the bit length is what keeps exact powers of 2 from doubling.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len64(uint64(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2. Powers of 2
// have exactly one bit set, so n & (n-1) clears to zero only for them.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
