// SPDX-License-Identifier: MIT
// Package bitint provides the power-of-2 helpers used for FFT and buffer
// sizing. All operations are constant time and allocation free.
package bitint

import "math/bits"

// IsPowerOfTwo reports whether n is a positive power of 2. Powers of 2 have
// exactly one bit set, so n&(n-1) clears to zero only for them.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// NextPowerOfTwo returns the smallest power of 2 >= n. Exact powers of 2
// are returned unchanged; the n-1 keeps them from doubling. Non-positive
// input returns 1.
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	return 1 << bits.Len64(uint64(n-1))
}
