// Package mathx holds integer-only helpers shared by the region and tile searches.
package mathx

import (
	"errors"
	"log/slog"
	"math/bits"
)

var (
	// ErrDomain is returned by Sqrt for negative input.
	ErrDomain = errors.New("mathx: square root of negative number")
	// ErrVerify is returned by Sqrt when the computed root fails the bound check.
	ErrVerify = errors.New("mathx: square root verification failed")
)

// SqrtFailed is the sentinel value Sqrt returns alongside an error.
const SqrtFailed int64 = -1

// Sqrt returns the largest integer whose square does not exceed n.
//
// A starting bound is picked from the bit length of n, then refined with the
// Babylonian iteration x' = (n/x + x) / 2 until it stops decreasing.
// Negative input logs and returns (SqrtFailed, ErrDomain).
func Sqrt(n int64) (int64, error) {
	if n <= 0 {
		if n != 0 {
			slog.Error("domain error in integer sqrt", "n", n)
			return SqrtFailed, ErrDomain
		}
		return 0, nil
	}

	// x >= sqrt(n): smallest even power 2^i with n <= 2^i gives x = 2^(i/2).
	const nbits = 63
	var x int64
	for i, test := 4, int64(16); ; i, test = i+2, test<<2 {
		if i >= nbits || n <= test {
			x = 1 << (i / 2)
			break
		}
	}

	for {
		next := (n/x + x) / 2
		if x <= next {
			break
		}
		x = next
	}

	if !verify(x, n) {
		slog.Error("integer sqrt verification failed", "n", n, "root", x)
		return SqrtFailed, ErrVerify
	}
	return x, nil
}

// verify checks x*x <= n < (x+1)*(x+1) using 128-bit products.
func verify(x, n int64) bool {
	hi, lo := bits.Mul64(uint64(x), uint64(x))
	if hi != 0 || lo > uint64(n) {
		return false
	}
	hi, lo = bits.Mul64(uint64(x+1), uint64(x+1))
	return hi != 0 || lo > uint64(n)
}
