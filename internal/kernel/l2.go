// Package kernel implements the distance primitive the rest of the
// search engine is built on: squared Euclidean distance between two
// equal-length float32 vectors.
package kernel

// Lanes is the fixed SIMD lane width the kernel is shaped around. D must
// be a multiple of Lanes; diskformat.LoadPayload enforces this when it
// loads the payload file.
const Lanes = 8

// L2Squared returns the squared Euclidean distance between a and b.
// Both slices must have equal length, a multiple of Lanes; a mis-sized
// input is a programmer error and is not validated here.
func L2Squared(a, b []float32) float32 {
	var s0, s1, s2, s3, s4, s5, s6, s7 float32

	n := len(a)
	i := 0
	for ; i+Lanes <= n; i += Lanes {
		d0 := a[i+0] - b[i+0]
		d1 := a[i+1] - b[i+1]
		d2 := a[i+2] - b[i+2]
		d3 := a[i+3] - b[i+3]
		d4 := a[i+4] - b[i+4]
		d5 := a[i+5] - b[i+5]
		d6 := a[i+6] - b[i+6]
		d7 := a[i+7] - b[i+7]

		s0 += d0 * d0
		s1 += d1 * d1
		s2 += d2 * d2
		s3 += d3 * d3
		s4 += d4 * d4
		s5 += d5 * d5
		s6 += d6 * d6
		s7 += d7 * d7
	}

	sum := s0 + s1 + s2 + s3 + s4 + s5 + s6 + s7

	for ; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}

	return sum
}
