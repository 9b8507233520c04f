// Package math32 provides float32 vector kernels.
package math32

// SquaredL2 calculates the squared L2 distance between a and b.
// b must be at least as long as a.
func SquaredL2(a, b []float32) float32 {
	b = b[:len(a)]

	var s0, s1, s2, s3 float32
	i := 0
	for ; i+4 <= len(a); i += 4 {
		d0 := a[i] - b[i]
		d1 := a[i+1] - b[i+1]
		d2 := a[i+2] - b[i+2]
		d3 := a[i+3] - b[i+3]
		s0 += d0 * d0
		s1 += d1 * d1
		s2 += d2 * d2
		s3 += d3 * d3
	}
	for ; i < len(a); i++ {
		d := a[i] - b[i]
		s0 += d * d
	}

	return s0 + s1 + s2 + s3
}
