// Package cluster provides the unsupervised grouping strategies used by
// the semantic pattern detector. Both strategies are deterministic for a
// fixed input so pipeline runs stay idempotent.
package cluster

import "math"

// Standardize z-scores each dimension across the vector set. Dimensions
// with zero or negligible variance are left at zero. The input is not
// modified.
func Standardize(vectors [][]float64) [][]float64 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])

	means := make([]float64, dim)
	for _, v := range vectors {
		for i := 0; i < dim && i < len(v); i++ {
			means[i] += v[i]
		}
	}
	for i := range means {
		means[i] /= float64(len(vectors))
	}

	stddevs := make([]float64, dim)
	for _, v := range vectors {
		for i := 0; i < dim && i < len(v); i++ {
			d := v[i] - means[i]
			stddevs[i] += d * d
		}
	}
	for i := range stddevs {
		stddevs[i] = math.Sqrt(stddevs[i] / float64(len(vectors)))
		// Spread at floating-point noise level is jitter, not signal;
		// scaling it to unit variance would scatter a tight corpus.
		if stddevs[i] <= 1e-6*math.Max(1, math.Abs(means[i])) {
			stddevs[i] = 0
		}
	}

	out := make([][]float64, len(vectors))
	for j, v := range vectors {
		row := make([]float64, dim)
		for i := 0; i < dim && i < len(v); i++ {
			if stddevs[i] > 0 {
				row[i] = (v[i] - means[i]) / stddevs[i]
			}
		}
		out[j] = row
	}
	return out
}

// euclidean returns the L2 distance between two equal-length vectors.
func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
