package cluster

// KMeans is a partition-based clusterer with deterministic seeding:
// initial centroids are the points at evenly spaced indices, so repeated
// runs over the same input produce the same partition.
type KMeans struct {
	k             int
	maxIterations int
}

// NewKMeans creates a partition-based clusterer with k clusters.
func NewKMeans(k int) *KMeans {
	return &KMeans{k: k, maxIterations: 50}
}

// Cluster partitions vector indices into at most k groups. Inputs with
// fewer than k points yield one singleton group per point.
func (km *KMeans) Cluster(vectors [][]float64) [][]int {
	n := len(vectors)
	if n == 0 {
		return nil
	}
	k := km.k
	if k > n {
		k = n
	}
	if k < 1 {
		return nil
	}
	dim := len(vectors[0])

	// Evenly spaced seeding keeps the algorithm deterministic
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		src := vectors[i*n/k]
		centroids[i] = append([]float64(nil), src...)
	}

	assignments := make([]int, n)
	for iter := 0; iter < km.maxIterations; iter++ {
		changed := false
		for p, v := range vectors {
			best, bestDist := 0, euclidean(v, centroids[0])
			for c := 1; c < k; c++ {
				if d := euclidean(v, centroids[c]); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assignments[p] != best {
				assignments[p] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// Recompute centroids
		counts := make([]int, k)
		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for p, v := range vectors {
			c := assignments[p]
			counts[c]++
			for i := 0; i < dim && i < len(v); i++ {
				sums[c][i] += v[i]
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for i := 0; i < dim; i++ {
				centroids[c][i] = sums[c][i] / float64(counts[c])
			}
		}
	}

	groups := make([][]int, k)
	for p, c := range assignments {
		groups[c] = append(groups[c], p)
	}

	var result [][]int
	for _, g := range groups {
		if len(g) > 0 {
			result = append(result, g)
		}
	}
	return result
}
