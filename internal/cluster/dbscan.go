package cluster

import "math"

// DBSCAN is a density-based clusterer. The neighborhood radius is fixed
// and expressed as per-dimension RMS distance so it is independent of the
// embedding dimension. Noise points are omitted from the output.
type DBSCAN struct {
	eps    float64
	minPts int
}

// DefaultEps is the fixed neighborhood radius used by the cluster detector.
const DefaultEps = 0.5

// NewDBSCAN creates a density-based clusterer. minPts is the minimum
// cluster size; values < 1 are raised to 1.
func NewDBSCAN(eps float64, minPts int) *DBSCAN {
	if minPts < 1 {
		minPts = 1
	}
	return &DBSCAN{eps: eps, minPts: minPts}
}

// Cluster groups vector indices by density. Deterministic: points are
// visited in index order.
func (d *DBSCAN) Cluster(vectors [][]float64) [][]int {
	n := len(vectors)
	if n == 0 {
		return nil
	}
	dim := len(vectors[0])
	scale := math.Sqrt(float64(dim))
	if scale == 0 {
		return nil
	}

	const (
		unvisited = 0
		noise     = -1
	)
	labels := make([]int, n) // 0 unvisited, -1 noise, >0 cluster id
	clusterID := 0

	neighbors := func(p int) []int {
		var result []int
		for q := 0; q < n; q++ {
			if euclidean(vectors[p], vectors[q])/scale <= d.eps {
				result = append(result, q)
			}
		}
		return result
	}

	for p := 0; p < n; p++ {
		if labels[p] != unvisited {
			continue
		}
		nbrs := neighbors(p)
		if len(nbrs) < d.minPts {
			labels[p] = noise
			continue
		}
		clusterID++
		labels[p] = clusterID

		// Expand the cluster breadth-first
		queue := append([]int(nil), nbrs...)
		for len(queue) > 0 {
			q := queue[0]
			queue = queue[1:]
			if labels[q] == noise {
				labels[q] = clusterID
			}
			if labels[q] != unvisited {
				continue
			}
			labels[q] = clusterID
			qNbrs := neighbors(q)
			if len(qNbrs) >= d.minPts {
				queue = append(queue, qNbrs...)
			}
		}
	}

	clusters := make([][]int, clusterID)
	for i, label := range labels {
		if label > 0 {
			clusters[label-1] = append(clusters[label-1], i)
		}
	}

	var result [][]int
	for _, c := range clusters {
		if len(c) >= d.minPts {
			result = append(result, c)
		}
	}
	return result
}
