package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoGroups builds two tight groups far apart plus one outlier.
func twoGroups() [][]float64 {
	return [][]float64{
		{0.0, 0.0, 0.0},   // group A
		{0.1, 0.0, 0.1},   // group A
		{0.0, 0.1, 0.0},   // group A
		{5.0, 5.0, 5.0},   // group B
		{5.1, 5.0, 4.9},   // group B
		{5.0, 4.9, 5.1},   // group B
		{20.0, -20.0, 20}, // outlier
	}
}

func TestDBSCANSeparatesDenseGroups(t *testing.T) {
	d := NewDBSCAN(DefaultEps, 3)

	clusters := d.Cluster(twoGroups())

	require.Len(t, clusters, 2)
	assert.ElementsMatch(t, []int{0, 1, 2}, clusters[0])
	assert.ElementsMatch(t, []int{3, 4, 5}, clusters[1])
}

func TestDBSCANOmitsNoise(t *testing.T) {
	d := NewDBSCAN(DefaultEps, 3)

	clusters := d.Cluster(twoGroups())

	for _, c := range clusters {
		assert.NotContains(t, c, 6, "outlier must not appear in any cluster")
	}
}

func TestDBSCANBelowMinPtsYieldsNothing(t *testing.T) {
	d := NewDBSCAN(DefaultEps, 5)

	clusters := d.Cluster([][]float64{{0, 0}, {0.1, 0}, {10, 10}})

	assert.Empty(t, clusters)
}

func TestDBSCANEmptyInput(t *testing.T) {
	d := NewDBSCAN(DefaultEps, 3)
	assert.Nil(t, d.Cluster(nil))
}

func TestDBSCANIsDeterministic(t *testing.T) {
	d := NewDBSCAN(DefaultEps, 3)
	vectors := twoGroups()

	first := d.Cluster(vectors)
	second := d.Cluster(vectors)

	assert.Equal(t, first, second)
}

func TestKMeansPartitionsEveryPoint(t *testing.T) {
	km := NewKMeans(2)
	vectors := twoGroups()

	groups := km.Cluster(vectors)

	seen := make(map[int]bool)
	for _, g := range groups {
		for _, idx := range g {
			assert.False(t, seen[idx], "index assigned twice")
			seen[idx] = true
		}
	}
	assert.Len(t, seen, len(vectors))
}

func TestKMeansIsDeterministic(t *testing.T) {
	km := NewKMeans(3)
	vectors := twoGroups()

	first := km.Cluster(vectors)
	second := km.Cluster(vectors)

	assert.Equal(t, first, second)
}

func TestKMeansFewerPointsThanK(t *testing.T) {
	km := NewKMeans(5)

	groups := km.Cluster([][]float64{{0, 0}, {1, 1}})

	assert.Len(t, groups, 2)
}

func TestStandardizeZeroMeanUnitVariance(t *testing.T) {
	vectors := [][]float64{
		{1, 100},
		{2, 200},
		{3, 300},
	}

	out := Standardize(vectors)

	require.Len(t, out, 3)
	for dim := 0; dim < 2; dim++ {
		sum := 0.0
		for _, v := range out {
			sum += v[dim]
		}
		assert.InDelta(t, 0.0, sum, 1e-9)
	}
	// Both dimensions carry the same shape after scaling.
	for _, v := range out {
		assert.InDelta(t, v[0], v[1], 1e-9)
	}
}

func TestStandardizeNearConstantDimension(t *testing.T) {
	// Jitter at floating-point noise level must collapse to zero, not be
	// inflated to unit variance.
	vectors := [][]float64{
		{1, 2, 3},
		{1.0000001, 2, 3},
		{1, 2.0000001, 3},
	}

	out := Standardize(vectors)

	for _, v := range out {
		for dim, x := range v {
			assert.Equal(t, 0.0, x, "dimension %d", dim)
		}
	}
}

func TestDBSCANClustersNearIdenticalVectors(t *testing.T) {
	d := NewDBSCAN(DefaultEps, 3)

	vectors := Standardize([][]float64{
		{1, 2, 3},
		{1.0000001, 2, 3},
		{1, 2.0000001, 3},
	})

	clusters := d.Cluster(vectors)

	require.Len(t, clusters, 1)
	assert.ElementsMatch(t, []int{0, 1, 2}, clusters[0])
}

func TestStandardizeConstantDimension(t *testing.T) {
	out := Standardize([][]float64{{5, 1}, {5, 2}, {5, 3}})

	for _, v := range out {
		assert.Equal(t, 0.0, v[0])
	}
}
