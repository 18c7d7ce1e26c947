// Package cluster implements density-based clustering over embedding vectors.
package cluster

import (
	"errors"

	"gonum.org/v1/gonum/floats"
)

// Noise is the label of points that belong to no cluster.
const Noise = -1

// Result holds one label per input point (Noise or a cluster id counted from
// zero) and whether each point is a core point.
type Result struct {
	Labels []int
	Core   []bool
}

// Clusters groups point indices by label, skipping noise. Clusters are
// ordered by id and members by index.
func (r Result) Clusters() [][]int {
	n := 0
	for _, l := range r.Labels {
		if l+1 > n {
			n = l + 1
		}
	}
	out := make([][]int, n)
	for i, l := range r.Labels {
		if l == Noise {
			continue
		}
		out[l] = append(out[l], i)
	}
	return out
}

// CosineDistance returns 1 - cos(a, b). Zero vectors are at distance 1
// from everything.
func CosineDistance(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - floats.Dot(a, b)/(na*nb)
}

// DBSCAN clusters points with the cosine metric. A point is core when at
// least minSamples points (itself included) lie within eps of it. Points
// are visited in index order, so labelling is deterministic.
func DBSCAN(points [][]float64, eps float64, minSamples int) (Result, error) {
	if eps <= 0 {
		return Result{}, errors.New("eps must be positive")
	}
	if minSamples < 1 {
		return Result{}, errors.New("minSamples must be at least 1")
	}
	for i := 1; i < len(points); i++ {
		if len(points[i]) != len(points[0]) {
			return Result{}, errors.New("points have mismatched dimensions")
		}
	}

	n := len(points)
	neighbors := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j || CosineDistance(points[i], points[j]) <= eps {
				neighbors[i] = append(neighbors[i], j)
			}
		}
	}

	res := Result{Labels: make([]int, n), Core: make([]bool, n)}
	for i := range res.Labels {
		res.Labels[i] = Noise
		res.Core[i] = len(neighbors[i]) >= minSamples
	}

	next := 0
	for i := 0; i < n; i++ {
		if res.Labels[i] != Noise || !res.Core[i] {
			continue
		}
		res.Labels[i] = next
		queue := []int{i}
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			if !res.Core[p] {
				continue
			}
			for _, q := range neighbors[p] {
				if res.Labels[q] != Noise {
					continue
				}
				res.Labels[q] = next
				queue = append(queue, q)
			}
		}
		next++
	}
	return res, nil
}
