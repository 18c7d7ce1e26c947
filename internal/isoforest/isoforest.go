// Package isoforest implements a seeded isolation forest whose scoring
// follows the usual conventions: ScoreSamples is the negated anomaly score
// (lower is more abnormal), DecisionFunction is shifted so that negative
// values are outliers at the configured contamination.
package isoforest

import (
	"errors"
	"math"
	"math/rand/v2"
	"sort"
)

const eulerGamma = 0.5772156649015329

// Options configures Fit.
type Options struct {
	NEstimators   int
	MaxSamples    int
	Contamination float64
	Seed          uint64
}

// Forest is a fitted isolation forest.
type Forest struct {
	trees      []*node
	sampleSize int
	offset     float64
}

type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	size      int
	leaf      bool
}

// Fit builds the ensemble over x. Rows must share a dimension and there must
// be at least two of them.
func Fit(x [][]float64, opts Options) (*Forest, error) {
	if len(x) < 2 {
		return nil, errors.New("isolation forest needs at least two samples")
	}
	for i := 1; i < len(x); i++ {
		if len(x[i]) != len(x[0]) {
			return nil, errors.New("samples have mismatched dimensions")
		}
	}
	if opts.NEstimators < 1 {
		return nil, errors.New("n_estimators must be at least 1")
	}
	if opts.Contamination <= 0 || opts.Contamination > 0.5 {
		return nil, errors.New("contamination must be in (0, 0.5]")
	}

	psi := opts.MaxSamples
	if psi <= 0 || psi > len(x) {
		psi = len(x)
	}
	heightLimit := int(math.Ceil(math.Log2(float64(psi))))
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	f := &Forest{sampleSize: psi, trees: make([]*node, opts.NEstimators)}
	for t := range f.trees {
		sample := rng.Perm(len(x))[:psi]
		f.trees[t] = build(x, sample, 0, heightLimit, rng)
	}

	scores := f.ScoreSamples(x)
	f.offset = percentile(scores, 100*opts.Contamination)
	return f, nil
}

func build(x [][]float64, idx []int, depth, limit int, rng *rand.Rand) *node {
	if depth >= limit || len(idx) <= 1 {
		return &node{leaf: true, size: len(idx)}
	}
	dim := len(x[idx[0]])
	var candidates []int
	mins := make([]float64, dim)
	maxs := make([]float64, dim)
	for f := 0; f < dim; f++ {
		lo, hi := x[idx[0]][f], x[idx[0]][f]
		for _, i := range idx[1:] {
			v := x[i][f]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		mins[f], maxs[f] = lo, hi
		if hi > lo {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return &node{leaf: true, size: len(idx)}
	}
	feature := candidates[rng.IntN(len(candidates))]
	threshold := mins[feature] + rng.Float64()*(maxs[feature]-mins[feature])

	var left, right []int
	for _, i := range idx {
		if x[i][feature] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &node{
		feature:   feature,
		threshold: threshold,
		left:      build(x, left, depth+1, limit, rng),
		right:     build(x, right, depth+1, limit, rng),
	}
}

// averagePathLength is the expected path length of an unsuccessful search
// in a binary search tree of n points.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	fn := float64(n)
	return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
}

func pathLength(row []float64, n *node) float64 {
	depth := 0.0
	for !n.leaf {
		if row[n.feature] < n.threshold {
			n = n.left
		} else {
			n = n.right
		}
		depth++
	}
	return depth + averagePathLength(n.size)
}

// ScoreSamples returns -2^(-E[h(x)]/c(psi)) for every row.
func (f *Forest) ScoreSamples(x [][]float64) []float64 {
	norm := averagePathLength(f.sampleSize)
	out := make([]float64, len(x))
	for i, row := range x {
		total := 0.0
		for _, t := range f.trees {
			total += pathLength(row, t)
		}
		mean := total / float64(len(f.trees))
		out[i] = -math.Pow(2, -mean/norm)
	}
	return out
}

// DecisionFunction returns ScoreSamples shifted by the contamination offset.
// Negative values mark outliers.
func (f *Forest) DecisionFunction(x [][]float64) []float64 {
	scores := f.ScoreSamples(x)
	for i := range scores {
		scores[i] -= f.offset
	}
	return scores
}

// Predict labels each row -1 (outlier) or 1 (inlier).
func (f *Forest) Predict(x [][]float64) []int {
	decision := f.DecisionFunction(x)
	out := make([]int, len(decision))
	for i, d := range decision {
		if d < 0 {
			out[i] = -1
		} else {
			out[i] = 1
		}
	}
	return out
}

// Offset returns the decision threshold learnt at fit time.
func (f *Forest) Offset() float64 { return f.offset }

// percentile uses linear interpolation between closest ranks.
func percentile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
