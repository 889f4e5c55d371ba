package anomaly

import (
	"errors"
	"math"
	"math/rand"
)

// KMeans clusters standardized feature rows with Lloyd's algorithm.
// Deterministic for a fixed Seed.
type KMeans struct {
	K       int
	MaxIter int
	Seed    int64
}

// Cluster assigns every row a cluster id in [0, k). Fewer rows than
// clusters is an error the adapter turns into the neutral default.
func (km KMeans) Cluster(m Matrix, k int) ([]int, error) {
	if k <= 0 {
		k = km.K
	}
	if k <= 0 {
		return nil, errors.New("kmeans: k must be positive")
	}
	n := m.NumRows()
	if n == 0 {
		return nil, nil
	}
	if n < k {
		return nil, errors.New("kmeans: fewer rows than clusters")
	}
	if k == 1 {
		return make([]int, n), nil
	}

	rows := standardize(m)
	dims := len(m.Features)
	maxIter := km.MaxIter
	if maxIter <= 0 {
		maxIter = 100
	}

	// Seed centroids from distinct random rows.
	rng := rand.New(rand.NewSource(km.Seed))
	centroids := make([][]float64, k)
	for i, p := range rng.Perm(n)[:k] {
		centroids[i] = append([]float64(nil), rows[p]...)
	}

	labels := make([]int, n)
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for r, row := range rows {
			best, bestDist := 0, math.MaxFloat64
			for c, centroid := range centroids {
				d := sqDist(row, centroid)
				if d < bestDist {
					best, bestDist = c, d
				}
			}
			if labels[r] != best {
				labels[r] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// Recompute centroids; an emptied cluster keeps its position.
		sums := make([][]float64, k)
		counts := make([]int, k)
		for i := range sums {
			sums[i] = make([]float64, dims)
		}
		for r, row := range rows {
			counts[labels[r]]++
			for d, v := range row {
				sums[labels[r]][d] += v
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			for d := range centroids[c] {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}
	}
	return labels, nil
}

// standardize rescales every feature to zero mean and unit variance so no
// single large-valued column dominates the distances.
func standardize(m Matrix) [][]float64 {
	n := m.NumRows()
	dims := len(m.Features)
	out := make([][]float64, n)
	for r := range out {
		out[r] = make([]float64, dims)
	}
	col := make([]float64, n)
	for c := 0; c < dims; c++ {
		for r, row := range m.Rows {
			col[r] = row[c]
		}
		mean, std := meanStd(col)
		for r := range out {
			if std == 0 {
				out[r][c] = 0
			} else {
				out[r][c] = (m.Rows[r][c] - mean) / std
			}
		}
	}
	return out
}

func sqDist(a, b []float64) float64 {
	var d float64
	for i := range a {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return d
}
