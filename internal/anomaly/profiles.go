package anomaly

import "sort"

// FeatureProfile summarizes one feature within one cluster.
type FeatureProfile struct {
	Mean   float64
	Median float64
	Std    float64
}

// ClusterProfile summarizes one cluster across all features.
type ClusterProfile struct {
	Cluster  int
	Count    int
	Features map[string]FeatureProfile
}

// Profiles computes per-cluster mean/median/std/count for every feature.
// Labels shorter than the matrix truncate the profiled rows.
func Profiles(m Matrix, labels []int) []ClusterProfile {
	n := m.NumRows()
	if len(labels) < n {
		n = len(labels)
	}

	byCluster := make(map[int][]int)
	for r := 0; r < n; r++ {
		byCluster[labels[r]] = append(byCluster[labels[r]], r)
	}
	ids := make([]int, 0, len(byCluster))
	for id := range byCluster {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]ClusterProfile, 0, len(ids))
	for _, id := range ids {
		rows := byCluster[id]
		cp := ClusterProfile{Cluster: id, Count: len(rows), Features: make(map[string]FeatureProfile, len(m.Features))}
		for c, name := range m.Features {
			vals := make([]float64, len(rows))
			for i, r := range rows {
				vals[i] = m.Rows[r][c]
			}
			mean, std := meanStd(vals)
			cp.Features[name] = FeatureProfile{Mean: mean, Median: median(vals), Std: std}
		}
		out = append(out, cp)
	}
	return out
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
