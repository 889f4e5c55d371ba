package anomaly

import "math"

// Default thresholds for the two z-score uses: general anomaly flagging
// and the stricter outlier classification of the data-quality checks.
const (
	DefaultThreshold = 2.5
	OutlierThreshold = 3.0
)

// ZScoreDetector flags a row when any feature's population z-score
// magnitude exceeds the threshold. A zero-variance feature contributes no
// flags.
type ZScoreDetector struct {
	Threshold float64
}

// Detect returns a per-row anomaly mask over the matrix.
func (d ZScoreDetector) Detect(m Matrix) ([]bool, error) {
	threshold := d.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	flags := make([]bool, m.NumRows())
	for c := range m.Features {
		col := make([]float64, m.NumRows())
		for r, row := range m.Rows {
			col[r] = row[c]
		}
		mean, std := meanStd(col)
		if std == 0 {
			continue
		}
		for r, v := range col {
			if math.Abs((v-mean)/std) > threshold {
				flags[r] = true
			}
		}
	}
	return flags, nil
}

// ZScores computes population z-scores for one column. A zero-variance
// column scores all zeros.
func ZScores(values []float64) []float64 {
	mean, std := meanStd(values)
	out := make([]float64, len(values))
	if std == 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - mean) / std
	}
	return out
}

// meanStd computes the population mean and standard deviation.
func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(values)))
}
