package clean

import (
	"math"

	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/anomaly"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/dataset"
)

// ColumnQuality describes one column's data quality after cleaning.
type ColumnQuality struct {
	Name         string
	MissingShare float64 // fraction of null cells, 0..1
	Kind         string  // dominant cell kind: text, number, time, null
	OutlierCount int     // numeric columns: cells past the outlier z-score cutoff
}

// QualityReport summarizes a dataset's quality for the report appendix.
type QualityReport struct {
	Rows    int
	Columns []ColumnQuality
}

// Validate computes per-column quality checks: missing share, dominant
// kind, and an outlier count for numeric columns using population
// z-scores. A non-positive outlierThreshold falls back to the standard
// outlier cutoff.
func Validate(ds *dataset.Dataset, outlierThreshold float64) (QualityReport, error) {
	if outlierThreshold <= 0 {
		outlierThreshold = anomaly.OutlierThreshold
	}
	if ds == nil || ds.Table == nil {
		return QualityReport{}, ErrNotLoaded
	}

	tbl := ds.Table
	rep := QualityReport{Rows: tbl.NumRows()}
	for _, name := range tbl.Columns {
		cq := ColumnQuality{Name: name}
		cells := tbl.Column(name)

		nulls := 0
		counts := map[dataset.ValueKind]int{}
		var nums []float64
		for _, c := range cells {
			if c.IsNull() {
				nulls++
				continue
			}
			counts[c.Kind]++
			if n, ok := c.AsNumber(); ok && c.Kind == dataset.KindNumber {
				nums = append(nums, n)
			}
		}
		if len(cells) > 0 {
			cq.MissingShare = float64(nulls) / float64(len(cells))
		}
		cq.Kind = dominantKind(counts, nulls)
		if cq.Kind == "number" {
			cq.OutlierCount = outlierCount(nums, outlierThreshold)
		}
		rep.Columns = append(rep.Columns, cq)
	}
	return rep, nil
}

func dominantKind(counts map[dataset.ValueKind]int, nulls int) string {
	best, bestN := "null", nulls
	for kind, n := range counts {
		if n > bestN {
			bestN = n
			switch kind {
			case dataset.KindText:
				best = "text"
			case dataset.KindNumber:
				best = "number"
			case dataset.KindTime:
				best = "time"
			}
		}
	}
	if best == "null" && nulls == 0 {
		return "empty"
	}
	return best
}

// outlierCount counts values whose population z-score magnitude exceeds
// the threshold. A zero-variance column has no outliers.
func outlierCount(nums []float64, threshold float64) int {
	if len(nums) == 0 {
		return 0
	}
	var sum float64
	for _, n := range nums {
		sum += n
	}
	mean := sum / float64(len(nums))
	var ss float64
	for _, n := range nums {
		d := n - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(nums)))
	if std == 0 {
		return 0
	}
	count := 0
	for _, n := range nums {
		if math.Abs((n-mean)/std) > threshold {
			count++
		}
	}
	return count
}
