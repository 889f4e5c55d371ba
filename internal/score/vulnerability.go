package score

import (
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/dataset"
)

const epsilon = 1e-6

// VulnerableThreshold selects high-vulnerability rows from composite
// scores on the 0..1 scale.
const VulnerableThreshold = 0.7

// Weights are the sub-score weights of the vulnerability composite. The
// defaults sum to 1; Compose omits the weight of any absent sub-score, so
// partial inputs underweight the composite instead of erroring.
type Weights struct {
	Age float64
	Geo float64
	Bio float64
	Mig float64
}

// DefaultWeights is the documented 40/30/20/10 split.
var DefaultWeights = Weights{Age: 0.4, Geo: 0.3, Bio: 0.2, Mig: 0.1}

// Sum returns the total weight, 1.0 for the defaults.
func (w Weights) Sum() float64 {
	return w.Age + w.Geo + w.Bio + w.Mig
}

// ageScores maps age buckets to their vulnerability sub-score. Unknown
// buckets score a neutral 0.5.
var ageScores = map[string]float64{
	"Child (0-5)":    1.0,
	"Child (6-17)":   0.9,
	"Youth (18-25)":  0.3,
	"Adult (26-40)":  0.2,
	"Senior (41-60)": 0.3,
	"Elderly (60+)":  0.8,
}

// AgeScore looks up the sub-score for one age bucket.
func AgeScore(group string) float64 {
	if s, ok := ageScores[group]; ok {
		return s
	}
	return 0.5
}

// VulnerabilityColumns names the source columns of the four sub-scores.
// An empty name, or a name the table lacks, drops that sub-score from the
// composite entirely.
type VulnerabilityColumns struct {
	Age        string
	Enrolment  string
	BioUpdates string
	MigUpdates string
}

// DefaultVulnerabilityColumns matches the documented extract schema.
var DefaultVulnerabilityColumns = VulnerabilityColumns{
	Age:        dataset.ColAgeGroup,
	Enrolment:  dataset.ColAadhaarGenerated,
	BioUpdates: dataset.ColUpdateCount,
	MigUpdates: dataset.ColUpdateCount,
}

// VulnerabilityParams carries the batch statistics each sub-score
// normalizes against, fitted once and passed explicitly into scoring.
type VulnerabilityParams struct {
	HasAge bool

	HasGeo             bool
	EnrolMin, EnrolMax float64

	HasBio bool
	BioMax float64

	HasMig bool
	MigMax float64
}

// FitVulnerability captures the normalization range of every sub-score
// whose source column the table actually has.
func FitVulnerability(tbl *dataset.Table, cols VulnerabilityColumns) VulnerabilityParams {
	var p VulnerabilityParams
	if tbl == nil {
		return p
	}
	p.HasAge = cols.Age != "" && tbl.ColumnIndex(cols.Age) >= 0

	if cols.Enrolment != "" && tbl.ColumnIndex(cols.Enrolment) >= 0 {
		p.HasGeo = true
		p.EnrolMin, p.EnrolMax = columnRange(tbl, cols.Enrolment)
	}
	if cols.BioUpdates != "" && tbl.ColumnIndex(cols.BioUpdates) >= 0 {
		p.HasBio = true
		_, p.BioMax = columnRange(tbl, cols.BioUpdates)
	}
	if cols.MigUpdates != "" && tbl.ColumnIndex(cols.MigUpdates) >= 0 {
		p.HasMig = true
		_, p.MigMax = columnRange(tbl, cols.MigUpdates)
	}
	return p
}

// VulnerabilityScore composes the weighted sub-scores of one row on the
// 0..1 scale. Sub-scores whose column is absent are omitted together with
// their weight; a present column with a null cell scores the neutral 0.5.
func VulnerabilityScore(tbl *dataset.Table, row int, cols VulnerabilityColumns, p VulnerabilityParams, w Weights) float64 {
	total := 0.0
	if p.HasAge {
		total += w.Age * AgeScore(tbl.Cell(row, cols.Age).String())
	}
	if p.HasGeo {
		sub := 0.5
		if n, ok := tbl.Cell(row, cols.Enrolment).AsNumber(); ok {
			sub = (p.EnrolMax - n) / (p.EnrolMax - p.EnrolMin + epsilon)
		}
		total += w.Geo * clamp01(sub)
	}
	if p.HasBio {
		sub := 0.5
		if n, ok := tbl.Cell(row, cols.BioUpdates).AsNumber(); ok {
			sub = 1 - n/(p.BioMax+epsilon)
		}
		total += w.Bio * clamp01(sub)
	}
	if p.HasMig {
		sub := 0.5
		if n, ok := tbl.Cell(row, cols.MigUpdates).AsNumber(); ok {
			sub = n / (p.MigMax + epsilon)
		}
		total += w.Mig * clamp01(sub)
	}
	return total
}

// ScoreVulnerability fits the table and scores every row.
func ScoreVulnerability(tbl *dataset.Table, cols VulnerabilityColumns, w Weights) []float64 {
	if tbl == nil {
		return nil
	}
	p := FitVulnerability(tbl, cols)
	out := make([]float64, tbl.NumRows())
	for i := range out {
		out[i] = VulnerabilityScore(tbl, i, cols, p, w)
	}
	return out
}

// Vulnerable returns the row indices whose score meets the threshold,
// sorted by score descending.
func Vulnerable(scores []float64, threshold float64) []int {
	var idx []int
	for i, s := range scores {
		if s >= threshold {
			idx = append(idx, i)
		}
	}
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && scores[idx[j]] > scores[idx[j-1]]; j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}
	return idx
}

func columnRange(tbl *dataset.Table, name string) (min, max float64) {
	first := true
	nums, ok := tbl.NumberColumn(name)
	for i, n := range nums {
		if !ok[i] {
			continue
		}
		if first {
			min, max = n, n
			first = false
			continue
		}
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	return min, max
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
