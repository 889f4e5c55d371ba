package aggregate

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/dataset"
)

// epsilon guards divisions over counts that may be zero.
const epsilon = 1e-6

// Aggregator groups, joins, and derives per-region metrics. Instances are
// single-owner per analysis run.
type Aggregator struct {
	log *zap.Logger
}

// New creates an aggregator logging through the given logger.
func New(log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{log: log}
}

// SumBy returns one row per distinct group-key tuple with valueCol summed.
// When any group key or the value column is absent, the input table is
// returned unchanged: a documented passthrough that callers must expect,
// signaled by ok=false and a warning log rather than an error.
func (a *Aggregator) SumBy(tbl *dataset.Table, groupKeys []string, valueCol string) (*dataset.Table, bool) {
	if !tbl.HasColumns(groupKeys...) || !tbl.HasColumns(valueCol) {
		a.log.Warn("aggregation passthrough: columns absent",
			zap.Strings("group_keys", groupKeys),
			zap.String("value_col", valueCol))
		return tbl, false
	}

	sums := make(map[string]float64)
	keyCells := make(map[string][]dataset.Value)
	var order []string
	for i := range tbl.Rows {
		key := groupKey(tbl, i, groupKeys)
		if _, seen := sums[key]; !seen {
			order = append(order, key)
			cells := make([]dataset.Value, len(groupKeys))
			for j, name := range groupKeys {
				cells[j] = tbl.Cell(i, name)
			}
			keyCells[key] = cells
		}
		if n, ok := tbl.Cell(i, valueCol).AsNumber(); ok {
			sums[key] += n
		}
	}

	out := dataset.NewTable(append(append([]string(nil), groupKeys...), valueCol))
	for _, key := range order {
		out.AppendRow(append(append([]dataset.Value(nil), keyCells[key]...), dataset.Number(sums[key])))
	}
	return out, true
}

// MigrationRow is one region of the enrolment/demographic join.
type MigrationRow struct {
	State      string
	District   string
	Enrolment  float64
	Updates    float64
	HasUpdates bool // false when the left join found no demographic match
	UpdateRate float64
	Risk       float64 // filled by the scorer
}

// MergeMigration left-joins enrolment against demographic updates on the
// full geographic key and derives the update rate per (State, District).
// Enrolment rows without a demographic match keep zero updates, giving a
// defined-but-degenerate rate of 0. UpdateRate = Updates/(Enrolment+1)*100
// is finite and non-negative for all inputs.
func (a *Aggregator) MergeMigration(enrolment, demographic *dataset.Table) []MigrationRow {
	updates := make(map[string]float64)
	if demographic != nil && demographic.HasColumns(dataset.GeoKeys...) && demographic.HasColumns(dataset.ColUpdateCount) {
		for i := range demographic.Rows {
			key := groupKey(demographic, i, dataset.GeoKeys)
			if n, ok := demographic.Cell(i, dataset.ColUpdateCount).AsNumber(); ok {
				updates[key] += n
			}
		}
	} else if demographic != nil {
		a.log.Warn("migration merge: demographic table missing join columns, treating as no matches")
	}

	// Roll enrolment up to (State, District) while joining at pin level.
	type acc struct {
		enrolment float64
		updates   float64
		matched   bool
	}
	byDistrict := make(map[string]*acc)
	var order []string
	cells := make(map[string][2]string)
	if enrolment == nil || !enrolment.HasColumns(dataset.ColState, dataset.ColDistrict) {
		a.log.Warn("migration merge: enrolment table missing key columns")
		return nil
	}
	for i := range enrolment.Rows {
		dk := groupKey(enrolment, i, []string{dataset.ColState, dataset.ColDistrict})
		entry, seen := byDistrict[dk]
		if !seen {
			entry = &acc{}
			byDistrict[dk] = entry
			order = append(order, dk)
			cells[dk] = [2]string{
				enrolment.Cell(i, dataset.ColState).String(),
				enrolment.Cell(i, dataset.ColDistrict).String(),
			}
		}
		if n, ok := enrolment.Cell(i, dataset.ColAadhaarGenerated).AsNumber(); ok {
			entry.enrolment += n
		}
		if enrolment.HasColumns(dataset.ColPinCode) {
			pk := groupKey(enrolment, i, dataset.GeoKeys)
			if u, ok := updates[pk]; ok {
				entry.updates += u
				entry.matched = true
				// consume so duplicate enrolment pins do not double-count
				delete(updates, pk)
			}
		}
	}

	rows := make([]MigrationRow, 0, len(order))
	for _, dk := range order {
		entry := byDistrict[dk]
		rate := entry.updates / (entry.enrolment + 1) * 100
		rows = append(rows, MigrationRow{
			State:      cells[dk][0],
			District:   cells[dk][1],
			Enrolment:  entry.enrolment,
			Updates:    entry.updates,
			HasUpdates: entry.matched,
			UpdateRate: rate,
		})
	}
	return rows
}

// CoverageRow is one state's biometric update coverage.
type CoverageRow struct {
	State              string
	TotalUpdates       float64
	AvgUpdates         float64
	IndividualsUpdated int
	Coverage           float64
}

// Coverage derives the biometric coverage percentage. The epsilon keeps
// the division finite even at zero individuals; with many updates per
// individual the result can exceed 100.
func Coverage(totalUpdates float64, individualsUpdated int) float64 {
	return totalUpdates / (float64(individualsUpdated) + epsilon) * 100
}

// BiometricCoverage groups biometric updates by state, computing the sum
// and mean of Update_Count plus a count of rows carrying a usable update
// value, and derives Coverage per state.
func (a *Aggregator) BiometricCoverage(biometric *dataset.Table) []CoverageRow {
	if biometric == nil || !biometric.HasColumns(dataset.ColState, dataset.ColUpdateCount) {
		a.log.Warn("biometric coverage: required columns absent, skipping")
		return nil
	}

	type acc struct {
		total float64
		count int
	}
	byState := make(map[string]*acc)
	var order []string
	for i := range biometric.Rows {
		state := biometric.Cell(i, dataset.ColState).String()
		entry, seen := byState[state]
		if !seen {
			entry = &acc{}
			byState[state] = entry
			order = append(order, state)
		}
		if n, ok := biometric.Cell(i, dataset.ColUpdateCount).AsNumber(); ok {
			entry.total += n
			entry.count++
		}
	}

	rows := make([]CoverageRow, 0, len(order))
	for _, state := range order {
		entry := byState[state]
		avg := 0.0
		if entry.count > 0 {
			avg = entry.total / float64(entry.count)
		}
		rows = append(rows, CoverageRow{
			State:              state,
			TotalUpdates:       entry.total,
			AvgUpdates:         avg,
			IndividualsUpdated: entry.count,
			Coverage:           Coverage(entry.total, entry.count),
		})
	}
	return rows
}

// AgeGroupTotal is the summed value for one age bucket.
type AgeGroupTotal struct {
	AgeGroup string
	Total    float64
}

// AgeGroupTotals sums valueCol per Age_Group bucket, sorted by total
// descending. Missing columns degrade to an empty result with a warning.
func (a *Aggregator) AgeGroupTotals(tbl *dataset.Table, valueCol string) []AgeGroupTotal {
	if tbl == nil || !tbl.HasColumns(dataset.ColAgeGroup, valueCol) {
		a.log.Warn("age-group totals: required columns absent, skipping",
			zap.String("value_col", valueCol))
		return nil
	}

	sums := make(map[string]float64)
	var order []string
	for i := range tbl.Rows {
		group := tbl.Cell(i, dataset.ColAgeGroup).String()
		if group == "" {
			continue
		}
		if _, seen := sums[group]; !seen {
			order = append(order, group)
		}
		if n, ok := tbl.Cell(i, valueCol).AsNumber(); ok {
			sums[group] += n
		}
	}

	out := make([]AgeGroupTotal, 0, len(order))
	for _, group := range order {
		out = append(out, AgeGroupTotal{AgeGroup: group, Total: sums[group]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// groupKey renders the key cells of one row into a composite map key.
func groupKey(tbl *dataset.Table, row int, keys []string) string {
	parts := make([]string, len(keys))
	for i, name := range keys {
		parts[i] = tbl.Cell(row, name).String()
	}
	return strings.Join(parts, "\x1f")
}
