package score

import "github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/aggregate"

// MigrationParams holds the min-max range fitted over one batch of update
// rates. The params are explicit state: fit once per batch, pass into every
// scoring call, and refit whenever the row set changes. Nothing is cached
// on the scorer between batches.
type MigrationParams struct {
	Min, Max float64
	fitted   bool
}

// FitMigration computes the batch range of update rates. An empty batch
// yields unfitted params, which score everything neutral.
func FitMigration(rates []float64) MigrationParams {
	if len(rates) == 0 {
		return MigrationParams{}
	}
	p := MigrationParams{Min: rates[0], Max: rates[0], fitted: true}
	for _, r := range rates[1:] {
		if r < p.Min {
			p.Min = r
		}
		if r > p.Max {
			p.Max = r
		}
	}
	return p
}

// MigrationRisk normalizes one rate into [0,100] against the fitted batch
// range. A zero-variance batch (max == min) scores every row a neutral 50
// rather than dividing by zero. The score is batch-relative, not an
// absolute threshold.
func MigrationRisk(rate float64, p MigrationParams) float64 {
	if !p.fitted || p.Max == p.Min {
		return 50
	}
	risk := (rate - p.Min) / (p.Max - p.Min) * 100
	if risk < 0 {
		risk = 0
	}
	if risk > 100 {
		risk = 100
	}
	return risk
}

// ScoreMigration fits the batch and fills the Risk field of every row.
func ScoreMigration(rows []aggregate.MigrationRow) MigrationParams {
	rates := make([]float64, len(rows))
	for i, r := range rows {
		rates[i] = r.UpdateRate
	}
	p := FitMigration(rates)
	for i := range rows {
		rows[i].Risk = MigrationRisk(rows[i].UpdateRate, p)
	}
	return p
}
