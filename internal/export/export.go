package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/dataset"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/insight"
)

// WriteCleanedCSVs writes one delimited file per cleaned dataset into the
// output directory, keeping each dataset's original schema. Returns the
// written paths keyed by kind.
func WriteCleanedCSVs(sets map[dataset.Kind]*dataset.Dataset, dir string, log *zap.Logger) (map[dataset.Kind]string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	out := make(map[dataset.Kind]string, len(sets))
	for _, kind := range dataset.Kinds {
		ds, ok := sets[kind]
		if !ok {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_cleaned.csv", kind))
		if err := dataset.WriteCSV(ds, path); err != nil {
			return nil, fmt.Errorf("exporting %s: %w", kind, err)
		}
		out[kind] = path
		log.Info("exported cleaned dataset",
			zap.String("dataset", string(kind)),
			zap.String("path", path),
			zap.Int("rows", ds.Table.NumRows()))
	}
	return out, nil
}

// WriteBundleJSON writes the analysis bundle for the external renderer.
func WriteBundleJSON(b *insight.Bundle, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding bundle: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("analysis_%s.json", b.Timestamp.Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing bundle: %w", err)
	}
	return path, nil
}
