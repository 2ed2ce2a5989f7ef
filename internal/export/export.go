// Package export writes prepared partitions to CSV files for downstream
// model training.
//
// Output is deterministic: fixed file names, schema-ordered columns, and
// shortest round-trip float formatting, so re-reading an exported file
// yields bit-identical values and repeated runs produce identical bytes.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/stratalab/strata/internal/pipeline"
	"github.com/stratalab/strata/internal/split"
)

// Partition file names, in write order.
const (
	TrainFile      = "train.csv"
	ValidationFile = "validation.csv"
	TestFile       = "test.csv"
)

// ManifestFile is the provenance record written next to the partitions.
const ManifestFile = "manifest.json"

// WriteCSV writes train.csv, validation.csv, and test.csv into dir,
// creating it if needed. Each file carries the transformed model columns
// plus the label column, header = model column names + label name.
// Returns the written paths in train/validation/test order.
func WriteCSV(dir string, res *pipeline.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	features := res.Transform.FeatureNames()
	label := res.Schema.Label

	sets := []struct {
		file string
		set  *pipeline.Set
	}{
		{TrainFile, res.Sets.Train},
		{ValidationFile, res.Sets.Validation},
		{TestFile, res.Sets.Test},
	}

	paths := make([]string, 0, len(sets))
	for _, s := range sets {
		path := filepath.Join(dir, s.file)
		if err := writeSet(path, s.set, features, label); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// writeSet renders one partition and writes it in a single pass. The CSV is
// buffered so a failure partway leaves no truncated file behind.
func writeSet(path string, set *pipeline.Set, features []string, label string) error {
	rows, cols := set.X.Dims()
	if cols != len(features) {
		return fmt.Errorf("write %s: matrix has %d columns, transform has %d",
			filepath.Base(path), cols, len(features))
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, 0, len(features)+1)
	header = append(header, features...)
	header = append(header, label)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s header: %w", filepath.Base(path), err)
	}

	record := make([]string, cols+1)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			record[j] = strconv.FormatFloat(set.X.At(i, j), 'g', -1, 64)
		}
		record[cols] = strconv.FormatFloat(set.Y[i], 'g', -1, 64)
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write %s row %d: %w", filepath.Base(path), i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WriteManifest writes the split manifest as indented JSON into dir.
// Returns the written path.
func WriteManifest(dir string, m *split.Manifest) (string, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", ManifestFile, err)
	}
	return path, nil
}
