package split

import "github.com/stratalab/strata/internal/dataset"

// Manifest pins a split's provenance: the configuration, the dataset's
// content identity, and per-partition sizes and row fingerprints. Two runs
// that produce the same manifest selected exactly the same rows from exactly
// the same data.
type Manifest struct {
	Dataset     string      `json:"dataset"`
	Fingerprint string      `json:"fingerprint"`
	Rows        int         `json:"rows"`
	Seed        int64       `json:"seed"`
	Shuffled    bool        `json:"shuffled"`
	Proportions Proportions `json:"proportions"`

	Train      ManifestEntry `json:"train"`
	Validation ManifestEntry `json:"validation"`
	Test       ManifestEntry `json:"test"`
}

// ManifestEntry describes one partition.
type ManifestEntry struct {
	Rows        int    `json:"rows"`
	Fingerprint string `json:"fingerprint"`
}

// Manifest builds the provenance record for this partition over its table.
func (p *Partition) Manifest(t *dataset.Table) *Manifest {
	return &Manifest{
		Dataset:     t.Schema().Name,
		Fingerprint: dataset.Fingerprint(t),
		Rows:        t.Rows(),
		Seed:        p.Seed,
		Shuffled:    p.Shuffled,
		Proportions: p.Proportions,
		Train: ManifestEntry{
			Rows:        len(p.Train),
			Fingerprint: dataset.RowsFingerprint(t, p.Train),
		},
		Validation: ManifestEntry{
			Rows:        len(p.Validation),
			Fingerprint: dataset.RowsFingerprint(t, p.Validation),
		},
		Test: ManifestEntry{
			Rows:        len(p.Test),
			Fingerprint: dataset.RowsFingerprint(t, p.Test),
		},
	}
}
