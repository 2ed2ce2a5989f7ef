// Package split produces stratified train/validation/test partitions.
//
// Stratification keeps the class balance of every partition close to the
// dataset's: row indices are grouped by label value, each class is
// apportioned to the three partitions by largest remainder, and the
// per-class slices are concatenated. The result is deterministic given
// (table, Config): shuffling uses a single seeded source, classes are
// visited in ascending label order, and partition indices are returned
// sorted. Partitions are disjoint and exhaustive by construction.
package split

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/stratalab/strata/internal/dataset"
)

// proportionSumTolerance bounds how far the three fractions may drift from
// summing to exactly 1 before the configuration is rejected.
const proportionSumTolerance = 1e-9

// DefaultSeed is the shuffle seed used when none is configured.
const DefaultSeed int64 = 42

// Proportions is the target train/validation/test ratio.
type Proportions struct {
	Train      float64 `json:"train" yaml:"train"`
	Validation float64 `json:"validation" yaml:"validation"`
	Test       float64 `json:"test" yaml:"test"`
}

// DefaultProportions is the conventional 60/20/20 ratio.
var DefaultProportions = Proportions{Train: 0.6, Validation: 0.2, Test: 0.2}

// Validate checks that each fraction lies in (0,1) and the three sum to 1
// within tolerance. Returns a ConfigurationError (BAD_PROPORTIONS) otherwise.
func (p Proportions) Validate() error {
	parts := []struct {
		name string
		frac float64
	}{
		{"train", p.Train},
		{"validation", p.Validation},
		{"test", p.Test},
	}
	for _, part := range parts {
		if part.frac <= 0 || part.frac >= 1 || math.IsNaN(part.frac) {
			return &ConfigurationError{
				Code:    ErrCodeBadProportions,
				Message: fmt.Sprintf("%s proportion %v outside (0,1)", part.name, part.frac),
			}
		}
	}

	sum := p.Train + p.Validation + p.Test
	if math.Abs(sum-1) > proportionSumTolerance {
		return &ConfigurationError{
			Code:    ErrCodeBadProportions,
			Message: fmt.Sprintf("proportions sum to %v, want 1", sum),
		}
	}
	return nil
}

// Config holds the split parameters.
type Config struct {
	// Proportions is the target partition ratio.
	Proportions Proportions

	// Seed feeds the shuffle source. Ignored when Shuffle is false.
	Seed int64

	// Shuffle randomizes row order within each class before apportioning.
	// With Shuffle false, per-class indices keep dataset order, making the
	// whole split a pure function of the table. Used for hand-traceable
	// fixtures and replay.
	Shuffle bool
}

// DefaultConfig returns the conventional configuration: 60/20/20,
// seeded shuffle.
func DefaultConfig() Config {
	return Config{
		Proportions: DefaultProportions,
		Seed:        DefaultSeed,
		Shuffle:     true,
	}
}

// Partition holds the three disjoint row-index sets, sorted ascending,
// plus the configuration that produced them.
type Partition struct {
	Train      []int `json:"train"`
	Validation []int `json:"validation"`
	Test       []int `json:"test"`

	Seed        int64       `json:"seed"`
	Shuffled    bool        `json:"shuffled"`
	Proportions Proportions `json:"proportions"`
}

// Split stratifies the table's rows into train/validation/test.
//
// Each class is split independently: its indices are optionally shuffled,
// then apportioned by largest remainder so that per-class counts match the
// proportions as closely as integer counts allow. Any class that would leave
// a partition empty aborts the split with EMPTY_STRATUM. The input table is
// never mutated.
func Split(t *dataset.Table, cfg Config) (*Partition, error) {
	if err := cfg.Proportions.Validate(); err != nil {
		return nil, err
	}

	// One seeded source shared across classes, consumed in ascending label
	// order: the full split is reproducible from the seed alone.
	rng := rand.New(rand.NewSource(cfg.Seed))

	labels, groups := t.ClassIndices()

	p := &Partition{
		Seed:        cfg.Seed,
		Shuffled:    cfg.Shuffle,
		Proportions: cfg.Proportions,
	}
	for g, group := range groups {
		idx := append([]int(nil), group...)
		if cfg.Shuffle {
			rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		}

		counts := apportion(len(idx), cfg.Proportions)
		names := [3]string{"train", "validation", "test"}
		for i, n := range counts {
			if n == 0 {
				return nil, NewEmptyStratumError(labels[g], names[i], len(idx))
			}
		}

		p.Train = append(p.Train, idx[:counts[0]]...)
		p.Validation = append(p.Validation, idx[counts[0]:counts[0]+counts[1]]...)
		p.Test = append(p.Test, idx[counts[0]+counts[1]:]...)
	}

	sort.Ints(p.Train)
	sort.Ints(p.Validation)
	sort.Ints(p.Test)
	return p, nil
}

// apportion distributes n rows over the three partitions by largest
// remainder: every partition gets the floor of its exact share, and the
// leftover rows (at most two) go to the largest fractional remainders.
// Ties favor the earlier partition: train, then validation, then test.
func apportion(n int, p Proportions) [3]int {
	fracs := [3]float64{p.Train, p.Validation, p.Test}

	var counts [3]int
	var rem [3]float64
	assigned := 0
	for i, f := range fracs {
		exact := f * float64(n)
		counts[i] = int(math.Floor(exact))
		rem[i] = exact - math.Floor(exact)
		assigned += counts[i]
	}

	for assigned < n {
		best := 0
		for i := 1; i < 3; i++ {
			if rem[i] > rem[best] {
				best = i
			}
		}
		counts[best]++
		rem[best] = -1
		assigned++
	}
	return counts
}

// Rows returns the total number of rows across all partitions.
func (p *Partition) Rows() int {
	return len(p.Train) + len(p.Validation) + len(p.Test)
}

// PartitionBalance holds per-partition class distributions.
type PartitionBalance struct {
	Train      dataset.Balance `json:"train"`
	Validation dataset.Balance `json:"validation"`
	Test       dataset.Balance `json:"test"`
}

// Balance computes the class distribution of each partition against the
// table the partition was built from.
func (p *Partition) Balance(t *dataset.Table) (*PartitionBalance, error) {
	train, err := t.BalanceOf(p.Train)
	if err != nil {
		return nil, fmt.Errorf("train balance: %w", err)
	}
	validation, err := t.BalanceOf(p.Validation)
	if err != nil {
		return nil, fmt.Errorf("validation balance: %w", err)
	}
	test, err := t.BalanceOf(p.Test)
	if err != nil {
		return nil, fmt.Errorf("test balance: %w", err)
	}
	return &PartitionBalance{Train: train, Validation: validation, Test: test}, nil
}
