package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pairSchema is the smallest useful schema: one continuous feature and a
// binary label, for statistics that are easy to verify by hand.
func pairSchema() *Schema {
	return &Schema{
		Name: "pair",
		Columns: []Column{
			{Name: "x", Kind: KindContinuous},
			{Name: "y", Kind: KindBinary},
		},
		Label: "y",
	}
}

func TestSummarizeHandComputed(t *testing.T) {
	// x = {1,3}: mean 2, population stddev 1, median 2.
	tbl, err := NewTable(pairSchema(), [][]float64{{1, 3}, {0, 1}})
	require.NoError(t, err)

	s := tbl.Summarize()
	require.Len(t, s.Columns, 2)
	assert.Equal(t, 2, s.Rows)

	x, ok := s.Column("x")
	require.True(t, ok)
	assert.Equal(t, KindContinuous, x.Kind)
	assert.Equal(t, 2, x.Count)
	assert.Equal(t, 2.0, x.Mean)
	assert.Equal(t, 1.0, x.StdDev, "divisor is N, not N-1")
	assert.Equal(t, 1.0, x.Min)
	assert.Equal(t, 3.0, x.Max)
	assert.Equal(t, 2.0, x.Median)
}

func TestSummarizeColumnsInSchemaOrder(t *testing.T) {
	tbl, err := NewTable(testSchema(), testCols())
	require.NoError(t, err)

	s := tbl.Summarize()
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"age", "serum_sodium", "smoking", "time", "death_event"}, names)
}

func TestSummarizeIncludesBalance(t *testing.T) {
	tbl, err := NewTable(testSchema(), testCols())
	require.NoError(t, err)

	s := tbl.Summarize()
	require.Len(t, s.Balance, 2)
	assert.Equal(t, 0.5, s.Balance.Fraction(1))
}

func TestSummarizeRowsSubset(t *testing.T) {
	tbl, err := NewTable(testSchema(), testCols())
	require.NoError(t, err)

	// Rows 1 and 2: age {60,70} -> mean 65, median 65.
	s, err := tbl.SummarizeRows([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Rows)

	age, ok := s.Column("age")
	require.True(t, ok)
	assert.Equal(t, 65.0, age.Mean)
	assert.Equal(t, 65.0, age.Median)
	assert.Equal(t, 60.0, age.Min)
	assert.Equal(t, 70.0, age.Max)
	assert.InDelta(t, 5.0, age.StdDev, 1e-12)
}

func TestSummarizeRowsBadIndex(t *testing.T) {
	tbl, err := NewTable(testSchema(), testCols())
	require.NoError(t, err)

	_, err = tbl.SummarizeRows([]int{0, 42})
	require.Error(t, err)
	assert.True(t, IsIntegrityError(err, ErrCodeShapeMismatch))
}

func TestMedianOddCount(t *testing.T) {
	assert.Equal(t, 3.0, median([]float64{5, 1, 3}), "odd count takes the middle element")
}

func TestMedianEvenCount(t *testing.T) {
	assert.Equal(t, 2.5, median([]float64{4, 1, 2, 3}), "even count averages the two middle elements")
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	median(values)
	assert.Equal(t, []float64{3, 1, 2}, values, "median must sort a copy")
}

func TestSummaryColumnLookupMiss(t *testing.T) {
	tbl, err := NewTable(pairSchema(), [][]float64{{1, 3}, {0, 1}})
	require.NoError(t, err)

	_, ok := tbl.Summarize().Column("nope")
	assert.False(t, ok)
}
