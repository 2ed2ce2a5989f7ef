package dataset

// ColumnKind classifies how a column is treated by downstream transforms.
type ColumnKind string

const (
	// KindContinuous marks a real-valued measurement column. Continuous
	// columns are standardized by the preprocessor.
	KindContinuous ColumnKind = "continuous"

	// KindBinary marks a {0,1}-encoded categorical column. Binary columns
	// pass through transforms unchanged.
	KindBinary ColumnKind = "binary"
)

// ValidKinds defines the allowed column kinds.
var ValidKinds = map[ColumnKind]bool{
	KindContinuous: true,
	KindBinary:     true,
}

// Column describes one named field of a dataset.
type Column struct {
	// Name is the canonical column name used throughout strata.
	Name string `json:"name"`

	// CSVName is the header this column carries in source CSV files.
	// Empty means the CSV header equals Name. Loading renames CSVName
	// to Name, so downstream code only ever sees canonical names.
	CSVName string `json:"csv_name,omitempty"`

	// Kind determines validation and transform behavior.
	Kind ColumnKind `json:"kind"`

	// Min is an optional inclusive lower bound for continuous columns.
	// Clinical measurements are non-negative, so schemas typically set 0.
	Min *float64 `json:"min,omitempty"`
}

// SourceName returns the CSV header for this column (CSVName, or Name when
// no rename is declared).
func (c Column) SourceName() string {
	if c.CSVName != "" {
		return c.CSVName
	}
	return c.Name
}

// Schema is the fixed, ordered, named column layout of a dataset.
//
// Exactly one column is the label; zero or more feature columns are excluded
// from model input (leakage columns that are not observable at prediction
// time). Schemas are produced by the compiler package from CUE definitions
// and are treated as immutable afterwards.
type Schema struct {
	// Name identifies the dataset this schema describes.
	Name string `json:"name"`

	// Columns lists every column in table order (features and label).
	Columns []Column `json:"columns"`

	// Label names the binary outcome column.
	Label string `json:"label"`

	// Exclude names feature columns dropped before any transform.
	// The canonical example is follow-up time: it is recorded only after
	// the outcome is known, so using it as a feature leaks the future.
	Exclude []string `json:"exclude,omitempty"`
}

// Index returns the position of the named column, or -1 if absent.
func (s *Schema) Index(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the named column definition.
// The second return is false if the column does not exist.
func (s *Schema) Column(name string) (Column, bool) {
	i := s.Index(name)
	if i < 0 {
		return Column{}, false
	}
	return s.Columns[i], true
}

// LabelColumn returns the label column definition.
// The second return is false if Label names no declared column.
func (s *Schema) LabelColumn() (Column, bool) {
	return s.Column(s.Label)
}

// IsExcluded reports whether the named column is on the exclude list.
func (s *Schema) IsExcluded(name string) bool {
	for _, e := range s.Exclude {
		if e == name {
			return true
		}
	}
	return false
}

// FeatureColumns returns every column except the label, in schema order.
// Excluded columns are still features here; ModelColumns removes them.
func (s *Schema) FeatureColumns() []Column {
	fs := make([]Column, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name == s.Label {
			continue
		}
		fs = append(fs, c)
	}
	return fs
}

// ModelColumns returns the feature columns that participate in model input:
// every column except the label and the excluded columns, in schema order.
func (s *Schema) ModelColumns() []Column {
	fs := make([]Column, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name == s.Label || s.IsExcluded(c.Name) {
			continue
		}
		fs = append(fs, c)
	}
	return fs
}

// SourceHeader returns the expected CSV header set in schema order.
func (s *Schema) SourceHeader() []string {
	hs := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		hs[i] = c.SourceName()
	}
	return hs
}
