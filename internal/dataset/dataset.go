// Package dataset assembles per-segment feature vectors into the tabular
// form consumed by the regression trainer.
package dataset

import (
	"github.com/RyanBlaney/ppg-features/pkg/signal/extractors"
)

// Metadata column names appended after the feature columns
const (
	ColumnSourceFile   = "source_file"
	ColumnSegmentIndex = "segment_index"
	ColumnSBP          = "sbp"
	ColumnDBP          = "dbp"
)

// FeatureVector is one segment's features plus passthrough labels
type FeatureVector struct {
	Features     extractors.Vector `json:"features" yaml:"features"`
	SourceFile   string            `json:"source_file" yaml:"source_file"`
	SegmentIndex int               `json:"segment_index" yaml:"segment_index"`
	SBP          float64           `json:"sbp" yaml:"sbp"`
	DBP          float64           `json:"dbp" yaml:"dbp"`
}

// Dataset is an ordered, read-only collection of feature vectors
type Dataset struct {
	rows []FeatureVector
}

// New creates a dataset holding a copy of rows
func New(rows []FeatureVector) *Dataset {
	owned := make([]FeatureVector, len(rows))
	copy(owned, rows)
	return &Dataset{rows: owned}
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Row returns a copy of the i-th row
func (d *Dataset) Row(i int) FeatureVector {
	return d.rows[i]
}

// Rows returns a copy of every row in order
func (d *Dataset) Rows() []FeatureVector {
	out := make([]FeatureVector, len(d.rows))
	copy(out, d.rows)
	return out
}

// Columns returns the feature column names followed by the metadata columns
func (d *Dataset) Columns() []string {
	return append(extractors.Names(), ColumnSourceFile, ColumnSegmentIndex, ColumnSBP, ColumnDBP)
}

// FeatureColumns returns only the feature column names
func (d *Dataset) FeatureColumns() []string {
	return extractors.Names()
}

// Matrix returns the design matrix, one row per vector in feature order
func (d *Dataset) Matrix() [][]float64 {
	m := make([][]float64, len(d.rows))
	for i := range d.rows {
		m[i] = d.rows[i].Features.Slice()
	}
	return m
}

// Targets returns the systolic and diastolic label columns
func (d *Dataset) Targets() (sbp, dbp []float64) {
	sbp = make([]float64, len(d.rows))
	dbp = make([]float64, len(d.rows))
	for i, r := range d.rows {
		sbp[i] = r.SBP
		dbp[i] = r.DBP
	}
	return sbp, dbp
}

// Sources returns the distinct source files in first-seen order
func (d *Dataset) Sources() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range d.rows {
		if !seen[r.SourceFile] {
			seen[r.SourceFile] = true
			out = append(out, r.SourceFile)
		}
	}
	return out
}
