package pipeline

import (
	"time"

	"github.com/RyanBlaney/ppg-features/internal/dataset"
)

// RecordStatus is the outcome of processing one record
type RecordStatus string

const (
	StatusOK       RecordStatus = "ok"
	StatusFailed   RecordStatus = "failed"
	StatusCanceled RecordStatus = "canceled"
)

// RecordResult describes how one input record was processed
type RecordResult struct {
	Index     int           `json:"index" yaml:"index"`
	Source    string        `json:"source" yaml:"source"`
	Samples   int           `json:"samples" yaml:"samples"`
	Segments  int           `json:"segments" yaml:"segments"`
	Status    RecordStatus  `json:"status" yaml:"status"`
	ErrorCode string        `json:"error_code,omitempty" yaml:"error_code,omitempty"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration  time.Duration `json:"duration" yaml:"duration"`

	vectors []dataset.FeatureVector
}

// ValueStats represents statistical measures of one label column
type ValueStats struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Count  int     `json:"count" yaml:"count"`
}

// RunSummary aggregates a pipeline run
type RunSummary struct {
	RecordsTotal     int           `json:"records_total" yaml:"records_total"`
	RecordsSucceeded int           `json:"records_succeeded" yaml:"records_succeeded"`
	RecordsFailed    int           `json:"records_failed" yaml:"records_failed"`
	VectorsExtracted int           `json:"vectors_extracted" yaml:"vectors_extracted"`
	VectorsRetained  int           `json:"vectors_retained" yaml:"vectors_retained"`
	SourcesRetained  int           `json:"sources_retained" yaml:"sources_retained"`
	SBP              *ValueStats   `json:"sbp,omitempty" yaml:"sbp,omitempty"`
	DBP              *ValueStats   `json:"dbp,omitempty" yaml:"dbp,omitempty"`
	StartTime        time.Time     `json:"start_time" yaml:"start_time"`
	EndTime          time.Time     `json:"end_time" yaml:"end_time"`
	TotalDuration    time.Duration `json:"total_duration" yaml:"total_duration"`
}

// Result is everything a run produces
type Result struct {
	Dataset *dataset.Dataset      `json:"-" yaml:"-"`
	Records []RecordResult        `json:"records" yaml:"records"`
	Filter  *dataset.FilterReport `json:"filter,omitempty" yaml:"filter,omitempty"`
	Summary *RunSummary           `json:"summary" yaml:"summary"`
}
