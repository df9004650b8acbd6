package app

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/RyanBlaney/latency-benchmark-common/output"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/ppg-features/internal/dataset"
	"github.com/RyanBlaney/ppg-features/internal/pipeline"
	"github.com/RyanBlaney/ppg-features/pkg/signal/extractors"
)

// metadataColumns follow the feature columns in every row
var metadataColumns = []string{
	dataset.ColumnSourceFile,
	dataset.ColumnSegmentIndex,
	dataset.ColumnSBP,
	dataset.ColumnDBP,
}

// datasetRow serializes one feature vector as a flat object whose keys
// follow the dataset column order
type datasetRow dataset.FeatureVector

func (r datasetRow) metadata() []any {
	return []any{r.SourceFile, r.SegmentIndex, r.SBP, r.DBP}
}

func (r datasetRow) MarshalJSON() ([]byte, error) {
	features, err := r.Features.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(features[:len(features)-1])
	for i, value := range r.metadata() {
		if f, ok := value.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			value = nil
		}
		key, _ := json.Marshal(metadataColumns[i])
		val, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r datasetRow) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value any) error {
		var val yaml.Node
		if err := val.Encode(value); err != nil {
			return err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, &val)
		return nil
	}

	for i, name := range extractors.Names() {
		if err := add(name, r.Features[i]); err != nil {
			return nil, err
		}
	}
	for i, value := range r.metadata() {
		if err := add(metadataColumns[i], value); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// datasetRows wraps every dataset row for ordered serialization
func datasetRows(ds *dataset.Dataset) []datasetRow {
	if ds == nil {
		return []datasetRow{}
	}
	rows := make([]datasetRow, 0, ds.Len())
	for _, fv := range ds.Rows() {
		rows = append(rows, datasetRow(fv))
	}
	return rows
}

// DatasetCSVFormatter writes a *dataset.Dataset as CSV: a header of column
// names, then one record per feature vector. Non-finite values are empty
// cells.
type DatasetCSVFormatter struct{}

func (f *DatasetCSVFormatter) Format(data any, prettyPrint bool) ([]byte, error) {
	ds, ok := data.(*dataset.Dataset)
	if !ok {
		return nil, fmt.Errorf("csv output expects a dataset, got %T", data)
	}
	if ds == nil {
		ds = dataset.New(nil)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(ds.Columns()); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, fv := range ds.Rows() {
		if err := writer.Write(csvRecord(fv)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func csvRecord(fv dataset.FeatureVector) []string {
	record := make([]string, 0, extractors.NumFeatures+len(metadataColumns))
	for _, x := range fv.Features {
		record = append(record, formatCSVFloat(x))
	}
	return append(record,
		fv.SourceFile,
		output.ConvertValueToString(fv.SegmentIndex),
		formatCSVFloat(fv.SBP),
		formatCSVFloat(fv.DBP),
	)
}

// formatCSVFloat keeps full precision for training input
func formatCSVFloat(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return ""
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// DatasetTableFormatter renders a *pipeline.Result as a run summary followed
// by the dataset in aligned columns
type DatasetTableFormatter struct{}

func (f *DatasetTableFormatter) Format(data any, prettyPrint bool) ([]byte, error) {
	result, ok := data.(*pipeline.Result)
	if !ok || result == nil {
		return nil, fmt.Errorf("table output expects a pipeline result, got %T", data)
	}

	var buf bytes.Buffer
	buf.WriteString("PPG FEATURE DATASET\n")
	buf.WriteString("===================\n\n")

	if s := result.Summary; s != nil {
		fmt.Fprintf(&buf, "Records:  %d ok, %d failed, %d total\n", s.RecordsSucceeded, s.RecordsFailed, s.RecordsTotal)
		fmt.Fprintf(&buf, "Vectors:  %d retained of %d extracted\n", s.VectorsRetained, s.VectorsExtracted)
		fmt.Fprintf(&buf, "Duration: %s\n\n", output.FormatDuration(s.TotalDuration))
	}

	ds := result.Dataset
	if ds == nil {
		ds = dataset.New(nil)
	}

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(ds.Columns(), "\t"))
	for _, fv := range ds.Rows() {
		row := datasetRow(fv)
		cells := make([]string, 0, extractors.NumFeatures+len(metadataColumns))
		for _, x := range row.Features {
			cells = append(cells, output.ConvertValueToString(x))
		}
		for _, value := range row.metadata() {
			cells = append(cells, output.ConvertValueToString(value))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to render table: %w", err)
	}

	return buf.Bytes(), nil
}
