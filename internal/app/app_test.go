package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/ppg-features/configs"
	"github.com/RyanBlaney/ppg-features/internal/dataset"
	"github.com/RyanBlaney/ppg-features/internal/pipeline"
	"github.com/RyanBlaney/ppg-features/pkg/signal/common"
	"github.com/RyanBlaney/ppg-features/pkg/signal/extractors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadRecordsFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		rates   []float64
	}{
		{
			name: "yaml mapping with file rate",
			file: "records.yaml",
			content: `sample_rate: 125
records:
  - source: a
    sbp: 120
    dbp: 80
    waveform: [1, 2, 3]
  - source: b
    sample_rate: 250
    sbp: 110
    dbp: 70
    waveform: [4, 5]
`,
			rates: []float64{125, 250},
		},
		{
			name: "yaml list",
			file: "records.yml",
			content: `- source: a
  sbp: 120
  dbp: 80
  waveform: [1, 2, 3]
`,
			rates: []float64{0},
		},
		{
			name:    "json mapping",
			file:    "records.json",
			content: `{"records": [{"source": "a", "sbp": 120, "dbp": 80, "waveform": [1, 2, 3]}]}`,
			rates:   []float64{0},
		},
		{
			name:    "json list",
			file:    "records.json",
			content: `[{"source": "a", "sample_rate": 125, "sbp": 120, "dbp": 80, "waveform": [1]}, {"source": "b", "sbp": 1, "dbp": 1, "waveform": [2]}]`,
			rates:   []float64{125, 0},
		},
		{
			name:    "json without extension",
			file:    "records",
			content: `{"sample_rate": 125, "records": [{"source": "a", "sbp": 120, "dbp": 80, "waveform": [1, 2]}]}`,
			rates:   []float64{125},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := LoadRecordsFile(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			require.Len(t, records, len(tt.rates))

			assert.Equal(t, "a", records[0].Source)
			for i, rate := range tt.rates {
				assert.Equal(t, rate, records[i].SampleRate, "record %d", i)
			}
		})
	}
}

func TestLoadRecordsFileErrors(t *testing.T) {
	_, err := LoadRecordsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "does not exist")

	_, err = LoadRecordsFile(writeFile(t, "bad.json", `{"records": 5}`))
	assert.ErrorContains(t, err, "failed to parse JSON")

	_, err = LoadRecordsFile(writeFile(t, "bad.yaml", "records: [\n"))
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestGenerateExampleRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "records.yaml")
	require.NoError(t, GenerateExampleRecords(path, 24))

	records, err := LoadRecordsFile(path)
	require.NoError(t, err)
	require.Len(t, records, 3)

	for _, rec := range records {
		assert.Len(t, rec.Waveform, 3000)
		assert.NoError(t, common.ValidateRecord(&rec, common.DefaultSampleRate))
	}
}

func testDataset() *dataset.Dataset {
	var first, second extractors.Vector
	first.Set(extractors.MeanHR, 72)
	first.Set(extractors.FreqLFPower, 1.25e-5)
	second.Set(extractors.MeanHR, 64.5)
	second.Set(extractors.Mean, math.NaN())

	return dataset.New([]dataset.FeatureVector{
		{Features: first, SourceFile: "a", SegmentIndex: 2, SBP: 120, DBP: 80},
		{Features: second, SourceFile: "b", SegmentIndex: 0, SBP: 110.5, DBP: 70},
	})
}

// jsonKeys returns the top-level object keys in encounter order
func jsonKeys(t *testing.T, data []byte) []string {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	require.NoError(t, err)
	require.Equal(t, json.Delim('{'), tok)

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		require.NoError(t, err)
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		require.NoError(t, dec.Decode(&skip))
	}
	return keys
}

func TestDatasetRowsJSONOrder(t *testing.T) {
	ds := testDataset()
	rows := datasetRows(ds)
	require.Len(t, rows, 2)

	data, err := json.Marshal(rows[0])
	require.NoError(t, err)
	assert.Equal(t, ds.Columns(), jsonKeys(t, data))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 72.0, decoded[extractors.MeanHR.String()])
	assert.Equal(t, "a", decoded[dataset.ColumnSourceFile])
	assert.Equal(t, 2.0, decoded[dataset.ColumnSegmentIndex])

	data, err = json.Marshal(rows[1])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded[extractors.Mean.String()])

	assert.Empty(t, datasetRows(nil))
}

func TestDatasetRowsYAMLOrder(t *testing.T) {
	ds := testDataset()

	data, err := yaml.Marshal(datasetRows(ds)[0])
	require.NoError(t, err)

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal(data, &doc))
	mapping := doc.Content[0]
	require.Equal(t, yaml.MappingNode, mapping.Kind)

	var keys []string
	for i := 0; i < len(mapping.Content); i += 2 {
		keys = append(keys, mapping.Content[i].Value)
	}
	assert.Equal(t, ds.Columns(), keys)
}

func TestDatasetCSVFormatter(t *testing.T) {
	ds := testDataset()

	data, err := (&DatasetCSVFormatter{}).Format(ds, true)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, ds.Columns(), records[0])

	col := func(name string) int { return slices.Index(records[0], name) }
	assert.Equal(t, "72", records[1][col(extractors.MeanHR.String())])
	assert.Equal(t, "1.25e-05", records[1][col(extractors.FreqLFPower.String())])
	assert.Equal(t, "a", records[1][col(dataset.ColumnSourceFile)])
	assert.Equal(t, "2", records[1][col(dataset.ColumnSegmentIndex)])
	assert.Equal(t, "120", records[1][col(dataset.ColumnSBP)])
	assert.Equal(t, "110.5", records[2][col(dataset.ColumnSBP)])
	assert.Equal(t, "", records[2][col(extractors.Mean.String())])

	_, err = (&DatasetCSVFormatter{}).Format(map[string]any{}, true)
	assert.Error(t, err)
}

func TestDatasetTableFormatter(t *testing.T) {
	ds := testDataset()
	result := &pipeline.Result{
		Dataset: ds,
		Summary: &pipeline.RunSummary{RecordsTotal: 2, RecordsSucceeded: 2, VectorsExtracted: 3, VectorsRetained: 2},
	}

	data, err := (&DatasetTableFormatter{}).Format(result, true)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Equal(t, "PPG FEATURE DATASET", lines[0])
	assert.Contains(t, string(data), "2 retained of 3 extracted")

	// header plus one line per row at the end
	require.GreaterOrEqual(t, len(lines), 3)
	header := strings.Fields(lines[len(lines)-3])
	assert.Equal(t, ds.Columns(), header)
	first := strings.Fields(lines[len(lines)-2])
	require.Len(t, first, len(header))
	assert.Equal(t, "72.000", first[slices.Index(header, extractors.MeanHR.String())])
	assert.Equal(t, "a", first[slices.Index(header, dataset.ColumnSourceFile)])

	_, err = (&DatasetTableFormatter{}).Format(ds, true)
	assert.Error(t, err)
}

func TestResolveLogLevel(t *testing.T) {
	cfg := configs.GetDefaultConfig()
	assert.Equal(t, logging.InfoLevel, resolveLogLevel(&Context{}, cfg))

	cfg.LogLevel = "error"
	assert.Equal(t, logging.ErrorLevel, resolveLogLevel(&Context{}, cfg))
	cfg.LogLevel = "warn"
	assert.Equal(t, logging.WarnLevel, resolveLogLevel(&Context{}, cfg))

	assert.Equal(t, logging.DebugLevel, resolveLogLevel(&Context{Verbose: true}, cfg))
	cfg.Verbose = true
	assert.Equal(t, logging.DebugLevel, resolveLogLevel(&Context{}, cfg))
}

func TestSetupLoggingKeepsInjectedLogger(t *testing.T) {
	injected := logging.NewDefaultLogger()
	assert.Same(t, injected, setupLogging(&Context{Logger: injected}, configs.GetDefaultConfig()))
}

func TestSanitizeForJSON(t *testing.T) {
	type inner struct {
		Value  float64 `json:"value"`
		Hidden float64 `json:"-"`
		Name   string
	}

	got := sanitizeForJSON(map[string]any{
		"nan":    math.NaN(),
		"finite": 1.5,
		"list":   []any{math.Inf(1), 2.0},
		"struct": &inner{Value: math.NaN(), Hidden: 1, Name: "x"},
	}).(map[string]any)

	assert.Nil(t, got["nan"])
	assert.Equal(t, 1.5, got["finite"])
	assert.Equal(t, []any{nil, 2.0}, got["list"])
	assert.Equal(t, map[string]any{"value": nil, "Name": "x"}, got["struct"])
}

func TestRunStatus(t *testing.T) {
	assert.Equal(t, "ok", runStatus(&pipeline.RunSummary{RecordsTotal: 2, RecordsSucceeded: 2}))
	assert.Equal(t, "partial", runStatus(&pipeline.RunSummary{RecordsTotal: 2, RecordsSucceeded: 1, RecordsFailed: 1}))
	assert.Equal(t, "failed", runStatus(&pipeline.RunSummary{RecordsTotal: 1, RecordsFailed: 1}))
}

func TestExtractAppRun(t *testing.T) {
	dir := t.TempDir()
	recordsFile := filepath.Join(dir, "records.yaml")
	require.NoError(t, GenerateExampleRecords(recordsFile, 24))

	outputFile := filepath.Join(dir, "out", "features.json")
	app, err := NewExtractApp(&Context{
		RecordsFile:  recordsFile,
		OutputFile:   outputFile,
		OutputFormat: "json",
		MaxWorkers:   2,
		Config:       configs.GetDefaultConfig(),
	})
	require.NoError(t, err)
	require.NoError(t, app.Run(context.Background()))

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "summary")
	assert.Contains(t, string(data), extractors.MeanHR.String())
}

func TestExtractAppRunCSV(t *testing.T) {
	dir := t.TempDir()
	recordsFile := filepath.Join(dir, "records.yaml")
	require.NoError(t, GenerateExampleRecords(recordsFile, 24))

	outputFile := filepath.Join(dir, "features.csv")
	app, err := NewExtractApp(&Context{
		RecordsFile:  recordsFile,
		OutputFile:   outputFile,
		OutputFormat: "csv",
		Config:       configs.GetDefaultConfig(),
	})
	require.NoError(t, err)
	require.NoError(t, app.Run(context.Background()))

	f, err := os.Open(outputFile)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Greater(t, len(records), 1)
	assert.Equal(t, dataset.New(nil).Columns(), records[0])
	for _, record := range records[1:] {
		assert.Len(t, record, len(records[0]))
	}
}

func TestExtractAppAllRecordsFailed(t *testing.T) {
	app, err := NewExtractApp(&Context{
		OutputFile: filepath.Join(t.TempDir(), "out.json"),
		Config:     configs.GetDefaultConfig(),
		Records: []common.Record{
			{Source: "short", SBP: 120, DBP: 80, Waveform: []float64{1, 2, 3}},
		},
	})
	require.NoError(t, err)

	err = app.Run(context.Background())
	assert.ErrorContains(t, err, "all 1 records failed")
}

func TestNewExtractAppErrors(t *testing.T) {
	_, err := NewExtractApp(&Context{Config: configs.GetDefaultConfig()})
	assert.ErrorContains(t, err, "records file is required")

	_, err = NewExtractApp(&Context{Config: configs.GetDefaultConfig(), OutputFormat: "xml", Records: []common.Record{}})
	assert.ErrorContains(t, err, "invalid output format")
}

func TestGenerateAndValidateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ppg-features.yaml")
	require.NoError(t, GenerateExampleConfig(path))
	require.NoError(t, ValidateConfigFile(path))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, configs.GetDefaultConfig().Segment, cfg.Segment)
	assert.Equal(t, configs.GetDefaultConfig().Features.LFBand, cfg.Features.LFBand)
}

func TestValidateConfigFileRejectsBadValues(t *testing.T) {
	path := writeFile(t, "bad.yaml", "segment:\n  window_size: 100\n  overlap: 100\n")
	assert.ErrorContains(t, ValidateConfigFile(path), "configuration validation failed")

	assert.ErrorContains(t, ValidateConfigFile(filepath.Join(t.TempDir(), "none.yaml")), "does not exist")
}

func TestValidateRecordsFile(t *testing.T) {
	path := writeFile(t, "records.yaml", `records:
  - source: ok
    sbp: 120
    dbp: 80
    waveform: [1, 2, 3]
  - source: wrong_rate
    sample_rate: 250
    sbp: 120
    dbp: 80
    waveform: [1, 2, 3]
  - source: empty
    sbp: 120
    dbp: 80
    waveform: []
`)

	valid, err := ValidateRecordsFile(path, common.DefaultSampleRate)
	require.NoError(t, err)
	assert.Equal(t, 1, valid)
}
