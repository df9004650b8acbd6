package app

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/ppg-features/pkg/signal/common"
)

// RecordsFile is the on-disk layout of a records file
type RecordsFile struct {
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	SampleRate  float64         `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
	Records     []common.Record `json:"records" yaml:"records"`
}

// LoadRecordsFile loads records from a YAML or JSON file. A file-level
// sample rate applies to records that do not set their own.
func LoadRecordsFile(filePath string) ([]common.Record, error) {
	// Check if file exists
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("records file does not exist: %s", filePath)
	}

	var (
		rf  *RecordsFile
		err error
	)

	// Determine file format
	switch filepath.Ext(filePath) {
	case ".json":
		rf, err = loadRecordsFromJSON(filePath)
	default:
		// YAML is a superset of JSON
		rf, err = loadRecordsFromYAML(filePath)
	}
	if err != nil {
		return nil, err
	}

	if rf.SampleRate > 0 {
		for i := range rf.Records {
			if rf.Records[i].SampleRate == 0 {
				rf.Records[i].SampleRate = rf.SampleRate
			}
		}
	}

	return rf.Records, nil
}

// loadRecordsFromYAML accepts either a RecordsFile mapping or a bare list
func loadRecordsFromYAML(filePath string) (*RecordsFile, error) {
	data, err := readFile(filePath)
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse YAML records file: %w", err)
	}

	rf := &RecordsFile{}
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		if err := node.Content[0].Decode(&rf.Records); err != nil {
			return nil, fmt.Errorf("failed to decode YAML records: %w", err)
		}
		return rf, nil
	}

	if err := node.Decode(rf); err != nil {
		return nil, fmt.Errorf("failed to decode YAML records file: %w", err)
	}
	return rf, nil
}

// loadRecordsFromJSON loads records from a JSON file
func loadRecordsFromJSON(filePath string) (*RecordsFile, error) {
	data, err := readFile(filePath)
	if err != nil {
		return nil, err
	}

	rf := &RecordsFile{}
	if err := json.Unmarshal(data, rf); err != nil {
		var list []common.Record
		if listErr := json.Unmarshal(data, &list); listErr != nil {
			return nil, fmt.Errorf("failed to parse JSON records file: %w", err)
		}
		rf.Records = list
	}
	return rf, nil
}

func readFile(filePath string) ([]byte, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}
	return data, nil
}

// GenerateExampleRecords writes a records file holding synthetic pulse
// waveforms, one per label pair
func GenerateExampleRecords(outputFile string, seconds float64) error {
	labels := []struct {
		source   string
		sbp, dbp float64
		bpm      float64
	}{
		{"synthetic_001", 118, 76, 64},
		{"synthetic_002", 131, 84, 78},
		{"synthetic_003", 142, 91, 90},
	}

	rf := &RecordsFile{
		Description: "Synthetic PPG records",
		SampleRate:  common.DefaultSampleRate,
	}

	n := int(seconds * common.DefaultSampleRate)
	for _, l := range labels {
		rf.Records = append(rf.Records, common.Record{
			Source:   l.source,
			SBP:      l.sbp,
			DBP:      l.dbp,
			Waveform: syntheticPulse(n, l.bpm/60, common.DefaultSampleRate),
		})
	}

	data, err := yaml.Marshal(rf)
	if err != nil {
		return fmt.Errorf("failed to marshal example records: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write records file: %w", err)
	}

	return nil
}

// syntheticPulse models a pulse as a systolic wave plus a delayed dicrotic
// wave at the heart rate
func syntheticPulse(n int, heartHz, sampleRate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		phase := math.Mod(float64(i)*heartHz/sampleRate, 1)
		systolic := math.Exp(-math.Pow((phase-0.2)/0.08, 2))
		dicrotic := 0.4 * math.Exp(-math.Pow((phase-0.5)/0.1, 2))
		out[i] = math.Round((systolic+dicrotic)*1e4) / 1e4
	}
	return out
}
