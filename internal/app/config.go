package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/ppg-features/configs"
	"github.com/RyanBlaney/ppg-features/pkg/signal/common"
)

// GenerateExampleConfig writes the default configuration as YAML
func GenerateExampleConfig(outputFile string) error {
	exampleConfig := configs.GetDefaultConfig()

	// Write to YAML file
	data, err := yaml.Marshal(exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadConfigFile decodes a configuration file on top of the defaults
func LoadConfigFile(configFile string) (*configs.Config, error) {
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	v := viper.New()
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return configs.LoadConfigFrom(v)
}

// ValidateConfigFile validates a configuration file
func ValidateConfigFile(configFile string) error {
	config, err := LoadConfigFile(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := configs.ValidateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Printf("✅ Application configuration is valid: %s\n", configFile)
	fmt.Printf("   - Window: %d samples, overlap %d\n", config.Segment.WindowSize, config.Segment.Overlap)
	fmt.Printf("   - Filter: enabled=%t mode=%s\n", config.Filter.Enabled, config.Filter.Mode)

	return nil
}

// ValidateRecordsFile checks every record in a records file against the
// configured sample rate and reports how many pass
func ValidateRecordsFile(recordsFile string, sampleRate float64) (valid int, err error) {
	records, err := LoadRecordsFile(recordsFile)
	if err != nil {
		return 0, err
	}

	for i := range records {
		if verr := common.ValidateRecord(&records[i], sampleRate); verr != nil {
			fmt.Printf("   ✗ record %d: %v\n", i, verr)
			continue
		}
		valid++
	}

	fmt.Printf("✅ Records file parsed: %s\n", recordsFile)
	fmt.Printf("   - %d of %d records valid\n", valid, len(records))

	return valid, nil
}
