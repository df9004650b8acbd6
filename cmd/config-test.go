package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/ppg-features/configs"
	"github.com/RyanBlaney/ppg-features/internal/app"
)

var (
	configTestRecords      string
	configTestWriteExample string
)

// configTestCmd represents the config test command
var configTestCmd = &cobra.Command{
	Use:   "config-test",
	Short: "Test and display all configuration values",
	Long: `Test configuration loading and display all values to verify proper parsing.

This command loads the configuration and displays all values in a structured format
to help verify that your YAML configuration is being parsed correctly.

Examples:
  # Test with default config file
  ppg-features config-test

  # Test with specific config file
  ppg-features --config /path/to/config.yaml config-test

  # Also check a records file against the configured sample rate
  ppg-features config-test --records records.yaml

  # Write the default configuration as a starting point
  ppg-features config-test --write-example ppg-features.yaml`,
	RunE: runConfigTest,
}

func init() {
	rootCmd.AddCommand(configTestCmd)

	configTestCmd.Flags().StringVar(&configTestRecords, "records", "",
		"records file to validate")
	configTestCmd.Flags().StringVar(&configTestWriteExample, "write-example", "",
		"write the default configuration to this path and exit")
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	if configTestWriteExample != "" {
		if err := app.GenerateExampleConfig(configTestWriteExample); err != nil {
			return err
		}
		fmt.Printf("✅ Example configuration written to: %s\n", configTestWriteExample)
		return nil
	}

	fmt.Println("PPG FEATURES CONFIGURATION TEST")
	fmt.Println(strings.Repeat("=", 80))

	// Load configuration
	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printSection("APPLICATION SETTINGS")
	printKeyValue("Verbose", fmt.Sprintf("%t", config.Verbose))
	printKeyValue("Log Level", config.LogLevel)
	printKeyValue("Output Format", config.OutputFormat)
	printKeyValue("Config Directory", config.ConfigDir)
	printKeyValue("Data Directory", config.DataDir)
	printKeyValue("Config File", configFileUsed())

	printSection("SIGNAL CONDITIONING")
	printKeyValue("Sample Rate", fmt.Sprintf("%.1f Hz", config.Signal.SampleRate))
	printKeyValue("Outlier Threshold", fmt.Sprintf("%.2f std", config.Signal.OutlierThreshold))
	printKeyValue("Wavelet", fmt.Sprintf("%s (level %d)", config.Signal.Wavelet, config.Signal.WaveletLevel))
	printKeyValue("Band", fmt.Sprintf("%.2f - %.2f Hz", config.Signal.BandLowHz, config.Signal.BandHighHz))
	printKeyValue("Filter Order", fmt.Sprintf("%d", config.Signal.FilterOrder))

	printSection("SEGMENTATION")
	printKeyValue("Window Size", fmt.Sprintf("%d samples", config.Segment.WindowSize))
	printKeyValue("Overlap", fmt.Sprintf("%d samples", config.Segment.Overlap))
	if config.Signal.SampleRate > 0 {
		printKeyValue("Window Duration", fmt.Sprintf("%.1f s", float64(config.Segment.WindowSize)/config.Signal.SampleRate))
	}

	printSection("FEATURE EXTRACTION")
	printKeyValue("Epsilon", fmt.Sprintf("%g", config.Features.Epsilon))
	printKeyValue("Entropy Epsilon", fmt.Sprintf("%g", config.Features.EntropyEpsilon))
	printKeyValue("Min Peaks", fmt.Sprintf("%d", config.Features.MinPeaks))
	printKeyValue("Peak Distance", fmt.Sprintf("%.2f s", config.Features.PeakDistanceSeconds))
	printKeyValue("LF Band", fmt.Sprintf("%v Hz", config.Features.LFBand))
	printKeyValue("HF Band", fmt.Sprintf("%v Hz", config.Features.HFBand))
	printKeyValue("Max Welch Segment", fmt.Sprintf("%d", config.Features.MaxWelchSegment))

	printSubsection("Smoothing")
	printKeyValue("  Window", fmt.Sprintf("%d", config.Features.SmoothingWindow))
	printKeyValue("  Order", fmt.Sprintf("%d", config.Features.SmoothingOrder))

	printSection("OUTLIER FILTER")
	printKeyValue("Enabled", fmt.Sprintf("%t", config.Filter.Enabled))
	printKeyValue("Mode", config.Filter.Mode)
	printKeyValue("IQR Multiplier", fmt.Sprintf("%.2f", config.Filter.IQRMultiplier))

	printSection("PIPELINE")
	printKeyValue("Max Workers", fmt.Sprintf("%d", config.Pipeline.MaxWorkers))
	printKeyValue("Fail Fast", fmt.Sprintf("%t", config.Pipeline.FailFast))
	printKeyValue("Timeout", config.Pipeline.Timeout.String())

	printSection("METRICS")
	printKeyValue("Enabled", fmt.Sprintf("%t", config.Metrics.Enabled))
	printKeyValue("Log File", config.Metrics.LogFile)
	printKeyValue("Prefix", config.Metrics.Prefix)
	if len(config.Metrics.Tags) > 0 {
		printKeyValue("Tags", strings.Join(config.Metrics.Tags, ", "))
	}

	printSection("VALIDATION")
	if err := configs.ValidateConfig(config); err != nil {
		printError("%v", err)
		return fmt.Errorf("configuration is invalid: %w", err)
	}
	printSuccess("Configuration is valid")

	if configTestRecords != "" {
		if _, err := app.ValidateRecordsFile(configTestRecords, config.Signal.SampleRate); err != nil {
			return fmt.Errorf("failed to validate records: %w", err)
		}
	}

	return nil
}

func printSection(title string) {
	fmt.Printf("\n%s\n", title)
	fmt.Println(strings.Repeat("-", len(title)))
}

func printSubsection(title string) {
	fmt.Printf("\n  %s\n", title)
}

func printKeyValue(key, value string) {
	if value == "" {
		fmt.Printf("%-35s\n", key)
	} else {
		fmt.Printf("%-35s %s\n", key+":", value)
	}
}

func configFileUsed() string {
	if used := GetConfig().ConfigFileUsed(); used != "" {
		return used
	}
	return "(none, using defaults)"
}
