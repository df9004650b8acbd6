package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/ppg-features/configs"
	"github.com/RyanBlaney/ppg-features/internal/app"
)

var (
	// Extract command flags
	extractRecords    string
	extractOutputFile string
	extractMaxWorkers int
	extractFailFast   bool
	extractTimeout    time.Duration
	extractFilterMode string
	extractNoFilter   bool
	extractExample    string
	extractSeconds    float64
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract feature vectors from a records file",
	Long: `Run the feature pipeline over every record in a records file.

Each record is conditioned, cut into overlapping windows and reduced to one
33-feature vector per window. The assembled dataset is filtered for outliers
and written together with a run summary.

Examples:
  # Extract features and print JSON to stdout
  ppg-features extract --records records.yaml

  # Write CSV rows to a file using 4 workers
  ppg-features extract -r records.yaml -o csv --output-file features.csv --max-workers 4

  # Keep every window and filter each column against its own bounds
  ppg-features extract -r records.yaml --filter-mode independent
  ppg-features extract -r records.yaml --no-filter

  # Write a synthetic records file to try the pipeline
  ppg-features extract --example synthetic.yaml --seconds 60`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractRecords, "records", "r", "",
		"records file (YAML or JSON)")
	extractCmd.Flags().StringVarP(&extractOutputFile, "output-file", "f", "",
		"write results to a file instead of stdout")
	extractCmd.Flags().IntVar(&extractMaxWorkers, "max-workers", 0,
		"records processed concurrently (0 uses every CPU)")
	extractCmd.Flags().BoolVar(&extractFailFast, "fail-fast", false,
		"abort the run on the first record failure")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 0,
		"overall run timeout (0 disables)")
	extractCmd.Flags().StringVar(&extractFilterMode, "filter-mode", "",
		"outlier filter mode (sequential, independent)")
	extractCmd.Flags().BoolVar(&extractNoFilter, "no-filter", false,
		"disable feature-level outlier filtering")
	extractCmd.Flags().StringVar(&extractExample, "example", "",
		"write a synthetic records file to this path and exit")
	extractCmd.Flags().Float64Var(&extractSeconds, "seconds", 60,
		"length of each synthetic record in seconds")

	viper.BindPFlag("pipeline.max_workers", extractCmd.Flags().Lookup("max-workers"))
	viper.BindPFlag("pipeline.fail_fast", extractCmd.Flags().Lookup("fail-fast"))
	viper.BindPFlag("pipeline.timeout", extractCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("filter.mode", extractCmd.Flags().Lookup("filter-mode"))
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractExample != "" {
		if err := app.GenerateExampleRecords(extractExample, extractSeconds); err != nil {
			return fmt.Errorf("failed to generate example records: %w", err)
		}
		fmt.Printf("✅ Example records written to: %s\n", extractExample)
		return nil
	}

	if extractRecords == "" {
		return fmt.Errorf("--records is required")
	}

	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if extractNoFilter {
		config.Filter.Enabled = false
	}

	extractApp, err := app.NewExtractApp(&app.Context{
		RecordsFile:  extractRecords,
		OutputFile:   extractOutputFile,
		OutputFormat: viper.GetString("output_format"),
		Verbose:      viper.GetBool("verbose"),
		Config:       config,
	})
	if err != nil {
		return err
	}

	// Cancel pending records on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return extractApp.Run(ctx)
}
