package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/latency-benchmark-common/output"
	"github.com/tunein/go-logging/v7/pkg/logger"
	"github.com/tunein/go-logging/v7/pkg/logger/logtypes"
	"github.com/tunein/go-logging/v7/pkg/rootcollector"
	"github.com/tunein/go-logging/v7/pkg/rootlogger"

	"github.com/RyanBlaney/ppg-features/configs"
	"github.com/RyanBlaney/ppg-features/internal/pipeline"
	"github.com/RyanBlaney/ppg-features/pkg/signal/common"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	RecordsFile  string // Records file to process (required)
	OutputFile   string
	OutputFormat string
	Timeout      time.Duration
	MaxWorkers   int
	FailFast     bool
	Verbose      bool

	// Runtime context
	Logger  logging.Logger
	Config  *configs.Config
	Records []common.Record
}

// ExtractApp handles the feature extraction lifecycle
type ExtractApp struct {
	ctx     *Context
	config  *configs.Config
	records []common.Record
	logger  logging.Logger
}

// NewExtractApp creates a new extraction application. A nil ctx.Config is
// loaded from viper.
func NewExtractApp(ctx *Context) (*ExtractApp, error) {
	// Load configuration
	config, err := loadAndMergeConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx.Config = config

	// Set up logging
	logger := setupLogging(ctx, config)
	ctx.Logger = logger

	if ctx.Records == nil {
		if ctx.RecordsFile == "" {
			return nil, fmt.Errorf("records file is required")
		}
		records, err := LoadRecordsFile(ctx.RecordsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load records: %w", err)
		}
		ctx.Records = records
	}

	logger.Debug("Extraction application initialized", logging.Fields{
		"records_file":  ctx.RecordsFile,
		"records":       len(ctx.Records),
		"output_format": ctx.OutputFormat,
		"max_workers":   config.Pipeline.MaxWorkers,
		"filter_mode":   config.Filter.Mode,
	})

	return &ExtractApp{
		ctx:     ctx,
		config:  config,
		records: ctx.Records,
		logger:  logger,
	}, nil
}

// Run executes the pipeline and writes the results
func (app *ExtractApp) Run(ctx context.Context) error {
	if app.config.Pipeline.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.config.Pipeline.Timeout)
		defer cancel()
	}

	pc, err := app.config.ToPipelineConfig()
	if err != nil {
		return fmt.Errorf("invalid pipeline settings: %w", err)
	}

	engine, err := pipeline.NewEngine(&pipeline.EngineConfig{
		Pipeline:   &pc,
		MaxWorkers: app.config.Pipeline.MaxWorkers,
		FailFast:   app.config.Pipeline.FailFast,
		Logger:     app.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline engine: %w", err)
	}

	result, err := engine.Run(ctx, app.records)
	if err != nil {
		return fmt.Errorf("feature extraction failed: %w", err)
	}

	app.collectMetrics(result.Summary)

	if err := app.outputResults(result); err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}

	// Return error if all records failed
	if result.Summary.RecordsFailed > 0 && result.Summary.RecordsSucceeded == 0 {
		return fmt.Errorf("all %d records failed", result.Summary.RecordsFailed)
	}

	return nil
}

var logLevels = map[string]logging.Level{
	"debug": logging.DebugLevel,
	"info":  logging.InfoLevel,
	"warn":  logging.WarnLevel,
	"error": logging.ErrorLevel,
}

// setupLogging configures logging based on context. The level also applies
// to the global logger that component loggers derive from.
func setupLogging(ctx *Context, config *configs.Config) logging.Logger {
	if ctx.Logger != nil {
		return ctx.Logger
	}

	level := resolveLogLevel(ctx, config)
	logging.SetLevel(level)

	logger := logging.NewDefaultLogger()
	logger.SetLevel(level)
	return logger
}

// resolveLogLevel maps the configured level name; verbose forces debug
func resolveLogLevel(ctx *Context, config *configs.Config) logging.Level {
	if ctx.Verbose || config.Verbose {
		return logging.DebugLevel
	}
	if level, ok := logLevels[config.LogLevel]; ok {
		return level
	}
	return logging.InfoLevel
}

// loadAndMergeConfig loads configuration and applies CLI overrides
func loadAndMergeConfig(ctx *Context) (*configs.Config, error) {
	config := ctx.Config
	if config == nil {
		var err error
		config, err = configs.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load base configuration: %w", err)
		}
	}

	if ctx.OutputFormat != "" {
		config.OutputFormat = ctx.OutputFormat
	} else {
		ctx.OutputFormat = config.OutputFormat
	}
	if ctx.MaxWorkers > 0 {
		config.Pipeline.MaxWorkers = ctx.MaxWorkers
	}
	if ctx.FailFast {
		config.Pipeline.FailFast = true
	}
	if ctx.Timeout > 0 {
		config.Pipeline.Timeout = ctx.Timeout
	}

	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// outputResults handles all result output
func (app *ExtractApp) outputResults(result *pipeline.Result) error {
	var outputData any
	var formatter output.Formatter
	switch app.ctx.OutputFormat {
	case "csv":
		// Flat formats carry the dataset rows only
		outputData, formatter = result.Dataset, &DatasetCSVFormatter{}
	case "table":
		outputData, formatter = result, &DatasetTableFormatter{}
	case "yaml":
		outputData, formatter = reportData(result), &output.YAMLFormatter{}
	default:
		outputData, formatter = reportData(result), &output.JSONFormatter{}
	}

	// Format data
	formattedData, err := formatter.Format(outputData, true)
	if err != nil {
		// NaN features cannot be encoded by every formatter
		if strings.Contains(err.Error(), "unsupported value") {
			sanitizedData := sanitizeForJSON(outputData)
			formattedData, err = formatter.Format(sanitizedData, true)
		}
		if err != nil {
			return fmt.Errorf("failed to format output data: %w", err)
		}
	}

	// Write to file or stdout
	if app.ctx.OutputFile != "" {
		return app.writeToFile(formattedData)
	}

	_, err = os.Stdout.Write(formattedData)
	return err
}

// reportData is the full run report for structured formats
func reportData(result *pipeline.Result) map[string]any {
	return map[string]any{
		"summary":   result.Summary,
		"records":   result.Records,
		"filter":    result.Filter,
		"columns":   result.Dataset.Columns(),
		"dataset":   datasetRows(result.Dataset),
		"timestamp": time.Now(),
	}
}

// collectMetrics sends run counters to rootcollector
func (app *ExtractApp) collectMetrics(summary *pipeline.RunSummary) {
	if summary == nil || !app.config.Metrics.Enabled {
		return
	}

	err := rootlogger.Configure(logger.LogOptions{
		Out:          app.config.Metrics.LogFile,
		ReopenSignal: syscall.SIGHUP,
		Level:        logtypes.InfoLevel,
	})
	if err != nil {
		logging.Error(err, "Failed configuring log writer")
		return
	}

	prefix := app.config.Metrics.Prefix
	tags := append([]string{"status:" + runStatus(summary)}, app.config.Metrics.Tags...)

	rootcollector.Metric(prefix+".records.processed", int64(summary.RecordsTotal), tags)
	rootcollector.Metric(prefix+".records.failed", int64(summary.RecordsFailed), tags)
	rootcollector.Metric(prefix+".vectors.extracted", int64(summary.VectorsExtracted), tags)
	rootcollector.Metric(prefix+".vectors.retained", int64(summary.VectorsRetained), tags)
	rootcollector.Metric(prefix+".duration.milliseconds", summary.TotalDuration.Milliseconds(), tags)
}

func runStatus(summary *pipeline.RunSummary) string {
	switch {
	case summary.RecordsFailed == 0:
		return "ok"
	case summary.RecordsSucceeded == 0:
		return "failed"
	default:
		return "partial"
	}
}

// writeToFile writes data to the specified output file
func (app *ExtractApp) writeToFile(data []byte) error {
	// Ensure directory exists
	dir := filepath.Dir(app.ctx.OutputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write file
	if err := os.WriteFile(app.ctx.OutputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	app.logger.Debug("Results written to file", logging.Fields{
		"output_file": app.ctx.OutputFile,
		"size_bytes":  len(data),
	})

	return nil
}

// sanitizeForJSON recursively replaces NaN and Inf values with null
func sanitizeForJSON(data any) any {
	switch v := data.(type) {
	case json.Marshaler:
		// encodes its own non-finite values
		return v
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil
		}
		return v
	case map[string]any:
		result := make(map[string]any, len(v))
		for k, val := range v {
			result[k] = sanitizeForJSON(val)
		}
		return result
	case []map[string]any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = sanitizeForJSON(val)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = sanitizeForJSON(val)
		}
		return result
	case time.Time, time.Duration, string, bool, int, int64:
		return v
	default:
		// Use reflection to handle structs and other complex types
		return sanitizeWithReflection(data)
	}
}

// sanitizeWithReflection uses reflection to sanitize struct fields
func sanitizeWithReflection(data any) any {
	if data == nil {
		return nil
	}

	val := reflect.ValueOf(data)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Struct:
		result := make(map[string]any)
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := val.Field(i)
			fieldType := typ.Field(i)

			// Skip unexported fields
			if !field.CanInterface() {
				continue
			}

			jsonTag := fieldType.Tag.Get("json")
			if jsonTag == "-" {
				continue
			}
			fieldName := fieldType.Name
			if name, _, _ := strings.Cut(jsonTag, ","); name != "" {
				fieldName = name
			}

			result[fieldName] = sanitizeForJSON(field.Interface())
		}
		return result
	case reflect.Slice, reflect.Array:
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			result[i] = sanitizeForJSON(val.Index(i).Interface())
		}
		return result
	case reflect.Map:
		result := make(map[string]any)
		for _, key := range val.MapKeys() {
			keyStr := fmt.Sprintf("%v", key.Interface())
			result[keyStr] = sanitizeForJSON(val.MapIndex(key).Interface())
		}
		return result
	case reflect.Float64, reflect.Float32:
		f := val.Float()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil
		}
		return f
	default:
		return val.Interface()
	}
}
