// Package pipeline runs PPG records through conditioning, segmentation,
// feature extraction and feature-level outlier filtering.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/ppg-features/internal/dataset"
	"github.com/RyanBlaney/ppg-features/pkg/signal/common"
	"github.com/RyanBlaney/ppg-features/pkg/signal/config"
	"github.com/RyanBlaney/ppg-features/pkg/signal/extractors"
	"github.com/RyanBlaney/ppg-features/pkg/signal/preprocess"
	"github.com/RyanBlaney/ppg-features/pkg/signal/segment"
)

// Engine converts records into feature vectors
type Engine struct {
	pipeline    config.PipelineConfig
	conditioner *preprocess.Conditioner
	segmenter   *segment.Segmenter
	extractor   *extractors.Extractor
	filter      *dataset.OutlierFilter
	summary     *SummaryCalculator
	maxWorkers  int
	failFast    bool
	logger      logging.Logger
}

// EngineConfig contains configuration for the engine
type EngineConfig struct {
	Pipeline   *config.PipelineConfig
	MaxWorkers int
	FailFast   bool
	Logger     logging.Logger
}

// NewEngine validates the pipeline configuration and builds every stage
func NewEngine(cfg *EngineConfig) (*Engine, error) {
	if cfg == nil {
		cfg = &EngineConfig{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	pc := config.DefaultConfig()
	if cfg.Pipeline != nil {
		pc = *cfg.Pipeline
	}
	if err := pc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline configuration: %w", err)
	}

	conditioner, err := preprocess.NewConditioner(&pc, logger.WithFields(logging.Fields{
		"component": "conditioner",
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create conditioner: %w", err)
	}

	segmenter, err := segment.NewSegmenter(pc.Segmentation.WindowSize, pc.Segmentation.Overlap)
	if err != nil {
		return nil, fmt.Errorf("failed to create segmenter: %w", err)
	}

	extractor, err := extractors.NewExtractor(&pc.Features, logger.WithFields(logging.Fields{
		"component": "feature_extractor",
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create feature extractor: %w", err)
	}

	var filter *dataset.OutlierFilter
	if pc.Filter.Enabled {
		filter, err = dataset.NewOutlierFilter(pc.Filter, logger.WithFields(logging.Fields{
			"component": "outlier_filter",
		}))
		if err != nil {
			return nil, fmt.Errorf("failed to create outlier filter: %w", err)
		}
	}

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	return &Engine{
		pipeline:    pc,
		conditioner: conditioner,
		segmenter:   segmenter,
		extractor:   extractor,
		filter:      filter,
		summary:     NewSummaryCalculator(logger),
		maxWorkers:  maxWorkers,
		failFast:    cfg.FailFast,
		logger:      logger,
	}, nil
}

// Config returns the pipeline configuration the engine was built with
func (e *Engine) Config() config.PipelineConfig {
	return e.pipeline
}

// ProcessRecord validates, conditions and segments one record and returns
// one feature vector per segment, labelled with the record's SBP/DBP.
func (e *Engine) ProcessRecord(ctx context.Context, rec *common.Record) ([]dataset.FeatureVector, error) {
	if err := common.ValidateRecord(rec, e.pipeline.SampleRate); err != nil {
		return nil, err
	}

	wf := common.Waveform{Samples: rec.Waveform, SampleRate: e.pipeline.SampleRate}
	conditioned, err := e.conditioner.Condition(rec.Source, wf)
	if err != nil {
		return nil, fmt.Errorf("failed to condition %s: %w", rec.Source, err)
	}

	vectors := make([]dataset.FeatureVector, 0, e.segmenter.Count(conditioned.Len()))
	for idx, seg := range e.segmenter.All(conditioned.Samples) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vectors = append(vectors, dataset.FeatureVector{
			Features:     e.extractor.Extract(seg.Samples, conditioned.SampleRate),
			SourceFile:   rec.Source,
			SegmentIndex: idx,
			SBP:          rec.SBP,
			DBP:          rec.DBP,
		})
	}

	e.logger.Debug("Record processed", logging.Fields{
		"source":   rec.Source,
		"samples":  len(rec.Waveform),
		"segments": len(vectors),
	})

	return vectors, nil
}

// Run processes records concurrently and folds the vectors into a filtered
// dataset in input order. A failing record is reported in its RecordResult
// and does not stop the run unless fail-fast is enabled.
func (e *Engine) Run(ctx context.Context, records []common.Record) (*Result, error) {
	startTime := time.Now()

	e.logger.Debug("Starting pipeline run", logging.Fields{
		"records":     len(records),
		"max_workers": e.maxWorkers,
		"fail_fast":   e.failFast,
	})

	results := make([]RecordResult, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxWorkers)

	for i := range records {
		g.Go(func() error {
			results[i] = e.processSlot(gctx, i, &records[i])
			if e.failFast && results[i].Status == StatusFailed {
				return fmt.Errorf("record %d (%s): %s", i, results[i].Source, results[i].Error)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.logger.Error(err, "Pipeline run aborted")
		return nil, fmt.Errorf("pipeline run aborted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []dataset.FeatureVector
	for i := range results {
		rows = append(rows, results[i].vectors...)
		results[i].vectors = nil
	}

	result := &Result{Records: results}
	if e.filter != nil {
		var report *dataset.FilterReport
		rows, report = e.filter.Apply(rows)
		result.Filter = report
	}
	result.Dataset = dataset.New(rows)

	endTime := time.Now()
	result.Summary = &RunSummary{
		StartTime:     startTime,
		EndTime:       endTime,
		TotalDuration: endTime.Sub(startTime),
	}
	e.summary.Calculate(result.Summary, results, result.Dataset)

	return result, nil
}

// processSlot runs one record and never returns an error; failures are
// captured in the result
func (e *Engine) processSlot(ctx context.Context, index int, rec *common.Record) RecordResult {
	start := time.Now()
	res := RecordResult{
		Index:   index,
		Source:  rec.Source,
		Samples: len(rec.Waveform),
	}

	if err := ctx.Err(); err != nil {
		res.Status = StatusCanceled
		res.Error = err.Error()
		return res
	}

	vectors, err := e.ProcessRecord(ctx, rec)
	res.Duration = time.Since(start)

	if err != nil {
		res.Status = StatusFailed
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			res.Status = StatusCanceled
		}
		res.Error = err.Error()

		var se *common.SignalError
		if errors.As(err, &se) {
			res.ErrorCode = se.Code
		}

		e.logger.Warn("Record failed", logging.Fields{
			"index":      index,
			"source":     rec.Source,
			"error":      err.Error(),
			"error_code": res.ErrorCode,
		})
		return res
	}

	res.Status = StatusOK
	res.Segments = len(vectors)
	res.vectors = vectors
	return res
}
