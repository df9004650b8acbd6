package common

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// DefaultSampleRate is the PPG acquisition rate in Hz
const DefaultSampleRate = 125.0

// Waveform is an ordered run of PPG samples at a fixed rate
type Waveform struct {
	Samples    []float64 `json:"samples"`
	SampleRate float64   `json:"sample_rate"`
}

// Len returns the number of samples
func (w Waveform) Len() int {
	return len(w.Samples)
}

// Duration returns the waveform length in seconds
func (w Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / w.SampleRate
}

// WithSamples returns a waveform sharing the sample rate with new samples
func (w Waveform) WithSamples(samples []float64) Waveform {
	return Waveform{Samples: samples, SampleRate: w.SampleRate}
}

// Record is one cleaned source recording with its blood-pressure labels.
// A record contributes one SBP/DBP pair to every segment it produces.
type Record struct {
	Source     string    `json:"source" yaml:"source" validate:"required"`
	SampleRate float64   `json:"sample_rate" yaml:"sample_rate" validate:"gte=0"`
	SBP        float64   `json:"sbp" yaml:"sbp"`
	DBP        float64   `json:"dbp" yaml:"dbp"`
	Waveform   []float64 `json:"waveform" yaml:"waveform,flow" validate:"required"`
}

var recordValidator = validator.New()

// ValidateRecord checks the input contract of a record. expectedRate is the
// rate the pipeline was configured for; a zero record rate means "same".
func ValidateRecord(rec *Record, expectedRate float64) error {
	if rec == nil {
		return NewSignalError(ErrCodeInvalidRecord, "", "nil record", nil)
	}

	if len(rec.Waveform) == 0 {
		return NewSignalError(ErrCodeEmptyWaveform, rec.Source, "waveform has no samples", nil)
	}

	if err := recordValidator.Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return NewSignalError(ErrCodeInvalidRecord, rec.Source,
				fmt.Sprintf("field %s failed %q", verrs[0].Field(), verrs[0].Tag()), err)
		}
		return NewSignalError(ErrCodeInvalidRecord, rec.Source, "record validation failed", err)
	}

	if rec.SampleRate != 0 && rec.SampleRate != expectedRate {
		return NewSignalError(ErrCodeSampleRateMismatch, rec.Source,
			fmt.Sprintf("sample rate %.3f Hz does not match configured %.3f Hz", rec.SampleRate, expectedRate), nil)
	}

	if math.IsNaN(rec.SBP) || math.IsInf(rec.SBP, 0) || math.IsNaN(rec.DBP) || math.IsInf(rec.DBP, 0) {
		return NewSignalError(ErrCodeNonFiniteLabel, rec.Source, "blood pressure labels must be finite", nil)
	}

	if i := FirstNonFinite(rec.Waveform); i >= 0 {
		return NewSignalError(ErrCodeNonFiniteSample, rec.Source,
			fmt.Sprintf("sample %d is not finite", i), nil)
	}

	return nil
}

// FirstNonFinite returns the index of the first NaN or Inf sample, or -1
func FirstNonFinite(samples []float64) int {
	for i, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}
