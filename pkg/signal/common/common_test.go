package common

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() *Record {
	return &Record{
		Source:     "patient_001.csv",
		SampleRate: 125,
		SBP:        120,
		DBP:        80,
		Waveform:   []float64{0.1, 0.2, 0.3},
	}
}

func TestValidateRecord(t *testing.T) {
	require.NoError(t, ValidateRecord(validRecord(), DefaultSampleRate))

	rec := validRecord()
	rec.SampleRate = 0
	assert.NoError(t, ValidateRecord(rec, DefaultSampleRate))

	tests := []struct {
		name     string
		mutate   func(r *Record)
		expected error
	}{
		{"empty waveform", func(r *Record) { r.Waveform = nil }, ErrEmptyWaveform},
		{"missing source", func(r *Record) { r.Source = "" }, ErrInvalidRecord},
		{"negative rate", func(r *Record) { r.SampleRate = -1 }, ErrInvalidRecord},
		{"rate mismatch", func(r *Record) { r.SampleRate = 250 }, ErrSampleRateMismatch},
		{"nan label", func(r *Record) { r.SBP = math.NaN() }, ErrNonFiniteLabel},
		{"inf sample", func(r *Record) { r.Waveform[1] = math.Inf(1) }, ErrNonFiniteSample},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(rec)
			err := ValidateRecord(rec, DefaultSampleRate)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expected), "got %v", err)
			assert.True(t, IsDataError(err))
		})
	}

	assert.True(t, errors.Is(ValidateRecord(nil, DefaultSampleRate), ErrInvalidRecord))
}

func TestSignalErrorMatching(t *testing.T) {
	err := NewSignalError(ErrCodeSignalTooShort, "rec-7", "too short", nil)
	wrapped := fmt.Errorf("conditioning failed: %w", err)

	assert.True(t, errors.Is(wrapped, ErrSignalTooShort))
	assert.True(t, errors.Is(wrapped, &SignalError{Code: ErrCodeSignalTooShort, Source: "rec-7"}))
	assert.False(t, errors.Is(wrapped, &SignalError{Code: ErrCodeSignalTooShort, Source: "rec-8"}))
	assert.False(t, errors.Is(wrapped, ErrEmptyWaveform))
	assert.Equal(t, "rec-7: too short", err.Error())
	assert.False(t, IsDataError(errors.New("plain")))

	cause := errors.New("boom")
	withCause := NewSignalError(ErrCodeInvalidRecord, "", "bad", cause)
	assert.Equal(t, "bad: boom", withCause.Error())
	assert.ErrorIs(t, withCause, cause)
}

func TestWaveform(t *testing.T) {
	wf := Waveform{Samples: make([]float64, 250), SampleRate: 125}
	assert.Equal(t, 250, wf.Len())
	assert.Equal(t, 2.0, wf.Duration())
	assert.Equal(t, 0.0, Waveform{Samples: []float64{1}}.Duration())

	next := wf.WithSamples([]float64{1, 2})
	assert.Equal(t, 125.0, next.SampleRate)
	assert.Equal(t, 2, next.Len())
}
