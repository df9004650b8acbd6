package common

import "errors"

// SignalError represents a structural violation of the record contract.
// Degenerate but well-formed input never produces one.
type SignalError struct {
	Code    string `json:"code"`
	Source  string `json:"source,omitempty"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *SignalError) Error() string {
	msg := e.Message
	if e.Source != "" {
		msg = e.Source + ": " + msg
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *SignalError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a SignalError carrying the same code.
func (e *SignalError) Is(target error) bool {
	t, ok := target.(*SignalError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Source == "" || t.Source == e.Source)
}

// Common error codes
const (
	ErrCodeEmptyWaveform      = "EMPTY_WAVEFORM"
	ErrCodeNonFiniteSample    = "NON_FINITE_SAMPLE"
	ErrCodeNonFiniteLabel     = "NON_FINITE_LABEL"
	ErrCodeInvalidRecord      = "INVALID_RECORD"
	ErrCodeSampleRateMismatch = "SAMPLE_RATE_MISMATCH"
	ErrCodeSignalTooShort     = "SIGNAL_TOO_SHORT"
)

// Sentinels for errors.Is matching by code.
var (
	ErrEmptyWaveform      = &SignalError{Code: ErrCodeEmptyWaveform}
	ErrNonFiniteSample    = &SignalError{Code: ErrCodeNonFiniteSample}
	ErrNonFiniteLabel     = &SignalError{Code: ErrCodeNonFiniteLabel}
	ErrInvalidRecord      = &SignalError{Code: ErrCodeInvalidRecord}
	ErrSampleRateMismatch = &SignalError{Code: ErrCodeSampleRateMismatch}
	ErrSignalTooShort     = &SignalError{Code: ErrCodeSignalTooShort}
)

// NewSignalError creates a new signal error
func NewSignalError(code, source, message string, cause error) *SignalError {
	return &SignalError{
		Code:    code,
		Source:  source,
		Message: message,
		Cause:   cause,
	}
}

// IsDataError reports whether err carries a SignalError anywhere in its chain.
func IsDataError(err error) bool {
	var se *SignalError
	return errors.As(err, &se)
}
